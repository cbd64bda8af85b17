package format

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
)

// TableFormatter handles table output formatting
type TableFormatter struct {
	useColors bool
}

// NewTableFormatter creates a new table formatter
func NewTableFormatter(useColors bool) *TableFormatter {
	return &TableFormatter{
		useColors: useColors,
	}
}

// Format formats data as a table. Structs render as vertical
// property/value tables, struct slices as one row per element.
func (f *TableFormatter) Format(data interface{}) error {
	if data == nil {
		fmt.Println("No data to display")
		return nil
	}

	v := reflect.ValueOf(data)
	if v.Kind() == reflect.Ptr {
		if v.IsNil() {
			fmt.Println("No data to display")
			return nil
		}
		v = v.Elem()
	}

	switch v.Kind() {
	case reflect.Struct:
		return f.formatStruct(v)
	case reflect.Slice:
		return f.formatSlice(v)
	default:
		fmt.Printf("%v\n", data)
		return nil
	}
}

// formatStruct formats a struct as a vertical table, flattening nested
// structs one level so bank/mobile detail blocks stay readable.
func (f *TableFormatter) formatStruct(v reflect.Value) error {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Property", "Value"})

	f.configureTable(table)

	for _, row := range f.structRows(v, "") {
		table.Append(row)
	}

	table.Render()
	return nil
}

func (f *TableFormatter) structRows(v reflect.Value, prefix string) [][]string {
	t := v.Type()
	rows := make([][]string, 0, v.NumField())

	for i := 0; i < v.NumField(); i++ {
		field := t.Field(i)
		value := v.Field(i)
		if !field.IsExported() {
			continue
		}

		if value.Kind() == reflect.Ptr {
			if value.IsNil() {
				continue
			}
			value = value.Elem()
		}

		label := prefix + f.formatHeader(field.Name)
		if value.Kind() == reflect.Struct && field.Type != reflect.TypeOf(time.Time{}) && value.Type() != reflect.TypeOf(time.Time{}) {
			rows = append(rows, f.structRows(value, label+" ")...)
			continue
		}

		rows = append(rows, []string{label, f.formatValue(value.Interface())})
	}

	return rows
}

// formatSlice formats a slice of structs as one table row per element
func (f *TableFormatter) formatSlice(v reflect.Value) error {
	if v.Len() == 0 {
		fmt.Println("No data to display")
		return nil
	}

	first := v.Index(0)
	if first.Kind() == reflect.Ptr {
		first = first.Elem()
	}
	if first.Kind() != reflect.Struct {
		table := tablewriter.NewWriter(os.Stdout)
		table.SetHeader([]string{"Value"})
		f.configureTable(table)
		for i := 0; i < v.Len(); i++ {
			table.Append([]string{f.formatValue(v.Index(i).Interface())})
		}
		table.Render()
		return nil
	}

	t := first.Type()
	headers := make([]string, 0, t.NumField())
	fields := make([]int, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}
		// Nested detail blocks are too wide for list output.
		kind := field.Type.Kind()
		if kind == reflect.Struct && field.Type != reflect.TypeOf(time.Time{}) {
			continue
		}
		if kind == reflect.Ptr {
			continue
		}
		headers = append(headers, f.formatHeader(field.Name))
		fields = append(fields, i)
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader(headers)
	f.configureTable(table)

	for i := 0; i < v.Len(); i++ {
		elem := v.Index(i)
		if elem.Kind() == reflect.Ptr {
			elem = elem.Elem()
		}
		row := make([]string, len(fields))
		for j, idx := range fields {
			row[j] = f.formatValue(elem.Field(idx).Interface())
		}
		table.Append(row)
	}

	table.Render()
	return nil
}

// configureTable sets up table appearance
func (f *TableFormatter) configureTable(table *tablewriter.Table) {
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")
	table.SetNoWhiteSpace(true)
}

// formatHeader converts a Go field name to a spaced display header
func (f *TableFormatter) formatHeader(header string) string {
	var b strings.Builder
	for i, r := range header {
		if i > 0 && r >= 'A' && r <= 'Z' {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// formatValue formats a value for display, coloring review states so
// rejected entries stand out in a method list.
func (f *TableFormatter) formatValue(value interface{}) string {
	if value == nil {
		return ""
	}

	if ts, ok := value.(time.Time); ok {
		if ts.IsZero() {
			return ""
		}
		return ts.Format("2006-01-02 15:04")
	}

	text := fmt.Sprintf("%v", value)
	switch v := value.(type) {
	case bool:
		if f.useColors {
			if v {
				return color.GreenString("true")
			}
			return color.RedString("false")
		}
		return strconv.FormatBool(v)
	}

	if f.useColors {
		switch text {
		case "verified", "approved":
			return color.GreenString(text)
		case "pending", "pending_verification", "profile_incomplete":
			return color.YellowString(text)
		case "rejected":
			return color.RedString(text)
		}
	}

	return text
}
