package format

import (
	"fmt"
	"reflect"
	"strings"
	"time"
)

// TextFormatter handles simple text output formatting
type TextFormatter struct{}

// NewTextFormatter creates a new text formatter
func NewTextFormatter() *TextFormatter {
	return &TextFormatter{}
}

// Format formats data as simple key: value text
func (f *TextFormatter) Format(data interface{}) error {
	if data == nil {
		fmt.Println("No data")
		return nil
	}

	if s, ok := data.(string); ok {
		fmt.Println(s)
		return nil
	}

	v := reflect.ValueOf(data)
	if v.Kind() == reflect.Ptr {
		if v.IsNil() {
			fmt.Println("No data")
			return nil
		}
		v = v.Elem()
	}

	switch v.Kind() {
	case reflect.Struct:
		f.printStruct(v, "")
	case reflect.Slice:
		if v.Len() == 0 {
			fmt.Println("No data")
			return nil
		}
		for i := 0; i < v.Len(); i++ {
			if i > 0 {
				fmt.Println()
			}
			fmt.Printf("Item %d:\n", i+1)
			elem := v.Index(i)
			if elem.Kind() == reflect.Ptr {
				elem = elem.Elem()
			}
			if elem.Kind() == reflect.Struct {
				f.printStruct(elem, "  ")
			} else {
				fmt.Printf("  %v\n", elem.Interface())
			}
		}
	default:
		fmt.Printf("%v\n", data)
	}

	return nil
}

func (f *TextFormatter) printStruct(v reflect.Value, indent string) {
	t := v.Type()
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

		if value.Kind() == reflect.Struct && value.Type() != reflect.TypeOf(time.Time{}) {
			fmt.Printf("%s%s:\n", indent, f.formatKey(field.Name))
			f.printStruct(value, indent+"  ")
			continue
		}

		fmt.Printf("%s%s: %v\n", indent, f.formatKey(field.Name), value.Interface())
	}
}

// formatKey converts a Go field name to a spaced display label
func (f *TextFormatter) formatKey(key string) string {
	var b strings.Builder
	for i, r := range key {
		if i > 0 && r >= 'A' && r <= 'Z' {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	return b.String()
}
