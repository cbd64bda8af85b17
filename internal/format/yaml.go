package format

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// YAMLFormatter renders payloads as YAML using the models' yaml tags,
// which use snake_case keys rather than the API's camelCase.
type YAMLFormatter struct{}

// NewYAMLFormatter creates a new YAML formatter
func NewYAMLFormatter() *YAMLFormatter {
	return &YAMLFormatter{}
}

// Format formats data as YAML
func (f *YAMLFormatter) Format(data interface{}) error {
	output, err := yaml.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal YAML: %w", err)
	}

	fmt.Print(string(output))
	return nil
}
