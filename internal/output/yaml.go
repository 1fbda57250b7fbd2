package output

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/rrey/collection-ganeti/internal/rapi"
	"github.com/rrey/collection-ganeti/internal/reconcile"
)

// YAMLFormatter formats resources as YAML.
type YAMLFormatter struct{}

// FormatResult formats a reconciliation result as YAML.
func (f *YAMLFormatter) FormatResult(res *reconcile.Result) (string, error) {
	data, err := yaml.Marshal(res)
	if err != nil {
		return "", fmt.Errorf("failed to marshal result to YAML: %w", err)
	}

	return string(data), nil
}

// FormatInstance formats an observed instance as YAML.
func (f *YAMLFormatter) FormatInstance(inst *rapi.Instance) (string, error) {
	data, err := yaml.Marshal(inst)
	if err != nil {
		return "", fmt.Errorf("failed to marshal instance to YAML: %w", err)
	}

	return string(data), nil
}
