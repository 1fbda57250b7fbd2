package output

import (
	"encoding/json"
	"fmt"

	"github.com/rrey/collection-ganeti/internal/rapi"
	"github.com/rrey/collection-ganeti/internal/reconcile"
)

// JSONFormatter formats resources as JSON.
type JSONFormatter struct{}

// FormatResult formats a reconciliation result as JSON.
func (f *JSONFormatter) FormatResult(res *reconcile.Result) (string, error) {
	data, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal result to JSON: %w", err)
	}

	return string(data) + "\n", nil
}

// FormatInstance formats an observed instance as JSON.
func (f *JSONFormatter) FormatInstance(inst *rapi.Instance) (string, error) {
	data, err := json.MarshalIndent(inst, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal instance to JSON: %w", err)
	}

	return string(data) + "\n", nil
}
