package report

import (
	"io"

	"digital.vasic.crossbrowser/pkg/check"
)

// JSONReporter generates JSON reports from check results.
type JSONReporter struct {
	env    Environment
	pretty bool
}

// NewJSONReporter creates a new JSON reporter. When pretty is
// true, output is indented for readability.
func NewJSONReporter(env Environment, pretty bool) *JSONReporter {
	return &JSONReporter{env: env, pretty: pretty}
}

func (r *JSONReporter) marshal(v any) ([]byte, error) {
	if r.pretty {
		return jsonMarshalIndent(v, "", "  ")
	}
	return jsonMarshal(v)
}

// GenerateReport creates a JSON report for a single result.
func (r *JSONReporter) GenerateReport(result *check.Result) ([]byte, error) {
	return r.marshal(result)
}

// GenerateMasterSummary renders BuildMasterSummary as JSON.
func (r *JSONReporter) GenerateMasterSummary(
	results []*check.Result,
) ([]byte, error) {
	return r.marshal(BuildMasterSummary(results, r.env))
}

// WriteReport writes a JSON report to the specified writer.
func (r *JSONReporter) WriteReport(
	w io.Writer,
	result *check.Result,
) error {
	data, err := r.GenerateReport(result)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}
