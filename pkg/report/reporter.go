// Package report renders check results as JSON, HTML and Markdown
// and keeps a JSONL history of past invocations.
package report

import (
	"encoding/json"
	"io"

	"digital.vasic.crossbrowser/pkg/check"
)

// Injection points for marshal failures in tests.
var (
	jsonMarshal       = json.Marshal
	jsonMarshalIndent = json.MarshalIndent
)

// Reporter defines the interface for generating check reports.
type Reporter interface {
	// GenerateReport creates a report for a single invocation.
	GenerateReport(result *check.Result) ([]byte, error)

	// GenerateMasterSummary creates a summary of a whole run.
	GenerateMasterSummary(results []*check.Result) ([]byte, error)

	// WriteReport writes a report to the specified writer.
	WriteReport(w io.Writer, result *check.Result) error
}

func passedAssertions(r *check.Result) int {
	n := 0
	for _, a := range r.Assertions {
		if a.Passed {
			n++
		}
	}
	return n
}
