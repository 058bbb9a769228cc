package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"digital.vasic.crossbrowser/pkg/check"
)

// MarkdownReporter generates Markdown reports from check results.
type MarkdownReporter struct {
	env Environment
}

// NewMarkdownReporter creates a new Markdown reporter.
func NewMarkdownReporter(env Environment) *MarkdownReporter {
	return &MarkdownReporter{env: env}
}

// GenerateReport creates a Markdown report for a single result.
func (r *MarkdownReporter) GenerateReport(result *check.Result) ([]byte, error) {
	var sb strings.Builder
	if err := r.WriteReport(&sb, result); err != nil {
		return nil, err
	}
	return []byte(sb.String()), nil
}

// WriteReport writes a Markdown report to w.
func (r *MarkdownReporter) WriteReport(w io.Writer, result *check.Result) error {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", result.Name())
	fmt.Fprintf(&sb, "**Check:** %s\n\n", result.CheckName)
	fmt.Fprintf(&sb, "**Descriptor:** %s\n\n", result.DescriptorLabel)
	fmt.Fprintf(&sb, "**Status:** %s\n\n", strings.ToUpper(result.Status))
	fmt.Fprintf(&sb, "**Duration:** %v\n\n", result.Duration.Round(time.Millisecond))
	if result.Error != "" {
		fmt.Fprintf(&sb, "**Error:** %s\n\n", result.Error)
	}

	if len(result.Assertions) > 0 {
		sb.WriteString("## Assertions\n\n")
		sb.WriteString("| Type | Target | Passed | Message |\n")
		sb.WriteString("|------|--------|--------|---------|\n")
		for _, a := range result.Assertions {
			passed := "No"
			if a.Passed {
				passed = "Yes"
			}
			fmt.Fprintf(&sb, "| %s | %s | %s | %s |\n", a.Type, a.Target, passed, a.Message)
		}
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

// GenerateMasterSummary renders the run summary as Markdown.
func (r *MarkdownReporter) GenerateMasterSummary(
	results []*check.Result,
) ([]byte, error) {
	return []byte(generateSummaryMarkdown(BuildMasterSummary(results, r.env))), nil
}
