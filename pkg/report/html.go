package report

import (
	"bytes"
	"fmt"
	"html"
	"io"
	"strings"
	"time"

	"digital.vasic.crossbrowser/pkg/check"
)

// HTMLReporter generates HTML reports from check results.
type HTMLReporter struct {
	env Environment
}

// NewHTMLReporter creates a new HTML reporter.
func NewHTMLReporter(env Environment) *HTMLReporter {
	return &HTMLReporter{env: env}
}

func statusClass(status string) string {
	switch status {
	case check.StatusPassed:
		return "status-passed"
	case check.StatusSkipped:
		return "status-skipped"
	}
	return "status-failed"
}

// GenerateReport creates an HTML report for a single result.
func (r *HTMLReporter) GenerateReport(result *check.Result) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.WriteReport(&buf, result); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteReport writes an HTML report to the specified writer.
func (r *HTMLReporter) WriteReport(
	w io.Writer,
	result *check.Result,
) error {
	r.writeHeader(w, Title+": "+result.Name())

	fmt.Fprintf(w, "<h1>%s</h1>\n", html.EscapeString(result.CheckName))
	fmt.Fprintf(w, "<p><strong>Test:</strong> %s</p>\n", html.EscapeString(result.Name()))
	fmt.Fprintf(w, "<p><strong>Generated:</strong> %s</p>\n", result.EndTime.Format(time.RFC3339))

	r.writeSummaryTable(w, result)
	r.writePhasesSection(w, result)
	r.writeAssertionsSection(w, result)

	r.writeFooter(w)
	return nil
}

func (r *HTMLReporter) writeSummaryTable(w io.Writer, result *check.Result) {
	fmt.Fprintln(w, "<h2>Summary</h2>")
	fmt.Fprintln(w, "<table>")
	fmt.Fprintln(w, "<tr><th>Field</th><th>Value</th></tr>")

	row := func(name, value string) {
		fmt.Fprintf(w, "<tr><td>%s</td><td>%s</td></tr>\n", name, html.EscapeString(value))
	}
	fmt.Fprintf(w,
		"<tr><td>Status</td><td class=\"%s\"><strong>%s</strong></td></tr>\n",
		statusClass(result.Status), strings.ToUpper(result.Status),
	)
	row("Check", string(result.CheckID))
	row("Descriptor", result.DescriptorLabel)
	if len(result.Markers) > 0 {
		markers := make([]string, len(result.Markers))
		for i, m := range result.Markers {
			markers[i] = string(m)
		}
		row("Markers", strings.Join(markers, ", "))
	}
	if result.SessionID != "" {
		row("Session", result.SessionID)
	}
	if result.GridStatus != "" {
		row("Reported Status", result.GridStatus)
		row("Reported Reason", result.GridReason)
	}
	row("Start Time", result.StartTime.Format(time.RFC3339))
	row("End Time", result.EndTime.Format(time.RFC3339))
	row("Duration", result.Duration.String())
	if result.Error != "" {
		fmt.Fprintf(w,
			"<tr><td>Error</td><td class=\"status-failed\">%s</td></tr>\n",
			html.EscapeString(result.Error),
		)
	}
	fmt.Fprintln(w, "</table>")
}

func (r *HTMLReporter) writePhasesSection(w io.Writer, result *check.Result) {
	if len(result.Phases) == 0 {
		return
	}
	fmt.Fprintln(w, "<h2>Phases</h2>")
	fmt.Fprintln(w, "<table>")
	fmt.Fprintln(w, "<tr><th>Phase</th><th>Status</th><th>Duration</th><th>Message</th></tr>")
	for _, p := range result.Phases {
		fmt.Fprintf(w,
			"<tr><td>%s</td><td class=\"%s\">%s</td><td>%v</td><td>%s</td></tr>\n",
			html.EscapeString(p.Phase), statusClass(p.Status),
			strings.ToUpper(p.Status), p.Duration.Round(time.Millisecond),
			html.EscapeString(p.Message),
		)
	}
	fmt.Fprintln(w, "</table>")
}

func (r *HTMLReporter) writeAssertionsSection(w io.Writer, result *check.Result) {
	if len(result.Assertions) == 0 {
		return
	}

	fmt.Fprintln(w, "<h2>Assertions</h2>")
	fmt.Fprintln(w, "<table>")
	fmt.Fprintln(w, "<tr><th>Type</th><th>Target</th><th>Passed</th><th>Message</th></tr>")

	for _, a := range result.Assertions {
		passedStr, cls := "No", "status-failed"
		if a.Passed {
			passedStr, cls = "Yes", "status-passed"
		}
		fmt.Fprintf(w,
			"<tr><td>%s</td><td>%s</td><td class=\"%s\">%s</td><td>%s</td></tr>\n",
			html.EscapeString(a.Type), html.EscapeString(a.Target),
			cls, passedStr, html.EscapeString(a.Message),
		)
	}
	fmt.Fprintln(w, "</table>")

	passed, total := passedAssertions(result), len(result.Assertions)
	fmt.Fprintf(w, "<p><strong>Pass Rate:</strong> %d/%d (%.0f%%)</p>\n",
		passed, total, float64(passed)/float64(total)*100)
}

// GenerateMasterSummary creates the HTML report of a whole run:
// environment, a check by descriptor grid, statistics and
// failure details.
func (r *HTMLReporter) GenerateMasterSummary(
	results []*check.Result,
) ([]byte, error) {
	var buf bytes.Buffer
	summary := BuildMasterSummary(results, r.env)

	r.writeHeader(&buf, Title)
	fmt.Fprintf(&buf, "<h1>%s</h1>\n", html.EscapeString(Title))
	fmt.Fprintf(&buf, "<p><strong>Generated:</strong> %s</p>\n",
		summary.GeneratedAt.Format(time.RFC3339))

	r.writeEnvironment(&buf)
	r.writeGrid(&buf, results, summary)
	r.writeMasterStats(&buf, summary)
	r.writeMasterDetails(&buf, results)
	r.writeFooter(&buf)

	return buf.Bytes(), nil
}

func (r *HTMLReporter) writeEnvironment(w io.Writer) {
	fmt.Fprintln(w, "<h2>Environment</h2>")
	fmt.Fprintln(w, "<table id=\"environment\">")
	for _, row := range r.env.Rows() {
		fmt.Fprintf(w, "<tr><td>%s</td><td>%s</td></tr>\n",
			row[0], html.EscapeString(row[1]))
	}
	fmt.Fprintln(w, "</table>")
}

// writeGrid renders one row per check and one column per
// descriptor, both in order of first appearance.
func (r *HTMLReporter) writeGrid(
	w io.Writer,
	results []*check.Result,
	summary *MasterSummary,
) {
	type checkRow struct {
		id    check.ID
		name  string
		cells map[string]*check.Result
	}
	var rows []*checkRow
	byID := make(map[check.ID]*checkRow)
	for _, res := range results {
		row, ok := byID[res.CheckID]
		if !ok {
			row = &checkRow{id: res.CheckID, name: res.CheckName, cells: map[string]*check.Result{}}
			byID[res.CheckID] = row
			rows = append(rows, row)
		}
		row.cells[res.DescriptorID] = res
	}

	fmt.Fprintln(w, "<h2>Results</h2>")
	fmt.Fprintln(w, "<table>")
	fmt.Fprint(w, "<tr><th>Check</th>")
	for _, d := range summary.Descriptors {
		fmt.Fprintf(w, "<th title=\"%s\">%s</th>",
			html.EscapeString(d.Label), html.EscapeString(d.DescriptorID))
	}
	fmt.Fprintln(w, "</tr>")

	for _, row := range rows {
		fmt.Fprintf(w, "<tr><td><strong>%s</strong> %s</td>",
			html.EscapeString(string(row.id)), html.EscapeString(row.name))
		for _, d := range summary.Descriptors {
			res, ok := row.cells[d.DescriptorID]
			if !ok {
				fmt.Fprint(w, "<td>-</td>")
				continue
			}
			fmt.Fprintf(w, "<td class=\"%s\" title=\"%s\">%s</td>",
				statusClass(res.Status), html.EscapeString(res.Error),
				strings.ToUpper(res.Status))
		}
		fmt.Fprintln(w, "</tr>")
	}
	fmt.Fprintln(w, "</table>")
}

func (r *HTMLReporter) writeMasterStats(w io.Writer, summary *MasterSummary) {
	fmt.Fprintln(w, "<h2>Statistics</h2>")
	fmt.Fprintln(w, "<table>")
	fmt.Fprintln(w, "<tr><th>Metric</th><th>Value</th></tr>")
	fmt.Fprintf(w, "<tr><td>Total</td><td>%d</td></tr>\n", summary.Total)
	fmt.Fprintf(w, "<tr><td>Passed</td><td class=\"status-passed\">%d</td></tr>\n", summary.Passed)
	fmt.Fprintf(w, "<tr><td>Failed</td><td class=\"status-failed\">%d</td></tr>\n", summary.Failed)
	fmt.Fprintf(w, "<tr><td>Errors</td><td class=\"status-failed\">%d</td></tr>\n", summary.Errors)
	fmt.Fprintf(w, "<tr><td>Skipped</td><td>%d</td></tr>\n", summary.Skipped)
	fmt.Fprintf(w, "<tr><td>Pass Rate</td><td>%.0f%%</td></tr>\n", summary.PassRate*100)
	fmt.Fprintln(w, "</table>")
}

func (r *HTMLReporter) writeMasterDetails(w io.Writer, results []*check.Result) {
	var failing []*check.Result
	for _, res := range results {
		if res.Status != check.StatusPassed {
			failing = append(failing, res)
		}
	}
	if len(failing) == 0 {
		return
	}

	fmt.Fprintln(w, "<h2>Failure Details</h2>")
	for _, res := range failing {
		fmt.Fprintf(w, "<h3>%s</h3>\n", html.EscapeString(res.Name()))
		fmt.Fprintf(w, "<p><strong>Status:</strong> %s</p>\n", strings.ToUpper(res.Status))
		if res.Error != "" {
			fmt.Fprintf(w, "<p><strong>Error:</strong> %s</p>\n", html.EscapeString(res.Error))
		}
		if res.SessionID != "" {
			fmt.Fprintf(w, "<p><strong>Session:</strong> <code>%s</code></p>\n",
				html.EscapeString(res.SessionID))
		}
	}
}

func (r *HTMLReporter) writeHeader(w io.Writer, title string) {
	fmt.Fprintf(w, `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>%s</title>
<style>
body {
  font-family: -apple-system, BlinkMacSystemFont,
    "Segoe UI", Roboto, sans-serif;
  max-width: 1200px;
  margin: 0 auto;
  padding: 20px;
  color: #333;
  background: #f9f9f9;
}
h1 { color: #2c3e50; border-bottom: 2px solid #3498db; padding-bottom: 10px; }
h2 { color: #2c3e50; margin-top: 30px; }
h3 { color: #34495e; }
table {
  border-collapse: collapse;
  width: 100%%;
  margin: 10px 0;
  background: #fff;
}
th, td {
  border: 1px solid #ddd;
  padding: 8px 12px;
  text-align: left;
}
th { background: #3498db; color: #fff; }
tr:nth-child(even) { background: #f2f2f2; }
.status-passed { color: #27ae60; font-weight: bold; }
.status-failed { color: #e74c3c; font-weight: bold; }
.status-skipped { color: #7f8c8d; }
code {
  background: #ecf0f1;
  padding: 2px 6px;
  border-radius: 3px;
  font-size: 0.9em;
}
footer {
  margin-top: 40px;
  padding-top: 10px;
  border-top: 1px solid #ddd;
  color: #7f8c8d;
  font-size: 0.9em;
}
</style>
</head>
<body>
`, html.EscapeString(title))
}

func (r *HTMLReporter) writeFooter(w io.Writer) {
	fmt.Fprintln(w, "<footer>")
	fmt.Fprintf(w, "<p>%s · %s</p>\n",
		html.EscapeString(r.env.Organization), html.EscapeString(r.env.Grid))
	fmt.Fprintln(w, "</footer>")
	fmt.Fprintln(w, "</body>")
	fmt.Fprintln(w, "</html>")
}
