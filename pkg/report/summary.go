package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"digital.vasic.crossbrowser/pkg/check"
)

// MasterSummary represents an aggregated summary of one run
// across the matrix.
type MasterSummary struct {
	ID          string                  `json:"id"`
	GeneratedAt time.Time               `json:"generated_at"`
	Environment Environment             `json:"environment"`
	Invocations []InvocationSummary     `json:"invocations"`
	Descriptors []DescriptorSummary     `json:"descriptors"`
	Total       int                     `json:"total"`
	Passed      int                     `json:"passed"`
	Failed      int                     `json:"failed"`
	Errors      int                     `json:"errors"`
	Skipped     int                     `json:"skipped"`
	ByMarker    map[check.Marker]Counts `json:"by_marker"`
	// TotalDuration sums invocation durations; with parallel
	// sessions it exceeds wall-clock time.
	TotalDuration time.Duration `json:"total_duration"`
	PassRate      float64       `json:"pass_rate"`
}

// Counts tallies invocations by outcome.
type Counts struct {
	Total  int `json:"total"`
	Passed int `json:"passed"`
}

// InvocationSummary represents one check on one descriptor.
type InvocationSummary struct {
	Name             string        `json:"name"`
	CheckID          check.ID      `json:"check_id"`
	CheckName        string        `json:"check_name"`
	DescriptorID     string        `json:"descriptor_id"`
	DescriptorLabel  string        `json:"descriptor_label"`
	Status           string        `json:"status"`
	Duration         time.Duration `json:"duration"`
	AssertionsPassed int           `json:"assertions_passed"`
	AssertionsTotal  int           `json:"assertions_total"`
	Error            string        `json:"error,omitempty"`
}

// DescriptorSummary aggregates the invocations of one matrix row.
type DescriptorSummary struct {
	DescriptorID string `json:"descriptor_id"`
	Label        string `json:"label"`
	Counts
}

// BuildMasterSummary creates a master summary from results.
// Descriptors are listed in order of first appearance.
func BuildMasterSummary(
	results []*check.Result,
	env Environment,
) *MasterSummary {
	now := time.Now()
	summary := &MasterSummary{
		ID:          fmt.Sprintf("summary_%s", now.Format("20060102_150405")),
		GeneratedAt: now,
		Environment: env,
		Invocations: make([]InvocationSummary, 0, len(results)),
		ByMarker:    make(map[check.Marker]Counts),
	}

	descIndex := make(map[string]int)
	for _, r := range results {
		summary.Invocations = append(summary.Invocations, InvocationSummary{
			Name:             r.Name(),
			CheckID:          r.CheckID,
			CheckName:        r.CheckName,
			DescriptorID:     r.DescriptorID,
			DescriptorLabel:  r.DescriptorLabel,
			Status:           r.Status,
			Duration:         r.Duration,
			AssertionsPassed: passedAssertions(r),
			AssertionsTotal:  len(r.Assertions),
			Error:            r.Error,
		})
		summary.Total++
		summary.TotalDuration += r.Duration

		passed := r.Status == check.StatusPassed
		switch r.Status {
		case check.StatusPassed:
			summary.Passed++
		case check.StatusFailed:
			summary.Failed++
		case check.StatusSkipped:
			summary.Skipped++
		default:
			summary.Errors++
		}

		i, ok := descIndex[r.DescriptorID]
		if !ok {
			i = len(summary.Descriptors)
			descIndex[r.DescriptorID] = i
			summary.Descriptors = append(summary.Descriptors, DescriptorSummary{
				DescriptorID: r.DescriptorID,
				Label:        r.DescriptorLabel,
			})
		}
		summary.Descriptors[i].Counts = summary.Descriptors[i].add(passed)

		for _, m := range r.Markers {
			summary.ByMarker[m] = summary.ByMarker[m].add(passed)
		}
	}

	if executed := summary.Total - summary.Skipped; executed > 0 {
		summary.PassRate = float64(summary.Passed) / float64(executed)
	}
	return summary
}

func (c Counts) add(passed bool) Counts {
	c.Total++
	if passed {
		c.Passed++
	}
	return c
}

// Succeeded reports whether every executed invocation passed.
func (s *MasterSummary) Succeeded() bool {
	return s.Failed == 0 && s.Errors == 0
}

// SaveMasterSummary saves the master summary to both JSON and
// Markdown files in the given output directory and points
// latest_summary.{json,md} at them.
func SaveMasterSummary(
	summary *MasterSummary,
	outputDir string,
) error {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	ts := summary.GeneratedAt.Format("20060102_150405")

	jsonPath := filepath.Join(outputDir, fmt.Sprintf("master_summary_%s.json", ts))
	jsonData, err := jsonMarshalIndent(summary, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal summary: %w", err)
	}
	if err := os.WriteFile(jsonPath, jsonData, 0644); err != nil {
		return fmt.Errorf("failed to write JSON summary: %w", err)
	}

	mdPath := filepath.Join(outputDir, fmt.Sprintf("master_summary_%s.md", ts))
	if err := os.WriteFile(
		mdPath, []byte(generateSummaryMarkdown(summary)), 0644,
	); err != nil {
		return fmt.Errorf("failed to write Markdown summary: %w", err)
	}

	latestJSON := filepath.Join(outputDir, "latest_summary.json")
	latestMD := filepath.Join(outputDir, "latest_summary.md")

	_ = os.Remove(latestJSON)
	_ = os.Remove(latestMD)
	_ = os.Symlink(filepath.Base(jsonPath), latestJSON)
	_ = os.Symlink(filepath.Base(mdPath), latestMD)

	return nil
}

// generateSummaryMarkdown creates markdown from a master
// summary.
func generateSummaryMarkdown(summary *MasterSummary) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "# %s\n\n", Title)
	fmt.Fprintf(&sb, "**Summary ID:** %s\n\n", summary.ID)
	fmt.Fprintf(&sb, "**Generated:** %s\n\n", summary.GeneratedAt.Format(time.RFC3339))

	sb.WriteString("## Environment\n\n")
	sb.WriteString("| Name | Value |\n")
	sb.WriteString("|------|-------|\n")
	for _, row := range summary.Environment.Rows() {
		fmt.Fprintf(&sb, "| %s | %s |\n", row[0], row[1])
	}

	sb.WriteString("\n## Descriptors\n\n")
	sb.WriteString("| Descriptor | Passed |\n")
	sb.WriteString("|------------|--------|\n")
	for _, d := range summary.Descriptors {
		fmt.Fprintf(&sb, "| %s | %d/%d |\n", d.Label, d.Passed, d.Total)
	}

	sb.WriteString("\n## Invocations\n\n")
	sb.WriteString("| Test | Status | Duration | Assertions |\n")
	sb.WriteString("|------|--------|----------|------------|\n")
	for _, inv := range summary.Invocations {
		fmt.Fprintf(&sb, "| %s | %s | %v | %d/%d |\n",
			inv.Name, strings.ToUpper(inv.Status),
			inv.Duration.Round(time.Millisecond),
			inv.AssertionsPassed, inv.AssertionsTotal,
		)
	}

	var failures []InvocationSummary
	for _, inv := range summary.Invocations {
		if inv.Status != check.StatusPassed && inv.Error != "" {
			failures = append(failures, inv)
		}
	}
	if len(failures) > 0 {
		sb.WriteString("\n## Failures\n\n")
		for _, inv := range failures {
			fmt.Fprintf(&sb, "- **%s**: %s\n", inv.Name, inv.Error)
		}
	}

	sb.WriteString("\n## Statistics\n\n")
	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|--------|-------|\n")
	fmt.Fprintf(&sb, "| Total | %d |\n", summary.Total)
	fmt.Fprintf(&sb, "| Passed | %d |\n", summary.Passed)
	fmt.Fprintf(&sb, "| Failed | %d |\n", summary.Failed)
	fmt.Fprintf(&sb, "| Errors | %d |\n", summary.Errors)
	fmt.Fprintf(&sb, "| Skipped | %d |\n", summary.Skipped)
	fmt.Fprintf(&sb, "| Pass Rate | %.0f%% |\n", summary.PassRate*100)
	fmt.Fprintf(&sb, "| Total Duration | %v |\n", summary.TotalDuration)

	return sb.String()
}
