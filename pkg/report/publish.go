package report

import (
	"fmt"
	"os"
	"path/filepath"

	"digital.vasic.crossbrowser/pkg/check"
)

// File names written by Publish.
const (
	HTMLFile    = "report.html"
	JSONFile    = "report.json"
	HistoryFile = "history.jsonl"
)

// Paths lists the files written by Publish.
type Paths struct {
	Dir     string
	HTML    string
	JSON    string
	History string
}

// Publish writes the HTML and JSON run reports, the master
// summary and the history entries for results into dir.
func Publish(
	dir string,
	results []*check.Result,
	env Environment,
) (*MasterSummary, Paths, error) {
	paths := Paths{
		Dir:     dir,
		HTML:    filepath.Join(dir, HTMLFile),
		JSON:    filepath.Join(dir, JSONFile),
		History: filepath.Join(dir, HistoryFile),
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, paths, fmt.Errorf("failed to create report directory: %w", err)
	}

	htmlData, err := NewHTMLReporter(env).GenerateMasterSummary(results)
	if err != nil {
		return nil, paths, err
	}
	if err := os.WriteFile(paths.HTML, htmlData, 0644); err != nil {
		return nil, paths, fmt.Errorf("failed to write HTML report: %w", err)
	}

	summary := BuildMasterSummary(results, env)
	jsonData, err := jsonMarshalIndent(summary, "", "  ")
	if err != nil {
		return nil, paths, fmt.Errorf("failed to marshal report: %w", err)
	}
	if err := os.WriteFile(paths.JSON, jsonData, 0644); err != nil {
		return nil, paths, fmt.Errorf("failed to write JSON report: %w", err)
	}

	if err := SaveMasterSummary(summary, dir); err != nil {
		return nil, paths, err
	}
	if err := AppendToHistory(paths.History, dir, results...); err != nil {
		return nil, paths, err
	}
	return summary, paths, nil
}
