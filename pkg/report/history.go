package report

import (
	"fmt"
	"os"
	"time"

	"digital.vasic.crossbrowser/pkg/check"
)

// HistoricalEntry represents a single invocation in the
// historical log.
type HistoricalEntry struct {
	Timestamp        time.Time `json:"timestamp"`
	CheckID          string    `json:"check_id"`
	DescriptorID     string    `json:"descriptor_id"`
	SessionID        string    `json:"session_id,omitempty"`
	Status           string    `json:"status"`
	GridStatus       string    `json:"grid_status,omitempty"`
	Duration         string    `json:"duration"`
	AssertionsPassed int       `json:"assertions_passed"`
	AssertionsTotal  int       `json:"assertions_total"`
	ResultsPath      string    `json:"results_path"`
}

// AppendToHistory adds entries for results to the historical log
// stored at historyPath. Each entry is a single JSON line.
func AppendToHistory(
	historyPath string,
	resultsPath string,
	results ...*check.Result,
) error {
	file, err := os.OpenFile(
		historyPath,
		os.O_CREATE|os.O_APPEND|os.O_WRONLY,
		0644,
	)
	if err != nil {
		return fmt.Errorf("failed to open history file: %w", err)
	}
	defer func() { _ = file.Close() }()

	for _, result := range results {
		data, err := jsonMarshal(HistoricalEntry{
			Timestamp:        result.EndTime,
			CheckID:          string(result.CheckID),
			DescriptorID:     result.DescriptorID,
			SessionID:        result.SessionID,
			Status:           result.Status,
			GridStatus:       result.GridStatus,
			Duration:         result.Duration.String(),
			AssertionsPassed: passedAssertions(result),
			AssertionsTotal:  len(result.Assertions),
			ResultsPath:      resultsPath,
		})
		if err != nil {
			return fmt.Errorf("failed to marshal history entry: %w", err)
		}
		if _, err := fmt.Fprintln(file, string(data)); err != nil {
			return fmt.Errorf("failed to write history entry: %w", err)
		}
	}
	return nil
}
