package report

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readHistory(t *testing.T, path string) []HistoricalEntry {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var entries []HistoricalEntry
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var e HistoricalEntry
		require.NoError(t, json.Unmarshal(sc.Bytes(), &e))
		entries = append(entries, e)
	}
	require.NoError(t, sc.Err())
	return entries
}

func TestAppendToHistory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.jsonl")
	results := makeTestResults()

	require.NoError(t, AppendToHistory(path, "/tmp/run1", results[:2]...))
	require.NoError(t, AppendToHistory(path, "/tmp/run2", results[2]))

	entries := readHistory(t, path)
	require.Len(t, entries, 3)
	assert.Equal(t, "POS-01", entries[0].CheckID)
	assert.Equal(t, "chrome_win11", entries[0].DescriptorID)
	assert.Equal(t, "3f7c", entries[0].SessionID)
	assert.Equal(t, "5s", entries[0].Duration)
	assert.Equal(t, 2, entries[0].AssertionsPassed)
	assert.Equal(t, "/tmp/run1", entries[1].ResultsPath)
	assert.Equal(t, "failed", entries[2].Status)
	assert.Equal(t, 1, entries[2].AssertionsPassed)
	assert.Equal(t, "/tmp/run2", entries[2].ResultsPath)
}

func TestAppendToHistory_BadPath(t *testing.T) {
	err := AppendToHistory(filepath.Join(t.TempDir(), "missing", "h.jsonl"), "", makeTestResult())
	assert.ErrorContains(t, err, "failed to open history file")
}
