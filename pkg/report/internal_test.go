package report

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppendToHistory_MarshalError(t *testing.T) {
	original := jsonMarshal
	t.Cleanup(func() { jsonMarshal = original })
	jsonMarshal = func(any) ([]byte, error) { return nil, assert.AnError }

	err := AppendToHistory(filepath.Join(t.TempDir(), "h.jsonl"), "", makeTestResult())
	assert.ErrorContains(t, err, "marshal history entry")
}

func TestSaveMasterSummary_MarshalError(t *testing.T) {
	original := jsonMarshalIndent
	t.Cleanup(func() { jsonMarshalIndent = original })
	jsonMarshalIndent = func(any, string, string) ([]byte, error) { return nil, assert.AnError }

	err := SaveMasterSummary(BuildMasterSummary(nil, testEnv()), t.TempDir())
	assert.ErrorContains(t, err, "marshal summary")
}

func TestJSONReporter_MarshalError(t *testing.T) {
	original := jsonMarshal
	t.Cleanup(func() { jsonMarshal = original })
	jsonMarshal = func(any) ([]byte, error) { return nil, assert.AnError }

	_, err := NewJSONReporter(testEnv(), false).GenerateReport(makeTestResult())
	assert.ErrorIs(t, err, assert.AnError)
}
