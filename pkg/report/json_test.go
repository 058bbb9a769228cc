package report

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"digital.vasic.crossbrowser/pkg/check"
)

func TestJSONReporter_GenerateReport(t *testing.T) {
	data, err := NewJSONReporter(testEnv(), false).GenerateReport(makeTestResult())
	require.NoError(t, err)
	assert.NotContains(t, string(data), "\n")

	var decoded check.Result
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, check.ID("POS-01"), decoded.CheckID)
	assert.Equal(t, "chrome_win11", decoded.DescriptorID)
	assert.Len(t, decoded.Phases, 3)
	assert.Equal(t, "passed", decoded.GridStatus)
}

func TestJSONReporter_Pretty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewJSONReporter(testEnv(), true).WriteReport(&buf, makeTestResult()))
	assert.Contains(t, buf.String(), "\n  \"check_id\": \"POS-01\"")
}

func TestJSONReporter_MasterSummary(t *testing.T) {
	data, err := NewJSONReporter(testEnv(), true).GenerateMasterSummary(makeTestResults())
	require.NoError(t, err)

	var decoded MasterSummary
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, 4, decoded.Total)
	assert.Equal(t, "Prodigy Infotech", decoded.Environment.Organization)
	assert.Len(t, decoded.Invocations, 4)
}
