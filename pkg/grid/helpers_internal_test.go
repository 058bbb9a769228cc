package grid

import (
	"testing"

	"github.com/stretchr/testify/require"

	"digital.vasic.crossbrowser/pkg/capability"
	"digital.vasic.crossbrowser/pkg/matrix"
)

func buildTestRequest(t *testing.T) capability.Request {
	t.Helper()
	d, ok := matrix.Default().Get("chrome_win11")
	require.True(t, ok)
	req, err := capability.Build(d, capability.DefaultDefaults())
	require.NoError(t, err)
	return req
}
