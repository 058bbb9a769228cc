package grid_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"digital.vasic.crossbrowser/pkg/capability"
	"digital.vasic.crossbrowser/pkg/grid"
	"digital.vasic.crossbrowser/pkg/matrix"
)

func TestAdapterFor(t *testing.T) {
	tests := []struct {
		browser string
		want    string
	}{
		{"chrome", "chrome"},
		{"Chrome", "chrome"},
		{"FIREFOX", "firefox"},
		{" edge ", "MicrosoftEdge"},
		{"safari", "safari"},
		{"opera", "chrome"},
		{"", "chrome"},
	}

	for _, tt := range tests {
		t.Run(tt.browser, func(t *testing.T) {
			assert.Equal(t, tt.want, grid.AdapterFor(tt.browser).Name())
		})
	}
}

func TestAdapter_RequestOverridesBrowserName(t *testing.T) {
	d, ok := matrix.Default().Get("edge_win11")
	require.True(t, ok)
	req, err := capability.Build(d, capability.DefaultDefaults())
	require.NoError(t, err)

	caps := grid.AdapterFor("edge").Capabilities(req)

	assert.Equal(t, "edge", caps["browserName"])
	vendor, ok := caps[capability.VendorNamespace].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Edge (Latest) · Windows 11", vendor["sessionName"])
}

func TestAdapter_UnknownBrowserFallsBack(t *testing.T) {
	d, err := matrix.NewDesktop("opera_win", "Opera", matrix.DesktopTarget{
		Browser: "opera", BrowserVersion: "latest", OS: "Windows", OSVersion: "11",
	})
	require.NoError(t, err)
	req, err := capability.Build(d, capability.DefaultDefaults())
	require.NoError(t, err)

	adapter := grid.AdapterFor(req.BrowserName())
	assert.Equal(t, "chrome", adapter.Name())
	assert.Equal(t, "opera", adapter.Capabilities(req)["browserName"])
}
