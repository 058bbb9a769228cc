package capability

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"digital.vasic.crossbrowser/pkg/matrix"
)

var (
	desktopKeys = []string{"os", "osVersion", "browserVersion"}
	deviceKeys  = []string{"deviceName", "osVersion", "realMobile"}
)

func TestBuild_Desktop(t *testing.T) {
	d, ok := matrix.Default().Get("chrome_win11")
	require.True(t, ok)

	req, err := Build(d, DefaultDefaults())
	require.NoError(t, err)

	assert.Equal(t, map[string]any{
		"browserName": "chrome",
		"bstack:options": map[string]any{
			"projectName":    "Prodigy Infotech Task-04",
			"buildName":      "Cross-Browser Login Suite v1.0",
			"networkLogs":    true,
			"consoleLogs":    "verbose",
			"video":          true,
			"screenshots":    true,
			"sessionName":    "Chrome (Latest) · Windows 11",
			"os":             "Windows",
			"osVersion":      "11",
			"browserVersion": "latest",
		},
	}, req.Map())
	assert.Equal(t, "chrome_win11", req.DescriptorID())
}

func TestBuild_Device(t *testing.T) {
	d, ok := matrix.Default().Get("iphone15")
	require.True(t, ok)

	req, err := NewBuilder(DefaultDefaults()).Build(d)
	require.NoError(t, err)

	v := req.Vendor()
	assert.Equal(t, "iPhone 15", v["deviceName"])
	assert.Equal(t, "17", v["osVersion"])
	assert.Equal(t, "true", v["realMobile"])
	assert.NotContains(t, v, "os")
	assert.NotContains(t, v, "browserVersion")
	assert.Equal(t, "safari", req.BrowserName())
	assert.Equal(t, "Safari · iPhone 15 · iOS 17", req.SessionName())
}

func TestBuild_NeitherVariant(t *testing.T) {
	_, err := Build(matrix.Descriptor{ID: "ghost", Label: "Ghost"}, DefaultDefaults())

	var cfgErr *ConfigurationError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, "ghost", cfgErr.DescriptorID)
}

func TestBuild_InvalidTargetFields(t *testing.T) {
	d := matrix.Descriptor{ID: "half", Label: "Half", Target: matrix.DesktopTarget{Browser: "chrome"}}
	_, err := Build(d, DefaultDefaults())

	var cfgErr *ConfigurationError
	require.True(t, errors.As(err, &cfgErr))
	assert.Contains(t, cfgErr.Reason, "browser_version")
}

func TestRequest_Immutable(t *testing.T) {
	d, _ := matrix.Default().Get("firefox_ventura")
	req, err := Build(d, DefaultDefaults())
	require.NoError(t, err)

	m := req.Map()
	m["browserName"] = "lynx"
	m[VendorNamespace].(map[string]any)["sessionName"] = "tampered"
	req.Vendor()["os"] = "Plan 9"

	assert.Equal(t, "firefox", req.BrowserName())
	assert.Equal(t, "Firefox (Latest) · macOS Ventura", req.SessionName())
	osName, _ := req.Option("os")
	assert.Equal(t, "OS X", osName)
}

func TestRequest_JSON(t *testing.T) {
	d, _ := matrix.Default().Get("galaxy_s23")
	req, err := Build(d, DefaultDefaults())
	require.NoError(t, err)

	data, err := req.JSON()
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "chrome", decoded["browserName"])
	assert.Equal(t, "Samsung Galaxy S23", decoded[VendorNamespace].(map[string]any)["deviceName"])
	assert.True(t, Request{}.IsZero())
	assert.False(t, req.IsZero())
}

func TestBuild_Deterministic(t *testing.T) {
	for _, d := range matrix.Default() {
		a, err := Build(d, DefaultDefaults())
		require.NoError(t, err)
		b, err := Build(d, DefaultDefaults())
		require.NoError(t, err)
		assert.Equal(t, a.Map(), b.Map(), d.ID)
	}
}

func TestBuild_ExactlyOneFieldSet_Property(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		label := rapid.StringMatching(`[A-Za-z0-9 ·()-]{1,40}`).Draw(rt, "label")
		browser := rapid.SampledFrom([]string{"chrome", "Firefox", "EDGE", "safari", "netscape"}).Draw(rt, "browser")

		var target matrix.Target
		device := rapid.Bool().Draw(rt, "device")
		if device {
			target = matrix.DeviceTarget{
				Device:    rapid.StringMatching(`[A-Za-z0-9 ]{1,20}`).Draw(rt, "deviceName"),
				OSVersion: rapid.StringMatching(`[0-9.]{1,5}`).Draw(rt, "osVersion"),
				Browser:   browser,
			}
		} else {
			target = matrix.DesktopTarget{
				Browser:        browser,
				BrowserVersion: rapid.StringMatching(`latest(-[1-3])?|[0-9]{2}\.0`).Draw(rt, "version"),
				OS:             rapid.SampledFrom([]string{"Windows", "OS X"}).Draw(rt, "os"),
				OSVersion:      rapid.StringMatching(`[0-9A-Za-z]{1,8}`).Draw(rt, "osVersion"),
			}
		}
		d := matrix.Descriptor{ID: "prop", Label: label, Target: target}

		req, err := Build(d, DefaultDefaults())
		if err != nil {
			rt.Fatalf("build failed: %v", err)
		}
		if req.SessionName() != label {
			rt.Fatalf("session name %q != label %q", req.SessionName(), label)
		}

		v := req.Vendor()
		has := func(keys []string) (all, some bool) {
			all = true
			for _, k := range keys {
				if _, ok := v[k]; ok {
					some = true
				} else {
					all = false
				}
			}
			return all, some
		}
		// osVersion is shared, so compare the variant-only keys.
		_, deskAny := has([]string{"os", "browserVersion"})
		_, devAny := has([]string{"deviceName", "realMobile"})
		deskAll, _ := has(desktopKeys)
		devAll, _ := has(deviceKeys)

		if device && (!devAll || deskAny) {
			rt.Fatalf("device request has wrong fields: %v", v)
		}
		if !device && (!deskAll || devAny) {
			rt.Fatalf("desktop request has wrong fields: %v", v)
		}
	})
}
