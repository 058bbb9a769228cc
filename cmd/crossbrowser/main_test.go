package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"digital.vasic.crossbrowser/pkg/config"
	"digital.vasic.crossbrowser/pkg/env"
	"digital.vasic.crossbrowser/pkg/grid"
	"digital.vasic.crossbrowser/pkg/grid/gridtest"
	"digital.vasic.crossbrowser/pkg/matrix"
	"digital.vasic.crossbrowser/pkg/report"
	"digital.vasic.crossbrowser/pkg/site/sitetest"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"BROWSERSTACK_USERNAME", "BROWSERSTACK_ACCESS_KEY", "BROWSERSTACK_HUB_HOST",
		config.EnvParallelism, config.EnvMarkers, config.EnvDescriptors,
		config.EnvReportDir, config.EnvTargetURL, config.EnvBuildName,
	} {
		t.Setenv(k, "")
	}
}

// execute runs the CLI against emulated sites built by dial.
func execute(t *testing.T, dial func(string) grid.Session, args ...string) (string, string, error) {
	t.Helper()
	clearEnv(t)
	if dial == nil {
		dial = sitetest.Dial
	}
	root := newRootCommand(options{
		dialer: &gridtest.Dialer{New: dial},
		loader: env.NewLoader(),
	})
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), errOut.String(), err
}

// suiteConfig writes a fast configuration rooted in a temp dir.
func suiteConfig(t *testing.T) (path, dir string) {
	t.Helper()
	dir = t.TempDir()
	path = filepath.Join(dir, "suite.yaml")
	content := "wait_timeout: 300ms\n" +
		"report_dir: " + filepath.Join(dir, "reports") + "\n" +
		"logs_dir: " + filepath.Join(dir, "logs") + "\n" +
		"env_file: \"\"\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path, dir
}

func TestMatrixCommand(t *testing.T) {
	out, _, err := execute(t, nil, "matrix")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 12)
	assert.True(t, strings.HasPrefix(lines[0], "ID"))
	assert.Contains(t, out, "chrome_win11")
	assert.Contains(t, out, "Safari · iPhone 15 · iOS 17")
	assert.Contains(t, out, "Samsung Galaxy S23 (13.0)")
}

func TestMatrixCommand_YAMLRoundTrips(t *testing.T) {
	out, _, err := execute(t, nil, "matrix", "--yaml")
	require.NoError(t, err)

	m, err := matrix.Parse([]byte(out))
	require.NoError(t, err)
	assert.Equal(t, matrix.Default().IDs(), m.IDs())
}

func TestCapsCommand(t *testing.T) {
	out, _, err := execute(t, nil, "caps", "iphone15")
	require.NoError(t, err)
	assert.Contains(t, out, `"bstack:options"`)
	assert.Contains(t, out, `"deviceName": "iPhone 15"`)
	assert.Contains(t, out, `"realMobile": "true"`)
	assert.Contains(t, out, `"sessionName": "Safari · iPhone 15 · iOS 17"`)

	_, _, err = execute(t, nil, "caps", "netscape_95")
	assert.ErrorContains(t, err, `unknown descriptor "netscape_95"`)
}

func TestChecksCommand(t *testing.T) {
	out, _, err := execute(t, nil, "checks", "-m", "security")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Len(t, lines, 6)
	assert.Contains(t, out, "NEG-06")

	_, _, err = execute(t, nil, "checks", "-m", "smoke")
	assert.ErrorContains(t, err, "unknown marker")
}

func TestRunCommand_Passes(t *testing.T) {
	cfgPath, dir := suiteConfig(t)

	out, _, err := execute(t, nil,
		"run", "-c", cfgPath,
		"-m", "security",
		"--descriptors", "chrome_win11,iphone15",
		"-p", "4",
	)
	require.NoError(t, err)
	assert.Contains(t, out, "10 passed, 0 failed, 0 errors, 0 skipped of 10 (completed)")

	reportDir := filepath.Join(dir, "reports")
	html, err := os.ReadFile(filepath.Join(reportDir, report.HTMLFile))
	require.NoError(t, err)
	assert.Contains(t, string(html), "4 sessions in parallel")
	assert.Contains(t, string(html), "NEG-06")

	_, err = os.Stat(filepath.Join(reportDir, report.HistoryFile))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "logs", "suite.log"))
	assert.NoError(t, err)
}

func TestRunCommand_FailureExitsWithRunFailed(t *testing.T) {
	cfgPath, _ := suiteConfig(t)
	broken := func(id string) grid.Session {
		s := sitetest.New(id)
		s.NeverRedirect = true
		return s
	}

	out, _, err := execute(t, broken,
		"run", "-c", cfgPath, "--only", "POS-01", "--descriptors", "edge_win10",
	)
	assert.ErrorIs(t, err, errRunFailed)
	assert.Contains(t, out, "0 passed, 1 failed")
}

func TestRunCommand_SelectionErrors(t *testing.T) {
	cfgPath, _ := suiteConfig(t)

	_, _, err := execute(t, nil, "run", "-c", cfgPath, "-m", "smoke")
	assert.ErrorContains(t, err, "unknown marker")

	_, _, err = execute(t, nil, "run", "-c", cfgPath, "--only", "POS-42")
	assert.Error(t, err)

	_, _, err = execute(t, nil, "run", "-c", cfgPath, "-m", "positive", "--only", "NEG-01")
	assert.ErrorContains(t, err, "no checks match")

	_, _, err = execute(t, nil, "run", "-c", cfgPath, "-p", "0")
	assert.ErrorContains(t, err, "parallelism")
}

func TestRunCommand_Bank(t *testing.T) {
	cfgPath, dir := suiteConfig(t)
	bank := filepath.Join(dir, "bank.yaml")
	require.NoError(t, os.WriteFile(bank, []byte(`
rejections:
  - id: NEG-B1
    username: standard_user
    password: "secret_sauce "
    error_contains: do not match
    blocked: true
`), 0644))

	out, _, err := execute(t, nil,
		"run", "-c", cfgPath, "--bank", bank, "--only", "NEG-B1",
		"--descriptors", "galaxy_s23",
	)
	require.NoError(t, err)
	assert.Contains(t, out, "1 passed")
}

func TestRunCommand_TargetURL(t *testing.T) {
	const staging = "https://staging.example.test"
	cfgPath, dir := suiteConfig(t)
	f, err := os.OpenFile(cfgPath, os.O_APPEND|os.O_WRONLY, 0644)
	require.NoError(t, err)
	_, err = f.WriteString("target_url: " + staging + "\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	onStaging := func(id string) grid.Session {
		s := sitetest.New(id)
		s.BaseURL = staging
		return s
	}
	out, _, err := execute(t, onStaging,
		"run", "-c", cfgPath, "--only", "POS-01,POS-06", "--descriptors", "firefox_win11",
	)
	require.NoError(t, err)
	assert.Contains(t, out, "2 passed")

	html, err := os.ReadFile(filepath.Join(dir, "reports", report.HTMLFile))
	require.NoError(t, err)
	assert.Contains(t, string(html), staging)
	assert.NotContains(t, string(html), "www.saucedemo.com")
}
