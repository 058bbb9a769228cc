// Package config resolves the suite configuration from defaults,
// an optional YAML file, a .env file and the process environment,
// in that order of increasing precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"digital.vasic.crossbrowser/pkg/capability"
	"digital.vasic.crossbrowser/pkg/check"
	"digital.vasic.crossbrowser/pkg/checks"
	"digital.vasic.crossbrowser/pkg/env"
	"digital.vasic.crossbrowser/pkg/grid"
	"digital.vasic.crossbrowser/pkg/matrix"
	"digital.vasic.crossbrowser/pkg/session"
	"digital.vasic.crossbrowser/pkg/site"
)

// Environment variables read by ApplyEnv.
const (
	EnvParallelism = "CROSSBROWSER_PARALLELISM"
	EnvMarkers     = "CROSSBROWSER_MARKERS"
	EnvDescriptors = "CROSSBROWSER_DESCRIPTORS"
	EnvReportDir   = "CROSSBROWSER_REPORT_DIR"
	EnvTargetURL   = "CROSSBROWSER_TARGET_URL"
	EnvBuildName   = "BROWSERSTACK_BUILD_NAME"
)

// Config is the resolved configuration of one suite run.
type Config struct {
	Grid         grid.Config         `yaml:"grid"`
	Capabilities capability.Defaults `yaml:"capabilities"`

	TargetURL string `yaml:"target_url"`

	// MatrixFile replaces the built-in matrix when set.
	MatrixFile  string   `yaml:"matrix_file"`
	Descriptors []string `yaml:"descriptors"`

	// Markers is a marker expression such as "negative and not form".
	Markers string   `yaml:"markers"`
	Only    []string `yaml:"only"`

	// Banks are extra rejection-check files or directories.
	Banks []string `yaml:"banks"`

	Parallelism   int           `yaml:"parallelism"`
	Timeout       time.Duration `yaml:"timeout"`
	WaitTimeout   time.Duration `yaml:"wait_timeout"`
	ReportTimeout time.Duration `yaml:"report_timeout"`

	ReportDir   string `yaml:"report_dir"`
	LogsDir     string `yaml:"logs_dir"`
	Verbose     bool   `yaml:"verbose"`
	MonitorAddr string `yaml:"monitor_addr"`
	EnvFile     string `yaml:"env_file"`
}

// Default returns the configuration of the standard run: the full
// matrix, every session in parallel.
func Default() Config {
	return Config{
		Grid:          grid.DefaultConfig(),
		Capabilities:  capability.DefaultDefaults(),
		TargetURL:     site.TargetURL,
		Parallelism:   len(matrix.Default()),
		Timeout:       5 * time.Minute,
		WaitTimeout:   site.Timeout,
		ReportTimeout: session.DefaultReportTimeout,
		ReportDir:     "reports",
		LogsDir:       "logs",
		EnvFile:       ".env",
	}
}

// Load reads a YAML (or JSON) configuration file over Default.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes data over Default. Fields absent from data keep
// their defaults.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	cfg.Grid = cfg.Grid.WithDefaults()
	return cfg, cfg.Validate()
}

// Resolve builds the run configuration: defaults, then the file
// at path (skipped when empty), then the .env file named by the
// configuration (skipped when missing), then the environment.
func Resolve(path string, l env.Loader) (Config, error) {
	cfg := Default()
	if path != "" {
		var err error
		if cfg, err = Load(path); err != nil {
			return Config{}, err
		}
	}
	if cfg.EnvFile != "" {
		if err := l.Load(cfg.EnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, err
		}
	}
	cfg, err := cfg.ApplyEnv(l)
	if err != nil {
		return Config{}, err
	}
	return cfg, cfg.Validate()
}

// ApplyEnv overrides fields from environment variables. Grid
// credentials only replace the configured values when set.
func (c Config) ApplyEnv(l env.Loader) (Config, error) {
	creds := l.GridCredentials(grid.DefaultProvider)
	if creds.Username != "" {
		c.Grid.Username = creds.Username
	}
	if creds.AccessKey != "" {
		c.Grid.AccessKey = creds.AccessKey
	}
	if host := l.Get("BROWSERSTACK_HUB_HOST"); host != "" {
		c.Grid.Host = host
	}
	if v := l.Get(EnvBuildName); v != "" {
		c.Capabilities.BuildName = v
	}
	if v := l.Get(EnvTargetURL); v != "" {
		c.TargetURL = v
	}
	if v := l.Get(EnvMarkers); v != "" {
		c.Markers = v
	}
	if v := l.Get(EnvDescriptors); v != "" {
		c.Descriptors = splitList(v)
	}
	if v := l.Get(EnvReportDir); v != "" {
		c.ReportDir = v
	}
	if v := l.Get(EnvParallelism); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return c, fmt.Errorf("%s: %w", EnvParallelism, err)
		}
		c.Parallelism = n
	}
	return c, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Validate checks the values a run cannot start without.
func (c Config) Validate() error {
	var errs []error
	if c.Parallelism < 1 {
		errs = append(errs, fmt.Errorf("parallelism must be at least 1, got %d", c.Parallelism))
	}
	if c.Timeout <= 0 {
		errs = append(errs, errors.New("timeout must be positive"))
	}
	if c.WaitTimeout <= 0 {
		errs = append(errs, errors.New("wait_timeout must be positive"))
	}
	if c.ReportTimeout <= 0 {
		errs = append(errs, errors.New("report_timeout must be positive"))
	}
	if c.TargetURL == "" {
		errs = append(errs, errors.New("target_url is required"))
	}
	if _, err := check.ParseExpr(c.Markers); err != nil {
		errs = append(errs, fmt.Errorf("markers: %w", err))
	}
	return errors.Join(errs...)
}

// Matrix returns the configured matrix, narrowed to Descriptors
// when any are listed.
func (c Config) Matrix() (matrix.Matrix, error) {
	m := matrix.Default()
	if c.MatrixFile != "" {
		var err error
		if m, err = matrix.Load(c.MatrixFile); err != nil {
			return nil, err
		}
	}
	if len(c.Descriptors) == 0 {
		return m, nil
	}
	return m.Filter(c.Descriptors...)
}

// BankChecks loads every configured bank. A path that is a
// directory is scanned for YAML files.
func (c Config) BankChecks() ([]check.Check, error) {
	var out []check.Check
	for _, path := range c.Banks {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("bank %s: %w", path, err)
		}
		var loaded []check.Check
		if info.IsDir() {
			loaded, err = checks.LoadBankDir(path)
		} else {
			loaded, err = checks.LoadBank(path)
		}
		if err != nil {
			return nil, err
		}
		out = append(out, loaded...)
	}
	return out, nil
}
