// Package grid opens remote WebDriver sessions on a cloud browser
// grid and reports session outcomes back to it.
package grid

import (
	"net/url"
	"time"

	"digital.vasic.crossbrowser/pkg/env"
)

// Grid defaults.
const (
	DefaultProvider     = "browserstack"
	DefaultHost         = "hub-cloud.browserstack.com"
	DefaultScheme       = "https"
	DefaultPath         = "/wd/hub"
	DefaultImplicitWait = 10 * time.Second

	// DefaultCommandTimeout bounds one HTTP round trip to the hub.
	DefaultCommandTimeout = 60 * time.Second

	PlaceholderUsername  = "YOUR_USERNAME"
	PlaceholderAccessKey = "YOUR_ACCESS_KEY"
)

// Config is the process-wide grid endpoint configuration. It is
// resolved once at startup and passed into the Factory.
type Config struct {
	Username     string        `yaml:"username" json:"username"`
	AccessKey    string        `yaml:"access_key" json:"-"`
	Host         string        `yaml:"host" json:"host"`
	Scheme       string        `yaml:"scheme" json:"scheme"`
	Path         string        `yaml:"path" json:"path"`
	ImplicitWait time.Duration `yaml:"implicit_wait" json:"implicit_wait"`

	// CommandTimeout bounds each HTTP call to the grid.
	CommandTimeout time.Duration `yaml:"command_timeout" json:"command_timeout"`
}

// DefaultConfig returns a Config with placeholder credentials.
func DefaultConfig() Config {
	return Config{
		Username:     PlaceholderUsername,
		AccessKey:    PlaceholderAccessKey,
		Host:         DefaultHost,
		Scheme:       DefaultScheme,
		Path:         DefaultPath,
		ImplicitWait: DefaultImplicitWait,

		CommandTimeout: DefaultCommandTimeout,
	}
}

// ConfigFromEnv reads BROWSERSTACK_USERNAME and
// BROWSERSTACK_ACCESS_KEY through the loader. Missing values keep
// their placeholders; no validation happens here.
func ConfigFromEnv(l env.Loader) Config {
	cfg := DefaultConfig()
	creds := l.GridCredentials(DefaultProvider)
	if creds.Username != "" {
		cfg.Username = creds.Username
	}
	if creds.AccessKey != "" {
		cfg.AccessKey = creds.AccessKey
	}
	if host := l.Get("BROWSERSTACK_HUB_HOST"); host != "" {
		cfg.Host = host
	}
	return cfg
}

// WithDefaults fills zero fields from DefaultConfig.
func (c Config) WithDefaults() Config {
	d := DefaultConfig()
	if c.Username == "" {
		c.Username = d.Username
	}
	if c.AccessKey == "" {
		c.AccessKey = d.AccessKey
	}
	if c.Host == "" {
		c.Host = d.Host
	}
	if c.Scheme == "" {
		c.Scheme = d.Scheme
	}
	if c.Path == "" {
		c.Path = d.Path
	}
	if c.ImplicitWait == 0 {
		c.ImplicitWait = d.ImplicitWait
	}
	if c.CommandTimeout <= 0 {
		c.CommandTimeout = d.CommandTimeout
	}
	return c
}

// HasCredentials reports whether both credentials were supplied
// rather than left as placeholders.
func (c Config) HasCredentials() bool {
	return !env.IsPlaceholder(c.Username) && !env.IsPlaceholder(c.AccessKey)
}

// HubURL returns the endpoint with credentials embedded.
func (c Config) HubURL() string {
	u := url.URL{
		Scheme: c.Scheme,
		User:   url.UserPassword(c.Username, c.AccessKey),
		Host:   c.Host,
		Path:   c.Path,
	}
	return u.String()
}

// RedactedHubURL returns HubURL with the access key masked.
func (c Config) RedactedHubURL() string {
	return env.RedactURL(c.HubURL())
}
