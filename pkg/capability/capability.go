// Package capability turns a matrix descriptor into the capability
// payload a remote grid expects: standard W3C fields at the top
// level and the provider's session metadata under a vendor
// namespace.
package capability

import (
	"encoding/json"
	"maps"

	"digital.vasic.crossbrowser/pkg/matrix"
)

// VendorNamespace is the capability key holding grid-specific options.
const VendorNamespace = "bstack:options"

// ConfigurationError is returned for descriptors that hold neither
// target variant.
type ConfigurationError = matrix.ConfigurationError

// Defaults is the session metadata shared by every request.
type Defaults struct {
	ProjectName string `yaml:"project_name" json:"project_name"`
	BuildName   string `yaml:"build_name" json:"build_name"`
	NetworkLogs bool   `yaml:"network_logs" json:"network_logs"`
	ConsoleLogs string `yaml:"console_logs" json:"console_logs"`
	Video       bool   `yaml:"video" json:"video"`
	Screenshots bool   `yaml:"screenshots" json:"screenshots"`
}

// DefaultDefaults returns the suite's standard session metadata.
func DefaultDefaults() Defaults {
	return Defaults{
		ProjectName: "Prodigy Infotech Task-04",
		BuildName:   "Cross-Browser Login Suite v1.0",
		NetworkLogs: true,
		ConsoleLogs: "verbose",
		Video:       true,
		Screenshots: true,
	}
}

// Request is an immutable capability payload for one session.
type Request struct {
	descriptorID string
	browserName  string
	vendor       map[string]any
}

// Build merges defaults with the descriptor's target. Device
// targets carry deviceName, osVersion and realMobile; desktop
// targets carry os, osVersion and browserVersion. The session name
// is always the descriptor label.
func Build(d matrix.Descriptor, defaults Defaults) (Request, error) {
	if err := d.Validate(); err != nil {
		return Request{}, err
	}

	vendor := map[string]any{
		"projectName": defaults.ProjectName,
		"buildName":   defaults.BuildName,
		"networkLogs": defaults.NetworkLogs,
		"consoleLogs": defaults.ConsoleLogs,
		"video":       defaults.Video,
		"screenshots": defaults.Screenshots,
		"sessionName": d.Label,
	}

	switch t := d.Target.(type) {
	case matrix.DeviceTarget:
		vendor["deviceName"] = t.Device
		vendor["osVersion"] = t.OSVersion
		vendor["realMobile"] = "true"
	case matrix.DesktopTarget:
		vendor["os"] = t.OS
		vendor["osVersion"] = t.OSVersion
		vendor["browserVersion"] = t.BrowserVersion
	}

	return Request{
		descriptorID: d.ID,
		browserName:  d.Browser(),
		vendor:       vendor,
	}, nil
}

// Builder binds a set of defaults.
type Builder struct {
	Defaults Defaults
}

// NewBuilder creates a Builder.
func NewBuilder(defaults Defaults) *Builder {
	return &Builder{Defaults: defaults}
}

// Build calls Build with the builder's defaults.
func (b *Builder) Build(d matrix.Descriptor) (Request, error) {
	return Build(d, b.Defaults)
}

// DescriptorID returns the ID of the descriptor the request was built from.
func (r Request) DescriptorID() string { return r.descriptorID }

// BrowserName returns the top-level browserName.
func (r Request) BrowserName() string { return r.browserName }

// SessionName returns the display name shown on the grid dashboard.
func (r Request) SessionName() string {
	s, _ := r.vendor["sessionName"].(string)
	return s
}

// Vendor returns a copy of the vendor namespace options.
func (r Request) Vendor() map[string]any {
	return maps.Clone(r.vendor)
}

// Option returns a single vendor option.
func (r Request) Option(key string) (any, bool) {
	v, ok := r.vendor[key]
	return v, ok
}

// IsZero reports whether the request was never built.
func (r Request) IsZero() bool { return r.vendor == nil }

// Map returns a fresh nested map suitable for transmission.
func (r Request) Map() map[string]any {
	return map[string]any{
		VendorNamespace: r.Vendor(),
		"browserName":   r.browserName,
	}
}

// JSON renders Map as indented JSON.
func (r Request) JSON() ([]byte, error) {
	return json.MarshalIndent(r.Map(), "", "  ")
}
