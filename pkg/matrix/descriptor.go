// Package matrix defines the browser/device capability matrix: an
// ordered list of descriptors, each naming either a desktop
// browser on an operating system or a browser on a real mobile
// device. The default matrix is embedded; alternatives can be
// loaded from YAML or JSON files.
package matrix

import (
	"fmt"
	"strings"
)

// ConfigurationError reports a descriptor that cannot be turned
// into a capability request.
type ConfigurationError struct {
	DescriptorID string
	Reason       string
}

func (e *ConfigurationError) Error() string {
	if e.DescriptorID == "" {
		return "configuration error: " + e.Reason
	}
	return fmt.Sprintf(
		"configuration error in descriptor %q: %s",
		e.DescriptorID, e.Reason,
	)
}

// Target is either a DesktopTarget or a DeviceTarget.
type Target interface {
	// BrowserName returns the browser the session runs.
	BrowserName() string
	isTarget()
}

// DesktopTarget runs a browser version on a desktop OS.
type DesktopTarget struct {
	Browser        string `json:"browser"`
	BrowserVersion string `json:"browser_version"`
	OS             string `json:"os"`
	OSVersion      string `json:"os_version"`
}

func (t DesktopTarget) BrowserName() string { return t.Browser }
func (DesktopTarget) isTarget()             {}

// DeviceTarget runs a browser on a real mobile device.
type DeviceTarget struct {
	Device    string `json:"device"`
	OSVersion string `json:"os_version"`
	Browser   string `json:"browser"`
}

func (t DeviceTarget) BrowserName() string { return t.Browser }
func (DeviceTarget) isTarget()             {}

// Descriptor is one row of the matrix.
type Descriptor struct {
	ID     string
	Label  string
	Target Target
}

// NewDesktop builds a validated desktop descriptor.
func NewDesktop(id, label string, t DesktopTarget) (Descriptor, error) {
	var missing []string
	if t.Browser == "" {
		missing = append(missing, "browser")
	}
	if t.BrowserVersion == "" {
		missing = append(missing, "browser_version")
	}
	if t.OS == "" {
		missing = append(missing, "os")
	}
	if t.OSVersion == "" {
		missing = append(missing, "os_version")
	}
	if err := checkIdentity(id, label, missing); err != nil {
		return Descriptor{}, err
	}
	return Descriptor{ID: id, Label: label, Target: t}, nil
}

// NewDevice builds a validated real-device descriptor.
func NewDevice(id, label string, t DeviceTarget) (Descriptor, error) {
	var missing []string
	if t.Device == "" {
		missing = append(missing, "device")
	}
	if t.OSVersion == "" {
		missing = append(missing, "os_version")
	}
	if t.Browser == "" {
		missing = append(missing, "browser")
	}
	if err := checkIdentity(id, label, missing); err != nil {
		return Descriptor{}, err
	}
	return Descriptor{ID: id, Label: label, Target: t}, nil
}

func checkIdentity(id, label string, missing []string) error {
	if id == "" {
		missing = append([]string{"id"}, missing...)
	}
	if label == "" {
		missing = append(missing, "label")
	}
	if len(missing) > 0 {
		return &ConfigurationError{
			DescriptorID: id,
			Reason:       "missing " + strings.Join(missing, ", "),
		}
	}
	return nil
}

// Browser returns the target's browser name, or "" when the
// descriptor has no target.
func (d Descriptor) Browser() string {
	if d.Target == nil {
		return ""
	}
	return d.Target.BrowserName()
}

// IsDevice reports whether the descriptor targets a real device.
func (d Descriptor) IsDevice() bool {
	_, ok := d.Target.(DeviceTarget)
	return ok
}

// Validate reports a ConfigurationError when the descriptor holds
// neither target variant or lacks identity fields. Descriptors made
// with NewDesktop or NewDevice always validate.
func (d Descriptor) Validate() error {
	switch t := d.Target.(type) {
	case DesktopTarget:
		_, err := NewDesktop(d.ID, d.Label, t)
		return err
	case DeviceTarget:
		_, err := NewDevice(d.ID, d.Label, t)
		return err
	}
	return &ConfigurationError{
		DescriptorID: d.ID,
		Reason:       "descriptor has neither desktop nor device fields",
	}
}

func (d Descriptor) String() string {
	return d.ID
}
