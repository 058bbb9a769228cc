package matrix

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultMatrix []byte

// Matrix is an ordered list of descriptors with unique IDs.
type Matrix []Descriptor

// Row is the on-disk shape of one descriptor. Desktop rows set
// os, os_version and browser_version; device rows set device and
// os_version, optionally with real_mobile: true.
type Row struct {
	ID             string `yaml:"id" json:"id"`
	Label          string `yaml:"label" json:"label"`
	Browser        string `yaml:"browser" json:"browser"`
	BrowserVersion string `yaml:"browser_version,omitempty" json:"browser_version,omitempty"`
	OS             string `yaml:"os,omitempty" json:"os,omitempty"`
	OSVersion      string `yaml:"os_version,omitempty" json:"os_version,omitempty"`
	Device         string `yaml:"device,omitempty" json:"device,omitempty"`
	RealMobile     bool   `yaml:"real_mobile,omitempty" json:"real_mobile,omitempty"`
}

// Default returns the built-in eleven-entry matrix. It panics if
// the embedded file is malformed, which would be a build defect.
func Default() Matrix {
	m, err := Parse(defaultMatrix)
	if err != nil {
		panic(fmt.Sprintf("embedded matrix: %v", err))
	}
	return m
}

// Load reads a YAML or JSON matrix file.
func Load(path string) (Matrix, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read matrix %s: %w", path, err)
	}
	m, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse matrix %s: %w", path, err)
	}
	return m, nil
}

// Parse decodes a list of rows. JSON input is accepted because
// it is valid YAML.
func Parse(data []byte) (Matrix, error) {
	var rows []Row
	if err := yaml.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("decode rows: %w", err)
	}
	return FromRows(rows)
}

// FromRows converts rows to descriptors, preserving order.
func FromRows(rows []Row) (Matrix, error) {
	m := make(Matrix, 0, len(rows))
	seen := make(map[string]bool, len(rows))
	for i, r := range rows {
		d, err := r.Descriptor()
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		if seen[d.ID] {
			return nil, &ConfigurationError{
				DescriptorID: d.ID,
				Reason:       "duplicate id",
			}
		}
		seen[d.ID] = true
		m = append(m, d)
	}
	return m, nil
}

// Descriptor converts a row to its tagged variant.
func (r Row) Descriptor() (Descriptor, error) {
	hasDevice := r.Device != "" || r.RealMobile
	hasDesktop := r.OS != "" || r.BrowserVersion != ""

	switch {
	case hasDevice && hasDesktop:
		return Descriptor{}, &ConfigurationError{
			DescriptorID: r.ID,
			Reason:       "row mixes desktop and device fields",
		}
	case hasDevice && !r.RealMobile:
		return Descriptor{}, &ConfigurationError{
			DescriptorID: r.ID,
			Reason:       "device row requires real_mobile: true",
		}
	case hasDevice:
		return NewDevice(r.ID, r.Label, DeviceTarget{
			Device:    r.Device,
			OSVersion: r.OSVersion,
			Browser:   r.Browser,
		})
	case hasDesktop:
		return NewDesktop(r.ID, r.Label, DesktopTarget{
			Browser:        r.Browser,
			BrowserVersion: r.BrowserVersion,
			OS:             r.OS,
			OSVersion:      r.OSVersion,
		})
	}
	return Descriptor{}, &ConfigurationError{
		DescriptorID: r.ID,
		Reason:       "row has neither desktop nor device fields",
	}
}

// RowOf is the inverse of Row.Descriptor.
func RowOf(d Descriptor) Row {
	r := Row{ID: d.ID, Label: d.Label, Browser: d.Browser()}
	switch t := d.Target.(type) {
	case DesktopTarget:
		r.BrowserVersion = t.BrowserVersion
		r.OS = t.OS
		r.OSVersion = t.OSVersion
	case DeviceTarget:
		r.Device = t.Device
		r.OSVersion = t.OSVersion
		r.RealMobile = true
	}
	return r
}

// Get returns the descriptor with the given ID.
func (m Matrix) Get(id string) (Descriptor, bool) {
	for _, d := range m {
		if d.ID == id {
			return d, true
		}
	}
	return Descriptor{}, false
}

// IDs returns descriptor IDs in matrix order.
func (m Matrix) IDs() []string {
	ids := make([]string, len(m))
	for i, d := range m {
		ids[i] = d.ID
	}
	return ids
}

// Filter returns the sub-matrix for ids, in matrix order. With
// no ids the whole matrix is returned.
func (m Matrix) Filter(ids ...string) (Matrix, error) {
	if len(ids) == 0 {
		return m, nil
	}
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		if _, ok := m.Get(id); !ok {
			return nil, fmt.Errorf("unknown descriptor %q", id)
		}
		want[id] = true
	}
	out := make(Matrix, 0, len(want))
	for _, d := range m {
		if want[d.ID] {
			out = append(out, d)
		}
	}
	return out, nil
}

// Browsers lists distinct browser names in order of first
// appearance, capitalised for display.
func (m Matrix) Browsers() []string {
	var out []string
	seen := make(map[string]bool)
	for _, d := range m {
		b := strings.ToLower(d.Browser())
		if b == "" || seen[b] {
			continue
		}
		seen[b] = true
		out = append(out, strings.ToUpper(b[:1])+b[1:])
	}
	return out
}

// Devices lists distinct device names in matrix order.
func (m Matrix) Devices() []string {
	var out []string
	seen := make(map[string]bool)
	for _, d := range m {
		t, ok := d.Target.(DeviceTarget)
		if !ok || seen[t.Device] {
			continue
		}
		seen[t.Device] = true
		out = append(out, t.Device)
	}
	return out
}

// Marshal renders the matrix as YAML rows.
func (m Matrix) Marshal() ([]byte, error) {
	rows := make([]Row, len(m))
	for i, d := range m {
		rows[i] = RowOf(d)
	}
	return yaml.Marshal(rows)
}
