package report

import (
	"fmt"
	"strings"

	"digital.vasic.crossbrowser/pkg/matrix"
	"digital.vasic.crossbrowser/pkg/site"
)

// Title is the heading of the HTML report.
const Title = "Prodigy Infotech — Task-04 Cross-Browser Test Report"

// Fixed environment values.
const (
	ProjectName  = "Task-04 BrowserStack Cross-Browser Testing"
	Organization = "Prodigy Infotech"
	GridName     = "BrowserStack Selenium Grid"
	DeviceCloud  = "Desktop + Mobile (Real Device Cloud)"
)

// Environment is the run metadata shown at the top of a report.
type Environment struct {
	Project      string `json:"project"`
	Organization string `json:"organization"`
	Target       string `json:"target"`
	Grid         string `json:"grid"`
	Browsers     string `json:"browsers"`
	Devices      string `json:"devices"`
	Parallelism  string `json:"parallelism"`
}

// NewEnvironment describes a run of m against target with the
// given parallelism. An empty target reads as site.TargetURL.
func NewEnvironment(m matrix.Matrix, target string, parallelism int) Environment {
	if target == "" {
		target = site.TargetURL
	}
	devices := "Desktop"
	if len(m.Devices()) > 0 {
		devices = DeviceCloud
	}
	return Environment{
		Project:      ProjectName,
		Organization: Organization,
		Target:       target,
		Grid:         GridName,
		Browsers:     strings.Join(m.Browsers(), ", "),
		Devices:      devices,
		Parallelism:  fmt.Sprintf("%d sessions in parallel", parallelism),
	}
}

// Rows returns the environment as ordered name/value pairs.
func (e Environment) Rows() [][2]string {
	return [][2]string{
		{"Project", e.Project},
		{"Organization", e.Organization},
		{"Target", e.Target},
		{"Grid", e.Grid},
		{"Browsers", e.Browsers},
		{"Devices", e.Devices},
		{"Parallelism", e.Parallelism},
	}
}
