package grid

import (
	"strings"

	"github.com/sclevine/agouti"

	"digital.vasic.crossbrowser/pkg/capability"
)

// Adapter prepares native capabilities for one browser family.
type Adapter interface {
	Name() string
	Capabilities(req capability.Request) agouti.Capabilities
}

type browserAdapter struct {
	name string
}

func (a browserAdapter) Name() string { return a.name }

// Capabilities starts from the browser's own defaults and attaches
// every key of the request on top, so the request's browserName
// wins when it differs from the adapter.
func (a browserAdapter) Capabilities(
	req capability.Request,
) agouti.Capabilities {
	caps := agouti.NewCapabilities().Browser(a.name)
	for k, v := range req.Map() {
		caps[k] = v
	}
	return caps
}

var adapters = map[string]Adapter{
	"chrome":  browserAdapter{name: "chrome"},
	"firefox": browserAdapter{name: "firefox"},
	"edge":    browserAdapter{name: "MicrosoftEdge"},
	"safari":  browserAdapter{name: "safari"},
}

// AdapterFor selects an adapter case-insensitively. Unknown
// browsers get the chrome adapter.
func AdapterFor(browser string) Adapter {
	if a, ok := adapters[strings.ToLower(strings.TrimSpace(browser))]; ok {
		return a
	}
	return adapters["chrome"]
}
