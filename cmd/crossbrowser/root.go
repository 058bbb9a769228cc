package main

import (
	"errors"

	"github.com/spf13/cobra"

	"digital.vasic.crossbrowser/pkg/env"
	"digital.vasic.crossbrowser/pkg/grid"
)

// errRunFailed is returned when the run completed but some
// invocation did not pass. The summary has already been printed.
var errRunFailed = errors.New("run failed")

// options carries the collaborators tests replace.
type options struct {
	dialer grid.Dialer
	loader env.Loader
}

func (o options) envLoader() env.Loader {
	if o.loader != nil {
		return o.loader
	}
	return env.NewLoader()
}

func newRootCommand(opts options) *cobra.Command {
	root := &cobra.Command{
		Use:   "crossbrowser",
		Short: "Cross-browser login suite for a remote Selenium grid",
		Long: `Run the login suite against every browser and device in the
capability matrix, one remote session per test, and report each
outcome back to the grid dashboard.

Examples:
  crossbrowser run                          # full matrix, all checks
  crossbrowser run -m "negative and security"
  crossbrowser run --descriptors chrome_win11,iphone15 -p 2
  crossbrowser matrix                       # list the matrix
  crossbrowser caps iphone15                # show session capabilities`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringP("config", "c", "", "suite configuration file (YAML or JSON)")

	root.AddCommand(
		newRunCommand(opts),
		newMatrixCommand(opts),
		newCapsCommand(opts),
		newChecksCommand(opts),
	)
	return root
}
