package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"digital.vasic.crossbrowser/pkg/capability"
	"digital.vasic.crossbrowser/pkg/check"
	"digital.vasic.crossbrowser/pkg/checks"
	"digital.vasic.crossbrowser/pkg/config"
	"digital.vasic.crossbrowser/pkg/matrix"
	"digital.vasic.crossbrowser/pkg/registry"
)

func loadConfig(cmd *cobra.Command, opts options) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	return config.Resolve(path, opts.envLoader())
}

func platform(d matrix.Descriptor) string {
	switch t := d.Target.(type) {
	case matrix.DesktopTarget:
		return t.OS + " " + t.OSVersion
	case matrix.DeviceTarget:
		return t.Device + " (" + t.OSVersion + ")"
	}
	return ""
}

func newMatrixCommand(opts options) *cobra.Command {
	var asYAML bool
	cmd := &cobra.Command{
		Use:   "matrix",
		Short: "List the capability matrix",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, opts)
			if err != nil {
				return err
			}
			m, err := cfg.Matrix()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if asYAML {
				data, err := m.Marshal()
				if err != nil {
					return err
				}
				_, err = out.Write(data)
				return err
			}

			tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tLABEL\tBROWSER\tPLATFORM")
			for _, d := range m {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", d.ID, d.Label, d.Browser(), platform(d))
			}
			return tw.Flush()
		},
	}
	cmd.Flags().BoolVar(&asYAML, "yaml", false, "print the matrix as a YAML matrix file")
	return cmd
}

func newCapsCommand(opts options) *cobra.Command {
	return &cobra.Command{
		Use:   "caps <descriptor-id>",
		Short: "Print the capabilities sent for a descriptor",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, opts)
			if err != nil {
				return err
			}
			m, err := cfg.Matrix()
			if err != nil {
				return err
			}
			d, ok := m.Get(args[0])
			if !ok {
				return fmt.Errorf("unknown descriptor %q (known: %s)",
					args[0], strings.Join(m.IDs(), ", "))
			}
			req, err := capability.NewBuilder(cfg.Capabilities).Build(d)
			if err != nil {
				return err
			}
			data, err := req.JSON()
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return err
		},
	}
}

func newChecksCommand(opts options) *cobra.Command {
	var markers string
	cmd := &cobra.Command{
		Use:   "checks",
		Short: "List the checks selected by a marker expression",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, opts)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("markers") {
				cfg.Markers = markers
			}
			reg, err := buildRegistry(cfg)
			if err != nil {
				return err
			}
			selected, err := reg.Select(cfg.Markers)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tMARKERS")
			for _, c := range selected {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", c.ID(), c.Name(), joinMarkers(c.Markers()))
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVarP(&markers, "markers", "m", "", "marker expression, e.g. \"negative and not form\"")
	return cmd
}

func joinMarkers(ms []check.Marker) string {
	parts := make([]string, len(ms))
	for i, m := range ms {
		parts[i] = string(m)
	}
	return strings.Join(parts, ",")
}

// buildRegistry registers the built-in checks and every
// configured bank.
func buildRegistry(cfg config.Config) (*registry.DefaultRegistry, error) {
	reg := registry.NewRegistry()
	if err := checks.RegisterAll(reg,
		checks.WithWaitTimeout(cfg.WaitTimeout),
		checks.WithTargetURL(cfg.TargetURL),
	); err != nil {
		return nil, err
	}
	banked, err := cfg.BankChecks()
	if err != nil {
		return nil, err
	}
	for _, c := range banked {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return reg, nil
}
