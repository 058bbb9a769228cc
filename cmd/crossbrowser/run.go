package main

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"digital.vasic.crossbrowser/pkg/check"
	"digital.vasic.crossbrowser/pkg/config"
	"digital.vasic.crossbrowser/pkg/grid"
	"digital.vasic.crossbrowser/pkg/logging"
	"digital.vasic.crossbrowser/pkg/metrics"
	"digital.vasic.crossbrowser/pkg/monitor"
	"digital.vasic.crossbrowser/pkg/registry"
	"digital.vasic.crossbrowser/pkg/report"
	"digital.vasic.crossbrowser/pkg/runner"
	"digital.vasic.crossbrowser/pkg/session"
)

type runFlags struct {
	markers     string
	only        []string
	descriptors []string
	banks       []string
	parallelism int
	timeout     time.Duration
	reportDir   string
	logsDir     string
	monitorAddr string
	verbose     bool
}

func newRunCommand(opts options) *cobra.Command {
	var f runFlags
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the suite across the matrix",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, opts)
			if err != nil {
				return err
			}
			if cfg, err = f.apply(cmd, cfg); err != nil {
				return err
			}
			return runSuite(cmd, cfg, opts)
		},
	}

	fl := cmd.Flags()
	fl.StringVarP(&f.markers, "markers", "m", "", "marker expression, e.g. \"negative and not form\"")
	fl.StringSliceVar(&f.only, "only", nil, "run only these check IDs")
	fl.StringSliceVar(&f.descriptors, "descriptors", nil, "run only these descriptor IDs")
	fl.StringSliceVar(&f.banks, "bank", nil, "extra rejection bank file or directory")
	fl.IntVarP(&f.parallelism, "parallelism", "p", 0, "concurrent sessions (default: matrix size)")
	fl.DurationVar(&f.timeout, "timeout", 0, "bound for one check on one descriptor")
	fl.StringVar(&f.reportDir, "report", "", "report output directory")
	fl.StringVar(&f.logsDir, "logs", "", "log output directory")
	fl.StringVar(&f.monitorAddr, "monitor", "", "serve live events, dashboard and metrics on this address")
	fl.BoolVarP(&f.verbose, "verbose", "v", false, "debug logging")
	return cmd
}

// apply overlays the flags the user set.
func (f runFlags) apply(cmd *cobra.Command, cfg config.Config) (config.Config, error) {
	changed := cmd.Flags().Changed
	if changed("markers") {
		cfg.Markers = f.markers
	}
	if changed("only") {
		cfg.Only = f.only
	}
	if changed("descriptors") {
		cfg.Descriptors = f.descriptors
	}
	if changed("bank") {
		cfg.Banks = append(cfg.Banks, f.banks...)
	}
	if changed("parallelism") {
		cfg.Parallelism = f.parallelism
	}
	if changed("timeout") {
		cfg.Timeout = f.timeout
	}
	if changed("report") {
		cfg.ReportDir = f.reportDir
	}
	if changed("logs") {
		cfg.LogsDir = f.logsDir
	}
	if changed("monitor") {
		cfg.MonitorAddr = f.monitorAddr
	}
	if changed("verbose") {
		cfg.Verbose = f.verbose
	}
	return cfg, cfg.Validate()
}

func newLogger(cmd *cobra.Command, cfg config.Config) (logging.Logger, error) {
	console := logging.NewConsoleLoggerTo(cmd.ErrOrStderr(), cfg.Verbose)
	var log logging.Logger = console
	if cfg.LogsDir != "" {
		jsonLog, err := logging.SetupLogging(cfg.LogsDir, cfg.Verbose)
		if err != nil {
			return nil, fmt.Errorf("setup logging: %w", err)
		}
		log = logging.NewMultiLogger(console, jsonLog)
	}
	return logging.NewRedactingLogger(log, cfg.Grid.AccessKey), nil
}

func selectChecks(reg registry.Registry, cfg config.Config) ([]check.Check, error) {
	selected, err := reg.Select(cfg.Markers)
	if err != nil {
		return nil, err
	}
	if len(cfg.Only) == 0 {
		return selected, nil
	}
	ids := make([]check.ID, len(cfg.Only))
	for i, id := range cfg.Only {
		ids[i] = check.ID(id)
	}
	only, err := registry.SelectIDs(reg, ids...)
	if err != nil {
		return nil, err
	}
	keep := make(map[check.ID]bool, len(only))
	for _, c := range only {
		keep[c.ID()] = true
	}
	out := selected[:0]
	for _, c := range selected {
		if keep[c.ID()] {
			out = append(out, c)
		}
	}
	return out, nil
}

func runSuite(cmd *cobra.Command, cfg config.Config, opts options) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	log, err := newLogger(cmd, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = log.Close() }()

	m, err := cfg.Matrix()
	if err != nil {
		return err
	}
	reg, err := buildRegistry(cfg)
	if err != nil {
		return err
	}
	selected, err := selectChecks(reg, cfg)
	if err != nil {
		return err
	}
	if len(selected) == 0 {
		return fmt.Errorf("no checks match markers %q", cfg.Markers)
	}

	runID := uuid.NewString()
	log = log.WithFields(logging.StringField("run_id", runID))
	if !cfg.Grid.HasCredentials() {
		log.Warn("grid credentials not set; sessions will use placeholders")
	}
	log.Info("run starting",
		logging.StringField("hub", cfg.Grid.RedactedHubURL()),
		logging.IntField("checks", len(selected)),
		logging.IntField("descriptors", len(m)),
		logging.IntField("parallelism", cfg.Parallelism),
	)

	suiteMetrics := metrics.NewPrometheusMetrics()
	collector := monitor.NewEventCollector()
	dashboard := monitor.NewDashboardData(runID)

	finish := dashboard.SetStatus
	if cfg.MonitorAddr != "" {
		srv := monitor.NewServer(cfg.MonitorAddr, collector, dashboard,
			monitor.WithServerLogger(log),
			monitor.WithHandler("/metrics", suiteMetrics.Handler()),
		)
		// Attach before the first invocation starts emitting.
		srv.Attach()
		finish = srv.Finish
		srvCtx, stopServer := context.WithCancel(ctx)
		defer stopServer()
		go func() {
			if err := srv.Start(srvCtx); err != nil {
				log.Error("monitor server stopped", logging.ErrorField(err))
			}
		}()
		log.Info("monitor listening", logging.StringField("addr", cfg.MonitorAddr))
	}

	factoryOpts := []grid.FactoryOption{grid.WithLogger(log)}
	if opts.dialer != nil {
		factoryOpts = append(factoryOpts, grid.WithDialer(opts.dialer))
	}
	lifecycle := session.NewLifecycle(
		grid.NewFactory(cfg.Grid, factoryOpts...),
		cfg.TargetURL,
		session.WithDefaults(cfg.Capabilities),
		session.WithReportTimeout(cfg.ReportTimeout),
		session.WithLogger(log),
		session.WithMetrics(suiteMetrics),
	)
	r := runner.NewRunner(lifecycle,
		runner.WithRegistry(reg),
		runner.WithLogger(log),
		runner.WithMetrics(suiteMetrics),
		runner.WithCollector(collector),
		runner.WithTimeout(cfg.Timeout),
		runner.WithParallelism(cfg.Parallelism),
	)

	results, runErr := r.RunMatrix(ctx, selected, m)

	summary, paths, err := report.Publish(cfg.ReportDir, results,
		report.NewEnvironment(m, cfg.TargetURL, r.Parallelism()))
	if err != nil {
		return err
	}
	status := "completed"
	if !summary.Succeeded() {
		status = "failed"
	}
	finish(status)

	fmt.Fprintf(cmd.OutOrStdout(),
		"%d passed, %d failed, %d errors, %d skipped of %d (%s)\nreport: %s\n",
		summary.Passed, summary.Failed, summary.Errors, summary.Skipped,
		summary.Total, status, paths.HTML,
	)

	if runErr != nil {
		return fmt.Errorf("run interrupted: %w", runErr)
	}
	if !summary.Succeeded() {
		return errRunFailed
	}
	return nil
}
