//go:build !kube_noclient

package cli

// This file implements the "check" command: it infers a configuration,
// constructs a client and runs discovery plus one list call against the
// cluster, reporting any failure with its kind, code and chain.

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"kubeclient/pkg/client"
	"kubeclient/pkg/config"
	"kubeclient/pkg/errlog"
	"kubeclient/pkg/errmetrics"
	"kubeclient/pkg/errsink"
	"kubeclient/pkg/request"
	"kubeclient/pkg/retry"
)

// CheckResult summarises a successful check.
type CheckResult struct {
	Server       string `json:"server"`
	Context      string `json:"context,omitempty"`
	Namespace    string `json:"namespace"`
	Source       string `json:"source"`
	TLSStack     string `json:"tlsStack,omitempty"`
	Capabilities string `json:"capabilities"`
	Namespaces   int    `json:"namespaces"`
}

type checkFlags struct {
	config      configFlags
	output      string
	quiet       bool
	metricsFile string
	report      errsink.Options
}

// CheckManager runs cluster checks with injected dependencies.
type CheckManager struct {
	logger   *zap.Logger
	registry *prometheus.Registry
	metrics  *errmetrics.Metrics
	openSink func(ctx context.Context, opts errsink.Options, logger *zap.Logger) (*errsink.Sink, error)
}

// NewCheckManager creates a CheckManager with a fresh metrics registry.
func NewCheckManager(logger *zap.Logger) *CheckManager {
	registry := prometheus.NewRegistry()
	return &CheckManager{
		logger:   logger,
		registry: registry,
		metrics:  errmetrics.NewMetrics(registry),
		openSink: errsink.Open,
	}
}

// NewCheckCmd returns the check subcommand.
func NewCheckCmd(logger *zap.Logger) *cobra.Command {
	return NewCheckCmdWithManager(NewCheckManager(logger))
}

// NewCheckCmdWithManager returns the check subcommand using the provided manager.
func NewCheckCmdWithManager(mgr *CheckManager) *cobra.Command {
	var flags checkFlags
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Check connectivity to the cluster",
		Long: `Infer the client configuration, connect to the API server, resolve the
Namespace kind through discovery and list namespaces. Failures are reported with
their error kind and code; --debug prints the full error chain.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateOutput(flags.output); err != nil {
				return err
			}
			p := &Printer{Out: cmd.OutOrStdout(), Quiet: flags.quiet || flags.output != OutputTable}

			result, err := mgr.Check(cmd.Context(), &flags, p)
			if err != nil {
				mgr.recordFailure(cmd.Context(), &flags, p, err)
				reportError(cmd.ErrOrStderr(), err)
				mgr.writeMetrics(flags.metricsFile)
				return fmt.Errorf("%w: %s", ErrCheckFailed, errKindLabel(err))
			}
			mgr.writeMetrics(flags.metricsFile)
			return render(cmd.OutOrStdout(), flags.output, result, func() [][]string { return checkTable(result) })
		},
		SilenceUsage: true,
	}
	flags.config.register(cmd)
	cmd.Flags().StringVarP(&flags.output, "output", "o", OutputTable, "Output format: table, yaml or json")
	cmd.Flags().BoolVarP(&flags.quiet, "quiet", "q", false, "Only print the result")
	cmd.Flags().StringVar(&flags.metricsFile, "metrics-file", "", "Write error counters to this file in Prometheus text format")
	cmd.Flags().StringSliceVar(&flags.report.Addr, "report-addr", nil, "ClickHouse address to store a diagnostic report of a failure")
	cmd.Flags().StringVar(&flags.report.Database, "report-database", "default", "ClickHouse database for diagnostic reports")
	cmd.Flags().StringVar(&flags.report.Username, "report-username", "default", "ClickHouse username")
	cmd.Flags().StringVar(&flags.report.Table, "report-table", errsink.DefaultTable, "ClickHouse table for diagnostic reports")
	return cmd
}

// Check runs the connectivity check.
func (m *CheckManager) Check(ctx context.Context, flags *checkFlags, p *Printer) (*CheckResult, error) {
	opts, err := flags.config.options()
	if err != nil {
		return nil, m.observe(err)
	}

	stop := p.SpinnerStart("Inferring configuration")
	cfg, err := config.Infer(opts)
	if err != nil {
		stop(false, "Configuration could not be inferred")
		return nil, m.observe(err)
	}
	stop(true, fmt.Sprintf("Using %s (%s)", cfg.Rest.Host, cfg.Source))

	c, err := client.New(cfg,
		client.WithLogger(errlog.NewLogr(m.logger)),
		client.WithLayers(client.UserAgent("kubeclient-cli")),
	)
	if err != nil {
		return nil, m.observe(err)
	}

	p.Step("Resolving Namespace through discovery")
	resolver, err := c.Resolver()
	if err != nil {
		return nil, m.observe(err)
	}
	namespaces, err := resolver.ResolveKind("v1", "Namespace")
	if err != nil {
		return nil, m.observe(err)
	}

	p.Step("Listing namespaces")
	var count int
	err = retry.OnError(ctx, retry.BackoffFrom(opts.Retry), func(ctx context.Context) error {
		list, err := c.List(ctx, request.Target{Resource: namespaces}, request.ListParams{})
		if err != nil {
			m.metrics.Observe(err)
			m.logger.Debug("list namespaces failed", zap.String("action", retry.Classify(err).String()), zap.Error(err))
			return err
		}
		count = len(list.Items)
		return nil
	})
	if err != nil {
		return nil, err
	}
	p.Success(fmt.Sprintf("Found %d namespaces", count))

	return &CheckResult{
		Server:       cfg.Rest.Host,
		Context:      cfg.Context,
		Namespace:    cfg.Namespace,
		Source:       string(cfg.Source),
		TLSStack:     string(c.TLSStack()),
		Capabilities: c.Capabilities().String(),
		Namespaces:   count,
	}, nil
}

// observe counts err. Each failed list attempt is counted inside the retry loop.
func (m *CheckManager) observe(err error) error {
	m.metrics.Observe(err)
	return err
}

func (m *CheckManager) recordFailure(ctx context.Context, flags *checkFlags, p *Printer, err error) {
	logStructuredError(m.logger, err, "check failed")
	if len(flags.report.Addr) == 0 {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	sink, openErr := m.openSink(ctx, flags.report, m.logger)
	if openErr != nil {
		m.logger.Warn("diagnostic report not stored", zap.Error(openErr))
		return
	}
	defer func() { _ = sink.Close() }()
	if tableErr := sink.EnsureTable(ctx); tableErr != nil {
		m.logger.Warn("diagnostic report not stored", zap.Error(tableErr))
		return
	}
	id, writeErr := sink.Write(ctx, err)
	if writeErr != nil {
		m.logger.Warn("diagnostic report not stored", zap.Error(writeErr))
		return
	}
	p.Info(fmt.Sprintf("Diagnostic report %s stored in %s", id, flags.report.Table))
}

func (m *CheckManager) writeMetrics(path string) {
	if path == "" {
		return
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		m.logger.Warn("failed to write metrics", zap.String("path", path), zap.Error(err))
	}
}

func checkTable(r *CheckResult) [][]string {
	return [][]string{
		{"FIELD", "VALUE"},
		{"Server", r.Server},
		{"Context", r.Context},
		{"Namespace", r.Namespace},
		{"Source", r.Source},
		{"TLS stack", r.TLSStack},
		{"Capabilities", r.Capabilities},
		{"Namespaces", fmt.Sprint(r.Namespaces)},
	}
}
