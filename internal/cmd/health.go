package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/authdemo/internal/errors"
	"github.com/felixgeelhaar/authdemo/internal/health"
	"github.com/felixgeelhaar/authdemo/internal/metrics"
	"github.com/felixgeelhaar/authdemo/internal/ux"
)

func newHealthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "health",
		Short: "Check the API and the session store",
		Long: `Check that the API answers on /health, that the session store is usable
and that the API publishes the endpoints the client needs.

With --watch the API is probed on an interval and every result is printed
until interrupted. --metrics-addr additionally serves Prometheus metrics
while watching.

Examples:
  authdemo health
  authdemo health --format json
  authdemo health --watch --interval 5s --metrics-addr 127.0.0.1:9090`,
		Args: cobra.NoArgs,
		RunE: runHealth,
	}
	cmd.Flags().BoolP("watch", "w", false, "probe the API repeatedly")
	cmd.Flags().Duration("interval", 0, "probe interval for --watch (default from config)")
	cmd.Flags().String("metrics-addr", "", "serve /metrics on this address while watching")
	return cmd
}

func runHealth(cmd *cobra.Command, args []string) error {
	cc, err := FromCommand(cmd)
	if err != nil {
		return err
	}
	watch, err := cmd.Flags().GetBool("watch")
	if err != nil {
		return err
	}

	app, err := cc.OpenApp(cmd.Context())
	if err != nil {
		return err
	}
	defer app.Close()

	if watch {
		return watchHealth(cmd, cc, app)
	}

	mgr := health.NewManager().WithTimeout(cc.Config.Health.Timeout)
	mgr.AddChecker(health.NewAPIChecker(app.Client, app.Metrics))
	mgr.AddChecker(health.NewStoreChecker(app.Store))
	mgr.AddChecker(health.NewContractChecker(app.Client))

	report := mgr.Run(cmd.Context())
	if err := cc.Output(healthOutput{Report: report, order: mgr.CheckNames()}); err != nil {
		return err
	}

	if r := report.Checks["api"]; r != nil && r.Status == health.StatusUnhealthy {
		return errors.Network(fmt.Errorf("%s", r.Message))
	}
	if r := report.Checks["store"]; r != nil && r.Status == health.StatusUnhealthy {
		return errors.Persistence(errors.ErrCodeStoreRead, r.Message, nil)
	}
	return nil
}

func watchHealth(cmd *cobra.Command, cc *CommandContext, app *App) error {
	ctx := cmd.Context()

	interval, err := cmd.Flags().GetDuration("interval")
	if err != nil {
		return err
	}
	if interval <= 0 {
		interval = cc.Config.Health.Interval
	}
	addr, err := cmd.Flags().GetString("metrics-addr")
	if err != nil {
		return err
	}

	if addr != "" {
		bound, done, err := metrics.Serve(ctx, addr, app.Registry)
		if err != nil {
			return fmt.Errorf("failed to serve metrics: %w", err)
		}
		cc.Printer.Info("Metrics on http://" + bound + "/metrics")
		go func() {
			if err := <-done; err != nil {
				cc.Logger.WithError(err).Error("metrics server stopped")
			}
		}()
	}

	monitor := health.NewMonitor(health.NewAPIChecker(app.Client, app.Metrics),
		health.WithInterval(interval),
		health.WithProbeTimeout(cc.Config.Health.Timeout),
		health.OnResult(func(o health.Observation) {
			fmt.Fprintf(cc.Out, "[%s] %s\n", o.CheckedAt.Local().Format(ux.ClockLayout), ux.HealthIndicator(o.Online))
		}),
	)
	monitor.Start(ctx)
	defer monitor.Stop()

	<-ctx.Done()
	return nil
}

// healthOutput renders a report with checks in registration order.
type healthOutput struct {
	health.Report `yaml:",inline"`
	order         []string
}

func (h healthOutput) String() string {
	var b strings.Builder
	api := h.Checks["api"]
	fmt.Fprintf(&b, "API: %s\n\n", ux.HealthIndicator(api != nil && api.Status == health.StatusHealthy))

	for _, name := range h.order {
		r := h.Checks[name]
		if r == nil {
			continue
		}
		fmt.Fprintf(&b, "  %s %-9s %-10s %s", statusMark(r.Status), name, r.Status, r.Message)
		if r.Latency > 0 {
			fmt.Fprintf(&b, " (%s)", r.Latency.Round(time.Millisecond))
		}
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "\nOverall: %s", h.Status)
	return b.String()
}

func statusMark(s health.Status) string {
	switch s {
	case health.StatusHealthy:
		return "✓"
	case health.StatusDegraded:
		return "!"
	default:
		return "✗"
	}
}
