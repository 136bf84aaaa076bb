package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/trace"

	"github.com/felixgeelhaar/authdemo/internal/api"
	"github.com/felixgeelhaar/authdemo/internal/auth"
	"github.com/felixgeelhaar/authdemo/internal/config"
	"github.com/felixgeelhaar/authdemo/internal/errors"
	"github.com/felixgeelhaar/authdemo/internal/log"
	"github.com/felixgeelhaar/authdemo/internal/metrics"
	"github.com/felixgeelhaar/authdemo/internal/probe"
	"github.com/felixgeelhaar/authdemo/internal/session"
	"github.com/felixgeelhaar/authdemo/internal/store"
	"github.com/felixgeelhaar/authdemo/internal/telemetry"
	"github.com/felixgeelhaar/authdemo/internal/ux"
	"github.com/felixgeelhaar/authdemo/internal/version"
)

// CommandContext holds the resolved configuration and the ambient services
// of one command run. It is built once by the root command's pre-run hook
// from flags, environment and config file, so commands never read globals.
type CommandContext struct {
	Config  *config.Config
	Format  string
	NoColor bool

	Logger  *log.Logger
	Printer *ux.Printer
	Out     io.Writer
	ErrOut  io.Writer

	span              trace.Span
	shutdownTelemetry func(context.Context) error
}

// NewCommandContext loads configuration for cmd and sets up logging and
// tracing.
func NewCommandContext(cmd *cobra.Command) (*CommandContext, error) {
	flags := cmd.Flags()

	configFile, err := flags.GetString("config")
	if err != nil {
		return nil, err
	}
	format, err := flags.GetString("format")
	if err != nil {
		return nil, err
	}
	noColor, err := flags.GetBool("no-color")
	if err != nil {
		return nil, err
	}
	if _, err := ux.NewFormatter(format, nil); err != nil {
		return nil, errors.Validation(errors.ErrCodeMissingInput, err.Error())
	}

	cfg, err := config.Load(config.Options{ConfigFile: configFile, Flags: flags})
	if err != nil {
		return nil, errors.Validation(errors.ErrCodeMissingInput, err.Error())
	}

	cc := &CommandContext{
		Config:  cfg,
		Format:  format,
		NoColor: noColor,
		Out:     cmd.OutOrStdout(),
		ErrOut:  cmd.ErrOrStderr(),
	}
	cc.Printer = ux.NewPrinter(cc.Out, noColor)
	cc.Logger = newLogger(cfg.Log, cc.ErrOut)
	log.SetDefaultLogger(cc.Logger)

	tcfg := telemetry.DefaultConfig()
	tcfg.ServiceVersion = version.GetInfo().Version
	tcfg.Enabled = cfg.Telemetry.Enabled
	tcfg.Endpoint = cfg.Telemetry.Endpoint
	shutdown, err := telemetry.InitProvider(cmd.Context(), tcfg)
	if err != nil {
		cc.Logger.WithError(err).Warn("tracing disabled")
		shutdown = func(context.Context) error { return nil }
	}
	cc.shutdownTelemetry = shutdown

	return cc, nil
}

func newLogger(lc config.LogConfig, stderr io.Writer) *log.Logger {
	lcfg := log.DefaultConfig()
	lcfg.Level = log.ParseLevel(lc.Level)
	lcfg.Format = log.ParseFormat(lc.Format)
	lcfg.Output = log.NewOutput(stderr)
	if lc.File != "" {
		lcfg.Output = log.OutputFile(lc.File, 10, 3)
	}
	return log.New(lcfg)
}

// startSpan opens the span covering the whole command.
func (c *CommandContext) startSpan(ctx context.Context, name string) context.Context {
	ctx, c.span = telemetry.StartCommandSpan(ctx, name)
	return ctx
}

// Close ends the command span, flushes traces and closes the log file.
func (c *CommandContext) Close(ctx context.Context, runErr error) {
	if c.span != nil {
		if runErr != nil {
			telemetry.RecordError(c.span, runErr)
		} else {
			telemetry.RecordSuccess(c.span)
		}
		c.span.End()
	}
	if c.shutdownTelemetry != nil {
		if err := c.shutdownTelemetry(ctx); err != nil {
			c.Logger.WithError(err).Warn("failed to flush traces")
		}
	}
	_ = c.Logger.Close()
}

// Output writes data in the selected --format.
func (c *CommandContext) Output(data any) error {
	f, err := ux.NewFormatter(c.Format, &ux.FormatterOptions{Writer: c.Out, NoColor: c.NoColor})
	if err != nil {
		return err
	}
	return f.Format(data)
}

// Text reports whether results are printed for humans.
func (c *CommandContext) Text() bool {
	return c.Format == "" || c.Format == "text"
}

// App is the wired client: store, API client, session state and the
// services built on them.
type App struct {
	Store    store.Store
	Client   *api.Client
	State    *session.State
	Service  *auth.Service
	Prober   *probe.Prober
	Registry *prometheus.Registry
	Metrics  *metrics.Metrics
	Restored session.LoadResult
}

// OpenApp opens the session store, wires the services and restores the
// stored session. Close the App when done.
func (c *CommandContext) OpenApp(ctx context.Context, opts ...auth.Option) (*App, error) {
	cfg := c.Config

	st, err := store.Open(ctx, cfg.StoreOptions())
	if err != nil {
		return nil, errors.Persistence(errors.ErrCodeStoreOpen, "No se pudo abrir el almacenamiento de sesión", err)
	}

	reg, m := metrics.NewRegistry()
	logger := c.Logger.With("api_url", cfg.API.URL)

	client := api.NewClient(cfg.API.URL,
		api.WithTimeout(cfg.API.Timeout),
		api.WithLogger(logger),
		api.WithMetrics(m),
		api.WithUserAgent(version.GetInfo().UserAgent()),
	)

	state := session.NewState()
	opts = append([]auth.Option{auth.WithLogger(logger), auth.WithMetrics(m)}, opts...)
	svc := auth.NewService(client, state, session.NewPersistence(st, nil), opts...)

	app := &App{
		Store:    st,
		Client:   client,
		State:    state,
		Service:  svc,
		Prober:   probe.New(client, state),
		Registry: reg,
		Metrics:  m,
	}
	app.Restored = svc.Restore(ctx)
	return app, nil
}

// Close releases the store.
func (a *App) Close() error {
	if err := a.Store.Close(); err != nil {
		return fmt.Errorf("failed to close session store: %w", err)
	}
	return nil
}

type contextKey struct{}

func withCommandContext(ctx context.Context, cc *CommandContext) context.Context {
	return context.WithValue(ctx, contextKey{}, cc)
}

// FromCommand returns the CommandContext installed by the root command.
func FromCommand(cmd *cobra.Command) (*CommandContext, error) {
	cc, ok := cmd.Context().Value(contextKey{}).(*CommandContext)
	if !ok || cc == nil {
		return nil, fmt.Errorf("command context not initialized")
	}
	return cc, nil
}
