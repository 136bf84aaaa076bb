package tui

import (
	"context"
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/felixgeelhaar/authdemo/internal/health"
)

// RunOptions configure Run.
type RunOptions struct {
	// Monitor options, such as the probe interval.
	Monitor []health.MonitorOption
	// Input and Output default to the terminal.
	Input  io.Reader
	Output io.Writer
	// AltScreen runs the dashboard full screen.
	AltScreen bool
}

// Run starts the health monitor and the dashboard, and blocks until the
// user quits or ctx is cancelled. The monitor and the session subscription
// are stopped before Run returns.
func Run(ctx context.Context, deps Deps, opts RunOptions) error {
	sessions, unsubscribe := SessionFeed(deps.Service.State())
	defer unsubscribe()

	healthCh, onResult := HealthFeed()
	monitor := health.NewMonitor(deps.Health, append(opts.Monitor, health.OnResult(onResult))...)
	monitor.Start(ctx)
	defer monitor.Stop()

	programOpts := []tea.ProgramOption{tea.WithContext(ctx)}
	if opts.AltScreen {
		programOpts = append(programOpts, tea.WithAltScreen())
	}
	if opts.Input != nil {
		programOpts = append(programOpts, tea.WithInput(opts.Input))
	}
	if opts.Output != nil {
		programOpts = append(programOpts, tea.WithOutput(opts.Output))
	}

	p := tea.NewProgram(NewModel(ctx, deps, sessions, healthCh), programOpts...)
	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("dashboard: %w", err)
	}
	return nil
}
