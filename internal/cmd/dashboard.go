package cmd

import (
	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/authdemo/internal/errors"
	"github.com/felixgeelhaar/authdemo/internal/health"
	"github.com/felixgeelhaar/authdemo/internal/tui"
)

func newDashboardCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "dashboard",
		Aliases: []string{"ui"},
		Short:   "Open the interactive session dashboard",
		Long: `Open a terminal dashboard with login and registration forms, the session
and token countdown, on-demand refresh, user lookup, endpoint probing and a
live API health indicator.`,
		Args: cobra.NoArgs,
		RunE: runDashboard,
	}
	cmd.Flags().Bool("inline", false, "render inline instead of full screen")
	return cmd
}

func runDashboard(cmd *cobra.Command, args []string) error {
	cc, err := FromCommand(cmd)
	if err != nil {
		return err
	}
	inline, err := cmd.Flags().GetBool("inline")
	if err != nil {
		return err
	}
	if !tui.IsInteractive() {
		return errors.Validation(errors.ErrCodeMissingInput, "El panel requiere una terminal interactiva")
	}

	app, err := cc.OpenApp(cmd.Context())
	if err != nil {
		return err
	}
	defer app.Close()

	deps := tui.Deps{
		Service: app.Service,
		Prober:  app.Prober,
		Health:  health.NewAPIChecker(app.Client, app.Metrics),
	}
	return tui.Run(cmd.Context(), deps, tui.RunOptions{
		Monitor: []health.MonitorOption{
			health.WithInterval(cc.Config.Health.Interval),
			health.WithProbeTimeout(cc.Config.Health.Timeout),
		},
		AltScreen: !inline,
	})
}
