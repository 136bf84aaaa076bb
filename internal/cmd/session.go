package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/authdemo/internal/ux"
)

func newWhoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged-in user",
		Long: `Fetch the profile of the logged-in user from the API and store it in the
session.`,
		Args: cobra.NoArgs,
		RunE: runWhoami,
	}
}

func runWhoami(cmd *cobra.Command, args []string) error {
	cc, err := FromCommand(cmd)
	if err != nil {
		return err
	}
	app, err := cc.OpenApp(cmd.Context())
	if err != nil {
		return err
	}
	defer app.Close()

	if app.State.Get().AccessToken == "" {
		return errNotAuthenticated()
	}

	user := app.Service.FetchCurrentUser(cmd.Context())
	if user == nil {
		return errUserUnavailable()
	}
	return cc.Output(ux.NewUserView(user))
}

func newRefreshCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "refresh",
		Short: "Renew the access token",
		Long: `Exchange the stored refresh token for a new access token. The refresh
token is kept when the API does not rotate it.

Tokens are masked in the output unless --show-tokens is given.`,
		Args: cobra.NoArgs,
		RunE: runRefresh,
	}
	cmd.Flags().Bool("show-tokens", false, "print tokens unmasked")
	return cmd
}

func runRefresh(cmd *cobra.Command, args []string) error {
	cc, err := FromCommand(cmd)
	if err != nil {
		return err
	}
	reveal, err := cmd.Flags().GetBool("show-tokens")
	if err != nil {
		return err
	}

	app, err := cc.OpenApp(cmd.Context())
	if err != nil {
		return err
	}
	defer app.Close()

	set, err := app.Service.Refresh(cmd.Context())
	if err != nil {
		return err
	}
	return cc.Output(ux.NewRefreshView(set.AccessToken, set.RefreshToken, set.ExpiresIn, reveal))
}

func newStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the stored session",
		Long: `Show the session restored from the local store: the user, masked tokens,
the time left on the access token and its decoded claims. The API is not
contacted.`,
		Args: cobra.NoArgs,
		RunE: runStatus,
	}
	cmd.Flags().Bool("show-tokens", false, "print tokens unmasked")
	return cmd
}

func runStatus(cmd *cobra.Command, args []string) error {
	cc, err := FromCommand(cmd)
	if err != nil {
		return err
	}
	reveal, err := cmd.Flags().GetBool("show-tokens")
	if err != nil {
		return err
	}

	app, err := cc.OpenApp(cmd.Context())
	if err != nil {
		return err
	}
	defer app.Close()

	return cc.Output(ux.NewSessionView(app.State.Get(), time.Now(), reveal))
}
