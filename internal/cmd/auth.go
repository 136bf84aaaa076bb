package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/authdemo/internal/auth"
	"github.com/felixgeelhaar/authdemo/internal/exitcode"
	"github.com/felixgeelhaar/authdemo/internal/tui"
	"github.com/felixgeelhaar/authdemo/internal/ux"
)

// credentialFlags reads the credential flags and prompts for whatever is
// missing when a terminal is attached.
func credentialFlags(cmd *cobra.Command, withConfirm bool) (tui.Credentials, error) {
	var c tui.Credentials
	var err error
	if c.Username, err = cmd.Flags().GetString("username"); err != nil {
		return c, err
	}
	if c.Password, err = cmd.Flags().GetString("password"); err != nil {
		return c, err
	}
	if withConfirm {
		if c.PasswordConfirm, err = cmd.Flags().GetString("password-confirm"); err != nil {
			return c, err
		}
	}

	if tui.ShouldPrompt() {
		if err := tui.PromptCredentials(cmd.Context(), &c, withConfirm); err != nil {
			return c, promptError(err)
		}
	}
	return c, nil
}

type registerOutput struct {
	Message  string `json:"message" yaml:"message"`
	Username string `json:"username" yaml:"username"`
}

func newRegisterCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		Long: `Create an account on the auth API. Registration does not log you in.

The username must have at least 3 characters and the password between 8 and
72. Missing values are prompted for when a terminal is attached.

Examples:
  authdemo register --username alice
  authdemo register -u alice -p password123 --password-confirm password123`,
		Args: cobra.NoArgs,
		RunE: runRegister,
	}
	cmd.Flags().StringP("username", "u", "", "username")
	cmd.Flags().StringP("password", "p", "", "password")
	cmd.Flags().String("password-confirm", "", "password confirmation")
	return cmd
}

func runRegister(cmd *cobra.Command, args []string) error {
	cc, err := FromCommand(cmd)
	if err != nil {
		return err
	}
	creds, err := credentialFlags(cmd, true)
	if err != nil {
		return err
	}

	app, err := cc.OpenApp(cmd.Context())
	if err != nil {
		return err
	}
	defer app.Close()

	res, err := app.Service.Register(cmd.Context(), creds.Username, creds.Password, creds.PasswordConfirm)
	if err != nil {
		return err
	}

	if cc.Text() {
		cc.Printer.Success(ux.MsgRegistered)
		return nil
	}
	return cc.Output(registerOutput{Message: ux.MsgRegistered, Username: res.Username})
}

type loginOutput struct {
	Message     string       `json:"message" yaml:"message"`
	User        *ux.UserView `json:"user" yaml:"user"`
	ExpiresIn   int64        `json:"expires_in" yaml:"expires_in"`
	TokenExpiry time.Time    `json:"token_expiry" yaml:"token_expiry"`
}

func newLoginCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and store the session",
		Long: `Exchange credentials for an access and refresh token, store them in the
session store and load the user profile.

Examples:
  authdemo login --username alice
  authdemo login -u alice -p password123 --format json`,
		Args: cobra.NoArgs,
		RunE: runLogin,
	}
	cmd.Flags().StringP("username", "u", "", "username")
	cmd.Flags().StringP("password", "p", "", "password")
	return cmd
}

func runLogin(cmd *cobra.Command, args []string) error {
	cc, err := FromCommand(cmd)
	if err != nil {
		return err
	}
	creds, err := credentialFlags(cmd, false)
	if err != nil {
		return err
	}

	app, err := cc.OpenApp(cmd.Context())
	if err != nil {
		return err
	}
	defer app.Close()

	res, err := app.Service.Login(cmd.Context(), creds.Username, creds.Password)
	if err != nil {
		return err
	}

	if !cc.Text() {
		return cc.Output(loginOutput{
			Message:     ux.MsgLoggedIn,
			User:        ux.NewUserView(res.User),
			ExpiresIn:   res.Tokens.ExpiresIn,
			TokenExpiry: res.Tokens.Expiry,
		})
	}

	cc.Printer.Success(ux.MsgLoggedIn)
	cc.Printer.Status(ux.StatusLine(app.State.Get(), time.Now()))
	if res.User == nil {
		cc.Printer.Error(errUserUnavailable())
	}
	return nil
}

func newLogoutCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		Long: `Clear the session and remove it from the session store after asking for
confirmation. The API is not contacted.

Without a terminal the confirmation cannot be asked and the logout is
declined unless --yes is given.`,
		Args: cobra.NoArgs,
		RunE: runLogout,
	}
	cmd.Flags().BoolP("yes", "y", false, "log out without asking")
	return cmd
}

func runLogout(cmd *cobra.Command, args []string) error {
	cc, err := FromCommand(cmd)
	if err != nil {
		return err
	}
	yes, err := cmd.Flags().GetBool("yes")
	if err != nil {
		return err
	}

	var confirmer auth.Confirmer = tui.Confirmer{}
	if yes {
		confirmer = auth.AlwaysConfirm
	}

	app, err := cc.OpenApp(cmd.Context(), auth.WithConfirmer(confirmer))
	if err != nil {
		return err
	}
	defer app.Close()

	ok, err := app.Service.Logout(cmd.Context())
	if err != nil {
		return promptError(err)
	}
	if !ok {
		cc.Printer.Info(ux.MsgLogoutKept)
		return exitcode.ErrDeclined
	}

	cc.Printer.Success(ux.MsgLoggedOut)
	return nil
}
