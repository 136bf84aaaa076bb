package cmd

import (
	"context"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/authdemo/internal/config"
	"github.com/felixgeelhaar/authdemo/internal/store"
)

// NewRootCmd builds the command tree. onContext receives the
// CommandContext once flags are parsed so the caller can close it.
func NewRootCmd(onContext func(*CommandContext)) *cobra.Command {
	root := &cobra.Command{
		Use:   "authdemo",
		Short: "Session and token lifecycle client for the auth API",
		Long: `authdemo registers and logs in against the auth API, keeps the resulting
session on disk between runs, refreshes tokens on demand and shows the
session in a terminal dashboard.

The session is restored from the local store on every run. An expired
stored session is discarded at startup; nothing is refreshed automatically.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cc, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			if onContext != nil {
				onContext(cc)
			}
			ctx := cc.startSpan(cmd.Context(), cmd.CommandPath())
			cmd.SetContext(withCommandContext(ctx, cc))
			return nil
		},
	}

	flags := root.PersistentFlags()
	flags.String("config", "", "config file (default "+config.DefaultPath()+")")
	flags.String("api-url", config.DefaultAPIURL, "auth API base URL")
	flags.String("store", store.BackendFile, "session store backend (file, sqlite, memory)")
	flags.String("store-path", "", "session store location (default under ~/.authdemo)")
	flags.String("log-level", "warn", "log level (debug, info, warn, error)")
	flags.String("log-format", "text", "log format (text, json)")
	flags.String("log-file", "", "write logs to a rotating file instead of stderr")
	flags.Bool("no-color", false, "disable colored output")
	flags.StringP("format", "f", "text", "output format (text, json, yaml)")

	root.AddCommand(
		newRegisterCmd(),
		newLoginCmd(),
		newLogoutCmd(),
		newWhoamiCmd(),
		newRefreshCmd(),
		newStatusCmd(),
		newHealthCmd(),
		newProbeCmd(),
		newDashboardCmd(),
		newConfigCmd(),
		newVersionCmd(),
	)
	return root
}

// Run executes the CLI with args, writing results to stdout and diagnostics
// to stderr.
func Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	var cc *CommandContext
	root := NewRootCmd(func(c *CommandContext) { cc = c })
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	if cc != nil {
		cc.Close(context.WithoutCancel(ctx), err)
	}
	return err
}

// ExecuteContext runs the CLI with the process arguments.
func ExecuteContext(ctx context.Context) error {
	return Run(ctx, os.Args[1:], os.Stdout, os.Stderr)
}
