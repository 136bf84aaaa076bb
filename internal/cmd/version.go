package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/authdemo/internal/version"
)

func newVersionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long: `Print version information including version number, git commit,
build date, Go version, and platform.`,
		Args: cobra.NoArgs,
		RunE: runVersion,
	}
	cmd.Flags().BoolP("verbose", "v", false, "show detailed version information")
	return cmd
}

func runVersion(cmd *cobra.Command, args []string) error {
	cc, err := FromCommand(cmd)
	if err != nil {
		return err
	}
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		return err
	}

	info := version.GetInfo()
	if !cc.Text() {
		return cc.Output(info)
	}

	if verbose {
		fmt.Fprintln(cc.Out, info.String())
		return nil
	}
	fmt.Fprintf(cc.Out, "authdemo %s\n", info.Short())
	return nil
}
