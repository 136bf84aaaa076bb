package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/felixgeelhaar/authdemo/internal/config"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "View or create the authdemo configuration",
		Long: `Manage the configuration stored at ~/.authdemo/config.yaml

Values are resolved in this order, highest first:
  • command line flags
  • AUTHDEMO_* environment variables (also read from .env)
  • the config file
  • built-in defaults

Examples:
  # Show the effective configuration
  authdemo config view

  # Write a config file with the defaults
  authdemo config init

  # Show the config file path
  authdemo config path
`,
	}

	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a config file with the current settings",
		Args:  cobra.NoArgs,
		RunE:  runConfigInit,
	}
	initCmd.Flags().Bool("force", false, "overwrite an existing config file")
	initCmd.Flags().StringP("output", "o", "", "where to write the file (default --config or "+config.DefaultPath()+")")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "view",
			Short: "Display the effective configuration",
			Args:  cobra.NoArgs,
			RunE:  runConfigView,
		},
		&cobra.Command{
			Use:   "path",
			Short: "Show the configuration file path",
			Args:  cobra.NoArgs,
			RunE:  runConfigPath,
		},
		initCmd,
	)
	return cmd
}

// configPath is the --config value or the default location.
func configPath(cmd *cobra.Command) (string, error) {
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return "", err
	}
	if path == "" {
		path = config.DefaultPath()
	}
	return path, nil
}

type configView struct {
	config.Config `yaml:",inline"`
}

func (v configView) String() string {
	data, err := yaml.Marshal(v.Config)
	if err != nil {
		return fmt.Sprintf("%+v", v.Config)
	}
	return strings.TrimRight(string(data), "\n")
}

func runConfigView(cmd *cobra.Command, args []string) error {
	cc, err := FromCommand(cmd)
	if err != nil {
		return err
	}
	return cc.Output(configView{*cc.Config})
}

func runConfigPath(cmd *cobra.Command, args []string) error {
	path, err := configPath(cmd)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), path)
	return nil
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	cc, err := FromCommand(cmd)
	if err != nil {
		return err
	}
	force, err := cmd.Flags().GetBool("force")
	if err != nil {
		return err
	}
	path, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}
	if path == "" {
		if path, err = configPath(cmd); err != nil {
			return err
		}
	}

	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("config file already exists at %s (use --force to overwrite)", path)
	}
	if err := config.Save(cc.Config, path); err != nil {
		return err
	}
	cc.Printer.Success("✓ Configuration written to " + path)
	return nil
}
