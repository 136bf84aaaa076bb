package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/authdemo/internal/probe"
)

func newProbeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "probe <path>",
		Short: "GET an API path and show the raw response",
		Long: `Send a GET to path with the current access token, if any, and show the
status and body. Any HTTP status is a result; only a connection failure is
an error. /health is always sent without a token.

Examples:
  authdemo probe /users/me
  authdemo probe health --format json`,
		Args: cobra.ExactArgs(1),
		RunE: runProbe,
	}
}

func runProbe(cmd *cobra.Command, args []string) error {
	cc, err := FromCommand(cmd)
	if err != nil {
		return err
	}
	app, err := cc.OpenApp(cmd.Context())
	if err != nil {
		return err
	}
	defer app.Close()

	res, err := app.Prober.Call(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	return cc.Output(probeOutput{*res})
}

type probeOutput struct {
	probe.Result `yaml:",inline"`
}

func (p probeOutput) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n%d %s\n\n", p.Method, p.Path, p.Status, p.StatusText)
	switch body := p.Body.(type) {
	case nil:
	case string:
		b.WriteString(body)
	default:
		data, err := json.MarshalIndent(body, "", "  ")
		if err != nil {
			fmt.Fprintf(&b, "%v", body)
		} else {
			b.Write(data)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}
