package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/felixgeelhaar/authdemo/internal/cmd"
	"github.com/felixgeelhaar/authdemo/internal/exitcode"
	"github.com/felixgeelhaar/authdemo/internal/ux"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cmd.ExecuteContext(ctx); err != nil {
		if ctx.Err() == context.Canceled {
			fmt.Fprintln(os.Stderr, "\nOperación cancelada")
			stop()
			exitcode.Exit(exitcode.Interrupted)
		}

		// A declined confirmation has already been reported.
		if !cmd.IsDeclined(err) {
			fmt.Fprintln(os.Stderr, ux.FormatError(err))
		}
		stop()
		exitcode.ExitWithError(err)
	}
}
