package main

import (
	"context"
	"fmt"
	"os"

	"deepwork/internal/cli"
	"deepwork/internal/config"
	"deepwork/internal/errors"
	"deepwork/internal/logging"
)

func main() {
	// Stores and the API are built from the loaded configuration once flags are parsed.
	// Commands that run until interrupted install their own signal handling.
	app := cli.NewAppWithConfig(config.NewLoader())

	if err := app.Run(context.Background(), os.Args[1:]); err != nil {
		if errors.ShouldLogError(err) {
			logging.NewLogger("main").WithError(err).Debug("command failed")
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", cli.NewErrorHandler().HandleSimple(err))
		os.Exit(1)
	}
}
