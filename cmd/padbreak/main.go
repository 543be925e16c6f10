package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/yndnr/padbreak/internal/cli/command"
	"github.com/yndnr/padbreak/internal/core/domain"
)

// exitInterrupted matches the shell convention for SIGINT.
const exitInterrupted = 130

func main() {
	app := command.App()

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		if errors.Is(err, domain.ErrBatchCancelled) {
			os.Exit(exitInterrupted)
		}
		os.Exit(1)
	}
}
