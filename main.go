// Package main is the entry point for the feedbackctl CLI
package main

import (
	"errors"
	"os"

	"github.com/feedback-platform/feedbackctl/cmd"
	"github.com/feedback-platform/feedbackctl/internal/output"
)

// version is set at build time via ldflags
var version = "dev"

func main() {
	cmd.SetVersion(version)
	if err := cmd.Execute(); err != nil {
		printer := output.NewPrinter(output.ResolveColors(true))
		var cliErr *output.CLIError
		if errors.As(err, &cliErr) {
			printer.FormatError(cliErr)
			os.Exit(cliErr.ExitCode)
		}
		printer.Error("%s", err.Error())
		os.Exit(output.ExitGeneral)
	}
}
