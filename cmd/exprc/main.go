// Package main provides the entry point for the exprc expression compiler CLI.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/Sumatoshi-tech/exprgraph/cmd/exprc/commands"
	"github.com/Sumatoshi-tech/exprgraph/pkg/version"
)

func main() {
	version.InitBinaryVersion()

	err := commands.NewRootCommand().Execute()
	if err == nil {
		return
	}

	var exitErr *commands.ExitError
	if errors.As(err, &exitErr) {
		if exitErr.Err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", exitErr.Err)
		}

		os.Exit(exitErr.Code)
	}

	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}
