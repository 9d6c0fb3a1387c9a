// Package main is the entry point for the teamcal CLI.
package main

import (
	"fmt"
	"os"

	"github.com/qcteam/teamcal/internal/app"
	"github.com/qcteam/teamcal/internal/cli"
)

// version is set at build time using -ldflags.
var version = "dev"

// newRootCommand is replaced in tests.
var newRootCommand = cli.NewRootCommand

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(args []string) error {
	// Empty data dir resolves TEAMCAL_DATA_DIR or the XDG default
	container, err := app.New("")
	if err != nil {
		// Help and version still work with a broken config
		if canRunWithoutContainer(args) {
			rootCmd := newRootCommand(nil, version)
			rootCmd.SetArgs(args)
			return rootCmd.Execute()
		}
		return fmt.Errorf("failed to initialize: %w", err)
	}
	defer func() { _ = container.Close() }()

	rootCmd := newRootCommand(container, version)
	rootCmd.SetArgs(args)
	return rootCmd.Execute()
}

func canRunWithoutContainer(args []string) bool {
	if len(args) > 0 && args[0] == "help" {
		return true
	}
	for _, arg := range args {
		if arg == "--version" || arg == "--help" || arg == "-h" {
			return true
		}
	}
	return false
}
