// Copyright (c) 2024, ZStud
// See LICENSE for licensing information

// reef bridges bash and fish: it parses bash syntax, runs bash commands
// as subprocesses, and reports their environment changes as fish
// statements for the calling shell to eval.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "reef",
	Short: "Run bash commands from fish",
	Long: `reef lets a fish session run commands and scripts written for bash.

Commands execute in a real bash subprocess; reef captures the resulting
environment and working-directory changes and prints them to stdout as
fish statements, ready to eval. The check and parse subcommands use
reef's own bash parser and never execute anything.`,
	SilenceErrors: true,
}

// exitCode carries a subcommand's exit status out to main; RunE errors
// are reserved for usage and I/O failures.
var exitCode int

func main() {
	os.Exit(main1())
}

func main1() int {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "reef:", err)
		return 1
	}
	return exitCode
}
