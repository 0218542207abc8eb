// Copyright (c) 2024, ZStud
// See LICENSE for licensing information

package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/ZStud/reef/passthrough"
)

var execCmd = &cobra.Command{
	Use:   "exec <command>...",
	Short: "Run a command in bash and sync its environment changes",
	Long: `Runs the given command in bash. The command's own output goes to
stderr; stdout receives fish statements describing any environment or
directory changes the command made. Exits with the command's status.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		exitCode = passthrough.New().Exec(cmd.Context(), strings.Join(args, " "))
		return nil
	},
}

var sourceCmd = &cobra.Command{
	Use:   "source <command>...",
	Short: "Run a bash script for its environment side effects only",
	Long: `Runs the given command in bash with all of its output suppressed
and prints only the resulting environment changes as fish statements.
Meant for sourcing bash configuration scripts from fish.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		exitCode = passthrough.New().ExecEnvDiff(cmd.Context(), strings.Join(args, " "))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(execCmd)
	rootCmd.AddCommand(sourceCmd)
}
