// Package main implements the pyinspect CLI.
// It reads Python source files and reports function blocks, exception flow,
// imports and variables without executing them.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/l3aro/go-pyinspect/cmd/pyinspect/commands"
	"github.com/l3aro/go-pyinspect/internal/log"
)

var (
	version   = "dev"
	buildTime = ""
)

func main() {
	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "pyinspect version %s\n", version)
			if buildTime != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "built %s\n", buildTime)
			}
		},
	}
	commands.RootCmd.AddCommand(versionCmd)

	commands.RootCmd.Flags().BoolP("version", "v", false, "Print version information")
	commands.RootCmd.SetVersionTemplate(`pyinspect version {{.Version}}
`)
	commands.RootCmd.Version = version

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := commands.RootCmd.ExecuteContext(ctx); err != nil {
		log.Error("command failed", "error", err)
		stop()
		os.Exit(1)
	}
}
