package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/oidcd/oidcd/pkg/log"
)

// commandRoot wires the subcommands together, grounded on dex's
// cmd/dex/poke.go commandRoot: a bare root command that prints help and
// exits nonzero when invoked with no subcommand.
func commandRoot() *cobra.Command {
	var (
		logLevel  string
		logFormat string
	)

	rootCmd := &cobra.Command{
		Use:   "oidcd",
		Short: "Acquire and cache OIDC access tokens for configured accounts",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Help() //nolint:errcheck
			os.Exit(2)
		},
	}
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "debug, info, warn or error")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "text or json")

	// loggerFunc is resolved lazily, once persistent flags have actually
	// been parsed from argv, rather than at command-tree construction time.
	loggerFunc := func() log.Logger {
		l, err := newLogger(logLevel, logFormat)
		if err != nil {
			l, _ = newLogger("info", "text")
		}
		return l
	}

	rootCmd.AddCommand(commandToken(loggerFunc))
	rootCmd.AddCommand(commandAuthorize(loggerFunc))
	rootCmd.AddCommand(commandDevice(loggerFunc))
	rootCmd.AddCommand(commandSweep(loggerFunc))
	rootCmd.AddCommand(commandVersion())
	return rootCmd
}

func main() {
	if err := commandRoot().Execute(); err != nil {
		os.Exit(2)
	}
}
