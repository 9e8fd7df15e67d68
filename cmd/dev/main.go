package main

import (
	"log/slog"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"

	"github.com/mklimuk/lumen/cmd/dev/cmd"
)

func newRootCmd() *cobra.Command {
	var debug bool
	rootCmd := &cobra.Command{
		Use:           "dev",
		Short:         "build/test/release tool for the lumen project",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			charm := log.NewWithOptions(os.Stdout, log.Options{
				ReportTimestamp: true,
				TimeFormat:      time.DateTime,
				Prefix:          "dev",
			})
			charm.SetColorProfile(termenv.TrueColor)
			charm.SetLevel(log.InfoLevel)
			if debug {
				charm.SetLevel(log.DebugLevel)
				charm.SetReportCaller(true)
			}
			slog.SetDefault(slog.New(charm))
		},
	}
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")
	rootCmd.AddCommand(
		cmd.BuildCmd(),
		cmd.ChangelogCmd(),
		cmd.TestCmd(),
		cmd.LintCmd(),
		cmd.IntegrationTestCmd(),
		cmd.RegsCmd(),
	)
	return rootCmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		slog.Error("dev command failed", "error", err)
		os.Exit(1)
	}
}
