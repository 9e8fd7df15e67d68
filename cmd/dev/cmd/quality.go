package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/gophertribe/devtool/test"
	"github.com/spf13/cobra"
)

// adapterEnv is read by the lumen CLI as the default for --adapter.
const adapterEnv = "LUMEN_ADAPTER"

func devtoolCmd(use, short, what string, run func() error) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := run(); err != nil {
				return fmt.Errorf("failed to run %s: %w", what, err)
			}
			return nil
		},
	}
}

func TestCmd() *cobra.Command {
	return devtoolCmd("test", "Run unit tests (driver, adapters, simulator)", "tests", func() error { return test.Test() })
}

func LintCmd() *cobra.Command {
	return devtoolCmd("lint", "Run linting", "linting", func() error { return test.Lint() })
}

// IntegrationTestCmd runs the integration suite against the simulated sensor
// unless --adapter points it at real hardware.
func IntegrationTestCmd() *cobra.Command {
	var adapter string
	cmd := devtoolCmd("integration-test", "Run integration testing", "integration testing", func() error {
		if err := os.Setenv(adapterEnv, adapter); err != nil {
			return err
		}
		slog.Info("running integration tests", "adapter", adapter)
		return test.Integ()
	})
	cmd.Flags().StringVar(&adapter, "adapter", "sim", "bus adapter used by the integration suite: sim, mcp2221, generic or nanopi")
	return cmd
}
