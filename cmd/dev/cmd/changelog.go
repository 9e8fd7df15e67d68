package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"os/exec"

	"github.com/spf13/cobra"
)

const chglog = "git-chglog"

func ChangelogCmd() *cobra.Command {
	var next, output, tag string
	cmd := &cobra.Command{
		Use:   "changelog",
		Short: "Generate or update CHANGELOG.md from git history",
		Long: `Generate CHANGELOG.md with git-chglog from conventional commits.

Commits are expected as <type>[optional scope]: <description>, with scopes
naming the package touched (light, adapter, i2c, cli).

Examples:
  dev changelog
  dev changelog --next v0.3.0
  dev changelog --tag v0.2.0 --output CHANGES.md`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := exec.LookPath(chglog); err != nil {
				slog.Error("git-chglog not found in PATH, install it with:")
				slog.Info("  go install github.com/git-chglog/git-chglog/cmd/git-chglog@latest")
				return fmt.Errorf("git-chglog not installed: %w", err)
			}
			chglogArgs := changelogArgs(next, output, tag)
			slog.Info("running git-chglog", "args", chglogArgs)
			run := exec.Command(chglog, chglogArgs...)
			run.Stdout = os.Stdout
			run.Stderr = os.Stderr
			if err := run.Run(); err != nil {
				return fmt.Errorf("failed to generate changelog: %w", err)
			}
			slog.Info("changelog generated", "output", output)
			return nil
		},
	}
	cmd.Flags().StringVar(&next, "next", "", "Next version tag (e.g., v0.3.0)")
	cmd.Flags().StringVar(&output, "output", "CHANGELOG.md", "Output file path")
	cmd.Flags().StringVar(&tag, "tag", "", "Generate changelog for a single tag")
	return cmd
}

func changelogArgs(next, output, tag string) []string {
	if output == "" {
		output = "CHANGELOG.md"
	}
	args := []string{"--output", output}
	if next != "" {
		args = append(args, "--next-tag", next)
	}
	if tag != "" {
		args = append(args, tag)
	}
	return args
}
