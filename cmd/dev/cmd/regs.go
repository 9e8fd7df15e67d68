package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/mklimuk/lumen/light/opt4048"
)

func RegsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "regs",
		Short: "Generate the OPT4048 register map table in markdown",
		RunE: func(cmd *cobra.Command, args []string) error {
			output, err := cmd.Flags().GetString("output")
			if err != nil {
				return fmt.Errorf("could not get output flag: %w", err)
			}
			if output == "-" {
				return writeRegisterTable(cmd.OutOrStdout())
			}
			f, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("could not create %s: %w", output, err)
			}
			if err := writeRegisterTable(f); err != nil {
				_ = f.Close()
				return err
			}
			slog.Info("register table generated", "output", output)
			return f.Close()
		},
	}
	cmd.Flags().String("output", "docs/registers.md", "Output file path, - for stdout")
	return cmd
}

func writeRegisterTable(w io.Writer) error {
	if _, err := fmt.Fprintln(w, "| Name | Address | Width | Access | Reset | Copies |\n|---|---|---|---|---|---|"); err != nil {
		return err
	}
	for _, r := range opt4048.Registers() {
		copies := "1"
		if r.Repeat > 0 {
			copies = fmt.Sprintf("%d (stride %d)", r.Repeat, r.Stride)
		}
		if _, err := fmt.Fprintf(w, "| %s | 0x%02X | %d | %s | 0x%04X | %s |\n", r.Name, r.Address, r.Width, r.Access, r.Reset, copies); err != nil {
			return err
		}
	}
	return nil
}
