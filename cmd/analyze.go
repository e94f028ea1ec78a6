package cmd

import (
	"fmt"
	"os"

	"github.com/KaramelBytes/fraudlens-cli/internal/report"
	"github.com/KaramelBytes/fraudlens-cli/internal/utils"
	"github.com/spf13/cobra"
)

var (
	anaOutputPath string
	anaFlags      = tableFlags{sheetIndex: 1}
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <file>",
	Short: "Analyze a CSV/TSV/XLSX transaction table and print the fraud dashboard",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		c := currentConfig()
		lopt, err := loadOptions(c, &anaFlags)
		if err != nil {
			return err
		}
		format, err := outputFormat(c, &anaFlags)
		if err != nil {
			return err
		}
		if format == report.FormatPDF && anaOutputPath == "" {
			return fmt.Errorf("--format pdf requires --output")
		}

		d, err := analyzeFile(path, lopt, pipelineOptions(c, &anaFlags))
		if err != nil {
			return err
		}
		out, err := report.Render(format, d)
		if err != nil {
			return err
		}

		if anaOutputPath != "" {
			if err := utils.SafeWriteFile(anaOutputPath, out); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote analysis to %s\n", anaOutputPath)
		} else {
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
		}
		for _, w := range d.Warnings {
			fmt.Fprintf(os.Stderr, "⚠ %s\n", w)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	analyzeCmd.Flags().StringVarP(&anaOutputPath, "output", "o", "", "optional path to write the dashboard")
	anaFlags.register(analyzeCmd)
}
