package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/KaramelBytes/fraudlens-cli/internal/report"
	"github.com/KaramelBytes/fraudlens-cli/internal/utils"
	"github.com/spf13/cobra"
)

var (
	abOutDir string
	abQuiet  bool
	abFlags  = tableFlags{sheetIndex: 1}
)

var analyzeBatchCmd = &cobra.Command{
	Use:   "analyze-batch <files...>",
	Short: "Analyze multiple CSV/TSV/XLSX files with progress, one dashboard per file",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		files := expandInputs(args)
		if len(files) == 0 {
			return fmt.Errorf("no input files matched")
		}

		c := currentConfig()
		lopt, err := loadOptions(c, &abFlags)
		if err != nil {
			return err
		}
		popt := pipelineOptions(c, &abFlags)
		format, err := outputFormat(c, &abFlags)
		if err != nil {
			return err
		}
		if format == report.FormatPDF && abOutDir == "" {
			return fmt.Errorf("--format pdf requires --out-dir")
		}
		if abOutDir != "" {
			if err := utils.EnsureDir(abOutDir); err != nil {
				return fmt.Errorf("create out dir: %w", err)
			}
		}

		out := cmd.OutOrStdout()
		total := len(files)
		for i, path := range files {
			if !abQuiet {
				fmt.Fprintf(out, "[%d/%d] Processing %s...\n", i+1, total, filepath.Base(path))
			}
			d, err := analyzeFile(path, lopt, popt)
			if err != nil {
				return err
			}
			body, err := report.Render(format, d)
			if err != nil {
				return err
			}
			if !abQuiet {
				for _, w := range d.Warnings {
					fmt.Fprintf(os.Stderr, "⚠ %s: %s\n", filepath.Base(path), w)
				}
			}

			if abOutDir == "" {
				if !abQuiet {
					fmt.Fprintln(out, string(body))
				}
				continue
			}
			base := filepath.Base(path)
			name := strings.TrimSuffix(base, filepath.Ext(base))
			if lopt.SheetName != "" && strings.HasSuffix(strings.ToLower(base), ".xlsx") {
				name += "__sheet-" + slug(lopt.SheetName)
			}
			want := filepath.Join(abOutDir, name+".dashboard"+format.Ext())
			dest := utils.UniquePath(want)
			if dest != want && !abQuiet {
				fmt.Fprintf(out, "⚠ Detected existing dashboard, writing to %s to avoid overwrite.\n", filepath.Base(dest))
			}
			if err := utils.SafeWriteFile(dest, body); err != nil {
				return fmt.Errorf("write dashboard: %w", err)
			}
			if !abQuiet {
				fmt.Fprintf(out, "✓ Wrote analysis to %s\n", dest)
			}
		}
		return nil
	},
}

// expandInputs resolves globs, keeps literal paths that exist, drops
// duplicates and sorts the result.
func expandInputs(args []string) []string {
	var files []string
	seen := map[string]struct{}{}
	for _, arg := range args {
		matches, _ := filepath.Glob(arg)
		if len(matches) == 0 {
			if _, err := os.Stat(arg); err == nil {
				matches = []string{arg}
			}
		}
		for _, m := range matches {
			if _, ok := seen[m]; ok {
				continue
			}
			seen[m] = struct{}{}
			files = append(files, m)
		}
	}
	sort.Strings(files)
	return files
}

func slug(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else if r == ' ' || r == '-' || r == '_' {
			b.WriteRune('-')
		}
	}
	if out := strings.Trim(b.String(), "-"); out != "" {
		return out
	}
	return "sheet"
}

func init() {
	rootCmd.AddCommand(analyzeBatchCmd)
	analyzeBatchCmd.Flags().StringVar(&abOutDir, "out-dir", "", "directory for one dashboard file per input (stdout if omitted)")
	analyzeBatchCmd.Flags().BoolVar(&abQuiet, "quiet", false, "suppress progress and non-essential output")
	abFlags.register(analyzeBatchCmd)
}
