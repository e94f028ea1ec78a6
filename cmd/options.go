package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/KaramelBytes/fraudlens-cli/internal/analysis"
	cfgpkg "github.com/KaramelBytes/fraudlens-cli/internal/config"
	"github.com/KaramelBytes/fraudlens-cli/internal/dataset"
	"github.com/KaramelBytes/fraudlens-cli/internal/report"
	"github.com/spf13/cobra"
)

// tableFlags are the ingestion and pipeline flags shared by analyze and
// analyze-batch. Zero values defer to the loaded config.
type tableFlags struct {
	delimiter     string
	decimal       string
	thousands     string
	maxRows       int
	sheetName     string
	sheetIndex    int
	bucketSeconds float64
	top           int
	sequential    bool
	format        string
}

func (f *tableFlags) register(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringVar(&f.format, "format", "", "output format: "+report.FormatNames()+" (default from config)")
	fl.StringVar(&f.delimiter, "delimiter", "", "CSV delimiter: ',' | ';' | 'tab'")
	fl.StringVar(&f.decimal, "decimal", "", "decimal separator for numbers: '.'|'comma'")
	fl.StringVar(&f.thousands, "thousands", "", "thousands separator for numbers: ','|'.'|'space'")
	fl.IntVar(&f.maxRows, "max-rows", 0, "maximum rows to process (0 = config value, unlimited by default)")
	fl.StringVar(&f.sheetName, "sheet-name", "", "XLSX: sheet name to analyze")
	fl.IntVar(&f.sheetIndex, "sheet-index", 1, "XLSX: 1-based sheet index (used if --sheet-name not provided)")
	fl.Float64Var(&f.bucketSeconds, "bucket-seconds", 0, "time-trend bucket width in seconds (default from config, 3600)")
	fl.IntVar(&f.top, "top", 0, "number of features in the ranking (default from config, 10)")
	fl.BoolVar(&f.sequential, "sequential", false, "run the summary engines one after another")
}

func (f *tableFlags) reset() { *f = tableFlags{sheetIndex: 1} }

func currentConfig() *cfgpkg.Global {
	if cfg == nil {
		return cfgpkg.Defaults()
	}
	return cfg
}

// loadOptions merges config and flags into loader options.
func loadOptions(c *cfgpkg.Global, f *tableFlags) (dataset.Options, error) {
	opt := dataset.DefaultOptions()
	opt.MaxRows = c.MaxRows
	if f.maxRows > 0 {
		opt.MaxRows = f.maxRows
	}
	delim := pick(f.delimiter, c.Delimiter)
	r, err := cfgpkg.ParseDelimiter(delim)
	if err != nil {
		return opt, fmt.Errorf("--delimiter: %w", err)
	}
	opt.Delimiter = r
	if r, err = cfgpkg.ParseDecimal(pick(f.decimal, c.DecimalSeparator)); err != nil {
		return opt, fmt.Errorf("--decimal: %w", err)
	}
	opt.DecimalSeparator = r
	if r, err = cfgpkg.ParseThousands(pick(f.thousands, c.ThousandsSeparator)); err != nil {
		return opt, fmt.Errorf("--thousands: %w", err)
	}
	opt.ThousandsSeparator = r
	opt.SheetName = f.sheetName
	if f.sheetIndex > 0 {
		opt.SheetIndex = f.sheetIndex
	}
	return opt, nil
}

// pipelineOptions merges config and flags into pipeline options.
func pipelineOptions(c *cfgpkg.Global, f *tableFlags) analysis.Options {
	opt := analysis.Options{BucketSeconds: c.BucketSeconds, TopFeatures: c.TopFeatures, Parallel: c.Parallel}
	if f.bucketSeconds > 0 {
		opt.BucketSeconds = f.bucketSeconds
	}
	if f.top > 0 {
		opt.TopFeatures = f.top
	}
	if f.sequential {
		opt.Parallel = false
	}
	return opt
}

func outputFormat(c *cfgpkg.Global, f *tableFlags) (report.Format, error) {
	return report.ParseFormat(pick(f.format, c.OutputFormat))
}

// analyzeFile loads one table and runs the pipeline on it. Loader warnings
// lead the dashboard warnings.
func analyzeFile(path string, lopt dataset.Options, popt analysis.Options) (*analysis.Dashboard, error) {
	ld, err := dataset.Load(path, lopt)
	if err != nil {
		return nil, err
	}
	d, err := analysis.Run(ld.Table, popt)
	if err != nil {
		return nil, fmt.Errorf("analyze %s: %w", filepath.Base(path), err)
	}
	d.Warnings = append(ld.Warnings, d.Warnings...)
	return d, nil
}

func pick(flag, conf string) string {
	if flag != "" {
		return flag
	}
	return conf
}
