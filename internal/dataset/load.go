package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	log "github.com/sirupsen/logrus"
)

// Options controls how tabular files are read into a Table.
type Options struct {
	// MaxRows limits data rows kept; 0 means unlimited.
	MaxRows int
	// Delimiter for CSV. If 0, '\t' for .tsv files and ',' otherwise.
	Delimiter rune
	// Numeric parsing locale; zero values mean plain '.' decimals.
	DecimalSeparator   rune
	ThousandsSeparator rune
	// XLSX sheet selection. SheetName wins over SheetIndex (1-based).
	SheetName  string
	SheetIndex int
}

// DefaultOptions returns reasonable defaults for loading transaction tables.
func DefaultOptions() Options {
	return Options{SheetIndex: 1}
}

func (o Options) infer() InferOptions {
	return InferOptions{DecimalSeparator: o.DecimalSeparator, ThousandsSeparator: o.ThousandsSeparator}
}

// Loaded is a parsed table plus any non-fatal ingestion notes.
type Loaded struct {
	Table    *Table
	Rows     int // data rows seen in the source, before MaxRows
	Warnings []string
}

// Load reads a CSV, TSV or XLSX file chosen by extension.
func Load(path string, opt Options) (*Loaded, error) {
	if strings.HasSuffix(strings.ToLower(path), ".xlsx") {
		return LoadXLSX(path, opt)
	}
	return LoadCSV(path, opt)
}

// LoadCSV reads a delimited file from disk.
func LoadCSV(path string, opt Options) (*Loaded, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()
	if opt.Delimiter == 0 {
		opt.Delimiter = sniffDelimiter(path)
	}
	return ReadCSV(f, filepath.Base(path), opt)
}

// ReadCSV parses delimited text whose first record is the header.
func ReadCSV(rd io.Reader, name string, opt Options) (*Loaded, error) {
	r := csv.NewReader(rd)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	if opt.Delimiter != 0 {
		r.Comma = opt.Delimiter
	}

	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("read header: %w", ErrNoColumns)
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	header = trimBOM(header)

	var records [][]string
	line := 1
	for {
		rec, err := r.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("read row %d: %w", line+1, err)
		}
		line++
		records = append(records, rec)
	}
	return build(name, header, records, opt)
}

// build turns raw records into a Table, applying the MaxRows cap after empty
// rows have been skipped.
func build(name string, header []string, records [][]string, opt Options) (*Loaded, error) {
	kept := records[:0]
	for _, rec := range records {
		if !blankRecord(rec) {
			kept = append(kept, rec)
		}
	}
	out := &Loaded{Rows: len(kept)}
	maxRows := opt.MaxRows
	if maxRows <= 0 {
		maxRows = math.MaxInt
	}
	if len(kept) > maxRows {
		kept = kept[:maxRows]
		out.Warnings = append(out.Warnings, fmt.Sprintf("processed only %d/%d rows due to MaxRows", maxRows, out.Rows))
	}
	t, err := FromRecords(name, header, kept, opt.infer())
	if err != nil {
		return nil, err
	}
	out.Table = t
	log.Debugf("loaded %s: %d rows, %d columns", name, t.Len(), len(header))
	return out, nil
}

func sniffDelimiter(path string) rune {
	if strings.HasSuffix(strings.ToLower(path), ".tsv") {
		return '\t'
	}
	return ','
}

func trimBOM(header []string) []string {
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	return header
}
