package dataset

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// LoadXLSX reads the selected worksheet of an .xlsx workbook. The first row
// of the sheet is the header.
func LoadXLSX(path string, opt Options) (*Loaded, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer f.Close()
	return readWorkbook(f, filepath.Base(path), opt)
}

// ReadXLSX reads a workbook from a stream, e.g. an HTTP upload.
func ReadXLSX(r io.Reader, name string, opt Options) (*Loaded, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer f.Close()
	return readWorkbook(f, name, opt)
}

func readWorkbook(f *excelize.File, name string, opt Options) (*Loaded, error) {
	sheet, err := pickSheet(f.GetSheetList(), opt, name)
	if err != nil {
		return nil, err
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("read header: %w", ErrNoColumns)
	}
	return build(name, trimBOM(rows[0]), rows[1:], opt)
}

func pickSheet(sheets []string, opt Options, name string) (string, error) {
	if len(sheets) == 0 {
		return "", fmt.Errorf("workbook '%s' has no sheets", name)
	}
	if opt.SheetName != "" {
		for _, s := range sheets {
			if strings.EqualFold(s, opt.SheetName) {
				return s, nil
			}
		}
		return "", fmt.Errorf("sheet '%s' not found in workbook '%s'.\nAvailable sheets: %s",
			opt.SheetName, name, strings.Join(sheets, ", "))
	}
	idx := opt.SheetIndex
	if idx <= 0 {
		idx = 1
	}
	if idx > len(sheets) {
		return "", fmt.Errorf("sheet index %d out of range: workbook '%s' has %d sheets", idx, name, len(sheets))
	}
	return sheets[idx-1], nil
}
