package dataset

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNoColumns is returned when a header row names no columns.
	ErrNoColumns = errors.New("dataset has no columns")
	// ErrDuplicateColumn is returned when two header cells share a name.
	ErrDuplicateColumn = errors.New("duplicate column name")
	// ErrEmptyTable is returned by every engine when a table has no rows.
	ErrEmptyTable = errors.New("no data: table has zero rows")
)

// Table is an immutable, fully materialized dataset. The header defines the
// canonical column set for every row.
type Table struct {
	name    string
	columns []string
	index   map[string]int
	rows    [][]Value
}

// New builds a table from a header and typed rows. Rows shorter than the
// header are padded with nulls and longer rows are truncated. The rows are
// copied so later mutation by the caller cannot leak in.
func New(name string, columns []string, rows [][]Value) (*Table, error) {
	if len(columns) == 0 {
		return nil, ErrNoColumns
	}
	t := &Table{
		name:    name,
		columns: make([]string, len(columns)),
		index:   make(map[string]int, len(columns)),
		rows:    make([][]Value, 0, len(rows)),
	}
	for i, c := range columns {
		c = strings.TrimSpace(c)
		if _, dup := t.index[c]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateColumn, c)
		}
		t.columns[i] = c
		t.index[c] = i
	}
	for _, r := range rows {
		cells := make([]Value, len(columns))
		copy(cells, r)
		t.rows = append(t.rows, cells)
	}
	return t, nil
}

// FromRecords infers typed values for raw text records. Records whose cells
// are all blank are skipped.
func FromRecords(name string, header []string, records [][]string, opt InferOptions) (*Table, error) {
	rows := make([][]Value, 0, len(records))
	for _, rec := range records {
		cells := make([]Value, len(rec))
		blank := true
		for j, raw := range rec {
			cells[j] = Infer(raw, opt)
			blank = blank && cells[j].IsNull()
		}
		if blank {
			continue
		}
		rows = append(rows, cells)
	}
	return New(name, header, rows)
}

func blankRecord(rec []string) bool {
	for _, c := range rec {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// Name is the source label, usually the file base name.
func (t *Table) Name() string { return t.name }

// Len is the number of data rows.
func (t *Table) Len() int { return len(t.rows) }

// Columns returns a copy of the column names in header order.
func (t *Table) Columns() []string {
	out := make([]string, len(t.columns))
	copy(out, t.columns)
	return out
}

// ColumnIndex returns the position of a column by exact name.
func (t *Table) ColumnIndex(name string) (int, bool) {
	i, ok := t.index[name]
	return i, ok
}

// Value returns the cell at row i of column col, or Null if the column does
// not exist.
func (t *Table) Value(i int, col string) Value {
	j, ok := t.index[col]
	if !ok {
		return Null
	}
	return t.rows[i][j]
}

// Row returns a read-only view of row i.
func (t *Table) Row(i int) Row { return Row{t: t, i: i} }

// Numbers extracts a column as floats. valid[i] is false where the cell is
// not numeric; complete reports whether every cell was numeric.
func (t *Table) Numbers(col string) (vals []float64, valid []bool, complete bool, err error) {
	j, ok := t.index[col]
	if !ok {
		return nil, nil, false, fmt.Errorf("unknown column %q", col)
	}
	vals = make([]float64, len(t.rows))
	valid = make([]bool, len(t.rows))
	complete = true
	for i, r := range t.rows {
		if f, ok := r[j].Float(); ok {
			vals[i] = f
			valid[i] = true
		} else {
			complete = false
		}
	}
	return vals, valid, complete, nil
}

// Row is one record viewed through its table's schema.
type Row struct {
	t *Table
	i int
}

// Get returns the value of a named column, or Null if it does not exist.
func (r Row) Get(col string) Value { return r.t.Value(r.i, col) }
