package analysis

import (
	"github.com/KaramelBytes/fraudlens-cli/internal/dataset"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// UndefinedCorrelation is stored in a cell whose coefficient does not exist:
// one side has zero variance, the pair has no common numeric rows, or the
// moments overflow the float64 range. It is 0
// rather than NaN so results stay JSON-encodable; Undefined lists the cells.
const UndefinedCorrelation = 0.0

// CellRef addresses one matrix cell by column name.
type CellRef struct {
	Row string `json:"row" yaml:"row"`
	Col string `json:"col" yaml:"col"`
}

// CorrelationMatrix is a symmetric Pearson matrix indexed by Columns.
type CorrelationMatrix struct {
	Columns      []string    `json:"columns" yaml:"columns"`
	Values       [][]float64 `json:"values" yaml:"values"` // row-major, Values[i][j]
	ZeroVariance []string    `json:"zero_variance" yaml:"zero_variance"`
	Undefined    []CellRef   `json:"undefined" yaml:"undefined"`
}

// At returns the coefficient for two column names.
func (m *CorrelationMatrix) At(a, b string) (float64, bool) {
	i, j := -1, -1
	for k, c := range m.Columns {
		if c == a {
			i = k
		}
		if c == b {
			j = k
		}
	}
	if i < 0 || j < 0 {
		return 0, false
	}
	return m.Values[i][j], true
}

// column holds one extracted numeric column. For complete columns the
// population moments and standard scores are computed once and shared by
// every pair.
type column struct {
	name     string
	vals     []float64
	valid    []bool
	complete bool
	mean     float64
	std      float64
	scores   []float64
	constant bool
}

// Correlate computes the pairwise Pearson matrix of the named columns using
// population moments. Rows where either cell is not numeric are left out of
// that pair.
func Correlate(t *dataset.Table, names []string) (*CorrelationMatrix, error) {
	if err := checkTable(StageCorrelation, t); err != nil {
		return nil, err
	}
	cols := make([]*column, len(names))
	for i, name := range names {
		vals, valid, complete, err := t.Numbers(name)
		if err != nil {
			return nil, &StageError{Stage: StageCorrelation, Column: name, Err: ErrUnknownColumn}
		}
		c := &column{name: name, vals: vals, valid: valid, complete: complete}
		if complete {
			c.mean, c.std = stat.PopMeanStdDev(vals, nil)
			c.constant = constant(vals)
			c.scores = make([]float64, len(vals))
			copy(c.scores, vals)
			floats.AddConst(-c.mean, c.scores)
			if c.std > 0 {
				floats.Scale(1/c.std, c.scores)
			}
		}
		cols[i] = c
	}

	k := len(names)
	m := &CorrelationMatrix{
		Columns:      append([]string(nil), names...),
		Values:       make([][]float64, k),
		ZeroVariance: []string{},
		Undefined:    []CellRef{},
	}
	for i := range m.Values {
		m.Values[i] = make([]float64, k)
	}
	for _, c := range cols {
		if c.complete && (c.std == 0 || c.constant) {
			m.ZeroVariance = append(m.ZeroVariance, c.name)
		} else if !c.complete && constant(numericOnly(c)) {
			m.ZeroVariance = append(m.ZeroVariance, c.name)
		}
	}
	for i := 0; i < k; i++ {
		for j := i; j < k; j++ {
			r, ok := pairCorrelation(cols[i], cols[j], i == j)
			if !ok {
				r = UndefinedCorrelation
				m.Undefined = append(m.Undefined, CellRef{Row: names[i], Col: names[j]})
				if i != j {
					m.Undefined = append(m.Undefined, CellRef{Row: names[j], Col: names[i]})
				}
			}
			m.Values[i][j] = r
			m.Values[j][i] = r
		}
	}
	return m, nil
}

// pairCorrelation returns false when the coefficient is undefined.
func pairCorrelation(x, y *column, self bool) (float64, bool) {
	if x.complete && y.complete {
		if x.std == 0 || y.std == 0 || x.constant || y.constant {
			return 0, false
		}
		if !finite(x.std) || !finite(y.std) {
			return 0, false
		}
		if self {
			return 1, true
		}
		return coefficient(floats.Dot(x.scores, y.scores) / float64(len(x.scores)))
	}
	// Pairwise-complete fallback for columns with non-numeric cells.
	var xs, ys []float64
	for i := range x.vals {
		if x.valid[i] && y.valid[i] {
			xs = append(xs, x.vals[i])
			ys = append(ys, y.vals[i])
		}
	}
	return pearson(xs, ys, self)
}

func numericOnly(c *column) []float64 {
	var out []float64
	for i, ok := range c.valid {
		if ok {
			out = append(out, c.vals[i])
		}
	}
	return out
}

// pearson computes the coefficient of two equal-length samples from their
// population moments.
func pearson(xs, ys []float64, self bool) (float64, bool) {
	if len(xs) == 0 || constant(xs) || constant(ys) {
		return 0, false
	}
	mx, sx := stat.PopMeanStdDev(xs, nil)
	my, sy := stat.PopMeanStdDev(ys, nil)
	if sx == 0 || sy == 0 || !finite(sx) || !finite(sy) {
		return 0, false
	}
	if self {
		return 1, true
	}
	var sum float64
	for i := range xs {
		sum += (xs[i] - mx) / sx * ((ys[i] - my) / sy)
	}
	return coefficient(sum / float64(len(xs)))
}

// coefficient clamps r to [-1, 1]. A non-finite r is undefined.
func coefficient(r float64) (float64, bool) {
	if !finite(r) {
		return 0, false
	}
	return clamp(r), true
}

// constant reports whether every value is identical. A constant column can
// still show a tiny nonzero std from rounding in the mean.
func constant(vals []float64) bool {
	for _, v := range vals {
		if v != vals[0] {
			return false
		}
	}
	return true
}

func clamp(r float64) float64 {
	switch {
	case r > 1:
		return 1
	case r < -1:
		return -1
	}
	return r
}
