package analysis

import (
	"errors"
	"fmt"

	"github.com/KaramelBytes/fraudlens-cli/internal/dataset"
)

// Stage names one step of the pipeline for error reporting.
type Stage string

const (
	StageResolve            Stage = "resolve"
	StageClassDistribution  Stage = "class-distribution"
	StageAmountDistribution Stage = "amount-distribution"
	StageTimeTrend          Stage = "time-trend"
	StageFeatureMeans       Stage = "feature-means"
	StageCorrelation        Stage = "correlation"
	StageRanking            Stage = "ranking"
)

// StageError reports which stage, and which column if any, aborted the
// pipeline.
type StageError struct {
	Stage  Stage
	Column string
	Err    error
}

func (e *StageError) Error() string {
	if e.Column != "" {
		return fmt.Sprintf("%s (column %q): %v", e.Stage, e.Column, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// ErrUnknownColumn is wrapped when a requested column is not in the table.
var ErrUnknownColumn = errors.New("unknown column")

func checkTable(stage Stage, t *dataset.Table) error {
	if t == nil || t.Len() == 0 {
		return &StageError{Stage: stage, Err: dataset.ErrEmptyTable}
	}
	return nil
}

func checkColumns(stage Stage, t *dataset.Table, cols ...string) error {
	for _, c := range cols {
		if _, ok := t.ColumnIndex(c); !ok {
			return &StageError{Stage: stage, Column: c, Err: ErrUnknownColumn}
		}
	}
	return nil
}
