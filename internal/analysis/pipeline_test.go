package analysis

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/KaramelBytes/fraudlens-cli/internal/dataset"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunTwoRowScenario(t *testing.T) {
	d, err := Run(twoRowTable(t), DefaultOptions())
	require.NoError(t, err)
	assert.NotEmpty(t, d.ID)
	assert.Equal(t, "test.csv", d.Source)
	assert.Equal(t, 2, d.Rows)
	assert.Equal(t, map[string]int{"0": 1, "1": 1}, d.ClassDistribution.Map())
	assert.Equal(t, []float64{20}, d.AmountDistribution.Fraud)
	assert.Equal(t, []FeatureDiff{{Feature: "V1", Diff: 4}}, d.Ranking.Top)
	assert.Equal(t, []string{"V1", "amount", "class"}, d.Correlation.Columns)
	assert.Empty(t, d.Warnings)
}

func TestRunParallelMatchesSequential(t *testing.T) {
	tbl := mixedTable(t)
	seq := DefaultOptions()
	seq.Parallel = false
	a, err := Run(tbl, seq)
	require.NoError(t, err)
	b, err := Run(tbl, DefaultOptions())
	require.NoError(t, err)

	assert.NotEqual(t, a.ID, b.ID)
	b.ID, b.GeneratedAt = a.ID, a.GeneratedAt
	assert.Equal(t, a, b)
}

func TestRunWarnings(t *testing.T) {
	d, err := Run(mixedTable(t), DefaultOptions())
	require.NoError(t, err)
	assert.Contains(t, d.Warnings, "1 row with a non-numeric amount left out of the amount distribution")
	assert.Contains(t, d.Warnings, "2 rows with a class other than 0 or 1 counted in the class distribution only")

	onlyLegit := mustTable(t, []string{"Time", "V1", "Amount", "Class"},
		[]string{"0", "4", "1", "0"},
		[]string{"1", "4", "2", "0"},
	)
	d, err = Run(onlyLegit, DefaultOptions())
	require.NoError(t, err)
	assert.Contains(t, d.Warnings, "no fraudulent rows: fraud feature means default to 0")
	assert.Contains(t, d.Warnings, "zero-variance columns have undefined correlation (shown as 0): V1, Class")
}

func TestRunOverflowWarnings(t *testing.T) {
	tbl := mustTable(t, []string{"Time", "V1", "Amount", "Class"},
		[]string{"0", "1", "1.7e308", "0"},
		[]string{"3600", "2", "1.7e308", "0"},
		[]string{"7200", "3", "1", "1"},
	)
	d, err := Run(tbl, DefaultOptions())
	require.NoError(t, err)
	assert.True(t, d.AmountDistribution.NonFraudSummary.Overflow)
	assert.Contains(t, d.Warnings, "non-fraudulent amount summary overflowed float64 (affected statistics shown as 0)")
	assert.Contains(t, d.Warnings, "correlation undefined for column pairs (shown as 0): V1/Amount, Amount/Class")
	assert.Contains(t, d.Correlation.Undefined, CellRef{Row: "V1", Col: "Amount"})

	_, err = json.Marshal(d)
	assert.NoError(t, err)
}

func TestRunSchemaErrorNamesRole(t *testing.T) {
	tbl := mustTable(t, []string{"Amount", "Class", "V1"}, []string{"1", "0", "2"})
	_, err := Run(tbl, DefaultOptions())
	require.Error(t, err)
	assert.ErrorIs(t, err, dataset.ErrSchema)

	var se *StageError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, StageResolve, se.Stage)
	assert.Equal(t, "time", se.Column)
	assert.Contains(t, err.Error(), "time column is missing")
}

func TestRunAmbiguousRole(t *testing.T) {
	tbl := mustTable(t, []string{"time", "TIME", "amount", "class"}, []string{"1", "2", "3", "0"})
	_, err := Run(tbl, DefaultOptions())
	var re *dataset.RoleError
	require.True(t, errors.As(err, &re))
	assert.Equal(t, dataset.ReasonAmbiguous, re.Reason)
}

func TestRunNilTable(t *testing.T) {
	_, err := Run(nil, DefaultOptions())
	assert.ErrorIs(t, err, dataset.ErrEmptyTable)
}
