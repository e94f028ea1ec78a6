package analysis

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/KaramelBytes/fraudlens-cli/internal/dataset"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustTable(t *testing.T, header []string, records ...[]string) *dataset.Table {
	t.Helper()
	tbl, err := dataset.FromRecords("test.csv", header, records, dataset.InferOptions{})
	require.NoError(t, err)
	return tbl
}

func mustRoles(t *testing.T, tbl *dataset.Table) dataset.Roles {
	t.Helper()
	r, err := dataset.ResolveRoles(tbl.Columns())
	require.NoError(t, err)
	return r
}

// twoRowTable is the minimal fraud/legit pair used across the tests.
func twoRowTable(t *testing.T) *dataset.Table {
	return mustTable(t, []string{"class", "amount", "time", "V1"},
		[]string{"0", "10", "0", "1"},
		[]string{"1", "20", "3600", "5"},
	)
}

func mixedTable(t *testing.T) *dataset.Table {
	return mustTable(t, []string{"Time", "V1", "V2", "V3", "Amount", "Class"},
		[]string{"0", "1.5", "3", "-1", "12.5", "0"},
		[]string{"10", "2.5", "1", "-2", "3", "0"},
		[]string{"3700", "-4", "2", "5", "250", "1"},
		[]string{"3800", "0.5", "7", "-1", "", "0"},
		[]string{"7300", "3", "4", "0", "9.99", "1"},
		[]string{"7400", "1", "5", "2", "1", ""},
		[]string{"9000", "2", "6", "1", "80", "2"},
	)
}

func TestScenarioTwoRows(t *testing.T) {
	tbl := twoRowTable(t)
	roles := mustRoles(t, tbl)

	cd, err := CountClasses(tbl, roles)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"0": 1, "1": 1}, cd.Map())
	assert.Equal(t, "Non-Fraudulent", cd.Counts[0].Name)
	assert.Equal(t, "Fraudulent", cd.Counts[1].Name)

	ad, err := SplitAmounts(tbl, roles)
	require.NoError(t, err)
	assert.Equal(t, []float64{10}, ad.NonFraud)
	assert.Equal(t, []float64{20}, ad.Fraud)

	tt, err := BucketTimes(tbl, roles, 0)
	require.NoError(t, err)
	assert.Equal(t, []TimeBucket{
		{Bucket: 0, Fraud: 0, NonFraud: 1},
		{Bucket: 1, Fraud: 1, NonFraud: 0},
	}, tt.Buckets)
	assert.Equal(t, []int{0, 1}, tt.Keys())

	fm, err := MeanFeatures(tbl, roles)
	require.NoError(t, err)
	require.Len(t, fm.Features, 1)
	assert.Equal(t, 5.0, fm.Features[0].Fraud)
	assert.Equal(t, 1.0, fm.Features[0].NonFraud)

	rk := RankFeatures(fm, 10)
	assert.Equal(t, []FeatureDiff{{Feature: "V1", Diff: 4}}, rk.Top)
}

func TestClassDistributionLiteralLabels(t *testing.T) {
	tbl := mixedTable(t)
	roles := mustRoles(t, tbl)
	cd, err := CountClasses(tbl, roles)
	require.NoError(t, err)

	labels := make([]string, len(cd.Counts))
	sum := 0
	for i, c := range cd.Counts {
		labels[i] = c.Label
		sum += c.Count
	}
	assert.Equal(t, []string{"0", "1", "2", "null"}, labels)
	assert.Equal(t, tbl.Len(), sum)
	assert.Equal(t, tbl.Len(), cd.Total)
	assert.Equal(t, "Other", cd.Counts[2].Name)
	assert.Equal(t, 1, cd.Map()["null"])
}

func TestClassDistributionNegativeZeroIsZero(t *testing.T) {
	tbl := mustTable(t, []string{"amount", "class", "time", "V1"},
		[]string{"1", "0", "0", "1"},
		[]string{"2", "-0", "10", "2"},
		[]string{"3", "1", "20", "4"},
	)
	cd, err := CountClasses(tbl, mustRoles(t, tbl))
	require.NoError(t, err)
	assert.Equal(t, []ClassCount{
		{Label: "0", Name: "Non-Fraudulent", Count: 2},
		{Label: "1", Name: "Fraudulent", Count: 1},
	}, cd.Counts)

	d, err := Run(tbl, DefaultOptions())
	require.NoError(t, err)
	assert.Empty(t, d.Warnings)
}

func TestAmountPartitions(t *testing.T) {
	tbl := mixedTable(t)
	roles := mustRoles(t, tbl)
	ad, err := SplitAmounts(tbl, roles)
	require.NoError(t, err)

	assert.Equal(t, []float64{12.5, 3}, ad.NonFraud)
	assert.Equal(t, []float64{250, 9.99}, ad.Fraud)
	assert.Equal(t, 1, ad.Skipped)
	assert.LessOrEqual(t, len(ad.Fraud)+len(ad.NonFraud), tbl.Len())

	assert.Equal(t, 2, ad.FraudSummary.Count)
	assert.InDelta(t, 129.995, ad.FraudSummary.Mean, 1e-9)
	assert.Equal(t, 9.99, ad.FraudSummary.Min)
	assert.Equal(t, 250.0, ad.FraudSummary.Max)
	assert.InDelta(t, 4.75, ad.NonFraudSummary.Std, 1e-9)
}

func TestAmountSummaryEmptyPartition(t *testing.T) {
	tbl := mustTable(t, []string{"amount", "class", "time"}, []string{"5", "0", "0"})
	ad, err := SplitAmounts(tbl, mustRoles(t, tbl))
	require.NoError(t, err)
	assert.Empty(t, ad.Fraud)
	assert.NotNil(t, ad.Fraud)
	assert.Equal(t, Summary{}, ad.FraudSummary)
}

func TestAmountSummaryOverflowIsZeroed(t *testing.T) {
	tbl := mustTable(t, []string{"amount", "class", "time"},
		[]string{"1.7e308", "0", "0"},
		[]string{"1.7e308", "0", "3600"},
		[]string{"1", "1", "7200"},
	)
	ad, err := SplitAmounts(tbl, mustRoles(t, tbl))
	require.NoError(t, err)
	assert.Equal(t, Summary{Count: 2, Min: 1.7e308, Max: 1.7e308, Overflow: true}, ad.NonFraudSummary)
	assert.Equal(t, Summary{Count: 1, Mean: 1, Median: 1, Min: 1, Max: 1}, ad.FraudSummary)

	_, err = json.Marshal(ad)
	assert.NoError(t, err)
}

func TestTimeBucketsSumToBinaryRows(t *testing.T) {
	tbl := mixedTable(t)
	roles := mustRoles(t, tbl)
	tt, err := BucketTimes(tbl, roles, 0)
	require.NoError(t, err)

	binary := 0
	for i := 0; i < tbl.Len(); i++ {
		if _, ok := dataset.LabelOf(tbl.Value(i, roles.Class)); ok {
			binary++
		}
	}
	total := 0
	for i, b := range tt.Buckets {
		total += b.Fraud + b.NonFraud
		if i > 0 {
			assert.Less(t, tt.Buckets[i-1].Bucket, b.Bucket)
		}
	}
	assert.Equal(t, binary, total)
	assert.Equal(t, []int{0, 1, 2}, tt.Keys())
	assert.Equal(t, TimeBucket{Bucket: 1, Fraud: 1, NonFraud: 1}, tt.Buckets[1])
}

func TestTimeBucketsCustomWidthAndNegative(t *testing.T) {
	tbl := mustTable(t, []string{"amount", "class", "time"},
		[]string{"1", "0", "-1"},
		[]string{"1", "1", "59"},
		[]string{"1", "1", "60"},
		[]string{"1", "0", "soon"},
	)
	tt, err := BucketTimes(tbl, mustRoles(t, tbl), 60)
	require.NoError(t, err)
	assert.Equal(t, []TimeBucket{
		{Bucket: -1, NonFraud: 1},
		{Bucket: 0, Fraud: 1},
		{Bucket: 1, Fraud: 1},
	}, tt.Buckets)
	assert.Equal(t, 1, tt.Skipped)
	assert.Equal(t, 60.0, tt.BucketSeconds)
}

func TestTimeBucketsSkipOutOfRangeTimes(t *testing.T) {
	tbl := mustTable(t, []string{"amount", "class", "time"},
		[]string{"1", "0", "1e300"},
		[]string{"1", "1", "-1e300"},
		[]string{"1", "0", "0"},
	)
	tt, err := BucketTimes(tbl, mustRoles(t, tbl), 0)
	require.NoError(t, err)
	assert.Equal(t, []TimeBucket{{Bucket: 0, NonFraud: 1}}, tt.Buckets)
	assert.Equal(t, 2, tt.Skipped)
}

func TestFeatureMeansOverflowIsZeroed(t *testing.T) {
	tbl := mustTable(t, []string{"amount", "class", "time", "V1"},
		[]string{"1", "1", "0", "1.7e308"},
		[]string{"1", "1", "0", "1.7e308"},
		[]string{"1", "0", "0", "2"},
	)
	fm, err := MeanFeatures(tbl, mustRoles(t, tbl))
	require.NoError(t, err)
	require.Len(t, fm.Features, 1)
	assert.Equal(t, FeatureMean{Feature: "V1", Fraud: 0, NonFraud: 2, FraudCount: 2, NonFraudCount: 1, Overflow: true}, fm.Features[0])
}

func TestFeatureMeansEmptyPartitionIsZero(t *testing.T) {
	tbl := mustTable(t, []string{"amount", "class", "time", "V1", "V2"},
		[]string{"1", "0", "0", "2", "x"},
		[]string{"1", "0", "0", "4", "3"},
	)
	fm, err := MeanFeatures(tbl, mustRoles(t, tbl))
	require.NoError(t, err)
	require.Len(t, fm.Features, 2)
	assert.Equal(t, FeatureMean{Feature: "V1", Fraud: 0, NonFraud: 3, FraudCount: 0, NonFraudCount: 2}, fm.Features[0])
	assert.Equal(t, FeatureMean{Feature: "V2", Fraud: 0, NonFraud: 3, FraudCount: 0, NonFraudCount: 1}, fm.Features[1])
}

func TestEnginesRejectEmptyTable(t *testing.T) {
	tbl := mustTable(t, []string{"amount", "class", "time", "V1"})
	roles := mustRoles(t, tbl)

	_, err := CountClasses(tbl, roles)
	assert.ErrorIs(t, err, dataset.ErrEmptyTable)
	_, err = SplitAmounts(tbl, roles)
	assert.ErrorIs(t, err, dataset.ErrEmptyTable)
	_, err = BucketTimes(tbl, roles, 0)
	assert.ErrorIs(t, err, dataset.ErrEmptyTable)
	_, err = MeanFeatures(tbl, roles)
	assert.ErrorIs(t, err, dataset.ErrEmptyTable)
	_, err = Correlate(tbl, roles.HeatmapColumns())
	assert.ErrorIs(t, err, dataset.ErrEmptyTable)
	_, err = Run(tbl, DefaultOptions())
	assert.ErrorIs(t, err, dataset.ErrEmptyTable)
}

func TestEnginesRejectUnknownColumns(t *testing.T) {
	tbl := twoRowTable(t)
	_, err := SplitAmounts(tbl, dataset.Roles{Amount: "nope", Class: "class"})
	var se *StageError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, StageAmountDistribution, se.Stage)
	assert.Equal(t, "nope", se.Column)
	assert.ErrorIs(t, err, ErrUnknownColumn)
}
