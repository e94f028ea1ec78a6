package analysis

import (
	"math"
	"sort"

	"github.com/KaramelBytes/fraudlens-cli/internal/dataset"
	"github.com/montanaflynn/stats"
)

// DefaultBucketSeconds is the width of one time-trend bucket (one hour).
const DefaultBucketSeconds = 3600

// ClassCount is the tally of one literal class value.
type ClassCount struct {
	Label string `json:"label" yaml:"label"`
	Name  string `json:"name" yaml:"name"`
	Count int    `json:"count" yaml:"count"`
}

// ClassDistribution counts rows per literal class value.
type ClassDistribution struct {
	Column string       `json:"column" yaml:"column"`
	Counts []ClassCount `json:"counts" yaml:"counts"`
	Total  int          `json:"total" yaml:"total"`
}

// Map returns the counts keyed by label.
func (d ClassDistribution) Map() map[string]int {
	m := make(map[string]int, len(d.Counts))
	for _, c := range d.Counts {
		m[c.Label] = c.Count
	}
	return m
}

// CountClasses tallies every distinct value of the class column. Missing or
// non-binary values are tallied under their literal rendering.
func CountClasses(t *dataset.Table, roles dataset.Roles) (ClassDistribution, error) {
	if err := checkTable(StageClassDistribution, t); err != nil {
		return ClassDistribution{}, err
	}
	if err := checkColumns(StageClassDistribution, t, roles.Class); err != nil {
		return ClassDistribution{}, err
	}
	type tally struct {
		label   string
		value   dataset.Value
		count   int
		firstAt int
	}
	byLabel := map[string]*tally{}
	var order []*tally
	for i := 0; i < t.Len(); i++ {
		v := t.Row(i).Get(roles.Class)
		key := v.String()
		tl := byLabel[key]
		if tl == nil {
			tl = &tally{label: key, value: v, firstAt: len(order)}
			byLabel[key] = tl
			order = append(order, tl)
		}
		tl.count++
	}
	// Numeric labels first in ascending order, then the rest as first seen.
	sort.SliceStable(order, func(i, j int) bool {
		a, aok := order[i].value.Float()
		b, bok := order[j].value.Float()
		switch {
		case aok && bok:
			return a < b
		case aok != bok:
			return aok
		default:
			return order[i].firstAt < order[j].firstAt
		}
	})
	out := ClassDistribution{Column: roles.Class, Counts: make([]ClassCount, 0, len(order)), Total: t.Len()}
	for _, tl := range order {
		name := "Other"
		if l, ok := dataset.LabelOf(tl.value); ok {
			name = l.String()
		}
		out.Counts = append(out.Counts, ClassCount{Label: tl.label, Name: name, Count: tl.count})
	}
	return out, nil
}

// Summary describes one amount partition. A statistic that overflows the
// float64 range is reported as 0 and sets Overflow.
type Summary struct {
	Count    int     `json:"count" yaml:"count"`
	Mean     float64 `json:"mean" yaml:"mean"`
	Median   float64 `json:"median" yaml:"median"`
	Min      float64 `json:"min" yaml:"min"`
	Max      float64 `json:"max" yaml:"max"`
	Std      float64 `json:"std" yaml:"std"`
	Overflow bool    `json:"overflow,omitempty" yaml:"overflow,omitempty"`
}

// AmountDistribution partitions amounts by binary class.
type AmountDistribution struct {
	Column          string    `json:"column" yaml:"column"`
	Fraud           []float64 `json:"fraud" yaml:"fraud"`
	NonFraud        []float64 `json:"non_fraud" yaml:"non_fraud"`
	FraudSummary    Summary   `json:"fraud_summary" yaml:"fraud_summary"`
	NonFraudSummary Summary   `json:"non_fraud_summary" yaml:"non_fraud_summary"`
	// Skipped counts binary-class rows whose amount was not numeric.
	Skipped int `json:"skipped" yaml:"skipped"`
}

// SplitAmounts partitions the amount column by class 1 and class 0. Rows with
// any other class value are dropped from both partitions.
func SplitAmounts(t *dataset.Table, roles dataset.Roles) (AmountDistribution, error) {
	if err := checkTable(StageAmountDistribution, t); err != nil {
		return AmountDistribution{}, err
	}
	if err := checkColumns(StageAmountDistribution, t, roles.Amount, roles.Class); err != nil {
		return AmountDistribution{}, err
	}
	out := AmountDistribution{Column: roles.Amount, Fraud: []float64{}, NonFraud: []float64{}}
	for i := 0; i < t.Len(); i++ {
		row := t.Row(i)
		label, ok := dataset.LabelOf(row.Get(roles.Class))
		if !ok {
			continue
		}
		amt, ok := row.Get(roles.Amount).Float()
		if !ok {
			out.Skipped++
			continue
		}
		if label == dataset.LabelFraud {
			out.Fraud = append(out.Fraud, amt)
		} else {
			out.NonFraud = append(out.NonFraud, amt)
		}
	}
	out.FraudSummary = summarize(out.Fraud)
	out.NonFraudSummary = summarize(out.NonFraud)
	return out, nil
}

// summarize returns the zero Summary for an empty partition.
func summarize(vals []float64) Summary {
	if len(vals) == 0 {
		return Summary{}
	}
	s := Summary{Count: len(vals)}
	s.Mean, _ = stats.Mean(vals)
	s.Median, _ = stats.Median(vals)
	s.Min, _ = stats.Min(vals)
	s.Max, _ = stats.Max(vals)
	s.Std, _ = stats.StandardDeviationPopulation(vals)
	for _, f := range []*float64{&s.Mean, &s.Median, &s.Min, &s.Max, &s.Std} {
		if !finite(*f) {
			*f = 0
			s.Overflow = true
		}
	}
	return s
}

func finite(f float64) bool { return !math.IsNaN(f) && !math.IsInf(f, 0) }

// TimeBucket holds the per-class counts of one bucket.
type TimeBucket struct {
	Bucket   int `json:"bucket" yaml:"bucket"`
	Fraud    int `json:"fraud" yaml:"fraud"`
	NonFraud int `json:"non_fraud" yaml:"non_fraud"`
}

// TimeTrend is the bucketed count of binary-class rows, sorted by bucket.
type TimeTrend struct {
	Column        string       `json:"column" yaml:"column"`
	BucketSeconds float64      `json:"bucket_seconds" yaml:"bucket_seconds"`
	Buckets       []TimeBucket `json:"buckets" yaml:"buckets"`
	// Skipped counts binary-class rows whose time was not numeric or whose
	// bucket index does not fit in an int.
	Skipped int `json:"skipped" yaml:"skipped"`
}

// Keys returns the bucket indexes in ascending order.
func (tt TimeTrend) Keys() []int {
	out := make([]int, len(tt.Buckets))
	for i, b := range tt.Buckets {
		out[i] = b.Bucket
	}
	return out
}

// BucketTimes counts fraud and non-fraud rows per floor(time/bucketSeconds).
// bucketSeconds <= 0 means DefaultBucketSeconds.
func BucketTimes(t *dataset.Table, roles dataset.Roles, bucketSeconds float64) (TimeTrend, error) {
	if err := checkTable(StageTimeTrend, t); err != nil {
		return TimeTrend{}, err
	}
	if err := checkColumns(StageTimeTrend, t, roles.Time, roles.Class); err != nil {
		return TimeTrend{}, err
	}
	if bucketSeconds <= 0 {
		bucketSeconds = DefaultBucketSeconds
	}
	out := TimeTrend{Column: roles.Time, BucketSeconds: bucketSeconds}
	counts := map[int]*TimeBucket{}
	for i := 0; i < t.Len(); i++ {
		row := t.Row(i)
		label, ok := dataset.LabelOf(row.Get(roles.Class))
		if !ok {
			continue
		}
		ts, ok := row.Get(roles.Time).Float()
		if !ok {
			out.Skipped++
			continue
		}
		q := math.Floor(ts / bucketSeconds)
		if !finite(q) || q < math.MinInt || q >= math.MaxInt {
			out.Skipped++
			continue
		}
		k := int(q)
		b := counts[k]
		if b == nil {
			b = &TimeBucket{Bucket: k}
			counts[k] = b
		}
		if label == dataset.LabelFraud {
			b.Fraud++
		} else {
			b.NonFraud++
		}
	}
	out.Buckets = make([]TimeBucket, 0, len(counts))
	for _, b := range counts {
		out.Buckets = append(out.Buckets, *b)
	}
	sort.Slice(out.Buckets, func(i, j int) bool { return out.Buckets[i].Bucket < out.Buckets[j].Bucket })
	return out, nil
}

// FeatureMean is the class-conditional mean of one feature. An empty
// partition has mean 0 and a zero count. A mean that overflows the float64
// range is also 0, with Overflow set.
type FeatureMean struct {
	Feature       string  `json:"feature" yaml:"feature"`
	Fraud         float64 `json:"fraud" yaml:"fraud"`
	NonFraud      float64 `json:"non_fraud" yaml:"non_fraud"`
	FraudCount    int     `json:"fraud_count" yaml:"fraud_count"`
	NonFraudCount int     `json:"non_fraud_count" yaml:"non_fraud_count"`
	Overflow      bool    `json:"overflow,omitempty" yaml:"overflow,omitempty"`
}

// FeatureMeans lists per-feature means in feature order.
type FeatureMeans struct {
	Features []FeatureMean `json:"features" yaml:"features"`
}

// MeanFeatures computes the mean of each feature over class 1 rows and over
// class 0 rows. Only numeric cells contribute.
func MeanFeatures(t *dataset.Table, roles dataset.Roles) (FeatureMeans, error) {
	if err := checkTable(StageFeatureMeans, t); err != nil {
		return FeatureMeans{}, err
	}
	if err := checkColumns(StageFeatureMeans, t, append([]string{roles.Class}, roles.Features...)...); err != nil {
		return FeatureMeans{}, err
	}
	labels := make([]dataset.Label, t.Len())
	binary := make([]bool, t.Len())
	for i := range labels {
		labels[i], binary[i] = dataset.LabelOf(t.Value(i, roles.Class))
	}
	out := FeatureMeans{Features: make([]FeatureMean, 0, len(roles.Features))}
	for _, f := range roles.Features {
		var fraud, legit []float64
		for i := 0; i < t.Len(); i++ {
			if !binary[i] {
				continue
			}
			x, ok := t.Value(i, f).Float()
			if !ok {
				continue
			}
			if labels[i] == dataset.LabelFraud {
				fraud = append(fraud, x)
			} else {
				legit = append(legit, x)
			}
		}
		fm, fok := meanOrZero(fraud)
		lm, lok := meanOrZero(legit)
		out.Features = append(out.Features, FeatureMean{
			Feature:       f,
			Fraud:         fm,
			NonFraud:      lm,
			FraudCount:    len(fraud),
			NonFraudCount: len(legit),
			Overflow:      !fok || !lok,
		})
	}
	return out, nil
}

// meanOrZero returns 0 for an empty sample. ok is false when the mean
// overflowed and was replaced by 0.
func meanOrZero(vals []float64) (m float64, ok bool) {
	m, err := stats.Mean(vals)
	if err != nil {
		return 0, true
	}
	if !finite(m) {
		return 0, false
	}
	return m, true
}
