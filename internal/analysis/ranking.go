package analysis

import (
	"math"
	"sort"
)

// DefaultTopFeatures is how many features a ranking keeps.
const DefaultTopFeatures = 10

// FeatureDiff is the absolute class mean difference of one feature. Overflow
// is set when a mean or the difference overflowed; a difference too large for
// float64 is reported as math.MaxFloat64.
type FeatureDiff struct {
	Feature  string  `json:"feature" yaml:"feature"`
	Diff     float64 `json:"diff" yaml:"diff"`
	Overflow bool    `json:"overflow,omitempty" yaml:"overflow,omitempty"`
}

// FeatureRanking is sorted by Diff, largest first.
type FeatureRanking struct {
	Top []FeatureDiff `json:"top" yaml:"top"`
}

// RankFeatures orders features by |mean(class 1) - mean(class 0)| and keeps
// the first topN. Equal differences keep feature order. topN <= 0 means
// DefaultTopFeatures.
func RankFeatures(means FeatureMeans, topN int) FeatureRanking {
	if topN <= 0 {
		topN = DefaultTopFeatures
	}
	diffs := make([]FeatureDiff, len(means.Features))
	for i, fm := range means.Features {
		d := FeatureDiff{Feature: fm.Feature, Diff: math.Abs(fm.Fraud - fm.NonFraud), Overflow: fm.Overflow}
		if math.IsInf(d.Diff, 0) {
			d.Diff = math.MaxFloat64
			d.Overflow = true
		}
		diffs[i] = d
	}
	sort.SliceStable(diffs, func(i, j int) bool { return diffs[i].Diff > diffs[j].Diff })
	if len(diffs) > topN {
		diffs = diffs[:topN]
	}
	return FeatureRanking{Top: diffs}
}
