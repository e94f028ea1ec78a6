package report

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/KaramelBytes/fraudlens-cli/internal/analysis"
)

// maxCorrPairs caps the strongest-pairs list in text reports.
const maxCorrPairs = 10

// Markdown renders the dashboard panels as a plain-text report with one
// bracketed section per panel.
func Markdown(d *analysis.Dashboard) string {
	var b strings.Builder
	b.WriteString("[DATASET SUMMARY]\n")
	if d.Source != "" {
		b.WriteString(fmt.Sprintf("File: %s\n", d.Source))
	}
	b.WriteString(fmt.Sprintf("Rows: %d\n", d.Rows))
	b.WriteString(fmt.Sprintf("Roles: amount=%s, class=%s, time=%s\n", d.Roles.Amount, d.Roles.Class, d.Roles.Time))
	b.WriteString(fmt.Sprintf("Features: %d\n", len(d.Roles.Features)))

	b.WriteString("\n[CLASS DISTRIBUTION]\n")
	for _, c := range d.ClassDistribution.Counts {
		b.WriteString(fmt.Sprintf("- %s (%s): %d (%.2f%%)\n", c.Name, c.Label, c.Count, pct(c.Count, d.ClassDistribution.Total)))
	}

	ad := d.AmountDistribution
	b.WriteString("\n[AMOUNT DISTRIBUTION]\n")
	writeSummary(&b, "Non-Fraudulent", ad.NonFraudSummary)
	writeSummary(&b, "Fraudulent", ad.FraudSummary)

	b.WriteString("\n[TIME TRENDS]\n")
	b.WriteString(fmt.Sprintf("Bucket width: %gs\n\n", d.TimeTrend.BucketSeconds))
	b.WriteString("| bucket | non-fraud | fraud |\n| --- | --- | --- |\n")
	for _, tb := range d.TimeTrend.Buckets {
		b.WriteString(fmt.Sprintf("| %d | %d | %d |\n", tb.Bucket, tb.NonFraud, tb.Fraud))
	}

	if m := d.Correlation; m != nil && len(m.Columns) >= 2 {
		b.WriteString("\n[CORRELATIONS]\n")
		for _, p := range StrongestPairs(m, maxCorrPairs) {
			b.WriteString(fmt.Sprintf("- %s ~ %s: r=%.3f\n", p.A, p.B, p.R))
		}
		if len(m.ZeroVariance) > 0 {
			b.WriteString(fmt.Sprintf("- undefined (zero variance): %s\n", strings.Join(m.ZeroVariance, ", ")))
		}
	}

	b.WriteString("\n[TOP FEATURES]\n")
	if len(d.Ranking.Top) == 0 {
		b.WriteString("- (no V-numbered feature columns)\n")
	}
	for i, f := range d.Ranking.Top {
		b.WriteString(fmt.Sprintf("%d. %s: |Δmean|=%.4g\n", i+1, f.Feature, f.Diff))
	}

	if len(d.Warnings) > 0 {
		b.WriteString("\n[NOTES]\n")
		for _, w := range d.Warnings {
			b.WriteString("- ")
			b.WriteString(w)
			b.WriteString("\n")
		}
	}
	return b.String()
}

func writeSummary(b *strings.Builder, name string, s analysis.Summary) {
	if s.Count == 0 {
		b.WriteString(fmt.Sprintf("- %s: no rows\n", name))
		return
	}
	b.WriteString(fmt.Sprintf("- %s: n=%d, mean %.4g, median %.4g, min %.4g, max %.4g, std %.4g\n",
		name, s.Count, s.Mean, s.Median, s.Min, s.Max, s.Std))
}

func pct(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(n) * 100 / float64(total)
}

// Pair is one off-diagonal matrix entry.
type Pair struct {
	A, B string
	R    float64
}

// StrongestPairs lists distinct column pairs by |r|, largest first. Undefined
// cells are left out.
func StrongestPairs(m *analysis.CorrelationMatrix, limit int) []Pair {
	undefined := make(map[analysis.CellRef]bool, len(m.Undefined))
	for _, c := range m.Undefined {
		undefined[c] = true
	}
	var pairs []Pair
	n := len(m.Columns)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if undefined[analysis.CellRef{Row: m.Columns[i], Col: m.Columns[j]}] {
				continue
			}
			pairs = append(pairs, Pair{A: m.Columns[i], B: m.Columns[j], R: m.Values[i][j]})
		}
	}
	sort.SliceStable(pairs, func(i, j int) bool {
		return math.Abs(pairs[i].R) > math.Abs(pairs[j].R)
	})
	if limit > 0 && len(pairs) > limit {
		pairs = pairs[:limit]
	}
	return pairs
}
