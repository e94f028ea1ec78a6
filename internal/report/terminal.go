package report

import (
	"fmt"
	"strings"

	"github.com/KaramelBytes/fraudlens-cli/internal/analysis"
	"github.com/fatih/color"
	"github.com/pterm/pterm"
)

var (
	fraudColor = color.New(color.FgRed, color.Bold).SprintFunc()
	legitColor = color.New(color.FgGreen).SprintFunc()
	dimColor   = color.New(color.FgYellow).SprintFunc()
)

// Table renders the dashboard as terminal tables.
func Table(d *analysis.Dashboard) (string, error) {
	var b strings.Builder
	b.WriteString(pterm.DefaultSection.Sprint("Dataset"))
	b.WriteString(fmt.Sprintf("%s: %d rows, %d features\n", d.Source, d.Rows, len(d.Roles.Features)))

	classes := pterm.TableData{{"Class", "Label", "Count", "Share"}}
	for _, c := range d.ClassDistribution.Counts {
		name := c.Name
		switch c.Label {
		case "1":
			name = fraudColor(name)
		case "0":
			name = legitColor(name)
		}
		classes = append(classes, []string{name, c.Label, fmt.Sprint(c.Count), fmt.Sprintf("%.2f%%", pct(c.Count, d.ClassDistribution.Total))})
	}
	if err := section(&b, "Class Distribution", classes); err != nil {
		return "", err
	}

	ad := d.AmountDistribution
	amounts := pterm.TableData{{"Class", "Count", "Mean", "Median", "Min", "Max", "Std"}}
	for _, row := range []struct {
		name string
		s    analysis.Summary
	}{{legitColor("Non-Fraudulent"), ad.NonFraudSummary}, {fraudColor("Fraudulent"), ad.FraudSummary}} {
		amounts = append(amounts, []string{row.name, fmt.Sprint(row.s.Count),
			num(row.s.Mean), num(row.s.Median), num(row.s.Min), num(row.s.Max), num(row.s.Std)})
	}
	if err := section(&b, "Amount Distribution", amounts); err != nil {
		return "", err
	}

	trend := pterm.TableData{{"Bucket", "Non-Fraud", "Fraud"}}
	for _, tb := range d.TimeTrend.Buckets {
		trend = append(trend, []string{fmt.Sprint(tb.Bucket), fmt.Sprint(tb.NonFraud), fraudColor(tb.Fraud)})
	}
	if err := section(&b, fmt.Sprintf("Time Trends (%gs buckets)", d.TimeTrend.BucketSeconds), trend); err != nil {
		return "", err
	}

	if m := d.Correlation; m != nil && len(m.Columns) >= 2 {
		corr := pterm.TableData{{"A", "B", "r"}}
		for _, p := range StrongestPairs(m, maxCorrPairs) {
			corr = append(corr, []string{p.A, p.B, fmt.Sprintf("%.3f", p.R)})
		}
		if err := section(&b, "Strongest Correlations", corr); err != nil {
			return "", err
		}
	}

	top := pterm.TableData{{"#", "Feature", "|Δmean|"}}
	for i, f := range d.Ranking.Top {
		top = append(top, []string{fmt.Sprint(i + 1), f.Feature, num(f.Diff)})
	}
	if err := section(&b, "Top Features", top); err != nil {
		return "", err
	}

	for _, w := range d.Warnings {
		b.WriteString(dimColor("⚠ " + w))
		b.WriteString("\n")
	}
	return b.String(), nil
}

func section(b *strings.Builder, title string, data pterm.TableData) error {
	b.WriteString(pterm.DefaultSection.Sprint(title))
	out, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return fmt.Errorf("render %s: %w", strings.ToLower(title), err)
	}
	b.WriteString(out)
	b.WriteString("\n")
	return nil
}

func num(f float64) string { return fmt.Sprintf("%.4g", f) }
