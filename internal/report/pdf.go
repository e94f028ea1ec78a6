package report

import (
	"fmt"
	"io"

	"github.com/KaramelBytes/fraudlens-cli/internal/analysis"
	"github.com/jung-kurt/gofpdf"
)

var (
	headerColor       = []int{30, 50, 90}
	headerTextColor   = []int{255, 255, 255}
	sectionTitleColor = []int{30, 50, 90}
	bodyTextColor     = []int{40, 40, 40}
	fraudTextColor    = []int{200, 40, 40}
	lineColor         = []int{200, 200, 200}
)

// PDF writes a one-document dashboard report.
func PDF(d *analysis.Dashboard, w io.Writer) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetMargins(10, 10, 10)
	pdf.AddPage()

	pdf.SetFillColor(headerColor[0], headerColor[1], headerColor[2])
	pdf.SetTextColor(headerTextColor[0], headerTextColor[1], headerTextColor[2])
	pdf.SetFont("Arial", "B", 14)
	pdf.CellFormat(0, 12, tr(fmt.Sprintf("  Fraud dashboard: %s", d.Source)), "", 1, "L", true, 0, "")
	pdf.SetFont("Arial", "", 9)
	pdf.SetTextColor(bodyTextColor[0], bodyTextColor[1], bodyTextColor[2])
	pdf.CellFormat(0, 6, tr(fmt.Sprintf("%d rows, %d features, generated %s", d.Rows, len(d.Roles.Features), d.GeneratedAt.Format("2006-01-02 15:04 MST"))), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	title := func(s string) {
		pdf.SetFont("Arial", "B", 12)
		pdf.SetTextColor(sectionTitleColor[0], sectionTitleColor[1], sectionTitleColor[2])
		pdf.Cell(0, 8, tr(s))
		pdf.Ln(7)
		pdf.SetDrawColor(lineColor[0], lineColor[1], lineColor[2])
		pdf.Line(pdf.GetX(), pdf.GetY(), pdf.GetX()+190, pdf.GetY())
		pdf.Ln(2)
	}
	table := func(widths []float64, header []string, rows [][]string) {
		pdf.SetFont("Arial", "B", 9)
		pdf.SetTextColor(bodyTextColor[0], bodyTextColor[1], bodyTextColor[2])
		for i, h := range header {
			pdf.CellFormat(widths[i], 6, tr(h), "B", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Arial", "", 9)
		for _, r := range rows {
			for i, c := range r {
				pdf.CellFormat(widths[i], 5, tr(c), "", 0, "L", false, 0, "")
			}
			pdf.Ln(-1)
		}
		pdf.Ln(4)
	}

	title("Class Distribution")
	var rows [][]string
	for _, c := range d.ClassDistribution.Counts {
		rows = append(rows, []string{c.Name, c.Label, fmt.Sprint(c.Count), fmt.Sprintf("%.2f%%", pct(c.Count, d.ClassDistribution.Total))})
	}
	table([]float64{50, 30, 30, 30}, []string{"Class", "Label", "Count", "Share"}, rows)

	title("Amount Distribution")
	ad := d.AmountDistribution
	rows = nil
	for _, r := range []struct {
		name string
		s    analysis.Summary
	}{{"Non-Fraudulent", ad.NonFraudSummary}, {"Fraudulent", ad.FraudSummary}} {
		rows = append(rows, []string{r.name, fmt.Sprint(r.s.Count), num(r.s.Mean), num(r.s.Median), num(r.s.Min), num(r.s.Max), num(r.s.Std)})
	}
	table([]float64{40, 25, 25, 25, 25, 25, 25}, []string{"Class", "Count", "Mean", "Median", "Min", "Max", "Std"}, rows)

	title(fmt.Sprintf("Time Trends (%gs buckets)", d.TimeTrend.BucketSeconds))
	rows = nil
	for _, tb := range d.TimeTrend.Buckets {
		rows = append(rows, []string{fmt.Sprint(tb.Bucket), fmt.Sprint(tb.NonFraud), fmt.Sprint(tb.Fraud)})
	}
	table([]float64{30, 40, 40}, []string{"Bucket", "Non-Fraud", "Fraud"}, rows)

	if m := d.Correlation; m != nil && len(m.Columns) >= 2 {
		title("Strongest Correlations")
		rows = nil
		for _, p := range StrongestPairs(m, maxCorrPairs) {
			rows = append(rows, []string{p.A, p.B, fmt.Sprintf("%.3f", p.R)})
		}
		table([]float64{50, 50, 30}, []string{"A", "B", "r"}, rows)
	}

	title("Top Features")
	rows = nil
	for i, f := range d.Ranking.Top {
		rows = append(rows, []string{fmt.Sprint(i + 1), f.Feature, num(f.Diff)})
	}
	table([]float64{15, 50, 40}, []string{"#", "Feature", "|mean diff|"}, rows)

	if len(d.Warnings) > 0 {
		title("Notes")
		pdf.SetFont("Arial", "", 9)
		pdf.SetTextColor(fraudTextColor[0], fraudTextColor[1], fraudTextColor[2])
		for _, w := range d.Warnings {
			pdf.MultiCell(190, 5, tr("- "+w), "", "L", false)
		}
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}
