package report

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/KaramelBytes/fraudlens-cli/internal/analysis"
	"github.com/KaramelBytes/fraudlens-cli/internal/dataset"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func sampleDashboard(t *testing.T) *analysis.Dashboard {
	t.Helper()
	tbl, err := dataset.FromRecords("creditcard.csv", []string{"Time", "V1", "V2", "V3", "Amount", "Class"}, [][]string{
		{"0", "1", "4", "7", "10", "0"},
		{"3600", "5", "4", "1", "20", "1"},
		{"3700", "2", "4", "6", "12", "0"},
		{"7300", "6", "4", "0", "25", "1"},
	}, dataset.InferOptions{})
	require.NoError(t, err)
	d, err := analysis.Run(tbl, analysis.DefaultOptions())
	require.NoError(t, err)
	return d
}

func TestMarkdown(t *testing.T) {
	md := Markdown(sampleDashboard(t))
	for _, want := range []string{
		"[DATASET SUMMARY]",
		"File: creditcard.csv",
		"Rows: 4",
		"Roles: amount=Amount, class=Class, time=Time",
		"[CLASS DISTRIBUTION]",
		"- Non-Fraudulent (0): 2 (50.00%)",
		"- Fraudulent (1): 2 (50.00%)",
		"[AMOUNT DISTRIBUTION]",
		"- Fraudulent: n=2, mean 22.5",
		"[TIME TRENDS]",
		"| 0 | 1 | 0 |",
		"| 1 | 1 | 1 |",
		"| 2 | 0 | 1 |",
		"[CORRELATIONS]",
		"- undefined (zero variance): V2",
		"[TOP FEATURES]",
		"1. V3: |Δmean|=6",
		"2. V1: |Δmean|=4",
		"3. V2: |Δmean|=0",
		"[NOTES]",
	} {
		assert.Contains(t, md, want)
	}
	assert.NotContains(t, md, "V2 ~")
}

func TestStrongestPairsSkipsUndefined(t *testing.T) {
	d := sampleDashboard(t)
	pairs := StrongestPairs(d.Correlation, 0)
	for _, p := range pairs {
		assert.NotEqual(t, "V2", p.A)
		assert.NotEqual(t, "V2", p.B)
	}
	// 5 columns with V2 undefined leaves C(4,2) pairs.
	assert.Len(t, pairs, 6)
	assert.Len(t, StrongestPairs(d.Correlation, 2), 2)
}

func TestJSONAndYAMLRoundTrip(t *testing.T) {
	d := sampleDashboard(t)

	b, err := Render(FormatJSON, d)
	require.NoError(t, err)
	var back analysis.Dashboard
	require.NoError(t, json.Unmarshal(b, &back))
	assert.Equal(t, d.ID, back.ID)
	assert.Equal(t, d.Ranking, back.Ranking)
	assert.Equal(t, d.Correlation.Values, back.Correlation.Values)

	y, err := Render(FormatYAML, d)
	require.NoError(t, err)
	var generic map[string]any
	require.NoError(t, yaml.Unmarshal(y, &generic))
	assert.Equal(t, "creditcard.csv", generic["source"])
	assert.Contains(t, generic, "time_trend")
}

func TestTable(t *testing.T) {
	out, err := Table(sampleDashboard(t))
	require.NoError(t, err)
	for _, want := range []string{"Class Distribution", "Amount Distribution", "Time Trends", "Top Features", "V3"} {
		assert.Contains(t, out, want)
	}
}

func TestPDF(t *testing.T) {
	b, err := Render(FormatPDF, sampleDashboard(t))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(b), "%PDF-"))
}

func TestHTML(t *testing.T) {
	b, err := Render(FormatHTML, sampleDashboard(t))
	require.NoError(t, err)
	out := string(b)
	for _, want := range []string{"<html", "<title>Fraud dashboard: creditcard.csv</title>", "<h2", "CLASS DISTRIBUTION", "<table>", "V3"} {
		assert.Contains(t, out, want)
	}
	assert.NotContains(t, out, "[TIME TRENDS]")
}

func TestHTMLEscapesDatasetText(t *testing.T) {
	tbl, err := dataset.FromRecords("<b>cards</b>.csv", []string{"Time", "V1", "Amount", "Class"}, [][]string{
		{"0", "1", "10", "0"},
		{"3600", "2", "20", "1"},
		{"7200", "3", "30", "<script>alert(1)</script>"},
	}, dataset.InferOptions{})
	require.NoError(t, err)
	d, err := analysis.Run(tbl, analysis.DefaultOptions())
	require.NoError(t, err)

	out := string(HTML(d))
	assert.NotContains(t, out, "<script>")
	assert.NotContains(t, out, "<b>cards")
	assert.Contains(t, out, "&lt;script&gt;alert(1)&lt;/script&gt;")
	assert.Contains(t, out, "&lt;b&gt;cards&lt;/b&gt;.csv")
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{
		"":         FormatMarkdown,
		"MD":       FormatMarkdown,
		"json":     FormatJSON,
		"yml":      FormatYAML,
		"terminal": FormatTable,
		"pdf":      FormatPDF,
		"HTML":     FormatHTML,
	} {
		got, err := ParseFormat(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseFormat("docx")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "markdown|json|yaml|table|pdf|html")
	for _, f := range Formats {
		got, err := ParseFormat(string(f))
		require.NoError(t, err)
		assert.Equal(t, f, got)
	}
	assert.Equal(t, ".yaml", FormatYAML.Ext())
	assert.Equal(t, ".md", FormatMarkdown.Ext())
}
