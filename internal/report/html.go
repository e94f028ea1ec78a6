package report

import (
	"bytes"
	"regexp"
	"strings"

	"github.com/KaramelBytes/fraudlens-cli/internal/analysis"
	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

var sectionHeader = regexp.MustCompile(`^\[([A-Z ]+)\]$`)

// inlineEscaper backslash-escapes the characters that open raw HTML or
// entities in Markdown, so dataset text always parses as a literal.
var inlineEscaper = strings.NewReplacer(`\`, `\\`, "<", `\<`, ">", `\>`, "&", `\&`)

// HTML renders the Markdown report as a standalone page. Bracketed section
// markers become level-two headings. Text taken from the dataset renders
// as text, never as markup.
func HTML(d *analysis.Dashboard) []byte {
	var src strings.Builder
	for _, line := range strings.Split(Markdown(d), "\n") {
		if m := sectionHeader.FindStringSubmatch(line); m != nil {
			src.WriteString("\n## " + m[1] + "\n\n")
			continue
		}
		src.WriteString(inlineEscaper.Replace(line))
		src.WriteString("\n")
	}
	var source bytes.Buffer
	html.EscapeHTML(&source, []byte(d.Source))
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.HardLineBreak)
	r := html.NewRenderer(html.RendererOptions{
		Flags: html.CommonFlags | html.CompletePage | html.SkipHTML,
		// Smartypants writes the title unescaped.
		Title: "Fraud dashboard: " + source.String(),
	})
	return markdown.ToHTML([]byte(src.String()), p, r)
}
