package report

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/KaramelBytes/fraudlens-cli/internal/analysis"
	"github.com/KaramelBytes/fraudlens-cli/internal/utils"
	"gopkg.in/yaml.v3"
)

// Format names an output renderer.
type Format string

const (
	FormatMarkdown Format = "markdown"
	FormatJSON     Format = "json"
	FormatYAML     Format = "yaml"
	FormatTable    Format = "table"
	FormatPDF      Format = "pdf"
	FormatHTML     Format = "html"
)

// Formats lists every supported renderer.
var Formats = []Format{FormatMarkdown, FormatJSON, FormatYAML, FormatTable, FormatPDF, FormatHTML}

// ParseFormat accepts a format name or common alias.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "markdown", "md":
		return FormatMarkdown, nil
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "table", "text", "terminal":
		return FormatTable, nil
	case "pdf":
		return FormatPDF, nil
	case "html", "htm":
		return FormatHTML, nil
	}
	return "", fmt.Errorf("unsupported format: %s (use %s)", s, FormatNames())
}

// FormatNames joins the canonical names of Formats with "|".
func FormatNames() string {
	names := make([]string, len(Formats))
	for i, f := range Formats {
		names[i] = string(f)
	}
	return strings.Join(names, "|")
}

// Ext is the conventional file extension for the format.
func (f Format) Ext() string {
	switch f {
	case FormatJSON:
		return ".json"
	case FormatYAML:
		return ".yaml"
	case FormatTable:
		return ".txt"
	case FormatPDF:
		return ".pdf"
	case FormatHTML:
		return ".html"
	default:
		return ".md"
	}
}

// Render produces the dashboard in the requested format.
func Render(f Format, d *analysis.Dashboard) ([]byte, error) {
	switch f {
	case FormatMarkdown:
		return []byte(Markdown(d)), nil
	case FormatJSON:
		return JSON(d)
	case FormatYAML:
		return YAML(d)
	case FormatTable:
		s, err := Table(d)
		return []byte(s), err
	case FormatPDF:
		var buf bytes.Buffer
		if err := PDF(d, &buf); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case FormatHTML:
		return HTML(d), nil
	}
	return nil, fmt.Errorf("unsupported format: %s", f)
}

// JSON marshals the dashboard as indented JSON.
func JSON(v any) ([]byte, error) { return utils.PrettyJSON(v) }

// YAML marshals the dashboard as YAML.
func YAML(v any) ([]byte, error) {
	b, err := yaml.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal yaml: %w", err)
	}
	return b, nil
}
