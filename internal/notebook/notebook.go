// Package notebook converts Jupyter notebooks (.ipynb) into HTML fragments.
//
// The first markdown cell may carry YAML frontmatter between "---" delimiters;
// it is consumed as document metadata and the remainder of the cell renders
// normally. Code cells render as input blocks followed by their stored
// outputs; no kernel is involved.
package notebook

import (
	"encoding/json"
	"fmt"
	"html"
	"regexp"
	"strings"

	"git.home.luguber.info/inful/folio/internal/frontmatter"
	"git.home.luguber.info/inful/folio/internal/markdown"
)

// Parsed is the converted notebook.
type Parsed struct {
	// Meta holds the frontmatter mapping from the first markdown cell, or
	// nil when the notebook carries none.
	Meta map[string]any
	// HTML is the concatenated rendering of all cells.
	HTML string
}

type rawNotebook struct {
	Cells    []rawCell      `json:"cells"`
	Metadata map[string]any `json:"metadata"`
	NBFormat int            `json:"nbformat"`
}

type rawCell struct {
	CellType string      `json:"cell_type"`
	Source   sourceText  `json:"source"`
	Outputs  []rawOutput `json:"outputs"`
}

type rawOutput struct {
	OutputType string                     `json:"output_type"`
	Name       string                     `json:"name"`
	Text       sourceText                 `json:"text"`
	Data       map[string]json.RawMessage `json:"data"`
	EName      string                     `json:"ename"`
	EValue     string                     `json:"evalue"`
	Traceback  []string                   `json:"traceback"`
}

// sourceText accepts the two on-disk encodings of notebook source: a single
// string or a list of line strings.
type sourceText string

func (s *sourceText) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*s = sourceText(single)
		return nil
	}
	var lines []string
	if err := json.Unmarshal(data, &lines); err != nil {
		return fmt.Errorf("notebook source is neither string nor string list: %w", err)
	}
	*s = sourceText(strings.Join(lines, ""))
	return nil
}

var (
	anchorLinkPattern = regexp.MustCompile(`<a[^>]*class="anchor-link"[^>]*>.*?</a>`)
	ansiPattern       = regexp.MustCompile(`\x1b\[[0-9;]*m`)
)

// Parse converts notebook JSON into an HTML fragment using the given markdown
// renderer for markdown cells.
func Parse(data []byte, md *markdown.Renderer) (Parsed, error) {
	var nb rawNotebook
	if err := json.Unmarshal(data, &nb); err != nil {
		return Parsed{}, fmt.Errorf("invalid notebook JSON: %w", err)
	}

	var out Parsed
	var b strings.Builder
	seenMarkdown := false

	for _, cell := range nb.Cells {
		switch cell.CellType {
		case "markdown":
			source := string(cell.Source)
			if !seenMarkdown {
				seenMarkdown = true
				fm, body, had, err := frontmatter.Split([]byte(source))
				if err != nil {
					return Parsed{}, err
				}
				if had {
					meta, err := frontmatter.ParseYAML(fm)
					if err != nil {
						return Parsed{}, err
					}
					out.Meta = meta
					source = string(body)
				}
			}
			if strings.TrimSpace(source) == "" {
				continue
			}
			rendered, err := md.Render([]byte(source))
			if err != nil {
				return Parsed{}, err
			}
			b.WriteString(anchorLinkPattern.ReplaceAllString(rendered, ""))
		case "code":
			renderCodeCell(&b, cell)
		}
		// Raw cells are skipped.
	}

	out.HTML = b.String()
	return out, nil
}

func renderCodeCell(b *strings.Builder, cell rawCell) {
	source := strings.TrimRight(string(cell.Source), "\n")
	if source != "" {
		b.WriteString(`<div class="nb-input"><pre><code class="language-python">`)
		b.WriteString(html.EscapeString(source))
		b.WriteString("</code></pre></div>\n")
	}
	for _, output := range cell.Outputs {
		renderOutput(b, output)
	}
}

func renderOutput(b *strings.Builder, output rawOutput) {
	switch output.OutputType {
	case "stream":
		writePre(b, string(output.Text))
	case "display_data", "execute_result":
		renderRichOutput(b, output.Data)
	case "error":
		trace := ansiPattern.ReplaceAllString(strings.Join(output.Traceback, "\n"), "")
		writePre(b, trace)
	}
}

// renderRichOutput picks the richest available representation: PNG image,
// then HTML, then plain text.
func renderRichOutput(b *strings.Builder, data map[string]json.RawMessage) {
	if png, ok := data["image/png"]; ok {
		var encoded sourceText
		if json.Unmarshal(png, &encoded) == nil {
			b.WriteString(`<div class="nb-output"><img src="data:image/png;base64,`)
			b.WriteString(strings.TrimSpace(string(encoded)))
			b.WriteString(`" alt="notebook output"></div>` + "\n")
			return
		}
	}
	if raw, ok := data["text/html"]; ok {
		var htmlText sourceText
		if json.Unmarshal(raw, &htmlText) == nil {
			b.WriteString(`<div class="nb-output">`)
			b.WriteString(string(htmlText))
			b.WriteString("</div>\n")
			return
		}
	}
	if raw, ok := data["text/plain"]; ok {
		var plain sourceText
		if json.Unmarshal(raw, &plain) == nil {
			writePre(b, string(plain))
		}
	}
}

func writePre(b *strings.Builder, text string) {
	text = strings.TrimRight(text, "\n")
	if text == "" {
		return
	}
	b.WriteString(`<div class="nb-output"><pre>`)
	b.WriteString(html.EscapeString(text))
	b.WriteString("</pre></div>\n")
}
