package markdown

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	htmlrenderer "github.com/yuin/goldmark/renderer/html"
)

// Extension names accepted in configuration. Each maps to a Goldmark extender;
// unknown names are a configuration error so typos surface early.
var knownExtensions = map[string]goldmark.Extender{
	"table":           extension.Table,
	"strikethrough":   extension.Strikethrough,
	"linkify":         extension.Linkify,
	"tasklist":        extension.TaskList,
	"footnote":        extension.Footnote,
	"definition-list": extension.DefinitionList,
	"typographer":     extension.Typographer,
}

// DefaultExtensions is the extension allowlist applied when the site
// configuration does not specify one.
func DefaultExtensions() map[string]bool {
	return map[string]bool{
		"table":           true,
		"strikethrough":   true,
		"linkify":         true,
		"footnote":        true,
		"definition-list": true,
	}
}

// Options controls how Markdown bodies are rendered to HTML.
type Options struct {
	// Extensions is an allowlist of extension name -> enabled. Nil means
	// DefaultExtensions.
	Extensions map[string]bool
}

// Renderer converts Markdown bodies (frontmatter already removed) to HTML.
//
// Raw HTML in the source passes through unchanged, and math delimiters
// ($...$, $$...$$) are left intact for client-side rendering.
type Renderer struct {
	md goldmark.Markdown
}

// NewRenderer builds a Renderer from the given options.
func NewRenderer(opts Options) (*Renderer, error) {
	allow := opts.Extensions
	if allow == nil {
		allow = DefaultExtensions()
	}

	names := make([]string, 0, len(allow))
	for name := range allow {
		names = append(names, name)
	}
	sort.Strings(names) // Deterministic extender order.

	extenders := make([]goldmark.Extender, 0, len(names))
	for _, name := range names {
		ext, ok := knownExtensions[name]
		if !ok {
			return nil, fmt.Errorf("unknown markdown extension %q", name)
		}
		if allow[name] {
			extenders = append(extenders, ext)
		}
	}

	md := goldmark.New(
		goldmark.WithExtensions(extenders...),
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
		goldmark.WithRendererOptions(htmlrenderer.WithUnsafe()),
	)
	return &Renderer{md: md}, nil
}

// Render converts a Markdown body to HTML.
func (r *Renderer) Render(src []byte) (string, error) {
	var buf bytes.Buffer
	if err := r.md.Convert(src, &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}
