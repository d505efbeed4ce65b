package markdown

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRender_BasicMarkdown(t *testing.T) {
	r, err := NewRenderer(Options{})
	require.NoError(t, err)

	html, err := r.Render([]byte("# Heading\n\nSome *emphasis*.\n"))
	require.NoError(t, err)
	require.Contains(t, html, "<h1")
	require.Contains(t, html, "<em>emphasis</em>")
}

func TestRender_TableExtensionEnabled(t *testing.T) {
	r, err := NewRenderer(Options{Extensions: map[string]bool{"table": true}})
	require.NoError(t, err)

	html, err := r.Render([]byte("| a | b |\n|---|---|\n| 1 | 2 |\n"))
	require.NoError(t, err)
	require.Contains(t, html, "<table>")
}

func TestRender_TableExtensionDisabled(t *testing.T) {
	r, err := NewRenderer(Options{Extensions: map[string]bool{"table": false}})
	require.NoError(t, err)

	html, err := r.Render([]byte("| a | b |\n|---|---|\n| 1 | 2 |\n"))
	require.NoError(t, err)
	require.NotContains(t, html, "<table>")
}

func TestNewRenderer_UnknownExtensionFails(t *testing.T) {
	_, err := NewRenderer(Options{Extensions: map[string]bool{"codehilite": true}})
	require.Error(t, err)
	require.Contains(t, err.Error(), "codehilite")
}

func TestRender_RawHTMLPassesThrough(t *testing.T) {
	r, err := NewRenderer(Options{})
	require.NoError(t, err)

	html, err := r.Render([]byte("before\n\n<div class=\"callout\">hi</div>\n"))
	require.NoError(t, err)
	require.Contains(t, html, `<div class="callout">hi</div>`)
}

func TestRender_MathDelimitersLeftIntact(t *testing.T) {
	r, err := NewRenderer(Options{})
	require.NoError(t, err)

	html, err := r.Render([]byte("Inline $E = mc^2$ math.\n"))
	require.NoError(t, err)
	require.Contains(t, html, "$E = mc^2$")
}

func TestDedent(t *testing.T) {
	in := "    First line\n      indented more\n    back\n"
	out := Dedent(in)
	require.Equal(t, "First line\n  indented more\nback\n", out)
}

func TestDedent_NoIndent(t *testing.T) {
	require.Equal(t, "plain\n", Dedent("plain"))
}
