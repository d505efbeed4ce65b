package linkverify

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/folio/internal/paths"
)

func writeHTML(t *testing.T, dir, name, body string) {
	t.Helper()
	path := filepath.Join(dir, filepath.FromSlash(name))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("<html><body>"+body+"</body></html>"), 0o644))
}

func TestExtractLinks_ClassifiesInternalAndExternal(t *testing.T) {
	html := strings.NewReader(`<html><body>
		<a href="blog/post.html">post</a>
		<a href="https://janedoe.dev/publications.html">pubs</a>
		<a href="https://other.example.com/x">elsewhere</a>
		<a href="mailto:me@janedoe.dev">mail</a>
		<a href="#section">anchor</a>
		<img src="static/photos/me.jpg">
		<script src="https://cdn.example.com/lib.js"></script>
	</body></html>`)

	links, err := ExtractLinksFromReader(html, "https://janedoe.dev")
	require.NoError(t, err)

	byURL := map[string]Link{}
	for _, link := range links {
		byURL[link.URL] = link
	}

	require.True(t, byURL["blog/post.html"].IsInternal)
	require.True(t, byURL["https://janedoe.dev/publications.html"].IsInternal)
	require.False(t, byURL["https://other.example.com/x"].IsInternal)
	require.False(t, byURL["mailto:me@janedoe.dev"].IsInternal)
	require.False(t, byURL["#section"].IsInternal)
	require.True(t, byURL["static/photos/me.jpg"].IsInternal)
	require.Equal(t, "img", byURL["static/photos/me.jpg"].Tag)
	require.False(t, byURL["https://cdn.example.com/lib.js"].IsInternal)
}

func TestValidateOutput_CleanSite(t *testing.T) {
	out := t.TempDir()
	writeHTML(t, out, "index.html", `<a href="blog/post.html">post</a>`)
	writeHTML(t, out, "blog/post.html", `<a href="../index.html">home</a>`)

	issues := NewVerifier("https://janedoe.dev").ValidateOutput(context.Background(), out, paths.ModeProd)
	require.Empty(t, issues)
}

func TestValidateOutput_ReportsBrokenInternalLink(t *testing.T) {
	out := t.TempDir()
	writeHTML(t, out, "index.html", `<a href="missing.html">gone</a>`)

	issues := NewVerifier("https://janedoe.dev").ValidateOutput(context.Background(), out, paths.ModeProd)
	require.Len(t, issues, 1)
	require.True(t, issues[0].IsWarning())
	require.Contains(t, issues[0].Error(), "broken internal link")
}

func TestValidateOutput_AbsoluteLinksUnderBaseURL(t *testing.T) {
	out := t.TempDir()
	writeHTML(t, out, "index.html", `<a href="https://janedoe.dev/publications.html">pubs</a>`)
	writeHTML(t, out, "publications.html", "ok")

	issues := NewVerifier("https://janedoe.dev").ValidateOutput(context.Background(), out, paths.ModeProd)
	require.Empty(t, issues)
}

func TestValidateOutput_ExternalLinksNeverChecked(t *testing.T) {
	out := t.TempDir()
	writeHTML(t, out, "index.html", `<a href="https://definitely-not-resolvable.invalid/x">ext</a>`)

	issues := NewVerifier("https://janedoe.dev").ValidateOutput(context.Background(), out, paths.ModeProd)
	require.Empty(t, issues)
}

func TestValidateOutput_DirectoryLinkRequiresIndex(t *testing.T) {
	out := t.TempDir()
	writeHTML(t, out, "index.html", `<a href="blog/">blog</a>`)
	require.NoError(t, os.MkdirAll(filepath.Join(out, "blog"), 0o755))

	issues := NewVerifier("https://janedoe.dev").ValidateOutput(context.Background(), out, paths.ModeProd)
	require.Len(t, issues, 1)

	writeHTML(t, out, "blog/index.html", "list")
	issues = NewVerifier("https://janedoe.dev").ValidateOutput(context.Background(), out, paths.ModeProd)
	require.Empty(t, issues)
}

type capturingPublisher struct {
	events []BrokenLinkEvent
}

func (p *capturingPublisher) PublishBrokenLink(event BrokenLinkEvent) error {
	p.events = append(p.events, event)
	return nil
}

func TestValidateOutput_PublishesEvents(t *testing.T) {
	out := t.TempDir()
	writeHTML(t, out, "index.html", `<img src="static/gone.png">`)

	publisher := &capturingPublisher{}
	verifier := NewVerifier("https://janedoe.dev").WithPublisher(publisher)

	issues := verifier.ValidateOutput(context.Background(), out, paths.ModeProd)
	require.Len(t, issues, 1)
	require.Len(t, publisher.events, 1)
	require.Equal(t, "static/gone.png", publisher.events[0].URL)
	require.Equal(t, "index.html", publisher.events[0].SourcePath)
	require.Equal(t, "img", publisher.events[0].Tag)
}
