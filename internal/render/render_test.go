package render

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/folio/internal/frontmatter"
	"git.home.luguber.info/inful/folio/internal/paths"
	"git.home.luguber.info/inful/folio/internal/site"
)

func testModel(t *testing.T) *site.Model {
	t.Helper()
	date, err := frontmatter.ParseDate("2024-03-01")
	require.NoError(t, err)

	return &site.Model{
		Title:       "Jane Doe",
		Description: "Researcher",
		BaseURL:     "https://janedoe.dev",
		Mode:        paths.ModeProd,
		BlogEnabled: true,
		Author: site.Profile{
			Name: "Jane Doe",
			Photo: paths.ResolvedLink{
				Kind:     paths.KindLocal,
				FinalURL: "https://janedoe.dev/static/photos/me.jpg",
				Exists:   true,
			},
		},
		BioHTML: "<p>I work on data systems.</p>",
		Posts: []site.Post{{
			Title:    "Hello",
			Slug:     "hello",
			Date:     date,
			HTML:     "<p>First post.</p>",
			SitePath: "blog/hello.html",
			Href:     "https://janedoe.dev/blog/hello.html",
		}},
		Years: []site.YearGroup{{
			Year: 2024,
			Publications: []site.Publication{{
				Key:   "doe2024",
				Title: "Streaming Joins",
				Authors: []site.Author{
					{Name: "Jane Doe", Highlight: true},
					{Name: "Alex Smith"},
				},
				Venue:    "VLDB",
				Year:     2024,
				Citation: "@article{doe2024,\n  title = {Streaming Joins},\n}",
			}},
		}},
		News: []site.News{{
			Date: date,
			HTML: "Paper accepted",
		}},
	}
}

func TestRenderSite_WritesPages(t *testing.T) {
	out := t.TempDir()
	model := testModel(t)
	rc := paths.Context{Mode: paths.ModeProd, BaseURL: "https://janedoe.dev"}

	pages, err := New().RenderSite(model, out, rc)
	require.NoError(t, err)
	// index, publications, news, blog index, one post.
	require.Equal(t, 5, pages)

	for _, name := range []string{
		"index.html", "publications.html", "news.html",
		filepath.Join("blog", "index.html"), filepath.Join("blog", "hello.html"),
		"sitemap.xml", filepath.Join("static", "css", "theme.css"),
	} {
		_, err := os.Stat(filepath.Join(out, name))
		require.NoError(t, err, name)
	}
}

func TestRenderSite_IndexContent(t *testing.T) {
	out := t.TempDir()
	rc := paths.Context{Mode: paths.ModeProd, BaseURL: "https://janedoe.dev"}

	_, err := New().RenderSite(testModel(t), out, rc)
	require.NoError(t, err)

	html := readFile(t, filepath.Join(out, "index.html"))
	require.Contains(t, html, "<h1>Jane Doe</h1>")
	require.Contains(t, html, "I work on data systems.")
	require.Contains(t, html, `src="https://janedoe.dev/static/photos/me.jpg"`)
	require.Contains(t, html, `href="https://janedoe.dev/static/css/theme.css"`)
}

func TestRenderSite_HighlightedAuthorEmphasized(t *testing.T) {
	out := t.TempDir()
	rc := paths.Context{Mode: paths.ModeProd, BaseURL: "https://janedoe.dev"}

	_, err := New().RenderSite(testModel(t), out, rc)
	require.NoError(t, err)

	html := readFile(t, filepath.Join(out, "publications.html"))
	require.Contains(t, html, "<strong>Jane Doe</strong>")
	require.Contains(t, html, "Alex Smith")
	require.NotContains(t, html, "<strong>Alex Smith</strong>")
}

func TestRenderSite_DevModeUsesRelativeURLs(t *testing.T) {
	out := t.TempDir()
	model := testModel(t)
	model.Mode = paths.ModeDev
	rc := paths.Context{Mode: paths.ModeDev}

	_, err := New().RenderSite(model, out, rc)
	require.NoError(t, err)

	index := readFile(t, filepath.Join(out, "index.html"))
	require.Contains(t, index, `href="./static/css/theme.css"`)

	// Pages one directory down link back with ../.
	post := readFile(t, filepath.Join(out, "blog", "hello.html"))
	require.Contains(t, post, `href="../static/css/theme.css"`)

	// No sitemap without a base URL to build absolute locations from.
	_, statErr := os.Stat(filepath.Join(out, "sitemap.xml"))
	require.True(t, os.IsNotExist(statErr))
}

func TestRenderSite_PostBodyPassedThroughUnescaped(t *testing.T) {
	out := t.TempDir()
	rc := paths.Context{Mode: paths.ModeProd, BaseURL: "https://janedoe.dev"}

	_, err := New().RenderSite(testModel(t), out, rc)
	require.NoError(t, err)

	post := readFile(t, filepath.Join(out, "blog", "hello.html"))
	require.Contains(t, post, "<p>First post.</p>")
}

func TestRenderSite_SitemapListsPages(t *testing.T) {
	out := t.TempDir()
	rc := paths.Context{Mode: paths.ModeProd, BaseURL: "https://janedoe.dev"}

	_, err := New().RenderSite(testModel(t), out, rc)
	require.NoError(t, err)

	sitemap := readFile(t, filepath.Join(out, "sitemap.xml"))
	require.Contains(t, sitemap, "<loc>https://janedoe.dev/index.html</loc>")
	require.Contains(t, sitemap, "<loc>https://janedoe.dev/blog/hello.html</loc>")
	require.Contains(t, sitemap, "<lastmod>2024-03-01</lastmod>")
}

func TestRenderSite_EmptyCollectionsSkipPages(t *testing.T) {
	out := t.TempDir()
	model := &site.Model{Title: "X", Author: site.Profile{Name: "X"}}
	rc := paths.Context{Mode: paths.ModeProd, BaseURL: "https://x.dev"}

	pages, err := New().RenderSite(model, out, rc)
	require.NoError(t, err)
	require.Equal(t, 1, pages)

	_, statErr := os.Stat(filepath.Join(out, "publications.html"))
	require.True(t, os.IsNotExist(statErr))
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}
