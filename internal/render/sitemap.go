package render

import (
	"encoding/xml"
	"os"
	"path/filepath"

	"git.home.luguber.info/inful/folio/internal/paths"
	"git.home.luguber.info/inful/folio/internal/site"
)

type sitemapURL struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod,omitempty"`
}

type sitemapSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

// writeSitemap emits sitemap.xml with absolute URLs. Only meaningful in prod
// mode, where a base URL is configured.
func writeSitemap(model *site.Model, outputDir string, rc paths.Context) error {
	set := sitemapSet{XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9"}

	add := func(sitePath, lastMod string) {
		set.URLs = append(set.URLs, sitemapURL{
			Loc:     paths.BuildURL(rc, sitePath),
			LastMod: lastMod,
		})
	}

	add("index.html", "")
	if len(model.Years) > 0 {
		add("publications.html", "")
	}
	if len(model.News) > 0 {
		add("news.html", "")
	}
	if len(model.Projects) > 0 {
		add("projects.html", "")
	}
	if len(model.Talks) > 0 {
		add("talks.html", "")
	}
	if model.BlogEnabled && len(model.Posts) > 0 {
		add("blog/index.html", "")
		for _, post := range model.Posts {
			add(post.SitePath, post.Date.String())
		}
	}
	for _, page := range model.Pages {
		add(page.SitePath, "")
	}

	data, err := xml.MarshalIndent(set, "", "  ")
	if err != nil {
		return err
	}
	data = append([]byte(xml.Header), data...)
	return os.WriteFile(filepath.Join(outputDir, "sitemap.xml"), data, 0o644)
}
