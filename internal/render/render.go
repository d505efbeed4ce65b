// Package render turns the site model into HTML files using an embedded
// template set.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"os"
	"path/filepath"

	"git.home.luguber.info/inful/folio/internal/paths"
	"git.home.luguber.info/inful/folio/internal/site"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

//go:embed assets/theme.css
var themeCSS []byte

// Renderer writes a site model as themed HTML. It implements the build
// pipeline's Renderer interface.
type Renderer struct{}

// New creates a Renderer.
func New() *Renderer {
	return &Renderer{}
}

// pageData is the execution context of one page template.
type pageData struct {
	Model  *site.Model
	Title  string
	Active string
	Post   *site.Post
}

// RenderSite writes every page of the model under outputDir and returns the
// number of HTML pages written.
func (r *Renderer) RenderSite(model *site.Model, outputDir string, rc paths.Context) (int, error) {
	pages := 0

	write := func(templateName, outPath string, depth int, data pageData) error {
		data.Model = model
		if err := r.renderPage(templateName, filepath.Join(outputDir, filepath.FromSlash(outPath)), rc.WithDepth(depth), data); err != nil {
			return err
		}
		pages++
		return nil
	}

	if err := write("index.tmpl", "index.html", 0, pageData{Title: model.Title, Active: "home"}); err != nil {
		return pages, err
	}
	if len(model.Years) > 0 {
		if err := write("publications.tmpl", "publications.html", 0, pageData{Title: "Publications", Active: "publications"}); err != nil {
			return pages, err
		}
	}
	if len(model.News) > 0 {
		if err := write("news.tmpl", "news.html", 0, pageData{Title: "News", Active: "news"}); err != nil {
			return pages, err
		}
	}
	if len(model.Projects) > 0 {
		if err := write("projects.tmpl", "projects.html", 0, pageData{Title: "Projects", Active: "projects"}); err != nil {
			return pages, err
		}
	}
	if len(model.Talks) > 0 {
		if err := write("talks.tmpl", "talks.html", 0, pageData{Title: "Talks", Active: "talks"}); err != nil {
			return pages, err
		}
	}

	if model.BlogEnabled && len(model.Posts) > 0 {
		if err := write("blog_index.tmpl", "blog/index.html", 1, pageData{Title: "Blog", Active: "blog"}); err != nil {
			return pages, err
		}
		for i := range model.Posts {
			post := &model.Posts[i]
			if err := write("post.tmpl", post.SitePath, 1, pageData{Title: post.Title, Active: "blog", Post: post}); err != nil {
				return pages, err
			}
		}
	}

	for i := range model.Pages {
		page := &model.Pages[i]
		if err := write("page.tmpl", page.SitePath, 0, pageData{Title: page.Title, Post: page}); err != nil {
			return pages, err
		}
	}

	if rc.Mode == paths.ModeProd {
		if err := writeSitemap(model, outputDir, rc); err != nil {
			return pages, err
		}
	}

	cssPath := filepath.Join(outputDir, "static", "css", "theme.css")
	if err := os.MkdirAll(filepath.Dir(cssPath), 0o755); err != nil {
		return pages, err
	}
	if err := os.WriteFile(cssPath, themeCSS, 0o644); err != nil {
		return pages, err
	}

	return pages, nil
}

// renderPage parses the layout plus one page template and executes it. Per-page
// parsing keeps the "content" block definition local to each page file.
func (r *Renderer) renderPage(templateName, outPath string, rc paths.Context, data pageData) error {
	tpl, err := template.New("layout.tmpl").
		Funcs(templateFuncs(rc)).
		ParseFS(templateFS, "templates/layout.tmpl", "templates/"+templateName)
	if err != nil {
		return fmt.Errorf("parse template %s: %w", templateName, err)
	}

	var buf bytes.Buffer
	if err := tpl.ExecuteTemplate(&buf, "layout.tmpl", data); err != nil {
		return fmt.Errorf("render %s: %w", outPath, err)
	}

	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return err
	}
	return os.WriteFile(outPath, buf.Bytes(), 0o644)
}

func templateFuncs(rc paths.Context) template.FuncMap {
	return template.FuncMap{
		// url builds a depth-appropriate URL for a site-root-relative path.
		"url": func(sitePath string) string {
			return paths.BuildURL(rc, sitePath)
		},
		// has reports whether a resolved link should render at all.
		"has": func(link paths.ResolvedLink) bool {
			return !link.IsAbsent()
		},
		"safe": func(s string) template.HTML {
			return template.HTML(s)
		},
	}
}
