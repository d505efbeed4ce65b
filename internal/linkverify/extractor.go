// Package linkverify checks the generated site for broken internal
// references. Verification is purely filesystem-based: internal links must
// point at files that exist in the output tree. External-shaped links are
// never fetched.
package linkverify

import (
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/net/html"

	foliberrors "git.home.luguber.info/inful/folio/internal/foundation/errors"
)

// Link is one reference extracted from a rendered HTML page.
type Link struct {
	URL        string // Raw attribute value
	Tag        string // Element: a, img, link, script
	Attribute  string // Attribute holding the reference: href or src
	IsInternal bool   // True if the link targets this site
}

// ExtractLinks extracts all links from an HTML file.
func ExtractLinks(htmlPath string, baseURL string) ([]Link, error) {
	file, err := os.Open(filepath.Clean(htmlPath))
	if err != nil {
		return nil, foliberrors.WrapError(err, foliberrors.CategoryFileSystem, "failed to open HTML file").
			WithContext("path", htmlPath).Build()
	}
	defer file.Close()

	return ExtractLinksFromReader(file, baseURL)
}

// ExtractLinksFromReader extracts all links from an HTML stream.
func ExtractLinksFromReader(r io.Reader, baseURL string) ([]Link, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, foliberrors.WrapError(err, foliberrors.CategoryValidation, "failed to parse HTML").Build()
	}

	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, foliberrors.WrapError(err, foliberrors.CategoryValidation, "invalid base URL").
			WithContext("base_url", baseURL).Build()
	}

	var links []Link
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if link, ok := elementLink(n, base); ok {
				links = append(links, link)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return links, nil
}

func elementLink(n *html.Node, base *url.URL) (Link, bool) {
	var attr string
	switch n.Data {
	case "a", "link":
		attr = "href"
	case "img", "script":
		attr = "src"
	default:
		return Link{}, false
	}
	value := getAttr(n, attr)
	if value == "" {
		return Link{}, false
	}
	return Link{
		URL:        value,
		Tag:        n.Data,
		Attribute:  attr,
		IsInternal: isInternalLink(value, base),
	}, true
}

func getAttr(n *html.Node, name string) string {
	for _, attr := range n.Attr {
		if attr.Key == name {
			return strings.TrimSpace(attr.Val)
		}
	}
	return ""
}

// isInternalLink reports whether a reference targets this site: relative
// paths are internal, absolute URLs only when they share the base URL host.
func isInternalLink(ref string, base *url.URL) bool {
	switch {
	case strings.HasPrefix(ref, "#"):
		return false
	case strings.HasPrefix(ref, "mailto:"), strings.HasPrefix(ref, "tel:"):
		return false
	case strings.HasPrefix(ref, "data:"), strings.HasPrefix(ref, "javascript:"):
		return false
	}

	parsed, err := url.Parse(ref)
	if err != nil {
		return false
	}
	if parsed.Host == "" {
		return true
	}
	return base.Host != "" && parsed.Host == base.Host
}
