// Package content turns source files (Markdown and Jupyter notebooks) into
// normalized documents for the aggregator.
package content

import (
	"strings"

	"git.home.luguber.info/inful/folio/internal/foundation/normalization"
	"git.home.luguber.info/inful/folio/internal/frontmatter"
)

// Format identifies the source format a document was parsed from.
type Format string

const (
	FormatMarkdown Format = "markdown"
	FormatNotebook Format = "notebook"
)

// Document is a parsed content file, format differences erased. Body is
// rendered HTML; link references inside frontmatter stay raw until the
// aggregator resolves them.
type Document struct {
	Title       string
	Slug        string
	Date        frontmatter.Date
	Description string
	Image       string
	Tags        []string
	Highlight   bool

	// Meta carries frontmatter keys without pipeline semantics, for
	// template consumption.
	Meta map[string]any

	HTML       string
	SourcePath string
	Format     Format
}

// fromBase fills the shared fields from extracted frontmatter, deriving slug
// and title from the file stem when absent.
func fromBase(base frontmatter.Base, stem string) Document {
	doc := Document{
		Title:       base.Title,
		Slug:        base.Slug,
		Date:        base.Date,
		Description: base.Description,
		Image:       base.Image,
		Tags:        base.Tags,
		Highlight:   base.Highlight,
		Meta:        base.Rest,
	}
	if doc.Slug == "" {
		doc.Slug = normalization.Slugify(stem)
	} else {
		doc.Slug = normalization.Slugify(doc.Slug)
	}
	if doc.Title == "" {
		doc.Title = titleFromStem(stem)
	}
	return doc
}

func titleFromStem(stem string) string {
	return strings.TrimSpace(strings.NewReplacer("-", " ", "_", " ").Replace(stem))
}
