package content

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	foliberrors "git.home.luguber.info/inful/folio/internal/foundation/errors"
	"git.home.luguber.info/inful/folio/internal/frontmatter"
	"git.home.luguber.info/inful/folio/internal/markdown"
	"git.home.luguber.info/inful/folio/internal/notebook"
)

// Loader parses content files using a shared markdown renderer.
type Loader struct {
	md *markdown.Renderer
}

// NewLoader creates a Loader rendering markdown with the given renderer.
func NewLoader(md *markdown.Renderer) *Loader {
	return &Loader{md: md}
}

// LoadResult collects the documents of one directory scan together with the
// per-file issues. A file that fails to parse is reported and skipped; it
// never aborts the scan.
type LoadResult struct {
	Documents []Document
	Issues    []*foliberrors.ClassifiedError
}

// LoadFile parses a single content file, dispatching on its extension.
func (l *Loader) LoadFile(path string) (Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Document{}, foliberrors.WrapError(err, foliberrors.CategoryFileSystem, "cannot read content file").
			WithContext("path", path).Build()
	}

	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown":
		return l.loadMarkdown(data, path, stem)
	case ".ipynb":
		return l.loadNotebook(data, path, stem)
	default:
		return Document{}, foliberrors.ParseError("unsupported content format").
			WithContext("path", path).Build()
	}
}

func (l *Loader) loadMarkdown(data []byte, path, stem string) (Document, error) {
	fields, body, err := frontmatter.Parse(data)
	if err != nil {
		return Document{}, foliberrors.WrapError(err, foliberrors.CategoryParse, "invalid frontmatter").
			Warning().WithContext("path", path).Build()
	}
	base, err := frontmatter.ExtractBase(fields)
	if err != nil {
		return Document{}, foliberrors.WrapError(err, foliberrors.CategoryParse, "invalid frontmatter field").
			Warning().WithContext("path", path).Build()
	}

	html, err := l.md.Render(body)
	if err != nil {
		return Document{}, foliberrors.WrapError(err, foliberrors.CategoryRender, "markdown rendering failed").
			WithContext("path", path).Build()
	}

	doc := fromBase(base, stem)
	doc.HTML = html
	doc.SourcePath = path
	doc.Format = FormatMarkdown
	return doc, nil
}

func (l *Loader) loadNotebook(data []byte, path, stem string) (Document, error) {
	parsed, err := notebook.Parse(data, l.md)
	if err != nil {
		return Document{}, foliberrors.WrapError(err, foliberrors.CategoryParse, "invalid notebook").
			Warning().WithContext("path", path).Build()
	}
	base, err := frontmatter.ExtractBase(parsed.Meta)
	if err != nil {
		return Document{}, foliberrors.WrapError(err, foliberrors.CategoryParse, "invalid notebook frontmatter").
			Warning().WithContext("path", path).Build()
	}

	doc := fromBase(base, stem)
	doc.HTML = parsed.HTML
	doc.SourcePath = path
	doc.Format = FormatNotebook
	return doc, nil
}

// LoadDir scans a directory non-recursively for content files, in filename
// order. Files whose name starts with "_" or "." and scratch notebooks named
// "Untitled*" are skipped. A missing directory yields an empty result.
func (l *Loader) LoadDir(dir string) LoadResult {
	var res LoadResult

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return res
		}
		res.Issues = append(res.Issues, foliberrors.WrapError(err, foliberrors.CategoryFileSystem, "cannot scan content directory").
			Warning().WithContext("dir", dir).Build())
		return res
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || skipName(entry.Name()) {
			continue
		}
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".md", ".markdown", ".ipynb":
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	for _, name := range names {
		doc, err := l.LoadFile(filepath.Join(dir, name))
		if err != nil {
			if classified, ok := foliberrors.AsClassified(err); ok {
				res.Issues = append(res.Issues, classified)
			} else {
				res.Issues = append(res.Issues, foliberrors.WrapError(err, foliberrors.CategoryParse, "content file skipped").
					Warning().WithContext("path", filepath.Join(dir, name)).Build())
			}
			continue
		}
		res.Documents = append(res.Documents, doc)
	}
	return res
}

// LoadBio parses the optional author bio at <dir>/index.md. Absent bio is not
// an error; the homepage simply renders without one.
func (l *Loader) LoadBio(dir string) (*Document, error) {
	path := filepath.Join(dir, "index.md")
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, nil
	}
	doc, err := l.LoadFile(path)
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

func skipName(name string) bool {
	return strings.HasPrefix(name, "_") ||
		strings.HasPrefix(name, ".") ||
		strings.HasPrefix(name, "Untitled")
}
