// Package bibtex parses publication entries from BibTeX files into the
// normalized records consumed by the aggregator.
//
// Parsing is partial-failure tolerant: a malformed entry is skipped with a
// recorded warning and the remaining entries still parse. Website-specific
// fields (pdf, code, highlight, ...) are recognized as link sources and
// excluded from the clean citation text.
package bibtex

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	nbib "github.com/nickng/bibtex"

	foliberrors "git.home.luguber.info/inful/folio/internal/foundation/errors"
	"git.home.luguber.info/inful/folio/internal/foundation/normalization"
)

// Publication is one parsed BibTeX entry.
type Publication struct {
	Key   string // Cite key
	Type  string // Entry type: article, inproceedings, ...
	Title string
	// Authors in file order, each normalized to "First Last".
	Authors []string
	Venue   string
	Year    int
	// Links extracted from entry fields, in a fixed label order. Refs are
	// raw strings; the aggregator resolves them.
	Links []Link
	// Raw is the entry re-serialized for citation, website-only fields
	// removed.
	Raw string
	// Highlight mirrors the entry's website-specific highlight field and
	// selects the entry for the homepage digest.
	Highlight bool
	// AuthorHighlighted marks, per author, whether a configured
	// highlight-author variant matched (case-insensitive).
	AuthorHighlighted []bool
}

// HasHighlightAuthor reports whether any author matched a configured variant.
func (p Publication) HasHighlightAuthor() bool {
	for _, hl := range p.AuthorHighlighted {
		if hl {
			return true
		}
	}
	return false
}

// Link is a labeled reference attached to a publication.
type Link struct {
	Label string
	Ref   string
}

// Options controls entry interpretation.
type Options struct {
	// HighlightAuthors lists name variants of the site owner.
	HighlightAuthors []string
}

// Result is the outcome of parsing one BibTeX source.
type Result struct {
	Publications []Publication
	Issues       []*foliberrors.ClassifiedError
}

// ParseFile parses a BibTeX file from disk.
func ParseFile(path string, opts Options) (Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Result{}, foliberrors.WrapError(err, foliberrors.CategoryFileSystem, "cannot read publications file").
			WithContext("path", path).Build()
	}
	return Parse(data, opts), nil
}

// Parse parses BibTeX source. It never fails as a whole: unparseable entries
// are reported as issues and skipped.
func Parse(src []byte, opts Options) Result {
	var res Result

	bib, err := nbib.Parse(strings.NewReader(string(src)))
	if err == nil {
		for _, entry := range bib.Entries {
			res.addEntry(entry, opts)
		}
		return res
	}

	// Whole-file parse failed; fall back to splitting the source into
	// individual entries so one malformed entry cannot hide the rest.
	for _, chunk := range splitEntries(string(src)) {
		partial, perr := nbib.Parse(strings.NewReader(chunk.text))
		if perr != nil || len(partial.Entries) == 0 {
			res.Issues = append(res.Issues, foliberrors.ParseError("malformed bibtex entry skipped").
				WithContext("cite_key", chunk.key).Build())
			continue
		}
		for _, entry := range partial.Entries {
			res.addEntry(entry, opts)
		}
	}
	return res
}

func (r *Result) addEntry(entry *nbib.BibEntry, opts Options) {
	pub, issue := formatEntry(entry, opts)
	if issue != nil {
		r.Issues = append(r.Issues, issue)
		return
	}
	r.Publications = append(r.Publications, pub)
}

// websiteFields are recognized for link extraction and excluded from the
// clean citation text.
var websiteFields = map[string]bool{
	"pdf": true, "code": true, "github": true, "website": true, "video": true,
	"slides": true, "poster": true, "demo": true, "supplement": true,
	"supplementary": true, "arxiv": true, "image": true, "file": true,
	"abstract": true, "highlight": true,
}

func formatEntry(entry *nbib.BibEntry, opts Options) (Publication, *foliberrors.ClassifiedError) {
	fields := lowerFields(entry)

	title := cleanBraces(fields["title"])
	if title == "" {
		return Publication{}, foliberrors.ParseError("bibtex entry has no title").
			WithContext("cite_key", entry.CiteName).Build()
	}

	year, err := strconv.Atoi(strings.TrimSpace(fields["year"]))
	if err != nil {
		return Publication{}, foliberrors.ParseError("bibtex entry has no parseable year").
			WithContext("cite_key", entry.CiteName).
			WithContext("year", fields["year"]).Build()
	}

	authors := parseAuthors(fields["author"])

	pub := Publication{
		Key:               entry.CiteName,
		Type:              strings.ToLower(entry.Type),
		Title:             title,
		Authors:           authors,
		Venue:             venue(entry.Type, fields),
		Year:              year,
		Links:             extractLinks(fields),
		Raw:               cleanCitation(entry, fields, year),
		Highlight:         isTruthy(fields["highlight"]),
		AuthorHighlighted: matchAuthors(authors, opts.HighlightAuthors),
	}
	return pub, nil
}

func lowerFields(entry *nbib.BibEntry) map[string]string {
	fields := make(map[string]string, len(entry.Fields))
	for name, value := range entry.Fields {
		if value == nil {
			continue
		}
		fields[strings.ToLower(name)] = strings.TrimSpace(value.String())
	}
	return fields
}

func cleanBraces(s string) string {
	return strings.TrimSpace(strings.NewReplacer("{", "", "}", "").Replace(s))
}

// venue picks the human venue string by entry type: journal for articles,
// booktitle for proceedings, howpublished otherwise.
func venue(entryType string, fields map[string]string) string {
	switch strings.ToLower(entryType) {
	case "article":
		if v := cleanBraces(fields["journal"]); v != "" {
			return v
		}
		return "Journal"
	case "inproceedings", "conference":
		v := cleanBraces(fields["booktitle"])
		if v == "" {
			return "Conference"
		}
		return strings.TrimSpace(strings.TrimPrefix(v, "Proceedings of"))
	default:
		if v := cleanBraces(fields["howpublished"]); v != "" {
			return v
		}
		return "Publication"
	}
}

// parseAuthors splits the BibTeX author field on the " and " convention and
// normalizes each name to "First Last".
func parseAuthors(field string) []string {
	field = cleanBraces(field)
	if field == "" {
		return nil
	}
	parts := strings.Split(field, " and ")
	authors := make([]string, 0, len(parts))
	for _, part := range parts {
		if name := formatAuthorName(part); name != "" {
			authors = append(authors, name)
		}
	}
	return authors
}

// formatAuthorName converts "Last, First" to "First Last"; names already in
// "First Last" form pass through.
func formatAuthorName(author string) string {
	author = strings.TrimSpace(author)
	last, first, found := strings.Cut(author, ",")
	if !found {
		return author
	}
	first = strings.TrimSpace(first)
	last = strings.TrimSpace(last)
	if first == "" {
		return last
	}
	return first + " " + last
}

// matchAuthors marks authors matching any configured highlight variant.
// Matching is a case-insensitive, diacritic-folded substring test, so "j. doe"
// matches the variant "J. Doe" and "Muller" matches "Müller".
func matchAuthors(authors []string, variants []string) []bool {
	matched := make([]bool, len(authors))
	if len(variants) == 0 {
		return matched
	}
	folded := make([]string, 0, len(variants))
	for _, v := range variants {
		if v = strings.TrimSpace(v); v != "" {
			folded = append(folded, strings.ToLower(normalization.Fold(v)))
		}
	}
	for i, author := range authors {
		a := strings.ToLower(normalization.Fold(author))
		for _, v := range folded {
			if strings.Contains(a, v) {
				matched[i] = true
				break
			}
		}
	}
	return matched
}

// linkFieldOrder fixes the label order of extracted links.
var linkFieldOrder = []struct {
	label  string
	fields []string
}{
	{"Paper", []string{"doi", "url"}},
	{"PDF", []string{"pdf"}},
	{"arXiv", []string{"arxiv"}},
	{"Code", []string{"code", "github"}},
	{"Website", []string{"website"}},
	{"Video", []string{"video"}},
	{"Slides", []string{"slides"}},
	{"Poster", []string{"poster"}},
	{"Demo", []string{"demo"}},
	{"Supplement", []string{"supplement", "supplementary"}},
}

func extractLinks(fields map[string]string) []Link {
	var links []Link
	for _, spec := range linkFieldOrder {
		for _, field := range spec.fields {
			value := fields[field]
			if value == "" {
				continue
			}
			switch field {
			case "doi":
				if !strings.HasPrefix(value, "http") {
					value = "https://doi.org/" + value
				}
			case "arxiv":
				if !strings.HasPrefix(value, "http") {
					value = "https://arxiv.org/abs/" + value
				}
			}
			links = append(links, Link{Label: spec.label, Ref: value})
			break
		}
	}
	return links
}

// citationFieldOrder puts the conventional fields first in regenerated
// citations; anything else follows alphabetically via the fields map walk in
// cleanCitation.
var citationFieldOrder = []string{"author", "title", "journal", "booktitle", "howpublished", "year"}

// cleanCitation re-serializes the entry for the copyable citation block,
// excluding website-only fields.
func cleanCitation(entry *nbib.BibEntry, fields map[string]string, year int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "@%s{%s,\n", strings.ToLower(entry.Type), entry.CiteName)

	written := map[string]bool{"year": true}
	for _, name := range citationFieldOrder {
		if name == "year" {
			continue
		}
		if value := fields[name]; value != "" {
			fmt.Fprintf(&b, "  %s = {%s},\n", name, value)
			written[name] = true
		}
	}
	for _, name := range sortedKeys(fields) {
		if written[name] || websiteFields[name] || fields[name] == "" {
			continue
		}
		fmt.Fprintf(&b, "  %s = {%s},\n", name, fields[name])
	}
	fmt.Fprintf(&b, "  year = {%d},\n", year)
	b.WriteString("}")
	return b.String()
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func isTruthy(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "yes", "1":
		return true
	}
	return false
}
