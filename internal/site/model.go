// Package site builds the renderer-ready site model from parsed content and
// declarative configuration.
//
// The model is the single place where raw link strings become resolved links:
// every link-bearing field on every entity has passed through the path
// resolver before the model leaves the aggregator. Downstream consumers never
// re-interpret a string as external-or-local.
package site

import (
	"git.home.luguber.info/inful/folio/internal/frontmatter"
	"git.home.luguber.info/inful/folio/internal/paths"
)

// Model is the complete in-memory representation of a built site. It is
// constructed once per build and immutable afterward.
type Model struct {
	Title       string
	Description string
	BaseURL     string
	Mode        paths.Mode

	Author  Profile
	BioHTML string

	Posts []Post
	Pages []Post

	// Years groups publications by year, newest year first. Within a year,
	// entries keep their BibTeX file order.
	Years []YearGroup

	News     []News
	Projects []Project
	Talks    []Talk
	Service  Service

	// Digest is the homepage selection: highlighted items plus the most
	// recent news.
	Digest Digest

	BlogEnabled bool
}

// Profile is the author hero-section data with all links resolved.
type Profile struct {
	Name        string
	Title       string
	Affiliation string
	Email       string
	Tagline     string
	Interests   []string

	GitHub   paths.ResolvedLink
	Scholar  paths.ResolvedLink
	LinkedIn paths.ResolvedLink
	Twitter  paths.ResolvedLink

	Photo paths.ResolvedLink
	CV    paths.ResolvedLink

	Buttons []Button
}

// Button is a hero action button.
type Button struct {
	Text  string
	URL   paths.ResolvedLink
	Style string
}

// Link is a labeled, resolved reference shown as an action chip.
type Link struct {
	Label string
	URL   paths.ResolvedLink
}

// Post is a blog post or standalone page, body already rendered.
type Post struct {
	Title       string
	Slug        string
	Date        frontmatter.Date
	Description string
	Image       paths.ResolvedLink
	Tags        []string
	HTML        string
	Meta        map[string]any

	// SitePath is the output location relative to the site root, e.g.
	// "blog/my-post.html". Href is the same location through the URL
	// builder at site-root depth.
	SitePath string
	Href     string

	SourcePath string
}

// Author is one publication author with its highlight mark.
type Author struct {
	Name      string
	Highlight bool
}

// Publication is a renderer-ready publication entry.
type Publication struct {
	Key       string
	Type      string
	Title     string
	Authors   []Author
	Venue     string
	Year      int
	Links     []Link
	Citation  string
	Highlight bool
}

// YearGroup is the publications of one year.
type YearGroup struct {
	Year         int
	Publications []Publication
}

// News is a dated announcement, content rendered inline.
type News struct {
	Date      frontmatter.Date
	HTML      string
	Highlight bool
	Links     []Link
}

// Project is a project card.
type Project struct {
	Title         string
	HTML          string
	Image         paths.ResolvedLink
	Category      string
	Collaborators []string
	Highlight     bool
	GitHub        paths.ResolvedLink
	Links         []Link
}

// Talk is a talk or presentation entry.
type Talk struct {
	Title     string
	Date      frontmatter.Date
	Venue     string
	Type      string
	HTML      string
	Highlight bool
	Links     []Link
}

// ServiceEntry is one academic service item.
type ServiceEntry struct {
	HTML  string
	Date  string
	URL   paths.ResolvedLink
	Venue string
}

// ServiceGroup is the review-service entries of one venue category.
type ServiceGroup struct {
	Category string
	Entries  []ServiceEntry
}

// Service splits academic service into leadership roles and grouped
// reviewing duties.
type Service struct {
	Leadership []ServiceEntry
	Reviewing  []ServiceGroup
}

// Digest is the homepage selection.
type Digest struct {
	Publications []Publication
	News         []News
	Projects     []Project
	Talks        []Talk
}
