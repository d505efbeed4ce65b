package site

import (
	"path"
	"sort"
	"strconv"
	"strings"

	"git.home.luguber.info/inful/folio/internal/bibtex"
	"git.home.luguber.info/inful/folio/internal/config"
	"git.home.luguber.info/inful/folio/internal/content"
	foliberrors "git.home.luguber.info/inful/folio/internal/foundation/errors"
	"git.home.luguber.info/inful/folio/internal/frontmatter"
	"git.home.luguber.info/inful/folio/internal/markdown"
	"git.home.luguber.info/inful/folio/internal/paths"
)

// Inputs carries everything the aggregator merges into the model.
type Inputs struct {
	Config       *config.Config
	Bio          *content.Document
	Posts        []content.Document
	Pages        []content.Document
	Publications []bibtex.Publication
}

// Aggregator merges parsed documents and declarative configuration into a
// Model. It is the single boundary where link strings get resolved.
type Aggregator struct {
	md *markdown.Renderer
}

// New creates an Aggregator rendering inline markdown (news, descriptions)
// with the given renderer.
func New(md *markdown.Renderer) *Aggregator {
	return &Aggregator{md: md}
}

// Aggregate builds the site model. It is total: individual bad items degrade
// to warnings in the returned issue list, never to a failed aggregation, and
// identical inputs always produce a structurally identical model.
func (a *Aggregator) Aggregate(in Inputs, rc paths.Context) (*Model, []*foliberrors.ClassifiedError) {
	st := &aggregation{agg: a, rc: rc}

	cfg := in.Config
	model := &Model{
		Title:       cfg.Site.Title,
		Description: cfg.Site.Description,
		BaseURL:     cfg.Site.BaseURL,
		Mode:        rc.Mode,
		BlogEnabled: cfg.BlogEnabled(),
	}

	model.Author = st.profile(cfg.Author)
	if in.Bio != nil {
		model.BioHTML = in.Bio.HTML
	}

	model.Posts = st.posts(in.Posts, "blog")
	model.Pages = st.pages(in.Pages)
	model.Years = groupByYear(st.publications(in.Publications))
	model.News = st.news(cfg.News)
	model.Projects = st.projects(cfg.Projects)
	model.Talks = st.talks(cfg.Talks)
	model.Service = st.service(cfg.Author.Service)
	model.Digest = buildDigest(model, cfg.Site)

	return model, st.issues
}

// aggregation is the per-call working state: the resolution context and the
// accumulated non-fatal issues.
type aggregation struct {
	agg    *Aggregator
	rc     paths.Context
	issues []*foliberrors.ClassifiedError
}

// resolve passes one reference through the path resolver and records a
// missing local asset as a warning attributed to its source.
func (st *aggregation) resolve(ref, assetDir, source string) paths.ResolvedLink {
	link := paths.Resolve(ref, st.rc.WithAssetDir(assetDir))
	if link.Kind == paths.KindLocal && st.rc.StaticRoot != "" && !link.Exists {
		st.issues = append(st.issues, foliberrors.ResolveError("referenced asset not found under static root").
			WithContext("ref", ref).
			WithContext("source", source).Build())
	}
	return link
}

func (st *aggregation) profile(author config.AuthorConfig) Profile {
	p := Profile{
		Name:        author.Name,
		Title:       author.Title,
		Affiliation: author.Affiliation,
		Email:       author.Email,
		Tagline:     author.Tagline,
		Interests:   author.Interests,
		GitHub:      st.resolve(author.GitHub, "", "author.github"),
		Scholar:     st.resolve(author.Scholar, "", "author.scholar"),
		LinkedIn:    st.resolve(author.LinkedIn, "", "author.linkedin"),
		Twitter:     st.resolve(author.Twitter, "", "author.twitter"),
		Photo:       st.resolve(author.Photo, "photos", "author.photo"),
		CV:          st.resolve(author.CV, "", "author.cv"),
	}
	for _, b := range author.Buttons {
		p.Buttons = append(p.Buttons, Button{
			Text:  b.Text,
			URL:   st.resolve(b.URL, "", "author.buttons"),
			Style: buttonStyle(b.Style),
		})
	}
	return p
}

func buttonStyle(style string) string {
	if style == "" {
		return "primary"
	}
	return style
}

// posts converts blog documents: duplicate slugs resolved later-wins with a
// warning, then sorted newest first with undated posts trailing in discovery
// order.
func (st *aggregation) posts(docs []content.Document, dir string) []Post {
	deduped := st.dedupeSlugs(docs)

	out := make([]Post, 0, len(deduped))
	for _, doc := range deduped {
		out = append(out, st.post(doc, path.Join(dir, doc.Slug+".html")))
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].Date, out[j].Date
		switch {
		case a.IsZero():
			return false
		case b.IsZero():
			return true
		default:
			return a.Time.After(b.Time)
		}
	})
	return out
}

func (st *aggregation) pages(docs []content.Document) []Post {
	deduped := st.dedupeSlugs(docs)
	out := make([]Post, 0, len(deduped))
	for _, doc := range deduped {
		out = append(out, st.post(doc, doc.Slug+".html"))
	}
	return out
}

func (st *aggregation) post(doc content.Document, sitePath string) Post {
	return Post{
		Title:       doc.Title,
		Slug:        doc.Slug,
		Date:        doc.Date,
		Description: doc.Description,
		Image:       st.resolve(doc.Image, "images", doc.SourcePath),
		Tags:        doc.Tags,
		HTML:        doc.HTML,
		Meta:        doc.Meta,
		SitePath:    sitePath,
		Href:        paths.BuildURL(st.rc.WithDepth(0), sitePath),
		SourcePath:  doc.SourcePath,
	}
}

// dedupeSlugs resolves slug collisions deterministically: the
// later-discovered document wins and replaces the earlier one, with a
// recorded warning.
func (st *aggregation) dedupeSlugs(docs []content.Document) []content.Document {
	out := make([]content.Document, 0, len(docs))
	position := make(map[string]int, len(docs))

	for _, doc := range docs {
		if at, seen := position[doc.Slug]; seen {
			st.issues = append(st.issues, foliberrors.NewError(foliberrors.CategoryAggregate, "duplicate slug, later document wins").
				Warning().
				WithContext("slug", doc.Slug).
				WithContext("source", doc.SourcePath).
				WithContext("replaces", out[at].SourcePath).Build())
			out[at] = doc
			continue
		}
		position[doc.Slug] = len(out)
		out = append(out, doc)
	}
	return out
}

func (st *aggregation) publications(pubs []bibtex.Publication) []Publication {
	out := make([]Publication, 0, len(pubs))
	for _, pub := range pubs {
		entry := Publication{
			Key:       pub.Key,
			Type:      pub.Type,
			Title:     pub.Title,
			Venue:     pub.Venue,
			Year:      pub.Year,
			Citation:  pub.Raw,
			Highlight: pub.Highlight,
		}
		for i, name := range pub.Authors {
			entry.Authors = append(entry.Authors, Author{
				Name:      name,
				Highlight: i < len(pub.AuthorHighlighted) && pub.AuthorHighlighted[i],
			})
		}
		for _, link := range pub.Links {
			entry.Links = append(entry.Links, Link{
				Label: link.Label,
				URL:   st.resolve(link.Ref, "papers", pub.Key),
			})
		}
		out = append(out, entry)
	}
	return out
}

// groupByYear buckets publications newest year first, preserving file order
// within each year.
func groupByYear(pubs []Publication) []YearGroup {
	byYear := map[int][]Publication{}
	var years []int
	for _, pub := range pubs {
		if _, seen := byYear[pub.Year]; !seen {
			years = append(years, pub.Year)
		}
		byYear[pub.Year] = append(byYear[pub.Year], pub)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(years)))

	groups := make([]YearGroup, 0, len(years))
	for _, year := range years {
		groups = append(groups, YearGroup{Year: year, Publications: byYear[year]})
	}
	return groups
}

func (st *aggregation) news(items []config.NewsItem) []News {
	out := make([]News, 0, len(items))
	for i, item := range items {
		date, err := frontmatter.ParseDate(item.Date)
		if err != nil {
			st.issues = append(st.issues, foliberrors.ParseError("news item has an unparseable date").
				WithContext("date", item.Date).
				WithContext("source", "config news").Build())
		}
		out = append(out, News{
			Date:      date,
			HTML:      st.inlineMarkdown(item.Content),
			Highlight: item.Highlight,
			Links:     st.linkSet(item.LinkSet, newsSource(i)),
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.Time.After(out[j].Date.Time)
	})
	return out
}

func newsSource(i int) string {
	return "config news[" + strconv.Itoa(i) + "]"
}

func (st *aggregation) projects(items []config.ProjectItem) []Project {
	out := make([]Project, 0, len(items))
	for _, item := range items {
		out = append(out, Project{
			Title:         item.Title,
			HTML:          st.inlineMarkdown(item.Description),
			Image:         st.resolve(item.Image, "projects", item.Title),
			Category:      item.Category,
			Collaborators: item.Collaborators,
			Highlight:     item.Highlight,
			GitHub:        st.resolve(item.GitHub, "", item.Title),
			Links:         st.linkSet(item.LinkSet, item.Title),
		})
	}
	return out
}

func (st *aggregation) talks(items []config.TalkItem) []Talk {
	out := make([]Talk, 0, len(items))
	for _, item := range items {
		date, err := frontmatter.ParseDate(item.Date)
		if err != nil {
			st.issues = append(st.issues, foliberrors.ParseError("talk has an unparseable date").
				WithContext("date", item.Date).
				WithContext("source", item.Title).Build())
		}
		out = append(out, Talk{
			Title:     item.Title,
			Date:      date,
			Venue:     item.Venue,
			Type:      item.Type,
			HTML:      st.inlineMarkdown(item.Description),
			Highlight: item.Highlight,
			Links:     st.linkSet(item.LinkSet, item.Title),
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.Time.After(out[j].Date.Time)
	})
	return out
}

// linkSetFields fixes the label order of item action links and the asset
// subdirectory each field resolves under.
var linkSetFields = []struct {
	label    string
	assetDir string
	value    func(config.LinkSet) string
}{
	{"Paper", "papers", func(l config.LinkSet) string { return l.Paper }},
	{"Code", "", func(l config.LinkSet) string { return l.Code }},
	{"Slides", "talks", func(l config.LinkSet) string { return l.Slides }},
	{"Video", "", func(l config.LinkSet) string { return l.Video }},
	{"Demo", "", func(l config.LinkSet) string { return l.Demo }},
	{"Website", "", func(l config.LinkSet) string { return l.Website }},
	{"Documentation", "", func(l config.LinkSet) string { return l.Documentation }},
	{"Materials", "", func(l config.LinkSet) string { return l.Materials }},
}

func (st *aggregation) linkSet(ls config.LinkSet, source string) []Link {
	var links []Link
	for _, field := range linkSetFields {
		ref := field.value(ls)
		if ref == "" {
			continue
		}
		links = append(links, Link{
			Label: field.label,
			URL:   st.resolve(ref, field.assetDir, source),
		})
	}
	return links
}

func (st *aggregation) service(items []config.ServiceItem) Service {
	var svc Service
	groupIndex := map[string]int{}

	for _, item := range items {
		entry := ServiceEntry{
			HTML:  st.inlineMarkdown(item.Description),
			Date:  item.Date,
			URL:   st.resolve(item.URL, "", "author.service"),
			Venue: item.Venue,
		}
		category := strings.ToLower(strings.TrimSpace(item.Category))
		if category == "leadership" {
			svc.Leadership = append(svc.Leadership, entry)
			continue
		}
		if category == "" {
			category = "reviewing"
		}
		idx, seen := groupIndex[category]
		if !seen {
			idx = len(svc.Reviewing)
			groupIndex[category] = idx
			svc.Reviewing = append(svc.Reviewing, ServiceGroup{Category: category})
		}
		svc.Reviewing[idx].Entries = append(svc.Reviewing[idx].Entries, entry)
	}
	return svc
}

// inlineMarkdown renders short config-authored markdown, unwrapping a single
// enclosing paragraph so the fragment embeds inline.
func (st *aggregation) inlineMarkdown(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}
	rendered, err := st.agg.md.Render([]byte(text))
	if err != nil {
		st.issues = append(st.issues, foliberrors.RenderError("inline markdown rendering failed").
			Warning().WithContext("text", text).Build())
		return text
	}
	rendered = strings.TrimSpace(rendered)
	if strings.HasPrefix(rendered, "<p>") && strings.HasSuffix(rendered, "</p>") &&
		strings.Count(rendered, "<p>") == 1 {
		rendered = strings.TrimSuffix(strings.TrimPrefix(rendered, "<p>"), "</p>")
	}
	return rendered
}

// buildDigest selects the homepage subset: highlighted publications padded
// with the most recent to the configured count, highlighted items of each
// collection, and the latest news regardless of flag.
func buildDigest(model *Model, site config.SiteConfig) Digest {
	var digest Digest

	pubCount := 0
	if site.HomepagePublications != nil {
		pubCount = *site.HomepagePublications
	}
	digest.Publications = digestPublications(model.Years, pubCount)

	newsCount := 0
	if site.HomepageNews != nil {
		newsCount = *site.HomepageNews
	}
	digest.News = digestNews(model.News, newsCount)

	for _, project := range model.Projects {
		if project.Highlight {
			digest.Projects = append(digest.Projects, project)
		}
	}
	for _, talk := range model.Talks {
		if talk.Highlight {
			digest.Talks = append(digest.Talks, talk)
		}
	}
	return digest
}

// digestPublications takes highlighted entries first, then fills with the
// most recent remaining entries up to count. Count 0 means highlighted only.
func digestPublications(years []YearGroup, count int) []Publication {
	var highlighted, rest []Publication
	for _, group := range years {
		for _, pub := range group.Publications {
			if pub.Highlight {
				highlighted = append(highlighted, pub)
			} else {
				rest = append(rest, pub)
			}
		}
	}
	if count <= 0 {
		return highlighted
	}
	if len(highlighted) >= count {
		return highlighted[:count]
	}
	fill := count - len(highlighted)
	if fill > len(rest) {
		fill = len(rest)
	}
	return append(highlighted, rest[:fill]...)
}

// digestNews takes the union of the latest count items and every highlighted
// item, keeping the date-descending model order.
func digestNews(news []News, count int) []News {
	var out []News
	for i, item := range news {
		if i < count || item.Highlight {
			out = append(out, item)
		}
	}
	return out
}
