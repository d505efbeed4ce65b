package config

// LinkSet holds the optional link fields shared by content items. Each value
// is a raw reference string: either an external URL or a path under static/.
// Classification happens once, in the aggregator, via the path resolver.
type LinkSet struct {
	Paper         string `yaml:"paper,omitempty"`
	Code          string `yaml:"code,omitempty"`
	Slides        string `yaml:"slides,omitempty"`
	Video         string `yaml:"video,omitempty"`
	Demo          string `yaml:"demo,omitempty"`
	Website       string `yaml:"website,omitempty"`
	Documentation string `yaml:"documentation,omitempty"`
	Materials     string `yaml:"materials,omitempty"`
}

// NewsItem is a dated announcement shown on the news timeline.
type NewsItem struct {
	Date      string `yaml:"date"`
	Content   string `yaml:"content"`
	Highlight bool   `yaml:"highlight,omitempty"`
	LinkSet   `yaml:",inline"`
}

// ProjectItem is a project card.
type ProjectItem struct {
	Title         string   `yaml:"title"`
	Description   string   `yaml:"description,omitempty"`
	Image         string   `yaml:"image,omitempty"`
	Category      string   `yaml:"category,omitempty"`
	Collaborators []string `yaml:"collaborators,omitempty"`
	Highlight     bool     `yaml:"highlight,omitempty"`
	GitHub        string   `yaml:"github,omitempty"`
	LinkSet       `yaml:",inline"`
}

// TalkItem is a talk or presentation.
type TalkItem struct {
	Title       string `yaml:"title"`
	Date        string `yaml:"date,omitempty"`
	Venue       string `yaml:"venue,omitempty"`
	Type        string `yaml:"type,omitempty"` // Keynote, Tutorial, Panel, ...
	Description string `yaml:"description,omitempty"`
	Highlight   bool   `yaml:"highlight,omitempty"`
	LinkSet     `yaml:",inline"`
}

// ServiceItem is an academic service entry (program committee, reviewing,
// organizational roles).
type ServiceItem struct {
	Description string `yaml:"description"`
	Date        string `yaml:"date,omitempty"` // Year or range, e.g. "2024" or "2021-2023"
	URL         string `yaml:"url,omitempty"`
	Category    string `yaml:"category,omitempty"` // "leadership" or a review venue kind
	Venue       string `yaml:"venue,omitempty"`
}
