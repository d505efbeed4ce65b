package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/folio/internal/markdown"
)

// Config represents the site configuration loaded from config.yaml.
type Config struct {
	Author       AuthorConfig      `yaml:"author"`
	Site         SiteConfig        `yaml:"site"`
	Publications PublicationConfig `yaml:"publications"`

	// Declarative content collections.
	News     []NewsItem    `yaml:"news,omitempty"`
	Projects []ProjectItem `yaml:"projects,omitempty"`
	Talks    []TalkItem    `yaml:"talks,omitempty"`

	Build      BuildConfig      `yaml:"build"`
	LinkEvents *LinkEventConfig `yaml:"link_events,omitempty"`
}

// AuthorConfig holds the author profile rendered into the hero section.
type AuthorConfig struct {
	Name        string   `yaml:"name"`
	Title       string   `yaml:"title,omitempty"`
	Affiliation string   `yaml:"affiliation,omitempty"`
	Email       string   `yaml:"email,omitempty"`
	Tagline     string   `yaml:"tagline,omitempty"`
	Interests   []string `yaml:"interests,omitempty"`

	// Social links; external URLs.
	GitHub   string `yaml:"github,omitempty"`
	Scholar  string `yaml:"scholar,omitempty"`
	LinkedIn string `yaml:"linkedin,omitempty"`
	Twitter  string `yaml:"twitter,omitempty"`

	// Photo and CV may be local files under static/ or external URLs.
	Photo string `yaml:"photo,omitempty"`
	CV    string `yaml:"cv,omitempty"`

	Buttons []HomepageButton `yaml:"buttons,omitempty"`
	Service []ServiceItem    `yaml:"service,omitempty"`
}

// HomepageButton is an action button in the hero section.
type HomepageButton struct {
	Text  string `yaml:"text"`
	URL   string `yaml:"url"`
	Style string `yaml:"style,omitempty"` // "primary" (default) or "secondary"
}

// SiteConfig holds site-wide settings.
type SiteConfig struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description,omitempty"`
	BaseURL     string `yaml:"base_url"`

	// MarkdownExtensions is the extension allowlist for body rendering.
	// Nil means the renderer default set.
	MarkdownExtensions map[string]bool `yaml:"markdown_extensions,omitempty"`

	// BlogDir is the blog subdirectory inside the content dir. Empty string
	// after load means the blog is disabled ("blog" is the default).
	BlogDir *string `yaml:"blog_dir,omitempty"`

	// HomepagePublications is the number of publications on the homepage.
	// nil = show all highlighted. Default 3.
	HomepagePublications *int `yaml:"homepage_publications,omitempty"`

	// HomepageNews is the number of latest news items on the homepage.
	// nil = show all. Default 3.
	HomepageNews *int `yaml:"homepage_news,omitempty"`
}

// PublicationConfig holds BibTeX settings.
type PublicationConfig struct {
	BibPath string `yaml:"bib_path,omitempty"`
	// HighlightAuthors lists name variants of the site owner; matching
	// authors are emphasized in rendered publication lists.
	HighlightAuthors []string `yaml:"highlight_authors,omitempty"`
}

// BuildConfig holds build settings.
type BuildConfig struct {
	Output    string `yaml:"output,omitempty"`     // Output directory, default "_site"
	StaticDir string `yaml:"static_dir,omitempty"` // Static assets directory, default "static"
	Mode      string `yaml:"mode,omitempty"`       // "dev" or "prod", default prod
	HistoryDB string `yaml:"history_db,omitempty"` // Optional SQLite build-history database
}

// LinkEventConfig enables publishing broken-link events to NATS during
// validation. Disabled unless configured.
type LinkEventConfig struct {
	Enabled bool   `yaml:"enabled"`
	NATSURL string `yaml:"nats_url,omitempty"`
	Subject string `yaml:"subject,omitempty"`
}

// Load loads configuration from the specified file.
func Load(configPath string) (*Config, error) {
	// Load .env if present so ${VAR} expansion below can use it.
	_ = godotenv.Load()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("configuration file not found: %s", configPath)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)
	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Site.Title == "" {
		cfg.Site.Title = cfg.Author.Name
	}
	if cfg.Site.BlogDir == nil {
		d := "blog"
		cfg.Site.BlogDir = &d
	}
	if cfg.Site.HomepagePublications == nil {
		n := 3
		cfg.Site.HomepagePublications = &n
	}
	if cfg.Site.HomepageNews == nil {
		n := 3
		cfg.Site.HomepageNews = &n
	}
	if cfg.Publications.BibPath == "" {
		cfg.Publications.BibPath = "publications.bib"
	}
	if cfg.Build.Output == "" {
		cfg.Build.Output = "_site"
	}
	if cfg.Build.StaticDir == "" {
		cfg.Build.StaticDir = "static"
	}
	if cfg.LinkEvents != nil && cfg.LinkEvents.Subject == "" {
		cfg.LinkEvents.Subject = "folio.links.broken"
	}
}

func validate(cfg *Config) error {
	if cfg.Author.Name == "" {
		return fmt.Errorf("author.name is required")
	}
	if len(cfg.Site.MarkdownExtensions) > 0 {
		// Fail fast on extension typos rather than at render time.
		if _, err := markdown.NewRenderer(markdown.Options{Extensions: cfg.Site.MarkdownExtensions}); err != nil {
			return fmt.Errorf("site.markdown_extensions: %w", err)
		}
	}
	return nil
}

// BlogEnabled reports whether a blog directory is configured.
func (c *Config) BlogEnabled() bool {
	return c.Site.BlogDir != nil && *c.Site.BlogDir != ""
}
