package linkverify

import (
	"context"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	foliberrors "git.home.luguber.info/inful/folio/internal/foundation/errors"
	"git.home.luguber.info/inful/folio/internal/observability"
	"git.home.luguber.info/inful/folio/internal/paths"
)

// EventPublisher receives broken-link events. Optional; wired to NATS when
// link events are configured.
type EventPublisher interface {
	PublishBrokenLink(event BrokenLinkEvent) error
}

// Verifier walks a rendered output directory and reports internal links that
// do not resolve to a file on disk. It implements the build pipeline's
// Validator interface.
type Verifier struct {
	baseURL   string
	publisher EventPublisher
}

// NewVerifier creates a Verifier for the given production base URL.
func NewVerifier(baseURL string) *Verifier {
	return &Verifier{baseURL: baseURL}
}

// WithPublisher attaches an event publisher for broken-link findings.
func (v *Verifier) WithPublisher(p EventPublisher) *Verifier {
	v.publisher = p
	return v
}

// ValidateOutput checks every HTML file under outputDir. Each broken internal
// reference yields one warning-severity issue; external links are skipped
// (no network I/O during validation).
func (v *Verifier) ValidateOutput(ctx context.Context, outputDir string, mode paths.Mode) []*foliberrors.ClassifiedError {
	var issues []*foliberrors.ClassifiedError

	var htmlFiles []string
	err := filepath.WalkDir(outputDir, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(p, ".html") {
			htmlFiles = append(htmlFiles, p)
		}
		return nil
	})
	if err != nil {
		return []*foliberrors.ClassifiedError{
			foliberrors.WrapError(err, foliberrors.CategoryFileSystem, "cannot scan output directory").
				WithContext("path", outputDir).Build(),
		}
	}
	sort.Strings(htmlFiles)

	for _, htmlPath := range htmlFiles {
		links, err := ExtractLinks(htmlPath, v.baseURL)
		if err != nil {
			if classified, ok := foliberrors.AsClassified(err); ok {
				issues = append(issues, classified)
			}
			continue
		}
		for _, link := range links {
			if !link.IsInternal {
				continue
			}
			target, ok := v.targetPath(outputDir, htmlPath, link.URL)
			if !ok {
				continue
			}
			if targetExists(target) {
				continue
			}

			rel, _ := filepath.Rel(outputDir, htmlPath)
			observability.DebugContext(ctx, "Broken internal link",
				slog.String("url", link.URL),
				slog.String("page", rel))

			issues = append(issues, foliberrors.ResolveError("broken internal link").
				WithContext("ref", link.URL).
				WithContext("source", rel).
				WithContext("tag", link.Tag).Build())

			if v.publisher != nil {
				event := BrokenLinkEvent{
					URL:        link.URL,
					SourcePath: rel,
					Tag:        link.Tag,
					Mode:       string(mode),
					Timestamp:  time.Now().UTC(),
				}
				if err := v.publisher.PublishBrokenLink(event); err != nil {
					observability.WarnContext(ctx, "Failed to publish broken-link event",
						slog.String("error", err.Error()))
				}
			}
		}
	}
	return issues
}

// targetPath maps an internal reference to the output-directory file it
// should correspond to. Returns ok=false for references that cannot be
// checked against the filesystem.
func (v *Verifier) targetPath(outputDir, htmlPath, ref string) (string, bool) {
	parsed, err := url.Parse(ref)
	if err != nil || parsed.Path == "" {
		return "", false
	}
	p := parsed.Path

	if parsed.Host != "" || strings.HasPrefix(p, "/") {
		// Absolute link under the base URL: site-root relative.
		return filepath.Join(outputDir, filepath.FromSlash(strings.TrimPrefix(p, "/"))), true
	}
	// Relative link: resolved against the referencing page's directory.
	return filepath.Join(filepath.Dir(htmlPath), filepath.FromSlash(p)), true
}

func targetExists(target string) bool {
	info, err := os.Stat(target)
	if err != nil {
		return false
	}
	if info.IsDir() {
		_, err := os.Stat(filepath.Join(target, "index.html"))
		return err == nil
	}
	return true
}
