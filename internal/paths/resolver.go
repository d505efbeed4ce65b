// Package paths classifies content-reference strings and produces
// environment-appropriate URLs.
//
// Users write link fields as plain strings: "talks/slides.pdf" or
// "https://arxiv.org/abs/2401.0001". Resolution decides which of the two a
// string is and, for local assets, constructs the final URL for the active
// build mode. Resolution is a pure function of its inputs apart from an
// existence check on the local candidate; a missing file is recorded, never
// fatal here.
package paths

import (
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"git.home.luguber.info/inful/folio/internal/foundation/normalization"
)

// Mode selects URL construction behavior.
type Mode string

const (
	// ModeDev produces relative URLs so the site works from the filesystem
	// and under the development server without a configured domain.
	ModeDev Mode = "dev"
	// ModeProd produces absolute URLs under the configured base URL.
	ModeProd Mode = "prod"
)

var modeNormalizer = normalization.NewNormalizer(map[string]Mode{
	"dev":         ModeDev,
	"development": ModeDev,
	"prod":        ModeProd,
	"production":  ModeProd,
}, ModeProd)

// ParseMode normalizes a user-supplied mode string, defaulting to prod.
func ParseMode(raw string) Mode {
	if strings.TrimSpace(raw) == "" {
		return ModeProd
	}
	return modeNormalizer.Normalize(raw)
}

// LinkKind classifies a resolved reference.
type LinkKind string

const (
	KindAbsent   LinkKind = "absent"
	KindExternal LinkKind = "external"
	KindLocal    LinkKind = "local"
)

// ResolvedLink is the output of resolution. For KindLocal, Exists records
// whether the asset was found under the static root at resolution time.
type ResolvedLink struct {
	Kind     LinkKind
	FinalURL string
	Exists   bool
}

// IsAbsent reports whether the reference was empty (renderer omits the element).
func (l ResolvedLink) IsAbsent() bool { return l.Kind == KindAbsent }

// IsExternal reports whether the reference passed through as an external URL.
func (l ResolvedLink) IsExternal() bool { return l.Kind == KindExternal }

// Context carries the immutable per-build resolution parameters plus the
// per-call-site asset subdirectory and page depth.
type Context struct {
	Mode       Mode
	BaseURL    string // Production base URL, e.g. "https://example.com"
	StaticRoot string // Filesystem directory holding static assets
	AssetDir   string // Subdirectory for this call site: "photos", "talks", "papers", ...
	Depth      int    // Directory depth of the page being rendered (0 = site root)
}

// WithAssetDir returns a copy of the context targeting a different subdirectory.
func (c Context) WithAssetDir(dir string) Context {
	c.AssetDir = dir
	return c
}

// WithDepth returns a copy of the context at a different page depth.
func (c Context) WithDepth(depth int) Context {
	c.Depth = depth
	return c
}

// schemePattern matches any URI scheme prefix (http:, https:, mailto:, tel:,
// data:, ...). Classification is purely syntactic.
var schemePattern = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9+.-]*:`)

// IsExternal reports whether a raw reference string is an external URL.
func IsExternal(ref string) bool {
	return schemePattern.MatchString(ref) || strings.HasPrefix(ref, "//")
}

// Resolve classifies ref and produces its final URL for the given context.
//
// External references pass through unchanged. Empty references resolve to an
// absent link. Anything else is treated as a local asset relative to
// static/<AssetDir>/; malformed-but-nonempty input degrades to a local
// reference that simply does not exist.
func Resolve(ref string, rc Context) ResolvedLink {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return ResolvedLink{Kind: KindAbsent}
	}
	if IsExternal(ref) {
		return ResolvedLink{Kind: KindExternal, FinalURL: ref}
	}

	rel := localRelPath(ref, rc.AssetDir)
	sitePath := path.Join("static", rel)

	exists := false
	if rc.StaticRoot != "" {
		fsPath := filepath.Join(rc.StaticRoot, filepath.FromSlash(rel))
		if info, err := os.Stat(fsPath); err == nil && !info.IsDir() {
			exists = true
		}
	}

	return ResolvedLink{
		Kind:     KindLocal,
		FinalURL: BuildURL(rc, sitePath),
		Exists:   exists,
	}
}

// BuildURL joins a site-root-relative path to the context's URL base: a
// relative prefix in dev mode, the configured base URL in prod mode.
func BuildURL(rc Context, sitePath string) string {
	sitePath = strings.TrimLeft(path.Clean("/"+sitePath), "/")
	if rc.Mode == ModeDev {
		return devPrefix(rc.Depth) + sitePath
	}
	base := strings.TrimRight(rc.BaseURL, "/")
	return base + "/" + sitePath
}

func devPrefix(depth int) string {
	if depth <= 0 {
		return "./"
	}
	return strings.Repeat("../", depth)
}

// localRelPath normalizes a local reference into a path relative to the
// static root. A leading "static/" written by the user is redundant and
// stripped; absolute-looking refs are made relative.
func localRelPath(ref string, assetDir string) string {
	ref = strings.TrimLeft(ref, "/")
	ref = strings.TrimPrefix(ref, "static/")
	if assetDir == "" || strings.HasPrefix(ref, assetDir+"/") {
		return ref
	}
	return path.Join(assetDir, ref)
}
