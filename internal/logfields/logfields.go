package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyBuildID    = "build_id"
	KeyStage      = "stage"
	KeySource     = "source"
	KeySlug       = "slug"
	KeyYear       = "year"
	KeyPage       = "page"
	KeyRef        = "ref"
	KeyMode       = "mode"
	KeyDurationMS = "duration_ms"
	KeyCount      = "count"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func BuildID(id string) slog.Attr      { return slog.String(KeyBuildID, id) }
func Stage(name string) slog.Attr      { return slog.String(KeyStage, name) }
func Source(path string) slog.Attr     { return slog.String(KeySource, path) }
func Slug(s string) slog.Attr          { return slog.String(KeySlug, s) }
func Year(y int) slog.Attr             { return slog.Int(KeyYear, y) }
func Page(p string) slog.Attr          { return slog.String(KeyPage, p) }
func Ref(r string) slog.Attr           { return slog.String(KeyRef, r) }
func Mode(m string) slog.Attr          { return slog.String(KeyMode, m) }
func DurationMS(ms float64) slog.Attr  { return slog.Float64(KeyDurationMS, ms) }
func Count(n int) slog.Attr            { return slog.Int(KeyCount, n) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
