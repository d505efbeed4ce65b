package frontmatter

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Base holds the frontmatter fields folio interprets. Unrecognized keys are
// preserved in Rest for template consumption but carry no pipeline semantics.
type Base struct {
	Title       string
	Date        Date
	Description string
	Image       string
	Slug        string
	Tags        []string
	Highlight   bool
	Rest        map[string]any
}

// Date is a calendar date parsed from a frontmatter or configuration value.
// Accepted forms are ISO `YYYY-MM-DD` and bare `YYYY` (resolved to January 1).
// The zero value means "no date".
type Date struct {
	Time time.Time
	Raw  string
}

// IsZero reports whether the date is absent.
func (d Date) IsZero() bool { return d.Time.IsZero() }

// Year returns the calendar year, or 0 when absent.
func (d Date) Year() int {
	if d.IsZero() {
		return 0
	}
	return d.Time.Year()
}

// String returns the ISO form, or the raw input when it was a bare year.
func (d Date) String() string { return d.Raw }

// ParseDate parses a date value as it appears in frontmatter or config.
// YAML may already have decoded the scalar into a time.Time.
func ParseDate(v any) (Date, error) {
	switch t := v.(type) {
	case nil:
		return Date{}, nil
	case time.Time:
		return Date{Time: t, Raw: t.Format("2006-01-02")}, nil
	case string:
		return parseDateString(t)
	case int:
		return parseDateString(strconv.Itoa(t))
	default:
		return Date{}, fmt.Errorf("unsupported date value %v (%T)", v, v)
	}
}

func parseDateString(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}, nil
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return Date{Time: t, Raw: s}, nil
	}
	if len(s) == 4 {
		if y, err := strconv.Atoi(s); err == nil && y > 0 {
			return Date{Time: time.Date(y, time.January, 1, 0, 0, 0, 0, time.UTC), Raw: s}, nil
		}
	}
	return Date{}, fmt.Errorf("unparseable date %q (want YYYY-MM-DD or YYYY)", s)
}

// ExtractBase maps raw frontmatter fields onto Base. A malformed date is an
// error; everything else degrades to the zero value for its field.
func ExtractBase(fields map[string]any) (Base, error) {
	base := Base{Rest: map[string]any{}}

	for key, value := range fields {
		switch key {
		case "title":
			base.Title = asString(value)
		case "date":
			d, err := ParseDate(value)
			if err != nil {
				return Base{}, err
			}
			base.Date = d
		case "description", "excerpt":
			if base.Description == "" {
				base.Description = asString(value)
			}
		case "image":
			base.Image = asString(value)
		case "slug":
			base.Slug = asString(value)
		case "tags":
			base.Tags = asStringSlice(value)
		case "highlight":
			base.Highlight = asBool(value)
		default:
			base.Rest[key] = value
		}
	}
	return base, nil
}

func asString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", t)
	}
}

func asStringSlice(v any) []string {
	items, ok := v.([]any)
	if !ok {
		if s := asString(v); s != "" {
			return []string{s}
		}
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s := asString(item); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func asBool(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "true", "yes", "1":
			return true
		}
	}
	return false
}
