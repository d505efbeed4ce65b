package normalization

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// foldTransformer decomposes accented characters and strips the combining
// marks, so "Müller" folds to "Muller" and "José" to "Jose".
var foldTransformer = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Fold removes diacritics from a string. Author names in BibTeX frequently
// carry accents; folding makes highlight matching and slug generation stable.
func Fold(s string) string {
	out, _, err := transform.String(foldTransformer, s)
	if err != nil {
		return s
	}
	return out
}

// Slugify converts an arbitrary title into a URL-safe slug: diacritics folded,
// lowercased, runs of non-alphanumerics collapsed to single hyphens.
func Slugify(s string) string {
	folded := strings.ToLower(Fold(s))

	var b strings.Builder
	b.Grow(len(folded))
	lastHyphen := true // Suppress leading hyphen.
	for _, r := range folded {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	return strings.TrimRight(b.String(), "-")
}
