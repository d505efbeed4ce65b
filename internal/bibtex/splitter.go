package bibtex

import (
	"regexp"
	"strings"
)

// entryChunk is one raw "@type{key, ...}" block cut out of a BibTeX source.
type entryChunk struct {
	key  string
	text string
}

var citeKeyPattern = regexp.MustCompile(`@\s*[a-zA-Z]+\s*\{\s*([^,\s}]+)`)

// splitEntries cuts BibTeX source into independent entry blocks by balanced
// brace counting. Used only on the fallback path after a whole-file parse
// fails, so that one malformed entry does not take down its neighbors.
func splitEntries(src string) []entryChunk {
	var chunks []entryChunk
	for i := 0; i < len(src); {
		at := strings.IndexByte(src[i:], '@')
		if at < 0 {
			break
		}
		start := i + at
		open := strings.IndexByte(src[start:], '{')
		if open < 0 {
			break
		}
		depth := 0
		end := -1
		for j := start + open; j < len(src); j++ {
			switch src[j] {
			case '{':
				depth++
			case '}':
				depth--
				if depth == 0 {
					end = j + 1
				}
			}
			if end >= 0 {
				break
			}
		}
		if end < 0 {
			// Unbalanced tail: emit it as-is so the failure gets reported
			// against its cite key.
			end = len(src)
		}
		text := src[start:end]
		chunks = append(chunks, entryChunk{key: citeKey(text), text: text})
		i = end
	}
	return chunks
}

func citeKey(entry string) string {
	if m := citeKeyPattern.FindStringSubmatch(entry); m != nil {
		return m[1]
	}
	return "unknown"
}
