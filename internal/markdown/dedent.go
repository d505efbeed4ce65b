package markdown

import "strings"

// Dedent strips the longest common leading whitespace from every non-blank
// line. Markdown embedded in YAML configuration (bios, project descriptions)
// arrives indented to the YAML block level; without dedenting, Markdown would
// treat it as a code block.
func Dedent(s string) string {
	lines := strings.Split(s, "\n")

	margin := -1
	for _, line := range lines {
		trimmed := strings.TrimLeft(line, " \t")
		if trimmed == "" {
			continue
		}
		indent := len(line) - len(trimmed)
		if margin < 0 || indent < margin {
			margin = indent
		}
	}
	if margin <= 0 {
		return strings.TrimSpace(s) + "\n"
	}

	for i, line := range lines {
		if len(line) >= margin {
			lines[i] = line[margin:]
		} else {
			lines[i] = strings.TrimLeft(line, " \t")
		}
	}
	return strings.TrimSpace(strings.Join(lines, "\n")) + "\n"
}
