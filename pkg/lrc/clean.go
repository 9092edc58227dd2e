package lrc

import (
	"regexp"
	"strings"
)

// enhancedTag matches inline word timing from the enhanced (A2) extension.
var enhancedTag = regexp.MustCompile(`<\d{2}:\d{2}\.\d{2,3}>`)

// Clean returns the display text of a line: everything up to and including
// the first ']' is dropped, inline <mm:ss.xx> tags are removed, and the
// result is trimmed. A line without ']' is kept whole.
func Clean(line string) string {
	content := line
	if i := strings.IndexByte(line, ']'); i >= 0 {
		content = line[i+1:]
	}
	content = enhancedTag.ReplaceAllString(content, "")
	return strings.TrimSpace(content)
}

// HasEnhancedTags reports whether the line carries inline word timing.
func HasEnhancedTags(line string) bool {
	return enhancedTag.MatchString(line)
}
