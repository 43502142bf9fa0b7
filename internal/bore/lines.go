package bore

import (
	"strings"
)

// CommentChar starts a comment that runs to the end of the line.
const CommentChar = '#'

// CleanLine strips a trailing comment and surrounding whitespace.
func CleanLine(line string) string {
	if i := strings.IndexByte(line, CommentChar); i >= 0 {
		line = line[:i]
	}
	return strings.TrimSpace(line)
}

// SplitFields splits a line on top-level commas. Commas nested inside
// parentheses do not split, so function calls in expressions stay intact.
// When n > 0 at most n fields are returned and the last one holds the
// untouched remainder of the line. Every field is trimmed.
func SplitFields(line string, n int) []string {
	var fields []string
	depth, start := 0, 0
	for i := 0; i < len(line); i++ {
		switch line[i] {
		case '(':
			depth++
		case ')':
			if depth > 0 {
				depth--
			}
		case ',':
			if depth > 0 {
				continue
			}
			if n > 0 && len(fields) == n-1 {
				continue
			}
			fields = append(fields, strings.TrimSpace(line[start:i]))
			start = i + 1
		}
	}
	return append(fields, strings.TrimSpace(line[start:]))
}
