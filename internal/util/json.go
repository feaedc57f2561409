package util

import (
	"regexp"
	"strings"
)

var codeFenceRE = regexp.MustCompile("```(?:json)?\\s*([\\s\\S]*?)```")

// ExtractJSON pulls the JSON payload out of a raw model completion. Models
// frequently wrap the payload in markdown code fences or surround it with
// prose; this strips both. Truncated arrays (cut off mid-generation) get a
// best-effort closing bracket so the decoder has a chance.
func ExtractJSON(s string) string {
	if m := codeFenceRE.FindStringSubmatch(s); len(m) > 1 {
		s = m[1]
	}
	s = strings.TrimSpace(s)

	if start := strings.IndexAny(s, "[{"); start != -1 {
		open := s[start]
		var close byte = ']'
		if open == '{' {
			close = '}'
		}
		if end := matchBracket(s, start, open, close); end != -1 {
			return s[start : end+1]
		}
		// Unterminated array with at least one string element: close it.
		if open == '[' && strings.LastIndex(s, `"`) > start {
			return strings.TrimRight(s[start:], " \n\t,") + "]"
		}
	}
	return s
}

// matchBracket returns the index of the bracket closing the one at start,
// skipping bracket characters inside string literals. Returns -1 when the
// input ends before the bracket is balanced.
func matchBracket(s string, start int, open, close byte) int {
	depth := 0
	inString := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch c {
			case '\\':
				i++ // skip escaped char
			case '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case open:
			depth++
		case close:
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// SanitizeJSON escapes literal newlines inside string values, a common
// defect in model-produced JSON.
func SanitizeJSON(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	inString := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if inString && (c == '\n' || c == '\r') {
			b.WriteString(`\n`)
			if c == '\r' && i+1 < len(s) && s[i+1] == '\n' {
				i++
			}
			continue
		}
		b.WriteByte(c)
		switch c {
		case '\\':
			if inString && i+1 < len(s) {
				b.WriteByte(s[i+1])
				i++
			}
		case '"':
			inString = !inString
		}
	}
	return b.String()
}

// TruncateString shortens s to at most maxLen runes, appending an ellipsis
// marker when truncation happened.
func TruncateString(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen]) + "..."
}
