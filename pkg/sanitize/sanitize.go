package sanitize

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// whitespace mirrors the ECMAScript \s class so documents produced by
// browsers and office suites collapse the same way they did upstream.
const whitespace = `\t\n\x{0B}\f\r \x{00A0}\x{1680}\x{2000}-\x{200A}\x{2028}\x{2029}\x{202F}\x{205F}\x{3000}\x{FEFF}`

var (
	lineBreaks   = regexp.MustCompile(`[\r\n\t]+`)
	controlChars = regexp.MustCompile(`[\x00-\x1F\x7F]`)
	spaceRuns    = regexp.MustCompile(`[` + whitespace + `]{2,}`)
)

// Text normalizes extracted document text into a single line without
// control characters. The steps run in a fixed order; reordering them
// changes the output for inputs such as "a\t\x01b".
func Text(raw string) string {
	if raw == "" {
		return ""
	}
	s := lineBreaks.ReplaceAllString(raw, " ")
	s = controlChars.ReplaceAllString(s, "")
	s = spaceRuns.ReplaceAllString(s, " ")
	return strings.TrimFunc(s, isSpace)
}

// Truncate returns at most n characters of s.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}

func isSpace(r rune) bool {
	switch r {
	case '\t', '\n', '\v', '\f', '\r', ' ',
		'\u00a0', '\u1680', '\u2028', '\u2029', '\u202f', '\u205f', '\u3000', '\ufeff':
		return true
	}
	return r >= '\u2000' && r <= '\u200a'
}
