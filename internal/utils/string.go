package utils

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	illegalFilenameChars = regexp.MustCompile(`[<>:"/\\|?*\x00-\x1f]`)
	whitespaceRuns       = regexp.MustCompile(`\s+`)
)

// SanitizeFilename replaces characters that are illegal in filenames on
// common filesystems with underscores, collapses whitespace runs to single
// underscores and truncates the result to at most maxLength bytes. The cut
// lands on a rune boundary so the output is always valid UTF-8.
func SanitizeFilename(text string, maxLength int) string {
	sanitized := illegalFilenameChars.ReplaceAllString(text, "_")
	sanitized = whitespaceRuns.ReplaceAllString(strings.TrimSpace(sanitized), "_")
	if len(sanitized) > maxLength {
		cut := maxLength
		for cut > 0 && !utf8.RuneStart(sanitized[cut]) {
			cut--
		}
		sanitized = sanitized[:cut]
	}
	return sanitized
}

// NormalizeSubject removes prefixes like Re:, Fwd:, etc. from a subject
func NormalizeSubject(subject string) string {
	subject = strings.TrimSpace(subject)
	prefixRegex := regexp.MustCompile(`(?i)^(Re|Fwd|Fw)(\[\d+\])?:\s*`)
	for prefixRegex.MatchString(subject) {
		subject = prefixRegex.ReplaceAllString(subject, "")
		subject = strings.TrimSpace(subject)
	}
	return subject
}
