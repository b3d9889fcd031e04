// Package textutil cleans server-supplied text before it reaches a terminal.
package textutil

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/charmbracelet/x/ansi"
	"golang.org/x/text/unicode/norm"
)

// Sanitize makes s safe to print: invalid UTF-8 becomes U+FFFD, escape
// sequences are removed, and control characters other than newline and tab
// are dropped. The result is NFC-normalized so cell widths come out right for
// decomposed accents. Carriage returns are dropped, so CRLF becomes LF.
func Sanitize(s string) string {
	if s == "" {
		return s
	}
	s = ansi.Strip(SanitizeUTF8(s))

	var sb strings.Builder
	sb.Grow(len(s))
	for _, r := range s {
		if r == '\n' || r == '\t' || !unicode.IsControl(r) {
			sb.WriteRune(r)
		}
	}
	return norm.NFC.String(sb.String())
}

// SanitizeUTF8 replaces invalid UTF-8 bytes with the replacement character.
func SanitizeUTF8(s string) string {
	if utf8.ValidString(s) {
		return s
	}
	var sb strings.Builder
	sb.Grow(len(s))
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		if r == utf8.RuneError && size == 1 {
			sb.WriteRune(utf8.RuneError)
			i++
			continue
		}
		sb.WriteRune(r)
		i += size
	}
	return sb.String()
}

// FirstLine returns the first non-empty line of s, trimmed.
func FirstLine(s string) string {
	s = strings.TrimLeft(s, "\r\n")
	if i := strings.IndexAny(s, "\r\n"); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}
