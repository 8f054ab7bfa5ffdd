package pix

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// toASCII removes diacritics (São Paulo -> Sao Paulo), drops anything that is
// not printable ASCII and collapses runs of whitespace.
func toASCII(s string) string {
	// transform.Chain is stateful, build it per call.
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}

	var b strings.Builder
	for _, r := range folded {
		if unicode.IsSpace(r) {
			b.WriteByte(' ')
			continue
		}
		if r > 0x20 && r < 0x7f {
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// sanitizeReference keeps only ASCII letters and digits, the only characters
// allowed in a transaction id.
func sanitizeReference(s string) string {
	var b strings.Builder
	for _, r := range toASCII(s) {
		if (r >= '0' && r <= '9') || (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// truncate cuts s to at most maxLen bytes. s must be ASCII.
func truncate(s string, maxLen int) string {
	if len(s) > maxLen {
		return s[:maxLen]
	}
	return s
}
