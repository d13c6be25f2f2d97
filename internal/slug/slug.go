// Package slug converts display names into URL-safe slugs.
package slug

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stripMarks decomposes characters, drops combining diacritical marks,
// and recomposes. "Amélie" becomes "Amelie".
//
//nolint:gochecknoglobals // Transformer chain is immutable and safe for concurrent use.
var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize converts a display name into a URL-safe slug containing only
// lowercase ASCII letters, digits, and hyphens. Runs of whitespace collapse
// into a single hyphen, runs of hyphens collapse into one, and leading or
// trailing hyphens are trimmed.
//
// Normalize is total: it never fails, and empty input yields an empty slug.
// Callers must treat an empty result as "no slug available", not as a
// valid mapping target.
func Normalize(text string) string {
	if text == "" {
		return ""
	}

	folded, _, err := transform.String(stripMarks, text)
	if err != nil {
		// Malformed input still has to produce a result; fall back to
		// the raw string and let the character filter below handle it.
		folded = text
	}
	folded = strings.ToLower(folded)

	// Keep [a-z0-9 -]; fold all whitespace into plain spaces.
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-':
			return r
		case unicode.IsSpace(r):
			return ' '
		default:
			return -1
		}
	}, folded)

	// Whitespace runs become single hyphens.
	joined := strings.Join(strings.Fields(cleaned), "-")

	// Collapse hyphen runs.
	var b strings.Builder
	b.Grow(len(joined))
	prevHyphen := false
	for _, r := range joined {
		if r == '-' {
			if prevHyphen {
				continue
			}
			prevHyphen = true
		} else {
			prevHyphen = false
		}
		b.WriteRune(r)
	}

	return strings.Trim(b.String(), "-")
}
