package runner

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// NormalizeNickname folds full-width ASCII and half-width kana (NFKC), drops control
// characters and trims surrounding whitespace.
func NormalizeNickname(s string) string {
	t := transform.Chain(norm.NFKC, runes.Remove(runes.In(unicode.Cc)))
	result, _, err := transform.String(t, s)
	if err != nil {
		result = s
	}
	return strings.TrimSpace(result)
}
