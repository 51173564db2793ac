package runner

import (
	"fmt"
	"math/rand/v2"
)

const (
	// IDDigits is the fixed length of a runner ID.
	IDDigits = 5

	// idSpace is the number of distinct runner IDs (00000-99999).
	idSpace = 100000

	// MaxIDAttempts bounds how many fresh IDs a store writer draws when an insert
	// hits an already-used ID.
	MaxIDAttempts = 5
)

// IntSource draws a uniform integer in [0, n). *rand.Rand satisfies it.
type IntSource interface {
	IntN(n int) int
}

type globalSource struct{}

func (globalSource) IntN(n int) int { return rand.IntN(n) }

// DefaultSource draws from the process-wide math/rand/v2 generator.
var DefaultSource IntSource = globalSource{}

// GenerateID draws a runner ID from the default source.
func GenerateID() string {
	return GenerateIDFrom(DefaultSource)
}

// GenerateIDFrom draws a uniform integer in [0, 100000) and zero-pads it to 5 digits.
func GenerateIDFrom(src IntSource) string {
	return FormatID(src.IntN(idSpace))
}

// FormatID zero-pads n to IDDigits. Values outside the ID space are wrapped into it.
func FormatID(n int) string {
	n %= idSpace
	if n < 0 {
		n += idSpace
	}
	return fmt.Sprintf("%0*d", IDDigits, n)
}

// ValidID reports whether s has the shape of a runner ID (exactly 5 ASCII digits).
func ValidID(s string) bool {
	if len(s) != IDDigits {
		return false
	}
	for i := range len(s) {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
