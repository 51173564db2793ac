package runner

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Bracket is a 1-based target finish time bracket.
type Bracket int

// Bracket values, ordered fastest first.
const (
	BracketFast   Bracket = 1 // up to 3:30:00
	BracketMiddle Bracket = 2 // up to 5:00:00
	BracketSlow   Bracket = 3 // over 5:00:00
)

// BracketCount is the number of target time brackets.
const BracketCount = 3

// Bracket thresholds in seconds. A boundary value belongs to the lower bracket.
const (
	FastBracketMaxSeconds   = 12600
	MiddleBracketMaxSeconds = 18000
)

// ErrInvalidTargetTime is returned for a target time that cannot be parsed or is out of range.
var ErrInvalidTargetTime = errors.New("invalid target time")

// Valid reports whether b is inside the bracket table.
func (b Bracket) Valid() bool {
	return b >= 1 && b <= BracketCount
}

// Index returns the 0-based index of b, for addressing per-bracket tables.
func (b Bracket) Index() int {
	return int(b) - 1
}

// ClassifySeconds buckets a total finish time into a bracket.
func ClassifySeconds(total int) Bracket {
	switch {
	case total <= FastBracketMaxSeconds:
		return BracketFast
	case total <= MiddleBracketMaxSeconds:
		return BracketMiddle
	default:
		return BracketSlow
	}
}

// ParseTargetTime parses a finish time given as six digits (HHMMSS) or as HH:MM:SS
// and returns the total number of seconds. Hours must be 0-23, minutes and seconds 0-59.
func ParseTargetTime(s string) (int, error) {
	s = strings.TrimSpace(s)
	digits := strings.ReplaceAll(s, ":", "")
	if strings.Contains(s, ":") && (len(s) != 8 || s[2] != ':' || s[5] != ':' || strings.Count(s, ":") != 2) {
		return 0, fmt.Errorf("%w: %q is not HH:MM:SS", ErrInvalidTargetTime, s)
	}
	if len(digits) != 6 {
		return 0, fmt.Errorf("%w: %q must have 6 digits", ErrInvalidTargetTime, s)
	}
	for i := range len(digits) {
		if digits[i] < '0' || digits[i] > '9' {
			return 0, fmt.Errorf("%w: %q must be numeric", ErrInvalidTargetTime, s)
		}
	}

	hours, _ := strconv.Atoi(digits[0:2])
	minutes, _ := strconv.Atoi(digits[2:4])
	seconds, _ := strconv.Atoi(digits[4:6])
	if hours > 23 {
		return 0, fmt.Errorf("%w: hours %d out of range 0-23", ErrInvalidTargetTime, hours)
	}
	if minutes > 59 {
		return 0, fmt.Errorf("%w: minutes %d out of range 0-59", ErrInvalidTargetTime, minutes)
	}
	if seconds > 59 {
		return 0, fmt.Errorf("%w: seconds %d out of range 0-59", ErrInvalidTargetTime, seconds)
	}
	return hours*3600 + minutes*60 + seconds, nil
}

// FormatTargetTime renders total seconds as HH:MM:SS.
func FormatTargetTime(total int) string {
	return fmt.Sprintf("%02d:%02d:%02d", total/3600, (total%3600)/60, total%60)
}
