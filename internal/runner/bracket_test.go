package runner

import (
	"errors"
	"testing"
)

func TestClassifySeconds(t *testing.T) {
	tests := []struct {
		name     string
		seconds  int
		expected Bracket
	}{
		{"zero", 0, BracketFast},
		{"fast boundary", 12600, BracketFast},
		{"just over fast", 12601, BracketMiddle},
		{"middle boundary", 18000, BracketMiddle},
		{"just over middle", 18001, BracketSlow},
		{"very slow", 23*3600 + 59*60 + 59, BracketSlow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifySeconds(tt.seconds); got != tt.expected {
				t.Errorf("ClassifySeconds(%d) = %d, want %d", tt.seconds, got, tt.expected)
			}
		})
	}
}

func TestParseTargetTime(t *testing.T) {
	tests := []struct {
		input    string
		expected int
	}{
		{"033000", 12600},
		{"03:30:00", 12600},
		{"050000", 18000},
		{"000001", 1},
		{" 04:15:30 ", 4*3600 + 15*60 + 30},
		{"235959", 86399},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseTargetTime(tt.input)
			if err != nil {
				t.Fatalf("ParseTargetTime(%q) returned error: %v", tt.input, err)
			}
			if got != tt.expected {
				t.Errorf("ParseTargetTime(%q) = %d, want %d", tt.input, got, tt.expected)
			}
		})
	}
}

func TestParseTargetTime_Invalid(t *testing.T) {
	inputs := []string{"", "3:30", "33000", "0330000", "03:3000", "ab1234", "240000", "036000", "030060", "3:30:00",
		"1:2:3456", "::123456", "123456::", "12:3:456", "12:34:5:6"}

	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			_, err := ParseTargetTime(input)
			if !errors.Is(err, ErrInvalidTargetTime) {
				t.Errorf("ParseTargetTime(%q) error = %v, want ErrInvalidTargetTime", input, err)
			}
		})
	}
}

func TestFormatTargetTime(t *testing.T) {
	if got := FormatTargetTime(12600); got != "03:30:00" {
		t.Errorf("FormatTargetTime(12600) = %q, want 03:30:00", got)
	}
	if got := FormatTargetTime(45296); got != "12:34:56" {
		t.Errorf("FormatTargetTime(45296) = %q, want 12:34:56", got)
	}
}

func TestBracket_Index(t *testing.T) {
	if BracketFast.Index() != 0 || BracketSlow.Index() != 2 {
		t.Error("bracket index should be 0-based")
	}
	if Bracket(0).Valid() || Bracket(4).Valid() {
		t.Error("brackets outside 1-3 should be invalid")
	}
}
