package runner

import (
	"math/rand/v2"
	"testing"
)

type fixedSource int

func (f fixedSource) IntN(int) int { return int(f) }

func TestGenerateIDFrom(t *testing.T) {
	tests := []struct {
		draw     int
		expected string
	}{
		{0, "00000"},
		{7, "00007"},
		{4213, "04213"},
		{99999, "99999"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := GenerateIDFrom(fixedSource(tt.draw)); got != tt.expected {
				t.Errorf("GenerateIDFrom(%d) = %q, want %q", tt.draw, got, tt.expected)
			}
		})
	}
}

func TestGenerateID_AlwaysValid(t *testing.T) {
	src := rand.New(rand.NewPCG(1, 2))
	for range 1000 {
		id := GenerateIDFrom(src)
		if !ValidID(id) {
			t.Fatalf("generated invalid ID %q", id)
		}
	}
}

func TestFormatID_Wraps(t *testing.T) {
	if got := FormatID(100001); got != "00001" {
		t.Errorf("FormatID(100001) = %q, want 00001", got)
	}
	if got := FormatID(-1); got != "99999" {
		t.Errorf("FormatID(-1) = %q, want 99999", got)
	}
}

func TestValidID(t *testing.T) {
	tests := []struct {
		input    string
		expected bool
	}{
		{"00000", true},
		{"12345", true},
		{"1234", false},
		{"123456", false},
		{"12a45", false},
		{"", false},
		{"１２３４５", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ValidID(tt.input); got != tt.expected {
				t.Errorf("ValidID(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}
