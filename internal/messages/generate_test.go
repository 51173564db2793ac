package messages

import (
	"slices"
	"testing"

	"github.com/kozaktomas/marathon-booth/internal/runner"
)

type fixedSource int

func (f fixedSource) IntN(n int) int { return int(f) % n }

func TestGenerate_AllSelections(t *testing.T) {
	c := Default()

	for _, l := range c.Locales() {
		table, _ := c.Table(l)
		for msg := 1; msg <= 5; msg++ {
			for bracket := 1; bracket <= runner.BracketCount; bracket++ {
				p := c.Generate(l, msg, bracket, nil)
				if !slices.Contains(table.Messages[msg-1].Initial, p.Upper) {
					t.Errorf("%s %d/%d: upper %q not from initial list", l, msg, bracket, p.Upper)
				}
				if !slices.Contains(table.Messages[msg-1].Time[bracket-1], p.Lower) {
					t.Errorf("%s %d/%d: lower %q not from bracket list", l, msg, bracket, p.Lower)
				}
			}
		}
	}
}

func TestGenerate_SlowBracketFromTargetTime(t *testing.T) {
	c := Default()

	seconds, err := runner.ParseTargetTime("123000")
	if err != nil {
		t.Fatalf("ParseTargetTime: %v", err)
	}
	bracket := runner.ClassifySeconds(seconds)
	if bracket != runner.BracketSlow {
		t.Fatalf("bracket = %d, want 3", bracket)
	}

	table, _ := c.Table(LocaleEN)
	p := c.Generate(LocaleEN, 2, int(bracket), fixedSource(0))
	if p.Lower != table.Messages[1].Time[2][0] {
		t.Errorf("lower = %q, want %q", p.Lower, table.Messages[1].Time[2][0])
	}
	if p.Upper != table.Messages[1].Initial[0] {
		t.Errorf("upper = %q, want %q", p.Upper, table.Messages[1].Initial[0])
	}
}

func TestGenerate_SoftFail(t *testing.T) {
	sparse := NewCatalog(&Table{
		Locale: LocaleEN,
		Messages: []MessageObject{
			{Initial: []string{"hello"}, Time: [][]string{{"fast"}, {}}},
		},
	})

	tests := []struct {
		name          string
		locale        Locale
		message       int
		bracket       int
		expectedUpper string
		expectedLower string
	}{
		{"missing message", LocaleEN, 4, 1, "", ""},
		{"zero message", LocaleEN, 0, 1, "", ""},
		{"unknown locale", LocaleJA, 1, 1, "", ""},
		{"empty bracket list", LocaleEN, 1, 2, "hello", ""},
		{"missing bracket list", LocaleEN, 1, 3, "hello", ""},
		{"present", LocaleEN, 1, 1, "hello", "fast"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := sparse.Generate(tt.locale, tt.message, tt.bracket, fixedSource(0))
			if p.Upper != tt.expectedUpper || p.Lower != tt.expectedLower {
				t.Errorf("Generate() = %+v, want {%q %q}", p, tt.expectedUpper, tt.expectedLower)
			}
		})
	}
}
