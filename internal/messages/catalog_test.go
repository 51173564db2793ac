package messages

import (
	"testing"
	"testing/fstest"

	"github.com/kozaktomas/marathon-booth/internal/runner"
)

func TestDefault_EmbeddedTables(t *testing.T) {
	c := Default()

	for _, l := range []Locale{LocaleJA, LocaleEN} {
		table, ok := c.Table(l)
		if !ok {
			t.Fatalf("missing table for %s", l)
		}
		if len(table.Intents) != 5 {
			t.Errorf("%s: expected 5 intents, got %d", l, len(table.Intents))
		}
		if len(table.Messages) != len(table.Intents) {
			t.Errorf("%s: %d messages for %d intents", l, len(table.Messages), len(table.Intents))
		}
		if len(table.Brackets) != runner.BracketCount {
			t.Errorf("%s: expected %d bracket labels, got %d", l, runner.BracketCount, len(table.Brackets))
		}
		for i, m := range table.Messages {
			if len(m.Initial) == 0 {
				t.Errorf("%s message %d: empty initial list", l, i+1)
			}
			if len(m.Time) != runner.BracketCount {
				t.Errorf("%s message %d: expected %d time lists, got %d", l, i+1, runner.BracketCount, len(m.Time))
			}
		}
	}

	if got := c.Locales()[0]; got != DefaultLocale {
		t.Errorf("first locale = %s, want %s", got, DefaultLocale)
	}
}

func TestTable_Intent(t *testing.T) {
	table, _ := Default().Table(LocaleJA)

	got, ok := table.Intent(1)
	if !ok || got != "初挑戦！完走するぞ！" {
		t.Errorf("Intent(1) = %q, %v", got, ok)
	}
	if _, ok := table.Intent(0); ok {
		t.Error("Intent(0) should not resolve")
	}
	if _, ok := table.Intent(6); ok {
		t.Error("Intent(6) should not resolve")
	}
}

func TestCatalog_Match(t *testing.T) {
	c := Default()

	tests := []struct {
		accept   string
		expected Locale
	}{
		{"en", LocaleEN},
		{"en-US,en;q=0.9", LocaleEN},
		{"ja-JP", LocaleJA},
		{"fr-FR", LocaleJA},
		{"", LocaleJA},
		{"not a tag!!", LocaleJA},
	}

	for _, tt := range tests {
		t.Run(tt.accept, func(t *testing.T) {
			if got := c.Match(tt.accept); got != tt.expected {
				t.Errorf("Match(%q) = %s, want %s", tt.accept, got, tt.expected)
			}
		})
	}
}

func TestLoad_MissingLocale(t *testing.T) {
	fsys := fstest.MapFS{
		"bad.yaml": &fstest.MapFile{Data: []byte("intents: [a]\n")},
	}
	if _, err := Load(fsys); err == nil {
		t.Error("expected error for table without locale")
	}
}

func TestLoad_Empty(t *testing.T) {
	if _, err := Load(fstest.MapFS{}); err == nil {
		t.Error("expected error for empty table set")
	}
}
