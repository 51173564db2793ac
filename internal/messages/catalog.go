// Package messages holds the per-locale canned message tables and the phrase
// generator used when a runner registers.
package messages

import (
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"sync"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

//go:embed tables/*.yaml
var tablesFS embed.FS

// Locale identifies a message table.
type Locale string

const (
	LocaleJA Locale = "ja"
	LocaleEN Locale = "en"

	// DefaultLocale is used when nothing better matches.
	DefaultLocale = LocaleJA
)

// MessageObject holds the candidate phrases for one intent. Time is indexed by
// bracket (0-based) and should have one list per bracket.
type MessageObject struct {
	Initial []string   `yaml:"initial" json:"initial"`
	Time    [][]string `yaml:"time" json:"time"`
}

// Table is the message table for one locale.
type Table struct {
	Locale   Locale          `yaml:"locale" json:"locale"`
	Name     string          `yaml:"name" json:"name"`
	Intents  []string        `yaml:"intents" json:"intents"`
	Brackets []string        `yaml:"brackets" json:"brackets"`
	Messages []MessageObject `yaml:"messages" json:"messages"`
}

// Intent returns the intent text for a 1-based message index.
func (t *Table) Intent(messageIndex int) (string, bool) {
	if messageIndex < 1 || messageIndex > len(t.Intents) {
		return "", false
	}
	return t.Intents[messageIndex-1], true
}

// BracketLabel returns the display label for a 1-based bracket index.
func (t *Table) BracketLabel(bracketIndex int) (string, bool) {
	if bracketIndex < 1 || bracketIndex > len(t.Brackets) {
		return "", false
	}
	return t.Brackets[bracketIndex-1], true
}

// Catalog is a set of message tables keyed by locale.
type Catalog struct {
	tables  map[Locale]*Table
	locales []Locale
	matcher language.Matcher
}

// NewCatalog builds a catalog from already parsed tables. The first table's
// locale is preferred by Match when nothing else fits.
func NewCatalog(tables ...*Table) *Catalog {
	c := &Catalog{tables: make(map[Locale]*Table, len(tables))}
	tags := make([]language.Tag, 0, len(tables))
	for _, t := range tables {
		if _, ok := c.tables[t.Locale]; ok {
			continue
		}
		c.tables[t.Locale] = t
		c.locales = append(c.locales, t.Locale)
		tags = append(tags, language.Make(string(t.Locale)))
	}
	c.matcher = language.NewMatcher(tags)
	return c
}

// Load parses every YAML table in fsys. The default locale goes first so it wins
// ties in Match.
func Load(fsys fs.FS) (*Catalog, error) {
	paths, err := fs.Glob(fsys, "*.yaml")
	if err != nil {
		return nil, fmt.Errorf("listing message tables: %w", err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no message tables found")
	}

	tables := make([]*Table, 0, len(paths))
	for _, p := range paths {
		data, err := fs.ReadFile(fsys, p)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", p, err)
		}
		var t Table
		if err := yaml.Unmarshal(data, &t); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", p, err)
		}
		if t.Locale == "" {
			return nil, fmt.Errorf("%s: missing locale", p)
		}
		tables = append(tables, &t)
	}

	sort.SliceStable(tables, func(i, j int) bool {
		return tables[i].Locale == DefaultLocale && tables[j].Locale != DefaultLocale
	})
	return NewCatalog(tables...), nil
}

var defaultCatalog = sync.OnceValue(func() *Catalog {
	sub, err := fs.Sub(tablesFS, "tables")
	if err != nil {
		panic("failed to open embedded message tables: " + err.Error())
	}
	c, err := Load(sub)
	if err != nil {
		panic("failed to load embedded message tables: " + err.Error())
	}
	return c
})

// Default returns the catalog built from the embedded tables.
func Default() *Catalog {
	return defaultCatalog()
}

// Table returns the table for a locale.
func (c *Catalog) Table(l Locale) (*Table, bool) {
	t, ok := c.tables[l]
	return t, ok
}

// Locales lists the available locales, default first.
func (c *Catalog) Locales() []Locale {
	out := make([]Locale, len(c.locales))
	copy(out, c.locales)
	return out
}

// Supports reports whether the catalog has a table for l.
func (c *Catalog) Supports(l Locale) bool {
	_, ok := c.tables[l]
	return ok
}

// Match picks the best locale for an Accept-Language header or a plain tag such
// as "en-US". Unknown or empty input yields the catalog's first locale.
func (c *Catalog) Match(accept string) Locale {
	if len(c.locales) == 0 {
		return DefaultLocale
	}
	tags, _, err := language.ParseAcceptLanguage(accept)
	if err != nil || len(tags) == 0 {
		return c.locales[0]
	}
	_, idx, conf := c.matcher.Match(tags...)
	if conf == language.No {
		return c.locales[0]
	}
	return c.locales[idx]
}
