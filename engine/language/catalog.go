// Package language resolves symbolic string names to display text for the
// best-matching locale.
package language

import (
	"embed"
	"fmt"
	"os"
	"sort"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

//go:embed catalogs/*.yaml
var builtinFS embed.FS

// Base is the locale every lookup falls back to.
var Base = language.English

// Catalog is an immutable set of strings for one locale layered over Base.
type Catalog struct {
	tag     language.Tag
	strings map[string]string
}

// file is the on-disk layout: locale -> name -> text.
type file map[string]map[string]string

// New loads the built-in strings, overlays each YAML file in paths in order
// and selects the locale closest to locale.
func New(locale string, paths ...string) (*Catalog, error) {
	tables := make(map[string]map[string]string)
	entries, err := builtinFS.ReadDir("catalogs")
	if err != nil {
		return nil, fmt.Errorf("language: read built-in catalogs: %w", err)
	}
	for _, entry := range entries {
		data, err := builtinFS.ReadFile("catalogs/" + entry.Name())
		if err != nil {
			return nil, fmt.Errorf("language: read %s: %w", entry.Name(), err)
		}
		if err := merge(tables, data); err != nil {
			return nil, fmt.Errorf("language: parse %s: %w", entry.Name(), err)
		}
	}
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("language: read catalog: %w", err)
		}
		if err := merge(tables, data); err != nil {
			return nil, fmt.Errorf("language: parse %s: %w", path, err)
		}
	}
	tag := match(tables, locale)
	base := Base.String()
	strings := make(map[string]string, len(tables[base]))
	for k, v := range tables[base] {
		strings[k] = v
	}
	if key := tag.String(); key != base {
		for k, v := range tables[key] {
			strings[k] = v
		}
	}
	return &Catalog{tag: tag, strings: strings}, nil
}

func merge(tables map[string]map[string]string, data []byte) error {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return err
	}
	for locale, values := range f {
		tag, err := language.Parse(locale)
		if err != nil {
			return fmt.Errorf("invalid locale %q: %w", locale, err)
		}
		table, ok := tables[tag.String()]
		if !ok {
			table = make(map[string]string, len(values))
			tables[tag.String()] = table
		}
		for k, v := range values {
			table[k] = v
		}
	}
	return nil
}

// match picks the available tag closest to locale, preferring Base on ties.
func match(tables map[string]map[string]string, locale string) language.Tag {
	if locale == "" {
		return Base
	}
	want, err := language.Parse(locale)
	if err != nil {
		return Base
	}
	others := make([]string, 0, len(tables))
	for key := range tables {
		if key != Base.String() {
			others = append(others, key)
		}
	}
	sort.Strings(others)
	available := []language.Tag{Base}
	for _, key := range others {
		available = append(available, language.MustParse(key))
	}
	_, index, confidence := language.NewMatcher(available).Match(want)
	if confidence == language.No {
		return Base
	}
	return available[index]
}

// Tag is the locale the catalog resolved to.
func (c *Catalog) Tag() language.Tag {
	return c.tag
}

// Lookup returns the text for name, if any.
func (c *Catalog) Lookup(name string) (string, bool) {
	v, ok := c.strings[name]
	return v, ok
}

// Text returns the text for name, or name itself when untranslated.
func (c *Catalog) Text(name string) string {
	if v, ok := c.strings[name]; ok {
		return v
	}
	return name
}
