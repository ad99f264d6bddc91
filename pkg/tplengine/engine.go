// Package tplengine renders the small display templates settings use to
// format their values, for example "{{ .value }} Mbit/s". Templates get the
// sprig function set and fail on missing keys.
package tplengine

import (
	"bytes"
	"fmt"
	"strings"
	"sync"
	"text/template"

	"github.com/Masterminds/sprig/v3"
)

// ValueKey is the name a formatted value is bound to.
const ValueKey = "value"

// DefaultValueFormat renders the value unchanged.
const DefaultValueFormat = "{{ ." + ValueKey + " }}"

// Template is a parsed display template.
type Template struct {
	source string
	tmpl   *template.Template
}

// HasTemplate returns true if the string contains template markers.
func HasTemplate(text string) bool {
	return strings.Contains(text, "{{")
}

// Parse compiles text. Plain text without markers is kept as a literal.
func Parse(name, text string) (*Template, error) {
	tmpl, err := template.New(name).Option("missingkey=error").Funcs(sprig.TxtFuncMap()).Parse(text)
	if err != nil {
		return nil, fmt.Errorf("failed to parse template: %w", err)
	}
	return &Template{source: text, tmpl: tmpl}, nil
}

// MustParse is like Parse but panics on error.
func MustParse(name, text string) *Template {
	t, err := Parse(name, text)
	if err != nil {
		panic(err)
	}
	return t
}

// Source returns the text the template was parsed from.
func (t *Template) Source() string {
	return t.source
}

// Render executes the template with data as its context.
func (t *Template) Render(data map[string]any) (string, error) {
	if !HasTemplate(t.source) {
		return t.source, nil
	}
	var buf bytes.Buffer
	if err := t.tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("template execution error: %w", err)
	}
	return buf.String(), nil
}

// RenderValue executes the template with value bound to ValueKey.
func (t *Template) RenderValue(value any) (string, error) {
	return t.Render(map[string]any{ValueKey: value})
}

// Cache keeps parsed templates by source text.
type Cache struct {
	templates sync.Map // source -> *Template
}

// Get returns the parsed template for text, parsing it on first use.
func (c *Cache) Get(text string) (*Template, error) {
	if cached, ok := c.templates.Load(text); ok {
		return cached.(*Template), nil
	}
	t, err := Parse("value", text)
	if err != nil {
		return nil, err
	}
	actual, _ := c.templates.LoadOrStore(text, t)
	return actual.(*Template), nil
}
