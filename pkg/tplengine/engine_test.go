package tplengine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHasTemplate(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want bool
	}{
		{"empty", "", false},
		{"no_markers", "plain text", false},
		{"with_delims", "{{ .value }} Mbit/s", true},
		{"with_trim_marker", "{{- .value -}}", true},
		{"brace_like_not_template", "{not tmpl}", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HasTemplate(tt.in))
		})
	}
}

func TestTemplate_RenderValue(t *testing.T) {
	t.Run("Should render the bound value", func(t *testing.T) {
		tmpl, err := Parse("bandwidth", "{{ .value }} Mbit/s")
		require.NoError(t, err)
		out, err := tmpl.RenderValue(7)
		require.NoError(t, err)
		assert.Equal(t, "7 Mbit/s", out)
	})

	t.Run("Should expose sprig functions", func(t *testing.T) {
		tmpl, err := Parse("upper", "{{ .value | upper }}")
		require.NoError(t, err)
		out, err := tmpl.RenderValue("proxy")
		require.NoError(t, err)
		assert.Equal(t, "PROXY", out)
	})

	t.Run("Should keep literal text", func(t *testing.T) {
		tmpl, err := Parse("literal", "Always")
		require.NoError(t, err)
		out, err := tmpl.RenderValue(1)
		require.NoError(t, err)
		assert.Equal(t, "Always", out)
	})

	t.Run("Should render the default format", func(t *testing.T) {
		out, err := MustParse("default", DefaultValueFormat).RenderValue("abc")
		require.NoError(t, err)
		assert.Equal(t, "abc", out)
	})

	t.Run("Should fail on missing keys", func(t *testing.T) {
		tmpl, err := Parse("missing", "{{ .other }}")
		require.NoError(t, err)
		_, err = tmpl.RenderValue(1)
		assert.Error(t, err)
	})
}

func TestParse(t *testing.T) {
	t.Run("Should reject malformed templates", func(t *testing.T) {
		_, err := Parse("bad", "{{ .value ")
		assert.Error(t, err)
	})

	t.Run("Should panic in MustParse on malformed templates", func(t *testing.T) {
		assert.Panics(t, func() { MustParse("bad", "{{ end }}") })
	})
}

func TestCache_Get(t *testing.T) {
	t.Run("Should reuse parsed templates", func(t *testing.T) {
		var c Cache
		a, err := c.Get("{{ .value }}%")
		require.NoError(t, err)
		b, err := c.Get("{{ .value }}%")
		require.NoError(t, err)
		assert.Same(t, a, b)
		assert.Equal(t, "{{ .value }}%", a.Source())
	})

	t.Run("Should return parse errors", func(t *testing.T) {
		var c Cache
		_, err := c.Get("{{")
		assert.Error(t, err)
	})
}
