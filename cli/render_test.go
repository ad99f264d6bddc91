package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/slyguy/settings/engine/settings"
)

func TestRenderer_Label(t *testing.T) {
	t.Run("Should print plain labels when not writing to a terminal", func(t *testing.T) {
		r := newRenderer(&bytes.Buffer{})
		assert.False(t, r.styled)
		l := settings.Label{Title: "Max bandwidth", Value: "20 Mbit/s", Suffix: "(inherited)", Style: settings.StyleEmphasized}
		assert.Equal(t, "Max bandwidth: 20 Mbit/s (inherited)", r.label(l))
		assert.Equal(t, "Clear cache", r.label(settings.Label{Title: "Clear cache", Action: true}))
	})

	t.Run("Should keep the text when styling", func(t *testing.T) {
		r := newRenderer(&bytes.Buffer{})
		r.styled = true
		out := r.label(settings.Label{Title: "Skip intros", Value: "No", Style: settings.StyleDim})
		assert.Contains(t, out, "Skip intros: No")
	})
}
