package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseNumber(t *testing.T) {
	t.Run("Should accept decimal and exponent forms", func(t *testing.T) {
		n, err := parseNumber(" 2.5 ")
		require.NoError(t, err)
		assert.Equal(t, 2.5, n)

		n, err = parseNumber("1e20")
		require.NoError(t, err)
		assert.Equal(t, 1e20, n)
	})

	t.Run("Should reject values that are not finite", func(t *testing.T) {
		for _, text := range []string{"NaN", "Inf", "-Inf", "+inf", "1e400", "lots"} {
			_, err := parseNumber(text)
			assert.Error(t, err, "text %q", text)
		}
	})
}
