package settings

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetting_Label(t *testing.T) {
	ctx := context.Background()

	t.Run("Should render title and formatted value", func(t *testing.T) {
		env := newTestEnv(t, "linux")
		s := Number("max_bandwidth", WithDefault(7), WithValueFormat("{{ .value }} Mbit/s"))
		env.declare(t, Declaration{Name: "MAX_BANDWIDTH", Setting: s})

		l := s.Label(ctx)
		assert.Equal(t, "Max bandwidth (Mbit/s): 7 Mbit/s", l.String())
		assert.Equal(t, StyleNormal, l.Style)
		assert.False(t, l.Inherited())
	})

	t.Run("Should emphasize clearable values", func(t *testing.T) {
		env := newTestEnv(t, "linux")
		s := Bool("skip_intros")
		env.declare(t, Declaration{Name: "SKIP_INTROS", Setting: s})
		require.NoError(t, s.SetValue(ctx, true))

		l := s.Label(ctx)
		assert.Equal(t, "Yes", l.Value)
		assert.Equal(t, StyleEmphasized, l.Style)
	})

	t.Run("Should dim disabled settings", func(t *testing.T) {
		env := newTestEnv(t, "linux")
		s := Bool("wv_secure", WithEnable(PlatformCondition(`platform == "android"`)))
		env.declare(t, Declaration{Name: "WV_SECURE", Setting: s})

		l := s.Label(ctx)
		assert.Equal(t, StyleDim, l.Style)
		assert.Equal(t, "No", l.Value)
	})

	t.Run("Should mark values inherited from the common namespace", func(t *testing.T) {
		env := newTestEnv(t, "linux")
		s := Number("epg_days", WithOwner(testCommon), WithDefault(3))
		env.declare(t, Declaration{Name: "EPG_DAYS", Setting: s})
		require.NoError(t, env.resolver.Set(ctx, testCommon, "epg_days", 5))

		l := s.Label(ctx)
		assert.True(t, l.Inherited())
		assert.Equal(t, "EPG days: 5 (inherited)", l.String())
	})

	t.Run("Should not mark inheritance inside the common namespace", func(t *testing.T) {
		env := newTestEnvFor(t, testCommon, "linux")
		s := Number("epg_days", WithOwner(testCommon), WithDefault(3))
		env.declare(t, Declaration{Name: "EPG_DAYS", Setting: s})
		require.NoError(t, s.SetValue(ctx, 5))

		assert.False(t, s.Label(ctx).Inherited())
	})

	t.Run("Should use the default label for the default value", func(t *testing.T) {
		env := newTestEnv(t, "linux")
		s := Number("max_bandwidth", WithDefault(0), WithDefaultLabel("QUALITY_BEST"))
		env.declare(t, Declaration{Name: "MAX_BANDWIDTH", Setting: s})

		assert.Equal(t, "Best", s.ValueLabel(ctx))
		require.NoError(t, s.SetValue(ctx, 4))
		assert.Equal(t, "4", s.ValueLabel(ctx))
	})

	t.Run("Should render empty values as not set", func(t *testing.T) {
		env := newTestEnv(t, "linux")
		s := Text("proxy_server")
		env.declare(t, Declaration{Name: "PROXY_SERVER", Setting: s})
		assert.Equal(t, "Not set", s.ValueLabel(ctx))
	})

	t.Run("Should mask private values", func(t *testing.T) {
		env := newTestEnv(t, "linux")
		s := Text("password", WithPrivateValue())
		env.declare(t, Declaration{Name: "PASSWORD", Setting: s})

		assert.Equal(t, "Not set", s.ValueLabel(ctx))
		require.NoError(t, s.SetValue(ctx, "hunter2"))
		assert.Equal(t, "********", s.ValueLabel(ctx))
	})

	t.Run("Should render enum option labels", func(t *testing.T) {
		env := newTestEnv(t, "linux")
		s := Enum("quality", []Choice{
			{Label: "QUALITY_ASK", Value: 0},
			{Label: "QUALITY_BEST", Value: 1},
		}, WithDefault(1))
		env.declare(t, Declaration{Name: "PREFERRED_QUALITY", Setting: s})
		assert.Equal(t, "Best", s.ValueLabel(ctx))
	})

	t.Run("Should render actions as their title only", func(t *testing.T) {
		env := newTestEnv(t, "linux")
		s := Action(func(context.Context) (string, error) { return "", nil }, WithEnable(Literal(false)))
		env.declare(t, Declaration{Name: "CLEAR_CACHE", Setting: s})

		l := s.Label(ctx)
		assert.True(t, l.Action)
		assert.Equal(t, StyleDim, l.Style)
		assert.Equal(t, l.Title, l.String())
	})

	t.Run("Should upper-case untranslated names", func(t *testing.T) {
		env := newTestEnv(t, "linux")
		s := Bool("custom")
		env.declare(t, Declaration{Name: "custom_flag", Setting: s})
		assert.Equal(t, "CUSTOM_FLAG", s.Title())
	})
}
