package settings

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategory_Visibility(t *testing.T) {
	ctx := context.Background()

	t.Run("Should hide categories without visible children", func(t *testing.T) {
		env := newTestEnv(t, "linux")
		codecs, ok := env.reg.Category(CategoryCodecs)
		require.True(t, ok)
		assert.False(t, codecs.IsVisible(ctx))

		env.declare(t, Declaration{Name: "H265", Setting: Bool("h265", WithCategory(CategoryCodecs))})
		assert.True(t, codecs.IsVisible(ctx))
		player, _ := env.reg.Category(CategoryPlayer)
		assert.True(t, player.IsVisible(ctx))
	})

	t.Run("Should evaluate visibility conditions against the host", func(t *testing.T) {
		env := newTestEnv(t, "android")
		s := Bool("wv_secure", WithVisible(PlatformCondition(`platform == "android"`)), WithCategory(CategoryAdvanced))
		env.declare(t, Declaration{Name: "WV_SECURE", Setting: s})
		advanced, _ := env.reg.Category(CategoryAdvanced)
		assert.Equal(t, []Node{s}, advanced.VisibleChildren(ctx))

		other := newTestEnv(t, "windows")
		hidden := Bool("wv_secure", WithVisible(PlatformCondition(`platform == "android"`)), WithCategory(CategoryAdvanced))
		other.declare(t, Declaration{Name: "WV_SECURE", Setting: hidden})
		advanced, _ = other.reg.Category(CategoryAdvanced)
		assert.Empty(t, advanced.VisibleChildren(ctx))
	})
}

func TestCategory_Settings(t *testing.T) {
	ctx := context.Background()

	t.Run("Should list active-owned settings first keeping declaration order", func(t *testing.T) {
		env := newTestEnv(t, "linux")
		sharedA := Number("epg_days", WithOwner(testCommon), WithCategory(CategoryPVRLiveTV))
		ownA := Bool("a", WithCategory(CategoryPVRLiveTV))
		sharedB := Number("pagination", WithOwner(testCommon), WithCategory(CategoryPVRLiveTV))
		ownB := Bool("b", WithCategory(CategoryPVRLiveTV))
		env.declare(t,
			Declaration{Name: "EPG_DAYS", Setting: sharedA},
			Declaration{Name: "A", Setting: ownA},
			Declaration{Name: "PAGINATION", Setting: sharedB},
			Declaration{Name: "B", Setting: ownB},
		)
		pvr, _ := env.reg.Category(CategoryPVRLiveTV)
		assert.Equal(t, []*Setting{ownA, ownB, sharedA, sharedB}, pvr.Settings(ctx))
	})
}

func TestCategory_Categories(t *testing.T) {
	ctx := context.Background()

	t.Run("Should sort categories of foreign settings last", func(t *testing.T) {
		env := newTestEnv(t, "linux")
		env.declare(t,
			Declaration{Name: "PROXY_SERVER", Setting: Text("proxy_server", WithOwner(testCommon), WithCategory(CategoryNetwork))},
			Declaration{Name: "KIOSK_MODE", Setting: Bool("kiosk_mode", WithCategory(CategoryInterface))},
			Declaration{Name: "SKIP_INTROS", Setting: Bool("skip_intros")},
		)

		var titles []string
		for _, c := range env.reg.Root().Categories(ctx) {
			titles = append(titles, c.Title())
		}
		assert.Equal(t, []string{"Disney+", "Interface", "Network"}, titles)
	})

	t.Run("Should add custom categories", func(t *testing.T) {
		env := newTestEnv(t, "linux")
		c, err := env.reg.NewCategory("PROFILE_SETTINGS", CategoryAddon)
		require.NoError(t, err)
		env.declare(t, Declaration{Name: "KID_LOCKDOWN", Setting: Bool("kid_lockdown", WithCategory(c.ID()))})

		addon, _ := env.reg.Category(CategoryAddon)
		assert.Equal(t, []*Category{c}, addon.Categories(ctx))

		_, err = env.reg.NewCategory("X", 99)
		assert.Error(t, err)
	})
}
