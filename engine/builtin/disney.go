package builtin

import (
	"context"

	"github.com/slyguy/settings/engine/settings"
)

// AndroidOnly holds on Android hosts.
const AndroidOnly = `platform == "android"`

// Disney declares the Disney+ plugin settings. They belong to the active
// namespace.
func Disney() settings.Module {
	h265 := settings.Bool("h265",
		settings.WithDefault(true),
		settings.WithCategory(settings.CategoryCodecs),
	)
	needsH265 := settings.Computed(func(ctx context.Context) bool {
		on, _ := h265.Value(ctx).(bool)
		return on
	})
	return settings.NewModule(DisneyModule,
		settings.Declaration{Name: "WV_SECURE", Setting: settings.Bool("wv_secure",
			settings.WithVisible(settings.PlatformCondition(AndroidOnly)),
			settings.WithCategory(settings.CategoryAdvanced),
		)},
		settings.Declaration{Name: "SKIP_INTROS", Setting: settings.Bool("skip_intros",
			settings.WithLegacyIDs("skip_intro"),
		)},
		settings.Declaration{Name: "SKIP_CREDITS", Setting: settings.Bool("skip_credits")},
		settings.Declaration{Name: "PLAY_NEXT_EPISODE", Setting: settings.Bool("play_next_episode",
			settings.WithDefault(true),
		)},
		settings.Declaration{Name: "PLAY_NEXT_MOVIE", Setting: settings.Bool("play_next_movie")},
		settings.Declaration{Name: "KID_LOCKDOWN", Setting: settings.Bool("kid_lockdown",
			settings.WithConfirmClear(),
		)},
		settings.Declaration{Name: "DISNEY_SYNC", Setting: settings.Bool("disney_sync",
			settings.WithDefault(true),
		)},
		settings.Declaration{Name: "H265", Setting: h265},
		settings.Declaration{Name: "DOLBY_VISION", Setting: settings.Bool("dolby_vision",
			settings.WithEnable(needsH265),
			settings.WithDisabledReason("REQUIRES_H265"),
			settings.WithCategory(settings.CategoryCodecs),
		)},
		settings.Declaration{Name: "HDR10", Setting: settings.Bool("hdr10",
			settings.WithEnable(needsH265),
			settings.WithDisabledReason("REQUIRES_H265"),
			settings.WithCategory(settings.CategoryCodecs),
		)},
		settings.Declaration{Name: "DOLBY_ATMOS", Setting: settings.Bool("dolby_atmos",
			settings.WithCategory(settings.CategoryCodecs),
		)},
	)
}
