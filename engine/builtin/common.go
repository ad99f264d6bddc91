// Package builtin declares the settings shipped with the engine: the shared
// settings every plugin inherits and the settings of the Disney+ plugin.
package builtin

import (
	"context"

	"github.com/slyguy/settings/engine/settings"
)

const (
	CommonModule = "common"
	DisneyModule = "disney"
)

// RefreshCommand asks the host to redraw the current listing.
const RefreshCommand = "Container.Refresh"

// Common declares the settings owned by the shared namespace. Plugins read
// them through inheritance and may override them. clearCache backs the
// cache action; nil leaves the action out.
func Common(common string, clearCache func(ctx context.Context) error) settings.Module {
	owned := func(opts ...settings.Option) []settings.Option {
		return append([]settings.Option{settings.WithOwner(common)}, opts...)
	}
	decls := []settings.Declaration{
		{Name: "MAX_BANDWIDTH", Setting: settings.Number("max_bandwidth", owned(
			settings.WithDefault(0),
			settings.WithLimits(0, 1000),
			settings.WithValueFormat("{{ .value }} Mbit/s"),
			settings.WithDefaultLabel("QUALITY_BEST"),
			settings.WithCategory(settings.CategoryQuality),
		)...)},
		{Name: "PREFERRED_QUALITY", Setting: settings.Enum("preferred_quality", []settings.Choice{
			{Label: "QUALITY_ASK", Value: "ask"},
			{Label: "QUALITY_BEST", Value: "best"},
			{Label: "QUALITY_LOWEST", Value: "lowest"},
		}, owned(
			settings.WithLegacyIDs("default_quality"),
			settings.WithCategory(settings.CategoryQuality),
		)...)},
		{Name: "DEFAULT_LANGUAGE", Setting: settings.Text("default_language", owned(
			settings.WithCategory(settings.CategoryLanguage),
		)...)},
		{Name: "DEFAULT_SUBTITLE", Setting: settings.Text("default_subtitle", owned(
			settings.WithCategory(settings.CategoryLanguage),
		)...)},
		{Name: "PROXY_SERVER", Setting: settings.Text("proxy_server", owned(
			settings.WithPrivateValue(),
			settings.WithCategory(settings.CategoryNetwork),
		)...)},
		{Name: "VERIFY_SSL", Setting: settings.Bool("verify_ssl", owned(
			settings.WithDefault(true),
			settings.WithCategory(settings.CategoryNetwork),
		)...)},
		{Name: "HTTP_TIMEOUT", Setting: settings.Number("http_timeout", owned(
			settings.WithDefault(15),
			settings.WithLimits(5, 60),
			settings.WithValueFormat("{{ .value }}s"),
			settings.WithCategory(settings.CategoryNetwork),
		)...)},
		{Name: "EPG_DAYS", Setting: settings.Number("epg_days", owned(
			settings.WithDefault(3),
			settings.WithLimits(1, 14),
			settings.WithCategory(settings.CategoryPVRLiveTV),
		)...)},
		{Name: "PAGINATION_MULTIPLIER", Setting: settings.Number("pagination_multiplier", owned(
			settings.WithDefault(1),
			settings.WithLimits(1, 10),
			settings.WithValueFormat("x{{ .value }}"),
			settings.WithCategory(settings.CategoryInterface),
		)...)},
		{Name: "BOOKMARKS", Setting: settings.Bool("bookmarks", owned(
			settings.WithDefault(true),
			settings.WithCategory(settings.CategoryInterface),
		)...)},
		{Name: "KIOSK_MODE", Setting: settings.Bool("kiosk_mode", owned(
			settings.WithCategory(settings.CategoryInterface),
		)...)},
		{Name: "DEBUG_LOG", Setting: settings.Bool("debug_log", owned(
			settings.WithOverride(false),
			settings.WithInherit(false),
			settings.WithCategory(settings.CategorySystem),
		)...)},
	}
	if clearCache != nil {
		decls = append(decls, settings.Declaration{
			Name: "CLEAR_CACHE",
			Setting: settings.Action(func(ctx context.Context) (string, error) {
				if err := clearCache(ctx); err != nil {
					return "", err
				}
				return RefreshCommand, nil
			}, settings.WithCategory(settings.CategorySystem)),
		})
	}
	return settings.NewModule(CommonModule, decls...)
}
