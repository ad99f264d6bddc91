package settings

import (
	"context"
	"fmt"

	"github.com/slyguy/settings/pkg/logger"
)

// LegacyEntry is one value of the legacy flat settings file.
type LegacyEntry struct {
	ID    string
	Value string
	// Default marks entries the legacy host never changed.
	Default bool
}

// LegacySource reads the legacy settings of the active namespace.
type LegacySource interface {
	Entries(ctx context.Context) ([]LegacyEntry, error)
}

// Report summarizes a migration pass.
type Report struct {
	Ran      bool
	Migrated int
	Total    int
}

// LegacyOverrides lists ids whose legacy value is treated as the default when
// it equals the value given here. Old installations wrote these values
// without the user choosing them.
var LegacyOverrides = map[string]any{
	"max_bandwidth":         7,
	"epg_days":              3,
	"pagination_multiplier": 1,
}

// Migrate imports legacy values into the settings owned by the active
// namespace, once per installation. Values equal to the default are not
// written. A source that cannot be read aborts the pass without marking it
// done, so it is retried on the next run.
func (r *Registry) Migrate(ctx context.Context, src LegacySource) (Report, error) {
	log := logger.FromContext(ctx)
	if r.Migrated(ctx) {
		log.Debug("Legacy settings already migrated")
		return Report{}, nil
	}
	entries, err := src.Entries(ctx)
	if err != nil {
		log.Error("Failed to read legacy settings", "error", err)
		return Report{}, fmt.Errorf("settings: read legacy settings: %w", err)
	}
	entries = changedEntries(entries)

	var targets []*Setting
	for _, s := range r.Settings() {
		if s.Owner() == r.active && s.kind != KindAction && s != r.migrated {
			targets = append(targets, s)
		}
	}

	report := Report{Ran: true, Total: len(entries)}
	for _, entry := range entries {
		var match *Setting
		for _, s := range targets {
			if s.MatchesID(entry.ID) {
				match = s
			}
		}
		if match == nil {
			log.Info("Skipping legacy setting with no match", "id", entry.ID)
			continue
		}
		value, err := match.FromText(entry.Value)
		if err != nil {
			log.Warn("Skipping legacy setting", "id", entry.ID, "error", err)
			continue
		}
		if override, ok := LegacyOverrides[entry.ID]; ok && valuesEqual(override, value) {
			value = match.def
		}
		if valuesEqual(value, match.def) {
			log.Info("Skipping legacy setting equal to default", "id", match.id, "from", entry.ID)
			continue
		}
		if err := match.write(ctx, value); err != nil {
			log.Error("Failed to migrate legacy setting", "id", entry.ID, "error", err)
			continue
		}
		log.Info("Migrated legacy setting", "id", match.id, "from", entry.ID, "value", value)
		report.Migrated++
	}

	if err := r.migrated.write(ctx, true); err != nil {
		return report, fmt.Errorf("settings: mark migrated: %w", err)
	}
	log.Info("Legacy settings migrated", "migrated", report.Migrated, "total", report.Total)
	return report, nil
}

// changedEntries drops defaults and empty values. A repeated id keeps its
// last value at its first position.
func changedEntries(entries []LegacyEntry) []LegacyEntry {
	index := make(map[string]int, len(entries))
	out := make([]LegacyEntry, 0, len(entries))
	for _, e := range entries {
		if e.Default || e.Value == "" {
			continue
		}
		if i, ok := index[e.ID]; ok {
			out[i] = e
			continue
		}
		index[e.ID] = len(out)
		out = append(out, e)
	}
	return out
}
