// Package migrate upgrades versioned TOML documents (scheme style files and
// locale bundles) one schema version at a time before they are decoded.
package migrate

import (
	"cmp"
	"fmt"
	"log/slog"
	"slices"
)

// ///////////////////////////////////////////////
// Types
// ///////////////////////////////////////////////

// Migration upgrades a raw document to Version from the version before it.
type Migration struct {
	Version     int
	Description string
	Upgrade     func(data []byte) ([]byte, error)
}

// ///////////////////////////////////////////////
// Public API
// ///////////////////////////////////////////////

// Run applies, in version order, every migration newer than fromVersion.
// It returns the upgraded document and the version reached. On failure the
// version reached before the failing step is returned.
func Run(log *slog.Logger, data []byte, fromVersion int, migrations []Migration) ([]byte, int, error) {
	if log == nil {
		log = slog.Default()
	}
	ordered := slices.Clone(migrations)
	slices.SortStableFunc(ordered, func(a, b Migration) int { return cmp.Compare(a.Version, b.Version) })

	version := fromVersion
	for _, m := range ordered {
		if m.Version <= version {
			continue
		}
		log.Info("applying migration", "version", m.Version, "description", m.Description)
		out, err := m.Upgrade(data)
		if err != nil {
			return nil, version, fmt.Errorf("migration to v%d failed: %w", m.Version, err)
		}
		data, version = out, m.Version
	}
	return data, version, nil
}

// NeedsMigration reports whether a document at fileVersion differs from
// currentVersion or has pending migrations.
func NeedsMigration(fileVersion, currentVersion int, migrations []Migration) bool {
	if fileVersion != currentVersion {
		return true
	}
	return slices.ContainsFunc(migrations, func(m Migration) bool { return fileVersion < m.Version })
}
