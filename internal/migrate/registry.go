package migrate

import (
	"fmt"
	"log/slog"
)

// Registry holds the schema version and migrations of one document kind.
type Registry struct {
	// Name identifies the document kind in errors.
	Name string
	// CurrentVersion is the version documents are upgraded to.
	CurrentVersion int
	// Migrations is exported so tests can swap the list.
	Migrations []Migration
}

// Register adds m. It panics on a duplicate version.
func (r *Registry) Register(m Migration) {
	for _, existing := range r.Migrations {
		if existing.Version == m.Version {
			panic(fmt.Sprintf("migrate: %s: duplicate migration version %d (%q)", r.Name, m.Version, m.Description))
		}
	}
	r.Migrations = append(r.Migrations, m)
}

// NeedsMigration reports whether a document at fileVersion must be upgraded.
func (r *Registry) NeedsMigration(fileVersion int) bool {
	return NeedsMigration(fileVersion, r.CurrentVersion, r.Migrations)
}

// Upgrade brings data from fileVersion to the current version. A document
// newer than the registry is rejected, as is one left short of the current
// version because a migration is missing.
func (r *Registry) Upgrade(log *slog.Logger, data []byte, fileVersion int) ([]byte, error) {
	if fileVersion > r.CurrentVersion {
		return nil, fmt.Errorf("%s version %d is newer than supported version %d", r.Name, fileVersion, r.CurrentVersion)
	}
	if !r.NeedsMigration(fileVersion) {
		return data, nil
	}
	out, reached, err := Run(log, data, fileVersion, r.Migrations)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", r.Name, err)
	}
	if reached != r.CurrentVersion {
		return nil, fmt.Errorf("%s: no migration path from v%d to v%d", r.Name, reached, r.CurrentVersion)
	}
	return out, nil
}

// Scheme is the migration registry for scheme style files.
var Scheme = &Registry{Name: "scheme", CurrentVersion: 1}

// Locales is the migration registry for locale bundles.
var Locales = &Registry{Name: "locales", CurrentVersion: 1}
