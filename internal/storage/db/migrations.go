package db

import "fmt"

func (d *DB) migrate() error {
	// Create migrations table if it doesn't exist
	if _, err := d.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`); err != nil {
		return fmt.Errorf("creating migrations table: %w", err)
	}

	// Get current version
	var version int
	err := d.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&version)
	if err != nil {
		return fmt.Errorf("getting schema version: %w", err)
	}

	// Apply migrations
	migrations := []func(*DB) error{
		migrateV1,
		migrateV2,
	}

	for i := version; i < len(migrations); i++ {
		if err := migrations[i](d); err != nil {
			return fmt.Errorf("migration %d: %w", i+1, err)
		}
		if _, err := d.Exec("INSERT INTO schema_migrations (version) VALUES (?)", i+1); err != nil {
			return fmt.Errorf("recording migration %d: %w", i+1, err)
		}
	}

	return nil
}

func migrateV1(d *DB) error {
	statements := []string{
		`CREATE TABLE loader_versions (
			loader_type TEXT NOT NULL,
			version TEXT NOT NULL,
			position INTEGER NOT NULL,
			stable INTEGER DEFAULT 0,
			build_number INTEGER,
			maven_coords TEXT,
			cached_at INTEGER NOT NULL,
			PRIMARY KEY (loader_type, version)
		)`,
		`CREATE INDEX idx_loader_versions_type ON loader_versions(loader_type, position)`,
	}

	for _, stmt := range statements {
		if _, err := d.Exec(stmt); err != nil {
			return fmt.Errorf("executing %q: %w", stmt[:40], err)
		}
	}

	return nil
}

func migrateV2(d *DB) error {
	// Track completed loader installs per game directory
	_, err := d.Exec(`
		CREATE TABLE IF NOT EXISTS installed_loaders (
			game_dir TEXT NOT NULL,
			version_id TEXT NOT NULL,
			loader_type TEXT NOT NULL,
			base_version TEXT NOT NULL,
			loader_version TEXT,
			installed_at INTEGER NOT NULL,
			PRIMARY KEY (game_dir, version_id)
		)
	`)
	return err
}
