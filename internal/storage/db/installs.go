package db

import (
	"fmt"
	"time"

	"github.com/hyeniworld/loaderkit/internal/domain"
)

// SaveInstalledLoader records an install, replacing any earlier record for
// the same game directory and version id.
func (d *DB) SaveInstalledLoader(rec *domain.InstalledLoader) error {
	installedAt := rec.InstalledAt
	if installedAt.IsZero() {
		installedAt = time.Now()
	}

	_, err := d.Exec(`
		INSERT INTO installed_loaders (game_dir, version_id, loader_type, base_version, loader_version, installed_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(game_dir, version_id) DO UPDATE SET
			loader_type = excluded.loader_type,
			base_version = excluded.base_version,
			loader_version = excluded.loader_version,
			installed_at = excluded.installed_at
	`, rec.GameDir, rec.VersionID, string(rec.Variant), rec.BaseVersion, rec.LoaderVersion, installedAt.Unix())
	if err != nil {
		return fmt.Errorf("saving installed loader: %w", err)
	}
	return nil
}

// GetInstalledLoaders lists install records, newest first. An empty
// gameDir lists every directory.
func (d *DB) GetInstalledLoaders(gameDir string) ([]domain.InstalledLoader, error) {
	query := `
		SELECT game_dir, version_id, loader_type, base_version, COALESCE(loader_version, ''), installed_at
		FROM installed_loaders`
	var args []any
	if gameDir != "" {
		query += " WHERE game_dir = ?"
		args = append(args, gameDir)
	}
	query += " ORDER BY installed_at DESC, version_id"

	rows, err := d.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying installed loaders: %w", err)
	}
	defer rows.Close()

	var records []domain.InstalledLoader
	for rows.Next() {
		var rec domain.InstalledLoader
		var variant string
		var installedAt int64
		if err := rows.Scan(&rec.GameDir, &rec.VersionID, &variant, &rec.BaseVersion, &rec.LoaderVersion, &installedAt); err != nil {
			return nil, fmt.Errorf("scanning installed loader: %w", err)
		}
		rec.Variant = domain.LoaderVariant(variant)
		rec.InstalledAt = time.Unix(installedAt, 0)
		records = append(records, rec)
	}
	return records, rows.Err()
}

// DeleteInstalledLoader removes one install record
func (d *DB) DeleteInstalledLoader(gameDir, versionID string) error {
	_, err := d.Exec("DELETE FROM installed_loaders WHERE game_dir = ? AND version_id = ?", gameDir, versionID)
	if err != nil {
		return fmt.Errorf("deleting installed loader: %w", err)
	}
	return nil
}
