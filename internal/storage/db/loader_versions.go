package db

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/hyeniworld/loaderkit/internal/domain"
)

// GetLoaderVersions returns the cached versions of one ecosystem in the
// order they were stored.
func (d *DB) GetLoaderVersions(loaderType domain.LoaderVariant) ([]domain.CachedVersion, error) {
	rows, err := d.Query(`
		SELECT version, stable, build_number, maven_coords, cached_at
		FROM loader_versions
		WHERE loader_type = ?
		ORDER BY position
	`, string(loaderType))
	if err != nil {
		return nil, fmt.Errorf("querying loader versions: %w", err)
	}
	defer rows.Close()

	var versions []domain.CachedVersion
	for rows.Next() {
		v := domain.CachedVersion{Ecosystem: loaderType}
		var stable int
		var buildNumber sql.NullInt64
		var mavenCoords sql.NullString
		var cachedAt int64

		if err := rows.Scan(&v.Version, &stable, &buildNumber, &mavenCoords, &cachedAt); err != nil {
			return nil, fmt.Errorf("scanning loader version: %w", err)
		}

		v.Stable = stable == 1
		if buildNumber.Valid {
			bn := int(buildNumber.Int64)
			v.BuildNumber = &bn
		}
		v.MavenCoords = mavenCoords.String
		v.CachedAt = time.Unix(cachedAt, 0)

		versions = append(versions, v)
	}

	return versions, rows.Err()
}

// ReplaceLoaderVersions swaps the cached versions of one ecosystem in a
// single transaction.
func (d *DB) ReplaceLoaderVersions(loaderType domain.LoaderVariant, versions []domain.CachedVersion, now time.Time) error {
	tx, err := d.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM loader_versions WHERE loader_type = ?", string(loaderType)); err != nil {
		return fmt.Errorf("clearing loader versions: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT OR REPLACE INTO loader_versions (loader_type, version, position, stable, build_number, maven_coords, cached_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for i, v := range versions {
		stable := 0
		if v.Stable {
			stable = 1
		}

		var buildNumber any
		if v.BuildNumber != nil {
			buildNumber = *v.BuildNumber
		}

		if _, err := stmt.Exec(string(loaderType), v.Version, i, stable, buildNumber, v.MavenCoords, now.Unix()); err != nil {
			return fmt.Errorf("inserting loader version %s: %w", v.Version, err)
		}
	}

	return tx.Commit()
}

// LoaderVersionsCachedAt returns when an ecosystem was last cached.
// ok is false when nothing is cached.
func (d *DB) LoaderVersionsCachedAt(loaderType domain.LoaderVariant) (cachedAt time.Time, ok bool, err error) {
	var ts sql.NullInt64
	err = d.QueryRow(`
		SELECT MAX(cached_at) FROM loader_versions WHERE loader_type = ?
	`, string(loaderType)).Scan(&ts)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("getting cache age: %w", err)
	}
	if !ts.Valid {
		return time.Time{}, false, nil
	}
	return time.Unix(ts.Int64, 0), true, nil
}

// DeleteLoaderVersions removes the cached versions of one ecosystem
func (d *DB) DeleteLoaderVersions(loaderType domain.LoaderVariant) error {
	if _, err := d.Exec("DELETE FROM loader_versions WHERE loader_type = ?", string(loaderType)); err != nil {
		return fmt.Errorf("deleting loader versions: %w", err)
	}
	return nil
}
