package db_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/hyeniworld/loaderkit/internal/domain"
	"github.com/hyeniworld/loaderkit/internal/storage/db"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDB(t *testing.T) *db.DB {
	t.Helper()
	database, err := db.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	return database
}

func TestNew_RunsMigrations(t *testing.T) {
	database := newDB(t)

	var count int
	assert.NoError(t, database.QueryRow("SELECT COUNT(*) FROM loader_versions").Scan(&count))
	assert.NoError(t, database.QueryRow("SELECT COUNT(*) FROM installed_loaders").Scan(&count))

	var version int
	require.NoError(t, database.QueryRow("SELECT MAX(version) FROM schema_migrations").Scan(&version))
	assert.Equal(t, 2, version)
}

func TestNew_ReopenDoesNotReapplyMigrations(t *testing.T) {
	path := filepath.Join(t.TempDir(), "loaderkit.db")

	first, err := db.New(path)
	require.NoError(t, err)
	require.NoError(t, first.Close())

	second, err := db.New(path)
	require.NoError(t, err)
	defer second.Close()

	var count int
	require.NoError(t, second.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count))
	assert.Equal(t, 2, count)
}

func TestLoaderVersions_ReplaceAndGet(t *testing.T) {
	database := newDB(t)
	build := 9
	now := time.Unix(1_700_000_000, 0)

	versions := []domain.CachedVersion{
		{Version: "0.16.9", Stable: true, BuildNumber: &build, MavenCoords: "net.fabricmc:fabric-loader:0.16.9"},
		{Version: "0.16.8-beta", Stable: false},
	}
	require.NoError(t, database.ReplaceLoaderVersions(domain.VariantFabric, versions, now))

	got, err := database.GetLoaderVersions(domain.VariantFabric)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "0.16.9", got[0].Version, "order is preserved")
	assert.True(t, got[0].Stable)
	require.NotNil(t, got[0].BuildNumber)
	assert.Equal(t, 9, *got[0].BuildNumber)
	assert.Equal(t, domain.VariantFabric, got[0].Ecosystem)
	assert.Equal(t, now, got[0].CachedAt)
	assert.Nil(t, got[1].BuildNumber)
	assert.False(t, got[1].Stable)

	// Replacing drops old rows
	require.NoError(t, database.ReplaceLoaderVersions(domain.VariantFabric, versions[1:], now))
	got, err = database.GetLoaderVersions(domain.VariantFabric)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "0.16.8-beta", got[0].Version)
}

func TestLoaderVersions_IsolatedPerEcosystem(t *testing.T) {
	database := newDB(t)
	now := time.Now()

	require.NoError(t, database.ReplaceLoaderVersions(domain.VariantFabric, []domain.CachedVersion{{Version: "0.16.9"}}, now))
	require.NoError(t, database.ReplaceLoaderVersions(domain.VariantQuilt, []domain.CachedVersion{{Version: "0.26.0"}}, now))

	require.NoError(t, database.DeleteLoaderVersions(domain.VariantFabric))

	fabric, err := database.GetLoaderVersions(domain.VariantFabric)
	require.NoError(t, err)
	assert.Empty(t, fabric)

	quilt, err := database.GetLoaderVersions(domain.VariantQuilt)
	require.NoError(t, err)
	assert.Len(t, quilt, 1)
}

func TestLoaderVersionsCachedAt(t *testing.T) {
	database := newDB(t)

	_, ok, err := database.LoaderVersionsCachedAt(domain.VariantNeoForge)
	require.NoError(t, err)
	assert.False(t, ok)

	now := time.Unix(1_700_000_000, 0)
	require.NoError(t, database.ReplaceLoaderVersions(domain.VariantNeoForge, []domain.CachedVersion{{Version: "21.1.72"}}, now))

	cachedAt, ok, err := database.LoaderVersionsCachedAt(domain.VariantNeoForge)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, now, cachedAt)
}

func TestInstalledLoaders_SaveListDelete(t *testing.T) {
	database := newDB(t)

	first := &domain.InstalledLoader{
		GameDir:       "/inst/A",
		VersionID:     "fabric-loader-0.16.9-1.21.1",
		Variant:       domain.VariantFabric,
		BaseVersion:   "1.21.1",
		LoaderVersion: "0.16.9",
		InstalledAt:   time.Unix(1_700_000_000, 0),
	}
	second := &domain.InstalledLoader{
		GameDir:       "/inst/B",
		VersionID:     "neoforge-21.1.72",
		Variant:       domain.VariantNeoForge,
		BaseVersion:   "1.21.1",
		LoaderVersion: "21.1.72",
		InstalledAt:   time.Unix(1_700_000_100, 0),
	}
	require.NoError(t, database.SaveInstalledLoader(first))
	require.NoError(t, database.SaveInstalledLoader(second))

	all, err := database.GetInstalledLoaders("")
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "neoforge-21.1.72", all[0].VersionID, "newest first")

	onlyA, err := database.GetInstalledLoaders("/inst/A")
	require.NoError(t, err)
	require.Len(t, onlyA, 1)
	assert.Equal(t, *first, onlyA[0])

	// Re-saving updates in place
	first.InstalledAt = time.Unix(1_700_000_200, 0)
	require.NoError(t, database.SaveInstalledLoader(first))
	onlyA, err = database.GetInstalledLoaders("/inst/A")
	require.NoError(t, err)
	require.Len(t, onlyA, 1)
	assert.Equal(t, first.InstalledAt, onlyA[0].InstalledAt)

	require.NoError(t, database.DeleteInstalledLoader("/inst/A", first.VersionID))
	onlyA, err = database.GetInstalledLoaders("/inst/A")
	require.NoError(t, err)
	assert.Empty(t, onlyA)
}
