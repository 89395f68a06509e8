// Package app wires configuration, storage, metadata and installers into
// the service used by the command line.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/hyeniworld/loaderkit/internal/domain"
	"github.com/hyeniworld/loaderkit/internal/fetch"
	"github.com/hyeniworld/loaderkit/internal/javart"
	"github.com/hyeniworld/loaderkit/internal/loader"
	"github.com/hyeniworld/loaderkit/internal/meta"
	"github.com/hyeniworld/loaderkit/internal/metacache"
	"github.com/hyeniworld/loaderkit/internal/process"
	"github.com/hyeniworld/loaderkit/internal/storage/config"
	"github.com/hyeniworld/loaderkit/internal/storage/db"
	"github.com/hyeniworld/loaderkit/internal/storage/libroot"
)

// DatabaseFile is the SQLite file inside the data directory
const DatabaseFile = "loaderkit.db"

// ServiceConfig holds configuration for the service
type ServiceConfig struct {
	ConfigFile string // Path to config.yaml (missing file means defaults)
	DataDir    string // Directory for the database and shared libraries

	// Optional overrides, mostly for tests
	Config        *config.Config  // Used instead of reading ConfigFile
	HTTPClient    *http.Client    // Shared by metadata and artifact requests
	Endpoints     *meta.Endpoints // Remote metadata endpoints
	NeoForgeMaven string          // NeoForge release repository
	QuiltMaven    string          // Quilt release repository
	Runner        process.Runner  // Runs java
	Java          loader.JavaLocator
	Logger        *slog.Logger
}

// Service is the main orchestrator for loader operations
type Service struct {
	config  *config.Config
	db      *db.DB
	cache   *metacache.Service
	manager *loader.Manager
	libs    *libroot.Root
	java    loader.JavaLocator
	logger  *slog.Logger
}

// NewService creates a new service instance
func NewService(cfg ServiceConfig) (*Service, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	// Load configuration
	appConfig := cfg.Config
	if appConfig == nil {
		loaded, err := config.LoadFile(cfg.ConfigFile)
		if err != nil {
			return nil, fmt.Errorf("loading config: %w", err)
		}
		appConfig = loaded
	}

	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return nil, fmt.Errorf("creating data dir: %w", err)
	}

	// Open database
	database, err := db.New(filepath.Join(cfg.DataDir, DatabaseFile))
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	endpoints := meta.DefaultEndpoints()
	if cfg.Endpoints != nil {
		endpoints = *cfg.Endpoints
	}
	metaClient := meta.NewClient(httpClient, endpoints, appConfig.HTTPTimeout)

	runner := cfg.Runner
	if runner == nil {
		runner = process.NewExecRunner(appConfig.NeoForge.InstallerTimeout)
	}
	java := cfg.Java
	if java == nil {
		java = javart.NewLocator(runner,
			javart.WithExplicitPath(appConfig.NeoForge.JavaPath),
			javart.WithLogger(logger))
	}

	cache := metacache.New(database, metacache.SourcesFromClient(metaClient),
		metacache.WithTTL(appConfig.MetadataTTL),
		metacache.WithRefreshTimeout(appConfig.HTTPTimeout),
		metacache.WithLogger(logger))

	libs := libroot.New(appConfig.LibrariesDir(cfg.DataDir))
	deps := loader.Deps{
		Cache: cache,
		Fetcher: fetch.New(httpClient,
			fetch.WithMaxAttempts(appConfig.Fetch.MaxAttempts),
			fetch.WithTimeout(appConfig.Fetch.Timeout),
			fetch.WithLogger(logger)),
		Libraries: libs,
		Logger:    logger,
	}

	registry := loader.NewRegistry(
		loader.VanillaInstaller{},
		loader.NewFabricInstaller(deps, metaClient, loader.FabricOptions{
			Mirrors:     appConfig.Fabric.Mirrors,
			MaxParallel: appConfig.Fabric.MaxParallel,
		}),
		loader.NewNeoForgeInstaller(deps, metaClient, java, runner, loader.NeoForgeOptions{
			MavenURL: cfg.NeoForgeMaven,
		}),
		loader.NewQuiltInstaller(deps, metaClient, loader.QuiltOptions{
			Repository: cfg.QuiltMaven,
		}),
		loader.NewForgeInstaller(logger),
	)

	return &Service{
		config:  appConfig,
		db:      database,
		cache:   cache,
		manager: loader.NewManager(registry, logger),
		libs:    libs,
		java:    java,
		logger:  logger.With("component", "app"),
	}, nil
}

// Close releases resources held by the service
func (s *Service) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Config returns the loaded configuration
func (s *Service) Config() *config.Config {
	return s.config
}

// Manager returns the loader manager
func (s *Service) Manager() *loader.Manager {
	return s.manager
}

// Libraries returns the shared library root
func (s *Service) Libraries() *libroot.Root {
	return s.libs
}

// ListVersions lists loader versions for a variant
func (s *Service) ListVersions(ctx context.Context, variant domain.LoaderVariant, baseVersion string, includeUnstable bool) ([]domain.LoaderVersion, error) {
	return s.manager.ListVersions(ctx, variant, baseVersion, includeUnstable)
}

// RecommendedVersion returns the suggested loader version, or "" if none
func (s *Service) RecommendedVersion(ctx context.Context, variant domain.LoaderVariant, baseVersion string) (string, error) {
	return s.manager.RecommendedVersion(ctx, variant, baseVersion)
}

// InstallOptions describes an install request from the command line
type InstallOptions struct {
	Variant       domain.LoaderVariant
	BaseVersion   string
	LoaderVersion string // Empty picks the recommended version
	GameDir       string
	Progress      domain.ProgressFunc
}

// Install installs a loader and records it. A failure to record is logged
// and does not fail the install.
func (s *Service) Install(ctx context.Context, opts InstallOptions) (*domain.InstalledLoader, error) {
	gameDir, err := filepath.Abs(opts.GameDir)
	if err != nil {
		return nil, fmt.Errorf("resolving game dir: %w", err)
	}

	loaderVersion := opts.LoaderVersion
	if loaderVersion == "" && opts.Variant != domain.VariantVanilla {
		recommended, err := s.manager.RecommendedVersion(ctx, opts.Variant, opts.BaseVersion)
		if err != nil {
			return nil, err
		}
		if recommended == "" {
			return nil, fmt.Errorf("%w: no %s version for %s", domain.ErrVersionIncompatible, opts.Variant, opts.BaseVersion)
		}
		s.logger.Info("using recommended version", "variant", opts.Variant, "loader", recommended)
		loaderVersion = recommended
	}

	versionID, err := s.manager.Install(ctx, opts.Variant, loader.InstallRequest{
		BaseVersion:   opts.BaseVersion,
		LoaderVersion: loaderVersion,
		GameDir:       gameDir,
		Progress:      opts.Progress,
	})
	if err != nil {
		return nil, err
	}

	rec := &domain.InstalledLoader{
		GameDir:       gameDir,
		VersionID:     versionID,
		Variant:       opts.Variant,
		BaseVersion:   opts.BaseVersion,
		LoaderVersion: loaderVersion,
		InstalledAt:   time.Now(),
	}
	if opts.Variant != domain.VariantVanilla {
		if err := s.db.SaveInstalledLoader(rec); err != nil {
			s.logger.Warn("failed to record install", "version_id", versionID, "error", err)
		}
	}
	return rec, nil
}

// IsInstalled reports whether the combination's profile exists
func (s *Service) IsInstalled(variant domain.LoaderVariant, baseVersion, loaderVersion, gameDir string) bool {
	if abs, err := filepath.Abs(gameDir); err == nil {
		gameDir = abs
	}
	return s.manager.IsInstalled(variant, baseVersion, loaderVersion, gameDir)
}

// InstallStatus describes one loader combination in a game directory
type InstallStatus struct {
	Variant   domain.LoaderVariant `json:"variant"`
	VersionID string               `json:"version_id,omitempty"`
	Installed bool                 `json:"installed"`
	Degraded  bool                 `json:"degraded"` // NeoForge fallback profile that runs vanilla
}

// Status reports whether a combination is installed and, for NeoForge,
// whether the install fell back to a vanilla profile. A loader variant
// without a loader version is an error.
func (s *Service) Status(variant domain.LoaderVariant, baseVersion, loaderVersion, gameDir string) (*InstallStatus, error) {
	gameDir, err := filepath.Abs(gameDir)
	if err != nil {
		return nil, fmt.Errorf("resolving game dir: %w", err)
	}

	status := &InstallStatus{Variant: variant}
	versionID, err := s.manager.VersionID(variant, baseVersion, loaderVersion)
	switch {
	case errors.Is(err, domain.ErrLoaderVersionRequired):
		return nil, err
	case err == nil:
		status.VersionID = versionID
	}

	status.Installed = s.manager.IsInstalled(variant, baseVersion, loaderVersion, gameDir)
	if status.Installed && variant == domain.VariantNeoForge {
		degraded, err := loader.IsFallbackProfile(gameDir, versionID, baseVersion)
		if err != nil {
			s.logger.Warn("reading profile", "version_id", versionID, "error", err)
		}
		status.Degraded = degraded
	}
	return status, nil
}

// VersionID derives the profile id of a combination
func (s *Service) VersionID(variant domain.LoaderVariant, baseVersion, loaderVersion string) (string, error) {
	return s.manager.VersionID(variant, baseVersion, loaderVersion)
}

// Uninstall removes an installed loader profile and its record
func (s *Service) Uninstall(ctx context.Context, variant domain.LoaderVariant, baseVersion, loaderVersion, gameDir string) error {
	gameDir, err := filepath.Abs(gameDir)
	if err != nil {
		return fmt.Errorf("resolving game dir: %w", err)
	}

	versionID, err := s.manager.VersionID(variant, baseVersion, loaderVersion)
	if err != nil {
		return err
	}
	if err := s.manager.Uninstall(ctx, variant, baseVersion, loaderVersion, gameDir); err != nil {
		return err
	}
	return s.db.DeleteInstalledLoader(gameDir, versionID)
}

// ListInstalls returns recorded installs, optionally for one game directory
func (s *Service) ListInstalls(gameDir string) ([]domain.InstalledLoader, error) {
	if gameDir != "" {
		abs, err := filepath.Abs(gameDir)
		if err != nil {
			return nil, fmt.Errorf("resolving game dir: %w", err)
		}
		gameDir = abs
	}
	return s.db.GetInstalledLoaders(gameDir)
}

// CacheEntry describes the cached version list of one ecosystem
type CacheEntry struct {
	Variant  domain.LoaderVariant `json:"variant"`
	Count    int                  `json:"count"`
	CachedAt *time.Time           `json:"cached_at,omitempty"`
}

// cachedVariants returns variants, or every cached ecosystem when empty
func (s *Service) cachedVariants(variants []domain.LoaderVariant) []domain.LoaderVariant {
	if len(variants) == 0 {
		return s.cache.Ecosystems()
	}
	return variants
}

// RefreshCache refetches the version lists of the given ecosystems
func (s *Service) RefreshCache(ctx context.Context, variants ...domain.LoaderVariant) ([]CacheEntry, error) {
	var entries []CacheEntry
	for _, v := range s.cachedVariants(variants) {
		versions, err := s.cache.Versions(ctx, v, true)
		if err != nil {
			return entries, err
		}
		now := time.Now()
		if len(versions) > 0 {
			now = versions[0].CachedAt
		}
		entries = append(entries, CacheEntry{Variant: v, Count: len(versions), CachedAt: &now})
	}
	return entries, nil
}

// ClearCache drops the cached version lists of the given ecosystems
func (s *Service) ClearCache(variants ...domain.LoaderVariant) error {
	for _, v := range s.cachedVariants(variants) {
		if err := s.cache.Invalidate(v); err != nil {
			return err
		}
	}
	return nil
}

// CacheStatus reports the cached version lists
func (s *Service) CacheStatus() ([]CacheEntry, error) {
	var entries []CacheEntry
	for _, v := range s.cache.Ecosystems() {
		versions, err := s.db.GetLoaderVersions(v)
		if err != nil {
			return nil, err
		}
		entry := CacheEntry{Variant: v, Count: len(versions)}
		cachedAt, ok, err := s.cache.CachedAt(v)
		if err != nil {
			return nil, err
		}
		if ok {
			entry.CachedAt = &cachedAt
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// DetectJava lists the Java runtimes the NeoForge installer can use
func (s *Service) DetectJava(ctx context.Context) ([]javart.Installation, error) {
	return s.java.Detect(ctx)
}
