package loader

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/hyeniworld/loaderkit/internal/domain"
)

// FabricOptions tunes the Fabric installer
type FabricOptions struct {
	Mirrors     []string // Fallback Maven repositories, tried after a library's own URL
	MaxParallel int      // Cap on concurrent library fetches; 0 is unbounded
}

// FabricInstaller installs Fabric loader profiles and their libraries
type FabricInstaller struct {
	deps   Deps
	meta   FabricMetadata
	opts   FabricOptions
	logger *slog.Logger
}

// NewFabricInstaller creates a Fabric installer
func NewFabricInstaller(deps Deps, meta FabricMetadata, opts FabricOptions) *FabricInstaller {
	return &FabricInstaller{
		deps:   deps,
		meta:   meta,
		opts:   opts,
		logger: deps.logger("fabric"),
	}
}

// Variant implements Installer
func (f *FabricInstaller) Variant() domain.LoaderVariant {
	return domain.VariantFabric
}

// VersionID implements Installer
func (f *FabricInstaller) VersionID(baseVersion, loaderVersion string) (string, error) {
	if loaderVersion == "" {
		return "", fmt.Errorf("%w: fabric", domain.ErrLoaderVersionRequired)
	}
	return fmt.Sprintf("fabric-loader-%s-%s", loaderVersion, baseVersion), nil
}

// ListVersions implements Installer. Without a base version the cached
// listing is used, falling back to Fabric Meta; with one, the per-game
// endpoint is queried directly.
func (f *FabricInstaller) ListVersions(ctx context.Context, baseVersion string) ([]domain.LoaderVersion, error) {
	var versions []domain.LoaderVersion
	if baseVersion != "" {
		v, err := f.meta.FabricLoadersForGame(ctx, baseVersion)
		if err != nil {
			return nil, fmt.Errorf("listing fabric loaders for %s: %w", baseVersion, err)
		}
		versions = v
	} else {
		v, err := f.allVersions(ctx)
		if err != nil {
			return nil, err
		}
		versions = v
	}
	return markRecommended(versions, firstStable(versions)), nil
}

func (f *FabricInstaller) allVersions(ctx context.Context) ([]domain.LoaderVersion, error) {
	if f.deps.Cache != nil {
		cached, err := f.deps.Cache.Versions(ctx, domain.VariantFabric, false)
		if err == nil {
			return toDescriptors(cached), nil
		}
		f.logger.Warn("version cache unavailable, querying Fabric Meta", "error", err)
	}

	direct, err := f.meta.FabricLoaders(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing fabric loaders: %w", err)
	}
	return toDescriptors(direct), nil
}

// RecommendedVersion implements Installer: the first stable entry, else the
// first entry.
func (f *FabricInstaller) RecommendedVersion(ctx context.Context, baseVersion string) (string, error) {
	versions, err := f.ListVersions(ctx, baseVersion)
	if err != nil {
		return "", err
	}
	return firstStable(versions), nil
}

func firstStable(versions []domain.LoaderVersion) string {
	for _, v := range versions {
		if v.Stable {
			return v.Version
		}
	}
	if len(versions) > 0 {
		return versions[0].Version
	}
	return ""
}

// Install implements Installer. The profile is persisted first; libraries
// are then fetched concurrently and the first library to exhaust every
// source cancels the rest and fails the install.
func (f *FabricInstaller) Install(ctx context.Context, req InstallRequest) (string, error) {
	versionID, err := f.VersionID(req.BaseVersion, req.LoaderVersion)
	if err != nil {
		return "", err
	}

	f.logger.Info("installing", "base", req.BaseVersion, "loader", req.LoaderVersion, "game_dir", req.GameDir)

	req.Progress.Report("Downloading Fabric profile...", 1, 3)
	raw, err := f.meta.FabricProfile(ctx, req.BaseVersion, req.LoaderVersion)
	if err != nil {
		return "", fmt.Errorf("downloading fabric profile: %w", err)
	}
	profile, err := parseProfile(raw)
	if err != nil {
		return "", err
	}
	path, err := writeProfile(req.GameDir, versionID, raw)
	if err != nil {
		return "", err
	}
	f.logger.Debug("profile saved", "path", path)

	req.Progress.Report("Downloading Fabric libraries...", 2, 3)
	if err := f.fetchLibraries(ctx, profile.Libraries, req.Progress); err != nil {
		return "", err
	}

	req.Progress.Report("Fabric installation completed", 3, 3)
	f.logger.Info("installed", "version_id", versionID)
	return versionID, nil
}

func (f *FabricInstaller) fetchLibraries(ctx context.Context, entries []domain.LibraryEntry, progress domain.ProgressFunc) error {
	libs := make([]domain.Library, 0, len(entries))
	for _, entry := range entries {
		lib, err := resolveLibrary(entry, f.opts.Mirrors)
		if err != nil {
			return fmt.Errorf("%w: fabric library %q: %w", domain.ErrArtifactUnreachable, entry.Name, err)
		}
		libs = append(libs, lib)
	}

	g, gctx := errgroup.WithContext(ctx)
	if f.opts.MaxParallel > 0 {
		g.SetLimit(f.opts.MaxParallel)
	}

	var mu sync.Mutex
	done := 0
	total := len(libs)

	for _, lib := range libs {
		g.Go(func() error {
			res, err := fetchLibrary(gctx, f.deps.Fetcher, f.deps.Libraries, lib)
			if err != nil {
				return fmt.Errorf("failed to download fabric library %s: %w", lib.Coordinate, err)
			}
			if res.Skipped {
				f.logger.Debug("library already present", "library", lib.Coordinate)
			}

			mu.Lock()
			done++
			progress.Report(fmt.Sprintf("Downloading libraries (%d/%d)...", done, total), 2, 3)
			mu.Unlock()
			return nil
		})
	}

	return g.Wait()
}

// IsInstalled implements Installer
func (f *FabricInstaller) IsInstalled(baseVersion, loaderVersion, gameDir string) (bool, error) {
	versionID, err := f.VersionID(baseVersion, loaderVersion)
	if err != nil {
		return false, err
	}
	return profileExists(gameDir, versionID)
}

// Uninstall implements Installer. Shared libraries are left in place.
func (f *FabricInstaller) Uninstall(ctx context.Context, baseVersion, loaderVersion, gameDir string) error {
	versionID, err := f.VersionID(baseVersion, loaderVersion)
	if err != nil {
		return err
	}
	return uninstallVersion(f.logger, gameDir, versionID)
}
