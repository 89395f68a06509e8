package loader

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hyeniworld/loaderkit/internal/domain"
)

// QuiltReleaseRepository hosts artifacts for libraries given only by name
const QuiltReleaseRepository = "https://maven.quiltmc.org/repository/release/"

// QuiltOptions tunes the Quilt installer
type QuiltOptions struct {
	Repository string // Defaults to QuiltReleaseRepository
}

// QuiltInstaller installs Quilt loader profiles and their libraries
type QuiltInstaller struct {
	deps   Deps
	meta   QuiltMetadata
	repo   string
	logger *slog.Logger
}

// NewQuiltInstaller creates a Quilt installer
func NewQuiltInstaller(deps Deps, meta QuiltMetadata, opts QuiltOptions) *QuiltInstaller {
	repo := opts.Repository
	if repo == "" {
		repo = QuiltReleaseRepository
	}
	return &QuiltInstaller{
		deps:   deps,
		meta:   meta,
		repo:   repo,
		logger: deps.logger("quilt"),
	}
}

// Variant implements Installer
func (q *QuiltInstaller) Variant() domain.LoaderVariant {
	return domain.VariantQuilt
}

// VersionID implements Installer
func (q *QuiltInstaller) VersionID(baseVersion, loaderVersion string) (string, error) {
	if loaderVersion == "" {
		return "", fmt.Errorf("%w: quilt", domain.ErrLoaderVersionRequired)
	}
	return fmt.Sprintf("quilt-loader-%s-%s", loaderVersion, baseVersion), nil
}

// ListVersions implements Installer. The full listing only comes from the
// version cache; the per-game listing is a direct Quilt Meta call. Quilt
// publishes no stability flag, so every version is stable.
func (q *QuiltInstaller) ListVersions(ctx context.Context, baseVersion string) ([]domain.LoaderVersion, error) {
	var versions []domain.LoaderVersion
	if baseVersion == "" {
		if q.deps.Cache == nil {
			return nil, fmt.Errorf("%w: no quilt version cache configured", domain.ErrMetadataUnavailable)
		}
		cached, err := q.deps.Cache.Versions(ctx, domain.VariantQuilt, false)
		if err != nil {
			return nil, fmt.Errorf("listing quilt loaders: %w", err)
		}
		versions = toDescriptors(cached)
	} else {
		names, err := q.meta.QuiltLoadersForGame(ctx, baseVersion)
		if err != nil {
			return nil, fmt.Errorf("listing quilt loaders for %s: %w", baseVersion, err)
		}
		versions = make([]domain.LoaderVersion, 0, len(names))
		for _, name := range names {
			versions = append(versions, domain.LoaderVersion{Version: name, Stable: true})
		}
	}

	if len(versions) > 0 {
		versions[0].Recommended = true
	}
	return versions, nil
}

// RecommendedVersion implements Installer: the most recent entry
func (q *QuiltInstaller) RecommendedVersion(ctx context.Context, baseVersion string) (string, error) {
	versions, err := q.ListVersions(ctx, baseVersion)
	if err != nil {
		return "", err
	}
	if len(versions) == 0 {
		return "", nil
	}
	return versions[0].Version, nil
}

// Install implements Installer. Libraries are fetched one at a time and
// every library is attempted; failures are counted and reported together
// after the profile has already been persisted.
func (q *QuiltInstaller) Install(ctx context.Context, req InstallRequest) (string, error) {
	versionID, err := q.VersionID(req.BaseVersion, req.LoaderVersion)
	if err != nil {
		return "", err
	}

	q.logger.Info("installing", "base", req.BaseVersion, "loader", req.LoaderVersion, "game_dir", req.GameDir)

	req.Progress.Report("Fetching Quilt profile...", 1, 4)
	raw, err := q.meta.QuiltProfile(ctx, req.BaseVersion, req.LoaderVersion)
	if err != nil {
		return "", fmt.Errorf("downloading quilt profile: %w", err)
	}
	profile, err := parseProfile(raw)
	if err != nil {
		return "", err
	}
	path, err := writeProfile(req.GameDir, versionID, raw)
	if err != nil {
		return "", err
	}
	q.logger.Debug("profile saved", "path", path)

	req.Progress.Report("Downloading Quilt libraries...", 2, 4)
	if err := q.fetchLibraries(ctx, profile.Libraries, req.Progress); err != nil {
		return "", err
	}

	req.Progress.Report("Quilt installation completed", 4, 4)
	q.logger.Info("installed", "version_id", versionID)
	return versionID, nil
}

func (q *QuiltInstaller) fetchLibraries(ctx context.Context, entries []domain.LibraryEntry, progress domain.ProgressFunc) error {
	total := len(entries)
	completed, skipped, failed := 0, 0, 0

	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}

		lib, err := resolveLibrary(entry, []string{q.repo})
		if err != nil {
			q.logger.Warn("skipping library", "library", entry.Name, "error", err)
			continue
		}

		res, err := fetchLibrary(ctx, q.deps.Fetcher, q.deps.Libraries, lib)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			failed++
			q.logger.Error("failed to download library", "library", lib.RelativePath, "error", err)
			continue
		}

		if res.Skipped {
			skipped++
		}
		completed++
		progress.Report(fmt.Sprintf("Downloading libraries (%d/%d)...", completed, total), 2, 4)
	}

	q.logger.Info("library download summary", "completed", completed, "skipped", skipped, "failed", failed)

	if failed > 0 {
		return fmt.Errorf("%w: failed to download %d Quilt libraries", domain.ErrArtifactUnreachable, failed)
	}
	return nil
}

// IsInstalled implements Installer
func (q *QuiltInstaller) IsInstalled(baseVersion, loaderVersion, gameDir string) (bool, error) {
	versionID, err := q.VersionID(baseVersion, loaderVersion)
	if err != nil {
		return false, err
	}
	return profileExists(gameDir, versionID)
}

// Uninstall implements Installer
func (q *QuiltInstaller) Uninstall(ctx context.Context, baseVersion, loaderVersion, gameDir string) error {
	versionID, err := q.VersionID(baseVersion, loaderVersion)
	if err != nil {
		return err
	}
	return uninstallVersion(q.logger, gameDir, versionID)
}
