// Package loader installs mod loader runtimes (Fabric, NeoForge, Quilt) on
// top of a base game version. Each ecosystem is an Installer; the Manager
// dispatches to them through a Registry.
package loader

import (
	"context"
	"log/slog"

	"github.com/hyeniworld/loaderkit/internal/domain"
	"github.com/hyeniworld/loaderkit/internal/fetch"
	"github.com/hyeniworld/loaderkit/internal/javart"
	"github.com/hyeniworld/loaderkit/internal/storage/libroot"
)

// InstallRequest names one (base, loader) combination to install into a
// game directory
type InstallRequest struct {
	BaseVersion   string
	LoaderVersion string
	GameDir       string
	Progress      domain.ProgressFunc // Optional
}

// Installer is one loader ecosystem
type Installer interface {
	// Identity
	Variant() domain.LoaderVariant

	// Discovery. An empty baseVersion lists every known version.
	ListVersions(ctx context.Context, baseVersion string) ([]domain.LoaderVersion, error)
	// RecommendedVersion returns "" when there is nothing to recommend
	RecommendedVersion(ctx context.Context, baseVersion string) (string, error)

	// Installation
	Install(ctx context.Context, req InstallRequest) (string, error)
	IsInstalled(baseVersion, loaderVersion, gameDir string) (bool, error)
	Uninstall(ctx context.Context, baseVersion, loaderVersion, gameDir string) error

	// VersionID derives the profile id without touching disk
	VersionID(baseVersion, loaderVersion string) (string, error)
}

// ArtifactFetcher materializes one artifact from candidate URLs
type ArtifactFetcher interface {
	Fetch(ctx context.Context, req fetch.Request) (*fetch.Result, error)
}

// VersionCache is the metadata cache consulted for "all versions" listings
type VersionCache interface {
	Versions(ctx context.Context, ecosystem domain.LoaderVariant, forceRefresh bool) ([]domain.CachedVersion, error)
}

// JavaLocator finds installed Java runtimes
type JavaLocator interface {
	Detect(ctx context.Context) ([]javart.Installation, error)
}

// FabricMetadata is the slice of the Fabric Meta API the installer uses
type FabricMetadata interface {
	FabricLoaders(ctx context.Context) ([]domain.CachedVersion, error)
	FabricLoadersForGame(ctx context.Context, gameVersion string) ([]domain.LoaderVersion, error)
	FabricProfile(ctx context.Context, gameVersion, loaderVersion string) ([]byte, error)
}

// QuiltMetadata is the slice of the Quilt Meta API the installer uses
type QuiltMetadata interface {
	QuiltLoadersForGame(ctx context.Context, gameVersion string) ([]string, error)
	QuiltProfile(ctx context.Context, gameVersion, loaderVersion string) ([]byte, error)
}

// NeoForgeMetadata is the direct NeoForge listing used when the cache fails
type NeoForgeMetadata interface {
	NeoForgeMavenVersions(ctx context.Context) ([]string, error)
}

// Deps are the collaborators shared by the library-fetching installers
type Deps struct {
	Cache     VersionCache    // Optional; listings go straight to metadata without it
	Fetcher   ArtifactFetcher // Required
	Libraries *libroot.Root   // Shared library root
	Logger    *slog.Logger    // Optional
}

func (d Deps) logger(component string) *slog.Logger {
	l := d.Logger
	if l == nil {
		l = slog.Default()
	}
	return l.With("component", component)
}

func toDescriptors(versions []domain.CachedVersion) []domain.LoaderVersion {
	out := make([]domain.LoaderVersion, 0, len(versions))
	for _, v := range versions {
		out = append(out, domain.LoaderVersion{Version: v.Version, Stable: v.Stable})
	}
	return out
}

// markRecommended flags the entry whose version equals recommended
func markRecommended(versions []domain.LoaderVersion, recommended string) []domain.LoaderVersion {
	if recommended == "" {
		return versions
	}
	for i := range versions {
		if versions[i].Version == recommended {
			versions[i].Recommended = true
			break
		}
	}
	return versions
}
