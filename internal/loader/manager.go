package loader

import (
	"context"
	"log/slog"

	"github.com/hyeniworld/loaderkit/internal/domain"
)

// Manager is the single entry point for loader operations. It owns no
// installation logic; every call is routed to the registered Installer.
type Manager struct {
	registry *Registry
	logger   *slog.Logger
}

// NewManager creates a manager over registry
func NewManager(registry *Registry, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		registry: registry,
		logger:   logger.With("component", "manager"),
	}
}

// Registry returns the installer registry
func (m *Manager) Registry() *Registry {
	return m.registry
}

// ListVersions lists loader versions, optionally only those compatible with
// baseVersion. Unstable versions are dropped unless includeUnstable is set.
func (m *Manager) ListVersions(ctx context.Context, variant domain.LoaderVariant, baseVersion string, includeUnstable bool) ([]domain.LoaderVersion, error) {
	inst, err := m.installer(variant)
	if err != nil {
		return nil, err
	}

	versions, err := inst.ListVersions(ctx, baseVersion)
	if err != nil {
		m.logger.Error("listing versions failed", "variant", variant, "base", baseVersion, "error", err)
		return nil, err
	}

	if includeUnstable {
		return versions, nil
	}
	stable := make([]domain.LoaderVersion, 0, len(versions))
	for _, v := range versions {
		if v.Stable {
			stable = append(stable, v)
		}
	}
	return stable, nil
}

// RecommendedVersion returns the suggested loader version for baseVersion,
// or "" when there is none
func (m *Manager) RecommendedVersion(ctx context.Context, variant domain.LoaderVariant, baseVersion string) (string, error) {
	inst, err := m.installer(variant)
	if err != nil {
		return "", err
	}

	version, err := inst.RecommendedVersion(ctx, baseVersion)
	if err != nil {
		m.logger.Error("recommending version failed", "variant", variant, "base", baseVersion, "error", err)
		return "", err
	}
	return version, nil
}

// Install installs a loader and returns the installed version id
func (m *Manager) Install(ctx context.Context, variant domain.LoaderVariant, req InstallRequest) (string, error) {
	inst, err := m.installer(variant)
	if err != nil {
		return "", err
	}

	versionID, err := inst.Install(ctx, req)
	if err != nil {
		m.logger.Error("install failed", "variant", variant, "base", req.BaseVersion, "loader", req.LoaderVersion, "error", err)
		return "", err
	}
	return versionID, nil
}

// IsInstalled reports whether the profile for the combination exists. It
// never fails; errors are logged and reported as not installed.
func (m *Manager) IsInstalled(variant domain.LoaderVariant, baseVersion, loaderVersion, gameDir string) bool {
	inst, err := m.installer(variant)
	if err != nil {
		return false
	}

	ok, err := inst.IsInstalled(baseVersion, loaderVersion, gameDir)
	if err != nil {
		m.logger.Error("install check failed", "variant", variant, "base", baseVersion, "loader", loaderVersion, "error", err)
		return false
	}
	return ok
}

// Uninstall removes the installed profile of the combination
func (m *Manager) Uninstall(ctx context.Context, variant domain.LoaderVariant, baseVersion, loaderVersion, gameDir string) error {
	inst, err := m.installer(variant)
	if err != nil {
		return err
	}

	if err := inst.Uninstall(ctx, baseVersion, loaderVersion, gameDir); err != nil {
		m.logger.Error("uninstall failed", "variant", variant, "base", baseVersion, "loader", loaderVersion, "error", err)
		return err
	}
	return nil
}

// VersionID derives the profile id of the combination without I/O
func (m *Manager) VersionID(variant domain.LoaderVariant, baseVersion, loaderVersion string) (string, error) {
	inst, err := m.installer(variant)
	if err != nil {
		return "", err
	}
	return inst.VersionID(baseVersion, loaderVersion)
}

func (m *Manager) installer(variant domain.LoaderVariant) (Installer, error) {
	inst, err := m.registry.Get(variant)
	if err != nil {
		m.logger.Error("unsupported loader type", "variant", variant)
		return nil, err
	}
	return inst, nil
}
