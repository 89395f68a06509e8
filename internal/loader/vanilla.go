package loader

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hyeniworld/loaderkit/internal/domain"
)

// VanillaInstaller is the no-loader case: nothing to list or install
type VanillaInstaller struct{}

// Variant implements Installer
func (VanillaInstaller) Variant() domain.LoaderVariant { return domain.VariantVanilla }

// ListVersions implements Installer
func (VanillaInstaller) ListVersions(context.Context, string) ([]domain.LoaderVersion, error) {
	return []domain.LoaderVersion{}, nil
}

// RecommendedVersion implements Installer
func (VanillaInstaller) RecommendedVersion(context.Context, string) (string, error) {
	return "", nil
}

// Install implements Installer by returning the base version unchanged
func (VanillaInstaller) Install(_ context.Context, req InstallRequest) (string, error) {
	return req.BaseVersion, nil
}

// IsInstalled implements Installer; the base game is always there
func (VanillaInstaller) IsInstalled(string, string, string) (bool, error) {
	return true, nil
}

// Uninstall implements Installer
func (VanillaInstaller) Uninstall(context.Context, string, string, string) error {
	return nil
}

// VersionID implements Installer
func (VanillaInstaller) VersionID(baseVersion, _ string) (string, error) {
	return baseVersion, nil
}

var errForgeDeprecated = errors.New("forge is no longer supported, use neoforge instead")

// ForgeInstaller keeps the legacy forge variant recognizable while refusing
// to install it
type ForgeInstaller struct {
	logger *slog.Logger
}

// NewForgeInstaller creates the legacy forge placeholder
func NewForgeInstaller(logger *slog.Logger) *ForgeInstaller {
	if logger == nil {
		logger = slog.Default()
	}
	return &ForgeInstaller{logger: logger.With("component", "forge")}
}

// Variant implements Installer
func (f *ForgeInstaller) Variant() domain.LoaderVariant { return domain.VariantForge }

// ListVersions implements Installer
func (f *ForgeInstaller) ListVersions(context.Context, string) ([]domain.LoaderVersion, error) {
	f.logger.Warn("forge is deprecated, use neoforge instead")
	return []domain.LoaderVersion{}, nil
}

// RecommendedVersion implements Installer
func (f *ForgeInstaller) RecommendedVersion(context.Context, string) (string, error) {
	return "", nil
}

// Install implements Installer
func (f *ForgeInstaller) Install(context.Context, InstallRequest) (string, error) {
	return "", fmt.Errorf("%w: %w", domain.ErrUnsupportedVariant, errForgeDeprecated)
}

// IsInstalled implements Installer
func (f *ForgeInstaller) IsInstalled(string, string, string) (bool, error) {
	return false, nil
}

// Uninstall implements Installer
func (f *ForgeInstaller) Uninstall(context.Context, string, string, string) error {
	return nil
}

// VersionID implements Installer
func (f *ForgeInstaller) VersionID(string, string) (string, error) {
	return "", fmt.Errorf("%w: %w", domain.ErrUnsupportedVariant, errForgeDeprecated)
}
