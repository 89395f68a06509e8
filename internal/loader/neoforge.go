package loader

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/hyeniworld/loaderkit/internal/compat"
	"github.com/hyeniworld/loaderkit/internal/domain"
	"github.com/hyeniworld/loaderkit/internal/fetch"
	"github.com/hyeniworld/loaderkit/internal/javart"
	"github.com/hyeniworld/loaderkit/internal/maven"
	"github.com/hyeniworld/loaderkit/internal/process"
)

// NeoForgeMaven is the NeoForge release repository
const NeoForgeMaven = "https://maven.neoforged.net/releases"

// minJavaMajor is the Java release the NeoForge installer prefers
const minJavaMajor = 17

// NeoForgeOptions tunes the NeoForge installer
type NeoForgeOptions struct {
	MavenURL string           // Defaults to NeoForgeMaven
	Now      func() time.Time // Timestamps of fallback profiles; defaults to time.Now
}

// NeoForgeInstaller runs the official NeoForge installer. When it fails the
// install still succeeds with a vanilla-compatible fallback profile.
type NeoForgeInstaller struct {
	deps     Deps
	meta     NeoForgeMetadata
	java     JavaLocator
	runner   process.Runner
	mavenURL string
	now      func() time.Time
	logger   *slog.Logger
}

// NewNeoForgeInstaller creates a NeoForge installer
func NewNeoForgeInstaller(deps Deps, meta NeoForgeMetadata, java JavaLocator, runner process.Runner, opts NeoForgeOptions) *NeoForgeInstaller {
	n := &NeoForgeInstaller{
		deps:     deps,
		meta:     meta,
		java:     java,
		runner:   runner,
		mavenURL: opts.MavenURL,
		now:      opts.Now,
		logger:   deps.logger("neoforge"),
	}
	if n.mavenURL == "" {
		n.mavenURL = NeoForgeMaven
	}
	if n.now == nil {
		n.now = time.Now
	}
	return n
}

// Variant implements Installer
func (n *NeoForgeInstaller) Variant() domain.LoaderVariant {
	return domain.VariantNeoForge
}

// VersionID implements Installer. NeoForge ids do not carry the base
// version; the loader version already encodes it.
func (n *NeoForgeInstaller) VersionID(baseVersion, loaderVersion string) (string, error) {
	if loaderVersion == "" {
		return "", fmt.Errorf("%w: neoforge", domain.ErrLoaderVersionRequired)
	}
	return "neoforge-" + loaderVersion, nil
}

// ListVersions implements Installer. Compatibility with baseVersion is
// decided locally; the result is newest build first.
func (n *NeoForgeInstaller) ListVersions(ctx context.Context, baseVersion string) ([]domain.LoaderVersion, error) {
	all, err := n.allVersions(ctx)
	if err != nil {
		return nil, err
	}

	candidates := all
	if baseVersion != "" {
		candidates = compat.FilterNeoForge(baseVersion, all)
		n.logger.Debug("filtered versions", "base", baseVersion, "compatible", len(candidates), "total", len(all))
	}

	versions := make([]domain.LoaderVersion, 0, len(candidates))
	for _, v := range candidates {
		versions = append(versions, domain.LoaderVersion{Version: v, Stable: compat.IsStable(v)})
	}
	return markRecommended(versions, recommendNeoForge(candidates)), nil
}

// allVersions returns every known NeoForge version without duplicates,
// preferring the cache and falling back to the Maven listing.
func (n *NeoForgeInstaller) allVersions(ctx context.Context) ([]string, error) {
	if n.deps.Cache != nil {
		cached, err := n.deps.Cache.Versions(ctx, domain.VariantNeoForge, false)
		if err == nil {
			out := make([]string, 0, len(cached))
			for _, v := range cached {
				out = append(out, v.Version)
			}
			return dedupe(out), nil
		}
		n.logger.Warn("version cache unavailable, querying NeoForge Maven", "error", err)
	}

	direct, err := n.meta.NeoForgeMavenVersions(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing neoforge versions: %w", err)
	}
	return dedupe(direct), nil
}

func dedupe(values []string) []string {
	seen := make(map[string]bool, len(values))
	out := values[:0:0]
	for _, v := range values {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}

func isPrerelease(v string) bool {
	return strings.Contains(v, "beta") || strings.Contains(v, "alpha")
}

// recommendNeoForge picks the first non-beta, non-alpha version, else the
// first version
func recommendNeoForge(sorted []string) string {
	for _, v := range sorted {
		if !isPrerelease(v) {
			return v
		}
	}
	if len(sorted) > 0 {
		return sorted[0]
	}
	return ""
}

// RecommendedVersion implements Installer
func (n *NeoForgeInstaller) RecommendedVersion(ctx context.Context, baseVersion string) (string, error) {
	all, err := n.allVersions(ctx)
	if err != nil {
		return "", err
	}
	return recommendNeoForge(compat.FilterNeoForge(baseVersion, all)), nil
}

// Install implements Installer. A missing Java runtime fails the install;
// a failing installer does not.
func (n *NeoForgeInstaller) Install(ctx context.Context, req InstallRequest) (string, error) {
	versionID, err := n.VersionID(req.BaseVersion, req.LoaderVersion)
	if err != nil {
		return "", err
	}

	n.logger.Info("installing", "base", req.BaseVersion, "loader", req.LoaderVersion, "game_dir", req.GameDir)

	req.Progress.Report("Preparing NeoForge installer...", 1, 4)
	java, err := n.selectJava(ctx)
	if err != nil {
		return "", err
	}

	req.Progress.Report("Running NeoForge installer...", 2, 4)
	if err := n.runInstaller(ctx, req, java, versionID); err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		n.logger.Warn("installer failed, writing fallback profile; the game will start without NeoForge",
			"version_id", versionID, "error", err)
		req.Progress.Report("Creating fallback profile...", 2, 4)
		if err := n.writeFallbackProfile(req.GameDir, versionID, req.BaseVersion); err != nil {
			return "", err
		}
	}

	req.Progress.Report("Downloading NeoForge libraries...", 3, 4)
	if n.prefetchUniversal(ctx, req.LoaderVersion) {
		req.Progress.Report("Downloading libraries (1/1)...", 3, 4)
	}

	req.Progress.Report("NeoForge installation completed", 4, 4)
	n.logger.Info("installed", "version_id", versionID)
	return versionID, nil
}

func (n *NeoForgeInstaller) selectJava(ctx context.Context) (javart.Installation, error) {
	installs, err := n.java.Detect(ctx)
	if err != nil {
		return javart.Installation{}, fmt.Errorf("%w: detecting java: %w", domain.ErrMissingRuntime, err)
	}
	java, ok := javart.Select(installs, minJavaMajor)
	if !ok {
		return javart.Installation{}, fmt.Errorf("%w: java not found, install Java %d or newer to use NeoForge", domain.ErrMissingRuntime, minJavaMajor)
	}
	if java.MajorVersion < minJavaMajor {
		n.logger.Warn("no Java 17+ found, using older runtime", "path", java.Path, "version", java.Version)
	} else {
		n.logger.Debug("using java", "path", java.Path, "version", java.Version)
	}
	return java, nil
}

func (n *NeoForgeInstaller) installerURL(version string) string {
	return maven.URL(n.mavenURL, fmt.Sprintf("net/neoforged/neoforge/%[1]s/neoforge-%[1]s-installer.jar", version))
}

// runInstaller downloads the installer jar and runs it against gameDir.
// Success means exit code 0 and the expected profile on disk.
func (n *NeoForgeInstaller) runInstaller(ctx context.Context, req InstallRequest, java javart.Installation, versionID string) error {
	if err := ensureLauncherProfiles(req.GameDir); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrInstallerFailed, err)
	}

	installerPath := filepath.Join(req.GameDir, ".temp", fmt.Sprintf("neoforge-%s-installer.jar", req.LoaderVersion))
	if _, err := n.deps.Fetcher.Fetch(ctx, fetch.Request{
		Dest:    installerPath,
		Sources: []string{n.installerURL(req.LoaderVersion)},
	}); err != nil {
		return fmt.Errorf("%w: downloading installer: %w", domain.ErrInstallerFailed, err)
	}

	cmd := process.Command{
		Path: java.Path,
		Args: []string{"-jar", installerPath, "--install-client", req.GameDir},
		Dir:  req.GameDir,
	}
	n.logger.Debug("running installer", "command", cmd.String())

	result, err := n.runner.Run(ctx, cmd)
	if result != nil && result.Stdout != "" {
		n.logger.Debug("installer output", "stdout", tail(result.Stdout, 2000))
	}
	if err != nil {
		stderr := ""
		if result != nil {
			stderr = tail(result.Stderr, 2000)
		}
		return fmt.Errorf("%w: %w: %s", domain.ErrInstallerFailed, err, stderr)
	}

	exists, err := profileExists(req.GameDir, versionID)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrInstallerFailed, err)
	}
	if !exists {
		return fmt.Errorf("%w: installer did not create profile %s", domain.ErrInstallerFailed, versionID)
	}
	return nil
}

func tail(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return "..." + s[len(s)-n:]
}

// writeFallbackProfile persists a profile that simply launches baseVersion
func (n *NeoForgeInstaller) writeFallbackProfile(gameDir, versionID, baseVersion string) error {
	now := n.now().UTC().Format(time.RFC3339)
	profile := &domain.InstallProfile{
		ID:           versionID,
		InheritsFrom: baseVersion,
		ReleaseTime:  now,
		Time:         now,
		Type:         "release",
		MainClass:    "net.minecraft.client.main.Main",
		Arguments:    domain.Arguments{Game: []any{}, JVM: []any{}},
		Libraries:    []domain.LibraryEntry{},
	}

	path, err := writeProfileStruct(gameDir, profile)
	if err != nil {
		return fmt.Errorf("writing fallback profile: %w", err)
	}
	n.logger.Warn("fallback profile created, this profile runs vanilla", "path", path)
	return nil
}

// prefetchUniversal tries to place the universal jar in the shared library
// root. NeoForge fetches its libraries at first launch, so any failure here
// is only logged. It reports whether the jar is in place.
func (n *NeoForgeInstaller) prefetchUniversal(ctx context.Context, version string) bool {
	rel := fmt.Sprintf("net/neoforged/neoforge/%[1]s/neoforge-%[1]s-universal.jar", version)
	lib := domain.Library{
		Coordinate:   "net.neoforged:neoforge:" + version + ":universal",
		RelativePath: rel,
		Sources:      []string{maven.URL(n.mavenURL, rel)},
	}

	res, err := fetchLibrary(ctx, n.deps.Fetcher, n.deps.Libraries, lib)
	if err != nil {
		n.logger.Info("universal jar not available, it will be downloaded on first launch", "error", err)
		return false
	}
	if res.Skipped {
		n.logger.Debug("universal jar already present", "path", res.Path)
	}
	return true
}

// IsInstalled implements Installer
func (n *NeoForgeInstaller) IsInstalled(baseVersion, loaderVersion, gameDir string) (bool, error) {
	versionID, err := n.VersionID(baseVersion, loaderVersion)
	if err != nil {
		return false, err
	}
	return profileExists(gameDir, versionID)
}

// Uninstall implements Installer. Installer-created libraries stay in the
// game directory.
func (n *NeoForgeInstaller) Uninstall(ctx context.Context, baseVersion, loaderVersion, gameDir string) error {
	versionID, err := n.VersionID(baseVersion, loaderVersion)
	if err != nil {
		return err
	}
	return uninstallVersion(n.logger, gameDir, versionID)
}
