package loader

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/hyeniworld/loaderkit/internal/domain"
	"github.com/hyeniworld/loaderkit/internal/fsutil"
)

// ProfilePath returns {gameDir}/versions/{id}/{id}.json
func ProfilePath(gameDir, versionID string) string {
	return filepath.Join(gameDir, "versions", versionID, versionID+".json")
}

// profileExists reports whether the profile file is present. Only
// unexpected stat failures are errors.
func profileExists(gameDir, versionID string) (bool, error) {
	info, err := os.Stat(ProfilePath(gameDir, versionID))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("checking profile: %w", err)
	}
	return !info.IsDir(), nil
}

// writeProfile persists raw profile JSON, indented, replacing any previous
// file atomically. Writers of the same profile are serialized.
func writeProfile(gameDir, versionID string, raw []byte) (string, error) {
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return "", fmt.Errorf("formatting profile: %w", err)
	}
	buf.WriteByte('\n')

	path := ProfilePath(gameDir, versionID)
	unlock := fsutil.LockPath(path)
	defer unlock()

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", fmt.Errorf("creating version dir: %w", err)
	}
	if err := fsutil.WriteFileAtomic(path, buf.Bytes(), 0644); err != nil {
		return "", fmt.Errorf("writing profile: %w", err)
	}
	return path, nil
}

// writeProfileStruct marshals p and persists it like writeProfile
func writeProfileStruct(gameDir string, p *domain.InstallProfile) (string, error) {
	raw, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("encoding profile: %w", err)
	}
	return writeProfile(gameDir, p.ID, raw)
}

// parseProfile decodes the parts of a profile document the installers read
func parseProfile(raw []byte) (*domain.InstallProfile, error) {
	var p domain.InstallProfile
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("parsing profile: %w", err)
	}
	return &p, nil
}

// IsFallbackProfile reports whether the installed profile only launches
// baseVersion: it inherits from it directly and carries no libraries or
// arguments of its own.
func IsFallbackProfile(gameDir, versionID, baseVersion string) (bool, error) {
	raw, err := os.ReadFile(ProfilePath(gameDir, versionID))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, fmt.Errorf("%w: %s", domain.ErrVersionNotFound, versionID)
		}
		return false, fmt.Errorf("reading profile: %w", err)
	}
	p, err := parseProfile(raw)
	if err != nil {
		return false, err
	}
	return p.InheritsFrom == baseVersion &&
		len(p.Libraries) == 0 &&
		len(p.Arguments.Game) == 0 &&
		len(p.Arguments.JVM) == 0, nil
}

// removeVersion deletes {gameDir}/versions/{id}. A missing directory is
// reported as ErrVersionNotFound.
func removeVersion(gameDir, versionID string) error {
	dir := filepath.Dir(ProfilePath(gameDir, versionID))
	unlock := fsutil.LockPath(ProfilePath(gameDir, versionID))
	defer unlock()

	if _, err := os.Stat(dir); errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s", domain.ErrVersionNotFound, versionID)
	}
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("removing %s: %w", versionID, err)
	}
	return nil
}

// uninstallVersion removes a version directory. Uninstalling a version that
// is not there succeeds.
func uninstallVersion(logger *slog.Logger, gameDir, versionID string) error {
	err := removeVersion(gameDir, versionID)
	if errors.Is(err, domain.ErrVersionNotFound) {
		logger.Info("nothing to uninstall", "version_id", versionID)
		return nil
	}
	if err != nil {
		return err
	}
	logger.Info("uninstalled", "version_id", versionID)
	return nil
}
