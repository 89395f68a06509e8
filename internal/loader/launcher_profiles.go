package loader

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/buger/jsonparser"
	"github.com/google/uuid"

	"github.com/hyeniworld/loaderkit/internal/fsutil"
)

// LauncherProfilesFile is required by the NeoForge installer in the target
// game directory
const LauncherProfilesFile = "launcher_profiles.json"

type launcherProfiles struct {
	Profiles        map[string]any  `json:"profiles"`
	SelectedProfile string          `json:"selectedProfile"`
	ClientToken     string          `json:"clientToken"`
	LauncherVersion launcherVersion `json:"launcherVersion"`
}

type launcherVersion struct {
	Name   string `json:"name"`
	Format int    `json:"format"`
}

// ensureLauncherProfiles creates launcher_profiles.json when it is missing
// and adds an empty "profiles" object to an existing file that lacks one.
// Other keys of an existing file are kept as they are.
func ensureLauncherProfiles(gameDir string) error {
	path := filepath.Join(gameDir, LauncherProfilesFile)
	unlock := fsutil.LockPath(path)
	defer unlock()

	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("reading %s: %w", LauncherProfilesFile, err)
		}
		return createLauncherProfiles(path)
	}

	if !json.Valid(data) {
		return fmt.Errorf("parsing %s: invalid JSON", LauncherProfilesFile)
	}

	_, _, _, err = jsonparser.Get(data, "profiles")
	if err == nil {
		return nil
	}
	if !errors.Is(err, jsonparser.KeyPathNotFoundError) {
		return fmt.Errorf("parsing %s: %w", LauncherProfilesFile, err)
	}

	updated, err := jsonparser.Set(data, []byte("{}"), "profiles")
	if err != nil {
		return fmt.Errorf("updating %s: %w", LauncherProfilesFile, err)
	}
	if err := fsutil.WriteFileAtomic(path, updated, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", LauncherProfilesFile, err)
	}
	return nil
}

func createLauncherProfiles(path string) error {
	data, err := json.MarshalIndent(launcherProfiles{
		Profiles:        map[string]any{},
		SelectedProfile: "(Default)",
		ClientToken:     uuid.NewString(),
		LauncherVersion: launcherVersion{Name: "loaderkit", Format: 21},
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding %s: %w", LauncherProfilesFile, err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating game dir: %w", err)
	}
	if err := fsutil.WriteFileAtomic(path, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", LauncherProfilesFile, err)
	}
	return nil
}
