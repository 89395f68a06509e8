// Package libroot resolves the Shared Library Root: one directory of Maven
// style artifacts reused by every game instance.
package libroot

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/hyeniworld/loaderkit/internal/fsutil"
)

// ErrOutsideRoot is returned for relative paths that escape the root
var ErrOutsideRoot = errors.New("path escapes shared library root")

// Root is the shared library directory
type Root struct {
	basePath string
}

// New creates a new library root at basePath
func New(basePath string) *Root {
	return &Root{basePath: filepath.Clean(basePath)}
}

// Dir returns the root directory
func (r *Root) Dir() string {
	return r.basePath
}

// Ensure creates the root directory if missing
func (r *Root) Ensure() error {
	if err := os.MkdirAll(r.basePath, 0755); err != nil {
		return fmt.Errorf("creating library root: %w", err)
	}
	return nil
}

// Path returns the absolute location of a Maven relative path such as
// net/fabricmc/fabric-loader/0.16.9/fabric-loader-0.16.9.jar.
func (r *Root) Path(relativePath string) (string, error) {
	rel := filepath.FromSlash(strings.TrimPrefix(relativePath, "/"))
	full := filepath.Join(r.basePath, rel)
	if full != r.basePath && !strings.HasPrefix(full, r.basePath+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", ErrOutsideRoot, relativePath)
	}
	return full, nil
}

// Exists reports whether the artifact is present. A positive size must match
// exactly; zero or negative accepts any existing file.
func (r *Root) Exists(relativePath string, size int64) bool {
	full, err := r.Path(relativePath)
	if err != nil {
		return false
	}
	got, ok := fsutil.FileSize(full)
	if !ok {
		return false
	}
	return size <= 0 || got == size
}

// ListFiles returns all artifacts under the root as slash separated
// relative paths
func (r *Root) ListFiles() ([]string, error) {
	var files []string
	err := filepath.WalkDir(r.basePath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		relPath, err := filepath.Rel(r.basePath, path)
		if err != nil {
			return err
		}
		files = append(files, filepath.ToSlash(relPath))
		return nil
	})

	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("listing libraries: %w", err)
	}

	return files, nil
}

// Size returns the total size of all artifacts
func (r *Root) Size() (int64, error) {
	var totalSize int64
	err := filepath.WalkDir(r.basePath, func(_ string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		totalSize += info.Size()
		return nil
	})

	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 0, nil
		}
		return 0, fmt.Errorf("calculating library size: %w", err)
	}

	return totalSize, nil
}
