// Package config loads loaderkit settings from YAML.
package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
)

// ResolvePath turns the --config flag value into a config file path.
// A directory (existing or not) resolves to its config.yaml; anything with a
// YAML extension is treated as the file itself and must exist.
func ResolvePath(flag string) (string, error) {
	if flag == "" {
		return "", errors.New("config path cannot be empty")
	}

	path := expandHome(flag)
	if !filepath.IsAbs(path) {
		abs, err := filepath.Abs(path)
		if err != nil {
			return "", err
		}
		path = abs
	}

	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".yaml" && ext != ".yml" {
		info, err := os.Stat(path)
		if err == nil && !info.IsDir() {
			return "", errors.New("config file must have .yaml or .yml extension")
		}
		return filepath.Join(path, FileName), nil
	}

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", errors.New("config file does not exist")
		}
		return "", err
	}

	if info.IsDir() {
		return "", errors.New("config path is a directory, not a file")
	}

	return path, nil
}
