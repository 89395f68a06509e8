package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// FileName is the configuration file looked up in the config directory
const FileName = "config.yaml"

// DefaultFabricMirrors are the Maven repositories tried after a library's own URL
var DefaultFabricMirrors = []string{
	"https://maven.fabricmc.net/",
	"https://repo1.maven.org/maven2/",
	"https://libraries.minecraft.net/",
}

// Config holds global application settings
type Config struct {
	LogLevel           string         `yaml:"log_level"`
	SharedLibrariesDir string         `yaml:"shared_libraries_dir,omitempty"`
	MetadataTTL        time.Duration  `yaml:"metadata_ttl"`
	HTTPTimeout        time.Duration  `yaml:"http_timeout"`
	Fetch              FetchConfig    `yaml:"fetch"`
	Fabric             FabricConfig   `yaml:"fabric"`
	NeoForge           NeoForgeConfig `yaml:"neoforge"`
}

// FetchConfig tunes artifact downloads
type FetchConfig struct {
	MaxAttempts int           `yaml:"max_attempts"`
	Timeout     time.Duration `yaml:"timeout"`
}

// FabricConfig tunes the Fabric installer
type FabricConfig struct {
	Mirrors     []string `yaml:"mirrors"`
	MaxParallel int      `yaml:"max_parallel"`
}

// NeoForgeConfig tunes the NeoForge installer
type NeoForgeConfig struct {
	InstallerTimeout time.Duration `yaml:"installer_timeout"`
	JavaPath         string        `yaml:"java_path,omitempty"`
}

// Default returns the configuration used when no file exists
func Default() *Config {
	return &Config{
		LogLevel:    "info",
		MetadataTTL: 6 * time.Hour,
		HTTPTimeout: 30 * time.Second,
		Fetch: FetchConfig{
			MaxAttempts: 3,
		},
		Fabric: FabricConfig{
			Mirrors: append([]string(nil), DefaultFabricMirrors...),
		},
	}
}

// Load reads configuration from the given directory
func Load(configDir string) (*Config, error) {
	return LoadFile(filepath.Join(configDir, FileName))
}

// LoadFile reads configuration from an explicit file path. A missing file
// yields the defaults.
func LoadFile(configPath string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil // Return defaults
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate rejects values no component can work with
func (c *Config) Validate() error {
	switch strings.ToLower(c.LogLevel) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("invalid log_level %q", c.LogLevel)
	}
	if c.MetadataTTL < 0 {
		return errors.New("metadata_ttl must not be negative")
	}
	if c.HTTPTimeout < 0 {
		return errors.New("http_timeout must not be negative")
	}
	if c.Fetch.MaxAttempts < 0 {
		return errors.New("fetch.max_attempts must not be negative")
	}
	if c.Fetch.Timeout < 0 {
		return errors.New("fetch.timeout must not be negative")
	}
	if c.Fabric.MaxParallel < 0 {
		return errors.New("fabric.max_parallel must not be negative")
	}
	if c.NeoForge.InstallerTimeout < 0 {
		return errors.New("neoforge.installer_timeout must not be negative")
	}
	return nil
}

// LibrariesDir resolves the Shared Library Root, defaulting under dataDir
func (c *Config) LibrariesDir(dataDir string) string {
	if c.SharedLibrariesDir != "" {
		return expandHome(c.SharedLibrariesDir)
	}
	return filepath.Join(dataDir, "shared", "libraries")
}

// Save writes configuration to the given directory
func (c *Config) Save(configDir string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	configPath := filepath.Join(configDir, FileName)
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}
