// Package javart finds Java runtimes installed on the host.
package javart

import (
	"context"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"runtime"
	"strconv"
	"strings"

	"github.com/hyeniworld/loaderkit/internal/process"
)

// Installation is one detected Java runtime
type Installation struct {
	Path         string `json:"path"`
	Version      string `json:"version"`
	MajorVersion int    `json:"major_version"`
	Vendor       string `json:"vendor,omitempty"`
	Architecture string `json:"architecture"`
}

// Locator detects Java installations
type Locator struct {
	runner       process.Runner
	explicitPath string
	searchDirs   []string
	getenv       func(string) string
	lookPath     func(string) (string, error)
	logger       *slog.Logger
}

// Option configures a Locator
type Option func(*Locator)

// WithExplicitPath makes the locator report only the given java binary
func WithExplicitPath(path string) Option {
	return func(l *Locator) { l.explicitPath = path }
}

// WithSearchDirs replaces the well-known JVM parent directories
func WithSearchDirs(dirs ...string) Option {
	return func(l *Locator) { l.searchDirs = dirs }
}

// WithEnv replaces environment lookup (JAVA_HOME) and PATH resolution
func WithEnv(getenv func(string) string, lookPath func(string) (string, error)) Option {
	return func(l *Locator) {
		l.getenv = getenv
		l.lookPath = lookPath
	}
}

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) Option {
	return func(l *Locator) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// NewLocator creates a Locator that probes candidates through runner
func NewLocator(runner process.Runner, opts ...Option) *Locator {
	l := &Locator{
		runner:     runner,
		searchDirs: defaultSearchDirs(),
		getenv:     os.Getenv,
		lookPath:   exec.LookPath,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	l.logger = l.logger.With("component", "javart")
	return l
}

func defaultSearchDirs() []string {
	home, _ := os.UserHomeDir()
	switch runtime.GOOS {
	case "darwin":
		return []string{
			"/Library/Java/JavaVirtualMachines",
			filepath.Join(home, "Library/Java/JavaVirtualMachines"),
		}
	case "windows":
		return []string{
			`C:\Program Files\Java`,
			`C:\Program Files\Eclipse Adoptium`,
			`C:\Program Files\Microsoft`,
			`C:\Program Files\Zulu`,
		}
	default:
		return []string{
			"/usr/lib/jvm",
			"/usr/java",
			"/opt/java",
			filepath.Join(home, ".jdks"),
		}
	}
}

func javaBinary() string {
	if runtime.GOOS == "windows" {
		return "java.exe"
	}
	return "java"
}

// Detect returns every runtime that answers `java -version`, in discovery
// order: explicit path, JAVA_HOME, PATH, then well-known directories.
func (l *Locator) Detect(ctx context.Context) ([]Installation, error) {
	var installs []Installation
	seen := make(map[string]bool)

	for _, candidate := range l.candidates() {
		key := candidate
		if resolved, err := filepath.EvalSymlinks(candidate); err == nil {
			key = resolved
		}
		if seen[key] {
			continue
		}
		seen[key] = true

		inst, err := l.probe(ctx, candidate)
		if err != nil {
			l.logger.Debug("skipping java candidate", "path", candidate, "error", err)
			continue
		}
		installs = append(installs, inst)

		if ctx.Err() != nil {
			return installs, ctx.Err()
		}
	}

	return installs, nil
}

func (l *Locator) candidates() []string {
	if l.explicitPath != "" {
		return []string{l.explicitPath}
	}

	var paths []string
	if home := l.getenv("JAVA_HOME"); home != "" {
		paths = append(paths, filepath.Join(home, "bin", javaBinary()))
	}
	if p, err := l.lookPath(javaBinary()); err == nil {
		paths = append(paths, p)
	}

	for _, dir := range l.searchDirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, e := range entries {
			if !e.IsDir() {
				continue
			}
			for _, rel := range []string{"bin", filepath.Join("Contents", "Home", "bin")} {
				p := filepath.Join(dir, e.Name(), rel, javaBinary())
				if _, err := os.Stat(p); err == nil {
					paths = append(paths, p)
				}
			}
		}
	}
	return paths
}

func (l *Locator) probe(ctx context.Context, javaPath string) (Installation, error) {
	// java -version prints to stderr
	result, err := l.runner.Run(ctx, process.Command{Path: javaPath, Args: []string{"-version"}})
	if err != nil {
		return Installation{}, err
	}

	version, vendor, ok := ParseVersionOutput(result.Stderr + "\n" + result.Stdout)
	if !ok {
		return Installation{}, errUnparseable
	}

	return Installation{
		Path:         javaPath,
		Version:      version,
		MajorVersion: MajorVersion(version),
		Vendor:       vendor,
		Architecture: parseArchitecture(result.Stderr, runtime.GOARCH),
	}, nil
}

type parseError string

func (e parseError) Error() string { return string(e) }

const errUnparseable = parseError("unrecognized java -version output")

var versionPattern = regexp.MustCompile(`version "([^"]+)"`)

// ParseVersionOutput extracts the quoted version and the runtime vendor line
// from `java -version` output.
func ParseVersionOutput(out string) (version, vendor string, ok bool) {
	m := versionPattern.FindStringSubmatch(out)
	if m == nil {
		return "", "", false
	}

	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) > 1 {
		vendor = strings.TrimSpace(lines[1])
		if i := strings.Index(vendor, " Runtime Environment"); i > 0 {
			vendor = vendor[:i]
		}
	}
	return m[1], vendor, true
}

// MajorVersion maps "1.8.0_292" to 8 and "17.0.2" to 17
func MajorVersion(version string) int {
	parts := strings.FieldsFunc(version, func(r rune) bool {
		return r == '.' || r == '_' || r == '-' || r == '+'
	})
	if len(parts) == 0 {
		return 0
	}
	idx := 0
	if parts[0] == "1" && len(parts) > 1 {
		idx = 1
	}
	n, err := strconv.Atoi(parts[idx])
	if err != nil {
		return 0
	}
	return n
}

func parseArchitecture(out, fallback string) string {
	switch {
	case strings.Contains(out, "aarch64"):
		return "arm64"
	case strings.Contains(out, "64-Bit"):
		return "x64"
	}
	return fallback
}

// Select returns the first installation with at least minMajor, or the
// first installation overall. ok is false when installs is empty.
func Select(installs []Installation, minMajor int) (Installation, bool) {
	if len(installs) == 0 {
		return Installation{}, false
	}
	for _, inst := range installs {
		if inst.MajorVersion >= minMajor {
			return inst, true
		}
	}
	return installs[0], true
}
