package loader_test

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hyeniworld/loaderkit/internal/domain"
	"github.com/hyeniworld/loaderkit/internal/javart"
	"github.com/hyeniworld/loaderkit/internal/loader"
	"github.com/hyeniworld/loaderkit/internal/process"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	neoInstallerPath = "/releases/net/neoforged/neoforge/21.1.72/neoforge-21.1.72-installer.jar"
	neoUniversalPath = "/releases/net/neoforged/neoforge/21.1.72/neoforge-21.1.72-universal.jar"
)

var java21 = javart.Installation{Path: "/opt/jdk-21/bin/java", Version: "21.0.4", MajorVersion: 21}

type neoFixture struct {
	srv    *artifactServer
	runner *process.FakeRunner
	inst   *loader.NeoForgeInstaller
	libDir string
}

func newNeoForge(t *testing.T, java *fakeJava, cache loader.VersionCache, meta *fakeMeta) *neoFixture {
	t.Helper()
	srv := newArtifactServer(t)
	srv.put(neoInstallerPath, "installer-jar")
	deps, libs := newDeps(t, srv, cache)
	if meta == nil {
		meta = &fakeMeta{}
	}
	runner := &process.FakeRunner{}
	fixed := time.Date(2024, 10, 1, 12, 0, 0, 0, time.UTC)
	inst := loader.NewNeoForgeInstaller(deps, meta, java, runner, loader.NeoForgeOptions{
		MavenURL: srv.URL + "/releases",
		Now:      func() time.Time { return fixed },
	})
	return &neoFixture{srv: srv, runner: runner, inst: inst, libDir: libs.Dir()}
}

// installerWritesProfile simulates a successful NeoForge installer run
func installerWritesProfile(gameDir string) func(context.Context, process.Command) (*process.Result, error) {
	return func(ctx context.Context, cmd process.Command) (*process.Result, error) {
		path := loader.ProfilePath(gameDir, "neoforge-21.1.72")
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, err
		}
		if err := os.WriteFile(path, []byte(`{"id":"neoforge-21.1.72","mainClass":"cpw.mods.bootstraplauncher.BootstrapLauncher"}`), 0644); err != nil {
			return nil, err
		}
		return &process.Result{Stdout: "The client installed successfully"}, nil
	}
}

func readProfile(t *testing.T, gameDir, id string) map[string]any {
	t.Helper()
	data, err := os.ReadFile(loader.ProfilePath(gameDir, id))
	require.NoError(t, err)
	var out map[string]any
	require.NoError(t, json.Unmarshal(data, &out))
	return out
}

func TestNeoForge_ListVersionsFiltersByBase(t *testing.T) {
	cache := &fakeCache{versions: map[domain.LoaderVariant][]domain.CachedVersion{
		domain.VariantNeoForge: cached("21.1.71", "20.4.237-beta", "21.1.72"),
	}}
	fx := newNeoForge(t, &fakeJava{}, cache, nil)

	versions, err := fx.inst.ListVersions(context.Background(), "1.21.1")
	require.NoError(t, err)
	assert.Equal(t, []domain.LoaderVersion{
		{Version: "21.1.72", Stable: true, Recommended: true},
		{Version: "21.1.71", Stable: true},
	}, versions)

	recommended, err := fx.inst.RecommendedVersion(context.Background(), "1.21.1")
	require.NoError(t, err)
	assert.Equal(t, "21.1.72", recommended)
}

func TestNeoForge_ListVersionsIncompatibleBaseIsEmpty(t *testing.T) {
	cache := &fakeCache{versions: map[domain.LoaderVariant][]domain.CachedVersion{
		domain.VariantNeoForge: cached("21.1.72", "20.4.237-beta"),
	}}
	fx := newNeoForge(t, &fakeJava{}, cache, nil)

	versions, err := fx.inst.ListVersions(context.Background(), "1.19.2")
	require.NoError(t, err)
	assert.Empty(t, versions)

	recommended, err := fx.inst.RecommendedVersion(context.Background(), "1.19.2")
	require.NoError(t, err)
	assert.Empty(t, recommended)
}

func TestNeoForge_RecommendedPrefersNonBeta(t *testing.T) {
	cache := &fakeCache{versions: map[domain.LoaderVariant][]domain.CachedVersion{
		domain.VariantNeoForge: cached("20.4.240-beta", "20.4.237", "20.4.236-beta"),
	}}
	fx := newNeoForge(t, &fakeJava{}, cache, nil)

	recommended, err := fx.inst.RecommendedVersion(context.Background(), "1.20.4")
	require.NoError(t, err)
	assert.Equal(t, "20.4.237", recommended)

	all, err := fx.inst.ListVersions(context.Background(), "1.20.4")
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.False(t, all[0].Stable)
	assert.True(t, all[1].Recommended)
}

func TestNeoForge_ListVersionsFallsBackToMaven(t *testing.T) {
	cache := &fakeCache{err: errors.New("cache down")}
	meta := &fakeMeta{neoMaven: []string{"21.1.72", "21.1.71"}}
	fx := newNeoForge(t, &fakeJava{}, cache, meta)

	versions, err := fx.inst.ListVersions(context.Background(), "1.21.1")
	require.NoError(t, err)
	require.Len(t, versions, 2)

	meta.neoMavenErr = domain.ErrMetadataUnavailable
	_, err = fx.inst.ListVersions(context.Background(), "1.21.1")
	assert.ErrorIs(t, err, domain.ErrMetadataUnavailable)
}

func TestNeoForge_InstallRunsInstaller(t *testing.T) {
	fx := newNeoForge(t, &fakeJava{installs: []javart.Installation{java21}}, nil, nil)
	fx.srv.put(neoUniversalPath, "universal")
	gameDir := t.TempDir()
	fx.runner.Handler = installerWritesProfile(gameDir)
	progress, messages := recordProgress()

	id, err := fx.inst.Install(context.Background(), loader.InstallRequest{
		BaseVersion:   "1.21.1",
		LoaderVersion: "21.1.72",
		GameDir:       gameDir,
		Progress:      progress,
	})
	require.NoError(t, err)
	assert.Equal(t, "neoforge-21.1.72", id)

	require.Equal(t, 1, fx.runner.CallCount())
	installerJar := filepath.Join(gameDir, ".temp", "neoforge-21.1.72-installer.jar")
	assert.Equal(t, process.Command{
		Path: java21.Path,
		Args: []string{"-jar", installerJar, "--install-client", gameDir},
		Dir:  gameDir,
	}, fx.runner.Calls[0])
	assert.FileExists(t, installerJar)
	assert.FileExists(t, filepath.Join(gameDir, loader.LauncherProfilesFile))

	profile := readProfile(t, gameDir, id)
	assert.Equal(t, "cpw.mods.bootstraplauncher.BootstrapLauncher", profile["mainClass"], "installer profile kept")

	assert.FileExists(t, filepath.Join(fx.libDir, "net", "neoforged", "neoforge", "21.1.72", "neoforge-21.1.72-universal.jar"))

	msgs := messages()
	assert.Equal(t, "Preparing NeoForge installer...", msgs[0])
	assert.Equal(t, "NeoForge installation completed", msgs[len(msgs)-1])
	assert.NotContains(t, msgs, "Creating fallback profile...")
	assert.Contains(t, msgs, "Downloading libraries (1/1)...")

	fallback, err := loader.IsFallbackProfile(gameDir, id, "1.21.1")
	require.NoError(t, err)
	assert.False(t, fallback)
}

func TestNeoForge_InstallerFailureWritesFallbackProfile(t *testing.T) {
	tests := []struct {
		name    string
		handler func(context.Context, process.Command) (*process.Result, error)
	}{
		{
			name: "non-zero exit",
			handler: func(context.Context, process.Command) (*process.Result, error) {
				return &process.Result{Stderr: "boom", ExitCode: 1}, &process.ExitError{Command: "java", ExitCode: 1}
			},
		},
		{
			name: "exit zero without profile",
			handler: func(context.Context, process.Command) (*process.Result, error) {
				return &process.Result{}, nil
			},
		},
		{
			name: "spawn error",
			handler: func(context.Context, process.Command) (*process.Result, error) {
				return &process.Result{ExitCode: -1}, errors.New("exec: no such file")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fx := newNeoForge(t, &fakeJava{installs: []javart.Installation{java21}}, nil, nil)
			fx.runner.Handler = tt.handler
			gameDir := t.TempDir()

			id, err := fx.inst.Install(context.Background(), loader.InstallRequest{BaseVersion: "1.21.1", LoaderVersion: "21.1.72", GameDir: gameDir})
			require.NoError(t, err, "degraded install still succeeds")
			assert.Equal(t, "neoforge-21.1.72", id)

			profile := readProfile(t, gameDir, id)
			assert.Equal(t, "neoforge-21.1.72", profile["id"])
			assert.Equal(t, "1.21.1", profile["inheritsFrom"])
			assert.Equal(t, "release", profile["type"])
			assert.Equal(t, "net.minecraft.client.main.Main", profile["mainClass"])
			assert.Equal(t, "2024-10-01T12:00:00Z", profile["releaseTime"])
			assert.Equal(t, []any{}, profile["libraries"])
			assert.Equal(t, map[string]any{"game": []any{}, "jvm": []any{}}, profile["arguments"])

			installed, err := fx.inst.IsInstalled("1.21.1", "21.1.72", gameDir)
			require.NoError(t, err)
			assert.True(t, installed)
		})
	}
}

func TestNeoForge_InstallerDownloadFailureDegrades(t *testing.T) {
	fx := newNeoForge(t, &fakeJava{installs: []javart.Installation{java21}}, nil, nil)
	gameDir := t.TempDir()
	progress, messages := recordProgress()

	_, err := fx.inst.Install(context.Background(), loader.InstallRequest{
		BaseVersion:   "1.21.1",
		LoaderVersion: "21.1.99",
		GameDir:       gameDir,
		Progress:      progress,
	})
	require.NoError(t, err)
	assert.Zero(t, fx.runner.CallCount(), "nothing to run without an installer jar")
	assert.Equal(t, "1.21.1", readProfile(t, gameDir, "neoforge-21.1.99")["inheritsFrom"])

	fallback, err := loader.IsFallbackProfile(gameDir, "neoforge-21.1.99", "1.21.1")
	require.NoError(t, err)
	assert.True(t, fallback)

	msgs := messages()
	assert.Contains(t, msgs, "Creating fallback profile...")
	assert.NotContains(t, msgs, "Downloading libraries (1/1)...", "universal jar was not fetched")
	assert.Equal(t, "NeoForge installation completed", msgs[len(msgs)-1])
}

func TestNeoForge_UninstallMissingVersion(t *testing.T) {
	fx := newNeoForge(t, &fakeJava{}, nil, nil)
	gameDir := t.TempDir()

	assert.NoError(t, fx.inst.Uninstall(context.Background(), "1.21.1", "21.1.72", gameDir))

	_, err := loader.IsFallbackProfile(gameDir, "neoforge-21.1.72", "1.21.1")
	assert.ErrorIs(t, err, domain.ErrVersionNotFound)
}

func TestNeoForge_InstallWithoutJava(t *testing.T) {
	tests := []struct {
		name string
		java *fakeJava
	}{
		{"none found", &fakeJava{}},
		{"detection error", &fakeJava{err: errors.New("permission denied")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fx := newNeoForge(t, tt.java, nil, nil)
			gameDir := t.TempDir()

			_, err := fx.inst.Install(context.Background(), loader.InstallRequest{BaseVersion: "1.21.1", LoaderVersion: "21.1.72", GameDir: gameDir})
			assert.ErrorIs(t, err, domain.ErrMissingRuntime)
			assert.Zero(t, fx.runner.CallCount())
			assert.NoFileExists(t, loader.ProfilePath(gameDir, "neoforge-21.1.72"))
		})
	}
}

func TestNeoForge_InstallPrefersJava17(t *testing.T) {
	java8 := javart.Installation{Path: "/usr/lib/jvm/java-8/bin/java", Version: "1.8.0_292", MajorVersion: 8}
	fx := newNeoForge(t, &fakeJava{installs: []javart.Installation{java8, java21}}, nil, nil)
	gameDir := t.TempDir()
	fx.runner.Handler = installerWritesProfile(gameDir)

	_, err := fx.inst.Install(context.Background(), loader.InstallRequest{BaseVersion: "1.21.1", LoaderVersion: "21.1.72", GameDir: gameDir})
	require.NoError(t, err)
	require.Equal(t, 1, fx.runner.CallCount())
	assert.Equal(t, java21.Path, fx.runner.Calls[0].Path)
}

func TestNeoForge_InstallOldJavaStillUsed(t *testing.T) {
	java8 := javart.Installation{Path: "/usr/lib/jvm/java-8/bin/java", Version: "1.8.0_292", MajorVersion: 8}
	fx := newNeoForge(t, &fakeJava{installs: []javart.Installation{java8}}, nil, nil)
	gameDir := t.TempDir()
	fx.runner.Handler = installerWritesProfile(gameDir)

	_, err := fx.inst.Install(context.Background(), loader.InstallRequest{BaseVersion: "1.21.1", LoaderVersion: "21.1.72", GameDir: gameDir})
	require.NoError(t, err)
	assert.Equal(t, java8.Path, fx.runner.Calls[0].Path)
}

func TestNeoForge_InstallCancelled(t *testing.T) {
	fx := newNeoForge(t, &fakeJava{installs: []javart.Installation{java21}}, nil, nil)
	gameDir := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	fx.runner.Handler = func(context.Context, process.Command) (*process.Result, error) {
		cancel()
		return &process.Result{ExitCode: -1}, context.Canceled
	}

	_, err := fx.inst.Install(ctx, loader.InstallRequest{BaseVersion: "1.21.1", LoaderVersion: "21.1.72", GameDir: gameDir})
	assert.ErrorIs(t, err, context.Canceled)
	assert.NoFileExists(t, loader.ProfilePath(gameDir, "neoforge-21.1.72"), "no fallback after cancellation")
}

func TestNeoForge_VersionID(t *testing.T) {
	fx := newNeoForge(t, &fakeJava{}, nil, nil)

	id, err := fx.inst.VersionID("1.21.1", "21.1.72")
	require.NoError(t, err)
	assert.Equal(t, "neoforge-21.1.72", id)

	_, err = fx.inst.VersionID("1.21.1", "")
	assert.ErrorIs(t, err, domain.ErrLoaderVersionRequired)
}
