package loader_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/hyeniworld/loaderkit/internal/domain"
	"github.com/hyeniworld/loaderkit/internal/fetch"
	"github.com/hyeniworld/loaderkit/internal/javart"
	"github.com/hyeniworld/loaderkit/internal/loader"
	"github.com/hyeniworld/loaderkit/internal/storage/libroot"
)

// artifactServer serves files by URL path and counts requests
type artifactServer struct {
	*httptest.Server

	mu     sync.Mutex
	files  map[string][]byte
	status map[string]int
	hits   map[string]int
}

func newArtifactServer(t *testing.T) *artifactServer {
	t.Helper()
	s := &artifactServer{
		files:  make(map[string][]byte),
		status: make(map[string]int),
		hits:   make(map[string]int),
	}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.hits[r.URL.Path]++
		code, forced := s.status[r.URL.Path]
		body, ok := s.files[r.URL.Path]
		s.mu.Unlock()

		if forced {
			w.WriteHeader(code)
			return
		}
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Write(body)
	}))
	t.Cleanup(s.Close)
	return s
}

func (s *artifactServer) put(path string, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[path] = []byte(body)
}

func (s *artifactServer) fail(path string, code int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status[path] = code
}

func (s *artifactServer) hitCount(path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[path]
}

func (s *artifactServer) totalHits(prefix string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for p, c := range s.hits {
		if strings.HasPrefix(p, prefix) {
			n += c
		}
	}
	return n
}

func newDeps(t *testing.T, srv *artifactServer, cache loader.VersionCache) (loader.Deps, *libroot.Root) {
	t.Helper()
	libs := libroot.New(t.TempDir())
	return loader.Deps{
		Cache:     cache,
		Fetcher:   fetch.New(srv.Client(), fetch.WithMaxAttempts(1), fetch.WithRetryDelay(time.Millisecond)),
		Libraries: libs,
	}, libs
}

// fakeMeta stands in for the remote metadata client
type fakeMeta struct {
	mu sync.Mutex

	fabricAll     []domain.CachedVersion
	fabricAllErr  error
	fabricForGame []domain.LoaderVersion
	fabricProfile string

	quiltForGame  []string
	quiltGameErr  error
	quiltProfile  string
	neoMaven      []string
	neoMavenErr   error
	profileErr    error
	profileCalls  int
	forGameCalled string
}

func (f *fakeMeta) FabricLoaders(context.Context) ([]domain.CachedVersion, error) {
	return f.fabricAll, f.fabricAllErr
}

func (f *fakeMeta) FabricLoadersForGame(_ context.Context, game string) ([]domain.LoaderVersion, error) {
	f.mu.Lock()
	f.forGameCalled = game
	f.mu.Unlock()
	return f.fabricForGame, nil
}

func (f *fakeMeta) FabricProfile(context.Context, string, string) ([]byte, error) {
	f.mu.Lock()
	f.profileCalls++
	f.mu.Unlock()
	if f.profileErr != nil {
		return nil, f.profileErr
	}
	return []byte(f.fabricProfile), nil
}

func (f *fakeMeta) QuiltLoadersForGame(_ context.Context, game string) ([]string, error) {
	f.mu.Lock()
	f.forGameCalled = game
	f.mu.Unlock()
	return f.quiltForGame, f.quiltGameErr
}

func (f *fakeMeta) QuiltProfile(context.Context, string, string) ([]byte, error) {
	if f.profileErr != nil {
		return nil, f.profileErr
	}
	return []byte(f.quiltProfile), nil
}

func (f *fakeMeta) NeoForgeMavenVersions(context.Context) ([]string, error) {
	return f.neoMaven, f.neoMavenErr
}

// fakeCache serves fixed version lists
type fakeCache struct {
	versions map[domain.LoaderVariant][]domain.CachedVersion
	err      error
	calls    int
}

func (c *fakeCache) Versions(_ context.Context, ecosystem domain.LoaderVariant, _ bool) ([]domain.CachedVersion, error) {
	c.calls++
	if c.err != nil {
		return nil, c.err
	}
	return c.versions[ecosystem], nil
}

func cached(versions ...string) []domain.CachedVersion {
	out := make([]domain.CachedVersion, len(versions))
	for i, v := range versions {
		out[i] = domain.CachedVersion{Version: v, Stable: true}
	}
	return out
}

// fakeJava returns fixed installations
type fakeJava struct {
	installs []javart.Installation
	err      error
}

func (j *fakeJava) Detect(context.Context) ([]javart.Installation, error) {
	return j.installs, j.err
}

func recordProgress() (domain.ProgressFunc, func() []string) {
	var mu sync.Mutex
	var messages []string
	return func(message string, current, total int) {
			mu.Lock()
			defer mu.Unlock()
			messages = append(messages, message)
		}, func() []string {
			mu.Lock()
			defer mu.Unlock()
			return append([]string(nil), messages...)
		}
}
