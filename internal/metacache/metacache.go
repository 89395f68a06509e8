// Package metacache serves loader version lists from the local database,
// refreshing them from remote metadata once they are older than the TTL.
package metacache

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/hyeniworld/loaderkit/internal/domain"
	"github.com/hyeniworld/loaderkit/internal/meta"
)

// DefaultTTL is how long a cached version list stays fresh
const DefaultTTL = 6 * time.Hour

// Store persists version lists per ecosystem
type Store interface {
	GetLoaderVersions(loaderType domain.LoaderVariant) ([]domain.CachedVersion, error)
	ReplaceLoaderVersions(loaderType domain.LoaderVariant, versions []domain.CachedVersion, now time.Time) error
	LoaderVersionsCachedAt(loaderType domain.LoaderVariant) (time.Time, bool, error)
	DeleteLoaderVersions(loaderType domain.LoaderVariant) error
}

// Source fetches the full version list of one ecosystem from upstream
type Source func(ctx context.Context) ([]domain.CachedVersion, error)

// SourcesFromClient maps each cached ecosystem to its remote listing
func SourcesFromClient(c *meta.Client) map[domain.LoaderVariant]Source {
	return map[domain.LoaderVariant]Source{
		domain.VariantFabric:   c.FabricLoaders,
		domain.VariantNeoForge: c.NeoForgeVersions,
		domain.VariantQuilt:    c.QuiltLoaders,
	}
}

// Service is the metadata cache
type Service struct {
	store   Store
	sources map[domain.LoaderVariant]Source
	ttl     time.Duration
	timeout time.Duration
	now     func() time.Time
	logger  *slog.Logger
	group   singleflight.Group
}

// Option configures a Service
type Option func(*Service)

// WithTTL overrides DefaultTTL. Zero disables caching reads.
func WithTTL(ttl time.Duration) Option {
	return func(s *Service) { s.ttl = ttl }
}

// WithRefreshTimeout bounds one shared upstream refresh. Zero means no
// limit beyond the callers giving up.
func WithRefreshTimeout(d time.Duration) Option {
	return func(s *Service) { s.timeout = d }
}

// WithClock overrides time.Now
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New creates a metadata cache over store and the given upstream sources
func New(store Store, sources map[domain.LoaderVariant]Source, opts ...Option) *Service {
	s := &Service{
		store:   store,
		sources: sources,
		ttl:     DefaultTTL,
		now:     time.Now,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("component", "metacache")
	return s
}

// Versions returns the version list for ecosystem. A fresh non-empty cache
// is served as is; otherwise, or when forceRefresh is set, the list is
// fetched upstream and written back. Write-back failures are logged only.
func (s *Service) Versions(ctx context.Context, ecosystem domain.LoaderVariant, forceRefresh bool) ([]domain.CachedVersion, error) {
	source, ok := s.sources[ecosystem]
	if !ok {
		return nil, fmt.Errorf("%w: no version metadata for %s", domain.ErrUnsupportedVariant, ecosystem)
	}

	if !forceRefresh {
		if versions, ok := s.fresh(ecosystem); ok {
			return versions, nil
		}
	}

	// Concurrent callers for the same ecosystem share one upstream request.
	// The request outlives any single caller; each caller waits on its own ctx.
	ch := s.group.DoChan(string(ecosystem), func() (any, error) {
		refreshCtx := context.WithoutCancel(ctx)
		if s.timeout > 0 {
			var cancel context.CancelFunc
			refreshCtx, cancel = context.WithTimeout(refreshCtx, s.timeout)
			defer cancel()
		}
		return s.refresh(refreshCtx, ecosystem, source)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]domain.CachedVersion), nil
	}
}

func (s *Service) fresh(ecosystem domain.LoaderVariant) ([]domain.CachedVersion, bool) {
	cachedAt, ok, err := s.store.LoaderVersionsCachedAt(ecosystem)
	if err != nil {
		s.logger.Warn("reading cache age", "ecosystem", ecosystem, "error", err)
		return nil, false
	}
	if !ok || s.now().Sub(cachedAt) >= s.ttl {
		return nil, false
	}

	versions, err := s.store.GetLoaderVersions(ecosystem)
	if err != nil {
		s.logger.Warn("reading cached versions", "ecosystem", ecosystem, "error", err)
		return nil, false
	}
	if len(versions) == 0 {
		return nil, false
	}

	s.logger.Debug("serving cached versions", "ecosystem", ecosystem, "count", len(versions), "age", s.now().Sub(cachedAt).Round(time.Second))
	return versions, true
}

func (s *Service) refresh(ctx context.Context, ecosystem domain.LoaderVariant, source Source) ([]domain.CachedVersion, error) {
	s.logger.Debug("refreshing versions", "ecosystem", ecosystem)

	versions, err := source(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching %s versions: %w", ecosystem, err)
	}

	now := s.now()
	for i := range versions {
		versions[i].Ecosystem = ecosystem
		versions[i].CachedAt = now
	}

	if err := s.store.ReplaceLoaderVersions(ecosystem, versions, now); err != nil {
		s.logger.Warn("failed to cache versions", "ecosystem", ecosystem, "error", err)
	}

	return versions, nil
}

// Invalidate drops the cached list of one ecosystem
func (s *Service) Invalidate(ecosystem domain.LoaderVariant) error {
	if err := s.store.DeleteLoaderVersions(ecosystem); err != nil {
		return fmt.Errorf("invalidating %s cache: %w", ecosystem, err)
	}
	return nil
}

// CachedAt reports when ecosystem was last refreshed
func (s *Service) CachedAt(ecosystem domain.LoaderVariant) (time.Time, bool, error) {
	return s.store.LoaderVersionsCachedAt(ecosystem)
}

// Ecosystems lists the variants this cache can serve
func (s *Service) Ecosystems() []domain.LoaderVariant {
	var out []domain.LoaderVariant
	for _, v := range domain.Variants {
		if _, ok := s.sources[v]; ok {
			out = append(out, v)
		}
	}
	return out
}
