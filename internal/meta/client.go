// Package meta talks to the remote metadata services of each loader
// ecosystem.
package meta

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/tidwall/gjson"

	"github.com/hyeniworld/loaderkit/internal/domain"
)

const userAgent = "loaderkit/1.0 (+https://github.com/hyeniworld/loaderkit)"

// Client wraps the Fabric, Quilt and NeoForge metadata APIs
type Client struct {
	rest      *resty.Client
	endpoints Endpoints
}

// NewClient creates a metadata client. If httpClient is nil a default
// client is used. A zero timeout leaves requests bounded only by ctx.
func NewClient(httpClient *http.Client, endpoints Endpoints, timeout time.Duration) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	rest := resty.NewWithClient(httpClient).
		SetHeader("User-Agent", userAgent).
		SetHeader("Accept", "application/json")
	if timeout > 0 {
		rest.SetTimeout(timeout)
	}
	return &Client{rest: rest, endpoints: endpoints}
}

// Endpoints returns the configured endpoints
func (c *Client) Endpoints() Endpoints {
	return c.endpoints
}

// getJSON decodes a JSON response into result
func (c *Client) getJSON(ctx context.Context, reqURL string, result any) error {
	resp, err := c.rest.R().
		SetContext(ctx).
		SetResult(result).
		ForceContentType("application/json").
		Get(reqURL)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", domain.ErrMetadataUnavailable, reqURL, err)
	}
	if resp.IsError() {
		return fmt.Errorf("%w: %s: status %d", domain.ErrMetadataUnavailable, reqURL, resp.StatusCode())
	}
	return nil
}

// getRaw returns the response body
func (c *Client) getRaw(ctx context.Context, reqURL string) ([]byte, error) {
	resp, err := c.rest.R().SetContext(ctx).Get(reqURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrMetadataUnavailable, reqURL, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("%w: %s: status %d", domain.ErrMetadataUnavailable, reqURL, resp.StatusCode())
	}
	return resp.Body(), nil
}

// FabricLoaders lists every Fabric loader version, newest first
func (c *Client) FabricLoaders(ctx context.Context) ([]domain.CachedVersion, error) {
	var entries []loaderEntry
	if err := c.getJSON(ctx, c.endpoints.FabricMeta+"/versions/loader", &entries); err != nil {
		return nil, fmt.Errorf("fetching fabric loaders: %w", err)
	}
	return toCached(domain.VariantFabric, entries), nil
}

// QuiltLoaders lists every Quilt loader version, newest first. Quilt does
// not flag stability, so all versions are reported stable.
func (c *Client) QuiltLoaders(ctx context.Context) ([]domain.CachedVersion, error) {
	var entries []loaderEntry
	if err := c.getJSON(ctx, c.endpoints.QuiltMeta+"/versions/loader", &entries); err != nil {
		return nil, fmt.Errorf("fetching quilt loaders: %w", err)
	}
	return toCached(domain.VariantQuilt, entries), nil
}

func toCached(ecosystem domain.LoaderVariant, entries []loaderEntry) []domain.CachedVersion {
	versions := make([]domain.CachedVersion, len(entries))
	for i, e := range entries {
		build := e.Build
		stable := true
		if e.Stable != nil {
			stable = *e.Stable
		}
		versions[i] = domain.CachedVersion{
			Ecosystem:   ecosystem,
			Version:     e.Version,
			Stable:      stable,
			BuildNumber: &build,
			MavenCoords: e.Maven,
		}
	}
	return versions
}

// NeoForgeVersions lists NeoForge versions from the Modrinth launcher-meta
// manifest, in manifest order.
func (c *Client) NeoForgeVersions(ctx context.Context) ([]domain.CachedVersion, error) {
	var manifest neoForgeManifest
	if err := c.getJSON(ctx, c.endpoints.NeoForgeManifest, &manifest); err != nil {
		return nil, fmt.Errorf("fetching neoforge manifest: %w", err)
	}

	var versions []domain.CachedVersion
	for _, gv := range manifest.GameVersions {
		for _, l := range gv.Loaders {
			versions = append(versions, domain.CachedVersion{
				Ecosystem:   domain.VariantNeoForge,
				Version:     l.ID,
				Stable:      l.Stable,
				MavenCoords: l.URL,
			})
		}
	}
	return versions, nil
}

// NeoForgeMavenVersions lists NeoForge versions straight from the NeoForge
// maven API, newest first.
func (c *Client) NeoForgeMavenVersions(ctx context.Context) ([]string, error) {
	var resp mavenVersions
	if err := c.getJSON(ctx, c.endpoints.NeoForgeMavenAPI, &resp); err != nil {
		return nil, fmt.Errorf("fetching neoforge maven versions: %w", err)
	}

	// The API lists oldest first
	versions := make([]string, len(resp.Versions))
	for i, v := range resp.Versions {
		versions[len(resp.Versions)-1-i] = v
	}
	return versions, nil
}

// FabricLoadersForGame lists Fabric loaders compatible with gameVersion.
// The endpoint returns {loader, intermediary, launcherMeta} objects; only
// the loader part is kept.
func (c *Client) FabricLoadersForGame(ctx context.Context, gameVersion string) ([]domain.LoaderVersion, error) {
	body, err := c.getRaw(ctx, c.endpoints.FabricMeta+"/versions/loader/"+url.PathEscape(gameVersion))
	if err != nil {
		return nil, fmt.Errorf("fetching fabric loaders for %s: %w", gameVersion, err)
	}
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("%w: fabric loaders for %s: invalid JSON", domain.ErrMetadataUnavailable, gameVersion)
	}

	var versions []domain.LoaderVersion
	gjson.GetBytes(body, "#.loader").ForEach(func(_, loader gjson.Result) bool {
		if v := loader.Get("version").String(); v != "" {
			versions = append(versions, domain.LoaderVersion{
				Version: v,
				Stable:  loader.Get("stable").Bool(),
			})
		}
		return true
	})
	return versions, nil
}

// QuiltLoadersForGame lists Quilt loader versions for gameVersion, newest
// first.
func (c *Client) QuiltLoadersForGame(ctx context.Context, gameVersion string) ([]string, error) {
	body, err := c.getRaw(ctx, c.endpoints.QuiltMeta+"/versions/loader/"+url.PathEscape(gameVersion))
	if err != nil {
		return nil, fmt.Errorf("fetching quilt loaders for %s: %w", gameVersion, err)
	}
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("%w: quilt loaders for %s: invalid JSON", domain.ErrMetadataUnavailable, gameVersion)
	}

	var versions []string
	for _, v := range gjson.GetBytes(body, "#.loader.version").Array() {
		versions = append(versions, v.String())
	}
	return versions, nil
}

// FabricProfile downloads the launch profile for a Fabric loader
func (c *Client) FabricProfile(ctx context.Context, gameVersion, loaderVersion string) ([]byte, error) {
	return c.profile(ctx, c.endpoints.FabricMeta, "fabric", gameVersion, loaderVersion)
}

// QuiltProfile downloads the launch profile for a Quilt loader
func (c *Client) QuiltProfile(ctx context.Context, gameVersion, loaderVersion string) ([]byte, error) {
	return c.profile(ctx, c.endpoints.QuiltMeta, "quilt", gameVersion, loaderVersion)
}

func (c *Client) profile(ctx context.Context, base, name, gameVersion, loaderVersion string) ([]byte, error) {
	reqURL := fmt.Sprintf("%s/versions/loader/%s/%s/profile/json", base, url.PathEscape(gameVersion), url.PathEscape(loaderVersion))
	body, err := c.getRaw(ctx, reqURL)
	if err != nil {
		return nil, fmt.Errorf("fetching %s profile: %w", name, err)
	}
	if !json.Valid(body) {
		return nil, fmt.Errorf("%w: %s profile is not valid JSON", domain.ErrMetadataUnavailable, name)
	}
	return body, nil
}
