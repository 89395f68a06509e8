package meta

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hyeniworld/loaderkit/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return NewClient(server.Client(), Endpoints{
		FabricMeta:       server.URL + "/fabric/v2",
		QuiltMeta:        server.URL + "/quilt/v3",
		NeoForgeManifest: server.URL + "/neo/v0/manifest.json",
		NeoForgeMavenAPI: server.URL + "/api/maven/versions/releases/net/neoforged/neoforge",
	}, 0)
}

func TestClient_FabricLoaders(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/fabric/v2/versions/loader", r.URL.Path)
		assert.Contains(t, r.Header.Get("User-Agent"), "loaderkit")
		_, _ = w.Write([]byte(`[
			{"separator": ".", "build": 9, "maven": "net.fabricmc:fabric-loader:0.16.9", "version": "0.16.9", "stable": true},
			{"separator": "+build.", "build": 8, "maven": "net.fabricmc:fabric-loader:0.16.8-beta", "version": "0.16.8-beta", "stable": false}
		]`))
	})

	versions, err := client.FabricLoaders(context.Background())
	require.NoError(t, err)
	require.Len(t, versions, 2)

	assert.Equal(t, "0.16.9", versions[0].Version)
	assert.True(t, versions[0].Stable)
	require.NotNil(t, versions[0].BuildNumber)
	assert.Equal(t, 9, *versions[0].BuildNumber)
	assert.Equal(t, "net.fabricmc:fabric-loader:0.16.9", versions[0].MavenCoords)
	assert.Equal(t, domain.VariantFabric, versions[0].Ecosystem)
	assert.False(t, versions[1].Stable)
}

func TestClient_QuiltLoaders_AllStable(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/quilt/v3/versions/loader", r.URL.Path)
		_, _ = w.Write([]byte(`[
			{"separator": ".", "build": 0, "maven": "org.quiltmc:quilt-loader:0.26.0", "version": "0.26.0"},
			{"separator": ".", "build": 0, "maven": "org.quiltmc:quilt-loader:0.26.0-beta.1", "version": "0.26.0-beta.1"}
		]`))
	})

	versions, err := client.QuiltLoaders(context.Background())
	require.NoError(t, err)
	require.Len(t, versions, 2)
	assert.True(t, versions[0].Stable)
	assert.True(t, versions[1].Stable)
	assert.Equal(t, domain.VariantQuilt, versions[1].Ecosystem)
}

func TestClient_NeoForgeVersions(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"gameVersions": [
			{"id": "1.21.1", "stable": true, "loaders": [
				{"id": "21.1.72", "url": "https://meta/neo/21.1.72.json", "stable": true},
				{"id": "21.1.71", "url": "https://meta/neo/21.1.71.json", "stable": true}
			]},
			{"id": "1.20.4", "stable": true, "loaders": [
				{"id": "20.4.237-beta", "url": "https://meta/neo/20.4.237-beta.json", "stable": false}
			]}
		]}`))
	})

	versions, err := client.NeoForgeVersions(context.Background())
	require.NoError(t, err)
	require.Len(t, versions, 3)

	assert.Equal(t, "21.1.72", versions[0].Version)
	assert.Equal(t, "https://meta/neo/21.1.72.json", versions[0].MavenCoords)
	assert.Nil(t, versions[0].BuildNumber)
	assert.Equal(t, "20.4.237-beta", versions[2].Version)
	assert.False(t, versions[2].Stable)
}

func TestClient_NeoForgeMavenVersions_NewestFirst(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/maven/versions/releases/net/neoforged/neoforge", r.URL.Path)
		_, _ = w.Write([]byte(`{"isSnapshot": false, "versions": ["20.4.237-beta", "21.1.71", "21.1.72"]}`))
	})

	versions, err := client.NeoForgeMavenVersions(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"21.1.72", "21.1.71", "20.4.237-beta"}, versions)
}

func TestClient_FabricLoadersForGame(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/fabric/v2/versions/loader/1.21.1", r.URL.Path)
		_, _ = w.Write([]byte(`[
			{"loader": {"separator": ".", "build": 9, "maven": "net.fabricmc:fabric-loader:0.16.9", "version": "0.16.9", "stable": true},
			 "intermediary": {"maven": "net.fabricmc:intermediary:1.21.1", "version": "1.21.1", "stable": true},
			 "launcherMeta": {"version": 2}},
			{"loader": {"separator": ".", "build": 8, "maven": "net.fabricmc:fabric-loader:0.16.8", "version": "0.16.8", "stable": false},
			 "intermediary": {"maven": "net.fabricmc:intermediary:1.21.1", "version": "1.21.1", "stable": true}}
		]`))
	})

	versions, err := client.FabricLoadersForGame(context.Background(), "1.21.1")
	require.NoError(t, err)
	assert.Equal(t, []domain.LoaderVersion{
		{Version: "0.16.9", Stable: true},
		{Version: "0.16.8", Stable: false},
	}, versions)
}

func TestClient_QuiltLoadersForGame(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/quilt/v3/versions/loader/1.21.1", r.URL.Path)
		_, _ = w.Write([]byte(`[
			{"loader": {"version": "0.26.4"}, "hashed": {"version": "1.21.1"}},
			{"loader": {"version": "0.26.3"}, "hashed": {"version": "1.21.1"}}
		]`))
	})

	versions, err := client.QuiltLoadersForGame(context.Background(), "1.21.1")
	require.NoError(t, err)
	assert.Equal(t, []string{"0.26.4", "0.26.3"}, versions)
}

func TestClient_Profile(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/fabric/v2/versions/loader/1.21.1/0.16.9/profile/json", r.URL.Path)
		_, _ = w.Write([]byte(`{"id": "fabric-loader-0.16.9-1.21.1", "inheritsFrom": "1.21.1"}`))
	})

	body, err := client.FabricProfile(context.Background(), "1.21.1", "0.16.9")
	require.NoError(t, err)
	assert.JSONEq(t, `{"id": "fabric-loader-0.16.9-1.21.1", "inheritsFrom": "1.21.1"}`, string(body))
}

func TestClient_Profile_InvalidJSON(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>maintenance</html>`))
	})

	_, err := client.QuiltProfile(context.Background(), "1.21.1", "0.26.0")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrMetadataUnavailable))
}

func TestClient_ServerError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})

	_, err := client.FabricLoaders(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrMetadataUnavailable))
	assert.Contains(t, err.Error(), "429")

	_, err = client.QuiltLoadersForGame(context.Background(), "1.21.1")
	assert.True(t, errors.Is(err, domain.ErrMetadataUnavailable))
}
