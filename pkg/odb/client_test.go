package odb

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/skyplan/auth"
	"github.com/kilianp07/skyplan/infra/logger"
)

// exportServer serves observationsJSON for program GS-2024A-Q-1 behind a
// bearer token issued by /token.
func exportServer(t *testing.T) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var exports atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"secret-token","token_type":"bearer","expires_in":3600}`))
	})
	mux.HandleFunc("/programexport", func(w http.ResponseWriter, r *http.Request) {
		exports.Add(1)
		if r.Header.Get("Authorization") != "Bearer secret-token" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		if r.URL.Query().Get("id") != "GS-2024A-Q-1" {
			http.Error(w, "unknown program", http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte(observationsJSON))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, &exports
}

func clientConfig(srv *httptest.Server, cacheDir string) ClientConfig {
	return ClientConfig{
		URL:      srv.URL + "/programexport",
		CacheDir: cacheDir,
		Auth:     auth.Conf{ClientID: "id", ClientSecret: "secret", TokenURL: srv.URL + "/token"},
	}
}

func TestClientFetchAndCache(t *testing.T) {
	srv, exports := exportServer(t)
	dir := t.TempDir()
	c, err := NewClient(clientConfig(srv, dir), logger.NopLogger{})
	require.NoError(t, err)

	obs, err := c.Observations(context.Background(), "GS-2024A-Q-1")
	require.NoError(t, err)
	require.Len(t, obs, 1)
	assert.Equal(t, "GS-2024A-Q-1-1", obs[0].ID)
	assert.FileExists(t, filepath.Join(dir, "GS-2024A-Q-1.json.gz"))

	obs, err = c.Observations(context.Background(), "GS-2024A-Q-1")
	require.NoError(t, err)
	require.Len(t, obs, 1)
	assert.Equal(t, int32(1), exports.Load(), "second read comes from the cache")
}

func TestClientOverwrite(t *testing.T) {
	srv, exports := exportServer(t)
	cfg := clientConfig(srv, t.TempDir())
	cfg.Overwrite = true
	c, err := NewClient(cfg, logger.NopLogger{})
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		_, err := c.Observations(context.Background(), "GS-2024A-Q-1")
		require.NoError(t, err)
	}
	assert.Equal(t, int32(2), exports.Load())
}

func TestClientErrors(t *testing.T) {
	srv, _ := exportServer(t)
	c, err := NewClient(clientConfig(srv, ""), logger.NopLogger{})
	require.NoError(t, err)

	_, err = c.Observations(context.Background(), "")
	assert.Error(t, err)

	_, err = c.Observations(context.Background(), "GN-2024A-Q-9")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")

	noAuth := clientConfig(srv, "")
	noAuth.Auth = auth.Conf{}
	c, err = NewClient(noAuth, logger.NopLogger{})
	require.NoError(t, err)
	_, err = c.Observations(context.Background(), "GS-2024A-Q-1")
	assert.Error(t, err)

	_, err = NewClient(ClientConfig{}, logger.NopLogger{})
	assert.Error(t, err)
}

func TestClientCacheOnly(t *testing.T) {
	srv, _ := exportServer(t)
	dir := t.TempDir()
	c, err := NewClient(clientConfig(srv, dir), logger.NopLogger{})
	require.NoError(t, err)
	_, err = c.Observations(context.Background(), "GS-2024A-Q-1")
	require.NoError(t, err)

	offline, err := NewClient(ClientConfig{CacheDir: dir}, logger.NopLogger{})
	require.NoError(t, err)
	obs, err := offline.Observations(context.Background(), "GS-2024A-Q-1")
	require.NoError(t, err)
	assert.Len(t, obs, 1)

	_, err = offline.Observations(context.Background(), "GS-2024A-Q-2")
	assert.Error(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "GS-BROKEN.json.gz"), []byte("not gzip"), 0o644))
	_, err = offline.Observations(context.Background(), "GS-BROKEN")
	assert.Error(t, err)
}
