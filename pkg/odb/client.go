package odb

import (
	"bytes"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/kilianp07/skyplan/auth"
	"github.com/kilianp07/skyplan/core/canonical"
	"github.com/kilianp07/skyplan/core/logger"
)

// ClientConfig configures access to the program export service.
type ClientConfig struct {
	// URL is the export endpoint; the program id is passed as the id
	// query parameter.
	URL string `json:"url"`
	// CacheDir keeps a gzipped copy of every fetched export when set.
	CacheDir string `json:"cache_dir"`
	// Overwrite refetches programs already in the cache.
	Overwrite bool          `json:"overwrite"`
	Timeout   time.Duration `json:"timeout"`
	Auth      auth.Conf     `json:"auth"`
}

// SetDefaults applies sane defaults.
func (c *ClientConfig) SetDefaults() {
	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}
}

// Client fetches program exports over HTTP.
type Client struct {
	cfg  ClientConfig
	http *http.Client
	auth *auth.ClientCred
	log  logger.Logger
}

// NewClient returns a client for the configured export service.
func NewClient(cfg ClientConfig, log logger.Logger) (*Client, error) {
	cfg.SetDefaults()
	if cfg.URL == "" && cfg.CacheDir == "" {
		return nil, fmt.Errorf("odb: url or cache_dir is required")
	}
	c := &Client{cfg: cfg, http: &http.Client{Timeout: cfg.Timeout}, log: log}
	if cfg.Auth.Enabled() {
		c.auth = auth.NewClientCred(cfg.Auth)
	}
	return c, nil
}

func (c *Client) cachePath(programID string) string {
	return filepath.Join(c.cfg.CacheDir, programID+".json.gz")
}

// Observations returns the raw observations of programID, from the cache
// when present.
func (c *Client) Observations(ctx context.Context, programID string) ([]canonical.RawObservation, error) {
	if programID == "" {
		return nil, fmt.Errorf("odb: program id not given")
	}
	body, err := c.cached(programID)
	if err != nil {
		return nil, err
	}
	if body == nil {
		if body, err = c.fetch(ctx, programID); err != nil {
			return nil, err
		}
		if err := c.store(programID, body); err != nil {
			c.log.Warnf("odb: cache %s: %v", programID, err)
		}
	}
	obs, err := DecodeObservations(bytes.NewReader(body), "json")
	if err != nil {
		return nil, fmt.Errorf("odb: decode %s: %w", programID, err)
	}
	return obs, nil
}

// cached returns the cached export of programID, nil when it must be
// fetched.
func (c *Client) cached(programID string) ([]byte, error) {
	if c.cfg.CacheDir == "" || c.cfg.Overwrite {
		return nil, nil
	}
	f, err := os.Open(c.cachePath(programID))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	zr, err := gzip.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("odb: cache %s: %w", programID, err)
	}
	defer func() { _ = zr.Close() }()
	return io.ReadAll(zr)
}

func (c *Client) fetch(ctx context.Context, programID string) ([]byte, error) {
	if c.cfg.URL == "" {
		return nil, fmt.Errorf("odb: %s not cached and no url configured", programID)
	}
	u, err := url.Parse(c.cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("odb: url: %w", err)
	}
	q := u.Query()
	q.Set("id", programID)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if c.auth != nil {
		if err := c.auth.SetAuthHeader(ctx, req); err != nil {
			return nil, fmt.Errorf("failed to set auth header: %w", err)
		}
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("odb: %s: unexpected status code: %d, body: %s", programID, resp.StatusCode, body)
	}
	c.log.Debugw("program fetched", map[string]any{"program": programID, "bytes": len(body)})
	return body, nil
}

func (c *Client) store(programID string, body []byte) error {
	if c.cfg.CacheDir == "" {
		return nil
	}
	if err := os.MkdirAll(c.cfg.CacheDir, 0o755); err != nil {
		return err
	}
	f, err := os.Create(c.cachePath(programID))
	if err != nil {
		return err
	}
	zw := gzip.NewWriter(f)
	if _, err := zw.Write(body); err != nil {
		_ = f.Close()
		return err
	}
	if err := zw.Close(); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
