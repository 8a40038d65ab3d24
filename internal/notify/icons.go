package notify

import (
	"context"
	"crypto/sha1" //nolint:gosec // file names only
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"
)

const maxIconBytes = 4 << 20

// IconCache downloads artwork to local files, since notification servers
// only accept paths or icon names.
type IconCache struct {
	dir        string
	httpClient *http.Client

	mu sync.Mutex
}

// NewIconCache stores icons in dir.
func NewIconCache(dir string, httpClient *http.Client) *IconCache {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &IconCache{dir: dir, httpClient: httpClient}
}

// Path returns a local file for the image at url, downloading it on first
// use. It returns "" when the image cannot be fetched.
func (c *IconCache) Path(ctx context.Context, url string) string {
	if url == "" {
		return ""
	}
	sum := sha1.Sum([]byte(url)) //nolint:gosec // file names only
	path := filepath.Join(c.dir, hex.EncodeToString(sum[:])+".img")

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, err := os.Stat(path); err == nil {
		return path
	}
	if err := c.download(ctx, url, path); err != nil {
		return ""
	}
	return path
}

func (c *IconCache) download(ctx context.Context, url, path string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("status %d", resp.StatusCode)
	}

	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(c.dir, "icon-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, io.LimitReader(resp.Body, maxIconBytes)); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
