// SPDX-FileCopyrightText: 2026 Bonial International GmbH
// SPDX-License-Identifier: Apache-2.0

package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

// DefaultTTL is how long a stored entry counts as fresh.
const DefaultTTL = 24 * time.Hour

const metaSuffix = ".meta.json"

// Metadata records when an entry was stored and where it came from.
type Metadata struct {
	DownloadedAt string `json:"downloaded_at"`
	Source       string `json:"source,omitempty"`
}

// Cache stores downloaded files in a directory, one metadata file per entry.
type Cache struct {
	dir string
	ttl time.Duration
}

// New creates a cache in dir with the default TTL.
func New(dir string) *Cache {
	return &Cache{dir: dir, ttl: DefaultTTL}
}

// NewWithTTL creates a cache in dir with a custom TTL.
func NewWithTTL(dir string, ttl time.Duration) *Cache {
	return &Cache{dir: dir, ttl: ttl}
}

// Key derives a file-safe entry name from an arbitrary string such as a URL.
func Key(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

// Dir returns the cache directory.
func (c *Cache) Dir() string {
	return c.dir
}

// IsFresh reports whether name was stored less than the TTL ago.
func (c *Cache) IsFresh(name string) bool {
	meta, err := c.loadMetadata(name)
	if err != nil {
		return false
	}
	downloadedAt, err := time.Parse(time.RFC3339, meta.DownloadedAt)
	if err != nil {
		return false
	}
	return time.Since(downloadedAt) < c.ttl && c.Exists(name)
}

// Store writes data under name together with its metadata.
func (c *Cache) Store(name string, data []byte) error {
	return c.StoreFrom(name, "", data)
}

// StoreFrom is Store with the origin recorded in the metadata.
func (c *Cache) StoreFrom(name, source string, data []byte) error {
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return fmt.Errorf("creating cache dir: %w", err)
	}
	if err := os.WriteFile(filepath.Join(c.dir, name), data, 0o644); err != nil {
		return fmt.Errorf("writing cache data: %w", err)
	}
	meta := Metadata{
		DownloadedAt: time.Now().UTC().Format(time.RFC3339),
		Source:       source,
	}
	metaBytes, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("marshaling metadata: %w", err)
	}
	if err := os.WriteFile(filepath.Join(c.dir, name+metaSuffix), metaBytes, 0o644); err != nil {
		return fmt.Errorf("writing metadata: %w", err)
	}
	return nil
}

// Load reads the stored data for name.
func (c *Cache) Load(name string) ([]byte, error) {
	return os.ReadFile(filepath.Join(c.dir, name))
}

// Exists reports whether data for name is stored.
func (c *Cache) Exists(name string) bool {
	_, err := os.Stat(filepath.Join(c.dir, name))
	return err == nil
}

// DownloadFunc fetches fresh data for an entry.
type DownloadFunc func(ctx context.Context) ([]byte, error)

// Fetch returns data for name, downloading only when needed.
//
// Logic:
//  1. If skipUpdate and the entry exists -> return it.
//  2. If the entry is fresh -> return it.
//  3. Download fresh data; on success store and return it.
//  4. If the download fails and the entry exists -> warn, return stale data.
//  5. Otherwise return the download error.
func (c *Cache) Fetch(ctx context.Context, name, source string, skipUpdate bool, download DownloadFunc, warn io.Writer) ([]byte, error) {
	if skipUpdate && c.Exists(name) {
		return c.Load(name)
	}
	if c.IsFresh(name) {
		return c.Load(name)
	}

	data, err := download(ctx)
	if err == nil {
		if storeErr := c.StoreFrom(name, source, data); storeErr != nil {
			return nil, fmt.Errorf("storing %s in cache: %w", name, storeErr)
		}
		return data, nil
	}

	if c.Exists(name) {
		if warn != nil {
			fmt.Fprintf(warn, "warning: failed to download %s (%v), using stale cache\n", source, err)
		}
		return c.Load(name)
	}
	return nil, err
}

func (c *Cache) loadMetadata(name string) (*Metadata, error) {
	data, err := os.ReadFile(filepath.Join(c.dir, name+metaSuffix))
	if err != nil {
		return nil, err
	}
	var meta Metadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}
