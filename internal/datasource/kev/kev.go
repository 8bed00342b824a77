// SPDX-FileCopyrightText: 2026 Bonial International GmbH
// SPDX-License-Identifier: Apache-2.0

package kev

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/bonial-oss/vuln-browse/internal/cache"
	"github.com/bonial-oss/vuln-browse/internal/types"
)

const (
	cacheFilename      = "known_exploited_vulnerabilities.json"
	defaultPrimaryURL  = "https://www.cisa.gov/sites/default/files/feeds/known_exploited_vulnerabilities.json"
	defaultFallbackURL = "https://raw.githubusercontent.com/cisagov/kev-data/main/known_exploited_vulnerabilities.json"
	maxResponseSize    = 50 * 1024 * 1024 // 50 MB
)

var defaultHTTPClient = &http.Client{Timeout: 60 * time.Second}

// Source provides access to CISA KEV data with caching support.
type Source struct {
	cache       *cache.Cache
	primaryURL  string
	fallbackURL string
	client      *http.Client
	warn        io.Writer
	entries     map[string]types.KEVEntry
}

// Option customizes a Source.
type Option func(*Source)

// WithURLs replaces the primary and fallback catalog locations.
func WithURLs(primary, fallback string) Option {
	return func(s *Source) {
		s.primaryURL = primary
		s.fallbackURL = fallback
	}
}

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(s *Source) { s.client = c }
}

// WithWarnings sets where stale-cache warnings go (stderr by default).
func WithWarnings(w io.Writer) Option {
	return func(s *Source) { s.warn = w }
}

// NewSource creates a new KEV data source with cache stored under cacheDir/kev/.
func NewSource(cacheDir string, opts ...Option) *Source {
	s := &Source{
		cache:       cache.New(filepath.Join(cacheDir, "kev")),
		primaryURL:  defaultPrimaryURL,
		fallbackURL: defaultFallbackURL,
		client:      defaultHTTPClient,
		warn:        os.Stderr,
		entries:     make(map[string]types.KEVEntry),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load fetches the KEV catalog, using the cache when it is fresh or when
// skipUpdate is set, and falling back to a stale copy if the download fails.
func (s *Source) Load(ctx context.Context, skipUpdate bool) error {
	data, err := s.cache.Fetch(ctx, cacheFilename, "KEV data", skipUpdate, s.download, s.warn)
	if err != nil {
		return fmt.Errorf("downloading KEV data: %w", err)
	}
	return s.parseJSON(data)
}

// Lookup returns the KEV entry for the given CVE ID, or nil if not found.
func (s *Source) Lookup(cveID string) *types.KEVEntry {
	entry, ok := s.entries[cveID]
	if !ok {
		return nil
	}
	return &entry
}

// Len returns the number of catalog entries loaded.
func (s *Source) Len() int {
	return len(s.entries)
}

// download fetches the KEV catalog JSON from the primary URL.
// If the primary URL fails, it falls back to the GitHub mirror.
func (s *Source) download(ctx context.Context) ([]byte, error) {
	data, err := s.downloadFrom(ctx, s.primaryURL)
	if err == nil {
		return data, nil
	}
	if errors.Is(err, context.Canceled) || s.fallbackURL == "" {
		return nil, err
	}

	data, err2 := s.downloadFrom(ctx, s.fallbackURL)
	if err2 == nil {
		return data, nil
	}

	return nil, fmt.Errorf("primary (%s): %w; fallback (%s): %v", s.primaryURL, err, s.fallbackURL, err2)
}

// downloadFrom downloads the KEV JSON from the given URL.
func (s *Source) downloadFrom(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("HTTP %d for %s", resp.StatusCode, url)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	return data, nil
}

// parseJSON unmarshals the KEV catalog JSON and populates the entries map.
func (s *Source) parseJSON(data []byte) error {
	var catalog types.KEVCatalog
	if err := json.Unmarshal(data, &catalog); err != nil {
		return fmt.Errorf("unmarshaling KEV catalog: %w", err)
	}

	s.entries = make(map[string]types.KEVEntry, len(catalog.Vulnerabilities))
	for _, vuln := range catalog.Vulnerabilities {
		s.entries[vuln.CVEID] = vuln
	}

	return nil
}
