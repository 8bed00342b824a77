// SPDX-FileCopyrightText: 2026 Bonial International GmbH
// SPDX-License-Identifier: Apache-2.0

// Package source reads match reports from a file, standard input, or an
// HTTP(S) URL. Remote reports are cached on disk.
package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bonial-oss/vuln-browse/internal/cache"
)

// Stdin is the location that selects standard input.
const Stdin = "-"

const (
	defaultTimeout = 60 * time.Second
	maxReportSize  = 100 * 1024 * 1024 // 100 MB
)

// ErrTooLarge is returned when a report exceeds the size limit.
var ErrTooLarge = errors.New("report exceeds size limit")

// ErrEmpty is returned when a location yields no bytes.
var ErrEmpty = errors.New("no input provided")

// Fetcher acquires raw report bytes.
type Fetcher struct {
	cache      *cache.Cache
	client     *http.Client
	stdin      io.Reader
	warn       io.Writer
	skipUpdate bool
	limit      int64
}

// Option customizes a Fetcher.
type Option func(*Fetcher)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(f *Fetcher) { f.client = c }
}

// WithStdin replaces os.Stdin as the source for "-".
func WithStdin(r io.Reader) Option {
	return func(f *Fetcher) { f.stdin = r }
}

// WithWarnings sets where stale-cache warnings go (stderr by default).
func WithWarnings(w io.Writer) Option {
	return func(f *Fetcher) { f.warn = w }
}

// WithSkipUpdate makes a cached copy of a remote report win over a download.
func WithSkipUpdate(skip bool) Option {
	return func(f *Fetcher) { f.skipUpdate = skip }
}

// WithLimit overrides the maximum accepted report size in bytes.
func WithLimit(n int64) Option {
	return func(f *Fetcher) { f.limit = n }
}

// New creates a Fetcher that caches remote reports under cacheDir/reports/.
// An empty cacheDir disables caching.
func New(cacheDir string, opts ...Option) *Fetcher {
	f := &Fetcher{
		client: &http.Client{Timeout: defaultTimeout},
		stdin:  os.Stdin,
		warn:   os.Stderr,
		limit:  maxReportSize,
	}
	if cacheDir != "" {
		f.cache = cache.New(filepath.Join(cacheDir, "reports"))
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// IsRemote reports whether location is fetched over HTTP(S).
func IsRemote(location string) bool {
	lower := strings.ToLower(location)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

// Fetch returns the raw bytes at location. It does not parse them.
func (f *Fetcher) Fetch(ctx context.Context, location string) ([]byte, error) {
	var (
		data []byte
		err  error
	)
	switch {
	case location == Stdin:
		data, err = f.readLimited(f.stdin)
		if err != nil {
			return nil, fmt.Errorf("reading stdin: %w", err)
		}
	case IsRemote(location):
		data, err = f.fetchRemote(ctx, location)
		if err != nil {
			return nil, err
		}
	default:
		data, err = f.readFile(location)
		if err != nil {
			return nil, err
		}
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmpty, describe(location))
	}
	return data, nil
}

func (f *Fetcher) readFile(path string) ([]byte, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening report: %w", err)
	}
	defer file.Close()

	data, err := f.readLimited(file)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return data, nil
}

func (f *Fetcher) fetchRemote(ctx context.Context, url string) ([]byte, error) {
	download := func(ctx context.Context) ([]byte, error) {
		return f.download(ctx, url)
	}
	if f.cache == nil {
		data, err := download(ctx)
		if err != nil {
			return nil, fmt.Errorf("downloading report: %w", err)
		}
		return data, nil
	}

	data, err := f.cache.Fetch(ctx, cache.Key(url)+".json", url, f.skipUpdate, download, f.warn)
	if err != nil {
		return nil, fmt.Errorf("downloading report: %w", err)
	}
	return data, nil
}

func (f *Fetcher) download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("HTTP %d for %s", resp.StatusCode, url)
	}
	return f.readLimited(resp.Body)
}

// readLimited reads r fully, failing instead of truncating past the limit.
func (f *Fetcher) readLimited(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, f.limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > f.limit {
		return nil, fmt.Errorf("%w of %d bytes", ErrTooLarge, f.limit)
	}
	return data, nil
}

func describe(location string) string {
	if location == Stdin {
		return "stdin"
	}
	return location
}
