// SPDX-FileCopyrightText: 2026 Bonial International GmbH
// SPDX-License-Identifier: Apache-2.0

package epss

import (
	"compress/gzip"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/bonial-oss/vuln-browse/internal/cache"
	"github.com/bonial-oss/vuln-browse/internal/types"
)

const (
	cacheFilename       = "epss_scores.csv"
	defaultBaseURL      = "https://epss.empiricalsecurity.com"
	maxDecompressedSize = 100 * 1024 * 1024 // 100 MB
)

var defaultHTTPClient = &http.Client{Timeout: 60 * time.Second}

// Source provides access to EPSS data with caching support.
type Source struct {
	cache        *cache.Cache
	baseURL      string
	client       *http.Client
	warn         io.Writer
	now          func() time.Time
	entries      map[string]types.EPSSEntry
	modelVersion string
	scoreDate    string
}

// Option customizes a Source.
type Option func(*Source)

// WithBaseURL points the source at another feed host.
func WithBaseURL(u string) Option {
	return func(s *Source) { s.baseURL = strings.TrimRight(u, "/") }
}

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(s *Source) { s.client = c }
}

// WithWarnings sets where stale-cache warnings go (stderr by default).
func WithWarnings(w io.Writer) Option {
	return func(s *Source) { s.warn = w }
}

// NewSource creates a new EPSS data source with cache stored under cacheDir/epss/.
func NewSource(cacheDir string, opts ...Option) *Source {
	s := &Source{
		cache:   cache.New(filepath.Join(cacheDir, "epss")),
		baseURL: defaultBaseURL,
		client:  defaultHTTPClient,
		warn:    os.Stderr,
		now:     time.Now,
		entries: make(map[string]types.EPSSEntry),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load fetches EPSS data, using the cache when it is fresh or when
// skipUpdate is set, and falling back to a stale copy if the download fails.
func (s *Source) Load(ctx context.Context, skipUpdate bool) error {
	data, err := s.cache.Fetch(ctx, cacheFilename, "EPSS data", skipUpdate, s.download, s.warn)
	if err != nil {
		return fmt.Errorf("downloading EPSS data: %w", err)
	}
	return s.parseCSV(data)
}

// Lookup returns the EPSS entry for the given CVE ID, or nil if not found.
func (s *Source) Lookup(cveID string) *types.EPSSEntry {
	entry, ok := s.entries[cveID]
	if !ok {
		return nil
	}
	return &entry
}

// ModelVersion returns the model version string from the EPSS CSV header.
func (s *Source) ModelVersion() string {
	return s.modelVersion
}

// ScoreDate returns the score date string from the EPSS CSV header.
func (s *Source) ScoreDate() string {
	return s.scoreDate
}

// download fetches the gzip-compressed EPSS CSV for today's date.
// If today's file is not available, it falls back to yesterday's date.
func (s *Source) download(ctx context.Context) ([]byte, error) {
	now := s.now().UTC()
	today := now.Format("2006-01-02")
	yesterday := now.AddDate(0, 0, -1).Format("2006-01-02")

	data, err := s.downloadForDate(ctx, today)
	if err == nil {
		return data, nil
	}
	if errors.Is(err, context.Canceled) {
		return nil, err
	}

	data, err2 := s.downloadForDate(ctx, yesterday)
	if err2 == nil {
		return data, nil
	}

	return nil, fmt.Errorf("today (%s): %w; yesterday (%s): %v", today, err, yesterday, err2)
}

// downloadForDate downloads and decompresses the EPSS CSV for the given date string.
func (s *Source) downloadForDate(ctx context.Context, date string) ([]byte, error) {
	url := fmt.Sprintf("%s/epss_scores-%s.csv.gz", s.baseURL, date)

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

	gz, err := gzip.NewReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("creating gzip reader: %w", err)
	}
	defer gz.Close()

	data, err := io.ReadAll(io.LimitReader(gz, maxDecompressedSize))
	if err != nil {
		return nil, fmt.Errorf("reading gzip data: %w", err)
	}

	return data, nil
}

// parseCSV replaces the loaded scores with the contents of data. The feed
// starts with a "#key:value,..." line followed by a cve,epss,percentile table.
func (s *Source) parseCSV(data []byte) error {
	body := string(data)
	var header string
	if strings.HasPrefix(body, "#") {
		header, body, _ = strings.Cut(body, "\n")
	}
	meta := parseHeader(header)

	reader := csv.NewReader(strings.NewReader(body))
	reader.FieldsPerRecord = -1
	reader.ReuseRecord = true

	entries := make(map[string]types.EPSSEntry)
	for line := 0; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("reading CSV record: %w", err)
		}
		if line == 0 || len(record) < 3 {
			continue
		}

		cve := record[0]
		score, err := strconv.ParseFloat(record[1], 64)
		if err != nil {
			return fmt.Errorf("parsing EPSS score for %s: %w", cve, err)
		}
		percentile, err := strconv.ParseFloat(record[2], 64)
		if err != nil {
			return fmt.Errorf("parsing EPSS percentile for %s: %w", cve, err)
		}
		entries[cve] = types.EPSSEntry{CVE: cve, Score: score, Percentile: percentile}
	}

	s.entries = entries
	s.modelVersion = meta["model_version"]
	s.scoreDate = meta["score_date"]
	return nil
}

// parseHeader splits "#model_version:v2025.03.14,score_date:2026-02-12T00:00:00+0000"
// into its key/value pairs. Only the first colon separates key from value.
func parseHeader(line string) map[string]string {
	meta := make(map[string]string)
	for _, part := range strings.Split(strings.TrimPrefix(line, "#"), ",") {
		if key, value, ok := strings.Cut(part, ":"); ok {
			meta[strings.TrimSpace(key)] = strings.TrimSpace(value)
		}
	}
	return meta
}
