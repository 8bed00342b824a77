// SPDX-FileCopyrightText: 2026 Bonial International GmbH
// SPDX-License-Identifier: Apache-2.0

package source

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bonial-oss/vuln-browse/internal/cache"
)

const report = `{"matches": []}`

func TestFetch_Stdin(t *testing.T) {
	f := New("", WithStdin(strings.NewReader(report)))
	data, err := f.Fetch(context.Background(), Stdin)
	require.NoError(t, err)
	assert.Equal(t, report, string(data))
}

func TestFetch_EmptyStdin(t *testing.T) {
	f := New("", WithStdin(strings.NewReader("")))
	_, err := f.Fetch(context.Background(), Stdin)
	require.ErrorIs(t, err, ErrEmpty)
	assert.Contains(t, err.Error(), "stdin")
}

func TestFetch_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "grype.json")
	require.NoError(t, os.WriteFile(path, []byte(report), 0o644))

	data, err := New("").Fetch(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, report, string(data))
}

func TestFetch_MissingFile(t *testing.T) {
	_, err := New("").Fetch(context.Background(), filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestFetch_TooLarge(t *testing.T) {
	f := New("", WithStdin(strings.NewReader(report)), WithLimit(4))
	_, err := f.Fetch(context.Background(), Stdin)
	assert.ErrorIs(t, err, ErrTooLarge)
}

func TestFetch_RemoteCached(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte(report))
	}))
	defer srv.Close()

	f := New(t.TempDir())
	for i := 0; i < 2; i++ {
		data, err := f.Fetch(context.Background(), srv.URL+"/scan.json")
		require.NoError(t, err)
		assert.Equal(t, report, string(data))
	}
	assert.Equal(t, int32(1), hits.Load(), "second fetch is served from cache")
}

func TestFetch_RemoteStaleFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusBadGateway)
	}))
	defer srv.Close()
	url := srv.URL + "/scan.json"

	dir := t.TempDir()
	var warn bytes.Buffer
	f := New(dir, WithWarnings(&warn))
	f.cache = cache.NewWithTTL(filepath.Join(dir, "reports"), 0)
	require.NoError(t, f.cache.Store(cache.Key(url)+".json", []byte(report)))

	data, err := f.Fetch(context.Background(), url)
	require.NoError(t, err)
	assert.Equal(t, report, string(data))
	assert.Contains(t, warn.String(), "using stale cache")
}

func TestFetch_RemoteErrorWithoutCache(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	_, err := New("").Fetch(context.Background(), srv.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP 404")
}

func TestIsRemote(t *testing.T) {
	assert.True(t, IsRemote("https://example.com/r.json"))
	assert.True(t, IsRemote("HTTP://example.com/r.json"))
	assert.False(t, IsRemote("./http-report.json"))
	assert.False(t, IsRemote(Stdin))
}
