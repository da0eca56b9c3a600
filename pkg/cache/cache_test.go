// Copyright 2025 The polytool Authors.
// SPDX-License-Identifier: Apache-2.0

package cache

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetOrTryInitCachesAcrossCalls(t *testing.T) {
	path := filepath.Join(t.TempDir(), "versions.cache")
	m := New[[]string](path, time.Hour)

	calls := 0
	fn := func() ([]string, error) {
		calls++
		return []string{"1.0.0", "1.1.0"}, nil
	}

	v1, err := m.GetOrTryInit(fn)
	require.NoError(t, err)
	assert.Equal(t, []string{"1.0.0", "1.1.0"}, v1)
	assert.Equal(t, 1, calls)

	v2, err := m.GetOrTryInit(fn)
	require.NoError(t, err)
	assert.Equal(t, v1, v2)
	assert.Equal(t, 1, calls, "second call should hit the cache, not invoke fn again")
}

func TestGetOrTryInitExpiresByMaxAge(t *testing.T) {
	path := filepath.Join(t.TempDir(), "versions.cache")
	m := New[string](path, 10*time.Millisecond)

	calls := 0
	fn := func() (string, error) {
		calls++
		return "fresh", nil
	}

	_, err := m.GetOrTryInit(fn)
	require.NoError(t, err)

	time.Sleep(30 * time.Millisecond)

	_, err = m.GetOrTryInit(fn)
	require.NoError(t, err)
	assert.Equal(t, 2, calls, "entry older than MaxAge must be recomputed")
}

func TestGetOrTryInitInvalidatedBySentinel(t *testing.T) {
	dir := t.TempDir()
	cachePath := filepath.Join(dir, "aliases.cache")
	sentinel := filepath.Join(dir, "rtx.plugin.toml")
	require.NoError(t, os.WriteFile(sentinel, []byte("x"), 0o644))

	m := New[string](cachePath, 0, sentinel)

	calls := 0
	fn := func() (string, error) {
		calls++
		return "v", nil
	}

	_, err := m.GetOrTryInit(fn)
	require.NoError(t, err)
	assert.Equal(t, 1, calls)

	// Touch the sentinel so its mtime moves past the cache file's.
	later := time.Now().Add(time.Second)
	require.NoError(t, os.Chtimes(sentinel, later, later))

	_, err = m.GetOrTryInit(fn)
	require.NoError(t, err)
	assert.Equal(t, 2, calls, "a sentinel newer than the cache file must invalidate it")
}

func TestGetOrTryInitCompressed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "legacy.cache")
	m := New[[]string](path, time.Hour)
	m.Compress = true

	calls := 0
	fn := func() ([]string, error) {
		calls++
		return []string{"lts", "stable", "latest"}, nil
	}

	v1, err := m.GetOrTryInit(fn)
	require.NoError(t, err)
	assert.Equal(t, []string{"lts", "stable", "latest"}, v1)

	v2, err := m.GetOrTryInit(fn)
	require.NoError(t, err)
	assert.Equal(t, v1, v2)
	assert.Equal(t, 1, calls)
}

func TestGetOrTryInitFnErrorNotCached(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.cache")
	m := New[string](path, time.Hour)

	_, err := m.GetOrTryInit(func() (string, error) {
		return "", assert.AnError
	})
	require.Error(t, err)
	assert.NoFileExists(t, path)
}

func TestGetOrTryInitCorruptFileTreatedAsMiss(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corrupt.cache")
	require.NoError(t, os.WriteFile(path, []byte("not a gob stream"), 0o644))
	m := New[string](path, time.Hour)

	v, err := m.GetOrTryInit(func() (string, error) { return "recovered", nil })
	require.NoError(t, err)
	assert.Equal(t, "recovered", v)
}
