// Copyright 2025 The polytool Authors.
// SPDX-License-Identifier: Apache-2.0

// Package cache is the Cache Manager: a generic, value-typed, on-disk
// memoizer with freshness predicates (max age, sentinel file mtimes).
package cache

import (
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	"github.com/rogpeppe/go-internal/lockedfile"
)

// Manager memoizes values of type V in a single file on disk.
type Manager[V any] struct {
	// Path is the cache file's location. Parent directories are
	// created as needed on write.
	Path string
	// MaxAge bounds how long a cache entry stays fresh after it was
	// written. Zero means no age limit (freshness then depends only on
	// SentinelFiles, if any).
	MaxAge time.Duration
	// SentinelFiles are files whose mtimes bound freshness: a cache
	// entry is stale if any sentinel's mtime is newer than the cache
	// file's mtime.
	SentinelFiles []string
	// Compress gzips the encoded payload on disk.
	Compress bool
}

// New constructs a Manager for values of type V.
func New[V any](path string, maxAge time.Duration, sentinelFiles ...string) *Manager[V] {
	return &Manager[V]{Path: path, MaxAge: maxAge, SentinelFiles: sentinelFiles}
}

// GetOrTryInit returns the cached value if fresh, otherwise calls fn,
// caches its result, and returns it. A cache file that fails to decode
// is treated as a miss, never as a fatal error: fn is called as if the
// file were absent, and the corrupt file is overwritten on success.
func (m *Manager[V]) GetOrTryInit(fn func() (V, error)) (V, error) {
	if v, ok := m.tryGet(); ok {
		return v, nil
	}

	v, err := fn()
	if err != nil {
		var zero V
		return zero, err
	}

	if err := m.put(v); err != nil {
		// Caching is best-effort: a write failure must not prevent the
		// freshly computed value from reaching the caller.
		return v, nil //nolint:nilerr
	}
	return v, nil
}

// tryGet returns the cached value and true if a fresh, decodable entry
// exists.
func (m *Manager[V]) tryGet() (V, bool) {
	var zero V

	info, err := os.Stat(m.Path)
	if err != nil {
		return zero, false
	}

	if !m.isFresh(info.ModTime()) {
		return zero, false
	}

	raw, err := lockedfile.Read(m.Path)
	if err != nil {
		return zero, false
	}

	v, err := decode[V](raw, m.Compress)
	if err != nil {
		return zero, false
	}
	return v, true
}

// isFresh reports whether a cache file written at writtenAt is still
// usable: every sentinel's mtime must be no newer than writtenAt, and
// (if MaxAge is set) writtenAt must be within MaxAge of now.
func (m *Manager[V]) isFresh(writtenAt time.Time) bool {
	for _, sentinel := range m.SentinelFiles {
		info, err := os.Stat(sentinel)
		if err != nil {
			// A sentinel that can't be stat-ed can't bound freshness;
			// treat it conservatively as disqualifying the entry.
			return false
		}
		if info.ModTime().After(writtenAt) {
			return false
		}
	}

	if m.MaxAge > 0 && time.Since(writtenAt) > m.MaxAge {
		return false
	}
	return true
}

// put encodes v and writes it through an exclusive lock, so concurrent
// writers are serialized rather than interleaved mid-stream (see
// DESIGN.md for the open question this resolves).
func (m *Manager[V]) put(v V) error {
	if err := os.MkdirAll(filepath.Dir(m.Path), 0o755); err != nil {
		return errors.Wrapf(err, "creating cache directory for %s", m.Path)
	}

	raw, err := encode(v, m.Compress)
	if err != nil {
		return errors.Wrap(err, "encoding cache entry")
	}

	f, err := lockedfile.Edit(m.Path)
	if err != nil {
		return errors.Wrapf(err, "locking cache file %s", m.Path)
	}
	defer f.Close()

	if err := f.Truncate(0); err != nil {
		return errors.Wrap(err, "truncating cache file")
	}
	if _, err := f.Seek(0, 0); err != nil {
		return errors.Wrap(err, "seeking cache file")
	}
	if _, err := f.Write(raw); err != nil {
		return errors.Wrap(err, "writing cache file")
	}
	return nil
}
