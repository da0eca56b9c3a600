// Copyright 2025 The polytool Authors.
// SPDX-License-Identifier: Apache-2.0

// Package legacycache is the Legacy File Cache: a per-legacy-file
// on-disk cache of a plugin's parsed version string, invalidated by
// the legacy file's own mtime.
package legacycache

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/rogpeppe/go-internal/lockedfile"
)

// Cache memoizes parse_legacy_file results for one plugin.
type Cache struct {
	// Dir is the plugin's legacy cache directory, e.g.
	// <cache_path>/legacy/<plugin>.
	Dir string
}

// New returns a Cache rooted at dir.
func New(dir string) *Cache {
	return &Cache{Dir: dir}
}

// keyFor hashes the legacy file's absolute path, content-addressing the
// cache entry by which file it describes rather than by the file's
// contents (repurposed from VerifySHA256's checksum-verification idiom
// to path-based addressing).
func keyFor(legacyFilePath string) (string, error) {
	abs, err := filepath.Abs(legacyFilePath)
	if err != nil {
		return "", errors.Wrapf(err, "resolving absolute path of %s", legacyFilePath)
	}
	sum := sha256.Sum256([]byte(abs))
	return hex.EncodeToString(sum[:]), nil
}

func (c *Cache) pathFor(legacyFilePath string) (string, error) {
	key, err := keyFor(legacyFilePath)
	if err != nil {
		return "", err
	}
	return filepath.Join(c.Dir, key+".txt"), nil
}

// Get returns the cached parsed version for legacyFilePath and true if
// the cache file exists and is at least as new as the legacy file
// itself.
func (c *Cache) Get(legacyFilePath string) (string, bool) {
	legacyInfo, err := os.Stat(legacyFilePath)
	if err != nil {
		return "", false
	}

	cachePath, err := c.pathFor(legacyFilePath)
	if err != nil {
		return "", false
	}

	cacheInfo, err := os.Stat(cachePath)
	if err != nil {
		return "", false
	}
	if cacheInfo.ModTime().Before(legacyInfo.ModTime()) {
		return "", false
	}

	raw, err := lockedfile.Read(cachePath)
	if err != nil {
		return "", false
	}
	return strings.TrimSpace(string(raw)), true
}

// Put writes version as the cached parse result for legacyFilePath.
func (c *Cache) Put(legacyFilePath, version string) error {
	cachePath, err := c.pathFor(legacyFilePath)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(cachePath), 0o755); err != nil {
		return errors.Wrapf(err, "creating legacy cache directory for %s", legacyFilePath)
	}
	if err := lockedfile.Write(cachePath, strings.NewReader(strings.TrimSpace(version)), 0o644); err != nil {
		return errors.Wrapf(err, "writing legacy cache entry for %s", legacyFilePath)
	}
	return nil
}
