// Copyright 2025 The polytool Authors.
// SPDX-License-Identifier: Apache-2.0

package plugin

import (
	"sort"
	"strconv"
	"sync"

	"github.com/polytool/polytool/pkg/pluginspec"
)

// versionMemo is the Per-version Exec-Env Cache: an in-process memo
// keyed by tool-version identity. Concurrent callers requesting the
// same key block on each other only until the first populates it;
// distinct keys, and reads of already-populated keys, never block.
type versionMemo[V any] struct {
	mu      sync.Mutex
	entries map[string]*memoEntry[V]
}

type memoEntry[V any] struct {
	once sync.Once
	val  V
	err  error
}

func newVersionMemo[V any]() *versionMemo[V] {
	return &versionMemo[V]{entries: make(map[string]*memoEntry[V])}
}

// getOrCompute returns the memoized result for key, computing it with
// fn on first request.
func (m *versionMemo[V]) getOrCompute(key string, fn func() (V, error)) (V, error) {
	m.mu.Lock()
	e, ok := m.entries[key]
	if !ok {
		e = &memoEntry[V]{}
		m.entries[key] = e
	}
	m.mu.Unlock()

	e.once.Do(func() {
		e.val, e.err = fn()
	})
	return e.val, e.err
}

// tvKey renders a ToolVersion's identity as a stable memoization key.
func tvKey(tv pluginspec.ToolVersion) string {
	opts := make([]string, 0, len(tv.Opts))
	for k, v := range tv.Opts {
		opts = append(opts, k+"="+v)
	}
	sort.Strings(opts)

	key := strconv.Itoa(int(tv.Request.Kind)) + "|" + tv.Request.Value + "|" + tv.Version
	for _, o := range opts {
		key += "|" + o
	}
	return key
}
