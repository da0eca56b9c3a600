// Copyright 2025 The polytool Authors.
// SPDX-License-Identifier: Apache-2.0

// Package pluginlock serializes concurrent ensure_installed calls on
// the same plugin with a per-plugin-path advisory file lock.
package pluginlock

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/alexflint/go-filemutex"
)

// DefaultTimeout bounds how long Acquire waits for the lock before
// giving up.
const DefaultTimeout = 30 * time.Second

// Lock guards a single plugin's plugin_path during ensure_installed.
// The zero value is not usable; construct with Acquire.
type Lock struct {
	mu *filemutex.FileMutex
}

// lockFileFor returns the lock file path for a plugin path: a sibling
// dotfile so it survives uninstall/reinstall of the plugin clone
// itself.
func lockFileFor(pluginPath string) string {
	dir := filepath.Dir(pluginPath)
	return filepath.Join(dir, "."+filepath.Base(pluginPath)+".install.lock")
}

// Acquire blocks (up to timeout) until the install lock for pluginPath
// is held by this process, creating the lock's parent directory if
// needed. Callers must call Release on every exit path, including
// error returns from the locked section.
func Acquire(pluginPath string, timeout time.Duration) (*Lock, error) {
	lockPath := lockFileFor(pluginPath)
	dir := filepath.Dir(lockPath)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}

	mu, err := filemutex.New(lockPath)
	if err != nil {
		return nil, err
	}

	result := make(chan error, 1)
	cancel := make(chan struct{})
	go func() {
		err := mu.Lock()
		select {
		case <-cancel:
			_ = mu.Close()
		case result <- err:
		}
	}()

	select {
	case err := <-result:
		if err != nil {
			return nil, err
		}
		return &Lock{mu: mu}, nil
	case <-time.After(timeout):
		close(cancel)
		return nil, fmt.Errorf("timeout waiting for install lock on %s", pluginPath)
	}
}

// Release unlocks and closes the underlying file handle. It is safe to
// call at most once; callers typically `defer lock.Release()`
// immediately after Acquire succeeds.
func (l *Lock) Release() error {
	if l == nil || l.mu == nil {
		return nil
	}
	return l.mu.Close()
}
