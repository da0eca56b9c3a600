// Copyright 2025 The polytool Authors.
// SPDX-License-Identifier: Apache-2.0

package plugin

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/polytool/polytool/pkg/pluginspec"
)

// ErrPluginNotInstalled is the sentinel behind PluginNotInstalledError.
var ErrPluginNotInstalled = errors.New("plugin not installed")

// ErrNoRepoURL is the sentinel behind NoRepoURLError.
var ErrNoRepoURL = errors.New("no repo url available")

// ErrGitFailure is the sentinel behind GitFailureError.
var ErrGitFailure = errors.New("git operation failed")

// PluginNotInstalledError reports that an operation required an
// installed plugin, but the plugin is absent or the user declined the
// install confirmation prompt.
type PluginNotInstalledError struct {
	Plugin pluginspec.PluginName
}

func (e *PluginNotInstalledError) Error() string {
	return fmt.Sprintf("plugin %q is not installed", e.Plugin)
}

func (e *PluginNotInstalledError) Unwrap() error { return ErrPluginNotInstalled }

// NoRepoURLError reports that install was requested but no repo URL
// could be resolved from either an override or the registry.
type NoRepoURLError struct {
	Plugin pluginspec.PluginName
}

func (e *NoRepoURLError) Error() string {
	return fmt.Sprintf("no repo url for plugin %q: not overridden and not in the registry", e.Plugin)
}

func (e *NoRepoURLError) Unwrap() error { return ErrNoRepoURL }

// GitFailureError reports that a git invocation failed during a plugin
// lifecycle operation.
type GitFailureError struct {
	Plugin pluginspec.PluginName
	Op     string
	Cause  error
}

func (e *GitFailureError) Error() string {
	return fmt.Sprintf("plugin %q: git %s failed: %v", e.Plugin, e.Op, e.Cause)
}

func (e *GitFailureError) Unwrap() error { return ErrGitFailure }
