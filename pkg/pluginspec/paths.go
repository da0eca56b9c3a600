// Copyright 2025 The polytool Authors.
// SPDX-License-Identifier: Apache-2.0

package pluginspec

import (
	"path/filepath"

	"github.com/adrg/xdg"
)

// DefaultDataRoot is the data root used when the command layer doesn't
// override it explicitly.
var DefaultDataRoot = filepath.Join(xdg.DataHome, "polytool")

// Plugin is the Path Layout component: the four per-plugin directories
// derived purely from a data root and a plugin name. It carries no
// behaviour — callers needing caches, script execution, or manifest
// data compose those around a Plugin value (see package plugin).
type Plugin struct {
	Name PluginName

	// PluginPath is where the plugin's git clone lives. Its existence
	// is the definition of "installed".
	PluginPath string
	// CachePath is where the plugin's cache-manager files live.
	CachePath string
	// DownloadsPath is where tool-version downloads land, owned by the
	// command layer and passed to scripts.
	DownloadsPath string
	// InstallsPath is where tool-version installs land, owned by the
	// command layer and passed to scripts.
	InstallsPath string

	// RepoURLOverride, when non-empty, is a user-supplied git URL that
	// takes precedence over a registry lookup.
	RepoURLOverride string
}

// NewPlugin computes the four per-plugin directories under dataRoot for
// name. The plugin need not be installed for this to succeed; only
// ensure_installed materializes PluginPath on disk.
func NewPlugin(dataRoot string, name PluginName, repoURLOverride string) *Plugin {
	base := filepath.Join(dataRoot, "plugins", string(name))
	return &Plugin{
		Name:            name,
		PluginPath:      base,
		CachePath:       filepath.Join(dataRoot, "cache", string(name)),
		DownloadsPath:   filepath.Join(dataRoot, "downloads", string(name)),
		InstallsPath:    filepath.Join(dataRoot, "installs", string(name)),
		RepoURLOverride: repoURLOverride,
	}
}

// BinDir returns <plugin_path>/bin.
func (p *Plugin) BinDir() string { return filepath.Join(p.PluginPath, "bin") }

// CommandsDir returns <plugin_path>/lib/commands.
func (p *Plugin) CommandsDir() string { return filepath.Join(p.PluginPath, "lib", "commands") }

// ManifestPath returns <plugin_path>/rtx.plugin.toml.
func (p *Plugin) ManifestPath() string { return filepath.Join(p.PluginPath, "rtx.plugin.toml") }
