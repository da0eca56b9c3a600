// Copyright 2025 The polytool Authors.
// SPDX-License-Identifier: Apache-2.0

// Package plugin is the External Plugin façade: it ties the Path
// Layout, Git Adapter, Script Manager, Cache Manager, Legacy File
// Cache, Plugin Manifest Loader, and Plugin Registry Lookup components
// into the single surface the command layer talks to.
package plugin

import (
	"context"
	"os"
	"path/filepath"

	"github.com/AlecAivazis/survey/v2"
	"github.com/pkg/errors"

	"github.com/polytool/polytool/pkg/cache"
	"github.com/polytool/polytool/pkg/gitrepo"
	"github.com/polytool/polytool/pkg/legacycache"
	"github.com/polytool/polytool/pkg/manifest"
	"github.com/polytool/polytool/pkg/pluginlock"
	"github.com/polytool/polytool/pkg/pluginscript"
	"github.com/polytool/polytool/pkg/pluginspec"
	"github.com/polytool/polytool/pkg/registry"
)

// Progress is the narrow surface the façade needs from a progress
// reporter: step framing plus line relay. *progress.Reporter satisfies
// this structurally; the façade never imports package progress
// directly so the two packages stay decoupled.
type Progress interface {
	pluginscript.LineSink
	Start(text string)
	Success(text string)
	Fail(text string)
}

// Config is the process-wide configuration the façade needs that isn't
// specific to any one plugin.
type Config struct {
	// DataRoot is the user-data directory plugins/cache/installs/
	// downloads are rooted under.
	DataRoot string
	// ShimsDir is exposed to scripts as POLYTOOL_SHIMS_DIR.
	ShimsDir string
	// AutoConfirm skips the install confirmation prompt for
	// registry-resolved (non-override) URLs.
	AutoConfirm bool
	// Verbose relays script stderr to the caller even on success.
	Verbose bool
	// Lookup resolves a bare plugin name to a registry URL. Defaults to
	// registry.Default when nil.
	Lookup registry.Lookup
}

func (c Config) lookup() registry.Lookup {
	if c.Lookup != nil {
		return c.Lookup
	}
	return registry.Default
}

// External is one plugin's façade: lifecycle, capability probes,
// cached version queries, and per-tool-version operations.
type External struct {
	cfg  Config
	spec *pluginspec.Plugin

	git     *gitrepo.Repo
	scripts *pluginscript.Manager
	legacy  *legacycache.Cache

	manifest *manifest.Manifest

	remoteVersions  *cache.Manager[[]string]
	latestStable    *cache.Manager[string]
	aliases         *cache.Manager[map[string]string]
	legacyFilenames *cache.Manager[[]string]

	binPaths *versionMemo[[]string]
	execEnv  *versionMemo[map[string]string]
}

// New constructs the façade for plugin name. The plugin need not be
// installed yet: paths and cache managers are computed regardless, per
// spec, and the manifest is loaded opportunistically (a missing clone
// simply means no manifest is found yet).
func New(cfg Config, name pluginspec.PluginName, repoURLOverride string) (*External, error) {
	spec := pluginspec.NewPlugin(cfg.DataRoot, name, repoURLOverride)

	m, err := manifest.Load(spec.ManifestPath())
	if err != nil {
		return nil, err
	}

	freshness := remoteVersionsFreshnessFromEnv()
	scripts := &pluginscript.Manager{Plugin: spec, ShimsDir: cfg.ShimsDir, Verbose: cfg.Verbose}

	listAllPath := scripts.ScriptPath(pluginspec.Script(pluginspec.ScriptListAll))
	latestStablePath := scripts.ScriptPath(pluginspec.Script(pluginspec.ScriptLatestStable))
	listAliasesPath := scripts.ScriptPath(pluginspec.Script(pluginspec.ScriptListAliases))
	listLegacyFilenamesPath := scripts.ScriptPath(pluginspec.Script(pluginspec.ScriptListLegacyFilenames))

	return &External{
		cfg:      cfg,
		spec:     spec,
		git:      gitrepo.New(spec.PluginPath),
		scripts:  scripts,
		legacy:   legacycache.New(filepath.Join(spec.CachePath, "legacy", string(name))),
		manifest: m,

		// Sentinelled on plugin_path plus the backing script so that a
		// git pull (plugin update) or a fresh clone invalidates any
		// entry written before it, rather than only expiring after the
		// full freshness window.
		remoteVersions:  cache.New[[]string](filepath.Join(spec.CachePath, "remote_versions.cache"), freshness, spec.PluginPath, listAllPath),
		latestStable:    cache.New[string](filepath.Join(spec.CachePath, "latest_stable.cache"), freshness, spec.PluginPath, latestStablePath),
		aliases:         cache.New[map[string]string](filepath.Join(spec.CachePath, "aliases.cache"), freshness, spec.PluginPath, listAliasesPath),
		legacyFilenames: cache.New[[]string](filepath.Join(spec.CachePath, "legacy_filenames.cache"), freshness, spec.PluginPath, listLegacyFilenamesPath),

		binPaths: newVersionMemo[[]string](),
		execEnv:  newVersionMemo[map[string]string](),
	}, nil
}

// Name returns the plugin's name.
func (e *External) Name() pluginspec.PluginName { return e.spec.Name }

// IsInstalled reports whether plugin_path exists, the definition of
// "installed".
func (e *External) IsInstalled() bool {
	info, err := os.Stat(e.spec.PluginPath)
	return err == nil && info.IsDir()
}

// String renders a debug representation beginning with the literal
// prefix `ExternalPlugin { name: "<name>"`.
func (e *External) String() string {
	return `ExternalPlugin { name: "` + e.spec.Name.String() + `", plugin_path: "` + e.spec.PluginPath + `" }`
}

// --- 4.5.1 capability probes ---

// HasListAllScript reports whether bin/list-all exists.
func (e *External) HasListAllScript() bool {
	return e.scripts.ScriptExists(pluginspec.Script(pluginspec.ScriptListAll))
}

// HasListAliasScript reports whether bin/list-aliases exists.
func (e *External) HasListAliasScript() bool {
	return e.scripts.ScriptExists(pluginspec.Script(pluginspec.ScriptListAliases))
}

// HasListLegacyFilenamesScript reports whether bin/list-legacy-filenames
// exists.
func (e *External) HasListLegacyFilenamesScript() bool {
	return e.scripts.ScriptExists(pluginspec.Script(pluginspec.ScriptListLegacyFilenames))
}

// HasLatestStableScript reports whether bin/latest-stable exists.
func (e *External) HasLatestStableScript() bool {
	return e.scripts.ScriptExists(pluginspec.Script(pluginspec.ScriptLatestStable))
}

// --- 4.5.2 ensure_installed / 4.5.3 install ---

// EnsureInstalled materializes the plugin clone on disk if it isn't
// already present. force re-installs even when already installed,
// bypassing the confirmation prompt (the user already asked for this
// plugin by name).
func (e *External) EnsureInstalled(ctx context.Context, p Progress, force bool) error {
	if !force && e.IsInstalled() {
		return nil
	}

	if !force && !e.cfg.AutoConfirm && e.spec.RepoURLOverride == "" {
		confirmed := false
		prompt := &survey.Confirm{
			Message: "Plugin " + e.spec.Name.String() + " is not installed. Install it from the plugin registry?",
			Default: false,
		}
		if err := survey.AskOne(prompt, &confirmed); err != nil || !confirmed {
			return &PluginNotInstalledError{Plugin: e.spec.Name}
		}
	}

	lock, err := pluginlock.Acquire(e.spec.PluginPath, pluginlock.DefaultTimeout)
	if err != nil {
		return errors.Wrapf(err, "acquiring install lock for plugin %s", e.spec.Name)
	}
	defer lock.Release()

	return e.install(ctx, p)
}

// install resolves the repo URL, clones (uninstalling any prior clone
// first), checks out a pinned ref if the URL carried one, and warms the
// version caches in the fixed sequence list-all -> aliases -> legacy
// filenames.
func (e *External) install(ctx context.Context, p Progress) error {
	url := e.spec.RepoURLOverride
	if url == "" {
		if looked, ok := e.cfg.lookup()(e.spec.Name.String()); ok {
			url = looked
		}
	}
	if url == "" {
		return &NoRepoURLError{Plugin: e.spec.Name}
	}

	repoURL, ref, hasRef := gitrepo.SplitURLAndRef(url)

	if e.IsInstalled() {
		if err := e.Uninstall(p); err != nil {
			return err
		}
	}

	if p != nil {
		p.Start("installing plugin " + e.spec.Name.String())
	}

	if err := e.git.Clone(ctx, repoURL); err != nil {
		if p != nil {
			p.Fail("failed to clone " + repoURL)
		}
		return &GitFailureError{Plugin: e.spec.Name, Op: "clone", Cause: err}
	}

	if hasRef {
		if err := e.git.Checkout(ctx, ref); err != nil {
			if p != nil {
				p.Fail("failed to check out " + ref)
			}
			return &GitFailureError{Plugin: e.spec.Name, Op: "checkout", Cause: err}
		}
	}

	// Reload the manifest now that the clone exists.
	m, err := manifest.Load(e.spec.ManifestPath())
	if err != nil {
		return err
	}
	e.manifest = m

	if e.HasListAllScript() {
		if _, err := e.ListRemoteVersions(ctx); err != nil {
			return err
		}
	}
	if e.HasListAliasScript() || (e.manifest != nil && e.manifest.HasAliases()) {
		if _, err := e.GetAliases(ctx); err != nil {
			return err
		}
	}
	if e.HasListLegacyFilenamesScript() || (e.manifest != nil && e.manifest.HasLegacyFilenames()) {
		if _, err := e.LegacyFilenames(ctx); err != nil {
			return err
		}
	}

	sha, err := e.git.CurrentSHAShort(ctx)
	if err != nil {
		return &GitFailureError{Plugin: e.spec.Name, Op: "rev-parse", Cause: err}
	}
	if p != nil {
		p.Success(repoURL + "#" + sha)
	}
	return nil
}

// --- 4.5.4 update ---

// Update fetches and checks out ref (or origin's default branch when
// ref is empty). It is a no-op with a warning (reported through p, if
// given) when plugin_path is a symlink or not a git repository.
func (e *External) Update(ctx context.Context, ref string, p Progress) (preSHA, postSHA string, err error) {
	if !e.git.IsRepo() {
		if p != nil {
			p.Fail(e.spec.Name.String() + " is not a git repository, skipping update")
		}
		return "", "", nil
	}

	preSHA, postSHA, err = e.git.Update(ctx, ref)
	if err != nil {
		return "", "", &GitFailureError{Plugin: e.spec.Name, Op: "update", Cause: err}
	}
	return preSHA, postSHA, nil
}

// --- 4.5.5 uninstall ---

// Uninstall removes plugin_path. It is idempotent: a plugin that is not
// installed uninstalls successfully. Installs, downloads, and cache
// directories are left untouched (owned by the command layer).
func (e *External) Uninstall(p Progress) error {
	if !e.IsInstalled() {
		return nil
	}
	if p != nil {
		p.Start("uninstalling plugin " + e.spec.Name.String())
	}
	if err := os.RemoveAll(e.spec.PluginPath); err != nil {
		if p != nil {
			p.Fail("failed to remove " + e.spec.PluginPath)
		}
		return errors.Wrapf(err, "removing plugin path %s", e.spec.PluginPath)
	}
	if p != nil {
		p.Success("uninstalled " + e.spec.Name.String())
	}
	return nil
}
