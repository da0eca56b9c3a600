// Copyright 2025 The polytool Authors.
// SPDX-License-Identifier: Apache-2.0

package plugin

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/polytool/polytool/pkg/pluginscript"
	"github.com/polytool/polytool/pkg/pluginspec"
)

// InstallVersion runs download (if present) then install for tv, both
// under the per-tool-version environment, streaming output to p.
// download always precedes install; a non-zero exit from either is
// fatal for this tool-version.
func (e *External) InstallVersion(ctx context.Context, tv pluginspec.ToolVersion, p Progress) error {
	if tv.IsSystem() {
		panic("plugin: InstallVersion must never be called with a System tool-version")
	}

	if e.scripts.ScriptExists(pluginspec.Script(pluginspec.ScriptDownload)) {
		if p != nil {
			p.Start("downloading " + e.spec.Name.String() + " " + tv.Version)
		}
		if err := e.scripts.RunByLine(ctx, pluginspec.Script(pluginspec.ScriptDownload), nil, &tv, "", p); err != nil {
			if p != nil {
				p.Fail("download failed")
			}
			return err
		}
	}

	if p != nil {
		p.Start("installing " + e.spec.Name.String() + " " + tv.Version)
	}
	if err := e.scripts.RunByLine(ctx, pluginspec.Script(pluginspec.ScriptInstall), nil, &tv, "", p); err != nil {
		if p != nil {
			p.Fail("install failed")
		}
		return err
	}
	if p != nil {
		p.Success("installed " + e.spec.Name.String() + " " + tv.Version)
	}
	return nil
}

// UninstallVersion runs bin/uninstall for tv if present. Directory
// removal is the command layer's responsibility.
func (e *External) UninstallVersion(ctx context.Context, tv pluginspec.ToolVersion) error {
	if tv.IsSystem() {
		panic("plugin: UninstallVersion must never be called with a System tool-version")
	}
	if !e.scripts.ScriptExists(pluginspec.Script(pluginspec.ScriptUninstall)) {
		return nil
	}
	_, err := e.scripts.Read(ctx, pluginspec.Script(pluginspec.ScriptUninstall), nil, &tv, "")
	return err
}

// ListBinPaths returns the absolute directories tv's shims should link
// against: empty for System, memoized per tool-version identity.
func (e *External) ListBinPaths(ctx context.Context, tv pluginspec.ToolVersion) ([]string, error) {
	if tv.IsSystem() {
		return nil, nil
	}
	return e.binPaths.getOrCompute(tvKey(tv), func() ([]string, error) {
		var rel []string
		if e.scripts.ScriptExists(pluginspec.Script(pluginspec.ScriptListBinPaths)) {
			out, err := e.scripts.Read(ctx, pluginspec.Script(pluginspec.ScriptListBinPaths), nil, &tv, "")
			if err != nil {
				return nil, err
			}
			rel = strings.Fields(out)
		} else {
			rel = []string{"bin"}
		}

		installPath := tv.InstallPath(e.spec)
		abs := make([]string, len(rel))
		for i, r := range rel {
			abs[i] = filepath.Join(installPath, r)
		}
		return abs, nil
	})
}

// ExecEnv returns the environment mutations exec-env observes by
// sourcing the script under a shell: empty for System, when no
// exec-env script exists, or when already nested inside a plugin
// script (the recursion sentinel is set). Memoized per tool-version
// identity.
func (e *External) ExecEnv(ctx context.Context, tv pluginspec.ToolVersion) (map[string]string, error) {
	if tv.IsSystem() {
		return nil, nil
	}
	if os.Getenv(pluginscript.RecursionSentinel) != "" {
		return nil, nil
	}
	if !e.scripts.ScriptExists(pluginspec.Script(pluginspec.ScriptExecEnv)) {
		return nil, nil
	}

	return e.execEnv.getOrCompute(tvKey(tv), func() (map[string]string, error) {
		return e.diffExecEnv(ctx, tv)
	})
}

// diffExecEnv launches one shell that dumps the environment and a
// second that sources exec-env and then dumps the environment, both
// under tv's composed environment, then returns the keys that were
// added or changed (removed keys are ignored).
func (e *External) diffExecEnv(ctx context.Context, tv pluginspec.ToolVersion) (map[string]string, error) {
	scriptPath := e.scripts.ScriptPath(pluginspec.Script(pluginspec.ScriptExecEnv))

	before, err := dumpShellEnv(ctx, e.scripts, tv, "")
	if err != nil {
		return nil, errors.Wrap(err, "capturing pre-exec-env environment")
	}
	after, err := dumpShellEnv(ctx, e.scripts, tv, scriptPath)
	if err != nil {
		return nil, errors.Wrap(err, "capturing post-exec-env environment")
	}

	diff := map[string]string{}
	for k, v := range after {
		if prev, existed := before[k]; !existed || prev != v {
			diff[k] = v
		}
	}
	return diff, nil
}
