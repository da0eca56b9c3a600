// Copyright 2025 The polytool Authors.
// SPDX-License-Identifier: Apache-2.0

package pluginscript

import (
	"os"
	"strings"

	"github.com/polytool/polytool/pkg/pluginspec"
)

// RecursionSentinel is set on every script invocation so a plugin
// script that re-invokes polytool can detect it is already nested
// inside a script and disable exec-env recursion.
const RecursionSentinel = "__POLYTOOL_SCRIPT"

// baseline filters the process environment, dropping any stray
// recursion sentinel inherited from an unrelated parent process so the
// composed environment's own sentinel is authoritative.
func baseline() []string {
	env := os.Environ()
	out := make([]string, 0, len(env))
	for _, kv := range env {
		if strings.HasPrefix(kv, RecursionSentinel+"=") {
			continue
		}
		out = append(out, kv)
	}
	return out
}

// pluginEnv composes the plugin-wide baseline: process environment
// plus RTX_PLUGIN_NAME/RTX_PLUGIN_PATH/RTX_SHIMS_DIR (this module's
// POLYTOOL_ prefix), plus the recursion sentinel.
func pluginEnv(p *pluginspec.Plugin, shimsDir string) []string {
	env := baseline()
	env = append(env,
		"POLYTOOL_PLUGIN_NAME="+p.Name.String(),
		"POLYTOOL_PLUGIN_PATH="+p.PluginPath,
		"POLYTOOL_SHIMS_DIR="+shimsDir,
		RecursionSentinel+"=1",
	)
	return env
}

// toolVersionEnv appends the per-tool-version overlay described in
// spec.md §4.2 on top of env, which must already carry the plugin-wide
// baseline. tv must not be System; callers enforce that invariant
// before composing an overlay (see pluginspec.ToolVersion.IsSystem).
func toolVersionEnv(env []string, p *pluginspec.Plugin, tv pluginspec.ToolVersion, projectRoot string) []string {
	if projectRoot != "" {
		env = append(env, "POLYTOOL_PROJECT_ROOT="+projectRoot)
	}

	for k, v := range tv.Opts {
		env = append(env, "POLYTOOL_TOOL_OPTS__"+strings.ToUpper(k)+"="+v)
	}

	installPath := tv.InstallPath(p)
	downloadPath := tv.DownloadPath(p)
	env = append(env,
		"POLYTOOL_INSTALL_PATH="+installPath, "ASDF_INSTALL_PATH="+installPath,
		"POLYTOOL_DOWNLOAD_PATH="+downloadPath, "ASDF_DOWNLOAD_PATH="+downloadPath,
	)

	installType := tv.Request.Kind.String()
	env = append(env,
		"POLYTOOL_INSTALL_TYPE="+installType, "ASDF_INSTALL_TYPE="+installType,
	)

	installVersion := tv.Version
	if tv.Request.Kind == pluginspec.RequestRef {
		installVersion = tv.Request.Value
	}
	env = append(env,
		"POLYTOOL_INSTALL_VERSION="+installVersion, "ASDF_INSTALL_VERSION="+installVersion,
	)

	return env
}
