// Copyright 2025 The polytool Authors.
// SPDX-License-Identifier: Apache-2.0

// Package pluginspec defines the core data model shared by every
// component of the external plugin subsystem: plugin identity, tool
// version identity, and the closed set of well-known plugin scripts.
package pluginspec

import (
	"fmt"
	"path/filepath"
	"regexp"

	"github.com/pkg/errors"
)

// nameRE is the filesystem-safe shape a PluginName must match.
var nameRE = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9_-]*$`)

// ErrInvalidPluginName is returned by NewPluginName when the candidate
// name is empty or contains characters that are not safe to use as a
// path segment.
var ErrInvalidPluginName = errors.New("invalid plugin name")

// PluginName is a non-empty, filesystem-safe short identifier for a
// plugin. Equality and hashing of a plugin are by name alone.
type PluginName string

// NewPluginName validates name and returns it as a PluginName.
func NewPluginName(name string) (PluginName, error) {
	if !nameRE.MatchString(name) {
		return "", errors.Wrapf(ErrInvalidPluginName, "%q", name)
	}
	return PluginName(name), nil
}

// String implements fmt.Stringer.
func (n PluginName) String() string { return string(n) }

// ScriptName is a closed set of well-known plugin scripts. Each value
// except ScriptCommand maps to a single file under <plugin_path>/bin/;
// ScriptCommand maps to <plugin_path>/lib/commands/command-<name>.bash.
type ScriptName struct {
	kind scriptKind
	// arg carries the payload for variant script names: the legacy file
	// path for ParseLegacyFile, the external command tail for Command.
	arg string
}

type scriptKind int

const (
	ScriptListAll scriptKind = iota
	ScriptListLegacyFilenames
	ScriptListAliases
	ScriptLatestStable
	ScriptParseLegacyFile
	ScriptDownload
	ScriptInstall
	ScriptUninstall
	ScriptListBinPaths
	ScriptExecEnv
	ScriptCommand
)

// Script constructs a fixed (argument-less) ScriptName.
func Script(kind scriptKind) ScriptName { return ScriptName{kind: kind} }

// ParseLegacyFileScript constructs the `parse-legacy-file <path>` script
// name, carrying the legacy file path that will be passed as argv[1].
func ParseLegacyFileScript(legacyFilePath string) ScriptName {
	return ScriptName{kind: ScriptParseLegacyFile, arg: legacyFilePath}
}

// CommandScript constructs the `command-<name>` external command script
// name.
func CommandScript(name string) ScriptName {
	return ScriptName{kind: ScriptCommand, arg: name}
}

// Kind reports the fixed part of the script name.
func (s ScriptName) Kind() scriptKind { return s.kind }

// Arg reports the variant payload, if any.
func (s ScriptName) Arg() string { return s.arg }

// binFileNames maps fixed script kinds to their filename under bin/.
var binFileNames = map[scriptKind]string{
	ScriptListAll:             "list-all",
	ScriptListLegacyFilenames: "list-legacy-filenames",
	ScriptListAliases:         "list-aliases",
	ScriptLatestStable:        "latest-stable",
	ScriptParseLegacyFile:     "parse-legacy-file",
	ScriptDownload:            "download",
	ScriptInstall:             "install",
	ScriptUninstall:           "uninstall",
	ScriptListBinPaths:        "list-bin-paths",
	ScriptExecEnv:             "exec-env",
}

// RelPath returns the path of the script's backing file relative to the
// plugin root (e.g. "bin/list-all" or "lib/commands/command-foo-bar.bash").
func (s ScriptName) RelPath() string {
	if s.kind == ScriptCommand {
		return filepath.Join("lib", "commands", "command-"+s.arg+".bash")
	}
	return filepath.Join("bin", binFileNames[s.kind])
}

// String renders the script name the way it would appear in error
// messages and logs.
func (s ScriptName) String() string {
	switch s.kind {
	case ScriptParseLegacyFile:
		return fmt.Sprintf("parse-legacy-file %s", s.arg)
	case ScriptCommand:
		return "command-" + s.arg
	default:
		return binFileNames[s.kind]
	}
}

// RequestKind is the closed set of ways a tool version can be
// requested.
type RequestKind int

const (
	// RequestVersion identifies a concrete, plugin-resolved version
	// string (e.g. "20.1.0").
	RequestVersion RequestKind = iota
	// RequestPrefix identifies the newest installed or installable
	// version starting with a prefix (e.g. "20").
	RequestPrefix
	// RequestRef identifies a version by a plugin-specific ref (git
	// ref, commit-ish) that the plugin resolves itself.
	RequestRef
	// RequestPath identifies a version by a literal filesystem path
	// supplied by the user, bypassing plugin installation entirely.
	RequestPath
	// RequestSub identifies a version relative to another installed
	// version (e.g. a sub-version of a toolchain).
	RequestSub
	// RequestSystem identifies "whatever is already on PATH"; it has
	// no install path and must never reach install/uninstall/exec-env.
	RequestSystem
)

// String renders the request kind the way the environment composition
// rules in ScriptName's consumer (pluginscript) expect to see it in
// POLYTOOL_INSTALL_TYPE / ASDF_INSTALL_TYPE.
func (k RequestKind) String() string {
	switch k {
	case RequestVersion:
		return "version"
	case RequestPrefix:
		return "version"
	case RequestRef:
		return "ref"
	case RequestPath:
		return "path"
	case RequestSub:
		return "sub"
	case RequestSystem:
		return ""
	default:
		return ""
	}
}

// ToolVersionRequest is the user-facing request that resolved to a
// ToolVersion's Version field.
type ToolVersionRequest struct {
	Kind RequestKind
	// Value is the request payload: the prefix for RequestPrefix, the
	// ref for RequestRef, the filesystem path for RequestPath, the
	// base version for RequestSub. Unused for RequestVersion and
	// RequestSystem.
	Value string
}

// ToolVersion is the identity of an installed or requested version of a
// tool owned by a plugin.
type ToolVersion struct {
	Plugin  PluginName
	Request ToolVersionRequest
	// Version is the resolved version string. For RequestRef it is the
	// bare ref (no "ref:" prefix); for RequestSystem it is empty.
	Version string
	// Opts is an opaque options mapping; keys are short identifiers
	// and surface to plugin scripts as POLYTOOL_TOOL_OPTS__<KEY>.
	Opts map[string]string
}

// IsSystem reports whether tv represents the "use whatever is on PATH"
// pseudo-version, which has no install path and must never be passed to
// install, uninstall, or exec-env operations.
func (tv ToolVersion) IsSystem() bool { return tv.Request.Kind == RequestSystem }

// InstallPath returns the directory a concrete (non-system) version is
// or would be installed into.
func (tv ToolVersion) InstallPath(p *Plugin) string {
	if tv.IsSystem() {
		return ""
	}
	return filepath.Join(p.InstallsPath, tv.Version)
}

// DownloadPath returns the directory a concrete (non-system) version is
// or would be downloaded into.
func (tv ToolVersion) DownloadPath(p *Plugin) string {
	if tv.IsSystem() {
		return ""
	}
	return filepath.Join(p.DownloadsPath, tv.Version)
}
