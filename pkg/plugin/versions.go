// Copyright 2025 The polytool Authors.
// SPDX-License-Identifier: Apache-2.0

package plugin

import (
	"context"
	"strings"

	"github.com/polytool/polytool/pkg/pluginspec"
	"github.com/polytool/polytool/pkg/semverutil"
)

// ListRemoteVersions returns the plugin's full remote version list,
// cached. An empty result is valid (the plugin genuinely has no
// versions yet).
func (e *External) ListRemoteVersions(ctx context.Context) ([]string, error) {
	return e.remoteVersions.GetOrTryInit(func() ([]string, error) {
		if !e.HasListAllScript() {
			return nil, nil
		}
		out, err := e.scripts.Read(ctx, pluginspec.Script(pluginspec.ScriptListAll), nil, nil, "")
		if err != nil {
			return nil, err
		}
		versions := strings.Fields(out)
		semverutil.SortIfSemver(versions)
		return versions, nil
	})
}

// ListRemoteVersionsWithPrefix returns exactly the remote versions
// whose string starts with prefix.
func (e *External) ListRemoteVersionsWithPrefix(ctx context.Context, prefix string) ([]string, error) {
	all, err := e.ListRemoteVersions(ctx)
	if err != nil {
		return nil, err
	}
	matched := make([]string, 0, len(all))
	for _, v := range all {
		if strings.HasPrefix(v, prefix) {
			matched = append(matched, v)
		}
	}
	return matched, nil
}

// LatestStableVersion returns the plugin's latest stable version, or ok
// == false when the script is absent or prints nothing.
func (e *External) LatestStableVersion(ctx context.Context) (string, bool, error) {
	if !e.HasLatestStableScript() {
		return "", false, nil
	}
	v, err := e.latestStable.GetOrTryInit(func() (string, error) {
		out, err := e.scripts.Read(ctx, pluginspec.Script(pluginspec.ScriptLatestStable), nil, nil, "")
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(out), nil
	})
	if err != nil {
		return "", false, err
	}
	return v, v != "", nil
}

// GetAliases returns the plugin's alias map: manifest data first, then
// a cached bin/list-aliases run, then an empty map.
func (e *External) GetAliases(ctx context.Context) (map[string]string, error) {
	if e.manifest.HasAliases() {
		return e.manifest.Aliases(), nil
	}
	if !e.HasListAliasScript() {
		return map[string]string{}, nil
	}
	return e.aliases.GetOrTryInit(func() (map[string]string, error) {
		out, err := e.scripts.Read(ctx, pluginspec.Script(pluginspec.ScriptListAliases), nil, nil, "")
		if err != nil {
			return nil, err
		}
		return parseAliases(out), nil
	})
}

// parseAliases parses "name value" lines, skipping malformed lines and
// blank lines rather than failing the whole fetch.
func parseAliases(out string) map[string]string {
	aliases := map[string]string{}
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 2 {
			continue
		}
		aliases[fields[0]] = fields[1]
	}
	return aliases
}

// LegacyFilenames returns the plugin's recognized legacy version
// filenames: manifest data first, then a cached bin/list-legacy-filenames
// run, then an empty list.
func (e *External) LegacyFilenames(ctx context.Context) ([]string, error) {
	if e.manifest.HasLegacyFilenames() {
		return e.manifest.LegacyFilenames(), nil
	}
	if !e.HasListLegacyFilenamesScript() {
		return nil, nil
	}
	return e.legacyFilenames.GetOrTryInit(func() ([]string, error) {
		out, err := e.scripts.Read(ctx, pluginspec.Script(pluginspec.ScriptListLegacyFilenames), nil, nil, "")
		if err != nil {
			return nil, err
		}
		return strings.Fields(out), nil
	})
}

// ParseLegacyFile resolves the version named by a legacy file, trying
// the Legacy File Cache first, then a plugin-provided parse-legacy-file
// script, then the file's own trimmed contents.
func (e *External) ParseLegacyFile(ctx context.Context, legacyFilePath string) (string, error) {
	if cached, ok := e.legacy.Get(legacyFilePath); ok {
		return cached, nil
	}

	var version string
	if e.scripts.ScriptExists(pluginspec.ParseLegacyFileScript(legacyFilePath)) {
		out, err := e.scripts.Read(ctx, pluginspec.ParseLegacyFileScript(legacyFilePath), []string{legacyFilePath}, nil, "")
		if err != nil {
			return "", err
		}
		version = out
	} else {
		raw, err := readFile(legacyFilePath)
		if err != nil {
			return "", err
		}
		version = raw
	}

	version = strings.TrimSpace(version)
	if err := e.legacy.Put(legacyFilePath, version); err != nil {
		return version, nil //nolint:nilerr // caching is best-effort
	}
	return version, nil
}
