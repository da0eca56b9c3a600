// Copyright 2025 The polytool Authors.
// SPDX-License-Identifier: Apache-2.0

// Package manifest is the Plugin Manifest Loader: it reads a plugin's
// optional rtx.plugin.toml, which can supply aliases and legacy
// filenames in place of the corresponding scripts.
package manifest

import (
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
)

// Manifest is the subset of rtx.plugin.toml this subsystem recognizes.
type Manifest struct {
	ListAliases         dataTable `toml:"list_aliases"`
	ListLegacyFilenames dataTable `toml:"list_legacy_filenames"`
}

type dataTable struct {
	Data string `toml:"data"`
}

// HasAliases reports whether the manifest supplies alias data, in which
// case it overrides the plugin's list-aliases script.
func (m *Manifest) HasAliases() bool {
	return m != nil && strings.TrimSpace(m.ListAliases.Data) != ""
}

// HasLegacyFilenames reports whether the manifest supplies legacy
// filename data, in which case it overrides the plugin's
// list-legacy-filenames script.
func (m *Manifest) HasLegacyFilenames() bool {
	return m != nil && strings.TrimSpace(m.ListLegacyFilenames.Data) != ""
}

// Aliases parses list_aliases.data as newline-delimited "name value"
// pairs.
func (m *Manifest) Aliases() map[string]string {
	aliases := map[string]string{}
	for _, line := range strings.Split(m.ListAliases.Data, "\n") {
		fields := strings.Fields(line)
		if len(fields) != 2 {
			continue
		}
		aliases[fields[0]] = fields[1]
	}
	return aliases
}

// LegacyFilenames parses list_legacy_filenames.data as a
// whitespace-separated list.
func (m *Manifest) LegacyFilenames() []string {
	return strings.Fields(m.ListLegacyFilenames.Data)
}

// Load reads and parses the manifest at path. A missing file is not an
// error: it returns (nil, nil), meaning "no manifest, scripts decide
// everything."
func Load(path string) (*Manifest, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, "reading manifest %s", path)
	}

	var m Manifest
	if _, err := toml.Decode(string(raw), &m); err != nil {
		return nil, errors.Wrapf(err, "parsing manifest %s", path)
	}
	return &m, nil
}
