// Copyright 2025 The polytool Authors.
// SPDX-License-Identifier: Apache-2.0

// Package registry is the Plugin Registry Lookup: a small embedded
// name-to-URL table consulted by install when no explicit repo URL is
// given. A future toolset resolver can replace Lookup's backing store
// without touching callers, which only depend on the Lookup function
// type.
package registry

// Lookup resolves a bare plugin name to a default git URL.
type Lookup func(name string) (url string, ok bool)

// known seeds the default lookup with the plugin names already present
// in the asdf-plugin ecosystem's own catalog, pointed at the
// conventional asdf-vm plugin repo naming scheme.
var known = map[string]string{
	"golang":    "https://github.com/asdf-vm/asdf-plugin-golang",
	"nodejs":    "https://github.com/asdf-vm/asdf-plugin-nodejs",
	"python":    "https://github.com/asdf-vm/asdf-plugin-python",
	"terraform": "https://github.com/asdf-vm/asdf-plugin-terraform",
	"kubectl":   "https://github.com/asdf-vm/asdf-plugin-kubectl",
	"helm":      "https://github.com/asdf-vm/asdf-plugin-helm",
	"jq":        "https://github.com/asdf-vm/asdf-plugin-jq",
	"yq":        "https://github.com/asdf-vm/asdf-plugin-yq",
}

// Default looks up name in the embedded registry.
func Default(name string) (string, bool) {
	url, ok := known[name]
	return url, ok
}
