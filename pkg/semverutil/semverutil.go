// Copyright 2025 The polytool Authors.
// SPDX-License-Identifier: Apache-2.0

// Package semverutil sorts plugin-reported version strings when they
// happen to be valid semver, so list-remote-versions reads in
// ascending order. Plugin version tokens are opaque in general (not
// every tool uses semver), so callers must tolerate SortIfSemver's
// no-op fallback.
package semverutil

import (
	"sort"

	"github.com/Masterminds/semver"
)

// SortIfSemver sorts versions in ascending semver order in place and
// returns true, or leaves versions untouched and returns false if any
// entry fails to parse as semver (e.g. a plugin using its own ad hoc
// version scheme).
func SortIfSemver(versions []string) bool {
	parsed := make([]*semver.Version, len(versions))
	for i, v := range versions {
		sv, err := semver.NewVersion(v)
		if err != nil {
			return false
		}
		parsed[i] = sv
	}
	sort.Sort(semver.Collection(parsed))
	for i, sv := range parsed {
		versions[i] = sv.Original()
	}
	return true
}

// IsNewer reports whether candidate is a strictly newer semver than
// baseline. Non-semver input is treated as "not newer" rather than an
// error, matching the permissive comparison plugins' ad hoc version
// strings need.
func IsNewer(candidate, baseline string) bool {
	c, err := semver.NewVersion(candidate)
	if err != nil {
		return false
	}
	b, err := semver.NewVersion(baseline)
	if err != nil {
		return false
	}
	return c.Compare(b) > 0
}
