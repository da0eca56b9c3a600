// Copyright 2025 The polytool Authors.
// SPDX-License-Identifier: Apache-2.0

package semverutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSortIfSemverSortsAscending(t *testing.T) {
	versions := []string{"2.0.0", "1.1.0", "1.0.0"}
	ok := SortIfSemver(versions)
	assert.True(t, ok)
	assert.Equal(t, []string{"1.0.0", "1.1.0", "2.0.0"}, versions)
}

func TestSortIfSemverFalseOnNonSemver(t *testing.T) {
	versions := []string{"lts", "current"}
	ok := SortIfSemver(versions)
	assert.False(t, ok)
	assert.Equal(t, []string{"lts", "current"}, versions, "non-semver input must be left untouched")
}

func TestIsNewer(t *testing.T) {
	assert.True(t, IsNewer("2.0.0", "1.0.0"))
	assert.False(t, IsNewer("1.0.0", "2.0.0"))
	assert.False(t, IsNewer("not-a-version", "1.0.0"))
}
