// Copyright 2025 The polytool Authors.
// SPDX-License-Identifier: Apache-2.0

package plugin

import (
	"os"

	"github.com/pkg/errors"
)

// readFile reads a legacy version file verbatim, used as the last
// resort in ParseLegacyFile when the plugin has no parse-legacy-file
// script.
func readFile(path string) (string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", errors.Wrapf(err, "reading legacy file %s", path)
	}
	return string(raw), nil
}
