// Copyright 2025 The polytool Authors.
// SPDX-License-Identifier: Apache-2.0

package pluginscript

import (
	"os"
	"strconv"
	"sync"
	"time"
)

// listAllTimeoutFromEnv reads POLYTOOL_FETCH_REMOTE_VERSIONS_TIMEOUT
// (seconds) once per process, per the design notes' guidance to model
// environment-derived globals as one-shot lazy state initialized at
// first use.
var listAllTimeoutFromEnv = sync.OnceValue(func() time.Duration {
	raw := os.Getenv("POLYTOOL_FETCH_REMOTE_VERSIONS_TIMEOUT")
	if raw == "" {
		return DefaultListAllTimeout
	}
	secs, err := strconv.Atoi(raw)
	if err != nil || secs <= 0 {
		return DefaultListAllTimeout
	}
	return time.Duration(secs) * time.Second
})
