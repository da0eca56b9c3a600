// Copyright 2025 The polytool Authors.
// SPDX-License-Identifier: Apache-2.0

// Command polytool is a thin CLI front door exercising the external
// plugin subsystem end to end. It is not the product's dispatcher
// (flag parsing, toolset resolution, and shim generation live
// elsewhere); it only wires `plugin add|update|remove|list`.
package main

import (
	"fmt"
	"os"

	"github.com/polytool/polytool/pkg/cli/plugincmd"
)

func main() {
	if err := plugincmd.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
