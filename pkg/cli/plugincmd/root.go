// Copyright 2025 The polytool Authors.
// SPDX-License-Identifier: Apache-2.0

// Package plugincmd is the CLI front door: a minimal Cobra command tree
// over the external plugin façade (package plugin), standing in for
// the product's out-of-scope top-level dispatcher.
package plugincmd

import (
	"github.com/spf13/cobra"

	"github.com/polytool/polytool/pkg/pluginspec"
)

// sharedFlags are the persistent flags every plugin subcommand needs to
// build a plugin.Config.
type sharedFlags struct {
	dataRoot    string
	verbose     bool
	autoConfirm bool
}

// NewRootCommand builds the polytool command tree.
func NewRootCommand() *cobra.Command {
	flags := &sharedFlags{}

	root := &cobra.Command{
		Use:           "polytool",
		Short:         "Manage polytool external plugins",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.PersistentFlags().StringVar(&flags.dataRoot, "data-root", pluginspec.DefaultDataRoot, "plugin data root directory")
	root.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "relay script stderr even on success")
	root.PersistentFlags().BoolVarP(&flags.autoConfirm, "yes", "y", false, "skip the install confirmation prompt")

	root.AddCommand(newPluginCommand(flags))
	return root
}
