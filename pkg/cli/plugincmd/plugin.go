// Copyright 2025 The polytool Authors.
// SPDX-License-Identifier: Apache-2.0

package plugincmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/polytool/polytool/pkg/plugin"
	"github.com/polytool/polytool/pkg/pluginspec"
	"github.com/polytool/polytool/pkg/progress"
)

func newPluginCommand(flags *sharedFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plugin",
		Short: "Add, update, remove, and list external plugins",
	}
	cmd.AddCommand(
		newPluginAddCommand(flags),
		newPluginUpdateCommand(flags),
		newPluginRemoveCommand(flags),
		newPluginListCommand(flags),
	)
	return cmd
}

func (f *sharedFlags) config() plugin.Config {
	return plugin.Config{
		DataRoot:    f.dataRoot,
		Verbose:     f.verbose,
		AutoConfirm: f.autoConfirm,
	}
}

func newPluginAddCommand(flags *sharedFlags) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "add NAME [URL[#REF]]",
		Short: "Install a plugin, optionally from an explicit repo URL",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, err := pluginspec.NewPluginName(args[0])
			if err != nil {
				return err
			}
			url := ""
			if len(args) == 2 {
				url = args[1]
			}

			p, err := plugin.New(flags.config(), name, url)
			if err != nil {
				return err
			}

			reporter := progress.New(flags.verbose)
			return p.EnsureInstalled(cmd.Context(), reporter, force)
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "reinstall even if already installed")
	return cmd
}

func newPluginUpdateCommand(flags *sharedFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update NAME [REF]",
		Short: "Fetch and check out a plugin's latest commits, or a specific ref",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, err := pluginspec.NewPluginName(args[0])
			if err != nil {
				return err
			}
			ref := ""
			if len(args) == 2 {
				ref = args[1]
			}

			p, err := plugin.New(flags.config(), name, "")
			if err != nil {
				return err
			}

			reporter := progress.New(flags.verbose)
			pre, post, err := p.Update(cmd.Context(), ref, reporter)
			if err != nil {
				return err
			}
			if pre == post {
				fmt.Fprintf(cmd.OutOrStdout(), "%s already up to date at %s\n", name, pre)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "%s updated %s -> %s\n", name, pre, post)
			}
			return nil
		},
	}
	return cmd
}

func newPluginRemoveCommand(flags *sharedFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "remove NAME",
		Short: "Uninstall a plugin's git clone",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, err := pluginspec.NewPluginName(args[0])
			if err != nil {
				return err
			}
			p, err := plugin.New(flags.config(), name, "")
			if err != nil {
				return err
			}
			return p.Uninstall(progress.New(flags.verbose))
		},
	}
	return cmd
}

func newPluginListCommand(flags *sharedFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List installed plugins",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			entries, err := os.ReadDir(pluginsDir(flags.dataRoot))
			if err != nil {
				if os.IsNotExist(err) {
					return nil
				}
				return err
			}
			for _, entry := range entries {
				if entry.IsDir() {
					fmt.Fprintln(cmd.OutOrStdout(), entry.Name())
				}
			}
			return nil
		},
	}
	return cmd
}

func pluginsDir(dataRoot string) string {
	return filepath.Join(dataRoot, "plugins")
}
