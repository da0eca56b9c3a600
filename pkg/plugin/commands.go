// Copyright 2025 The polytool Authors.
// SPDX-License-Identifier: Apache-2.0

package plugin

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// suppressedExternalCommandsPlugin is a hard-coded conflict-avoidance
// exception: direnv's own command surface is never exposed as external
// polytool subcommands.
const suppressedExternalCommandsPlugin = "direnv"

// ExternalCommand is one discovered lib/commands/command-*.bash entry.
type ExternalCommand struct {
	// Name is the hyphen-joined tail after "command-", e.g. "foo-bar"
	// for lib/commands/command-foo-bar.bash.
	Name string
	path string
}

// ExternalCommands discovers the plugin's external commands. The
// direnv plugin always reports none.
func (e *External) ExternalCommands() ([]ExternalCommand, error) {
	if e.spec.Name.String() == suppressedExternalCommandsPlugin {
		return nil, nil
	}

	entries, err := os.ReadDir(e.spec.CommandsDir())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var commands []ExternalCommand
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		const prefix, suffix = "command-", ".bash"
		if !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, suffix) {
			continue
		}
		tail := strings.TrimSuffix(strings.TrimPrefix(name, prefix), suffix)
		commands = append(commands, ExternalCommand{
			Name: tail,
			path: filepath.Join(e.spec.CommandsDir(), name),
		})
	}
	return commands, nil
}

// ExecuteExternalCommand runs cmd with args, inheriting the caller's
// stdio, and returns the script's exit code (or 1 if the process could
// not report one).
func (e *External) ExecuteExternalCommand(ctx context.Context, cmd ExternalCommand, args []string) int {
	c := exec.CommandContext(ctx, cmd.path, args...)
	c.Dir = e.spec.PluginPath
	c.Env = e.scripts.Env(nil, "")
	c.Stdin, c.Stdout, c.Stderr = os.Stdin, os.Stdout, os.Stderr

	if err := c.Run(); err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok && exitErr.ExitCode() >= 0 {
			return exitErr.ExitCode()
		}
		return 1
	}
	return c.ProcessState.ExitCode()
}
