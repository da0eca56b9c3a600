// Copyright 2025 The polytool Authors.
// SPDX-License-Identifier: Apache-2.0

package plugin

import (
	"bytes"
	"context"
	"os/exec"
	"strings"

	"github.com/polytool/polytool/pkg/pluginscript"
	"github.com/polytool/polytool/pkg/pluginspec"
)

// dumpShellEnv runs `env -0` under a shell composed with tv's
// environment, optionally first sourcing scriptPath. `env -0` (rather
// than newline-delimited output) avoids ambiguity when an environment
// value itself contains a newline.
func dumpShellEnv(ctx context.Context, scripts *pluginscript.Manager, tv pluginspec.ToolVersion, scriptPath string) (map[string]string, error) {
	shellCmd := "env -0"
	if scriptPath != "" {
		shellCmd = `. "$1" && env -0`
	}

	args := []string{"-c", shellCmd, "sh"}
	if scriptPath != "" {
		args = append(args, scriptPath)
	}

	cmd := exec.CommandContext(ctx, "sh", args...)
	cmd.Env = scripts.Env(&tv, "")

	var out bytes.Buffer
	cmd.Stdout = &out
	if err := cmd.Run(); err != nil {
		return nil, err
	}

	return parseNulEnv(out.String()), nil
}

func parseNulEnv(raw string) map[string]string {
	env := map[string]string{}
	for _, kv := range strings.Split(raw, "\x00") {
		if kv == "" {
			continue
		}
		parts := strings.SplitN(kv, "=", 2)
		if len(parts) != 2 {
			continue
		}
		env[parts[0]] = parts[1]
	}
	return env
}
