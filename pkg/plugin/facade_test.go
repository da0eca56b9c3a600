// Copyright 2025 The polytool Authors.
// SPDX-License-Identifier: Apache-2.0

package plugin

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/polytool/polytool/pkg/pluginspec"
)

// newDummy builds an External over a plugin already "installed" on
// disk with the given bin/ scripts, bypassing the git clone path so
// most façade behaviour can be tested without a network or git binary.
func newDummy(t *testing.T, scripts map[string]string) *External {
	t.Helper()
	root := t.TempDir()
	name, err := pluginspec.NewPluginName("dummy")
	require.NoError(t, err)

	p, err := New(Config{DataRoot: root, AutoConfirm: true}, name, "")
	require.NoError(t, err)

	require.NoError(t, os.MkdirAll(p.spec.BinDir(), 0o755))
	for script, body := range scripts {
		path := filepath.Join(p.spec.BinDir(), script)
		require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755))
	}
	return p
}

type fakeProgress struct {
	started, succeeded, failed []string
	lines                      []string
}

func (f *fakeProgress) Start(text string)   { f.started = append(f.started, text) }
func (f *fakeProgress) Success(text string) { f.succeeded = append(f.succeeded, text) }
func (f *fakeProgress) Fail(text string)    { f.failed = append(f.failed, text) }
func (f *fakeProgress) Line(stream, text string) {
	f.lines = append(f.lines, stream+":"+text)
}

func TestCapabilityProbesMatchScriptPresence(t *testing.T) {
	p := newDummy(t, map[string]string{"list-all": "echo 1.0.0"})
	assert.True(t, p.HasListAllScript())
	assert.False(t, p.HasListAliasScript())
	assert.False(t, p.HasListLegacyFilenamesScript())
	assert.False(t, p.HasLatestStableScript())
}

func TestListRemoteVersionsWithPrefix(t *testing.T) {
	p := newDummy(t, map[string]string{"list-all": "echo '1.0.0 1.1.0 2.0.0'"})
	matched, err := p.ListRemoteVersionsWithPrefix(context.Background(), "1")
	require.NoError(t, err)
	assert.Equal(t, []string{"1.0.0", "1.1.0"}, matched)
}

func TestListRemoteVersionsCachedAcrossCalls(t *testing.T) {
	root := t.TempDir()
	name, err := pluginspec.NewPluginName("dummy")
	require.NoError(t, err)
	p, err := New(Config{DataRoot: root}, name, "")
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(p.spec.BinDir(), 0o755))

	counterFile := filepath.Join(root, "calls")
	script := "c=$(cat " + counterFile + " 2>/dev/null || echo 0); echo $((c+1)) > " + counterFile + "; echo 1.0.0"
	require.NoError(t, os.WriteFile(filepath.Join(p.spec.BinDir(), "list-all"), []byte("#!/bin/sh\n"+script+"\n"), 0o755))

	_, err = p.ListRemoteVersions(context.Background())
	require.NoError(t, err)
	_, err = p.ListRemoteVersions(context.Background())
	require.NoError(t, err)

	raw, err := os.ReadFile(counterFile)
	require.NoError(t, err)
	assert.Equal(t, "1\n", string(raw), "second call must hit the cache, not rerun list-all")
}

func TestListRemoteVersionsInvalidatedByScriptChange(t *testing.T) {
	root := t.TempDir()
	name, err := pluginspec.NewPluginName("dummy")
	require.NoError(t, err)
	p, err := New(Config{DataRoot: root}, name, "")
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(p.spec.BinDir(), 0o755))

	scriptPath := filepath.Join(p.spec.BinDir(), "list-all")
	require.NoError(t, os.WriteFile(scriptPath, []byte("#!/bin/sh\necho 1.0.0\n"), 0o755))

	first, err := p.ListRemoteVersions(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"1.0.0"}, first)

	// Simulate what `plugin update` does to bin/list-all: a newer mtime
	// on the script, as a git pull would leave behind.
	later := time.Now().Add(time.Minute)
	require.NoError(t, os.WriteFile(scriptPath, []byte("#!/bin/sh\necho 2.0.0\n"), 0o755))
	require.NoError(t, os.Chtimes(scriptPath, later, later))

	second, err := p.ListRemoteVersions(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"2.0.0"}, second, "a newer script mtime must invalidate the cached entry")
}

func TestLatestStableVersionAbsentScript(t *testing.T) {
	p := newDummy(t, map[string]string{})
	_, ok, err := p.LatestStableVersion(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLatestStableVersionEmptyOutputIsNone(t *testing.T) {
	p := newDummy(t, map[string]string{"latest-stable": "true"})
	v, ok, err := p.LatestStableVersion(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, v)
}

func TestGetAliasesParsesNameValueLines(t *testing.T) {
	p := newDummy(t, map[string]string{
		"list-aliases": "printf 'lts 20.0.0\\nmalformed\\ncurrent 21.0.0\\n'",
	})
	aliases, err := p.GetAliases(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"lts": "20.0.0", "current": "21.0.0"}, aliases)
}

func TestGetAliasesEmptyWhenNoScript(t *testing.T) {
	p := newDummy(t, map[string]string{})
	aliases, err := p.GetAliases(context.Background())
	require.NoError(t, err)
	assert.Empty(t, aliases)
}

func TestGetAliasesCachedAcrossCalls(t *testing.T) {
	root := t.TempDir()
	name, err := pluginspec.NewPluginName("dummy")
	require.NoError(t, err)
	p, err := New(Config{DataRoot: root}, name, "")
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(p.spec.BinDir(), 0o755))

	counterFile := filepath.Join(root, "calls")
	script := "c=$(cat " + counterFile + " 2>/dev/null || echo 0); echo $((c+1)) > " + counterFile + "; echo 'lts 20.0.0'"
	require.NoError(t, os.WriteFile(filepath.Join(p.spec.BinDir(), "list-aliases"), []byte("#!/bin/sh\n"+script+"\n"), 0o755))

	_, err = p.GetAliases(context.Background())
	require.NoError(t, err)
	_, err = p.GetAliases(context.Background())
	require.NoError(t, err)

	raw, err := os.ReadFile(counterFile)
	require.NoError(t, err)
	assert.Equal(t, "1\n", string(raw), "second call must hit the cache, not rerun list-aliases")
}

func TestLegacyFilenamesCachedAcrossCalls(t *testing.T) {
	root := t.TempDir()
	name, err := pluginspec.NewPluginName("dummy")
	require.NoError(t, err)
	p, err := New(Config{DataRoot: root}, name, "")
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(p.spec.BinDir(), 0o755))

	counterFile := filepath.Join(root, "calls")
	script := "c=$(cat " + counterFile + " 2>/dev/null || echo 0); echo $((c+1)) > " + counterFile + "; echo .nvmrc"
	require.NoError(t, os.WriteFile(filepath.Join(p.spec.BinDir(), "list-legacy-filenames"), []byte("#!/bin/sh\n"+script+"\n"), 0o755))

	_, err = p.LegacyFilenames(context.Background())
	require.NoError(t, err)
	_, err = p.LegacyFilenames(context.Background())
	require.NoError(t, err)

	raw, err := os.ReadFile(counterFile)
	require.NoError(t, err)
	assert.Equal(t, "1\n", string(raw), "second call must hit the cache, not rerun list-legacy-filenames")
}

func TestManifestOverridesAliasScript(t *testing.T) {
	p := newDummy(t, map[string]string{"list-aliases": "echo 'lts 99.0.0'"})
	manifestBody := "[list_aliases]\ndata = \"lts 20.0.0\\n\"\n"
	require.NoError(t, os.WriteFile(p.spec.ManifestPath(), []byte(manifestBody), 0o644))

	reloaded, err := New(Config{DataRoot: filepath.Dir(filepath.Dir(p.spec.PluginPath))}, p.spec.Name, "")
	require.NoError(t, err)
	aliases, err := reloaded.GetAliases(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"lts": "20.0.0"}, aliases)
}

func TestParseLegacyFileCachesByMtime(t *testing.T) {
	p := newDummy(t, map[string]string{})
	legacyFile := filepath.Join(t.TempDir(), ".tool-versions")

	require.NoError(t, os.WriteFile(legacyFile, []byte("1.0"), 0o644))
	v, err := p.ParseLegacyFile(context.Background(), legacyFile)
	require.NoError(t, err)
	assert.Equal(t, "1.0", v)

	later := time.Now().Add(time.Minute)
	require.NoError(t, os.WriteFile(legacyFile, []byte("2.0"), 0o644))
	require.NoError(t, os.Chtimes(legacyFile, later, later))

	v, err = p.ParseLegacyFile(context.Background(), legacyFile)
	require.NoError(t, err)
	assert.Equal(t, "2.0", v)
}

func TestInstallVersionRunsDownloadBeforeInstall(t *testing.T) {
	p := newDummy(t, map[string]string{
		"download": "echo downloading",
		"install":  "echo installing",
	})
	progress := &fakeProgress{}
	tv := pluginspec.ToolVersion{Plugin: p.spec.Name, Version: "1.0.0"}

	err := p.InstallVersion(context.Background(), tv, progress)
	require.NoError(t, err)
	require.Len(t, progress.started, 2)
	assert.Contains(t, progress.started[0], "downloading")
	assert.Contains(t, progress.started[1], "installing")
	assert.Contains(t, progress.lines, "stdout:downloading")
	assert.Contains(t, progress.lines, "stdout:installing")
}

func TestInstallVersionSkipsDownloadWhenAbsent(t *testing.T) {
	p := newDummy(t, map[string]string{"install": "echo installing"})
	progress := &fakeProgress{}
	tv := pluginspec.ToolVersion{Plugin: p.spec.Name, Version: "1.0.0"}

	err := p.InstallVersion(context.Background(), tv, progress)
	require.NoError(t, err)
	require.Len(t, progress.started, 1)
	assert.Contains(t, progress.started[0], "installing")
}

func TestListBinPathsDefaultsToBinDir(t *testing.T) {
	p := newDummy(t, map[string]string{})
	tv := pluginspec.ToolVersion{Plugin: p.spec.Name, Version: "1.0.0"}
	paths, err := p.ListBinPaths(context.Background(), tv)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(tv.InstallPath(p.spec), "bin")}, paths)
}

func TestListBinPathsEmptyForSystem(t *testing.T) {
	p := newDummy(t, map[string]string{})
	tv := pluginspec.ToolVersion{Request: pluginspec.ToolVersionRequest{Kind: pluginspec.RequestSystem}}
	paths, err := p.ListBinPaths(context.Background(), tv)
	require.NoError(t, err)
	assert.Empty(t, paths)
}

func TestExecEnvEmptyForSystem(t *testing.T) {
	p := newDummy(t, map[string]string{"exec-env": "export FOO=bar"})
	tv := pluginspec.ToolVersion{Request: pluginspec.ToolVersionRequest{Kind: pluginspec.RequestSystem}}
	env, err := p.ExecEnv(context.Background(), tv)
	require.NoError(t, err)
	assert.Empty(t, env)
}

func TestExecEnvRecursionGuard(t *testing.T) {
	t.Setenv("__POLYTOOL_SCRIPT", "1")
	p := newDummy(t, map[string]string{"exec-env": "export FOO=bar"})
	tv := pluginspec.ToolVersion{Plugin: p.spec.Name, Version: "1.0.0"}
	env, err := p.ExecEnv(context.Background(), tv)
	require.NoError(t, err)
	assert.Empty(t, env)
}

func TestExecEnvDiffsAddedVariable(t *testing.T) {
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
	p := newDummy(t, map[string]string{"exec-env": "export POLYTOOL_TEST_VAR=hello"})
	tv := pluginspec.ToolVersion{Plugin: p.spec.Name, Version: "1.0.0"}
	env, err := p.ExecEnv(context.Background(), tv)
	require.NoError(t, err)
	assert.Equal(t, "hello", env["POLYTOOL_TEST_VAR"])
}

func TestUninstallIsIdempotent(t *testing.T) {
	p := newDummy(t, map[string]string{})
	require.NoError(t, p.Uninstall(nil))
	require.False(t, p.IsInstalled())
	require.NoError(t, p.Uninstall(nil))
}

func TestUninstallRemovesPluginPath(t *testing.T) {
	p := newDummy(t, map[string]string{"list-all": "echo 1.0.0"})
	require.True(t, p.IsInstalled())
	require.NoError(t, p.Uninstall(nil))
	assert.False(t, p.IsInstalled())
}

func TestDebugStringHasExpectedPrefix(t *testing.T) {
	p := newDummy(t, map[string]string{})
	assert.Contains(t, p.String(), `ExternalPlugin { name: "dummy"`)
}

func TestExternalCommandsSuppressedForDirenv(t *testing.T) {
	root := t.TempDir()
	name, err := pluginspec.NewPluginName("direnv")
	require.NoError(t, err)
	p, err := New(Config{DataRoot: root}, name, "")
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(p.spec.CommandsDir(), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(p.spec.CommandsDir(), "command-foo.bash"), []byte("echo hi"), 0o755))

	commands, err := p.ExternalCommands()
	require.NoError(t, err)
	assert.Empty(t, commands)
}

func TestExternalCommandsDiscoversHyphenatedName(t *testing.T) {
	p := newDummy(t, map[string]string{})
	require.NoError(t, os.MkdirAll(p.spec.CommandsDir(), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(p.spec.CommandsDir(), "command-foo-bar.bash"), []byte("#!/bin/sh\necho hi $@\n"), 0o755))

	commands, err := p.ExternalCommands()
	require.NoError(t, err)
	require.Len(t, commands, 1)
	assert.Equal(t, "foo-bar", commands[0].Name)

	exitCode := p.ExecuteExternalCommand(context.Background(), commands[0], []string{"--flag", "value"})
	assert.Equal(t, 0, exitCode)
}
