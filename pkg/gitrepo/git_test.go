// Copyright 2025 The polytool Authors.
// SPDX-License-Identifier: Apache-2.0

package gitrepo

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func requireGit(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}
}

func initUpstream(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	run := func(args ...string) {
		cmd := exec.Command("git", args...)
		cmd.Dir = dir
		cmd.Env = append(os.Environ(), "GIT_AUTHOR_NAME=t", "GIT_AUTHOR_EMAIL=t@t.com",
			"GIT_COMMITTER_NAME=t", "GIT_COMMITTER_EMAIL=t@t.com")
		out, err := cmd.CombinedOutput()
		require.NoErrorf(t, err, "git %v: %s", args, out)
	}
	run("init", "-q", "-b", "main")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bin_list-all"), []byte("echo 1.0.0"), 0o644))
	run("add", ".")
	run("commit", "-q", "-m", "initial")
	return dir
}

func TestSplitURLAndRef(t *testing.T) {
	url, ref, hasRef := SplitURLAndRef("https://example.com/repo.git#v1.2.3")
	require.Equal(t, "https://example.com/repo.git", url)
	require.Equal(t, "v1.2.3", ref)
	require.True(t, hasRef)

	url, _, hasRef = SplitURLAndRef("https://example.com/repo.git")
	require.Equal(t, "https://example.com/repo.git", url)
	require.False(t, hasRef)
}

func TestCloneAndInspect(t *testing.T) {
	requireGit(t)
	upstream := initUpstream(t)

	dest := filepath.Join(t.TempDir(), "clone")
	r := New(dest)
	require.NoError(t, r.Clone(context.Background(), upstream))
	require.True(t, r.IsRepo())

	sha, err := r.CurrentSHAShort(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, sha)

	remote, err := r.GetRemoteURL(context.Background())
	require.NoError(t, err)
	require.Equal(t, upstream, remote)
}

func TestCloneFailsWhenTargetExists(t *testing.T) {
	requireGit(t)
	upstream := initUpstream(t)

	dest := t.TempDir()
	r := New(dest)
	err := r.Clone(context.Background(), upstream)
	require.ErrorIs(t, err, ErrAlreadyExists)
}

func TestIsRepoFalseForPlainDirectory(t *testing.T) {
	r := New(t.TempDir())
	require.False(t, r.IsRepo())
}

func TestIsRepoFalseForSymlink(t *testing.T) {
	requireGit(t)
	upstream := initUpstream(t)

	parent := t.TempDir()
	link := filepath.Join(parent, "link")
	require.NoError(t, os.Symlink(upstream, link))

	r := New(link)
	require.False(t, r.IsRepo())
}
