// Copyright 2025 The polytool Authors.
// SPDX-License-Identifier: Apache-2.0

// Package gitrepo is the Git Adapter: a thin os/exec wrapper around the
// git subcommands the plugin lifecycle needs. It is deliberately not a
// general-purpose git client.
package gitrepo

import (
	"context"
	"os"
	"os/exec"
	"strings"

	"github.com/pkg/errors"
)

// ErrAlreadyExists is returned by Clone when the target directory
// already exists.
var ErrAlreadyExists = errors.New("clone target already exists")

// ErrNotARepo is returned when an operation that requires a git
// worktree is attempted against a directory that isn't one (or is a
// symlink, which this adapter treats the same way for safety).
var ErrNotARepo = errors.New("not a git repository")

// Repo is a git worktree at Path.
type Repo struct {
	Path string
}

// New returns a Repo rooted at path. path need not exist yet.
func New(path string) *Repo { return &Repo{Path: path} }

// SplitURLAndRef parses "URL#REF" into (URL, ref, hasRef). A URL
// without a trailing "#ref" segment has hasRef == false.
func SplitURLAndRef(raw string) (url string, ref string, hasRef bool) {
	if i := strings.LastIndex(raw, "#"); i >= 0 {
		return raw[:i], raw[i+1:], true
	}
	return raw, "", false
}

// Clone clones url into r.Path. It fails if r.Path already exists.
func (r *Repo) Clone(ctx context.Context, url string) error {
	if _, err := os.Stat(r.Path); err == nil {
		return errors.Wrapf(ErrAlreadyExists, "%s", r.Path)
	}
	out, err := r.run(ctx, "", "clone", url, r.Path)
	if err != nil {
		return errors.Wrapf(err, "git clone %s: %s", url, out)
	}
	return nil
}

// IsRepo reports whether r.Path is a git worktree (and not a symlink).
func (r *Repo) IsRepo() bool {
	info, err := os.Lstat(r.Path)
	if err != nil {
		return false
	}
	if info.Mode()&os.ModeSymlink != 0 {
		return false
	}
	_, err = r.run(context.Background(), r.Path, "rev-parse", "--is-inside-work-tree")
	return err == nil
}

// Update fetches and checks out ref (or origin/HEAD, the remote's
// default branch, if ref is empty), returning the pre- and post-update short SHAs. It
// is a no-op fast path when the worktree is already at the requested
// ref.
func (r *Repo) Update(ctx context.Context, ref string) (preSHA, postSHA string, err error) {
	preSHA, err = r.CurrentSHAShort(ctx)
	if err != nil {
		return "", "", err
	}

	if ref != "" {
		if current, cerr := r.CurrentAbbrevRef(ctx); cerr == nil && current == ref {
			return preSHA, preSHA, nil
		}
	}

	if _, err := r.run(ctx, r.Path, "fetch", "--tags", "origin"); err != nil {
		return "", "", errors.Wrapf(err, "git fetch")
	}

	checkoutTarget := ref
	if checkoutTarget == "" {
		checkoutTarget = "origin/HEAD"
	}
	if _, err := r.run(ctx, r.Path, "checkout", checkoutTarget); err != nil {
		return "", "", errors.Wrapf(err, "git checkout %s", checkoutTarget)
	}

	postSHA, err = r.CurrentSHAShort(ctx)
	if err != nil {
		return "", "", err
	}
	return preSHA, postSHA, nil
}

// Checkout checks out ref in r.Path.
func (r *Repo) Checkout(ctx context.Context, ref string) error {
	if _, err := r.run(ctx, r.Path, "checkout", ref); err != nil {
		return errors.Wrapf(err, "git checkout %s", ref)
	}
	return nil
}

// CurrentSHAShort returns the abbreviated SHA of HEAD.
func (r *Repo) CurrentSHAShort(ctx context.Context) (string, error) {
	out, err := r.run(ctx, r.Path, "rev-parse", "--short", "HEAD")
	if err != nil {
		return "", errors.Wrapf(err, "git rev-parse")
	}
	return strings.TrimSpace(out), nil
}

// CurrentAbbrevRef returns the current branch name, or "HEAD" when
// detached.
func (r *Repo) CurrentAbbrevRef(ctx context.Context) (string, error) {
	out, err := r.run(ctx, r.Path, "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		return "", errors.Wrapf(err, "git rev-parse --abbrev-ref")
	}
	return strings.TrimSpace(out), nil
}

// GetRemoteURL returns the fetch URL configured for "origin".
func (r *Repo) GetRemoteURL(ctx context.Context) (string, error) {
	out, err := r.run(ctx, r.Path, "remote", "get-url", "origin")
	if err != nil {
		return "", errors.Wrapf(err, "git remote get-url origin")
	}
	return strings.TrimSpace(out), nil
}

// run executes git with args, optionally inside dir, and returns the
// untrimmed combined output; callers trim what they return.
func (r *Repo) run(ctx context.Context, dir string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	if dir != "" {
		cmd.Dir = dir
	}
	cmd.Env = append(os.Environ(), "GIT_TERMINAL_PROMPT=0")
	out, err := cmd.CombinedOutput()
	return string(out), err
}
