// Copyright 2025 The polytool Authors.
// SPDX-License-Identifier: Apache-2.0

// Package progress is the Progress Reporter: a spinner-backed reporter
// when stderr is a TTY, falling back to plain line-per-step logging
// otherwise.
package progress

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

var (
	green = color.New(color.FgGreen).SprintFunc()
	red   = color.New(color.FgRed).SprintFunc()
)

// Reporter narrates a plugin operation's progress. It satisfies
// pluginscript.LineSink structurally via Line, so a Reporter can be
// passed directly to Manager.RunByLine without either package
// importing the other.
type Reporter struct {
	out     io.Writer
	spin    *spinner.Spinner
	verbose bool
}

// New returns a Reporter writing to stderr, spinner-backed when stderr
// is a TTY.
func New(verbose bool) *Reporter {
	r := &Reporter{out: os.Stderr, verbose: verbose}
	if isatty.IsTerminal(os.Stderr.Fd()) {
		r.spin = spinner.New(spinner.CharSets[9], 100*time.Millisecond, spinner.WithWriter(os.Stderr))
	}
	return r
}

// Start begins a step, e.g. "cloning plugin nodejs".
func (r *Reporter) Start(text string) {
	if r.spin != nil {
		r.spin.Suffix = " " + text
		r.spin.Start()
		return
	}
	fmt.Fprintln(r.out, text)
}

// Success finishes the current step successfully, e.g. with
// "URL#<short-sha>".
func (r *Reporter) Success(text string) {
	if r.spin != nil {
		r.spin.FinalMSG = green("✓") + " " + text + "\n"
		r.spin.Stop()
		return
	}
	fmt.Fprintln(r.out, green("✓"), text)
}

// Fail finishes the current step with a failure message.
func (r *Reporter) Fail(text string) {
	if r.spin != nil {
		r.spin.FinalMSG = red("✗") + " " + text + "\n"
		r.spin.Stop()
		return
	}
	fmt.Fprintln(r.out, red("✗"), text)
}

// Line relays one line of streamed script output. Only stderr lines
// are shown by default, matching the install/download scripts'
// convention of progress-on-stderr, output-on-stdout; Verbose shows
// both.
func (r *Reporter) Line(stream, text string) {
	if stream != "stderr" && !r.verbose {
		return
	}
	if r.spin != nil {
		fmt.Fprintf(r.out, "\r  %s\n", text)
		return
	}
	fmt.Fprintln(r.out, " ", text)
}
