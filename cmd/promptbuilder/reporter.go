package main

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// reporter writes diagnostics (skipped files, warnings, fatal errors) to a
// channel separate from the records written to the sink.
type reporter struct {
	out   io.Writer
	quiet bool
	warn  *color.Color
	fail  *color.Color
}

// newReporter creates a reporter writing to out. Color is used only when out
// is a terminal and NO_COLOR is unset. When quiet is true, informational
// lines are dropped; warnings and errors are always written.
func newReporter(out io.Writer, quiet bool) *reporter {
	if out == nil {
		out = io.Discard
	}
	warn := color.New(color.FgYellow)
	fail := color.New(color.FgRed, color.Bold)
	if isTerminal(out) {
		warn.EnableColor()
		fail.EnableColor()
	} else {
		warn.DisableColor()
		fail.DisableColor()
	}
	return &reporter{out: out, quiet: quiet, warn: warn, fail: fail}
}

func isTerminal(w io.Writer) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Infof writes an informational line.
func (r *reporter) Infof(format string, args ...any) {
	if r.quiet {
		return
	}
	fmt.Fprintf(r.out, format+"\n", args...)
}

// Warnf writes a "Warning: " line.
func (r *reporter) Warnf(format string, args ...any) {
	r.warn.Fprintf(r.out, "Warning: "+format, args...)
	fmt.Fprintln(r.out)
}

// Errorf writes an "Error: " line.
func (r *reporter) Errorf(format string, args ...any) {
	r.fail.Fprintf(r.out, "Error: "+format, args...)
	fmt.Fprintln(r.out)
}
