// Package ui is the terminal side of jcli: coloured status lines, yes/no
// and passphrase prompts, and table rendering of the read views.
package ui

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

// Console writes user-facing status lines. Info goes to out; warnings and
// errors go to err.
type Console struct {
	out io.Writer
	err io.Writer

	success *color.Color
	warn    *color.Color
	fail    *color.Color
	dim     *color.Color
}

// NewConsole returns a console writing to out and err.
func NewConsole(out, err io.Writer) *Console {
	return &Console{
		out:     out,
		err:     err,
		success: color.New(color.FgGreen),
		warn:    color.New(color.FgYellow),
		fail:    color.New(color.FgRed),
		dim:     color.New(color.Faint),
	}
}

// DisableColor turns off colour for every console.
func DisableColor() {
	color.NoColor = true
}

// Out is the console's standard output.
func (c *Console) Out() io.Writer { return c.out }

func (c *Console) Info(format string, args ...any) {
	fmt.Fprintf(c.out, format+"\n", args...)
}

func (c *Console) Success(format string, args ...any) {
	c.success.Fprintf(c.out, "✓ "+format+"\n", args...)
}

func (c *Console) Warn(format string, args ...any) {
	c.warn.Fprintf(c.err, "⚠ "+format+"\n", args...)
}

func (c *Console) Error(format string, args ...any) {
	c.fail.Fprintf(c.err, "✗ "+format+"\n", args...)
}

// Status prints a faint progress line, e.g. while syncing with the chain.
func (c *Console) Status(format string, args ...any) {
	c.dim.Fprintf(c.err, format+"\n", args...)
}
