package ux

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

// Printer writes status lines to a terminal. Colors are dropped when the
// writer is not a terminal or NoColor is set.
type Printer struct {
	w       io.Writer
	success lipgloss.Style
	failure lipgloss.Style
	muted   lipgloss.Style
}

// NewPrinter creates a Printer for w.
func NewPrinter(w io.Writer, noColor bool) *Printer {
	r := lipgloss.NewRenderer(w)
	p := &Printer{
		w:       w,
		success: r.NewStyle(),
		failure: r.NewStyle(),
		muted:   r.NewStyle(),
	}
	if !noColor {
		p.success = p.success.Foreground(lipgloss.Color("#10b981")).Bold(true)
		p.failure = p.failure.Foreground(lipgloss.Color("#ef4444")).Bold(true)
		p.muted = p.muted.Foreground(lipgloss.Color("241"))
	}
	return p
}

// Success prints msg in the success color.
func (p *Printer) Success(msg string) {
	fmt.Fprintln(p.w, p.success.Render(msg))
}

// Error prints err through FormatError in the failure color.
func (p *Printer) Error(err error) {
	fmt.Fprintln(p.w, p.failure.Render(FormatError(err)))
}

// Info prints msg muted.
func (p *Printer) Info(msg string) {
	fmt.Fprintln(p.w, p.muted.Render(msg))
}

// Status prints a session status line, colored by whether it is the
// unauthenticated line.
func (p *Printer) Status(line string) {
	if line == StatusUnauthenticated {
		fmt.Fprintln(p.w, p.failure.Render(line))
		return
	}
	fmt.Fprintln(p.w, p.success.Render(line))
}
