// Package ui prints the user-facing status lines.
package ui

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

var (
	green = lipgloss.Color("2")
	red   = lipgloss.Color("1")
	dim   = lipgloss.Color("8")
)

// Printer writes status lines to one stream. Colors are only emitted when the
// stream is a terminal, so piped output is plain text.
type Printer struct {
	w   io.Writer
	tty bool

	errStyle lipgloss.Style
	okStyle  lipgloss.Style
	dimStyle lipgloss.Style
}

// New returns a Printer for w.
func New(w io.Writer) *Printer {
	tty := false
	if f, ok := w.(*os.File); ok {
		tty = term.IsTerminal(int(f.Fd()))
	}
	r := lipgloss.NewRenderer(w)
	if !tty {
		r.SetColorProfile(termenv.Ascii)
	}
	return &Printer{
		w:        w,
		tty:      tty,
		errStyle: r.NewStyle().Foreground(red).Bold(true),
		okStyle:  r.NewStyle().Foreground(green),
		dimStyle: r.NewStyle().Foreground(dim),
	}
}

// Problem prints "[-] category: message".
func (p *Printer) Problem(category, message string) {
	fmt.Fprintf(p.w, "%s %s: %s\n", p.errStyle.Render("[-]"), category, message)
}

// Finished prints "[+] Finished: message".
func (p *Printer) Finished(message string) {
	fmt.Fprintf(p.w, "%s Finished: %s\n", p.okStyle.Render("[+]"), message)
}

// Info prints a secondary "[*] message" line.
func (p *Printer) Info(message string) {
	fmt.Fprintf(p.w, "%s %s\n", p.dimStyle.Render("[*]"), message)
}
