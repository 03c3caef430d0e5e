package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/pterm/pterm"
	"golang.org/x/term"
)

func init() {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		pterm.DisableStyling()
	}
}

// Printer writes human-readable command output. Quiet suppresses everything
// except tables and explicit Printf output.
type Printer struct {
	Quiet bool
	Out   io.Writer
}

// NewPrinter returns a printer writing to w.
func NewPrinter(w io.Writer) *Printer {
	return &Printer{Out: w}
}

func (p *Printer) writer() io.Writer {
	if p.Out == nil {
		return os.Stdout
	}
	return p.Out
}

// Section prints a section heading.
func (p *Printer) Section(title string) {
	if p.Quiet {
		return
	}
	fmt.Fprint(p.writer(), pterm.DefaultSection.Sprintln(title))
}

// Step prints a progress line.
func (p *Printer) Step(msg string) {
	if p.Quiet {
		return
	}
	fmt.Fprintln(p.writer(), Cyan("→"), msg)
}

// Info prints an informational line.
func (p *Printer) Info(msg string) {
	if p.Quiet {
		return
	}
	fmt.Fprint(p.writer(), pterm.Info.Sprintln(msg))
}

// Success prints a success line.
func (p *Printer) Success(msg string) {
	if p.Quiet {
		return
	}
	fmt.Fprint(p.writer(), pterm.Success.Sprintln(msg))
}

// Warn prints a warning line.
func (p *Printer) Warn(msg string) {
	if p.Quiet {
		return
	}
	fmt.Fprint(p.writer(), pterm.Warning.Sprintln(msg))
}

// Printf writes formatted output regardless of Quiet.
func (p *Printer) Printf(format string, args ...any) {
	fmt.Fprintf(p.writer(), format, args...)
}

// Table renders data with its first row as header.
func (p *Printer) Table(data [][]string) {
	renderTable(p.writer(), data, false)
}

// SpinnerStart starts a spinner and returns the function that stops it with
// a success or failure message.
func (p *Printer) SpinnerStart(msg string) func(ok bool, final string) {
	if p.Quiet {
		return func(bool, string) {}
	}
	spinner, err := pterm.DefaultSpinner.Start(msg)
	if err != nil {
		p.Step(msg)
		return func(ok bool, final string) {
			if ok {
				p.Success(final)
				return
			}
			p.Warn(final)
		}
	}
	return func(ok bool, final string) {
		if ok {
			spinner.Success(final)
			return
		}
		spinner.Fail(final)
	}
}

// Table renders data to stdout with its first row as header.
func Table(data [][]string) {
	renderTable(os.Stdout, data, false)
}

// TableBoxed renders data to stdout inside a box.
func TableBoxed(data [][]string) {
	renderTable(os.Stdout, data, true)
}

func renderTable(w io.Writer, data [][]string, boxed bool) {
	if len(data) == 0 {
		return
	}
	table := pterm.DefaultTable.WithHasHeader().WithData(data)
	if boxed {
		table = table.WithBoxed()
	}
	out, err := table.Srender()
	if err != nil {
		return
	}
	fmt.Fprintln(w, out)
}

// Green colours s when styling is enabled.
func Green(s string) string { return pterm.Green(s) }

// Yellow colours s when styling is enabled.
func Yellow(s string) string { return pterm.Yellow(s) }

// Red colours s when styling is enabled.
func Red(s string) string { return pterm.Red(s) }

// Cyan colours s when styling is enabled.
func Cyan(s string) string { return pterm.Cyan(s) }
