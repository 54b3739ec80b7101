// Package output prints CLI progress lines.
package output

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
)

// Printer writes coloured progress lines for the quorumctl commands
type Printer struct {
	out    io.Writer
	errOut io.Writer
}

// NewPrinter creates a printer on stdout/stderr
func NewPrinter() *Printer {
	return &Printer{
		out:    os.Stdout,
		errOut: os.Stderr,
	}
}

// NewPrinterTo creates a printer on the given writers
func NewPrinterTo(out, errOut io.Writer) *Printer {
	return &Printer{out: out, errOut: errOut}
}

// SetNoColor disables colored output.
func (p *Printer) SetNoColor(noColor bool) {
	color.NoColor = noColor
}

// Info prints an informational message in default color.
func (p *Printer) Info(format string, args ...any) {
	fmt.Fprintf(p.out, format+"\n", args...)
}

// Field prints an indented "label: value" line
func (p *Printer) Field(label string, value any) {
	fmt.Fprintf(p.out, "  %s: %v\n", color.New(color.Bold).Sprint(label), value)
}

// Step prints a numbered scenario step in cyan.
func (p *Printer) Step(index, total int, name string) {
	color.New(color.FgCyan).Fprintf(p.out, "[%d/%d] %s\n", index, total, name)
}

// Success prints a success message in green with checkmark.
func (p *Printer) Success(format string, args ...any) {
	color.New(color.FgGreen).Fprintf(p.out, "✓ "+format+"\n", args...)
}

// Warn prints a warning message in yellow.
func (p *Printer) Warn(format string, args ...any) {
	color.New(color.FgYellow).Fprintf(p.errOut, "Warning: "+format+"\n", args...)
}

// Error prints an error message in red.
func (p *Printer) Error(format string, args ...any) {
	color.New(color.FgRed).Fprintf(p.errOut, "Error: "+format+"\n", args...)
}

// Bold prints a message in bold.
func (p *Printer) Bold(format string, args ...any) {
	color.New(color.Bold).Fprintf(p.out, format+"\n", args...)
}
