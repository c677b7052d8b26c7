// Package report renders coverage snapshots, diffs, and timelines as text.
package report

import (
	"io"
	"strings"

	"github.com/fatih/color"

	"typecov/internal/core/errors"
)

// Color names the small palette the printers use. Escape-code generation
// is delegated to the color library.
type Color string

const (
	ColorNone   Color = ""
	ColorGreen  Color = "green"
	ColorRed    Color = "red"
	ColorBlue   Color = "blue"
	ColorYellow Color = "yellow"
	ColorDim    Color = "dim"
)

var palette = map[Color]*color.Color{
	ColorGreen:  color.New(color.FgGreen),
	ColorRed:    color.New(color.FgRed),
	ColorBlue:   color.New(color.FgBlue),
	ColorYellow: color.New(color.FgYellow),
	ColorDim:    color.New(color.Faint),
}

const indentWidth = 2

// Printer writes indented report lines to a sink. The first write error is
// sticky: later writes become no-ops and Err reports it once rendering is
// done.
type Printer struct {
	out    io.Writer
	colors bool
	level  int
	err    error
}

type Option func(*Printer)

func WithColors(enabled bool) Option {
	return func(p *Printer) { p.colors = enabled }
}

func WithIndentLevel(level int) Option {
	return func(p *Printer) { p.level = level }
}

func NewPrinter(out io.Writer, opts ...Option) *Printer {
	p := &Printer{out: out, colors: true}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Err returns the first error the sink reported, if any.
func (p *Printer) Err() error {
	return p.err
}

// printl writes one line at the current indent level.
func (p *Printer) printl(text string) {
	p.write(strings.Repeat(" ", p.level*indentWidth) + text + "\n")
}

// printn writes a blank separator line.
func (p *Printer) printn() {
	p.write("\n")
}

func (p *Printer) write(text string) {
	if p.err != nil {
		return
	}
	if _, err := io.WriteString(p.out, text); err != nil {
		p.err = errors.Wrap(err, errors.CodeIOError, "write report")
	}
}

// indented runs fn one indent level deeper. The level is restored on every
// path, panics included, so error exits cannot leave indentation skewed.
func (p *Printer) indented(fn func()) {
	p.level++
	defer func() { p.level-- }()
	fn()
}

// colorize wraps text in the requested colors, or returns it unchanged
// when colors are disabled.
func (p *Printer) colorize(text string, colors ...Color) string {
	if !p.colors {
		return text
	}
	for _, c := range colors {
		style, ok := palette[c]
		if !ok {
			continue
		}
		text = style.Sprint(text)
	}
	return text
}
