package report

import (
	"fmt"
	"io"

	"typecov/internal/coverage"
)

// SnapshotPrinter renders one snapshot as an indented report, or the
// difference between two snapshots as a signed delta table.
type SnapshotPrinter struct {
	*Printer
}

func NewSnapshotPrinter(out io.Writer, opts ...Option) *SnapshotPrinter {
	return &SnapshotPrinter{Printer: NewPrinter(out, opts...)}
}

// PrintSnapshot emits the checker versions (when known), the content
// counters, and the sigil, method, and call coverage sections. Zero-count
// rows are hidden.
func (p *SnapshotPrinter) PrintSnapshot(s *coverage.Snapshot) error {
	methods := s.Methods()

	if s.VersionStatic != "" || s.VersionRuntime != "" {
		p.printl("Checker static: " + s.VersionStatic)
		p.printl("Checker runtime: " + s.VersionRuntime)
		p.printn()
	}

	p.printl("Content:")
	p.indented(func() {
		p.printl(fmt.Sprintf("files: %d", s.Files))
		p.printl(fmt.Sprintf("modules: %d", s.Modules))
		// Singleton classes are an artifact of how the checker counts
		// class objects; reports show only ordinary classes.
		p.printl(fmt.Sprintf("classes: %d", s.Classes-s.SingletonClasses))
		p.printl(fmt.Sprintf("methods: %d", methods))
	})
	p.printn()

	p.printl("Sigils:")
	p.indented(func() {
		for _, st := range coverage.Strictnesses {
			p.printCoverage(string(st), s.Sigil(st), s.Files)
		}
	})
	p.printn()

	p.printl("Methods:")
	p.indented(func() {
		p.printCoverage("with signature", s.MethodsWithSig, methods)
		p.printCoverage("without signature", s.MethodsWithoutSig, methods)
	})
	p.printn()

	p.printl("Calls:")
	p.indented(func() {
		p.printCoverage("typed", s.CallsTyped, s.Calls())
		p.printCoverage("untyped", s.CallsUntyped, s.Calls())
	})

	return p.Err()
}

// PrintDiff emits sigil, method, and call sections as fixed-width rows of
// the form "title  a  b  delta". Unlike PrintSnapshot, every user-visible
// sigil row is shown even when both counts are zero, so removals and
// additions stay visible. Percentages are never shown here.
func (p *SnapshotPrinter) PrintDiff(a, b *coverage.Snapshot) error {
	p.printl("Sigils:")
	p.indented(func() {
		for _, st := range coverage.Strictnesses {
			if st == coverage.StrictnessStdlib {
				continue
			}
			p.printDiff(string(st), a.Sigil(st), b.Sigil(st))
		}
	})
	p.printn()

	p.printl("Methods:")
	p.indented(func() {
		p.printDiff("with signature", a.MethodsWithSig, b.MethodsWithSig)
		p.printDiff("without signature", a.MethodsWithoutSig, b.MethodsWithoutSig)
	})
	p.printn()

	p.printl("Calls:")
	p.indented(func() {
		p.printDiff("typed", a.CallsTyped, b.CallsTyped)
		p.printDiff("untyped", a.CallsUntyped, b.CallsUntyped)
	})

	return p.Err()
}

func (p *SnapshotPrinter) printCoverage(title string, value, total int64) {
	if value == 0 {
		return
	}
	line := fmt.Sprintf("%s: %d", title, value)
	if pct := percent(value, total); pct != "" {
		line += " " + pct
	}
	p.printl(line)
}

func (p *SnapshotPrinter) printDiff(title string, va, vb int64) {
	delta := vb - va

	// Pad before colorizing so escape codes do not skew column widths.
	var deltaStr string
	switch {
	case delta > 0:
		deltaStr = p.colorize(fmt.Sprintf("%8s", fmt.Sprintf("+%d", delta)), ColorGreen)
	case delta < 0:
		deltaStr = p.colorize(fmt.Sprintf("%8d", delta), ColorRed)
	default:
		deltaStr = p.colorize(fmt.Sprintf("%8s", "0"), ColorDim)
	}

	p.printl(fmt.Sprintf("%-18s %8d %8d %s", title+":", va, vb, deltaStr))
}

// percent renders "(N%)" with round-to-nearest integer math, or "" when
// the total is zero. Never divides by zero.
func percent(value, total int64) string {
	if total == 0 {
		return ""
	}
	return fmt.Sprintf("(%d%%)", (value*100+total/2)/total)
}
