package report

import (
	"fmt"
	"strings"
	"testing"

	"typecov/internal/coverage"
)

func TestPercent(t *testing.T) {
	cases := []struct {
		value, total int64
		expected     string
	}{
		{5, 10, "(50%)"},
		{1, 3, "(33%)"},
		{2, 3, "(67%)"},
		{0, 10, "(0%)"},
		{10, 10, "(100%)"},
		{5, 0, ""},
		{0, 0, ""},
	}
	for _, tc := range cases {
		if got := percent(tc.value, tc.total); got != tc.expected {
			t.Errorf("percent(%d, %d) = %q, expected %q", tc.value, tc.total, got, tc.expected)
		}
	}
}

func TestPrintSnapshotExample(t *testing.T) {
	s, err := coverage.FromJSON([]byte(`{
		"files": 10,
		"methods_with_sig": 7,
		"methods_without_sig": 3,
		"sigils": {"true": 10}
	}`))
	if err != nil {
		t.Fatal(err)
	}

	var buf strings.Builder
	p := NewSnapshotPrinter(&buf, WithColors(false))
	if err := p.PrintSnapshot(s); err != nil {
		t.Fatal(err)
	}

	expected := "Content:\n" +
		"  files: 10\n" +
		"  modules: 0\n" +
		"  classes: 0\n" +
		"  methods: 10\n" +
		"\n" +
		"Sigils:\n" +
		"  true: 10 (100%)\n" +
		"\n" +
		"Methods:\n" +
		"  with signature: 7 (70%)\n" +
		"  without signature: 3 (30%)\n" +
		"\n" +
		"Calls:\n"
	if buf.String() != expected {
		t.Errorf("unexpected report:\n%q\nexpected:\n%q", buf.String(), expected)
	}
}

func TestPrintSnapshotVersions(t *testing.T) {
	s := coverage.FromObject(map[string]any{
		"version_static":  "0.5.10",
		"version_runtime": "0.5.11",
	})

	var buf strings.Builder
	p := NewSnapshotPrinter(&buf, WithColors(false))
	if err := p.PrintSnapshot(s); err != nil {
		t.Fatal(err)
	}

	out := buf.String()
	if !strings.HasPrefix(out, "Checker static: 0.5.10\nChecker runtime: 0.5.11\n\n") {
		t.Errorf("expected version header, got:\n%s", out)
	}
}

func TestPrintSnapshotOmitsVersionsWhenAbsent(t *testing.T) {
	s := coverage.FromObject(map[string]any{"files": float64(1)})

	var buf strings.Builder
	p := NewSnapshotPrinter(&buf, WithColors(false))
	if err := p.PrintSnapshot(s); err != nil {
		t.Fatal(err)
	}

	if strings.Contains(buf.String(), "Checker") {
		t.Errorf("expected no version lines, got:\n%s", buf.String())
	}
}

func TestPrintSnapshotExcludesSingletonClasses(t *testing.T) {
	s := coverage.FromObject(map[string]any{
		"classes":           float64(8),
		"singleton_classes": float64(3),
	})

	var buf strings.Builder
	p := NewSnapshotPrinter(&buf, WithColors(false))
	if err := p.PrintSnapshot(s); err != nil {
		t.Fatal(err)
	}

	if !strings.Contains(buf.String(), "classes: 5\n") {
		t.Errorf("expected singleton classes excluded from visible count, got:\n%s", buf.String())
	}
	if s.Classes != 8 {
		t.Errorf("expected raw classes field untouched, got %d", s.Classes)
	}
}

func TestPrintSnapshotHidesZeroSigilRows(t *testing.T) {
	s := coverage.FromObject(map[string]any{
		"files": float64(10),
		"sigils": map[string]any{
			"false":  float64(0),
			"strict": float64(10),
		},
	})

	var buf strings.Builder
	p := NewSnapshotPrinter(&buf, WithColors(false))
	if err := p.PrintSnapshot(s); err != nil {
		t.Fatal(err)
	}

	if strings.Contains(buf.String(), "false:") {
		t.Errorf("expected zero-count sigil hidden, got:\n%s", buf.String())
	}
	if !strings.Contains(buf.String(), "strict: 10 (100%)") {
		t.Errorf("expected strict row, got:\n%s", buf.String())
	}
}

func TestPrintSnapshotShowsStdlibSigil(t *testing.T) {
	s := coverage.FromObject(map[string]any{
		"files":  float64(4),
		"sigils": map[string]any{"stdlib": float64(4)},
	})

	var buf strings.Builder
	p := NewSnapshotPrinter(&buf, WithColors(false))
	if err := p.PrintSnapshot(s); err != nil {
		t.Fatal(err)
	}

	if !strings.Contains(buf.String(), "stdlib: 4 (100%)") {
		t.Errorf("expected stdlib row in plain report, got:\n%s", buf.String())
	}
}

func TestPrintDiffShowsZeroRows(t *testing.T) {
	a := coverage.FromObject(map[string]any{"sigils": map[string]any{"true": float64(10)}})
	b := coverage.FromObject(map[string]any{"sigils": map[string]any{"true": float64(15)}})

	var buf strings.Builder
	p := NewSnapshotPrinter(&buf, WithColors(false))
	if err := p.PrintDiff(a, b); err != nil {
		t.Fatal(err)
	}

	out := buf.String()
	// Every user-visible sigil appears, zero counts included.
	for _, name := range []string{"ignore:", "false:", "true:", "strict:", "strong:"} {
		if !strings.Contains(out, name) {
			t.Errorf("expected %s row in diff, got:\n%s", name, out)
		}
	}
	if strings.Contains(out, "stdlib") {
		t.Errorf("expected stdlib excluded from diff, got:\n%s", out)
	}
	if strings.Contains(out, "%") {
		t.Errorf("expected no percentages in diff mode, got:\n%s", out)
	}
}

func TestPrintDiffRowLayout(t *testing.T) {
	a := coverage.FromObject(map[string]any{"sigils": map[string]any{"true": float64(10)}})
	b := coverage.FromObject(map[string]any{"sigils": map[string]any{"true": float64(15)}})

	var buf strings.Builder
	p := NewSnapshotPrinter(&buf, WithColors(false))
	if err := p.PrintDiff(a, b); err != nil {
		t.Fatal(err)
	}

	expected := fmt.Sprintf("  %-18s %8d %8d %8s", "true:", 10, 15, "+5")
	for _, line := range strings.Split(buf.String(), "\n") {
		if strings.Contains(line, "true:") {
			if line != expected {
				t.Errorf("unexpected row layout: %q, expected %q", line, expected)
			}
			return
		}
	}
	t.Error("true row not found in diff output")
}

func TestPrintDiffSigns(t *testing.T) {
	forceColors(t)

	render := func(va, vb int64) string {
		a := coverage.New()
		a.CallsTyped = va
		b := coverage.New()
		b.CallsTyped = vb

		var buf strings.Builder
		p := NewSnapshotPrinter(&buf, WithColors(true))
		if err := p.PrintDiff(a, b); err != nil {
			t.Fatal(err)
		}
		return buf.String()
	}

	increased := render(10, 15)
	if !strings.Contains(increased, "+5") || !strings.Contains(increased, "\x1b[32m") {
		t.Errorf("expected green +5, got:\n%q", increased)
	}

	decreased := render(15, 10)
	if !strings.Contains(decreased, "-5") || !strings.Contains(decreased, "\x1b[31m") {
		t.Errorf("expected red -5, got:\n%q", decreased)
	}

	unchanged := render(10, 10)
	if !strings.Contains(unchanged, "\x1b[2m") {
		t.Errorf("expected dim zero delta, got:\n%q", unchanged)
	}
}

func TestPrintSnapshotWriteFailure(t *testing.T) {
	s := coverage.New()
	p := NewSnapshotPrinter(failWriter{}, WithColors(false))
	if err := p.PrintSnapshot(s); err == nil {
		t.Error("expected write error to propagate")
	}
}
