package integration

import (
	"bytes"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"typecov/internal/coverage"
	"typecov/internal/history"
	"typecov/internal/report"
)

// Exercises the full flow a CI job runs: parse checker output, record it,
// diff against the previous recording, and render the timeline.
func TestCoverageRecordingFlow(t *testing.T) {
	store, err := history.Open(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	defer store.Close()

	first, err := coverage.FromJSON([]byte(`{
		"timestamp": 1650000000,
		"version_static": "0.5.10",
		"files": 10,
		"methods_with_sig": 5,
		"methods_without_sig": 5,
		"calls_typed": 40,
		"calls_untyped": 60,
		"sigils": {"false": 6, "true": 4, "bogus": 99}
	}`))
	require.NoError(t, err)
	assert.NotContains(t, first.Sigils, coverage.Strictness("bogus"))
	require.NoError(t, store.SaveSnapshot("app", first))

	second, err := coverage.FromJSON([]byte(`{
		"timestamp": 1650086400,
		"version_static": "0.5.11",
		"files": 12,
		"methods_with_sig": 9,
		"methods_without_sig": 3,
		"calls_typed": 70,
		"calls_untyped": 30,
		"sigils": {"false": 4, "true": 6, "strict": 2}
	}`))
	require.NoError(t, err)
	require.NoError(t, store.SaveSnapshot("app", second))

	// The recorded rows round-trip exactly.
	recorded, err := store.LoadSnapshots("app", time.Time{})
	require.NoError(t, err)
	require.Len(t, recorded, 2)
	assert.Equal(t, first, recorded[0])
	assert.Equal(t, second, recorded[1])

	// Diff of the last recorded pair.
	pair, err := store.Latest("app", 2)
	require.NoError(t, err)
	require.Len(t, pair, 2)

	var diffBuf bytes.Buffer
	printer := report.NewSnapshotPrinter(&diffBuf, report.WithColors(false))
	require.NoError(t, printer.PrintDiff(pair[0], pair[1]))

	diff := diffBuf.String()
	assert.Contains(t, diff, "+2") // true sigils and files grew
	assert.Contains(t, diff, "-2") // false sigils shrank
	assert.Contains(t, diff, "strict:")
	assert.NotContains(t, diff, "%")

	// Timeline over the full series.
	timeline, err := history.BuildTimelineReport(recorded, 7*24*time.Hour)
	require.NoError(t, err)
	require.Len(t, timeline.Points, 2)
	assert.Equal(t, 50.0, timeline.Points[0].TypedMethodsPct)
	assert.Equal(t, 75.0, timeline.Points[1].TypedMethodsPct)
	assert.Equal(t, 25.0, timeline.Points[1].DeltaTypedMethodsPct)

	tsv, err := report.RenderTimelineTSV(timeline)
	require.NoError(t, err)
	assert.Contains(t, string(tsv), "TypedMethodsPct")
}
