package history

import (
	"fmt"
	"math"
	"time"

	"typecov/internal/coverage"
)

// BuildTimelineReport turns an ordered snapshot series into per-point
// coverage percentages, deltas against the previous point, and moving
// averages over the given window.
func BuildTimelineReport(snapshots []*coverage.Snapshot, window time.Duration) (TimelineReport, error) {
	if len(snapshots) == 0 {
		return TimelineReport{}, fmt.Errorf("no snapshots available")
	}

	points := make([]TimelinePoint, 0, len(snapshots))
	for i, current := range snapshots {
		point := TimelinePoint{
			Timestamp:         current.Timestamp,
			CommitSHA:         current.CommitSHA,
			Files:             current.Files,
			Modules:           current.Modules,
			Classes:           current.Classes,
			MethodsWithSig:    current.MethodsWithSig,
			MethodsWithoutSig: current.MethodsWithoutSig,
			CallsTyped:        current.CallsTyped,
			CallsUntyped:      current.CallsUntyped,
			TypedMethodsPct:   round2(ratio(current.MethodsWithSig, current.Methods())),
			TypedCallsPct:     round2(ratio(current.CallsTyped, current.Calls())),
			StrictFilesPct:    round2(ratio(strictFiles(current), current.Files)),
		}

		if i > 0 {
			prev := points[i-1]
			point.DeltaFiles = current.Files - prev.Files
			point.DeltaMethodsWithSig = current.MethodsWithSig - prev.MethodsWithSig
			point.DeltaCallsTyped = current.CallsTyped - prev.CallsTyped
			point.DeltaTypedMethodsPct = round2(point.TypedMethodsPct - prev.TypedMethodsPct)
			point.DeltaTypedCallsPct = round2(point.TypedCallsPct - prev.TypedCallsPct)
		}

		avgMethods, avgCalls := movingAverages(points, point, window)
		point.AvgTypedMethodsPct = round2(avgMethods)
		point.AvgTypedCallsPct = round2(avgCalls)
		point.WindowHours = round2(window.Hours())
		points = append(points, point)
	}

	return TimelineReport{
		SchemaVersion: SchemaVersion,
		Since:         snapshots[0].Timestamp,
		Until:         snapshots[len(snapshots)-1].Timestamp,
		Window:        window.String(),
		SnapshotCount: len(points),
		Points:        points,
	}, nil
}

// strictFiles counts files declared at strict or stronger.
func strictFiles(s *coverage.Snapshot) int64 {
	return s.Sigil(coverage.StrictnessStrict) + s.Sigil(coverage.StrictnessStrong)
}

func movingAverages(earlier []TimelinePoint, current TimelinePoint, window time.Duration) (float64, float64) {
	if window <= 0 {
		return current.TypedMethodsPct, current.TypedCallsPct
	}

	cutoff := current.Timestamp - int64(window.Seconds())
	methodsTotal := current.TypedMethodsPct
	callsTotal := current.TypedCallsPct
	count := 1
	for i := len(earlier) - 1; i >= 0; i-- {
		if earlier[i].Timestamp < cutoff {
			break
		}
		methodsTotal += earlier[i].TypedMethodsPct
		callsTotal += earlier[i].TypedCallsPct
		count++
	}
	return methodsTotal / float64(count), callsTotal / float64(count)
}

func ratio(value, total int64) float64 {
	if total == 0 {
		return 0
	}
	return float64(value) * 100 / float64(total)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
