package report

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"typecov/internal/history"
)

func RenderTimelineTSV(report history.TimelineReport) ([]byte, error) {
	var buf strings.Builder

	buf.WriteString("Timestamp\tCommit\tFiles\tModules\tClasses\tMethodsWithSig\tMethodsWithoutSig\tCallsTyped\tCallsUntyped\tTypedMethodsPct\tTypedCallsPct\tStrictFilesPct\tDeltaFiles\tDeltaMethodsWithSig\tDeltaCallsTyped\tDeltaTypedMethodsPct\tDeltaTypedCallsPct\tAvgTypedMethodsPct\tAvgTypedCallsPct\tWindowHours\n")
	for _, point := range report.Points {
		buf.WriteString(fmt.Sprintf(
			"%s\t%s\t%d\t%d\t%d\t%d\t%d\t%d\t%d\t%.2f\t%.2f\t%.2f\t%d\t%d\t%d\t%.2f\t%.2f\t%.2f\t%.2f\t%.2f\n",
			time.Unix(point.Timestamp, 0).UTC().Format("2006-01-02T15:04:05Z07:00"),
			point.CommitSHA,
			point.Files,
			point.Modules,
			point.Classes,
			point.MethodsWithSig,
			point.MethodsWithoutSig,
			point.CallsTyped,
			point.CallsUntyped,
			point.TypedMethodsPct,
			point.TypedCallsPct,
			point.StrictFilesPct,
			point.DeltaFiles,
			point.DeltaMethodsWithSig,
			point.DeltaCallsTyped,
			point.DeltaTypedMethodsPct,
			point.DeltaTypedCallsPct,
			point.AvgTypedMethodsPct,
			point.AvgTypedCallsPct,
			point.WindowHours,
		))
	}

	return []byte(buf.String()), nil
}

func RenderTimelineJSON(report history.TimelineReport) ([]byte, error) {
	return json.MarshalIndent(report, "", "  ")
}
