package history

const SchemaVersion = 1

// TimelinePoint is one recorded snapshot enriched with coverage
// percentages, deltas against the previous point, and a moving average
// over the report window.
type TimelinePoint struct {
	Timestamp         int64  `json:"timestamp"`
	CommitSHA         string `json:"commit_sha,omitempty"`
	Files             int64  `json:"files"`
	Modules           int64  `json:"modules"`
	Classes           int64  `json:"classes"`
	MethodsWithSig    int64  `json:"methods_with_sig"`
	MethodsWithoutSig int64  `json:"methods_without_sig"`
	CallsTyped        int64  `json:"calls_typed"`
	CallsUntyped      int64  `json:"calls_untyped"`

	TypedMethodsPct float64 `json:"typed_methods_pct"`
	TypedCallsPct   float64 `json:"typed_calls_pct"`
	StrictFilesPct  float64 `json:"strict_files_pct"`

	DeltaFiles           int64   `json:"delta_files"`
	DeltaMethodsWithSig  int64   `json:"delta_methods_with_sig"`
	DeltaCallsTyped      int64   `json:"delta_calls_typed"`
	DeltaTypedMethodsPct float64 `json:"delta_typed_methods_pct"`
	DeltaTypedCallsPct   float64 `json:"delta_typed_calls_pct"`

	AvgTypedMethodsPct float64 `json:"avg_typed_methods_pct"`
	AvgTypedCallsPct   float64 `json:"avg_typed_calls_pct"`
	WindowHours        float64 `json:"window_hours"`
}

type TimelineReport struct {
	SchemaVersion int             `json:"schema_version"`
	Since         int64           `json:"since"`
	Until         int64           `json:"until"`
	Window        string          `json:"window"`
	SnapshotCount int             `json:"snapshot_count"`
	Points        []TimelinePoint `json:"points"`
}
