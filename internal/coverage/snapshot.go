// Package coverage holds the typing-adoption snapshot model: one
// point-in-time aggregate of how much of a codebase the external type
// checker covers. Snapshots are parsed from the checker's JSON output and
// are read-only once handed to a printer or the history store.
package coverage

import (
	"encoding/json"
	stderrors "errors"
	"io/fs"
	"os"
	"time"

	"typecov/internal/core/errors"
)

// Strictness is the named typing-rigor tier a file is declared under.
type Strictness string

const (
	StrictnessIgnore Strictness = "ignore"
	StrictnessFalse  Strictness = "false"
	StrictnessTrue   Strictness = "true"
	StrictnessStrict Strictness = "strict"
	StrictnessStrong Strictness = "strong"
	// StrictnessStdlib tags files shipped with the checker's stdlib payload.
	// Parsed and serialized like any other sigil, but never surfaced in
	// diff tables.
	StrictnessStdlib Strictness = "stdlib"
)

// Strictnesses is the fixed recognized sigil set, in display order. Keys
// outside this set are dropped at parse time, never inside rendering logic.
var Strictnesses = []Strictness{
	StrictnessIgnore,
	StrictnessFalse,
	StrictnessTrue,
	StrictnessStrict,
	StrictnessStrong,
	StrictnessStdlib,
}

// now is the snapshot clock. Tests swap it for a fixed instant.
var now = func() time.Time { return time.Now().UTC() }

type Snapshot struct {
	Timestamp       int64
	VersionStatic   string
	VersionRuntime  string
	Duration        int64
	CommitSHA       string
	CommitTimestamp int64

	Files            int64
	Modules          int64
	Classes          int64
	SingletonClasses int64

	MethodsWithSig    int64
	MethodsWithoutSig int64
	CallsTyped        int64
	CallsUntyped      int64

	Sigils map[Strictness]int64
}

// New returns an empty snapshot stamped with the current time.
func New() *Snapshot {
	return &Snapshot{
		Timestamp: now().Unix(),
		Sigils:    make(map[Strictness]int64),
	}
}

// Methods is the total method count regardless of signature state.
func (s *Snapshot) Methods() int64 {
	return s.MethodsWithSig + s.MethodsWithoutSig
}

// Calls is the total call-site count regardless of typing state.
func (s *Snapshot) Calls() int64 {
	return s.CallsTyped + s.CallsUntyped
}

// Sigil reads one sigil count; missing keys read as 0.
func (s *Snapshot) Sigil(st Strictness) int64 {
	return s.Sigils[st]
}

// FromObject builds a fully-defaulted snapshot from an already-parsed JSON
// object. Missing fields take their defaults, unknown top-level keys and
// unrecognized sigil names are silently dropped. Never fails.
func FromObject(obj map[string]any) *Snapshot {
	s := New()
	s.Timestamp = intField(obj, "timestamp", s.Timestamp)
	s.VersionStatic = stringField(obj, "version_static", "")
	s.VersionRuntime = stringField(obj, "version_runtime", "")
	s.Duration = intField(obj, "duration", 0)
	s.CommitSHA = stringField(obj, "commit_sha", "")
	s.CommitTimestamp = intField(obj, "commit_timestamp", 0)
	s.Files = intField(obj, "files", 0)
	s.Modules = intField(obj, "modules", 0)
	s.Classes = intField(obj, "classes", 0)
	s.SingletonClasses = intField(obj, "singleton_classes", 0)
	s.MethodsWithSig = intField(obj, "methods_with_sig", 0)
	s.MethodsWithoutSig = intField(obj, "methods_without_sig", 0)
	s.CallsTyped = intField(obj, "calls_typed", 0)
	s.CallsUntyped = intField(obj, "calls_untyped", 0)

	if raw, ok := obj["sigils"].(map[string]any); ok {
		for _, st := range Strictnesses {
			if v, ok := raw[string(st)]; ok {
				if n, ok := asInt(v); ok {
					s.Sigils[st] = n
				}
			}
		}
	}

	return s
}

// FromJSON parses text as JSON and delegates to FromObject.
func FromJSON(data []byte) (*Snapshot, error) {
	var obj map[string]any
	if err := json.Unmarshal(data, &obj); err != nil {
		return nil, errors.Wrap(err, errors.CodeParseError, "parse snapshot JSON")
	}
	return FromObject(obj), nil
}

// FromFile reads a snapshot JSON file and delegates to FromJSON.
func FromFile(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		code := errors.CodeIOError
		if stderrors.Is(err, fs.ErrNotExist) {
			code = errors.CodeNotFound
		}
		return nil, errors.AddContext(
			errors.Wrap(err, code, "read snapshot file"), errors.CtxPath, path)
	}
	return FromJSON(data)
}

// Serialize produces the JSON object form of the snapshot, keyed by the
// same names FromObject reads. Counter fields are always present, zeros
// included, as is the sigils map; optional fields appear only when set.
// FromObject(s.Serialize()) round-trips for any snapshot whose sigil keys
// are a subset of the recognized set.
func (s *Snapshot) Serialize() map[string]any {
	// Keyed as map[string]any so FromObject can consume the result directly.
	sigils := make(map[string]any, len(s.Sigils))
	for st, count := range s.Sigils {
		sigils[string(st)] = count
	}

	obj := map[string]any{
		"timestamp":           s.Timestamp,
		"duration":            s.Duration,
		"files":               s.Files,
		"modules":             s.Modules,
		"classes":             s.Classes,
		"singleton_classes":   s.SingletonClasses,
		"methods_with_sig":    s.MethodsWithSig,
		"methods_without_sig": s.MethodsWithoutSig,
		"calls_typed":         s.CallsTyped,
		"calls_untyped":       s.CallsUntyped,
		"sigils":              sigils,
	}
	if s.VersionStatic != "" {
		obj["version_static"] = s.VersionStatic
	}
	if s.VersionRuntime != "" {
		obj["version_runtime"] = s.VersionRuntime
	}
	if s.CommitSHA != "" {
		obj["commit_sha"] = s.CommitSHA
	}
	if s.CommitTimestamp != 0 {
		obj["commit_timestamp"] = s.CommitTimestamp
	}
	return obj
}

// ToJSON renders the serialized snapshot as indented JSON.
func (s *Snapshot) ToJSON() ([]byte, error) {
	data, err := json.MarshalIndent(s.Serialize(), "", "  ")
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "marshal snapshot")
	}
	return data, nil
}

func intField(obj map[string]any, key string, def int64) int64 {
	v, ok := obj[key]
	if !ok || v == nil {
		return def
	}
	n, ok := asInt(v)
	if !ok {
		return def
	}
	return n
}

func stringField(obj map[string]any, key, def string) string {
	v, ok := obj[key]
	if !ok || v == nil {
		return def
	}
	str, ok := v.(string)
	if !ok {
		return def
	}
	return str
}

func asInt(v any) (int64, bool) {
	switch n := v.(type) {
	case float64:
		return int64(n), true
	case int:
		return int64(n), true
	case int64:
		return n, true
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, false
		}
		return i, true
	}
	return 0, false
}
