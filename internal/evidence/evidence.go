// Package evidence defines the immutable per-source outcome collected during
// a reconciliation run.
package evidence

import (
	"time"

	"veridex/internal/listing"
)

// Outcome is the normalized result taxonomy for one adapter invocation.
type Outcome string

const (
	OutcomeFound    Outcome = "FOUND"
	OutcomeNotFound Outcome = "NOT_FOUND"
	OutcomeError    Outcome = "ERROR"
)

// Entry is one adapter's outcome for one record. Entries are created once
// per invocation, never mutated, and appended to the run's ordered evidence
// list.
type Entry struct {
	// Source names the adapter that produced this entry.
	Source string `json:"source"`

	Outcome Outcome `json:"outcome"`

	// Fields holds the normalized values the source reported, keyed by
	// record field. Only set on FOUND.
	Fields map[listing.Field]string `json:"fields,omitempty"`

	// Weight is the source-intrinsic reliability weight in [0,1].
	Weight float64 `json:"weight"`

	// Authoritative marks sources treated as ground truth when present.
	Authoritative bool `json:"authoritative"`

	// Err carries the captured cause on ERROR outcomes.
	Err string `json:"error,omitempty"`

	CheckedAt time.Time `json:"checked_at"`
}

// Field returns the normalized value this entry reported for a field.
func (e Entry) Field(f listing.Field) (string, bool) {
	v, ok := e.Fields[f]
	return v, ok && v != ""
}

// Found builds a FOUND entry with the reported field values.
func Found(source string, weight float64, authoritative bool, fields map[listing.Field]string) Entry {
	return Entry{
		Source:        source,
		Outcome:       OutcomeFound,
		Fields:        fields,
		Weight:        weight,
		Authoritative: authoritative,
		CheckedAt:     time.Now(),
	}
}

// NotFound builds a NOT_FOUND entry.
func NotFound(source string, weight float64, authoritative bool) Entry {
	return Entry{
		Source:        source,
		Outcome:       OutcomeNotFound,
		Weight:        weight,
		Authoritative: authoritative,
		CheckedAt:     time.Now(),
	}
}

// Errored builds an ERROR entry carrying the captured cause. Remote failure
// is evidence about the source, not a pipeline failure.
func Errored(source string, weight float64, authoritative bool, cause error) Entry {
	entry := Entry{
		Source:        source,
		Outcome:       OutcomeError,
		Weight:        weight,
		Authoritative: authoritative,
		CheckedAt:     time.Now(),
	}
	if cause != nil {
		entry.Err = cause.Error()
	}
	return entry
}
