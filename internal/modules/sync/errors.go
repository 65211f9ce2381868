package sync

import (
	"fmt"
	"strings"
)

// previewLimit bounds how many individual failures an aggregated error
// message spells out; the rest are summarized as a count.
const previewLimit = 5

// ShapeError reports a desired-state document that fails structural
// validation (missing required field, duplicate natural key). Raised before
// classification, collected across the whole batch.
type ShapeError struct {
	Kind   string
	Key    string
	Reason string
}

func (e *ShapeError) Error() string {
	key := e.Key
	if key == "" {
		key = "<missing key>"
	}
	return fmt.Sprintf("%s %s: %s", e.Kind, key, e.Reason)
}

// NotFoundError reports an update candidate whose referenced record is
// absent from the database.
type NotFoundError struct {
	Kind string
	Key  string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.Key)
}

// InvariantViolation is a verify-phase failure. Any violation aborts the
// whole kind's batch before a single mutation runs.
type InvariantViolation struct {
	Key    string
	Reason string
}

func (e *InvariantViolation) Error() string {
	return fmt.Sprintf("%s: %s", e.Key, e.Reason)
}

// ApplyError wraps an unexpected mutation failure after verification passed.
// Not retried; rerunning the batch is the recovery path.
type ApplyError struct {
	Key string
	Err error
}

func (e *ApplyError) Error() string {
	return fmt.Sprintf("apply %s: %v", e.Key, e.Err)
}

func (e *ApplyError) Unwrap() error { return e.Err }

// Failure is one (entity key, reason) pair in a report or aggregated error.
type Failure struct {
	Key    string `json:"key"`
	Reason string `json:"reason"`
}

// BatchError aggregates every failure of one kind and stage so operators see
// all problems in one pass.
type BatchError struct {
	Kind     string
	Stage    string // "shape", "classify", "verify", "apply"
	Failures []Failure
}

func (e *BatchError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "sync %s: %s failed for %d entities", e.Kind, e.Stage, len(e.Failures))
	n := len(e.Failures)
	if n > previewLimit {
		n = previewLimit
	}
	for i := 0; i < n; i++ {
		fmt.Fprintf(&b, "; %s: %s", e.Failures[i].Key, e.Failures[i].Reason)
	}
	if rest := len(e.Failures) - n; rest > 0 {
		fmt.Fprintf(&b, " (+%d more)", rest)
	}
	return b.String()
}
