package sync

import "github.com/yungbote/videolabel-backend/internal/platform/dbctx"

type Action string

const (
	ActionAdd    Action = "add"
	ActionUpdate Action = "update"
)

type Outcome string

const (
	OutcomeCreated Outcome = "created"
	OutcomeUpdated Outcome = "updated"
	OutcomeSkipped Outcome = "skipped"
	OutcomeRemoved Outcome = "removed"
)

// State is the per-kind batch state machine.
type State string

const (
	StateLoaded       State = "loaded"
	StateClassified   State = "classified"
	StateVerifying    State = "verifying"
	StateVerifiedOK   State = "verified_ok"
	StateVerifyFailed State = "verify_failed"
	StateApplying     State = "applying"
	StateDone         State = "done"
	StateAborted      State = "aborted"
)

// Operation is one classified desired-state record. Verify must be read-only;
// Apply recomputes its diff against live state so a rerun of an already
// applied batch reports skipped.
type Operation interface {
	Key() string
	Action() Action
	Verify(dbc dbctx.Context) error
	Apply(dbc dbctx.Context) (Outcome, error)
}

// Syncer plans one entity kind's batch: shape-validate the documents,
// classify them against live state, and emit the operations to verify and
// apply. Planning is read-only; shape and classification problems come back
// as failures, not operations.
type Syncer interface {
	Kind() string
	Plan(dbc dbctx.Context) (ops []Operation, failures []Failure, err error)
}
