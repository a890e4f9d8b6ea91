package engine

import (
	"errors"

	"github.com/matt-steen/taskboard/pkg/models"
)

// Actor is the user on whose behalf a mutation runs. It is recorded as the author of the
// activity entries, comments, tasks and projects the mutation creates.
type Actor struct {
	UserID string
}

// Outcome tells callers whether a mutation changed anything.
type Outcome int

const (
	// Applied means the mutation changed state.
	Applied Outcome = iota
	// NotFound means an id passed to the mutation is unknown; nothing changed.
	NotFound
	// NoOp means the mutation was valid but had nothing to do.
	NoOp
)

func (o Outcome) String() string {
	switch o {
	case Applied:
		return "applied"
	case NotFound:
		return "not found"
	case NoOp:
		return "no-op"
	}

	return "unknown"
}

// Result describes a mutation. For Applied, ID is the created or changed record; for NotFound,
// Kind and ID name the missing record.
type Result struct {
	Outcome Outcome
	Kind    string
	ID      string
	// Removed lists deleted task ids, the requested task first.
	Removed []string
}

// Applied reports whether the mutation changed state.
func (r Result) Applied() bool {
	return r.Outcome == Applied
}

// ValidationError rejects a mutation whose references are inconsistent, e.g. a phase that
// belongs to another project. State is never changed when it is returned.
type ValidationError struct {
	Op     string
	Reason string
	Err    error
}

func (e *ValidationError) Error() string {
	if e.Err != nil {
		return e.Op + ": " + e.Reason + ": " + e.Err.Error()
	}

	return e.Op + ": " + e.Reason
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func invalid(op, reason string) error {
	return &ValidationError{Op: op, Reason: reason}
}

func applied(kind, id string) Result {
	return Result{Outcome: Applied, Kind: kind, ID: id}
}

func missing(kind, id string) Result {
	return Result{Outcome: NotFound, Kind: kind, ID: id}
}

// asNotFound converts a not-found error into a NotFound result.
func asNotFound(err error) (Result, bool) {
	var nf models.NotFoundError
	if errors.As(err, &nf) {
		return missing(nf.Kind, nf.ID), true
	}

	return Result{}, false
}
