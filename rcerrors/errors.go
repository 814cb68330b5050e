// Package rcerrors defines the semantic error taxonomy used across the
// retrieval core: not Go error types for their own sake, but the four
// kinds of failure the orchestrator must react to differently.
package rcerrors

import (
	"github.com/cockroachdb/errors"
)

// Kind classifies a failure by how the orchestrator must react to it.
type Kind int

const (
	// ConfigInvalid is raised at construction time and always
	// propagates to the caller.
	ConfigInvalid Kind = iota
	// DependencyUnavailable means a required backend (dense index,
	// normalizer, generator) could not be reached. Handling is
	// per-backend: a failing dense source contributes nothing, a
	// failing normalizer falls back to the original query, a failing
	// generator yields a fixed apology string.
	DependencyUnavailable
	// OptionalStageFailure covers the reranker or a non-default
	// tokenizer failing to initialize or run; the stage is skipped
	// and the pipeline continues with its pre-stage state.
	OptionalStageFailure
	// EmptyResult means all three sources returned zero candidates.
	EmptyResult
)

func (k Kind) String() string {
	switch k {
	case ConfigInvalid:
		return "config_invalid"
	case DependencyUnavailable:
		return "dependency_unavailable"
	case OptionalStageFailure:
		return "optional_stage_failure"
	case EmptyResult:
		return "empty_result"
	default:
		return "unknown"
	}
}

// Error wraps an underlying cause with the operation it occurred in
// and the Kind that determines how it is handled.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	return errors.Wrapf(e.Err, "%s: %s", e.Kind, e.Op).Error()
}

func (e *Error) Unwrap() error { return e.Err }

// New builds an Error of the given kind, wrapping err with op context.
func New(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: errors.Wrap(err, op)}
}

// Is reports whether err is an *Error of the given kind.
func Is(err error, kind Kind) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Kind == kind
}
