// Package apperr defines the error kinds shared by the router, the version store
// and the storage backends.
package apperr

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned for unknown conversation, resume or version ids.
	ErrNotFound = errors.New("not found")
	// ErrInvalidVersion is returned when a revert target does not exist in history.
	ErrInvalidVersion = errors.New("invalid version")
	// ErrClassificationUnavailable marks a completion failure during intent classification.
	// It never leaves the classifier: the turn is routed to general chat instead.
	ErrClassificationUnavailable = errors.New("classification unavailable")
	// ErrAgentFailure marks a failed agent run. The dispatch table turns it into a safe reply.
	ErrAgentFailure = errors.New("agent failure")
	// ErrUpstream marks a failed write or read against a conversation or version store.
	ErrUpstream = errors.New("upstream service error")
)

// NotFoundError names the kind and id of the missing entity.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// NotFound builds a NotFoundError.
func NotFound(kind, id string) error {
	return &NotFoundError{Kind: kind, ID: id}
}

// InvalidVersionError is returned by revert when the sequence number is not in history.
type InvalidVersionError struct {
	ResumeID string
	Seq      int
}

func (e *InvalidVersionError) Error() string {
	return fmt.Sprintf("resume %q has no version %d", e.ResumeID, e.Seq)
}

func (e *InvalidVersionError) Is(target error) bool { return target == ErrInvalidVersion }

// AgentFailureError wraps an error raised while an agent processed a turn.
type AgentFailureError struct {
	Agent string
	Err   error
}

func (e *AgentFailureError) Error() string {
	return fmt.Sprintf("agent %s: %v", e.Agent, e.Err)
}

func (e *AgentFailureError) Unwrap() error { return e.Err }

func (e *AgentFailureError) Is(target error) bool { return target == ErrAgentFailure }

// UpstreamError wraps a store failure with the operation that failed.
type UpstreamError struct {
	Op  string
	Err error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

func (e *UpstreamError) Is(target error) bool { return target == ErrUpstream }

// Upstream wraps err as an UpstreamError. Not-found errors pass through untouched
// so callers can still tell a missing entity from a broken store.
func Upstream(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrInvalidVersion) {
		return err
	}
	return &UpstreamError{Op: op, Err: err}
}
