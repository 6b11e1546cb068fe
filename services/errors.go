package services

import (
	"errors"
	"fmt"
)

// Business-rule errors are returned as typed values so controllers can
// map them to structured responses instead of 500s. Infrastructure
// errors pass through untouched.

// ValidationError rejects malformed input before any write.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NotFoundError reports an absent referenced entity.
type NotFoundError struct {
	Entity string
	ID     uint
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Entity, e.ID)
}

// OrphanNodeError reports a tree node with no resolvable parent. Fatal:
// it indicates data corruption, not a user mistake.
type OrphanNodeError struct {
	Kind string
	ID   uint
}

func (e *OrphanNodeError) Error() string {
	return fmt.Sprintf("%s %d has no resolvable parent", e.Kind, e.ID)
}

// InvalidTransitionError reports a workflow precondition that was not
// met, naming the precondition.
type InvalidTransitionError struct {
	From     string
	To       string
	Required string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot transition from %s to %s: requires %s", e.From, e.To, e.Required)
}

// UnauthorizedError reports a failed role check.
type UnauthorizedError struct {
	Reason string
}

func (e *UnauthorizedError) Error() string {
	return e.Reason
}

// IsBusinessError reports whether err belongs to the expected,
// user-facing taxonomy.
func IsBusinessError(err error) bool {
	var ve *ValidationError
	var nf *NotFoundError
	var it *InvalidTransitionError
	var ua *UnauthorizedError
	return errors.As(err, &ve) || errors.As(err, &nf) || errors.As(err, &it) || errors.As(err, &ua)
}

// Actor is the authenticated caller context passed explicitly into
// every engine call. Never ambient state.
type Actor struct {
	UserID    uint
	IsManager bool
}
