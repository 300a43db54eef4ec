package service

import (
	"errors"
	"fmt"

	"workshop-dispatch/internal/models"
)

var ErrNotFound = errors.New("not found")

var (
	ErrDecode     = errors.New("decode")
	ErrValidation = errors.New("validation")
)

var (
	ErrBusy              = errors.New("another dispatch is already in progress")
	ErrPartialSubmission = errors.New("group was only partially populated")
	ErrTerminalState     = errors.New("group is in a terminal state")
)

// ValidationError is a user error detected before any backend write.
// It matches ErrValidation with errors.Is.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

var (
	ErrEmptySelection   = &ValidationError{Reason: "select at least one child"}
	ErrNoReindeer       = &ValidationError{Reason: "select a reindeer"}
	ErrMixedRegions     = &ValidationError{Reason: "selected children belong to different regions"}
	ErrUnknownChildren  = &ValidationError{Reason: "none of the selected children are awaiting delivery"}
	ErrEmptyGroupName   = &ValidationError{Reason: "group name is empty"}
	ErrNothingToAssign  = &ValidationError{Reason: "no selected child could be assigned a gift"}
	ErrDuplicateRequest = &ValidationError{Reason: "request was already dispatched"}
	ErrInvalidStatus    = &ValidationError{Reason: "unknown group status"}
)

// TerminalStateError reports an operation refused because the group already left PENDING.
type TerminalStateError struct {
	GroupID int
	Op      string
	Status  models.GroupStatus
	Err     error
}

func (e *TerminalStateError) Error() string {
	msg := fmt.Sprintf("cannot %s group %d: status is %s", e.Op, e.GroupID, e.Status)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *TerminalStateError) Is(target error) bool { return target == ErrTerminalState }

func (e *TerminalStateError) Unwrap() error { return e.Err }
