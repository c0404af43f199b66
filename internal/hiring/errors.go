package hiring

import (
	"errors"
	"fmt"
	"strings"
)

// Code classifies an engine failure. Every operation surfaces exactly one of
// these; none are retried internally.
type Code string

const (
	CodeValidation        Code = "validation"
	CodeNotFound          Code = "not_found"
	CodeForbidden         Code = "forbidden"
	CodeInvalidTransition Code = "invalid_transition"
	CodeSlotConflict      Code = "slot_conflict"
	CodeConflict          Code = "conflict"
)

// ReasonPlanLimit is set on Forbidden errors raised by the company gate.
const ReasonPlanLimit = "PLAN_LIMIT"

// Error is the structured failure type returned by the engine. Details carry
// enough context (current state, attempted state, conflicting entity id) for
// the client to render a precise message.
type Error struct {
	Code    Code              `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

func (e *Error) Error() string {
	if len(e.Details) == 0 {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s %v", e.Code, e.Message, e.Details)
}

// NewError builds an Error with optional detail pairs.
func NewError(code Code, msg string, details map[string]string) *Error {
	return &Error{Code: code, Message: msg, Details: details}
}

// NewValidationError reports malformed or missing input fields.
func NewValidationError(msg string, fields map[string]string) *Error {
	return &Error{Code: CodeValidation, Message: msg, Details: fields}
}

// NewInvalidTransition reports a rejected state-machine move, carrying the
// current, attempted and allowed states.
func NewInvalidTransition(current, attempted string, allowed []string) *Error {
	return &Error{
		Code:    CodeInvalidTransition,
		Message: fmt.Sprintf("transition %s → %s is not allowed", current, attempted),
		Details: map[string]string{
			"current":   current,
			"attempted": attempted,
			"allowed":   strings.Join(allowed, ","),
		},
	}
}

// NewSlotConflict reports an interview booking overlap with an existing one.
func NewSlotConflict(conflictingID string) *Error {
	return &Error{
		Code:    CodeSlotConflict,
		Message: "requested slot overlaps an existing interview",
		Details: map[string]string{"conflicting_interview_id": conflictingID},
	}
}

// IsCode reports whether err is an engine Error with the given code.
func IsCode(err error, code Code) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == code
}

// statusStrings converts a status slice for error details.
func statusStrings(in []Status) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = string(s)
	}
	return out
}

func interviewStatusStrings(in []InterviewStatus) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = string(s)
	}
	return out
}
