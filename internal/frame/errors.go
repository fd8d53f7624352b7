package frame

import (
	"errors"
	"fmt"

	"github.com/osdldbt/dbt5-sub001/internal/store"
)

// Error is the single structured failure a frame invocation can return.
//
// Every Error is terminal for the invocation: the frame stops at the first
// failing step and the caller is expected to roll back its transaction.
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Frame is the frame that failed (may be empty for dispatch errors).
	Frame string

	// Step names the frame step that failed (FRAME_STEP_FAILED).
	Step string

	// QueryID is the catalogue statement behind the failing step.
	QueryID store.QueryID

	// Buffer names the output buffer that overflowed (SERIALIZATION_CAPACITY_EXCEEDED).
	Buffer string

	// Message is a human-readable description.
	Message string

	// Err is the underlying cause, if any.
	Err error
}

// ErrorCode categorizes frame errors.
type ErrorCode string

const (
	// ErrCodeUnknownFrame indicates no frame is registered under the name.
	ErrCodeUnknownFrame ErrorCode = "UNKNOWN_FRAME"

	// ErrCodeInvalidArguments indicates wrong arity or argument kind.
	ErrCodeInvalidArguments ErrorCode = "INVALID_ARGUMENTS"

	// ErrCodeUnknownTargetTable indicates data maintenance got an unknown table name.
	ErrCodeUnknownTargetTable ErrorCode = "UNKNOWN_TARGET_TABLE"

	// ErrCodeStepFailed indicates a read found nothing or a statement failed.
	ErrCodeStepFailed ErrorCode = "FRAME_STEP_FAILED"

	// ErrCodeCapacityExceeded indicates an output buffer would overflow.
	ErrCodeCapacityExceeded ErrorCode = "SERIALIZATION_CAPACITY_EXCEEDED"

	// ErrCodeMalformedInput indicates a value didn't match its expected pattern.
	ErrCodeMalformedInput ErrorCode = "MALFORMED_INPUT"
)

// Error implements the error interface.
func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if e.Frame != "" {
		msg = fmt.Sprintf("%s (frame=%s", msg, e.Frame)
		if e.QueryID != "" {
			msg = fmt.Sprintf("%s, query=%s", msg, e.QueryID)
		}
		msg += ")"
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// CodeOf returns the ErrorCode carried by err, or "" if err is not a frame error.
func CodeOf(err error) ErrorCode {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Code
	}
	return ""
}

// IsUnknownFrame reports whether err is an UNKNOWN_FRAME error.
func IsUnknownFrame(err error) bool { return CodeOf(err) == ErrCodeUnknownFrame }

// IsInvalidArguments reports whether err is an INVALID_ARGUMENTS error.
func IsInvalidArguments(err error) bool { return CodeOf(err) == ErrCodeInvalidArguments }

// IsUnknownTargetTable reports whether err is an UNKNOWN_TARGET_TABLE error.
func IsUnknownTargetTable(err error) bool { return CodeOf(err) == ErrCodeUnknownTargetTable }

// IsStepFailed reports whether err is a FRAME_STEP_FAILED error.
func IsStepFailed(err error) bool { return CodeOf(err) == ErrCodeStepFailed }

// IsCapacityExceeded reports whether err is a SERIALIZATION_CAPACITY_EXCEEDED error.
func IsCapacityExceeded(err error) bool { return CodeOf(err) == ErrCodeCapacityExceeded }

// IsMalformedInput reports whether err is a MALFORMED_INPUT error.
func IsMalformedInput(err error) bool { return CodeOf(err) == ErrCodeMalformedInput }

// NewUnknownFrameError creates an Error for an unregistered frame name.
func NewUnknownFrameError(name string) *Error {
	return &Error{
		Code:    ErrCodeUnknownFrame,
		Message: fmt.Sprintf("no frame registered as %q", name),
	}
}

// NewInvalidArgumentsError creates an Error for an arity or kind mismatch.
func NewInvalidArgumentsError(frameName, message string) *Error {
	return &Error{
		Code:    ErrCodeInvalidArguments,
		Frame:   frameName,
		Message: message,
	}
}

// newStepError creates a FRAME_STEP_FAILED error for a step's statement.
func newStepError(frameName, step string, id store.QueryID, err error) *Error {
	msg := step + " failed"
	if err == nil {
		msg = step + " returned no rows"
	}
	return &Error{
		Code:    ErrCodeStepFailed,
		Frame:   frameName,
		Step:    step,
		QueryID: id,
		Message: msg,
		Err:     err,
	}
}

func newMalformedInputError(frameName, message string) *Error {
	return &Error{
		Code:    ErrCodeMalformedInput,
		Frame:   frameName,
		Message: message,
	}
}

func newCapacityError(frameName, buffer string, need, capacity int) *Error {
	return &Error{
		Code:    ErrCodeCapacityExceeded,
		Frame:   frameName,
		Buffer:  buffer,
		Message: fmt.Sprintf("%s needs %d bytes, capacity is %d", buffer, need, capacity),
	}
}
