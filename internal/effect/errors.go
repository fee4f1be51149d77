package effect

import (
	"errors"
	"fmt"
)

// ProtocolError represents a failure reported by an effect instance.
//
// The checker distinguishes three outcome classes, and two of them are
// carried by this type:
//   - IllegalArgument: the expected rejection of an out-of-range value
//   - Closed: a call against an instance outside its open window
//   - Transport: the instance is unreachable or answered outside the
//     defined vocabulary
//
// Anything that is not nil and not IllegalArgument is fatal for an
// evaluation run.
type ProtocolError struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// Instance names the effect instance, when known.
	Instance string
}

// ErrorCode categorizes effect errors.
type ErrorCode string

const (
	// CodeIllegalArgument indicates the effect rejected an out-of-range
	// parameter value. This is the only non-fatal failure code.
	CodeIllegalArgument ErrorCode = "ILLEGAL_ARGUMENT"

	// CodeClosed indicates a call against an effect that is not open.
	CodeClosed ErrorCode = "CLOSED"

	// CodeTransport indicates the effect is unreachable or misbehaving
	// outside the success/rejection vocabulary.
	CodeTransport ErrorCode = "TRANSPORT"
)

// Error implements the error interface.
func (e *ProtocolError) Error() string {
	if e.Instance != "" {
		return fmt.Sprintf("%s: %s (instance=%s)", e.Code, e.Message, e.Instance)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsIllegalArgument returns true if the error is an illegal-argument
// rejection. Uses errors.As to handle wrapped errors.
func IsIllegalArgument(err error) bool {
	var pe *ProtocolError
	if errors.As(err, &pe) {
		return pe.Code == CodeIllegalArgument
	}
	return false
}

// IsClosed returns true if the error is a closed-instance error.
// Uses errors.As to handle wrapped errors.
func IsClosed(err error) bool {
	var pe *ProtocolError
	if errors.As(err, &pe) {
		return pe.Code == CodeClosed
	}
	return false
}

// NewIllegalArgument creates the rejection error for an out-of-range value.
func NewIllegalArgument(instance, message string) *ProtocolError {
	return &ProtocolError{
		Code:     CodeIllegalArgument,
		Message:  message,
		Instance: instance,
	}
}

// NewClosed creates the error for a call against a closed instance.
func NewClosed(instance string) *ProtocolError {
	return &ProtocolError{
		Code:     CodeClosed,
		Message:  "effect instance is not open",
		Instance: instance,
	}
}

// NewTransport creates a transport-class error.
func NewTransport(instance, message string) *ProtocolError {
	return &ProtocolError{
		Code:     CodeTransport,
		Message:  message,
		Instance: instance,
	}
}
