package domain

import (
	"errors"
	"fmt"
)

// DomainError represents a domain error with a structured error code.
type DomainError struct {
	Code    string // Error code (e.g., "NW-LCL-5030")
	Message string // Human-readable message
	Details string // Optional additional details
	Cause   error  // Underlying error (if any)
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Unwrap() support.
func (e *DomainError) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is() support for error comparison.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewDomainError creates a new DomainError with the given code and message.
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// WithDetails returns a copy of the error with additional details.
func (e *DomainError) WithDetails(details string) *DomainError {
	return &DomainError{
		Code:    e.Code,
		Message: e.Message,
		Details: details,
		Cause:   e.Cause,
	}
}

// WithCause returns a copy of the error wrapping the given cause.
func (e *DomainError) WithCause(cause error) *DomainError {
	return &DomainError{
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
		Cause:   cause,
	}
}

// Wrap wraps an error with this domain error as the cause.
// The cause is also rendered into Details so that the message survives
// transports that only carry Error().
func (e *DomainError) Wrap(cause error) *DomainError {
	if cause == nil {
		return e.WithCause(nil)
	}
	return e.WithDetails(fmt.Sprintf("%+v", cause)).WithCause(cause)
}

// IsDomainError checks if an error is a DomainError with the given code.
// If code is empty, it only checks if the error is a DomainError.
func IsDomainError(err error, code string) bool {
	var de *DomainError
	if errors.As(err, &de) {
		if code == "" {
			return true
		}
		return de.Code == code
	}
	return false
}

// GetErrorCode extracts the error code from an error if it's a DomainError.
func GetErrorCode(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

// ============================================================================
// Local Client Errors (LCL)
// Returned by the in-process network client that connects a primary with
// its own workers.
// ============================================================================

var (
	// ErrInternal indicates the resolved handler failed to serve the call.
	// The underlying failure is carried as the cause.
	ErrInternal = NewDomainError("NW-LCL-5000", "internal error")

	// ErrShuttingDown indicates the node is tearing down. Callers must not
	// retry: the client never leaves this state.
	ErrShuttingDown = NewDomainError("NW-LCL-5030", "shutting down")

	// ErrWorkerNotStarted indicates a worker did not register its handler
	// within the discovery budget.
	ErrWorkerNotStarted = NewDomainError("NW-LCL-5040", "worker not started")

	// ErrPrimaryNotStarted indicates the primary did not register its handler
	// within the discovery budget.
	ErrPrimaryNotStarted = NewDomainError("NW-LCL-5041", "primary not started")
)

// NotStartedError is a discovery timeout carrying the identity that was
// looked up. It matches ErrWorkerNotStarted or ErrPrimaryNotStarted with
// errors.Is, depending on the role.
type NotStartedError struct {
	*DomainError
	Identity Identity
}

// Unwrap exposes the embedded DomainError to errors.As.
func (e *NotStartedError) Unwrap() error {
	return e.DomainError
}

// NewWorkerNotStarted returns the discovery timeout for a worker.
func NewWorkerNotStarted(id Identity) *NotStartedError {
	return &NotStartedError{
		DomainError: ErrWorkerNotStarted.WithDetails(id.String()),
		Identity:    id,
	}
}

// NewPrimaryNotStarted returns the discovery timeout for the primary.
func NewPrimaryNotStarted(id Identity) *NotStartedError {
	return &NotStartedError{
		DomainError: ErrPrimaryNotStarted.WithDetails(id.String()),
		Identity:    id,
	}
}

// NotStartedIdentity extracts the identity carried by a discovery timeout.
func NotStartedIdentity(err error) (Identity, bool) {
	var nse *NotStartedError
	if errors.As(err, &nse) {
		return nse.Identity, true
	}
	return Identity{}, false
}

// ============================================================================
// System Errors (SYS)
// ============================================================================

var (
	// ErrStorageError indicates a storage layer error.
	ErrStorageError = NewDomainError("NW-SYS-5001", "storage error")

	// ErrInvalidArgument indicates an invalid argument.
	ErrInvalidArgument = NewDomainError("NW-ARG-1001", "invalid argument")
)
