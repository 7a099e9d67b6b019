// internal/pkg/errs/errors.go
package errs

import (
	"errors"
	"fmt"
)

// ErrPaymentDismissed is returned when the customer closes the payment
// window without paying. It is a user-initiated cancellation, not a failure.
var ErrPaymentDismissed = errors.New("payment dismissed by customer")

// ErrGatewayLoad is returned when the payment gateway client could not be
// loaded. The attempt is aborted but may be retried.
var ErrGatewayLoad = errors.New("payment gateway failed to load")

// ValidationError represents malformed form or identifier input. It is
// resolved locally and must never trigger a network call.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed for %s: %s", e.Field, e.Reason)
}

// NewValidation creates a ValidationError for the given field
func NewValidation(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// IsValidation reports whether err is a ValidationError
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// NetworkError represents an unreachable or timed-out remote dependency.
// The current attempt is aborted; cart and form state are preserved.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error during %s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// IsNetwork reports whether err is a NetworkError
func IsNetwork(err error) bool {
	var ne *NetworkError
	return errors.As(err, &ne)
}

// VerificationError represents a server-side payment verification rejection.
// The attempt is fatal but the message shown to the customer stays generic;
// the mismatch reason is logged, never surfaced.
type VerificationError struct {
	OrderNumber string
	Reason      string
}

func (e *VerificationError) Error() string {
	return fmt.Sprintf("payment verification failed for %s", e.OrderNumber)
}

// IsVerification reports whether err is a VerificationError
func IsVerification(err error) bool {
	var ve *VerificationError
	return errors.As(err, &ve)
}
