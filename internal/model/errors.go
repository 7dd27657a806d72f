package model

import (
	"errors"
	"fmt"
)

// ValidationCode identifies which validation rule rejected the input.
type ValidationCode string

const (
	ValidationEmpty    ValidationCode = "empty"
	ValidationTooShort ValidationCode = "too_short"
	ValidationTooLong  ValidationCode = "too_long"
	ValidationLanguage ValidationCode = "language_mismatch"
)

// ValidationError is fatal to the request and user-visible. It is the only
// error that can stop the pipeline before a result is produced, other than
// a detection that times out with no data at all.
type ValidationError struct {
	Code    ValidationCode
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed (%s): %s", e.Code, e.Message)
}

// TransportError marks a network-level or timeout failure talking to the
// reasoning provider. Transport failures are retried; after retries are
// exhausted the owning stage degrades locally.
type TransportError struct {
	Op  string // operation that failed: "detect", "explain", "rewrite"
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("reasoning service transport failure during %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ParseError marks malformed structured output from the reasoning provider.
// Parse failures are never retried; the owning stage degrades locally.
type ParseError struct {
	Op  string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("reasoning service returned malformed output during %s: %v", e.Op, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ErrBudgetExceeded is surfaced to the caller only when detection produced no
// data before the analysis budget ran out. Every later stage degrades instead.
var ErrBudgetExceeded = errors.New("analysis budget exceeded before any fallacy data was produced")

// InvariantError indicates a programming defect (e.g. an out-of-bounds span
// after validation). Never swallowed: log and fail closed.
type InvariantError struct {
	Msg string
}

func (e *InvariantError) Error() string {
	return "internal invariant violation: " + e.Msg
}

// IsTransport reports whether err is (or wraps) a TransportError.
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

// IsParse reports whether err is (or wraps) a ParseError.
func IsParse(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe)
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
