// Package domain defines the core domain models for padbreak.
package domain

import (
	"errors"
	"fmt"
)

// DomainError represents a domain error with a structured error code.
// Codes follow the format PB-<AREA>-<NNNN>.
type DomainError struct {
	Code    string // Error code (e.g., "PB-CFG-4001")
	Message string // Human-readable message
	Details string // Optional additional details
	Cause   error  // Underlying error (if any)
}

// Error implements the error interface. The cause is appended so a CLI
// user sees the underlying I/O or decode failure.
func (e *DomainError) Error() string {
	msg := fmt.Sprintf("[%s] %s", e.Code, e.Message)
	if e.Details != "" {
		msg += ": " + e.Details
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
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
// Configuration Errors (CFG)
// ============================================================================

var (
	// ErrEmptyAllowedSet indicates no plaintext byte is allowed, so every
	// crib hypothesis is disproved.
	ErrEmptyAllowedSet = NewDomainError("PB-CFG-4001", "allowed character set is empty")

	// ErrEmptyDictionary indicates there are no cribs to drag.
	ErrEmptyDictionary = NewDomainError("PB-CFG-4002", "crib dictionary is empty")

	// ErrInvalidConfig indicates a configuration value failed validation.
	ErrInvalidConfig = NewDomainError("PB-CFG-4000", "invalid configuration")
)

// ============================================================================
// Batch Errors (BAT)
// ============================================================================

var (
	// ErrEmptyBatch indicates a batch without messages.
	ErrEmptyBatch = NewDomainError("PB-BAT-4001", "batch has no messages")

	// ErrShortMessage indicates a message shorter than a crib; it cannot
	// vote for that crib.
	ErrShortMessage = NewDomainError("PB-BAT-4002", "message shorter than crib")

	// ErrSingleMessageBatch indicates a batch with one message, for which
	// every alignment meets the vote threshold without corroboration.
	ErrSingleMessageBatch = NewDomainError("PB-BAT-4003", "single-message batch is not corroborated")

	// ErrBatchCancelled indicates the batch search was cancelled; history is unchanged.
	ErrBatchCancelled = NewDomainError("PB-BAT-4990", "batch processing cancelled")
)

// ============================================================================
// Input / Storage Errors (IO)
// ============================================================================

var (
	// ErrDecode indicates a ciphertext line could not be decoded.
	ErrDecode = NewDomainError("PB-IO-4001", "cannot decode ciphertext")

	// ErrNoBatches indicates the input yielded no batch files.
	ErrNoBatches = NewDomainError("PB-IO-4041", "no batch files found")

	// ErrRecordNotFound indicates a persisted batch record does not exist.
	ErrRecordNotFound = NewDomainError("PB-IO-4042", "batch record not found")

	// ErrStorage indicates a storage layer error.
	ErrStorage = NewDomainError("PB-IO-5001", "storage error")
)
