// Package errors provides standardized error handling for the cab trip
// workers, including conversion to BPMN errors for the workflow engine.
package errors

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	// Location resolution
	ErrCodeConfiguration          ErrorCode = "CONFIGURATION_ERROR"
	ErrCodeNoResults              ErrorCode = "NO_RESULTS"
	ErrCodeAmbiguousResults       ErrorCode = "AMBIGUOUS_RESULTS"
	ErrCodeDetailResolutionFailed ErrorCode = "DETAIL_RESOLUTION_FAILED"
	ErrCodeNoSelection            ErrorCode = "NO_SELECTION"
	ErrCodeTooManyAttempts        ErrorCode = "TOO_MANY_ATTEMPTS"
	ErrCodeUpstreamTransient      ErrorCode = "UPSTREAM_TRANSIENT"

	// Booking pipeline
	ErrCodeSearchAPIError   ErrorCode = "SEARCH_API_ERROR"
	ErrCodeSearchAPITimeout ErrorCode = "SEARCH_API_TIMEOUT"
	ErrCodeHoldAPIError     ErrorCode = "HOLD_API_ERROR"
	ErrCodeHoldAPITimeout   ErrorCode = "HOLD_API_TIMEOUT"
	ErrCodeInvalidDateTime  ErrorCode = "INVALID_DATETIME"
	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	ErrCodeSessionNotFound  ErrorCode = "SESSION_NOT_FOUND"

	// Delivery
	ErrCodeNotificationSendFailed ErrorCode = "NOTIFICATION_SEND_FAILED"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// CodeOf extracts the ErrorCode from any error. Unknown errors map to
// UPSTREAM_TRANSIENT because that is the only unclassified failure mode
// the pipeline produces.
func CodeOf(err error) ErrorCode {
	var stdErr *StandardError
	if errors.As(err, &stdErr) {
		return stdErr.Code
	}
	return ErrCodeUpstreamTransient
}

// IsConfiguration reports whether err is the fatal missing-credential error.
// This is the only discovery-time failure that must abort a request instead
// of degrading to a user-facing outcome.
func IsConfiguration(err error) bool {
	return CodeOf(err) == ErrCodeConfiguration
}

// ==========================
// 2. BPMN Error Integration
// ==========================

// BPMNError represents an error that can be thrown to the workflow engine.
type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

// ToErrorVariables returns a map suitable for setting job fail variables.
func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}

	if e.ErrorVariables != nil {
		for k, v := range e.ErrorVariables {
			vars[k] = v
		}
	}

	return vars
}

// ==========================
// 3. Error Constructors
// ==========================

// NewConfigurationError creates the fatal missing-credential error.
// Unlike every other failure in the resolution engine this one propagates.
func NewConfigurationError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeConfiguration,
		Message:   "Location service is not configured. Please contact administrator.",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewNoResultsError creates the zero-candidate outcome error. Not a system
// fault: a transient upstream failure during discovery degrades to this too.
func NewNoResultsError(role, query string) *StandardError {
	return &StandardError{
		Code:      ErrCodeNoResults,
		Message:   fmt.Sprintf("No locations found for %s: '%s'. Please try a more specific location name.", role, query),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewDetailResolutionError creates the detail-lookup-returned-nothing error.
// The underlying cause is logged where it happens; it never reaches the user.
func NewDetailResolutionError(role string) *StandardError {
	return &StandardError{
		Code:      ErrCodeDetailResolutionFailed,
		Message:   fmt.Sprintf("Failed to resolve %s location for the selected place. Please try a different search.", role),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewNoSelectionError creates the human-declined-to-choose error.
func NewNoSelectionError(role string) *StandardError {
	return &StandardError{
		Code:      ErrCodeNoSelection,
		Message:   fmt.Sprintf("No option was selected for the %s location.", role),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewTooManyAttemptsError creates the refinement-bound-exceeded error.
func NewTooManyAttemptsError(role string, attempts int) *StandardError {
	return &StandardError{
		Code:      ErrCodeTooManyAttempts,
		Message:   fmt.Sprintf("Could not resolve the %s location after %d attempts. Please start over with a more specific query.", role, attempts),
		Details:   fmt.Sprintf("attempts: %d", attempts),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewUpstreamTransientError wraps a timeout/transport/status fault from an
// upstream API. Internal only: the degrade policies translate it before it
// can reach a user-facing message.
func NewUpstreamTransientError(service string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeUpstreamTransient,
		Message:   fmt.Sprintf("Upstream service '%s' error", service),
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewSearchAPIError creates a generic search backend error.
func NewSearchAPIError() *StandardError {
	return &StandardError{
		Code:      ErrCodeSearchAPIError,
		Message:   "Unable to search for cabs at the moment. The cab service encountered an issue. Please try again with a different date/time or route.",
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewSearchAPITimeoutError creates a search backend timeout error.
func NewSearchAPITimeoutError() *StandardError {
	return &StandardError{
		Code:      ErrCodeSearchAPITimeout,
		Message:   "The cab search service is taking too long to respond. Please try again in a moment.",
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewHoldAPIError creates a generic hold backend error.
func NewHoldAPIError() *StandardError {
	return &StandardError{
		Code:      ErrCodeHoldAPIError,
		Message:   "Unable to reserve this cab at the moment. The cab may no longer be available. Please search again and try a different option.",
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewHoldAPITimeoutError creates a hold backend timeout error.
func NewHoldAPITimeoutError() *StandardError {
	return &StandardError{
		Code:      ErrCodeHoldAPITimeout,
		Message:   "The cab reservation service is taking too long to respond. Please try again in a moment.",
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidDateTimeError creates a pickup date/time parsing error.
func NewInvalidDateTimeError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidDateTime,
		Message:   "Invalid pickup date or time.",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewValidationError creates a non-retryable input validation error.
func NewValidationError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeValidationFailed,
		Message:   "Request validation failed",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewSessionNotFoundError creates an unknown/expired search session error.
func NewSessionNotFoundError(searchID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeSessionNotFound,
		Message:   "This search has expired. Please search again before reserving a cab.",
		Details:   fmt.Sprintf("searchId: %s", searchID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewNotificationSendFailedError creates a retryable delivery error.
func NewNotificationSendFailedError(channel string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeNotificationSendFailed,
		Message:   "Booking notification delivery failed",
		Details:   fmt.Sprintf("channel: %s, error: %s", channel, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 4. Error Conversion to BPMN
// ==========================

// GetRetryCount returns the recommended retry count per error code.
// The resolution and booking pipeline never retries automatically: a timeout
// degrades to the same outcome as any other upstream fault, and retry is the
// caller's responsibility. Notification delivery is the one exception.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeNotificationSendFailed:
		return 3
	default:
		return 0
	}
}

// ConvertToBPMNError converts a StandardError to a BPMNError. BPMN codes are
// identical to the internal codes.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	return &BPMNError{
		Code:      string(stdErr.Code),
		Message:   stdErr.Message,
		Details:   stdErr.Details,
		Retryable: stdErr.Retryable,
		Retries:   retries,
		ErrorVariables: map[string]interface{}{
			"originalErrorCode": string(stdErr.Code),
			"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
		},
	}
}

// ==========================
// 5. Utility Functions
// ==========================

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case code == ErrCodeConfiguration:
		return "CONFIGURATION"
	case code == ErrCodeNoResults || code == ErrCodeAmbiguousResults ||
		code == ErrCodeDetailResolutionFailed || code == ErrCodeNoSelection ||
		code == ErrCodeTooManyAttempts:
		return "RESOLUTION"
	case strings.Contains(codeStr, "SEARCH_API") || strings.Contains(codeStr, "HOLD_API"):
		return "BOOKING"
	case strings.Contains(codeStr, "VALIDATION") || strings.Contains(codeStr, "DATETIME"):
		return "VALIDATION"
	case strings.Contains(codeStr, "NOTIFICATION"):
		return "NOTIFICATION"
	default:
		return "OTHER"
	}
}
