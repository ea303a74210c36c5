// Package errors provides standardized error handling for the chat surfaces
// and for BPMN workflow integration.
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeInvalidChatRequest   ErrorCode = "INVALID_CHAT_REQUEST"
	ErrCodeSessionLoadFailed    ErrorCode = "SESSION_LOAD_FAILED"
	ErrCodeSessionSaveFailed    ErrorCode = "SESSION_SAVE_FAILED"
	ErrCodeSessionBusy          ErrorCode = "SESSION_BUSY"
	ErrCodeAuditWriteFailed     ErrorCode = "AUDIT_WRITE_FAILED"
	ErrCodeLookupTimeout        ErrorCode = "LOOKUP_TIMEOUT"
	ErrCodeLookupFailed         ErrorCode = "LOOKUP_FAILED"
	ErrCodeTurnProcessingFailed ErrorCode = "TURN_PROCESSING_FAILED"
	ErrCodeInternal             ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	cause     error
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

func (e *StandardError) Unwrap() error {
	return e.cause
}

// ==========================
// 2. BPMN Error Integration
// ==========================

// BPMNError represents an error that can be thrown to the Camunda workflow engine.
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

// ToErrorVariables returns a map suitable for setting Camunda job fail variables.
func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}
	for k, v := range e.ErrorVariables {
		vars[k] = v
	}
	return vars
}

// ==========================
// 3. Error Constructors
// ==========================

func newError(code ErrorCode, message string, retryable bool, cause error) *StandardError {
	e := &StandardError{
		Code:      code,
		Message:   message,
		Retryable: retryable,
		Timestamp: time.Now().UTC(),
		cause:     cause,
	}
	if cause != nil {
		e.Details = cause.Error()
	}
	return e
}

// NewInvalidChatRequestError reports a payload that failed validation.
func NewInvalidChatRequestError(details string) *StandardError {
	e := newError(ErrCodeInvalidChatRequest, "Invalid chat request", false, nil)
	e.Details = details
	return e
}

func NewSessionLoadFailedError(sessionID string, err error) *StandardError {
	e := newError(ErrCodeSessionLoadFailed, "Failed to load conversation session", true, err)
	e.Metadata = map[string]interface{}{"sessionId": sessionID}
	return e
}

func NewSessionSaveFailedError(sessionID string, err error) *StandardError {
	e := newError(ErrCodeSessionSaveFailed, "Failed to save conversation session", true, err)
	e.Metadata = map[string]interface{}{"sessionId": sessionID}
	return e
}

// NewSessionBusyError is returned when another turn holds the session.
func NewSessionBusyError(sessionID string) *StandardError {
	e := newError(ErrCodeSessionBusy, "Another message for this session is still being processed", true, nil)
	e.Metadata = map[string]interface{}{"sessionId": sessionID}
	return e
}

func NewAuditWriteFailedError(sink string, err error) *StandardError {
	e := newError(ErrCodeAuditWriteFailed, "Failed to record conversation turn", true, err)
	e.Metadata = map[string]interface{}{"sink": sink}
	return e
}

func NewLookupTimeoutError(err error) *StandardError {
	return newError(ErrCodeLookupTimeout, "Reference lookup timed out", true, err)
}

func NewLookupFailedError(err error) *StandardError {
	return newError(ErrCodeLookupFailed, "Reference lookup failed", true, err)
}

func NewTurnProcessingFailedError(err error) *StandardError {
	return newError(ErrCodeTurnProcessingFailed, "Failed to process chat turn", true, err)
}

// ==========================
// 4. Error Conversion to BPMN
// ==========================

// GetRetryCount returns the recommended retry count for a code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeSessionLoadFailed,
		ErrCodeSessionSaveFailed,
		ErrCodeTurnProcessingFailed:
		return 3

	case ErrCodeSessionBusy,
		ErrCodeLookupTimeout,
		ErrCodeLookupFailed:
		return 2

	case ErrCodeAuditWriteFailed:
		return 1

	default:
		return 0 // validation errors: no retry
	}
}

// ConvertToBPMNError converts a StandardError to a BPMNError for Camunda.
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

// AsStandard returns the StandardError in err's chain, wrapping anything
// else as INTERNAL_ERROR.
func AsStandard(err error) *StandardError {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr
	}
	return newError(ErrCodeInternal, "Unexpected error", false, err)
}

// HasCode reports whether err carries the given code.
func HasCode(err error, code ErrorCode) bool {
	var stdErr *StandardError
	return stderrors.As(err, &stdErr) && stdErr.Code == code
}

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// HTTPStatus maps a code to the status the chat API answers with.
func HTTPStatus(code ErrorCode) int {
	switch code {
	case ErrCodeInvalidChatRequest:
		return http.StatusBadRequest
	case ErrCodeSessionBusy:
		return http.StatusConflict
	case ErrCodeSessionLoadFailed, ErrCodeSessionSaveFailed:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.HasPrefix(codeStr, "SESSION"):
		return "SESSION"
	case strings.HasPrefix(codeStr, "AUDIT"):
		return "AUDIT"
	case strings.HasPrefix(codeStr, "LOOKUP"):
		return "LOOKUP"
	case strings.Contains(codeStr, "INVALID"):
		return "VALIDATION"
	default:
		return "INTERNAL"
	}
}
