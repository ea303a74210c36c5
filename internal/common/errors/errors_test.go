// internal/common/errors/errors_test.go
package errors

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstructors(t *testing.T) {
	cause := stderrors.New("dial tcp: connection refused")

	tests := []struct {
		name      string
		err       *StandardError
		code      ErrorCode
		retryable bool
		status    int
	}{
		{"invalid request", NewInvalidChatRequestError("message: too long"), ErrCodeInvalidChatRequest, false, http.StatusBadRequest},
		{"session load", NewSessionLoadFailedError("s1", cause), ErrCodeSessionLoadFailed, true, http.StatusServiceUnavailable},
		{"session save", NewSessionSaveFailedError("s1", cause), ErrCodeSessionSaveFailed, true, http.StatusServiceUnavailable},
		{"session busy", NewSessionBusyError("s1"), ErrCodeSessionBusy, true, http.StatusConflict},
		{"audit", NewAuditWriteFailedError("postgres", cause), ErrCodeAuditWriteFailed, true, http.StatusInternalServerError},
		{"lookup timeout", NewLookupTimeoutError(context.DeadlineExceeded), ErrCodeLookupTimeout, true, http.StatusInternalServerError},
		{"lookup failed", NewLookupFailedError(cause), ErrCodeLookupFailed, true, http.StatusInternalServerError},
		{"turn", NewTurnProcessingFailedError(cause), ErrCodeTurnProcessingFailed, true, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, tt.err.Code)
			assert.Equal(t, tt.retryable, tt.err.Retryable)
			assert.Equal(t, tt.status, HTTPStatus(tt.err.Code))
			assert.False(t, tt.err.Timestamp.IsZero())
			assert.Contains(t, tt.err.Error(), string(tt.code))
		})
	}
}

func TestStandardError_UnwrapsCause(t *testing.T) {
	err := NewLookupTimeoutError(context.DeadlineExceeded)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, context.DeadlineExceeded.Error(), err.Details)
}

func TestAsStandard(t *testing.T) {
	busy := NewSessionBusyError("abc")
	wrapped := fmt.Errorf("handling turn: %w", busy)

	assert.Same(t, busy, AsStandard(wrapped))
	assert.True(t, HasCode(wrapped, ErrCodeSessionBusy))
	assert.False(t, HasCode(wrapped, ErrCodeSessionLoadFailed))

	other := AsStandard(stderrors.New("boom"))
	assert.Equal(t, ErrCodeInternal, other.Code)
	assert.Equal(t, "boom", other.Details)
	assert.False(t, other.Retryable)
}

func TestConvertToBPMNError(t *testing.T) {
	bpmn := ConvertToBPMNError(NewSessionLoadFailedError("s1", stderrors.New("redis down")))
	assert.Equal(t, "SESSION_LOAD_FAILED", bpmn.Code)
	assert.Equal(t, 3, bpmn.Retries)
	assert.True(t, bpmn.Retryable)

	vars := bpmn.ToErrorVariables()
	assert.Equal(t, "SESSION_LOAD_FAILED", vars["errorCode"])
	assert.Equal(t, "SESSION_LOAD_FAILED", vars["originalErrorCode"])
	require.Contains(t, vars, "timestamp")

	invalid := ConvertToBPMNError(NewInvalidChatRequestError("empty"))
	assert.Equal(t, 0, invalid.Retries)
	assert.False(t, IsRetryableErrorCode(ErrCodeInvalidChatRequest))
}

func TestGetErrorCategory(t *testing.T) {
	assert.Equal(t, "SESSION", GetErrorCategory(ErrCodeSessionBusy))
	assert.Equal(t, "AUDIT", GetErrorCategory(ErrCodeAuditWriteFailed))
	assert.Equal(t, "LOOKUP", GetErrorCategory(ErrCodeLookupTimeout))
	assert.Equal(t, "VALIDATION", GetErrorCategory(ErrCodeInvalidChatRequest))
	assert.Equal(t, "INTERNAL", GetErrorCategory(ErrCodeTurnProcessingFailed))
}

func TestNextRetries(t *testing.T) {
	tests := []struct {
		name       string
		jobRetries int32
		policy     int
		expected   int32
	}{
		{"non retryable", 3, 0, 0},
		{"last attempt", 1, 3, 0},
		{"broker has fewer than policy", 3, 5, 2},
		{"policy caps broker", 10, 2, 2},
		{"equal", 4, 3, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NextRetries(tt.jobRetries, tt.policy))
		})
	}
}

func TestVariablesJSON(t *testing.T) {
	vars := variablesJSON(ConvertToBPMNError(NewSessionBusyError("s1")))
	assert.Contains(t, vars, `"errorCode":"SESSION_BUSY"`)
	assert.Contains(t, vars, `"retryable":true`)
}
