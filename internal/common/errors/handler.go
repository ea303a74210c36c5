// internal/common/errors/handler.go
package errors

import (
	"context"
	"encoding/json"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

// Logger is the slice of logger.Logger the handler needs. Declared here so
// this package stays free of internal imports.
type Logger interface {
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

// ErrorHandler turns a failed job into either a retry or a BPMN error the
// process model can catch.
type ErrorHandler struct {
	logger Logger
}

func NewErrorHandler(logger Logger) *ErrorHandler {
	return &ErrorHandler{logger: logger}
}

// HandleJobError fails job with a reduced retry count while the error is
// retryable and retries remain, and throws a BPMN error otherwise.
func (h *ErrorHandler) HandleJobError(ctx context.Context, client worker.JobClient, job entities.Job, err error) {
	stdErr := AsStandard(err)
	bpmnErr := ConvertToBPMNError(stdErr)
	retries := NextRetries(job.Retries, bpmnErr.Retries)

	fields := map[string]interface{}{
		"jobKey":           job.Key,
		"jobType":          job.Type,
		"workflowInstance": job.ProcessInstanceKey,
		"errorCode":        bpmnErr.Code,
		"errorCategory":    GetErrorCategory(stdErr.Code),
		"details":          stdErr.Details,
		"retriesLeft":      retries,
	}
	if sid, ok := stdErr.Metadata["sessionId"]; ok {
		fields["sessionId"] = sid
	}

	vars := variablesJSON(bpmnErr)
	if retries > 0 {
		h.logger.Warn("chat turn job failed, will retry", fields)
		cmd := client.NewFailJobCommand().
			JobKey(job.Key).
			Retries(retries).
			ErrorMessage(bpmnErr.Message)
		if withVars, err := cmd.VariablesFromString(vars); err == nil {
			_, err = withVars.Send(ctx)
			h.logSendFailure(job, err)
			return
		}
		_, err := cmd.Send(ctx)
		h.logSendFailure(job, err)
		return
	}

	h.logger.Error("chat turn job failed, throwing BPMN error", fields)
	cmd := client.NewThrowErrorCommand().
		JobKey(job.Key).
		ErrorCode(bpmnErr.Code).
		ErrorMessage(bpmnErr.Message)
	if withVars, err := cmd.VariablesFromString(vars); err == nil {
		_, err = withVars.Send(ctx)
		h.logSendFailure(job, err)
		return
	}
	_, err = cmd.Send(ctx)
	h.logSendFailure(job, err)
}

// NextRetries is the retry count to report back to the broker. The broker
// decides how many attempts are left; the error policy can only lower it.
func NextRetries(jobRetries int32, policy int) int32 {
	if policy <= 0 || jobRetries <= 1 {
		return 0
	}
	next := jobRetries - 1
	if int(next) > policy {
		next = int32(policy)
	}
	return next
}

func variablesJSON(e *BPMNError) string {
	b, err := json.Marshal(e.ToErrorVariables())
	if err != nil {
		return "{}"
	}
	return string(b)
}

func (h *ErrorHandler) logSendFailure(job entities.Job, err error) {
	if err != nil {
		h.logger.Error("failed to report job failure to broker", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err.Error(),
		})
	}
}
