// internal/workers/ai-conversation/process-chat-turn/handler.go
package processchatturn

import (
	"context"
	"encoding/json"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	apperrors "assistant-engine/internal/common/errors"
	"assistant-engine/internal/common/logger"
	"assistant-engine/internal/common/metrics"
	"assistant-engine/internal/common/validation"
	"assistant-engine/internal/conversation"
)

const TaskType = "process-chat-turn"

// ChatService answers one chat message within a session.
type ChatService interface {
	HandleMessage(ctx context.Context, sessionID, message, surface string) (*conversation.Result, error)
}

type Handler struct {
	config    *Config
	chat      ChatService
	validator *validation.Validator
	errors    *apperrors.ErrorHandler
	logger    logger.Logger
}

func NewHandler(config *Config, chat ChatService, log logger.Logger) *Handler {
	log = log.With(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:    config,
		chat:      chat,
		validator: validation.MustValidator(validation.ChatTurnJobSchema),
		errors:    apperrors.NewErrorHandler(log),
		logger:    log,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	start := time.Now()
	metrics.WorkerJobsActive.WithLabelValues(TaskType).Inc()
	defer func() {
		metrics.WorkerJobsActive.WithLabelValues(TaskType).Dec()
		metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(start).Seconds())
	}()

	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	input, err := h.decodeInput(job.Variables)
	if err != nil {
		h.failJob(ctx, client, job, err)
		return
	}

	output, err := h.Execute(ctx, input)
	if err != nil {
		h.failJob(ctx, client, job, err)
		return
	}

	h.completeJob(client, job, output)
}

// decodeInput validates the job variables against the job schema before
// reading them.
func (h *Handler) decodeInput(variables string) (*Input, error) {
	res, err := h.validator.ValidateJSON([]byte(variables))
	if err != nil {
		return nil, apperrors.NewInvalidChatRequestError("job variables are not valid JSON")
	}
	if !res.Valid {
		return nil, apperrors.NewInvalidChatRequestError(res.Summary())
	}

	var input Input
	if err := json.Unmarshal([]byte(variables), &input); err != nil {
		return nil, apperrors.NewInvalidChatRequestError(err.Error())
	}
	return &input, nil
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	result, err := h.chat.HandleMessage(ctx, input.SessionID, input.Message, conversation.SurfaceZeebe)
	if err != nil {
		return nil, err
	}

	reply := result.Reply
	return &Output{
		SessionID:   result.SessionID,
		Intent:      reply.Intent,
		Response:    reply.Response,
		URL:         reply.URL,
		Lang:        reply.Lang,
		Confidence:  reply.Confidence,
		Suggestions: reply.Suggestions,
		State:       string(result.State),
	}, nil
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err.Error(),
		})
		return
	}

	if _, err := cmd.Send(context.Background()); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err.Error(),
		})
		return
	}
	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
}

func (h *Handler) failJob(ctx context.Context, client worker.JobClient, job entities.Job, err error) {
	code := apperrors.AsStandard(err).Code
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(code)).Inc()
	h.errors.HandleJobError(context.WithoutCancel(ctx), client, job, err)
}
