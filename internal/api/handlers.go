// internal/api/handlers.go
package api

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"assistant-engine/internal/common/database"
	apperrors "assistant-engine/internal/common/errors"
	"assistant-engine/internal/conversation"
	"assistant-engine/internal/dialogue"
)

// ChatRequest is the body of POST /api/chat.
type ChatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id,omitempty"`
}

// ChatResponse is the reply plus the session it was given in.
type ChatResponse struct {
	dialogue.Reply
	SessionID string `json:"session_id"`
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func (s *Server) handleChat(c *gin.Context) {
	raw, err := c.GetRawData()
	if err != nil {
		s.fail(c, apperrors.NewInvalidChatRequestError(err.Error()))
		return
	}

	res, err := s.validator.ValidateJSON(raw)
	if err != nil {
		s.fail(c, apperrors.NewInvalidChatRequestError("body is not valid JSON"))
		return
	}
	if !res.Valid {
		s.fail(c, apperrors.NewInvalidChatRequestError(res.Summary()))
		return
	}

	var req ChatRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		s.fail(c, apperrors.NewInvalidChatRequestError(err.Error()))
		return
	}

	result, err := s.chat.HandleMessage(c.Request.Context(), req.SessionID, req.Message, conversation.SurfaceHTTP)
	if err != nil {
		s.fail(c, err)
		return
	}

	c.Set("session_id", result.SessionID)
	c.JSON(http.StatusOK, ChatResponse{Reply: result.Reply, SessionID: result.SessionID})
}

func (s *Server) fail(c *gin.Context, err error) {
	stdErr := apperrors.AsStandard(err)
	status := apperrors.HTTPStatus(stdErr.Code)

	body := errorResponse{Error: stdErr.Message, Code: string(stdErr.Code)}
	if stdErr.Code == apperrors.ErrCodeInvalidChatRequest {
		body.Error = stdErr.Details
	}
	if status >= http.StatusInternalServerError {
		s.logger.Error("chat request failed", map[string]interface{}{
			"error_code": string(stdErr.Code),
			"error":      err.Error(),
			"details":    stdErr.Details,
		})
	}
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, body)
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) ready(c *gin.Context) {
	failures := database.CheckAll(c.Request.Context(), readinessTimeout, s.checkers...)
	if len(failures) == 0 {
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
		return
	}

	details := make(map[string]string, len(failures))
	for name, err := range failures {
		details[name] = err.Error()
	}
	c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "failures": details})
}
