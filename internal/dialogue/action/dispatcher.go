// internal/dialogue/action/dispatcher.go
package action

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"assistant-engine/internal/common/logger"
	"assistant-engine/internal/dialogue"
	"assistant-engine/internal/dialogue/intent"
	"assistant-engine/internal/dialogue/text"
)

var (
	ErrActionUnavailable = errors.New("ACTION_UNAVAILABLE")
	ErrActionFailed      = errors.New("ACTION_FAILED")
)

// Request is everything a handler gets to see about a turn.
type Request struct {
	Message  string
	Intent   intent.Definition
	Language text.Language
	// Continuation is set when the intent was carried over from the previous
	// turn rather than matched from keywords in this message.
	Continuation bool
}

// Result is what a handler produces.
type Result struct {
	Response    string
	URL         string
	Suggestions []string
}

// Handler runs one action. Handlers must not return errors; failures are
// reported as text in the Result. state is the caller's session context and
// may be mutated.
type Handler func(ctx context.Context, req Request, state *dialogue.Context) Result

// Dispatcher maps action identifiers to handlers.
type Dispatcher struct {
	mu       sync.RWMutex
	handlers map[intent.ActionID]Handler
	logger   logger.Logger
}

func NewDispatcher(log logger.Logger) *Dispatcher {
	return &Dispatcher{
		handlers: make(map[intent.ActionID]Handler),
		logger: log.With(map[string]interface{}{
			"component": "dispatcher",
		}),
	}
}

// Register binds a handler to an action identifier, replacing any previous one.
func (d *Dispatcher) Register(id intent.ActionID, h Handler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[id] = h
}

// Has reports whether a handler is registered for id.
func (d *Dispatcher) Has(id intent.ActionID) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	_, ok := d.handlers[id]
	return ok
}

// Dispatch runs the handler for the request's intent. It always returns a
// usable Result: an unregistered action yields ErrActionUnavailable with a
// "temporarily unavailable" reply, and a panicking handler yields
// ErrActionFailed with an apology.
func (d *Dispatcher) Dispatch(ctx context.Context, req Request, state *dialogue.Context) (res Result, err error) {
	id, ok := req.Intent.ActionOf()
	if !ok {
		return unavailableResult(), fmt.Errorf("%w: intent %q declares no action", ErrActionUnavailable, req.Intent.Name)
	}

	d.mu.RLock()
	h, ok := d.handlers[id]
	d.mu.RUnlock()
	if !ok {
		logger.FromContext(ctx, d.logger).Warn("no handler registered", map[string]interface{}{
			"action": string(id),
			"intent": req.Intent.Name,
		})
		return unavailableResult(), fmt.Errorf("%w: %s", ErrActionUnavailable, id)
	}

	defer func() {
		if r := recover(); r != nil {
			logger.FromContext(ctx, d.logger).Error("action handler panicked", map[string]interface{}{
				"action": string(id),
				"panic":  fmt.Sprint(r),
			})
			res = Result{Response: "Sorry, something went wrong while doing that. Please try again."}
			err = fmt.Errorf("%w: %s: %v", ErrActionFailed, id, r)
		}
	}()

	return h(ctx, req, state), nil
}

func unavailableResult() Result {
	return Result{Response: "Sorry, that feature is temporarily unavailable. Please try something else."}
}
