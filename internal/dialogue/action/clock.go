// internal/dialogue/action/clock.go
package action

import (
	"context"
	"time"

	"assistant-engine/internal/dialogue"
)

// NewClockHandler reports the current wall-clock time from now.
func NewClockHandler(now func() time.Time) Handler {
	if now == nil {
		now = time.Now
	}
	return func(ctx context.Context, req Request, state *dialogue.Context) Result {
		return Result{Response: "The current time is " + now().Format("03:04 PM") + "."}
	}
}
