// internal/dialogue/action/reference.go
package action

import (
	"context"
	"errors"
	"strings"
	"time"

	"assistant-engine/internal/common/logger"
	"assistant-engine/internal/dialogue"
	"assistant-engine/internal/dialogue/intent"
	"assistant-engine/internal/dialogue/text"
	"assistant-engine/internal/lookup"
)

const (
	msgLookupNeedTopic = "Please tell me a topic for Wikipedia."
	msgLookupNotFound  = "Sorry, I couldn't find that topic on Wikipedia."
	msgLookupFailed    = "Wikipedia lookup failed. Please try again."
)

// LookupObserver is notified of every lookup outcome.
type LookupObserver func(outcome string)

// ReferenceConfig configures the reference lookup action.
type ReferenceConfig struct {
	Timeout  time.Duration
	Observer LookupObserver
}

// NewReferenceHandler builds the wikipedia action around a summary source.
// Every lookup runs under its own timeout and every failure becomes text.
func NewReferenceHandler(source lookup.Summarizer, config ReferenceConfig, log logger.Logger) Handler {
	log = log.With(map[string]interface{}{"action": string(intent.ActionWikipedia)})
	observe := config.Observer
	if observe == nil {
		observe = func(string) {}
	}

	return func(ctx context.Context, req Request, state *dialogue.Context) Result {
		q := intent.StripFirstKeyword(req.Message, req.Intent.Keywords)
		if q == "" {
			q = state.LastQuery
		}
		if q == "" {
			return Result{Response: msgLookupNeedTopic}
		}
		state.LastQuery = q

		locale := lookup.DefaultLocale
		if req.Language == text.Hindi {
			locale = lookup.LocaleHindi
		}

		summary, err := summarize(ctx, source, config.Timeout, q, locale)
		if errors.Is(err, lookup.ErrNotFound) && locale != lookup.DefaultLocale {
			summary, err = summarize(ctx, source, config.Timeout, q, lookup.DefaultLocale)
		}

		var amb *lookup.AmbiguousError
		switch {
		case err == nil:
			observe("found")
			return Result{Response: summary, Suggestions: []string{"Search on Google " + q, "Search on YouTube " + q}}
		case errors.As(err, &amb):
			observe("ambiguous")
			return Result{Response: ambiguousMessage(amb.Options), Suggestions: prefixed("Wikipedia ", amb.Options)}
		case errors.Is(err, lookup.ErrNotFound):
			observe("not_found")
			return Result{Response: msgLookupNotFound, Suggestions: []string{"Search on Google " + q}}
		default:
			observe("failed")
			logger.FromContext(ctx, log).Warn("lookup failed", map[string]interface{}{
				"query":  q,
				"locale": string(locale),
				"error":  err.Error(),
			})
			return Result{Response: msgLookupFailed}
		}
	}
}

func summarize(ctx context.Context, source lookup.Summarizer, timeout time.Duration, q string, locale lookup.Locale) (string, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return source.Summary(ctx, q, locale)
}

func ambiguousMessage(options []string) string {
	if len(options) > lookup.MaxAmbiguousOptions {
		options = options[:lookup.MaxAmbiguousOptions]
	}
	if len(options) == 0 {
		return "That topic is ambiguous. Try a more specific name."
	}
	return "That topic is ambiguous. Try: " + strings.Join(options, ", ") + "."
}

func prefixed(prefix string, items []string) []string {
	if len(items) > lookup.MaxAmbiguousOptions {
		items = items[:lookup.MaxAmbiguousOptions]
	}
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, prefix+it)
	}
	return out
}
