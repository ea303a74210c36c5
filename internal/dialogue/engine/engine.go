// internal/dialogue/engine/engine.go
package engine

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"assistant-engine/internal/common/logger"
	"assistant-engine/internal/dialogue"
	"assistant-engine/internal/dialogue/action"
	"assistant-engine/internal/dialogue/intent"
	"assistant-engine/internal/dialogue/text"
)

// State is the branch a turn took through the engine.
type State string

const (
	StateNoMatch             State = "no_match"
	StateMatchedWithAction   State = "matched_with_action"
	StateMatchedWithRedirect State = "matched_with_redirect"
	StateMatchedTemplateOnly State = "matched_template_only"
	StateContextFallback     State = "context_fallback"
)

const (
	ConfidenceRedirect    = 0.9
	ConfidenceTemplate    = 0.85
	ConfidenceUnavailable = 0.6
	ConfidenceFallback    = 0.6
	ConfidenceUnknown     = 0.5

	actionConfidenceBase = 0.7
	actionConfidenceStep = 0.05
	actionConfidenceCap  = 0.95

	politePrefixEnglish = "I'm sorry you're feeling that way. "
	politePrefixHindi   = "मुझे खेद है कि आप ऐसा महसूस कर रहे हैं। "

	unknownResponse  = "I didn't understand. Can you try again?"
	internalResponse = "Sorry, something went wrong. Please try again."
)

// GenericSuggestions are offered when the engine has nothing better.
var GenericSuggestions = []string{"help", "play lofi beats", "weather Delhi", "wikipedia Alan Turing"}

// Outcome is a reply together with the branch that produced it.
type Outcome struct {
	Reply dialogue.Reply
	State State
}

// Observer is told about every finished turn.
type Observer func(outcome Outcome, elapsed time.Duration)

// Option configures an Engine.
type Option func(*Engine)

// WithRandom replaces the source used to pick among response templates.
// pick(n) must return a value in [0, n).
func WithRandom(pick func(n int) int) Option {
	return func(e *Engine) { e.pick = pick }
}

// WithObserver registers a hook run after each turn.
func WithObserver(o Observer) Option {
	return func(e *Engine) { e.observers = append(e.observers, o) }
}

// WithClock replaces the time source used for turn timing.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// Engine resolves a message to a reply. It holds no per-session state and
// is safe for concurrent use across sessions.
type Engine struct {
	catalog    *intent.Catalog
	dispatcher *action.Dispatcher
	logger     logger.Logger
	pick       func(n int) int
	now        func() time.Time
	observers  []Observer
}

func New(catalog *intent.Catalog, dispatcher *action.Dispatcher, log logger.Logger, opts ...Option) *Engine {
	e := &Engine{
		catalog:    catalog,
		dispatcher: dispatcher,
		logger:     log.With(map[string]interface{}{"component": "engine"}),
		pick:       rand.IntN,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ProcessTurn answers one message and updates state in place. It never
// fails: every internal problem becomes an apologetic reply.
func (e *Engine) ProcessTurn(ctx context.Context, message string, state *dialogue.Context) dialogue.Reply {
	return e.Run(ctx, message, state).Reply
}

// Run is ProcessTurn that also reports which branch was taken.
func (e *Engine) Run(ctx context.Context, message string, state *dialogue.Context) (out Outcome) {
	start := e.now()
	if state == nil {
		state = &dialogue.Context{}
	}
	lang := text.DetectLanguage(message)

	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("turn panicked", map[string]interface{}{
				"panic": fmt.Sprint(r),
			})
			out = Outcome{
				State: StateNoMatch,
				Reply: dialogue.Reply{
					Intent:      dialogue.UnknownIntent,
					Response:    internalResponse,
					Lang:        lang,
					Confidence:  ConfidenceUnknown,
					Suggestions: genericSuggestions(),
				},
			}
		}
		elapsed := e.now().Sub(start)
		for _, o := range e.observers {
			o(out, elapsed)
		}
	}()

	prefix := politePrefix(text.ClassifySentiment(message), lang)

	if m, ok := e.catalog.Resolve(message); ok {
		def := m.Intent
		state.LastIntent = def.Name

		switch eff := def.Effect.(type) {
		case intent.Dispatch:
			return e.dispatch(ctx, action.Request{
				Message:  message,
				Intent:   def,
				Language: lang,
			}, state, prefix, actionConfidence(def), StateMatchedWithAction)

		case intent.Redirect:
			return Outcome{
				State: StateMatchedWithRedirect,
				Reply: dialogue.Reply{
					Intent:     def.Name,
					Response:   prefix + e.choose(eff.Responses, "Opening..."),
					URL:        eff.URL,
					Lang:       lang,
					Confidence: ConfidenceRedirect,
				},
			}

		case intent.TemplateOnly:
			return Outcome{
				State: StateMatchedTemplateOnly,
				Reply: dialogue.Reply{
					Intent:     def.Name,
					Response:   prefix + e.choose(eff.Responses, "Okay."),
					Lang:       lang,
					Confidence: ConfidenceTemplate,
				},
			}
		}
	}

	if def, ok := e.continuation(state.LastIntent); ok {
		return e.dispatch(ctx, action.Request{
			Message:      message,
			Intent:       def,
			Language:     lang,
			Continuation: true,
		}, state, prefix, ConfidenceFallback, StateContextFallback)
	}

	return Outcome{
		State: StateNoMatch,
		Reply: dialogue.Reply{
			Intent:      dialogue.UnknownIntent,
			Response:    prefix + unknownResponse,
			Lang:        lang,
			Confidence:  ConfidenceUnknown,
			Suggestions: genericSuggestions(),
		},
	}
}

func (e *Engine) dispatch(ctx context.Context, req action.Request, state *dialogue.Context, prefix string, confidence float64, st State) Outcome {
	res, err := e.dispatcher.Dispatch(ctx, req, state)
	if err != nil {
		e.logger.Warn("action dispatch degraded", map[string]interface{}{
			"intent": req.Intent.Name,
			"error":  err.Error(),
		})
		return Outcome{
			State: st,
			Reply: dialogue.Reply{
				Intent:      req.Intent.Name,
				Response:    prefix + res.Response,
				Lang:        req.Language,
				Confidence:  ConfidenceUnavailable,
				Suggestions: genericSuggestions(),
			},
		}
	}

	return Outcome{
		State: st,
		Reply: dialogue.Reply{
			Intent:      req.Intent.Name,
			Response:    prefix + res.Response,
			URL:         res.URL,
			Lang:        req.Language,
			Confidence:  confidence,
			Suggestions: res.Suggestions,
		},
	}
}

// continuation rebuilds the previous turn's intent without its keywords so
// that the whole message is treated as payload. Only intents whose action
// is still registered qualify.
func (e *Engine) continuation(name string) (intent.Definition, bool) {
	if name == "" {
		return intent.Definition{}, false
	}
	def, ok := e.catalog.Lookup(name)
	if !ok {
		return intent.Definition{}, false
	}
	id, ok := def.ActionOf()
	if !ok || !e.dispatcher.Has(id) {
		return intent.Definition{}, false
	}
	return intent.Definition{Name: def.Name, Effect: def.Effect}, true
}

func (e *Engine) choose(responses []string, fallback string) string {
	if len(responses) == 0 {
		return fallback
	}
	return responses[e.pick(len(responses))]
}

// actionConfidence grows with the number of keywords the intent declares.
func actionConfidence(def intent.Definition) float64 {
	c := actionConfidenceBase + actionConfidenceStep*float64(len(def.Keywords))
	return math.Min(actionConfidenceCap, math.Round(c*100)/100)
}

func politePrefix(s text.Sentiment, lang text.Language) string {
	if s != text.Negative {
		return ""
	}
	if lang == text.Hindi {
		return politePrefixHindi
	}
	return politePrefixEnglish
}

func genericSuggestions() []string {
	out := make([]string, len(GenericSuggestions))
	copy(out, GenericSuggestions)
	return out
}
