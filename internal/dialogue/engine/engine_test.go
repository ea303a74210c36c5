// internal/dialogue/engine/engine_test.go
package engine

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"assistant-engine/internal/common/logger"
	"assistant-engine/internal/dialogue"
	"assistant-engine/internal/dialogue/action"
	"assistant-engine/internal/dialogue/intent"
	"assistant-engine/internal/dialogue/text"
	"assistant-engine/internal/lookup"
)

// ==========================
// Helpers
// ==========================

func first(int) int { return 0 }

func newEngine(t *testing.T, opts ...Option) *Engine {
	t.Helper()
	log := logger.NewTestLogger(t)
	d := action.NewDispatcher(log)
	action.RegisterDefaults(d, action.Options{
		Lookup: lookup.SummarizerFunc(func(ctx context.Context, topic string, locale lookup.Locale) (string, error) {
			return "Summary of " + topic + ".", nil
		}),
		Now: func() time.Time { return time.Date(2024, 1, 1, 9, 30, 0, 0, time.UTC) },
	}, log)
	return New(intent.DefaultCatalog(), d, log, append([]Option{WithRandom(first)}, opts...)...)
}

// ==========================
// Scenarios
// ==========================

func TestProcessTurn_OpenYouTube(t *testing.T) {
	e := newEngine(t)
	state := &dialogue.Context{}

	reply := e.ProcessTurn(context.Background(), "open youtube", state)

	assert.Equal(t, "youtube_open", reply.Intent)
	assert.Contains(t, []string{"Opening YouTube…", "यूट्यूब खोल रहा हूँ…"}, reply.Response)
	assert.Equal(t, "https://www.youtube.com", reply.URL)
	assert.Equal(t, 0.9, reply.Confidence)
	assert.Equal(t, "youtube_open", state.LastIntent)
}

func TestProcessTurn_TemplateChoiceUsesInjectedRandom(t *testing.T) {
	e := newEngine(t, WithRandom(func(n int) int { return n - 1 }))

	reply := e.ProcessTurn(context.Background(), "open youtube", &dialogue.Context{})
	assert.Equal(t, "यूट्यूब खोल रहा हूँ…", reply.Response)
}

func TestProcessTurn_PlayLofiBeats(t *testing.T) {
	e := newEngine(t)
	state := &dialogue.Context{}

	out := e.Run(context.Background(), "play lofi beats", state)

	require.Equal(t, StateMatchedWithAction, out.State)
	assert.Equal(t, "youtube_search", out.Reply.Intent)
	assert.Contains(t, out.Reply.URL, "search_query="+url.QueryEscape("lofi beats"))
	assert.Equal(t, "lofi beats", state.LastQuery)
	assert.Equal(t, "youtube_search", state.LastIntent)
	assert.LessOrEqual(t, out.Reply.Confidence, 0.95)
	assert.Greater(t, out.Reply.Confidence, 0.85)
	assert.NotEmpty(t, out.Reply.Suggestions)
}

func TestProcessTurn_EmptyMessage(t *testing.T) {
	e := newEngine(t)

	out := e.Run(context.Background(), "", &dialogue.Context{})

	assert.Equal(t, StateNoMatch, out.State)
	assert.Equal(t, dialogue.UnknownIntent, out.Reply.Intent)
	assert.Equal(t, 0.5, out.Reply.Confidence)
	assert.Equal(t, GenericSuggestions, out.Reply.Suggestions)
	assert.Equal(t, text.English, out.Reply.Lang)
}

func TestProcessTurn_WeatherThenCity(t *testing.T) {
	e := newEngine(t)
	state := &dialogue.Context{}

	first := e.Run(context.Background(), "weather", state)
	assert.Equal(t, StateMatchedWithAction, first.State)
	assert.Contains(t, first.Reply.Response, "Please share your city")
	assert.Empty(t, first.Reply.URL)
	assert.Equal(t, "weather", state.LastIntent)

	second := e.Run(context.Background(), "Delhi", state)
	assert.Equal(t, StateContextFallback, second.State)
	assert.Equal(t, "weather", second.Reply.Intent)
	assert.Equal(t, 0.6, second.Reply.Confidence)
	assert.Contains(t, second.Reply.Response, "Delhi")
	assert.Equal(t, "weather", state.LastIntent)
}

func TestProcessTurn_SearchContinuation(t *testing.T) {
	e := newEngine(t)
	state := &dialogue.Context{}

	e.ProcessTurn(context.Background(), "play", state)
	reply := e.ProcessTurn(context.Background(), "arijit singh", state)

	assert.Equal(t, "youtube_search", reply.Intent)
	assert.Equal(t, "https://www.youtube.com/results?search_query=arijit+singh", reply.URL)
	assert.Equal(t, "arijit singh", state.LastQuery)
}

func TestProcessTurn_NoFallbackForTemplateIntent(t *testing.T) {
	e := newEngine(t)
	state := &dialogue.Context{LastIntent: "greeting"}

	out := e.Run(context.Background(), "qwerty", state)
	assert.Equal(t, StateNoMatch, out.State)
	assert.Equal(t, dialogue.UnknownIntent, out.Reply.Intent)
}

func TestProcessTurn_NoFallbackForUnknownName(t *testing.T) {
	e := newEngine(t)

	out := e.Run(context.Background(), "qwerty", &dialogue.Context{LastIntent: "removed_intent"})
	assert.Equal(t, StateNoMatch, out.State)
}

// ==========================
// Sentiment prefix
// ==========================

func TestProcessTurn_PolitePrefix(t *testing.T) {
	tests := []struct {
		name       string
		message    string
		wantPrefix string
	}{
		{"negative english", "this is bakwas", politePrefixEnglish},
		{"negative hindi", "गुस्सा नमस्ते", politePrefixHindi},
		{"positive", "thanks a lot", ""},
		{"neutral", "open youtube", ""},
	}

	e := newEngine(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reply := e.ProcessTurn(context.Background(), tt.message, &dialogue.Context{})
			if tt.wantPrefix == "" {
				assert.NotContains(t, reply.Response, politePrefixEnglish)
				assert.NotContains(t, reply.Response, politePrefixHindi)
				return
			}
			assert.Regexp(t, "^"+tt.wantPrefix, reply.Response)
		})
	}
}

func TestProcessTurn_HindiGreetingGetsHindiPrefix(t *testing.T) {
	e := newEngine(t)

	reply := e.ProcessTurn(context.Background(), "गुस्सा नमस्ते", &dialogue.Context{})
	assert.Equal(t, "greeting", reply.Intent)
	assert.Equal(t, text.Hindi, reply.Lang)
	assert.Equal(t, politePrefixHindi+"Hello! How can I help today?", reply.Response)
	assert.Equal(t, 0.85, reply.Confidence)
}

// ==========================
// Degraded paths
// ==========================

func TestProcessTurn_UnregisteredAction(t *testing.T) {
	log := logger.NewTestLogger(t)
	d := action.NewDispatcher(log)
	e := New(intent.DefaultCatalog(), d, log)

	out := e.Run(context.Background(), "wikipedia golang", &dialogue.Context{})

	assert.Equal(t, StateMatchedWithAction, out.State)
	assert.Equal(t, "wikipedia_search", out.Reply.Intent)
	assert.Contains(t, out.Reply.Response, "temporarily unavailable")
	assert.Equal(t, 0.6, out.Reply.Confidence)
	assert.Equal(t, GenericSuggestions, out.Reply.Suggestions)

	// The unregistered action must not become a continuation target.
	next := e.Run(context.Background(), "golang", &dialogue.Context{LastIntent: "wikipedia_search"})
	assert.Equal(t, StateNoMatch, next.State)
}

func TestProcessTurn_RecoversPanic(t *testing.T) {
	e := newEngine(t, WithRandom(func(int) int { panic("bad random source") }))

	reply := e.ProcessTurn(context.Background(), "hello", &dialogue.Context{})
	assert.Equal(t, dialogue.UnknownIntent, reply.Intent)
	assert.Equal(t, 0.5, reply.Confidence)
	assert.NotEmpty(t, reply.Response)
}

func TestProcessTurn_NilState(t *testing.T) {
	e := newEngine(t)

	assert.NotPanics(t, func() {
		reply := e.ProcessTurn(context.Background(), "what time is it", nil)
		assert.Equal(t, "The current time is 09:30 AM.", reply.Response)
	})
}

func TestProcessTurn_WikipediaSummary(t *testing.T) {
	e := newEngine(t)

	reply := e.ProcessTurn(context.Background(), "wikipedia Alan Turing", &dialogue.Context{})
	assert.Equal(t, "Summary of alan turing.", reply.Response)
}

// ==========================
// Confidence and observers
// ==========================

func TestActionConfidence(t *testing.T) {
	tests := []struct {
		keywords int
		want     float64
	}{
		{0, 0.7},
		{1, 0.75},
		{3, 0.85},
		{5, 0.95},
		{12, 0.95},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d keywords", tt.keywords), func(t *testing.T) {
			def := intent.Definition{Keywords: make([]string, tt.keywords)}
			assert.Equal(t, tt.want, actionConfidence(def))
		})
	}
}

func TestProcessTurn_ConfidenceIsRounded(t *testing.T) {
	e := newEngine(t)

	reply := e.ProcessTurn(context.Background(), "what time is it", &dialogue.Context{})
	require.Equal(t, "time", reply.Intent)
	assert.Equal(t, 0.9, reply.Confidence)
}

func TestEngine_ObserverSeesEveryTurn(t *testing.T) {
	var (
		mu     sync.Mutex
		states []State
	)
	e := newEngine(t, WithObserver(func(o Outcome, elapsed time.Duration) {
		mu.Lock()
		defer mu.Unlock()
		states = append(states, o.State)
		assert.GreaterOrEqual(t, elapsed, time.Duration(0))
	}))

	state := &dialogue.Context{}
	for _, msg := range []string{"hello", "open youtube", "weather", "Delhi", "???"} {
		e.ProcessTurn(context.Background(), msg, state)
	}

	require.Len(t, states, 5)
	assert.Equal(t, []State{
		StateMatchedTemplateOnly,
		StateMatchedWithRedirect,
		StateMatchedWithAction,
		StateContextFallback,
		StateContextFallback,
	}, states)
}

func TestEngine_ConcurrentSessions(t *testing.T) {
	e := newEngine(t)

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			state := &dialogue.Context{}
			query := fmt.Sprintf("song %d", i)
			reply := e.ProcessTurn(context.Background(), "play "+query, state)
			assert.Equal(t, "youtube_search", reply.Intent)
			assert.Equal(t, query, state.LastQuery)
		}(i)
	}
	wg.Wait()
}
