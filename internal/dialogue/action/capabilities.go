// internal/dialogue/action/capabilities.go
package action

import (
	"context"

	"assistant-engine/internal/dialogue"
)

const capabilitiesText = `Here is what I can do:
- Search Google or YouTube ("search on google golang", "play lofi beats")
- Look up a topic on Wikipedia ("wikipedia Alan Turing")
- Check the weather placeholder for a city ("weather Delhi")
- Tell you the time ("what time is it")
- Tell a joke ("tell me a joke")
I understand English, Hindi and Hinglish.`

// CapabilitySuggestions are the curated follow-ups offered with the help text.
var CapabilitySuggestions = []string{
	"search on google golang",
	"play lofi beats",
	"wikipedia Alan Turing",
	"weather Delhi",
	"what time is it",
	"tell me a joke",
}

// Capabilities returns the fixed help text. It keeps no state.
func Capabilities(ctx context.Context, req Request, state *dialogue.Context) Result {
	suggestions := make([]string, len(CapabilitySuggestions))
	copy(suggestions, CapabilitySuggestions)
	return Result{Response: capabilitiesText, Suggestions: suggestions}
}
