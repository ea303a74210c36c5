// internal/dialogue/intent/catalog.go
package intent

import "assistant-engine/internal/dialogue/text"

// ActionID names a dispatchable action handler.
type ActionID string

const (
	ActionYouTubeSearch ActionID = "youtube_search"
	ActionGoogleSearch  ActionID = "google_search"
	ActionWikipedia     ActionID = "wikipedia_lookup"
	ActionWeather       ActionID = "weather"
	ActionTime          ActionID = "time"
	ActionCapabilities  ActionID = "capabilities"
)

// Effect is what a matched intent does. It is one of TemplateOnly, Redirect
// or Dispatch.
type Effect interface {
	isEffect()
}

// TemplateOnly replies with one of a fixed set of responses.
type TemplateOnly struct {
	Responses []string
}

// Redirect replies with one of a fixed set of responses and a static URL.
type Redirect struct {
	URL       string
	Responses []string
}

// Dispatch hands the turn to a registered action handler.
type Dispatch struct {
	Action ActionID
}

func (TemplateOnly) isEffect() {}
func (Redirect) isEffect()     {}
func (Dispatch) isEffect()     {}

// Definition is a single catalog entry. Keyword order matters only for
// stripping, where the longest keyword is tried first.
type Definition struct {
	Name     string
	Keywords []string
	Effect   Effect
}

// ActionOf returns the action an intent dispatches to, if any.
func (d Definition) ActionOf() (ActionID, bool) {
	if dispatch, ok := d.Effect.(Dispatch); ok {
		return dispatch.Action, true
	}
	return "", false
}

// Catalog is an ordered, immutable set of intent definitions.
type Catalog struct {
	intents []Definition
	byName  map[string]int
}

// NewCatalog copies the definitions and normalizes their keywords. Empty
// keywords are dropped. A later definition with a duplicate name shadows the
// earlier one for Lookup but both still take part in resolution.
func NewCatalog(defs ...Definition) *Catalog {
	c := &Catalog{
		intents: make([]Definition, 0, len(defs)),
		byName:  make(map[string]int, len(defs)),
	}
	for _, d := range defs {
		keywords := make([]string, 0, len(d.Keywords))
		for _, k := range d.Keywords {
			if k = text.Normalize(k); k != "" {
				keywords = append(keywords, k)
			}
		}
		d.Keywords = keywords
		c.byName[d.Name] = len(c.intents)
		c.intents = append(c.intents, d)
	}
	return c
}

// Intents returns a copy of the catalog entries in catalog order.
func (c *Catalog) Intents() []Definition {
	out := make([]Definition, len(c.intents))
	copy(out, c.intents)
	return out
}

// Lookup finds an intent by name.
func (c *Catalog) Lookup(name string) (Definition, bool) {
	i, ok := c.byName[name]
	if !ok {
		return Definition{}, false
	}
	return c.intents[i], true
}

// Len returns the number of intents in the catalog.
func (c *Catalog) Len() int {
	return len(c.intents)
}

// DefaultCatalog is the assistant's built-in intent set.
func DefaultCatalog() *Catalog {
	return NewCatalog(
		Definition{
			Name:     "greeting",
			Keywords: []string{"hello", "hi", "hey", "नमस्ते", "हैलो", "नमस्कार"},
			Effect: TemplateOnly{Responses: []string{
				"Hello! How can I help today?",
				"नमस्ते! मैं आपकी कैसे सहायता कर सकता हूँ?",
			}},
		},
		Definition{
			Name:     "youtube_open",
			Keywords: []string{"open youtube", "youtube kholo", "यूट्यूब खोलो"},
			Effect: Redirect{
				URL:       "https://www.youtube.com",
				Responses: []string{"Opening YouTube…", "यूट्यूब खोल रहा हूँ…"},
			},
		},
		Definition{
			Name:     "youtube_search",
			Keywords: []string{"search on youtube", "youtube search", "play", "search on", "चलाओ"},
			Effect:   Dispatch{Action: ActionYouTubeSearch},
		},
		Definition{
			Name:     "google_search",
			Keywords: []string{"search on google", "google search", "google"},
			Effect:   Dispatch{Action: ActionGoogleSearch},
		},
		Definition{
			Name:     "wikipedia_search",
			Keywords: []string{"search on wikipedia", "wikipedia search", "wikipedia", "विकिपीडिया"},
			Effect:   Dispatch{Action: ActionWikipedia},
		},
		Definition{
			Name:     "weather",
			Keywords: []string{"weather", "मौसम", "mausam"},
			Effect:   Dispatch{Action: ActionWeather},
		},
		Definition{
			Name:     "time",
			Keywords: []string{"time", "समय", "kitna baja", "what time"},
			Effect:   Dispatch{Action: ActionTime},
		},
		Definition{
			Name:     "thanks",
			Keywords: []string{"thanks", "thank you", "shukriya", "धन्यवाद"},
			Effect:   TemplateOnly{Responses: []string{"You're welcome!", "खुशी हुई मदद करके!"}},
		},
		Definition{
			Name:     "joke",
			Keywords: []string{"joke", "मज़ाक", "joke सुनाओ"},
			Effect: TemplateOnly{Responses: []string{
				"Why don't skeletons fight each other? They don't have the guts!",
				"टीचर: तुम्हारा नाम क्या है? छात्र: WhatsApp पे वही है, वहीं देख लो!",
			}},
		},
		Definition{
			Name:     "help",
			Keywords: []string{"help", "madad", "सहायता"},
			Effect:   Dispatch{Action: ActionCapabilities},
		},
	)
}
