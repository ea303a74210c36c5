// internal/dialogue/action/weather.go
package action

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"assistant-engine/internal/dialogue"
	"assistant-engine/internal/dialogue/text"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	weatherLocation = regexp.MustCompile(`(?:^|\s)(?:weather|mausam|मौसम)\s+([a-z\x{0900}-\x{097F}\s]+)$`)
	bareLocation    = regexp.MustCompile(`^[a-z\x{0900}-\x{097F}\s]+$`)
	leadingLinker   = regexp.MustCompile(`^(?:(?:in|for|at|of)\s+)+`)
)

// Weather returns an instructive placeholder; there is no live weather
// integration. On a continuation turn the whole message is taken as the
// location, so "weather" followed by "Delhi" works.
func Weather(ctx context.Context, req Request, state *dialogue.Context) Result {
	msg := text.Normalize(req.Message)

	var location string
	if m := weatherLocation.FindStringSubmatch(msg); m != nil {
		location = strings.TrimSpace(m[1])
	} else if req.Continuation && bareLocation.MatchString(msg) {
		location = msg
	}

	location = strings.TrimSpace(leadingLinker.ReplaceAllString(location+" ", ""))

	if location == "" {
		return Result{
			Response:    "Please share your city to check the weather (e.g., 'weather Delhi').",
			Suggestions: []string{"weather Delhi", "weather Mumbai"},
		}
	}

	city := cases.Title(language.Und).String(location)
	state.LastQuery = city
	return Result{Response: fmt.Sprintf("To fetch live weather for %s, please connect a weather API.", city)}
}
