// internal/dialogue/action/search.go
package action

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"assistant-engine/internal/dialogue"
	"assistant-engine/internal/dialogue/intent"
)

// SearchProvider describes a web search destination.
type SearchProvider struct {
	Name string
	// URLTemplate contains a single %s that receives the query-escaped query.
	URLTemplate string
	// Suggestions are formatted with the query, e.g. "Wikipedia %s".
	Suggestions []string
}

var (
	YouTube = SearchProvider{
		Name:        "YouTube",
		URLTemplate: "https://www.youtube.com/results?search_query=%s",
		Suggestions: []string{"Search on Google %s", "Wikipedia %s"},
	}
	Google = SearchProvider{
		Name:        "Google",
		URLTemplate: "https://www.google.com/search?q=%s",
		Suggestions: []string{"Search on YouTube %s", "Wikipedia %s"},
	}
)

// NewSearchHandler builds a redirect action for a search provider. The
// query is what remains after stripping the trigger keyword, or the last
// query of the session when nothing remains.
func NewSearchHandler(p SearchProvider) Handler {
	return func(ctx context.Context, req Request, state *dialogue.Context) Result {
		q := intent.StripFirstKeyword(req.Message, req.Intent.Keywords)
		if q == "" {
			q = state.LastQuery
		}
		if q == "" {
			return Result{Response: fmt.Sprintf("Please tell me what to search on %s.", p.Name)}
		}

		state.LastQuery = q

		suggestions := make([]string, 0, len(p.Suggestions))
		for _, s := range p.Suggestions {
			suggestions = append(suggestions, fmt.Sprintf(s, q))
		}
		return Result{
			Response:    fmt.Sprintf("Searching %s for '%s'…", p.Name, q),
			URL:         BuildSearchURL(p.URLTemplate, q),
			Suggestions: suggestions,
		}
	}
}

// BuildSearchURL form-encodes the query into the template.
func BuildSearchURL(template, query string) string {
	if !strings.Contains(template, "%s") {
		return template
	}
	return fmt.Sprintf(template, url.QueryEscape(query))
}
