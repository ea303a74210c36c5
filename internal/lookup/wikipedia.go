// internal/lookup/wikipedia.go
package lookup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	httpclient "assistant-engine/internal/common/http"
	"assistant-engine/internal/common/logger"
)

// WikipediaConfig configures the Wikipedia REST client. BaseURL may contain
// a "{lang}" placeholder that is replaced by the requested locale.
type WikipediaConfig struct {
	BaseURL   string
	UserAgent string
	Timeout   time.Duration
	Sentences int
}

func DefaultWikipediaConfig() *WikipediaConfig {
	return &WikipediaConfig{
		BaseURL:   "https://{lang}.wikipedia.org",
		UserAgent: "assistant-engine/1.0",
		Timeout:   5 * time.Second,
		Sentences: 2,
	}
}

// withDefaults fills the zero fields of c from DefaultWikipediaConfig.
func withDefaults(c *WikipediaConfig) *WikipediaConfig {
	d := DefaultWikipediaConfig()
	if c == nil {
		return d
	}
	out := *c
	if out.BaseURL == "" {
		out.BaseURL = d.BaseURL
	}
	if out.UserAgent == "" {
		out.UserAgent = d.UserAgent
	}
	if out.Timeout <= 0 {
		out.Timeout = d.Timeout
	}
	if out.Sentences <= 0 {
		out.Sentences = d.Sentences
	}
	return &out
}

type WikipediaClient struct {
	config *WikipediaConfig
	client *httpclient.Client
	logger logger.Logger
}

func NewWikipediaClient(config *WikipediaConfig, log logger.Logger) *WikipediaClient {
	config = withDefaults(config)
	return &WikipediaClient{
		config: config,
		client: httpclient.NewClient(config.Timeout).
			WithHeader("User-Agent", config.UserAgent).
			WithHeader("Accept", "application/json"),
		logger: log.With(map[string]interface{}{
			"component": "wikipedia",
		}),
	}
}

type pageSummary struct {
	Type    string `json:"type"`
	Title   string `json:"title"`
	Extract string `json:"extract"`
}

// Summary returns the first sentences of the page for topic. A missing page
// is retried once with the best search suggestion before ErrNotFound.
func (c *WikipediaClient) Summary(ctx context.Context, topic string, locale Locale) (string, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return "", ErrNotFound
	}
	if locale == "" {
		locale = DefaultLocale
	}

	page, err := c.fetchSummary(ctx, topic, locale)
	if errors.Is(err, ErrNotFound) {
		suggestions, serr := c.search(ctx, topic, locale, 1)
		if serr != nil || len(suggestions) == 0 || strings.EqualFold(suggestions[0], topic) {
			return "", ErrNotFound
		}
		c.logger.Debug("retrying with suggested title", map[string]interface{}{
			"topic":     topic,
			"suggested": suggestions[0],
			"locale":    string(locale),
		})
		page, err = c.fetchSummary(ctx, suggestions[0], locale)
	}
	if err != nil {
		return "", err
	}

	if page.Type == "disambiguation" {
		options, serr := c.search(ctx, topic, locale, MaxAmbiguousOptions+1)
		if serr != nil {
			c.logger.Warn("disambiguation options unavailable", map[string]interface{}{
				"topic": topic,
				"error": serr.Error(),
			})
		}
		return "", &AmbiguousError{Topic: topic, Options: filterOptions(options, page.Title)}
	}

	extract := strings.TrimSpace(page.Extract)
	if extract == "" {
		return "", ErrNotFound
	}
	return FirstSentences(extract, c.config.Sentences), nil
}

func (c *WikipediaClient) fetchSummary(ctx context.Context, topic string, locale Locale) (*pageSummary, error) {
	title := url.PathEscape(strings.ReplaceAll(topic, " ", "_"))
	endpoint := c.baseURL(locale) + "/api/rest_v1/page/summary/" + title + "?redirect=true"

	resp, err := c.get(ctx, endpoint)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrNotFound
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("%w: summary API returned %d", ErrTransient, resp.StatusCode)
	}

	var page pageSummary
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, fmt.Errorf("%w: decode summary: %v", ErrTransient, err)
	}
	return &page, nil
}

// search runs a MediaWiki opensearch query and returns matching titles.
func (c *WikipediaClient) search(ctx context.Context, topic string, locale Locale, limit int) ([]string, error) {
	params := url.Values{}
	params.Set("action", "opensearch")
	params.Set("search", topic)
	params.Set("limit", strconv.Itoa(limit))
	params.Set("namespace", "0")
	params.Set("format", "json")

	resp, err := c.get(ctx, c.baseURL(locale)+"/w/api.php?"+params.Encode())
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: opensearch returned %d", ErrTransient, resp.StatusCode)
	}

	// [query, [titles], [descriptions], [urls]]
	var raw []json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: decode opensearch: %v", ErrTransient, err)
	}
	if len(raw) < 2 {
		return nil, nil
	}
	var titles []string
	if err := json.Unmarshal(raw[1], &titles); err != nil {
		return nil, fmt.Errorf("%w: decode opensearch titles: %v", ErrTransient, err)
	}
	return titles, nil
}

func (c *WikipediaClient) get(ctx context.Context, endpoint string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransient, err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		if ctx.Err() != nil || errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: timeout: %v", ErrTransient, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrTransient, err)
	}
	return resp, nil
}

func (c *WikipediaClient) baseURL(locale Locale) string {
	return strings.TrimRight(strings.ReplaceAll(c.config.BaseURL, "{lang}", string(locale)), "/")
}

func filterOptions(options []string, exclude string) []string {
	out := make([]string, 0, MaxAmbiguousOptions)
	for _, o := range options {
		if strings.EqualFold(o, exclude) {
			continue
		}
		out = append(out, o)
		if len(out) == MaxAmbiguousOptions {
			break
		}
	}
	return out
}

// FirstSentences keeps at most n sentences of text. Both Latin and
// Devanagari (danda) sentence terminators are recognised.
func FirstSentences(text string, n int) string {
	if n <= 0 {
		return text
	}
	runes := []rune(text)
	count := 0
	for i, r := range runes {
		if r != '.' && r != '!' && r != '?' && r != '।' {
			continue
		}
		if i+1 < len(runes) && runes[i+1] != ' ' && runes[i+1] != '\n' {
			continue
		}
		count++
		if count == n {
			return strings.TrimSpace(string(runes[:i+1]))
		}
	}
	return strings.TrimSpace(text)
}
