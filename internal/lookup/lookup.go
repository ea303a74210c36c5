// internal/lookup/lookup.go

// Package lookup provides the reference summary collaborator used by the
// wikipedia action: an HTTP client for the Wikipedia REST API and a Redis
// backed cache in front of it.
package lookup

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Locale selects the language edition a summary is fetched from.
type Locale string

const (
	LocaleEnglish Locale = "en"
	LocaleHindi   Locale = "hi"
)

// DefaultLocale is the edition used when nothing more specific applies.
const DefaultLocale = LocaleEnglish

var (
	ErrNotFound  = errors.New("LOOKUP_NOT_FOUND")
	ErrTransient = errors.New("LOOKUP_TRANSIENT_FAILURE")
)

// MaxAmbiguousOptions is the number of alternatives surfaced to the user.
const MaxAmbiguousOptions = 5

// AmbiguousError reports a topic that resolves to several pages.
type AmbiguousError struct {
	Topic   string
	Options []string
}

func (e *AmbiguousError) Error() string {
	return fmt.Sprintf("LOOKUP_AMBIGUOUS: %q may refer to %s", e.Topic, strings.Join(e.Options, ", "))
}

// Summarizer fetches a short plain-text summary for a topic.
//
// Errors are ErrNotFound, *AmbiguousError, or anything else, which callers
// treat as a transient failure.
type Summarizer interface {
	Summary(ctx context.Context, topic string, locale Locale) (string, error)
}

// SummarizerFunc adapts a function to Summarizer.
type SummarizerFunc func(ctx context.Context, topic string, locale Locale) (string, error)

func (f SummarizerFunc) Summary(ctx context.Context, topic string, locale Locale) (string, error) {
	return f(ctx, topic, locale)
}
