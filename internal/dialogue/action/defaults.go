// internal/dialogue/action/defaults.go
package action

import (
	"time"

	"assistant-engine/internal/common/logger"
	"assistant-engine/internal/dialogue/intent"
	"assistant-engine/internal/lookup"
)

// Options carries the collaborators the built-in actions need.
type Options struct {
	Lookup          lookup.Summarizer
	LookupTimeout   time.Duration
	LookupObserver  LookupObserver
	Now             func() time.Time
	YouTube, Google SearchProvider
}

// RegisterDefaults wires every built-in action. The wikipedia action is
// only registered when a lookup source is supplied.
func RegisterDefaults(d *Dispatcher, opts Options, log logger.Logger) {
	if opts.YouTube.URLTemplate == "" {
		opts.YouTube = YouTube
	}
	if opts.Google.URLTemplate == "" {
		opts.Google = Google
	}

	d.Register(intent.ActionYouTubeSearch, NewSearchHandler(opts.YouTube))
	d.Register(intent.ActionGoogleSearch, NewSearchHandler(opts.Google))
	d.Register(intent.ActionWeather, Weather)
	d.Register(intent.ActionTime, NewClockHandler(opts.Now))
	d.Register(intent.ActionCapabilities, Capabilities)

	if opts.Lookup != nil {
		d.Register(intent.ActionWikipedia, NewReferenceHandler(opts.Lookup, ReferenceConfig{
			Timeout:  opts.LookupTimeout,
			Observer: opts.LookupObserver,
		}, log))
	}
}
