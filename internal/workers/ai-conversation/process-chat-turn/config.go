// internal/workers/ai-conversation/process-chat-turn/config.go
package processchatturn

import (
	"time"

	"assistant-engine/internal/common/config"
)

const defaultTimeout = 30 * time.Second

type Config struct {
	Timeout time.Duration
}

// LoadConfig derives the handler settings from the worker's configuration.
func LoadConfig(wcfg config.WorkerConfig) *Config {
	timeout := config.GetDuration(wcfg.Timeout)
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Config{Timeout: timeout}
}
