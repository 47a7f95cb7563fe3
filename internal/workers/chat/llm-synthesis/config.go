// internal/workers/chat/llm-synthesis/config.go
package llmsynthesis

import "time"

type Config struct {
	GenAIBaseURL string
	APIKey       string
	Model        string
	Timeout      time.Duration
	MaxRetries   int
	MaxTokens    int
	Temperature  float64
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 30 * time.Second,
	}
}
