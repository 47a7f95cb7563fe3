// internal/workers/chat/text-to-speech/config.go
package texttospeech

import "time"

type Config struct {
	TTSBaseURL string
	APIKey     string
	Voice      string
	Format     string
	Timeout    time.Duration
	MaxRetries int
	MaxChars   int
}

func LoadConfig() *Config {
	return &Config{
		Voice:    "en-IN-standard",
		Format:   "mp3",
		Timeout:  30 * time.Second,
		MaxChars: 4000,
	}
}
