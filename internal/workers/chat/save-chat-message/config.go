// internal/workers/chat/save-chat-message/config.go
package savechatmessage

import "time"

type Config struct {
	Timeout      time.Duration
	HistoryLimit int64
	HistoryTTL   time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout:      10 * time.Second,
		HistoryLimit: 50,
		HistoryTTL:   24 * time.Hour,
	}
}
