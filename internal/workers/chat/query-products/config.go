// internal/workers/chat/query-products/config.go
package queryproducts

import "time"

type Config struct {
	IndexName string
	Timeout   time.Duration
}

func LoadConfig() *Config {
	return &Config{
		IndexName: "products",
		Timeout:   30 * time.Second,
	}
}
