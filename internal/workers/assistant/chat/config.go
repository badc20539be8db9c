// internal/workers/assistant/chat/config.go
package chat

import "time"

type Config struct {
	Endpoint string
	Timeout  time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Endpoint: "/chat",
		Timeout:  60 * time.Second,
	}
}
