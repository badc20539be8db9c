// internal/workers/verification/suggest-alternatives/config.go
package suggestalternatives

import "time"

type Config struct {
	Endpoint string
	Timeout  time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Endpoint: "/suggestions",
		Timeout:  60 * time.Second,
	}
}
