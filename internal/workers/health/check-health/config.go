// internal/workers/health/check-health/config.go
package checkhealth

import "time"

type Config struct {
	Endpoint string
	Timeout  time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Endpoint: "/check-health",
		Timeout:  90 * time.Second,
	}
}
