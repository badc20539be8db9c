// internal/workers/verification/verify-manual/config.go
package verifymanual

import "time"

type Config struct {
	Endpoint string
	Timeout  time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Endpoint: "/manual-check",
		Timeout:  90 * time.Second,
	}
}
