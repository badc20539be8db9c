// internal/workers/verification/check-raw/config.go
package checkraw

import "time"

type Config struct {
	Endpoint   string
	QueryParam string
	Timeout    time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Endpoint:   "/check-raw",
		QueryParam: "raw_text",
		Timeout:    90 * time.Second,
	}
}
