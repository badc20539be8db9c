// internal/workers/verification/extract-url/config.go
package extracturl

import "time"

type Config struct {
	Endpoint string
	Timeout  time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Endpoint: "/extract-url",
		Timeout:  120 * time.Second,
	}
}
