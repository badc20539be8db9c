// internal/workers/media/crop-image/config.go
package cropimage

import (
	"fmt"
	"time"
)

type Config struct {
	Timeout        time.Duration
	JPEGQuality    int
	MaxSourceBytes int64
}

func LoadConfig() *Config {
	return &Config{
		Timeout:        30 * time.Second,
		JPEGQuality:    92,
		MaxSourceBytes: 20 << 20,
	}
}

func (c *Config) Validate() error {
	if c.JPEGQuality < 1 || c.JPEGQuality > 100 {
		return fmt.Errorf("jpeg quality must be within 1..100, got %d", c.JPEGQuality)
	}
	if c.MaxSourceBytes <= 0 {
		return fmt.Errorf("max source bytes must be positive")
	}
	return nil
}
