// internal/workers/media/check-image/config.go
package checkimage

import "time"

type Config struct {
	Endpoint  string
	FileField string
	Filename  string
	Timeout   time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Endpoint:  "/check-image",
		FileField: "file",
		Filename:  "image.png",
		Timeout:   60 * time.Second,
	}
}
