// internal/workers/catalog/list-products/config.go
package listproducts

import "time"

type Config struct {
	Endpoint string
	CacheKey string
	CacheTTL time.Duration
	Timeout  time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Endpoint: "/get-from-s3",
		CacheKey: "catalog:products",
		CacheTTL: 5 * time.Minute,
		Timeout:  60 * time.Second,
	}
}
