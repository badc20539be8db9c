// internal/workers/catalog/list-products/models.go
package listproducts

import "claimcheck/internal/models"

// Input optionally bypasses the cache for a fresh listing.
type Input struct {
	Refresh bool `json:"refresh,omitempty"`
}

type Output struct {
	Products []models.Product `json:"products"`
	Cached   bool             `json:"cached"`
}
