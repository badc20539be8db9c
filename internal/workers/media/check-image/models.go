// internal/workers/media/check-image/models.go
package checkimage

import "claimcheck/internal/models"

// Input accepts a blob: reference or a data: URI.
type Input struct {
	Image string `json:"image"`
}

type Output struct {
	models.ImageCheckResult
}
