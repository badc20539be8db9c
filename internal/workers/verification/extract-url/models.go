// internal/workers/verification/extract-url/models.go
package extracturl

import "claimcheck/internal/models"

type Input struct {
	URL string `json:"url"`
}

type Output struct {
	Extraction models.ExtractURLResult `json:"extraction"`
}

type extractRequest struct {
	URL string `json:"url"`
}
