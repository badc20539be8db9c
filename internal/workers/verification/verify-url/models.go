// internal/workers/verification/verify-url/models.go
package verifyurl

import "claimcheck/internal/models"

type Input struct {
	URL string `json:"url"`
}

type Output struct {
	Result models.VerificationResult `json:"result"`
	Status models.ExtractStatus      `json:"extractStatus"`
}
