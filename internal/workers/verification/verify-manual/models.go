// internal/workers/verification/verify-manual/models.go
package verifymanual

import "claimcheck/internal/models"

type Input struct {
	Claims      string `json:"claims"`
	Ingredients string `json:"ingredients"`
}

type Output struct {
	Result models.VerificationResult `json:"result"`
}
