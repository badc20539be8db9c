// internal/workers/verification/check-raw/models.go
package checkraw

import "claimcheck/internal/models"

// Input carries unstructured scraped text, forwarded verbatim.
type Input struct {
	RawText string `json:"rawText"`
}

type Output struct {
	Result models.VerificationResult `json:"result"`
}
