// internal/workers/verification/verify-media/models.go
package verifymedia

import "claimcheck/internal/models"

// ImageInput is one label photo. Crop is optional; Text, when set, replaces
// OCR for this image (the user edited the extracted text).
type ImageInput struct {
	Source string           `json:"source"`
	Crop   *models.CropArea `json:"crop,omitempty"`
	Text   string           `json:"text,omitempty"`
}

type Input struct {
	Claims      ImageInput `json:"claims"`
	Ingredients ImageInput `json:"ingredients"`
}

type Output struct {
	ClaimsText      string                    `json:"claimsText"`
	IngredientsText string                    `json:"ingredientsText"`
	Result          models.VerificationResult `json:"result"`
}
