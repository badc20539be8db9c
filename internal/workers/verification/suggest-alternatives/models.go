// internal/workers/verification/suggest-alternatives/models.go
package suggestalternatives

import "claimcheck/internal/models"

type Input struct {
	Claims      string `json:"claims"`
	Ingredients string `json:"ingredients"`
}

// Output carries alternatives only when the lookup fully succeeded.
type Output struct {
	Alternatives []models.AlternativeProduct `json:"alternatives,omitempty"`
}
