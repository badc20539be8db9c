// internal/models/catalog.go
package models

// Product is a catalog entry as served by the product listing endpoint.
type Product struct {
	Title                string      `json:"title"`
	Brand                string      `json:"brand"`
	Images               []string    `json:"images"`
	Overview             string      `json:"overview"`
	Nutrition            string      `json:"nutrition"`
	Ingredients          string      `json:"ingredients"`
	Claims               string      `json:"claims"`
	PersonalizedOverview string      `json:"personalizedOverview"`
	Suitability          []Highlight `json:"suitability"`
	SafeConsumption      string      `json:"safeConsumption"`
	NutrientHighlights   []Highlight `json:"nutrientHighlights"`
	MatchScore           float64     `json:"matchScore"`
}

// Highlight is a short remark flagged as favorable or not.
type Highlight struct {
	Text     string `json:"text"`
	Positive bool   `json:"positive"`
}

// CatalogResponse is the listing endpoint's body.
type CatalogResponse struct {
	Data struct {
		Products []Product `json:"products"`
	} `json:"data"`
}
