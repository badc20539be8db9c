// internal/models/verification.go
package models

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// Verdict is the categorical trustworthiness label. The backend owns the
// vocabulary; the known values are listed for rendering only.
type Verdict string

const (
	VerdictTrustworthy Verdict = "trustworthy"
	VerdictMisleading  Verdict = "misleading"
)

// Normalized lowercases the verdict for comparisons.
func (v Verdict) Normalized() Verdict {
	return Verdict(strings.ToLower(strings.TrimSpace(string(v))))
}

// VerificationRequest is the body of /manual-check and /suggestions.
type VerificationRequest struct {
	Claims      string `json:"claims"`
	Ingredients string `json:"ingredients"`
}

// VerificationResult is the decoded verdict for a claims+ingredients pair.
type VerificationResult struct {
	Verdict             Verdict              `json:"verdict"`
	Why                 string               `json:"why"`
	DetailedExplanation string               `json:"detailed_explanation"`
	TrustabilityScore   int                  `json:"trustability_score"`
	Alternatives        []AlternativeProduct `json:"alternatives,omitempty"`
}

// AlternativeProduct is a suggested replacement product. Every field except
// Certifications is free text.
type AlternativeProduct struct {
	ProductName          Text   `json:"product_name"`
	Brand                Text   `json:"brand"`
	Description          Text   `json:"description"`
	HealthBenefits       Text   `json:"health_benefits"`
	IngredientComparison Text   `json:"ingredient_comparison"`
	Certifications       []Text `json:"certifications"`
	TrustScore           Text   `json:"trust_score"`
	UserReviews          Text   `json:"user_reviews"`
	PriceRange           Text   `json:"price_range"`
	Availability         Text   `json:"availability"`
}

// AlternativesResponse is the payload nested inside /suggestions.
type AlternativesResponse struct {
	Alternatives []AlternativeProduct `json:"alternatives"`
}

// Text is free text that tolerates the backend emitting numbers or booleans
// where a string is expected (trust_score arrives as either).
type Text string

func (t *Text) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*t = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = Text(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		*t = Text(n.String())
		return nil
	}
	var b bool
	if err := json.Unmarshal(data, &b); err != nil {
		return err
	}
	*t = Text(strconv.FormatBool(b))
	return nil
}

func (t Text) String() string {
	return string(t)
}

// ExtractStatus discriminates /extract-url responses.
type ExtractStatus string

const (
	ExtractStatusSuccess   ExtractStatus = "success"
	ExtractStatusNotParsed ExtractStatus = "not_parsed"
)

// ExtractURLResult is the /extract-url response, optionally enriched.
type ExtractURLResult struct {
	Status       ExtractStatus        `json:"status"`
	RawResponse  string               `json:"raw_response"`
	Message      string               `json:"message,omitempty"`
	Alternatives []AlternativeProduct `json:"alternatives,omitempty"`
}

// ScrapedProduct is the structured content of a successful extraction's
// raw_response.
type ScrapedProduct struct {
	Claims      string `json:"claims"`
	Ingredients string `json:"ingredients"`
}

// Structured decodes RawResponse as a ScrapedProduct. ok is false unless the
// payload is JSON with both claims and ingredients present and non-empty.
func (r *ExtractURLResult) Structured() (ScrapedProduct, bool) {
	var p ScrapedProduct
	if r == nil || r.RawResponse == "" {
		return p, false
	}
	if err := json.Unmarshal([]byte(r.RawResponse), &p); err != nil {
		return p, false
	}
	if strings.TrimSpace(p.Claims) == "" || strings.TrimSpace(p.Ingredients) == "" {
		return p, false
	}
	return p, true
}
