// internal/workers/health/check-health/models.go
package checkhealth

import "claimcheck/internal/models"

type Input struct {
	Profile models.HealthCheckInput `json:"profile"`
}

type Output struct {
	Assessment models.HealthCheckResponse `json:"assessment"`
}

const profileSchema = `{
	"type": "object",
	"required": ["age", "height", "weight", "gender"],
	"properties": {
		"age":                {"type": "integer", "minimum": 1, "maximum": 120},
		"height":             {"type": "number", "minimum": 50, "maximum": 250},
		"weight":             {"type": "number", "minimum": 20, "maximum": 300},
		"gender":             {"type": "string", "minLength": 1},
		"activity_level":     {"type": "string"},
		"medical_conditions": {"type": "string"},
		"medications":        {"type": "string"},
		"diet":               {"type": "string"},
		"sleep":              {"type": "number", "minimum": 0, "maximum": 24},
		"stress":             {"type": "integer", "minimum": 1, "maximum": 10},
		"exercise":           {"type": "string"}
	}
}`
