// internal/models/health.go
package models

// HealthCheckInput is the health-assessment questionnaire. Sleep is hours per
// night and Stress is a 1-10 self rating.
type HealthCheckInput struct {
	Age               int     `json:"age"`
	Height            float64 `json:"height"`
	Weight            float64 `json:"weight"`
	Gender            string  `json:"gender"`
	ActivityLevel     string  `json:"activity_level"`
	MedicalConditions string  `json:"medical_conditions"`
	Medications       string  `json:"medications"`
	Diet              string  `json:"diet"`
	Sleep             float64 `json:"sleep"`
	Stress            int     `json:"stress"`
	Exercise          string  `json:"exercise"`
}

// DefaultHealthCheckInput returns the prefilled questionnaire.
func DefaultHealthCheckInput() HealthCheckInput {
	return HealthCheckInput{
		Age:               35,
		Height:            175,
		Weight:            70,
		Gender:            "Male",
		ActivityLevel:     "Moderate",
		MedicalConditions: "Mild hypertension",
		Medications:       "Lisinopril 10mg daily",
		Diet:              "Mixed diet with moderate carbs and protein",
		Sleep:             7,
		Stress:            6,
		Exercise:          "30 minutes walking 3 times per week",
	}
}

// HealthCheckResponse is the backend's assessment, passed through unchanged.
type HealthCheckResponse struct {
	OverallStatus     string            `json:"overall_status"`
	GeneralAssessment string            `json:"general_assessment"`
	BMI               BMI               `json:"bmi"`
	HealthRisks       []HealthRisk      `json:"health_risks"`
	Recommendations   []Recommendation  `json:"recommendations"`
	LifestyleChanges  []LifestyleChange `json:"lifestyle_changes"`
}

type BMI struct {
	Value          float64 `json:"value"`
	Category       string  `json:"category"`
	Interpretation string  `json:"interpretation"`
}

type HealthRisk struct {
	Risk        string `json:"risk"`
	Severity    string `json:"severity"`
	Description string `json:"description"`
}

type Recommendation struct {
	Category   string `json:"category"`
	Suggestion string `json:"suggestion"`
	Importance string `json:"importance"`
}

type LifestyleChange struct {
	Area          string `json:"area"`
	CurrentStatus string `json:"current_status"`
	Target        string `json:"target"`
	Timeframe     string `json:"timeframe"`
}
