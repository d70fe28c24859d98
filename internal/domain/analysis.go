package domain

// NutritionInfo holds estimated nutrition values for a single item. Values are
// strings because the model reports ranges and units ("350 kcal", "12-15g").
type NutritionInfo struct {
	Calories string   `json:"calories,omitempty"`
	Protein  string   `json:"protein,omitempty"`
	Carbs    string   `json:"carbs,omitempty"`
	Fats     string   `json:"fats,omitempty"`
	Vitamins []string `json:"vitamins,omitempty"`
}

// AnalyzedItem is one identified food component of the meal
type AnalyzedItem struct {
	Name             string         `json:"name"`
	EstimatedPortion string         `json:"estimated_portion,omitempty"`
	Confidence       float64        `json:"confidence"`
	Description      string         `json:"description,omitempty"`
	Nutrition        *NutritionInfo `json:"nutrition,omitempty"`
	SearchInsights   map[string]any `json:"search_insights,omitempty"`
}

// FoodAnalysis is the final structured nutrition report for an image
type FoodAnalysis struct {
	OverallDescription    string         `json:"overall_description"`
	Items                 []AnalyzedItem `json:"items"`
	TotalCaloriesEstimate string         `json:"total_calories_estimate,omitempty"`
	HealthScore           int            `json:"health_score,omitempty"`
	DietaryWarnings       []string       `json:"dietary_warnings,omitempty"`
}

// GenerationRequest is the input to a model backend. ImageJPEG is nil for
// text-only synthesis calls. DeepSearch selects the heavier local model when
// the chain falls back to on-device inference.
type GenerationRequest struct {
	Prompt     string
	ImageJPEG  []byte
	DeepSearch bool
}
