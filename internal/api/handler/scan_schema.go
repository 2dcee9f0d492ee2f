package handler

// envelope is the response shape for scan and choice endpoints: exactly one
// of data or error is set.
type envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

func okEnvelope(data interface{}) envelope {
	return envelope{Success: true, Data: data}
}

func errEnvelope(msg string) envelope {
	return envelope{Success: false, Error: msg}
}

// errorResponse is the standard error envelope on non-enveloped endpoints.
type errorResponse struct {
	Error string `json:"error"`
}

// --- Request types ---

type startScanRequest struct {
	FoodInput string `json:"food_input" validate:"required,min=1,max=200"`
}

type commitChoiceRequest struct {
	ScanID    string `json:"scan_id"    validate:"required"`
	ChosenTag string `json:"chosen_tag" validate:"required,oneof=A B"`
}

// --- Response types ---
// Owned by the transport layer so the JSON contract is not coupled to
// internal service changes.

type outcomeResponse struct {
	Tag             string `json:"tag"`
	Narrative       string `json:"narrative"`
	VitalityDelta   int    `json:"vitality_delta"`
	ExperienceDelta int    `json:"experience_delta"`
}

type nutritionResponse struct {
	Calories float64 `json:"calories"`
	SugarG   float64 `json:"sugar_g"`
	SodiumMg float64 `json:"sodium_mg"`
	ProteinG float64 `json:"protein_g"`
}

type identifiedResponse struct {
	Name       string `json:"name"`
	Confidence string `json:"confidence"`
}

type scanResponse struct {
	ScanID        string              `json:"scan_id"`
	FoodName      string              `json:"food_name"`
	Identified    *identifiedResponse `json:"identified,omitempty"`
	SensorReadout string              `json:"sensor_readout"`
	Nutrition     nutritionResponse   `json:"nutrition"`
	Warnings      []string            `json:"warnings"`
	IsHealthy     bool                `json:"is_healthy"`
	Indulgent     outcomeResponse     `json:"indulgent"`
	Optimized     outcomeResponse     `json:"optimized"`
}

type commitChoiceResponse struct {
	NewVitality    int    `json:"new_vitality"`
	NewExperience  int    `json:"new_experience"`
	NewLevel       int    `json:"new_level"`
	NewRank        string `json:"new_rank"`
	NewStreak      int    `json:"new_streak"`
	NewGoodChoices int    `json:"new_good_choices"`
	NewBadChoices  int    `json:"new_bad_choices"`
}
