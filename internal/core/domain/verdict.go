package domain

import (
	"errors"
	"time"
)

// ChoiceTag names one of the two outcomes offered per scan.
type ChoiceTag string

const (
	// ChoiceIndulgent is the "eat it anyway" outcome (the red pill).
	ChoiceIndulgent ChoiceTag = "A"
	// ChoiceOptimized is the disciplined alternative (the blue pill).
	ChoiceOptimized ChoiceTag = "B"
)

var ErrUnknownChoiceTag = errors.New("unknown choice tag")

// ParseChoiceTag validates a caller-supplied tag.
func ParseChoiceTag(s string) (ChoiceTag, error) {
	switch ChoiceTag(s) {
	case ChoiceIndulgent, ChoiceOptimized:
		return ChoiceTag(s), nil
	}
	return "", ErrUnknownChoiceTag
}

// Outcome is one of the two consequences the oracle attaches to a food.
// Which tag is "healthy" is whatever the oracle assigned; nothing downstream
// assumes a sign on either delta.
type Outcome struct {
	Narrative       string `json:"narrative"`
	VitalityDelta   int    `json:"vitality_delta"`
	ExperienceDelta int    `json:"experience_delta"`
}

// NutritionFacts are the numeric readings the oracle reports for a food.
// Absent upstream values are defaulted to zero before a verdict leaves the
// oracle.
type NutritionFacts struct {
	Calories float64 `json:"calories"`
	SugarG   float64 `json:"sugar_g"`
	SodiumMg float64 `json:"sodium_mg"`
	ProteinG float64 `json:"protein_g"`
}

// ScanVerdict is the fully populated result of evaluating one food input.
// It lives only inside an active scan session until a choice is committed.
type ScanVerdict struct {
	FoodName      string         `json:"food_name"`
	SensorReadout string         `json:"sensor_readout"`
	Nutrition     NutritionFacts `json:"nutrition"`
	Warnings      []string       `json:"warnings"`
	IsHealthy     bool           `json:"is_healthy"`
	Indulgent     Outcome        `json:"indulgent"`
	Optimized     Outcome        `json:"optimized"`
}

// OutcomeFor returns the outcome a tag refers to.
func (v *ScanVerdict) OutcomeFor(tag ChoiceTag) (Outcome, error) {
	switch tag {
	case ChoiceIndulgent:
		return v.Indulgent, nil
	case ChoiceOptimized:
		return v.Optimized, nil
	}
	return Outcome{}, ErrUnknownChoiceTag
}

// ChoiceRecord is the immutable audit entry written once per committed scan.
type ChoiceRecord struct {
	ID              string    `json:"id" bson:"_id,omitempty"`
	PlayerID        string    `json:"player_id" bson:"player_id"`
	FoodName        string    `json:"food_name" bson:"food_name"`
	Tag             ChoiceTag `json:"tag" bson:"tag"`
	VitalityDelta   int       `json:"vitality_delta" bson:"vitality_delta"`
	ExperienceDelta int       `json:"experience_delta" bson:"experience_delta"`
	Narrative       string    `json:"narrative" bson:"narrative"`
	CreatedAt       time.Time `json:"created_at" bson:"created_at"`
}
