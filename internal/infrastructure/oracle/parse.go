package oracle

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aeturnus/vitality-system/internal/core/domain"
)

// fallbackNarrative fills an outcome whose explanation the model omitted.
const fallbackNarrative = "No analysis available for this outcome."

// rawOutcome mirrors one pill object in the model reply. Pointers distinguish
// "absent" from zero so the defaulting pass stays explicit.
type rawOutcome struct {
	Truth         string   `json:"truth"`
	Optimization  string   `json:"optimization"`
	VitalityDelta *float64 `json:"vitality_delta"`
	XPDelta       *float64 `json:"xp_delta"`
}

// rawVerdict mirrors the JSON contract stated in the prompt.
type rawVerdict struct {
	SensorReadout string      `json:"sensor_readout"`
	Calories      *float64    `json:"calories"`
	SugarG        *float64    `json:"sugar_g"`
	SodiumMg      *float64    `json:"sodium_mg"`
	ProteinG      *float64    `json:"protein_g"`
	Warnings      []string    `json:"warnings"`
	IsHealthy     *bool       `json:"is_healthy"`
	RedPill       *rawOutcome `json:"red_pill"`
	BluePill      *rawOutcome `json:"blue_pill"`
}

// parseVerdict turns the untrusted model reply into a fully populated verdict.
// All-or-nothing: undecodable input is an error, decodable input has every
// missing field defaulted here and nowhere else.
func parseVerdict(raw, foodName string) (*domain.ScanVerdict, error) {
	cleaned := stripFences(raw)

	var rv rawVerdict
	if err := json.Unmarshal([]byte(cleaned), &rv); err != nil {
		return nil, fmt.Errorf("decode verdict: %w", err)
	}

	verdict := &domain.ScanVerdict{
		FoodName:      foodName,
		SensorReadout: rv.SensorReadout,
		Nutrition: domain.NutritionFacts{
			Calories: floatOrZero(rv.Calories),
			SugarG:   floatOrZero(rv.SugarG),
			SodiumMg: floatOrZero(rv.SodiumMg),
			ProteinG: floatOrZero(rv.ProteinG),
		},
		Warnings:  rv.Warnings,
		Indulgent: toOutcome(rv.RedPill, func(o *rawOutcome) string { return o.Truth }),
		Optimized: toOutcome(rv.BluePill, func(o *rawOutcome) string { return o.Optimization }),
	}

	if verdict.SensorReadout == "" {
		verdict.SensorReadout = "Sensor readout unavailable."
	}
	if verdict.Warnings == nil {
		verdict.Warnings = []string{}
	}
	if rv.IsHealthy != nil {
		verdict.IsHealthy = *rv.IsHealthy
	} else {
		// Derive from whether the optimized path actually restores vitality.
		verdict.IsHealthy = verdict.Optimized.VitalityDelta > 0
	}

	return verdict, nil
}

// toOutcome defaults one pill: missing object, narrative or deltas all
// collapse to safe values rather than nulls.
func toOutcome(o *rawOutcome, narrative func(*rawOutcome) string) domain.Outcome {
	if o == nil {
		return domain.Outcome{Narrative: fallbackNarrative}
	}
	n := narrative(o)
	if n == "" {
		n = fallbackNarrative
	}
	return domain.Outcome{
		Narrative:       n,
		VitalityDelta:   int(floatOrZero(o.VitalityDelta)),
		ExperienceDelta: int(floatOrZero(o.XPDelta)),
	}
}

func floatOrZero(f *float64) float64 {
	if f == nil {
		return 0
	}
	return *f
}

// stripFences removes a leading ```/```json line and a trailing ``` line.
// Models wrap JSON in markdown fences even when told not to.
func stripFences(s string) string {
	out := strings.TrimSpace(s)
	if !strings.HasPrefix(out, "```") {
		return out
	}
	if idx := strings.IndexByte(out, '\n'); idx >= 0 {
		out = out[idx+1:]
	} else {
		out = strings.TrimPrefix(out, "```json")
		out = strings.TrimPrefix(out, "```")
	}
	out = strings.TrimSpace(out)
	out = strings.TrimSuffix(out, "```")
	return strings.TrimSpace(out)
}
