package oracle

import (
	"fmt"
	"strings"

	"github.com/aeturnus/vitality-system/internal/core/domain"
)

// buildVerdictPrompt assembles the dossier prompt. Missing biometric fields
// degrade the dossier, never the call.
func buildVerdictPrompt(foodName string, player *domain.Player) string {
	medical := player.Biometrics.MedicalHistory
	if medical == "" {
		medical = "none stated"
	}

	var b strings.Builder
	b.WriteString("ROLE: You are a biological health oracle optimizing one human subject.\n\n")
	b.WriteString("[SUBJECT_DOSSIER]\n")
	fmt.Fprintf(&b, "- NAME: %s\n", player.Username)
	fmt.Fprintf(&b, "- CLASS_PROTOCOL: %s\n", player.Biometrics.Class)
	fmt.Fprintf(&b, "- BIOMETRICS: %.0fkg / %.0fcm / age %d\n", player.Biometrics.WeightKg, player.Biometrics.HeightCm, player.Biometrics.Age)
	fmt.Fprintf(&b, "- MEDICAL_VULNERABILITIES: %s\n", medical)
	fmt.Fprintf(&b, "- ENERGY_EXPENDITURE: %s\n\n", player.Biometrics.DailyActivity)
	fmt.Fprintf(&b, "[INPUT_SIGNAL]: scanning %q\n\n", foodName)
	b.WriteString(`[PROCESSING_INSTRUCTIONS]:
1. Estimate the metabolic impact of this food for the subject's age, weight and class protocol.
2. RED_PILL is the consequence of eating it as-is; infer the subject's likely intent and state it briefly. Do not penalize food that is genuinely healthy for the subject.
3. BLUE_PILL is a superior alternative that satisfies the same craving within the class protocol, or a way to neutralize the red pill.
4. Vitality impact ranges -100 to +20; harshly penalize foods that trigger stated medical vulnerabilities. XP ranges 0 to 100; reward the blue pill significantly higher for discipline.
`)
	b.WriteString(`
OUTPUT ONLY VALID JSON:
{
  "sensor_readout": "one-sentence technical analysis of the food's quality",
  "calories": 0,
  "sugar_g": 0,
  "sodium_mg": 0,
  "protein_g": 0,
  "warnings": ["short warning strings, may be empty"],
  "is_healthy": false,
  "red_pill": { "truth": "...", "vitality_delta": 0, "xp_delta": 0 },
  "blue_pill": { "optimization": "...", "vitality_delta": 0, "xp_delta": 0 }
}
`)
	return b.String()
}

// identifyPrompt is the instruction sent alongside a food photo.
const identifyPrompt = `Identify the single most likely food or drink in this photo.

OUTPUT ONLY VALID JSON:
{
  "food_name": "common name of the food, empty string if no food is visible",
  "confidence": "high | medium | low"
}
`
