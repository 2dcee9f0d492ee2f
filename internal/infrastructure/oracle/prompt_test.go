package oracle

import (
	"strings"
	"testing"
	"time"

	"github.com/aeturnus/vitality-system/internal/core/domain"
)

func TestBuildVerdictPromptIncludesDossier(t *testing.T) {
	p := domain.NewPlayer("neo", "", time.Now())
	p.Biometrics.Age = 34
	p.Biometrics.WeightKg = 82
	p.Biometrics.HeightCm = 180
	p.Biometrics.MedicalHistory = "type 2 diabetes"
	p.Biometrics.Class = domain.ClassGlucoseGuardian

	prompt := buildVerdictPrompt("Doritos Nacho Cheese", p)

	for _, want := range []string{
		"[SUBJECT_DOSSIER]",
		"NAME: neo",
		"CLASS_PROTOCOL: glucose-guardian",
		"82kg / 180cm / age 34",
		"type 2 diabetes",
		`scanning "Doritos Nacho Cheese"`,
		"red_pill",
		"blue_pill",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestBuildVerdictPromptDefaultsMedicalHistory(t *testing.T) {
	p := domain.NewPlayer("neo", "", time.Now())
	prompt := buildVerdictPrompt("apple", p)

	if !strings.Contains(prompt, "MEDICAL_VULNERABILITIES: none stated") {
		t.Error("empty medical history should read as none stated")
	}
}
