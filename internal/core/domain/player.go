package domain

import (
	"errors"
	"time"
)

// ActivityLevel is the self-reported daily energy expenditure of a player.
type ActivityLevel string

const (
	ActivitySedentary ActivityLevel = "sedentary"
	ActivityLight     ActivityLevel = "light"
	ActivityModerate  ActivityLevel = "moderate"
	ActivityActive    ActivityLevel = "active"
	ActivityExtreme   ActivityLevel = "extreme"
)

// ClassArchetype is the metabolic protocol a player commits to during onboarding.
type ClassArchetype string

const (
	ClassGlucoseGuardian   ClassArchetype = "glucose-guardian"
	ClassMetabolicWarrior  ClassArchetype = "metabolic-warrior"
	ClassHypertrophyTitan  ClassArchetype = "hypertrophy-titan"
	ClassPressureRegulator ClassArchetype = "pressure-regulator"
	ClassGeneral           ClassArchetype = "general"
)

// Rank is derived from level; it is never stored independently.
type Rank string

const (
	RankNovice       Rank = "NOVICE"
	RankIntermediate Rank = "INTERMEDIATE"
	RankAdvanced     Rank = "ADVANCED"
	RankExpert       Rank = "EXPERT"
	RankMaster       Rank = "MASTER"
)

const (
	// VitalityMax and VitalityMin bound the vitality stat.
	VitalityMax = 100
	VitalityMin = 0
	// XPPerLevel is the experience required to advance one level.
	XPPerLevel = 1000
)

var ErrPlayerNotFound = errors.New("player not found")
var ErrWriteConflict = errors.New("concurrent profile update detected")
var ErrPersistenceUnavailable = errors.New("persistence unavailable")
var ErrInvalidActivity = errors.New("invalid activity level")
var ErrInvalidClass = errors.New("invalid class archetype")

// ValidActivity reports whether a is one of the known activity levels.
func ValidActivity(a ActivityLevel) bool {
	switch a {
	case ActivitySedentary, ActivityLight, ActivityModerate, ActivityActive, ActivityExtreme:
		return true
	}
	return false
}

// ValidClass reports whether c is one of the known class archetypes.
func ValidClass(c ClassArchetype) bool {
	switch c {
	case ClassGlucoseGuardian, ClassMetabolicWarrior, ClassHypertrophyTitan, ClassPressureRegulator, ClassGeneral:
		return true
	}
	return false
}

// Biometrics holds the onboarding questionnaire answers used to personalise
// oracle verdicts. All fields are optional; missing values degrade the prompt
// rather than fail a scan.
type Biometrics struct {
	Age            int            `json:"age" bson:"age"`
	WeightKg       float64        `json:"weight_kg" bson:"weight_kg"`
	HeightCm       float64        `json:"height_cm" bson:"height_cm"`
	MedicalHistory string         `json:"medical_history" bson:"medical_history"`
	DailyActivity  ActivityLevel  `json:"daily_activity" bson:"daily_activity"`
	Class          ClassArchetype `json:"class" bson:"class"`
}

// Progression is the mutable stat block of a player. It is written only by
// the choice ledger.
type Progression struct {
	Vitality    int `json:"vitality" bson:"vitality"`
	Experience  int `json:"experience" bson:"experience"`
	Level       int `json:"level" bson:"level"`
	Streak      int `json:"streak" bson:"streak"`
	GoodChoices int `json:"good_choices" bson:"good_choices"`
	BadChoices  int `json:"bad_choices" bson:"bad_choices"`
}

// Player is the aggregate the whole progression system hangs off.
// Version backs the optimistic-concurrency check in the persistence layer.
type Player struct {
	ID          string      `json:"id" bson:"_id,omitempty"`
	Username    string      `json:"username" bson:"username"`
	Email       string      `json:"email,omitempty" bson:"email,omitempty"`
	Biometrics  Biometrics  `json:"biometrics" bson:"biometrics"`
	Progression Progression `json:"progression" bson:"progression"`
	Version     int64       `json:"-" bson:"version"`
	CreatedAt   time.Time   `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at" bson:"updated_at"`
}

// NewPlayer returns a player at the starting stat block.
func NewPlayer(username, email string, now time.Time) *Player {
	return &Player{
		Username: username,
		Email:    email,
		Biometrics: Biometrics{
			DailyActivity: ActivityModerate,
			Class:         ClassGeneral,
		},
		Progression: Progression{
			Vitality: VitalityMax,
			Level:    1,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Rank maps a level to its display rank.
//
//	< 5  → NOVICE
//	< 15 → INTERMEDIATE
//	< 30 → ADVANCED
//	< 50 → EXPERT
//	≥ 50 → MASTER
func (p Progression) Rank() Rank {
	switch {
	case p.Level >= 50:
		return RankMaster
	case p.Level >= 30:
		return RankExpert
	case p.Level >= 15:
		return RankAdvanced
	case p.Level >= 5:
		return RankIntermediate
	default:
		return RankNovice
	}
}

// ClampVitality bounds v to [VitalityMin, VitalityMax].
func ClampVitality(v int) int {
	if v > VitalityMax {
		return VitalityMax
	}
	if v < VitalityMin {
		return VitalityMin
	}
	return v
}

// Apply returns the progression after one committed choice. Vitality is
// clamped, experience rolls over into level at XPPerLevel, the optimized tag
// feeds the good counter and streak, the indulgent tag feeds the bad counter
// and breaks the streak.
func (p Progression) Apply(tag ChoiceTag, vitalityDelta, xpDelta int) Progression {
	next := p
	next.Vitality = ClampVitality(p.Vitality + vitalityDelta)

	rawXP := p.Experience + xpDelta
	if rawXP < 0 {
		rawXP = 0
	}
	next.Level = p.Level + rawXP/XPPerLevel
	next.Experience = rawXP % XPPerLevel

	if tag == ChoiceOptimized {
		next.GoodChoices = p.GoodChoices + 1
		next.Streak = p.Streak + 1
	} else {
		next.BadChoices = p.BadChoices + 1
		next.Streak = 0
	}
	return next
}
