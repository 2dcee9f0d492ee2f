package domain

import (
	"testing"
	"time"
)

func TestNewPlayerStartingStats(t *testing.T) {
	p := NewPlayer("neo", "neo@matrix.io", time.Now())

	if p.Progression.Vitality != VitalityMax {
		t.Errorf("vitality = %d, want %d", p.Progression.Vitality, VitalityMax)
	}
	if p.Progression.Level != 1 {
		t.Errorf("level = %d, want 1", p.Progression.Level)
	}
	if p.Progression.Experience != 0 {
		t.Errorf("experience = %d, want 0", p.Progression.Experience)
	}
	if p.Biometrics.Class != ClassGeneral {
		t.Errorf("class = %s, want %s", p.Biometrics.Class, ClassGeneral)
	}
	if p.Biometrics.DailyActivity != ActivityModerate {
		t.Errorf("activity = %s, want %s", p.Biometrics.DailyActivity, ActivityModerate)
	}
}

func TestClampVitality(t *testing.T) {
	cases := []struct {
		in, want int
	}{
		{150, 100},
		{100, 100},
		{55, 55},
		{0, 0},
		{-20, 0},
	}
	for _, tc := range cases {
		if got := ClampVitality(tc.in); got != tc.want {
			t.Errorf("ClampVitality(%d) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestProgressionApplyVitalityClamp(t *testing.T) {
	p := Progression{Vitality: 95, Level: 1}

	up := p.Apply(ChoiceOptimized, 10, 0)
	if up.Vitality != 100 {
		t.Errorf("vitality after +10 from 95 = %d, want 100", up.Vitality)
	}

	p.Vitality = 3
	down := p.Apply(ChoiceIndulgent, -8, 0)
	if down.Vitality != 0 {
		t.Errorf("vitality after -8 from 3 = %d, want 0", down.Vitality)
	}
}

func TestProgressionApplyXPRollover(t *testing.T) {
	p := Progression{Vitality: 50, Experience: 950, Level: 1}

	next := p.Apply(ChoiceOptimized, 0, 100)
	if next.Level != 2 {
		t.Errorf("level = %d, want 2", next.Level)
	}
	if next.Experience != 50 {
		t.Errorf("experience = %d, want 50", next.Experience)
	}

	// Multi-level jump in a single apply.
	p = Progression{Vitality: 50, Experience: 100, Level: 3}
	next = p.Apply(ChoiceOptimized, 0, 2500)
	if next.Level != 5 {
		t.Errorf("level = %d, want 5", next.Level)
	}
	if next.Experience != 600 {
		t.Errorf("experience = %d, want 600", next.Experience)
	}
}

func TestProgressionApplyNegativeXPFloorsAtZero(t *testing.T) {
	p := Progression{Vitality: 50, Experience: 30, Level: 2}

	next := p.Apply(ChoiceIndulgent, 0, -100)
	if next.Experience != 0 {
		t.Errorf("experience = %d, want 0", next.Experience)
	}
	if next.Level != 2 {
		t.Errorf("level = %d, want 2 (levels are never lost)", next.Level)
	}
}

func TestProgressionApplyCountersAndStreak(t *testing.T) {
	p := Progression{Vitality: 50, Level: 1, Streak: 4, GoodChoices: 7, BadChoices: 2}

	good := p.Apply(ChoiceOptimized, 5, 50)
	if good.GoodChoices != 8 || good.Streak != 5 {
		t.Errorf("good=%d streak=%d, want 8 and 5", good.GoodChoices, good.Streak)
	}
	if good.BadChoices != 2 {
		t.Errorf("bad = %d, want unchanged 2", good.BadChoices)
	}

	bad := p.Apply(ChoiceIndulgent, -5, 10)
	if bad.BadChoices != 3 {
		t.Errorf("bad = %d, want 3", bad.BadChoices)
	}
	if bad.Streak != 0 {
		t.Errorf("streak = %d, want reset to 0", bad.Streak)
	}
	if bad.GoodChoices != 7 {
		t.Errorf("good = %d, want unchanged 7", bad.GoodChoices)
	}
}

func TestRankThresholds(t *testing.T) {
	cases := []struct {
		level int
		want  Rank
	}{
		{1, RankNovice},
		{4, RankNovice},
		{5, RankIntermediate},
		{14, RankIntermediate},
		{15, RankAdvanced},
		{29, RankAdvanced},
		{30, RankExpert},
		{49, RankExpert},
		{50, RankMaster},
		{120, RankMaster},
	}
	for _, tc := range cases {
		p := Progression{Level: tc.level}
		if got := p.Rank(); got != tc.want {
			t.Errorf("Rank() at level %d = %s, want %s", tc.level, got, tc.want)
		}
	}
}

func TestValidActivityAndClass(t *testing.T) {
	if !ValidActivity(ActivityExtreme) {
		t.Error("extreme should be a valid activity level")
	}
	if ValidActivity("couch-potato") {
		t.Error("unknown activity level should be rejected")
	}
	if !ValidClass(ClassGlucoseGuardian) {
		t.Error("glucose-guardian should be a valid class")
	}
	if ValidClass("necromancer") {
		t.Error("unknown class should be rejected")
	}
}
