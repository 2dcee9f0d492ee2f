package ports

import (
	"context"

	"github.com/aeturnus/vitality-system/internal/core/domain"
)

// UpdateBiometricsInput carries the onboarding questionnaire answers.
type UpdateBiometricsInput struct {
	PlayerID       string
	Age            int
	WeightKg       float64
	HeightCm       float64
	MedicalHistory string
	DailyActivity  string
	Class          string
}

// ChoicePage is one page of a player's choice history, newest first.
type ChoicePage struct {
	Items      []*domain.ChoiceRecord
	Total      int64
	Page       int
	Limit      int
	TotalPages int
}

// WeeklyReport aggregates the last seven days of committed choices.
type WeeklyReport struct {
	Scans       int64
	GoodChoices int64
	BadChoices  int64
	// HealthScore is 50 + goodRatio*50 rounded, on a 50-100 scale;
	// 50 when no choices were made in the window.
	HealthScore int
}

// PlayerService exposes profile reads and onboarding writes to the API layer.
type PlayerService interface {
	GetProfile(ctx context.Context, playerID string) (*domain.Player, error)
	UpdateBiometrics(ctx context.Context, input UpdateBiometricsInput) (*domain.Player, error)
	// GetByUsername is the admin-only lookup.
	GetByUsername(ctx context.Context, username string) (*domain.Player, error)
	ListChoices(ctx context.Context, filter ChoiceFilter) (*ChoicePage, error)
	WeeklyReport(ctx context.Context, playerID string) (*WeeklyReport, error)
}
