package service

import (
	"context"
	"math"
	"time"

	"github.com/rs/zerolog"

	"github.com/aeturnus/vitality-system/internal/core/domain"
	"github.com/aeturnus/vitality-system/internal/core/ports"
)

const (
	maxChoicePageLimit     = 100
	defaultChoicePageLimit = 20
	weeklyReportWindow     = 7 * 24 * time.Hour
)

type playerService struct {
	players ports.PlayerRepository
	choices ports.ChoiceRepository
	log     zerolog.Logger
}

// NewPlayerService returns the PlayerService implementation backing profile
// reads, onboarding updates, history and reports.
func NewPlayerService(players ports.PlayerRepository, choices ports.ChoiceRepository, log zerolog.Logger) ports.PlayerService {
	return &playerService{players: players, choices: choices, log: log}
}

func (s *playerService) GetProfile(ctx context.Context, playerID string) (*domain.Player, error) {
	return s.players.FindByID(ctx, playerID)
}

func (s *playerService) GetByUsername(ctx context.Context, username string) (*domain.Player, error) {
	return s.players.FindByUsername(ctx, username)
}

// UpdateBiometrics validates and stores the onboarding answers. Progression is
// untouched: only the ledger writes stats.
func (s *playerService) UpdateBiometrics(ctx context.Context, input ports.UpdateBiometricsInput) (*domain.Player, error) {
	activity := domain.ActivityLevel(input.DailyActivity)
	if input.DailyActivity == "" {
		activity = domain.ActivityModerate
	}
	if !domain.ValidActivity(activity) {
		return nil, domain.ErrInvalidActivity
	}

	class := domain.ClassArchetype(input.Class)
	if input.Class == "" {
		class = domain.ClassGeneral
	}
	if !domain.ValidClass(class) {
		return nil, domain.ErrInvalidClass
	}

	updated, err := s.players.UpdateBiometrics(ctx, input.PlayerID, domain.Biometrics{
		Age:            input.Age,
		WeightKg:       input.WeightKg,
		HeightCm:       input.HeightCm,
		MedicalHistory: input.MedicalHistory,
		DailyActivity:  activity,
		Class:          class,
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("player_id", input.PlayerID).Str("class", string(class)).Msg("biometrics updated")
	return updated, nil
}

func (s *playerService) ListChoices(ctx context.Context, filter ports.ChoiceFilter) (*ports.ChoicePage, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit <= 0 {
		filter.Limit = defaultChoicePageLimit
	}
	if filter.Limit > maxChoicePageLimit {
		filter.Limit = maxChoicePageLimit
	}

	items, total, err := s.choices.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	totalPages := int(math.Ceil(float64(total) / float64(filter.Limit)))
	return &ports.ChoicePage{
		Items:      items,
		Total:      total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: totalPages,
	}, nil
}

// WeeklyReport aggregates the last seven days of committed choices. The
// health score sits on a 50-100 scale: 50 + goodRatio*50, 50 when the window
// is empty.
func (s *playerService) WeeklyReport(ctx context.Context, playerID string) (*ports.WeeklyReport, error) {
	since := time.Now().UTC().Add(-weeklyReportWindow)

	good, bad, err := s.choices.CountByTag(ctx, playerID, since)
	if err != nil {
		return nil, err
	}

	report := &ports.WeeklyReport{
		Scans:       good + bad,
		GoodChoices: good,
		BadChoices:  bad,
		HealthScore: 50,
	}
	if report.Scans > 0 {
		ratio := float64(good) / float64(report.Scans)
		report.HealthScore = int(math.Round(50 + ratio*50))
	}

	return report, nil
}
