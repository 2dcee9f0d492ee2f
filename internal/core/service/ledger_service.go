package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/aeturnus/vitality-system/internal/core/domain"
	"github.com/aeturnus/vitality-system/internal/core/ports"
)

type ledgerService struct {
	players ports.PlayerRepository
	choices ports.ChoiceRepository
	log     zerolog.Logger
}

// NewLedgerService returns the ChoiceLedger implementation. It is the only
// writer of player progression.
func NewLedgerService(players ports.PlayerRepository, choices ports.ChoiceRepository, log zerolog.Logger) ports.ChoiceLedger {
	return &ledgerService{players: players, choices: choices, log: log}
}

// Record reads the player snapshot, applies the chosen outcome's deltas, and
// persists the choice record together with the updated progression as one
// unit. A concurrent update of the same player surfaces as
// domain.ErrWriteConflict; the caller retries with a fresh read. Nothing is
// retried here.
func (s *ledgerService) Record(ctx context.Context, playerID string, verdict *domain.ScanVerdict, tag domain.ChoiceTag) (*ports.CommitResult, error) {
	outcome, err := verdict.OutcomeFor(tag)
	if err != nil {
		return nil, err
	}

	player, err := s.players.FindByID(ctx, playerID)
	if err != nil {
		return nil, err
	}

	next := player.Progression.Apply(tag, outcome.VitalityDelta, outcome.ExperienceDelta)

	rec := &domain.ChoiceRecord{
		PlayerID:        playerID,
		FoodName:        verdict.FoodName,
		Tag:             tag,
		VitalityDelta:   outcome.VitalityDelta,
		ExperienceDelta: outcome.ExperienceDelta,
		Narrative:       outcome.Narrative,
		CreatedAt:       time.Now().UTC(),
	}

	if err := s.choices.Commit(ctx, playerID, player.Version, next, rec); err != nil {
		s.log.Error().Err(err).
			Str("player_id", playerID).
			Str("food", verdict.FoodName).
			Msg("failed to commit choice")
		return nil, err
	}

	s.log.Info().
		Str("player_id", playerID).
		Str("food", verdict.FoodName).
		Str("tag", string(tag)).
		Int("vitality", next.Vitality).
		Int("level", next.Level).
		Msg("choice recorded")

	return &ports.CommitResult{
		NewVitality:    next.Vitality,
		NewExperience:  next.Experience,
		NewLevel:       next.Level,
		NewRank:        next.Rank(),
		NewStreak:      next.Streak,
		NewGoodChoices: next.GoodChoices,
		NewBadChoices:  next.BadChoices,
	}, nil
}
