package ports

import (
	"context"
	"time"

	"github.com/aeturnus/vitality-system/internal/core/domain"
)

// PlayerRepository defines persistence operations for player profiles.
type PlayerRepository interface {
	Create(ctx context.Context, p *domain.Player) (*domain.Player, error)
	FindByID(ctx context.Context, id string) (*domain.Player, error)
	FindByUsername(ctx context.Context, username string) (*domain.Player, error)
	// UpdateBiometrics replaces the onboarding answers. Progression is not
	// touched; only the ledger writes progression.
	UpdateBiometrics(ctx context.Context, id string, b domain.Biometrics) (*domain.Player, error)
}

// ChoiceFilter carries query parameters for listing a player's choice history.
type ChoiceFilter struct {
	PlayerID string
	DateFrom time.Time // optional: created_at >= DateFrom
	DateTo   time.Time // optional: created_at <= DateTo
	Page     int       // 1-based
	Limit    int       // capped at 100 by the service
}

// ChoiceRepository defines persistence for the append-only choice log and the
// atomic profile update that accompanies each entry.
type ChoiceRepository interface {
	// Commit persists rec and sets the player's progression to next as a
	// single unit: both writes succeed or neither does. The update matches
	// on expectedVersion; a mismatch with an existing profile reports
	// domain.ErrWriteConflict, a missing profile domain.ErrPlayerNotFound.
	Commit(ctx context.Context, playerID string, expectedVersion int64, next domain.Progression, rec *domain.ChoiceRecord) error
	// List returns a page of records for a player, newest first, plus the
	// total count for the filter.
	List(ctx context.Context, filter ChoiceFilter) ([]*domain.ChoiceRecord, int64, error)
	// CountByTag returns the number of optimized and indulgent records a
	// player committed since the given instant.
	CountByTag(ctx context.Context, playerID string, since time.Time) (good, bad int64, err error)
}
