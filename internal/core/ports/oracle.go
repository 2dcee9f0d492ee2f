package ports

import (
	"context"

	"github.com/aeturnus/vitality-system/internal/core/domain"
)

// NutritionOracle produces a structured verdict for a named food, personalised
// to the player's biometrics. Implementations are stateless between calls and
// never retry internally; a single upstream failure is surfaced as a
// *domain.OracleError.
type NutritionOracle interface {
	Evaluate(ctx context.Context, foodName string, player *domain.Player) (*domain.ScanVerdict, error)
}

// FoodIdentifier resolves an image to a best-guess food name. Failures are
// surfaced as *domain.IdentifyError; the identifier never silently guesses.
type FoodIdentifier interface {
	Identify(ctx context.Context, image []byte, mimeType string) (*domain.IdentifiedFood, error)
}
