package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/aeturnus/vitality-system/internal/core/domain"
	"github.com/aeturnus/vitality-system/internal/core/ports"
)

var ErrEmptyFoodInput = errors.New("food input cannot be empty")

type scanService struct {
	players    ports.PlayerRepository
	oracle     ports.NutritionOracle
	identifier ports.FoodIdentifier
	sessions   ports.ScanSessionStore
	ledger     ports.ChoiceLedger
	log        zerolog.Logger
}

// NewScanService wires the scan-to-reward state machine: identifier (images
// only) → oracle → player decision → ledger.
func NewScanService(
	players ports.PlayerRepository,
	oracle ports.NutritionOracle,
	identifier ports.FoodIdentifier,
	sessions ports.ScanSessionStore,
	ledger ports.ChoiceLedger,
	log zerolog.Logger,
) ports.ScanService {
	return &scanService{
		players:    players,
		oracle:     oracle,
		identifier: identifier,
		sessions:   sessions,
		ledger:     ledger,
		log:        log,
	}
}

// StartScan runs a free-text food input straight to evaluation.
func (s *scanService) StartScan(ctx context.Context, input ports.StartScanInput) (*ports.ScanResult, error) {
	if input.FoodInput == "" {
		return nil, ErrEmptyFoodInput
	}

	sess := newSession(input.PlayerID)
	if err := sess.Advance(domain.ScanEvaluating); err != nil {
		return nil, err
	}
	sess.FoodName = input.FoodInput

	return s.evaluate(ctx, sess, nil)
}

// StartImageScan identifies the food in the image first, then evaluates it.
func (s *scanService) StartImageScan(ctx context.Context, input ports.StartImageScanInput) (*ports.ScanResult, error) {
	sess := newSession(input.PlayerID)
	if err := sess.Advance(domain.ScanIdentifying); err != nil {
		return nil, err
	}

	identified, err := s.identifier.Identify(ctx, input.Image, input.MimeType)
	if err != nil {
		sess.Fail("identify")
		s.log.Warn().Err(err).Str("scan_id", sess.ID).Msg("food identification failed")
		return nil, err
	}

	if err := sess.Advance(domain.ScanEvaluating); err != nil {
		return nil, err
	}
	sess.FoodName = identified.Name

	return s.evaluate(ctx, sess, identified)
}

// evaluate consults the oracle and parks the session in awaiting-choice.
func (s *scanService) evaluate(ctx context.Context, sess *domain.ScanSession, identified *domain.IdentifiedFood) (*ports.ScanResult, error) {
	player, err := s.players.FindByID(ctx, sess.PlayerID)
	if err != nil {
		return nil, err
	}

	verdict, err := s.oracle.Evaluate(ctx, sess.FoodName, player)
	if err != nil {
		var oe *domain.OracleError
		if errors.As(err, &oe) {
			sess.Fail(string(oe.Kind))
		} else {
			sess.Fail("oracle")
		}
		s.log.Warn().Err(err).Str("scan_id", sess.ID).Str("food", sess.FoodName).Msg("oracle evaluation failed")
		return nil, err
	}

	if err := sess.Advance(domain.ScanAwaitingChoice); err != nil {
		return nil, err
	}
	sess.Verdict = verdict

	if err := s.sessions.Save(ctx, sess); err != nil {
		return nil, fmt.Errorf("%w: save scan session: %v", domain.ErrPersistenceUnavailable, err)
	}

	s.log.Info().
		Str("scan_id", sess.ID).
		Str("player_id", sess.PlayerID).
		Str("food", sess.FoodName).
		Msg("scan awaiting choice")

	return &ports.ScanResult{
		ScanID:     sess.ID,
		FoodName:   sess.FoodName,
		Identified: identified,
		Verdict:    verdict,
	}, nil
}

// CommitChoice records the player's decision for an open session exactly once.
// The awaiting-choice → committing swap is the idempotency guard: whichever
// caller wins the swap owns the single ledger write. On a retryable ledger
// failure the session is swapped back so the same verdict can be committed
// again.
func (s *scanService) CommitChoice(ctx context.Context, input ports.CommitChoiceInput) (*ports.CommitResult, error) {
	if _, err := domain.ParseChoiceTag(string(input.Tag)); err != nil {
		return nil, err
	}

	sess, err := s.sessions.Find(ctx, input.PlayerID, input.ScanID)
	if err != nil {
		return nil, err
	}

	switch sess.State {
	case domain.ScanAwaitingChoice:
	case domain.ScanCommitted:
		return nil, domain.ErrChoiceAlreadyCommitted
	case domain.ScanCommitting:
		return nil, domain.ErrCommitInProgress
	default:
		return nil, fmt.Errorf("%w: cannot choose from %s", domain.ErrInvalidScanTransition, sess.State)
	}

	won, err := s.sessions.TransitionState(ctx, sess.ID, domain.ScanAwaitingChoice, domain.ScanCommitting)
	if err != nil {
		return nil, fmt.Errorf("%w: acquire commit: %v", domain.ErrPersistenceUnavailable, err)
	}
	if !won {
		// Lost the race: someone else moved the session first.
		current, findErr := s.sessions.Find(ctx, input.PlayerID, input.ScanID)
		if findErr == nil && current.State == domain.ScanCommitted {
			return nil, domain.ErrChoiceAlreadyCommitted
		}
		return nil, domain.ErrCommitInProgress
	}

	result, err := s.ledger.Record(ctx, input.PlayerID, sess.Verdict, input.Tag)
	if err != nil {
		if errors.Is(err, domain.ErrWriteConflict) || errors.Is(err, domain.ErrPersistenceUnavailable) {
			// Retryable: hand the session back so the caller can commit the
			// same verdict again.
			if _, rbErr := s.sessions.TransitionState(ctx, sess.ID, domain.ScanCommitting, domain.ScanAwaitingChoice); rbErr != nil {
				s.log.Error().Err(rbErr).Str("scan_id", sess.ID).Msg("failed to release commit guard")
			}
			return nil, err
		}
		if _, failErr := s.sessions.TransitionState(ctx, sess.ID, domain.ScanCommitting, domain.ScanFailed); failErr != nil {
			s.log.Error().Err(failErr).Str("scan_id", sess.ID).Msg("failed to mark scan failed")
		}
		return nil, err
	}

	if _, err := s.sessions.TransitionState(ctx, sess.ID, domain.ScanCommitting, domain.ScanCommitted); err != nil {
		// The ledger write landed; the stale guard only blocks replays.
		s.log.Error().Err(err).Str("scan_id", sess.ID).Msg("failed to mark scan committed")
	}

	return result, nil
}

func newSession(playerID string) *domain.ScanSession {
	return &domain.ScanSession{
		ID:        generateScanID(),
		PlayerID:  playerID,
		State:     domain.ScanIdle,
		CreatedAt: time.Now().UTC(),
	}
}

// generateScanID returns a unique scan identifier in the format SCAN-XXXXXXXXXXXXXXXX.
func generateScanID() string {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		// fallback: use current nanoseconds
		return fmt.Sprintf("SCAN-%016X", time.Now().UnixNano())
	}
	return fmt.Sprintf("SCAN-%016X", b)
}
