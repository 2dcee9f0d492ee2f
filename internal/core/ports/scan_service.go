package ports

import (
	"context"

	"github.com/aeturnus/vitality-system/internal/core/domain"
)

// StartScanInput carries one free-text food submission.
type StartScanInput struct {
	PlayerID  string
	FoodInput string
}

// StartImageScanInput carries one photo submission. The image is identified
// before the oracle is consulted.
type StartImageScanInput struct {
	PlayerID string
	Image    []byte
	MimeType string
}

// ScanResult is returned once a session reaches awaiting-choice.
type ScanResult struct {
	ScanID     string
	FoodName   string
	Identified *domain.IdentifiedFood // set only for image scans
	Verdict    *domain.ScanVerdict
}

// CommitChoiceInput names the outcome a player picked for an open session.
type CommitChoiceInput struct {
	PlayerID string
	ScanID   string
	Tag      domain.ChoiceTag
}

// CommitResult is the progression snapshot after a committed choice.
type CommitResult struct {
	NewVitality    int
	NewExperience  int
	NewLevel       int
	NewRank        domain.Rank
	NewStreak      int
	NewGoodChoices int
	NewBadChoices  int
}

// ScanService drives the scan-to-reward state machine.
type ScanService interface {
	StartScan(ctx context.Context, input StartScanInput) (*ScanResult, error)
	StartImageScan(ctx context.Context, input StartImageScanInput) (*ScanResult, error)
	CommitChoice(ctx context.Context, input CommitChoiceInput) (*CommitResult, error)
}

// ChoiceLedger records one decision and atomically applies its stat deltas.
type ChoiceLedger interface {
	Record(ctx context.Context, playerID string, verdict *domain.ScanVerdict, tag domain.ChoiceTag) (*CommitResult, error)
}

// ScanSessionStore persists active scan sessions between requests. Entries
// expire on their own; an expired awaiting-choice session is an abandoned scan.
type ScanSessionStore interface {
	// Save upserts the session and refreshes its TTL.
	Save(ctx context.Context, s *domain.ScanSession) error
	// Find retrieves a session scoped to its owning player. A session owned
	// by another player is reported as domain.ErrScanNotFound.
	Find(ctx context.Context, playerID, scanID string) (*domain.ScanSession, error)
	// TransitionState atomically moves the stored state from from to to,
	// reporting false when the current state differs. This is the guard that
	// keeps a session to at most one ledger write.
	TransitionState(ctx context.Context, scanID string, from, to domain.ScanState) (bool, error)
}
