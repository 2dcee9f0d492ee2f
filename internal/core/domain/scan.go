package domain

import (
	"errors"
	"fmt"
	"time"
)

// ScanState is the lifecycle state of one scan session.
type ScanState string

const (
	ScanIdle           ScanState = "idle"
	ScanIdentifying    ScanState = "identifying"
	ScanEvaluating     ScanState = "evaluating"
	ScanAwaitingChoice ScanState = "awaiting_choice"
	// ScanCommitting is the short-lived guard state held while the ledger
	// write is in flight. It keeps a second commit from slipping in.
	ScanCommitting ScanState = "committing"
	ScanCommitted  ScanState = "committed"
	ScanFailed     ScanState = "failed"
	ScanAbandoned  ScanState = "abandoned"
)

// validScanTransitions defines the allowed state machine transitions.
// Failed is additionally reachable from every non-terminal state.
var validScanTransitions = map[ScanState][]ScanState{
	ScanIdle:           {ScanIdentifying, ScanEvaluating},
	ScanIdentifying:    {ScanEvaluating},
	ScanEvaluating:     {ScanAwaitingChoice},
	ScanAwaitingChoice: {ScanCommitting, ScanAbandoned},
	ScanCommitting:     {ScanCommitted, ScanAwaitingChoice},
}

var ErrScanNotFound = errors.New("scan session not found")
var ErrInvalidScanTransition = errors.New("invalid scan state transition")
var ErrChoiceAlreadyCommitted = errors.New("choice already committed for this scan")
var ErrCommitInProgress = errors.New("commit already in progress for this scan")

// Terminal reports whether s admits no further transitions.
func (s ScanState) Terminal() bool {
	return s == ScanCommitted || s == ScanFailed || s == ScanAbandoned
}

// CanTransitionTo reports whether a transition from s to next is valid.
func (s ScanState) CanTransitionTo(next ScanState) bool {
	if next == ScanFailed {
		return !s.Terminal()
	}
	for _, allowed := range validScanTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// ScanSession carries one food input from submission to a committed choice.
// It is scoped to a single player; sessions never share state.
type ScanSession struct {
	ID        string       `json:"id"`
	PlayerID  string       `json:"player_id"`
	State     ScanState    `json:"state"`
	FoodName  string       `json:"food_name"`
	Verdict   *ScanVerdict `json:"verdict,omitempty"`
	FailKind  string       `json:"fail_kind,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
}

// Advance moves the session to next, enforcing the transition table.
func (s *ScanSession) Advance(next ScanState) error {
	if !s.State.CanTransitionTo(next) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidScanTransition, s.State, next)
	}
	s.State = next
	return nil
}

// Fail marks the session failed with a short machine-readable kind.
func (s *ScanSession) Fail(kind string) {
	s.State = ScanFailed
	s.FailKind = kind
}
