package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/aeturnus/vitality-system/internal/core/domain"
	"github.com/aeturnus/vitality-system/internal/core/ports"
)

// ---------------------------------------------------------------------------
// In-memory stubs shared by the service tests
// ---------------------------------------------------------------------------

type stubPlayerRepo struct {
	mu      sync.Mutex
	byID    map[string]*domain.Player
	nextID  int
	findErr error // if set, FindByID returns this error
}

func newStubPlayerRepo() *stubPlayerRepo {
	return &stubPlayerRepo{byID: make(map[string]*domain.Player)}
}

func (r *stubPlayerRepo) seed(p *domain.Player) *domain.Player {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p.ID == "" {
		r.nextID++
		p.ID = fmt.Sprintf("player-%d", r.nextID)
	}
	if p.Version == 0 {
		p.Version = 1
	}
	clone := *p
	r.byID[p.ID] = &clone
	return p
}

func (r *stubPlayerRepo) Create(_ context.Context, p *domain.Player) (*domain.Player, error) {
	r.mu.Lock()
	for _, existing := range r.byID {
		if existing.Username == p.Username {
			r.mu.Unlock()
			return nil, domain.ErrUserExists
		}
	}
	r.mu.Unlock()
	return r.seed(p), nil
}

func (r *stubPlayerRepo) FindByID(_ context.Context, id string) (*domain.Player, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return nil, r.findErr
	}
	p, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrPlayerNotFound
	}
	clone := *p
	return &clone, nil
}

func (r *stubPlayerRepo) FindByUsername(_ context.Context, username string) (*domain.Player, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.byID {
		if p.Username == username {
			clone := *p
			return &clone, nil
		}
	}
	return nil, domain.ErrPlayerNotFound
}

func (r *stubPlayerRepo) UpdateBiometrics(_ context.Context, id string, b domain.Biometrics) (*domain.Player, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrPlayerNotFound
	}
	p.Biometrics = b
	p.Version++
	p.UpdatedAt = time.Now().UTC()
	clone := *p
	return &clone, nil
}

// stubChoiceRepo mirrors the transactional Mongo repo: Commit checks the
// player's version and applies the progression and the record as one unit.
type stubChoiceRepo struct {
	mu        sync.Mutex
	players   *stubPlayerRepo
	records   []*domain.ChoiceRecord
	commitErr error // if set, Commit returns this error without writing
}

func newStubChoiceRepo(players *stubPlayerRepo) *stubChoiceRepo {
	return &stubChoiceRepo{players: players}
}

func (r *stubChoiceRepo) Commit(_ context.Context, playerID string, expectedVersion int64, next domain.Progression, rec *domain.ChoiceRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.commitErr != nil {
		return r.commitErr
	}

	r.players.mu.Lock()
	defer r.players.mu.Unlock()

	p, ok := r.players.byID[playerID]
	if !ok {
		return domain.ErrPlayerNotFound
	}
	if p.Version != expectedVersion {
		return domain.ErrWriteConflict
	}

	p.Progression = next
	p.Version++
	clone := *rec
	clone.ID = fmt.Sprintf("choice-%d", len(r.records)+1)
	r.records = append(r.records, &clone)
	return nil
}

func (r *stubChoiceRepo) List(_ context.Context, f ports.ChoiceFilter) ([]*domain.ChoiceRecord, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var matched []*domain.ChoiceRecord
	for _, rec := range r.records {
		if rec.PlayerID != f.PlayerID {
			continue
		}
		if !f.DateFrom.IsZero() && rec.CreatedAt.Before(f.DateFrom) {
			continue
		}
		if !f.DateTo.IsZero() && rec.CreatedAt.After(f.DateTo) {
			continue
		}
		matched = append(matched, rec)
	}

	total := int64(len(matched))
	start := (f.Page - 1) * f.Limit
	if start >= len(matched) {
		return nil, total, nil
	}
	end := start + f.Limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

func (r *stubChoiceRepo) CountByTag(_ context.Context, playerID string, since time.Time) (int64, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var good, bad int64
	for _, rec := range r.records {
		if rec.PlayerID != playerID || rec.CreatedAt.Before(since) {
			continue
		}
		if rec.Tag == domain.ChoiceOptimized {
			good++
		} else {
			bad++
		}
	}
	return good, bad, nil
}

// stubSessionStore is an in-memory ScanSessionStore with the same CAS
// semantics as the Redis-backed one.
type stubSessionStore struct {
	mu       sync.Mutex
	sessions map[string]*domain.ScanSession
	saveErr  error
}

func newStubSessionStore() *stubSessionStore {
	return &stubSessionStore{sessions: make(map[string]*domain.ScanSession)}
}

func (s *stubSessionStore) Save(_ context.Context, sess *domain.ScanSession) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	clone := *sess
	s.sessions[sess.ID] = &clone
	return nil
}

func (s *stubSessionStore) Find(_ context.Context, playerID, scanID string) (*domain.ScanSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[scanID]
	if !ok || sess.PlayerID != playerID {
		return nil, domain.ErrScanNotFound
	}
	clone := *sess
	return &clone, nil
}

func (s *stubSessionStore) TransitionState(_ context.Context, scanID string, from, to domain.ScanState) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[scanID]
	if !ok {
		return false, domain.ErrScanNotFound
	}
	if sess.State != from {
		return false, nil
	}
	sess.State = to
	return true, nil
}

func (s *stubSessionStore) state(scanID string) domain.ScanState {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[scanID]
	if !ok {
		return ""
	}
	return sess.State
}

// stubOracle returns a canned verdict, or an error when set.
type stubOracle struct {
	verdict *domain.ScanVerdict
	err     error
	calls   int
}

func (o *stubOracle) Evaluate(ctx context.Context, foodName string, _ *domain.Player) (*domain.ScanVerdict, error) {
	o.calls++
	if err := ctx.Err(); err != nil {
		return nil, &domain.OracleError{Kind: domain.OracleCancelled, Message: err.Error()}
	}
	if o.err != nil {
		return nil, o.err
	}
	v := *o.verdict
	v.FoodName = foodName
	return &v, nil
}

// stubIdentifier returns a canned identification, or an error when set.
type stubIdentifier struct {
	food *domain.IdentifiedFood
	err  error
}

func (i *stubIdentifier) Identify(_ context.Context, _ []byte, _ string) (*domain.IdentifiedFood, error) {
	if i.err != nil {
		return nil, i.err
	}
	return i.food, nil
}

// stubAuthRepo is an in-memory AuthRepository.
type stubAuthRepo struct {
	mu     sync.Mutex
	byName map[string]*domain.User
	nextID int
}

func newStubAuthRepo() *stubAuthRepo {
	return &stubAuthRepo{byName: make(map[string]*domain.User)}
}

func (r *stubAuthRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byName[user.Username]; exists {
		return nil, domain.ErrUserExists
	}
	r.nextID++
	clone := *user
	clone.ID = fmt.Sprintf("user-%d", r.nextID)
	r.byName[user.Username] = &clone
	out := clone
	return &out, nil
}

func (r *stubAuthRepo) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byName[username]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	clone := *u
	return &clone, nil
}

// testVerdict builds a deterministic verdict for the scan/ledger tests.
func testVerdict() *domain.ScanVerdict {
	return &domain.ScanVerdict{
		FoodName:      "Doritos Nacho Cheese",
		SensorReadout: "High sodium fried corn matrix detected.",
		Nutrition:     domain.NutritionFacts{Calories: 150, SugarG: 1, SodiumMg: 210, ProteinG: 2},
		Warnings:      []string{"sodium spike"},
		IsHealthy:     false,
		Indulgent: domain.Outcome{
			Narrative:       "The crunch is a lie your arteries pay for.",
			VitalityDelta:   -5,
			ExperienceDelta: 10,
		},
		Optimized: domain.Outcome{
			Narrative:       "Air-popped corn delivers the crunch without the sodium.",
			VitalityDelta:   3,
			ExperienceDelta: 50,
		},
	}
}
