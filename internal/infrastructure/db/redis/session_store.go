package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/aeturnus/vitality-system/internal/core/domain"
)

// sessionTTL bounds how long a scan waits for a decision. An awaiting-choice
// session that expires is an abandoned scan; nothing was persisted for it.
const sessionTTL = 30 * time.Minute

// transitionScript swaps the state field only when it currently holds the
// expected value. Running it server-side makes the awaiting-choice →
// committing guard atomic across API instances.
var transitionScript = redis.NewScript(`
if redis.call('HGET', KEYS[1], 'state') == ARGV[1] then
	redis.call('HSET', KEYS[1], 'state', ARGV[2])
	return 1
end
return 0
`)

// SessionStore persists active scan sessions in Redis, one hash per session:
// a state field for the compare-and-swap guard and a data field holding the
// serialized session.
type SessionStore struct {
	client *redis.Client
}

// NewSessionStore creates a SessionStore wrapping the given Redis client.
func NewSessionStore(client *redis.Client) *SessionStore {
	return &SessionStore{client: client}
}

// Save upserts the session and refreshes its TTL.
func (s *SessionStore) Save(ctx context.Context, sess *domain.ScanSession) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("marshal scan session: %w", err)
	}

	key := s.key(sess.ID)
	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, key, "state", string(sess.State), "data", data)
	pipe.Expire(ctx, key, sessionTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("save scan session: %w", err)
	}
	return nil
}

// Find retrieves a session scoped to its owning player. The live state field
// wins over whatever state the data blob was serialized with.
func (s *SessionStore) Find(ctx context.Context, playerID, scanID string) (*domain.ScanSession, error) {
	vals, err := s.client.HMGet(ctx, s.key(scanID), "state", "data").Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrScanNotFound
		}
		return nil, fmt.Errorf("find scan session: %w", err)
	}

	state, _ := vals[0].(string)
	data, _ := vals[1].(string)
	if data == "" {
		return nil, domain.ErrScanNotFound
	}

	var sess domain.ScanSession
	if err := json.Unmarshal([]byte(data), &sess); err != nil {
		return nil, fmt.Errorf("decode scan session: %w", err)
	}
	if state != "" {
		sess.State = domain.ScanState(state)
	}

	// Sessions are private to the player who started them.
	if sess.PlayerID != playerID {
		return nil, domain.ErrScanNotFound
	}
	return &sess, nil
}

// TransitionState atomically moves the stored state from from to to. A false
// result means another caller got there first (or the session expired).
func (s *SessionStore) TransitionState(ctx context.Context, scanID string, from, to domain.ScanState) (bool, error) {
	res, err := transitionScript.Run(ctx, s.client, []string{s.key(scanID)}, string(from), string(to)).Int()
	if err != nil {
		return false, fmt.Errorf("transition scan session: %w", err)
	}
	return res == 1, nil
}

func (s *SessionStore) key(scanID string) string {
	return "scan:" + scanID
}
