package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/lemonhouse/storefront/pkg/redis"
)

// ErrCorruptDraft reports a stored draft that could not be decoded.
var ErrCorruptDraft = errors.New("corrupt draft")

// DraftStore persists one draft per session.
type DraftStore interface {
	Load(ctx context.Context, sessionID string) (Draft, bool, error)
	Save(ctx context.Context, sessionID string, draft Draft) error
}

// InFlightGuard marks an action as outstanding for a session.
type InFlightGuard interface {
	AcquireInFlight(ctx context.Context, scope, sessionID string, ttl time.Duration) (bool, error)
	ReleaseInFlight(ctx context.Context, scope, sessionID string) error
}

type draftKV interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	DraftKey(sessionID string) string
}

// RedisDraftStore keeps drafts as JSON strings with a sliding TTL.
type RedisDraftStore struct {
	kv  draftKV
	ttl time.Duration
}

func NewRedisDraftStore(kv draftKV, ttl time.Duration) (*RedisDraftStore, error) {
	if kv == nil {
		return nil, errors.New("draft kv store required")
	}
	return &RedisDraftStore{kv: kv, ttl: ttl}, nil
}

func (s *RedisDraftStore) Load(ctx context.Context, sessionID string) (Draft, bool, error) {
	raw, err := s.kv.Get(ctx, s.kv.DraftKey(sessionID))
	if errors.Is(err, redis.ErrNil) {
		return Draft{}, false, nil
	}
	if err != nil {
		return Draft{}, false, err
	}
	var draft Draft
	if err := json.Unmarshal([]byte(raw), &draft); err != nil {
		return Draft{}, false, fmt.Errorf("%w: %v", ErrCorruptDraft, err)
	}
	return draft, true, nil
}

func (s *RedisDraftStore) Save(ctx context.Context, sessionID string, draft Draft) error {
	payload, err := json.Marshal(draft)
	if err != nil {
		return fmt.Errorf("encode draft: %w", err)
	}
	return s.kv.Set(ctx, s.kv.DraftKey(sessionID), string(payload), s.ttl)
}
