package session

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/lemonhouse/storefront/internal/keylock"
	pkgerrors "github.com/lemonhouse/storefront/pkg/errors"
	"github.com/lemonhouse/storefront/pkg/logger"
)

// Service owns the authentication state of every client session. The Store is the only copy of
// that state; every change is written there before it is returned.
type Service interface {
	Hydrate(ctx context.Context, sessionID string) (State, error)
	Current(ctx context.Context, sessionID string) (State, error)
	Login(ctx context.Context, sessionID string, user User) (State, error)
	Logout(ctx context.Context, sessionID string) (State, error)
	UpdateCurrentUser(ctx context.Context, sessionID string, patch Patch) (State, error)
}

type service struct {
	store Store
	logg  *logger.Logger
	locks keylock.Map
}

// NewService wires the session service to its durable store.
func NewService(store Store, logg *logger.Logger) (Service, error) {
	if store == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "session store required")
	}
	return &service{store: store, logg: logg}, nil
}

func (s *service) Hydrate(ctx context.Context, sessionID string) (State, error) {
	if err := requireSessionID(sessionID); err != nil {
		return loggedOut(), err
	}
	unlock := s.locks.Lock(sessionID)
	defer unlock()
	return s.load(ctx, sessionID)
}

// Current reads the store on every call so that every process sees the same session.
func (s *service) Current(ctx context.Context, sessionID string) (State, error) {
	return s.Hydrate(ctx, sessionID)
}

func (s *service) Login(ctx context.Context, sessionID string, user User) (State, error) {
	if err := requireSessionID(sessionID); err != nil {
		return loggedOut(), err
	}
	unlock := s.locks.Lock(sessionID)
	defer unlock()

	if err := s.store.Save(ctx, sessionID, user); err != nil {
		return s.rollback(ctx, sessionID), pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist session")
	}
	return loggedIn(user), nil
}

func (s *service) Logout(ctx context.Context, sessionID string) (State, error) {
	if err := requireSessionID(sessionID); err != nil {
		return loggedOut(), err
	}
	unlock := s.locks.Lock(sessionID)
	defer unlock()

	if err := s.store.Clear(ctx, sessionID); err != nil {
		return s.rollback(ctx, sessionID), pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear session")
	}
	return loggedOut(), nil
}

func (s *service) UpdateCurrentUser(ctx context.Context, sessionID string, patch Patch) (State, error) {
	if err := requireSessionID(sessionID); err != nil {
		return loggedOut(), err
	}
	unlock := s.locks.Lock(sessionID)
	defer unlock()

	current, err := s.load(ctx, sessionID)
	if err != nil {
		return current, err
	}
	user, ok := current.User()
	if !ok {
		return current, pkgerrors.New(pkgerrors.CodeUnauthorized, "please log in first")
	}

	merged := patch.Apply(user)
	if err := s.store.Save(ctx, sessionID, merged); err != nil {
		return current, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist session")
	}
	return loggedIn(merged), nil
}

// load reads the stored user. A value that does not decode is discarded and the
// session starts logged out.
func (s *service) load(ctx context.Context, sessionID string) (State, error) {
	raw, found, err := s.store.Load(ctx, sessionID)
	if err != nil {
		return loggedOut(), pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load session")
	}
	if !found {
		return loggedOut(), nil
	}

	var user User
	if err := json.Unmarshal(raw, &user); err != nil || strings.TrimSpace(user.Phone) == "" {
		s.logWarn(ctx, sessionID, "session.hydrate.corrupt_value")
		if clearErr := s.store.Clear(ctx, sessionID); clearErr != nil {
			s.logError(ctx, sessionID, "session.hydrate.clear_failed", clearErr)
		}
		return loggedOut(), nil
	}
	return loggedIn(user), nil
}

// rollback reports what the store still holds after a failed write.
func (s *service) rollback(ctx context.Context, sessionID string) State {
	state, err := s.load(ctx, sessionID)
	if err != nil {
		s.logError(ctx, sessionID, "session.rollback.load_failed", err)
		return loggedOut()
	}
	return state
}

func (s *service) logWarn(ctx context.Context, sessionID, msg string) {
	if s.logg == nil {
		return
	}
	s.logg.Warn(s.logg.WithSessionID(ctx, sessionID), msg)
}

func (s *service) logError(ctx context.Context, sessionID, msg string, err error) {
	if s.logg == nil {
		return
	}
	s.logg.Error(s.logg.WithSessionID(ctx, sessionID), msg, err)
}

func requireSessionID(sessionID string) error {
	if strings.TrimSpace(sessionID) == "" {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "session required")
	}
	return nil
}
