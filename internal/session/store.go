// Package session holds the current auth token and the user id derived from
// it. Only Login and Logout change the session; everything else reads it.
package session

import (
	"context"
	"sync"
	"time"

	"graphlearn/pkg/auth"

	"go.uber.org/zap"
)

// Storage keys, shared with anything that inspects the persisted state.
const (
	TokenKey  = "accessToken"
	UserIDKey = "userId"
)

// Session is the signed-in state.
type Session struct {
	Token  string
	UserID string
}

// Store is the single owner of the session.
type Store struct {
	storage     Storage
	logger      *zap.Logger
	now         func() time.Time
	mu          sync.RWMutex
	subscribers []func(Session, bool)
}

// NewStore creates a store over the given storage.
func NewStore(storage Storage, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{storage: storage, logger: logger, now: time.Now}
}

// Login persists the token and the user id decoded from it. A token that
// cannot be decoded is still stored, but without a user id.
func (s *Store) Login(ctx context.Context, token string) error {
	if err := s.storage.Set(ctx, TokenKey, token); err != nil {
		return err
	}

	claims, err := auth.DecodeClaims(token)
	switch {
	case err != nil:
		s.logger.Warn("Stored token without decodable claims", zap.Error(err))
		if err := s.storage.Delete(ctx, UserIDKey); err != nil {
			return err
		}
	case claims.UserID != "":
		if err := s.storage.Set(ctx, UserIDKey, claims.UserID); err != nil {
			return err
		}
	default:
		if err := s.storage.Delete(ctx, UserIDKey); err != nil {
			return err
		}
	}

	s.logger.Info("Signed in", zap.Bool("has_user_id", err == nil && claims.UserID != ""))
	s.notify(ctx)
	return nil
}

// Logout clears the token and user id together.
func (s *Store) Logout(ctx context.Context) error {
	if err := s.storage.Delete(ctx, TokenKey, UserIDKey); err != nil {
		return err
	}
	s.logger.Info("Signed out")
	s.notify(ctx)
	return nil
}

// Current returns the session if a valid one exists. A token whose exp claim
// has passed is not a valid session.
func (s *Store) Current(ctx context.Context) (Session, bool) {
	token, ok, err := s.storage.Get(ctx, TokenKey)
	if err != nil {
		s.logger.Error("Failed to read session", zap.Error(err))
		return Session{}, false
	}
	if !ok || token == "" {
		return Session{}, false
	}
	if claims, err := auth.DecodeClaims(token); err == nil && claims.ExpiredAt(s.now()) {
		return Session{}, false
	}

	userID, _, err := s.storage.Get(ctx, UserIDKey)
	if err != nil {
		s.logger.Error("Failed to read user id", zap.Error(err))
	}
	return Session{Token: token, UserID: userID}, true
}

// IsAuthenticated reports whether a valid session exists.
func (s *Store) IsAuthenticated(ctx context.Context) bool {
	_, ok := s.Current(ctx)
	return ok
}

// Token returns the current token or "".
func (s *Store) Token(ctx context.Context) string {
	sess, _ := s.Current(ctx)
	return sess.Token
}

// UserID returns the current user id or "".
func (s *Store) UserID(ctx context.Context) string {
	sess, _ := s.Current(ctx)
	return sess.UserID
}

// Subscribe registers a callback invoked after every login and logout.
func (s *Store) Subscribe(fn func(Session, bool)) {
	s.mu.Lock()
	s.subscribers = append(s.subscribers, fn)
	s.mu.Unlock()
}

func (s *Store) notify(ctx context.Context) {
	sess, ok := s.Current(ctx)
	s.mu.RLock()
	subs := append(([]func(Session, bool))(nil), s.subscribers...)
	s.mu.RUnlock()
	for _, fn := range subs {
		fn(sess, ok)
	}
}
