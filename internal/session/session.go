// Package session is the authentication boundary. It holds the current
// user's credentials and hands them explicitly to every backend call.
package session

import (
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

// Session is an authenticated user and the bearer token for its requests.
type Session struct {
	UserID    int64
	Username  string
	Email     string
	Token     string
	ExpiresAt time.Time // zero if the token carries no expiry
}

// Expired reports whether the token has passed its expiry at now.
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

// FromToken builds a session from a JWT, reading its subject and expiry.
// The signature is not verified: the backend does that on every request.
func FromToken(token string) (*Session, error) {
	if token == "" {
		return nil, errors.New("empty token")
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	s := &Session{Token: token}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		s.ExpiresAt = exp.Time
	}
	if sub, err := claims.GetSubject(); err == nil && sub != "" {
		if id, err := strconv.ParseInt(sub, 10, 64); err == nil {
			s.UserID = id
		}
	} else if raw, ok := claims["sub"].(float64); ok {
		s.UserID = int64(raw)
	}
	return s, nil
}

// Provider exposes the current session. Current returns nil when the user
// is not authenticated.
type Provider interface {
	Current() *Session
}

// Store persists the session between runs.
type Store interface {
	SaveSession(s *Session) error
	LoadSession() (*Session, error)
	ClearSession() error
}

// Holder is the in-process session provider.
type Holder struct {
	mu     sync.RWMutex
	cur    *Session
	store  Store
	logger *zap.Logger
	now    func() time.Time
}

// NewHolder creates a holder backed by store, which may be nil.
func NewHolder(store Store, logger *zap.Logger) *Holder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Holder{
		store:  store,
		logger: logger.Named("session"),
		now:    time.Now,
	}
}

// Restore loads a persisted session, dropping it if expired.
func (h *Holder) Restore() error {
	if h.store == nil {
		return nil
	}
	s, err := h.store.LoadSession()
	if err != nil {
		return fmt.Errorf("load session: %w", err)
	}
	if s == nil {
		return nil
	}
	if s.Expired(h.now()) {
		h.logger.Info("stored session expired", zap.String("username", s.Username))
		return h.store.ClearSession()
	}
	h.mu.Lock()
	h.cur = s
	h.mu.Unlock()
	h.logger.Debug("session restored", zap.String("username", s.Username))
	return nil
}

// Current returns the active session, or nil if absent or expired.
func (h *Holder) Current() *Session {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.cur == nil || h.cur.Expired(h.now()) {
		return nil
	}
	cp := *h.cur
	return &cp
}

// Set replaces the active session and persists it.
func (h *Holder) Set(s *Session) error {
	if s == nil {
		return h.Clear()
	}
	h.mu.Lock()
	cp := *s
	h.cur = &cp
	h.mu.Unlock()
	h.logger.Info("session started", zap.String("username", s.Username))
	if h.store != nil {
		return h.store.SaveSession(s)
	}
	return nil
}

// Clear drops the active session, e.g. on logout or a rejected token.
func (h *Holder) Clear() error {
	h.mu.Lock()
	h.cur = nil
	h.mu.Unlock()
	if h.store != nil {
		return h.store.ClearSession()
	}
	return nil
}

// Static is a fixed Provider, useful for one-shot commands and tests.
type Static struct{ S *Session }

func (s Static) Current() *Session { return s.S }
