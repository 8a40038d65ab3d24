package session

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func signed(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return tok
}

func TestFromToken_ReadsClaims(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	tok := signed(t, jwt.MapClaims{"sub": "42", "exp": exp.Unix()})

	s, err := FromToken(tok)
	if err != nil {
		t.Fatalf("FromToken() error = %v", err)
	}
	if s.UserID != 42 {
		t.Errorf("UserID = %d, want 42", s.UserID)
	}
	if !s.ExpiresAt.Equal(exp) {
		t.Errorf("ExpiresAt = %v, want %v", s.ExpiresAt, exp)
	}
	if s.Token != tok {
		t.Error("token not preserved")
	}
}

func TestFromToken_NumericSubject(t *testing.T) {
	tok := signed(t, jwt.MapClaims{"sub": 7})
	s, err := FromToken(tok)
	if err != nil {
		t.Fatalf("FromToken() error = %v", err)
	}
	if s.UserID != 7 {
		t.Errorf("UserID = %d, want 7", s.UserID)
	}
	if !s.ExpiresAt.IsZero() {
		t.Error("expected no expiry")
	}
}

func TestFromToken_Invalid(t *testing.T) {
	if _, err := FromToken(""); err == nil {
		t.Error("expected error for empty token")
	}
	if _, err := FromToken("not-a-jwt"); err == nil {
		t.Error("expected error for garbage token")
	}
}

type memStore struct {
	s       *Session
	cleared int
	loadErr error
}

func (m *memStore) SaveSession(s *Session) error {
	cp := *s
	m.s = &cp
	return nil
}

func (m *memStore) LoadSession() (*Session, error) { return m.s, m.loadErr }

func (m *memStore) ClearSession() error {
	m.s = nil
	m.cleared++
	return nil
}

func TestHolder_SetCurrentClear(t *testing.T) {
	store := &memStore{}
	h := NewHolder(store, nil)

	if h.Current() != nil {
		t.Fatal("new holder should have no session")
	}

	if err := h.Set(&Session{Username: "ana", Token: "t"}); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	cur := h.Current()
	if cur == nil || cur.Username != "ana" {
		t.Fatalf("Current() = %+v", cur)
	}
	if store.s == nil {
		t.Error("session not persisted")
	}

	// Mutating the returned copy must not affect the holder.
	cur.Token = "changed"
	if h.Current().Token != "t" {
		t.Error("Current() should return a copy")
	}

	if err := h.Clear(); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	if h.Current() != nil {
		t.Error("session should be cleared")
	}
	if store.cleared != 1 {
		t.Errorf("store cleared %d times, want 1", store.cleared)
	}
}

func TestHolder_ExpiredSessionIsAbsent(t *testing.T) {
	h := NewHolder(nil, nil)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	h.now = func() time.Time { return now }

	_ = h.Set(&Session{Username: "ana", ExpiresAt: now.Add(time.Minute)})
	if h.Current() == nil {
		t.Fatal("session should be valid before expiry")
	}

	now = now.Add(2 * time.Minute)
	if h.Current() != nil {
		t.Error("expired session should be treated as absent")
	}
}

func TestHolder_Restore(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	t.Run("valid", func(t *testing.T) {
		store := &memStore{s: &Session{Username: "ana", ExpiresAt: now.Add(time.Hour)}}
		h := NewHolder(store, nil)
		h.now = func() time.Time { return now }
		if err := h.Restore(); err != nil {
			t.Fatalf("Restore() error = %v", err)
		}
		if h.Current() == nil {
			t.Error("expected restored session")
		}
	})

	t.Run("expired", func(t *testing.T) {
		store := &memStore{s: &Session{Username: "ana", ExpiresAt: now.Add(-time.Hour)}}
		h := NewHolder(store, nil)
		h.now = func() time.Time { return now }
		if err := h.Restore(); err != nil {
			t.Fatalf("Restore() error = %v", err)
		}
		if h.Current() != nil {
			t.Error("expired session should not be restored")
		}
		if store.cleared != 1 {
			t.Error("expired session should be cleared from store")
		}
	})

	t.Run("load error", func(t *testing.T) {
		h := NewHolder(&memStore{loadErr: errors.New("disk")}, nil)
		if err := h.Restore(); err == nil {
			t.Error("expected error")
		}
	})
}
