// Package session holds the signed-in identity shared by every screen.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	apperrors "diyclient/internal/errors"
	"diyclient/internal/model"
	"diyclient/internal/ui"
)

// RedisNamespace prefixes session keys in redis.
const RedisNamespace = "diyclient:session:"

// Session is the client-held proof of identity.
type Session struct {
	Token string
	User  *model.User
}

// Authenticated reports whether both a token and a user are present.
func (s Session) Authenticated() bool {
	return s.Token != "" && s.User != nil
}

// UserID returns the signed-in user's id, or "" when signed out.
func (s Session) UserID() string {
	if s.User == nil {
		return ""
	}
	return s.User.ID
}

// Manager reads and writes the session through a Storage.
type Manager struct {
	store  Storage
	nav    ui.Navigator
	logger *slog.Logger
}

// NewManager creates a session manager. nav receives the landing route on sign-out.
func NewManager(store Storage, nav ui.Navigator, logger *slog.Logger) *Manager {
	if nav == nil {
		nav = ui.Nop{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{store: store, nav: nav, logger: logger}
}

// SignIn persists the token and user.
func (m *Manager) SignIn(ctx context.Context, token string, user model.User) error {
	raw, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}
	if err := m.store.SetItem(ctx, KeyToken, token); err != nil {
		return fmt.Errorf("store token: %w", err)
	}
	if err := m.store.SetItem(ctx, KeyUser, string(raw)); err != nil {
		return fmt.Errorf("store user: %w", err)
	}
	m.logger.Debug("signed in", "user_id", user.ID, "username", user.Username)
	return nil
}

// SignOut clears both keys and navigates to the landing screen.
func (m *Manager) SignOut(ctx context.Context) error {
	var firstErr error
	for _, key := range []string{KeyToken, KeyUser} {
		if err := m.store.RemoveItem(ctx, key); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("remove %s: %w", key, err)
		}
	}
	m.nav.Navigate(ui.Landing())
	return firstErr
}

// Current reads the session back. A missing or unparsable user yields a nil
// User; storage failures are logged and read as signed out.
func (m *Manager) Current(ctx context.Context) Session {
	var s Session

	token, _, err := m.store.GetItem(ctx, KeyToken)
	if err != nil {
		m.logger.Warn("read session token", "error", err)
		return Session{}
	}
	s.Token = token

	raw, ok, err := m.store.GetItem(ctx, KeyUser)
	if err != nil {
		m.logger.Warn("read session user", "error", err)
		return Session{}
	}
	if !ok || raw == "" {
		return s
	}
	var user model.User
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		m.logger.Warn("stored user is not valid JSON", "error", err)
		return s
	}
	s.User = &user
	return s
}

// Require returns the current session or ErrUnauthenticated.
func (m *Manager) Require(ctx context.Context) (Session, error) {
	s := m.Current(ctx)
	if !s.Authenticated() {
		return Session{}, apperrors.ErrUnauthenticated
	}
	return s, nil
}

// Token returns the stored bearer token, or "" when there is none.
func (m *Manager) Token(ctx context.Context) string {
	token, _, err := m.store.GetItem(ctx, KeyToken)
	if err != nil {
		m.logger.Warn("read session token", "error", err)
		return ""
	}
	return token
}
