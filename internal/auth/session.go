package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/mmynk/tripbite/internal/apperr"
	"github.com/mmynk/tripbite/internal/models"
	"github.com/mmynk/tripbite/internal/storage"
)

// SessionStorage defines the session persistence operations the manager needs.
type SessionStorage interface {
	CreateSession(ctx context.Context, session *models.Session) error
	GetSession(ctx context.Context, token string) (*models.Session, error)
	ListSessionsByUser(ctx context.Context, userID string) ([]*models.Session, error)
	UpdateSession(ctx context.Context, session *models.Session) error
	DeleteSession(ctx context.Context, token string) error
}

// SessionManager issues, validates and revokes session tokens.
type SessionManager struct {
	authenticator Authenticator
	tokens        *JWTManager
	store         SessionStorage
	now           func() time.Time
}

// NewSessionManager creates a session manager.
func NewSessionManager(authenticator Authenticator, tokens *JWTManager, store SessionStorage) *SessionManager {
	return &SessionManager{
		authenticator: authenticator,
		tokens:        tokens,
		store:         store,
		now:           time.Now,
	}
}

// Register creates an account. It does not log the user in.
func (m *SessionManager) Register(ctx context.Context, id, secret, displayName string) (*models.User, error) {
	return m.authenticator.Register(ctx, id, displayName, secret)
}

// Login verifies the credential and opens a new session with a fresh token.
func (m *SessionManager) Login(ctx context.Context, id, secret string) (*models.Session, error) {
	user, err := m.authenticator.Authenticate(ctx, id, secret)
	if err != nil {
		return nil, err
	}

	now := m.now()
	token, claims, err := m.tokens.Generate(user.ID, now)
	if err != nil {
		return nil, err
	}

	session := &models.Session{
		Token:    token,
		UserID:   user.ID,
		User:     user.Public(),
		IssuedAt: now.Unix(),
	}
	if claims.ExpiresAt != nil {
		session.ExpiresAt = claims.ExpiresAt.Unix()
	}
	if err := m.store.CreateSession(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to store session: %w", err)
	}

	slog.Debug("Session opened", "user_id", user.ID)
	return session, nil
}

// Validate resolves token to its session. It never extends or refreshes the
// session and has no side effects.
func (m *SessionManager) Validate(ctx context.Context, token string) (*models.Session, error) {
	if token == "" {
		return nil, apperr.Unauthenticated(ErrMissingToken.Error())
	}
	if _, err := m.tokens.Validate(token); err != nil {
		return nil, apperr.Unauthenticated(ErrInvalidToken.Error())
	}

	session, err := m.store.GetSession(ctx, token)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, apperr.Unauthenticated("session has ended, log in again")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	if session.ExpiresAt != 0 && session.ExpiresAt <= m.now().Unix() {
		return nil, apperr.Unauthenticated(ErrInvalidToken.Error())
	}
	return session, nil
}

// Logout removes the session bound to token. Unknown tokens are ignored.
func (m *SessionManager) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return m.store.DeleteSession(ctx, token)
}

// RefreshSnapshot rewrites the cached user view of every session of user,
// so sessions do not go stale after the owner edits their profile.
func (m *SessionManager) RefreshSnapshot(ctx context.Context, user *models.User) error {
	sessions, err := m.store.ListSessionsByUser(ctx, user.ID)
	if err != nil {
		return fmt.Errorf("failed to list sessions: %w", err)
	}
	for _, session := range sessions {
		session.User = user.Public()
		err := m.store.UpdateSession(ctx, session)
		// A concurrent logout may have removed it already.
		if err != nil && !errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("failed to refresh session: %w", err)
		}
	}
	return nil
}
