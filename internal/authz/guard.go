// Package authz is the authorization guard: it resolves the caller from a session
// token and holds the capability rules every group and profile operation applies.
package authz

import (
	"context"

	"github.com/mmynk/tripbite/internal/models"
)

// SessionValidator resolves a token to its session.
type SessionValidator interface {
	Validate(ctx context.Context, token string) (*models.Session, error)
}

// Guard resolves callers. Capability checks are the pure Check functions so a
// repository can run them inside the same locked transaction as its write.
type Guard struct {
	sessions SessionValidator
}

// NewGuard creates a Guard backed by sessions.
func NewGuard(sessions SessionValidator) *Guard {
	return &Guard{sessions: sessions}
}

// Authenticate returns the session for token or an Unauthenticated error.
func (g *Guard) Authenticate(ctx context.Context, token string) (*models.Session, error) {
	return g.sessions.Validate(ctx, token)
}
