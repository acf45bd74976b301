// Package account handles profile reads and owner-only profile updates.
package account

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/mmynk/tripbite/internal/apperr"
	"github.com/mmynk/tripbite/internal/authz"
	"github.com/mmynk/tripbite/internal/keylock"
	"github.com/mmynk/tripbite/internal/models"
	"github.com/mmynk/tripbite/internal/storage"
)

// UserStorage is the user persistence the service needs.
type UserStorage interface {
	GetUser(ctx context.Context, id string) (*models.User, error)
	UpdateUser(ctx context.Context, user *models.User) error
}

// SnapshotRefresher rewrites cached session views after a profile change.
type SnapshotRefresher interface {
	RefreshSnapshot(ctx context.Context, user *models.User) error
}

// Service reads and updates user profiles.
type Service struct {
	users    UserStorage
	guard    *authz.Guard
	sessions SnapshotRefresher
	locks    *keylock.Locker
	now      func() time.Time
}

// NewService creates a Service.
func NewService(users UserStorage, guard *authz.Guard, sessions SnapshotRefresher) *Service {
	return &Service{
		users:    users,
		guard:    guard,
		sessions: sessions,
		locks:    keylock.New(),
		now:      time.Now,
	}
}

// Current returns the public profile of the caller.
func (s *Service) Current(ctx context.Context, token string) (*models.PublicUser, error) {
	session, err := s.guard.Authenticate(ctx, token)
	if err != nil {
		return nil, err
	}
	user, err := s.load(ctx, session.UserID)
	if err != nil {
		return nil, err
	}
	pub := user.Public()
	return &pub, nil
}

// UpdateProfile applies patch to targetID's profile. Only the owner may do this.
// On success every session of the user sees the new public fields.
func (s *Service) UpdateProfile(ctx context.Context, token, targetID string, patch models.ProfilePatch) (*models.PublicUser, error) {
	session, err := s.guard.Authenticate(ctx, token)
	if err != nil {
		return nil, err
	}
	if err := authz.CheckProfile(session.UserID, targetID); err != nil {
		return nil, err
	}
	if patch.DisplayName != nil && strings.TrimSpace(*patch.DisplayName) == "" {
		return nil, apperr.ValidationFailed("display name cannot be empty")
	}
	if patch.Preference != nil {
		if err := patch.Preference.Validate(); err != nil {
			return nil, err
		}
	}

	unlock := s.locks.Lock(targetID)
	defer unlock()

	user, err := s.load(ctx, targetID)
	if err != nil {
		return nil, err
	}
	now := s.now().Unix()
	if patch.DisplayName != nil {
		user.DisplayName = strings.TrimSpace(*patch.DisplayName)
	}
	if patch.Avatar != nil {
		user.Avatar = *patch.Avatar
	}
	if patch.Preference != nil {
		user.Preference = patch.Preference.Clone()
		user.Preference.UpdatedAt = now
	}
	user.UpdatedAt = now

	if err := s.users.UpdateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	if err := s.sessions.RefreshSnapshot(ctx, user); err != nil {
		return nil, err
	}

	slog.Info("Profile updated", "user_id", targetID, "preference", patch.Preference != nil)
	pub := user.Public()
	return &pub, nil
}

func (s *Service) load(ctx context.Context, id string) (*models.User, error) {
	user, err := s.users.GetUser(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, apperr.NotFound(fmt.Sprintf("user %s not found", id))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return user, nil
}
