package service

import (
	"context"
	"log/slog"
	"time"

	"connectrpc.com/connect"

	"github.com/mmynk/tripbite/internal/account"
	"github.com/mmynk/tripbite/internal/auth"
	"github.com/mmynk/tripbite/internal/middleware"
	"github.com/mmynk/tripbite/internal/models"
)

// AuthService implements tripbite.v1.AuthService: accounts, sessions and profiles.
type AuthService struct {
	sessions *auth.SessionManager
	accounts *account.Service
}

// NewAuthService creates a new authentication service.
func NewAuthService(sessions *auth.SessionManager, accounts *account.Service) *AuthService {
	return &AuthService{sessions: sessions, accounts: accounts}
}

// Register creates a new user account. It does not log the user in.
func (s *AuthService) Register(ctx context.Context, req *connect.Request[RegisterRequest]) (*connect.Response[RegisterResponse], error) {
	slog.Info("Register request", "user_id", req.Msg.ID)

	user, err := s.sessions.Register(ctx, req.Msg.ID, req.Msg.Password, req.Msg.DisplayName)
	if err != nil {
		return nil, toConnectError(err)
	}

	slog.Info("User registered", "user_id", user.ID)
	return connect.NewResponse(&RegisterResponse{User: user.Public()}), nil
}

// Login verifies the credential and opens a session.
func (s *AuthService) Login(ctx context.Context, req *connect.Request[LoginRequest]) (*connect.Response[LoginResponse], error) {
	slog.Info("Login request", "user_id", req.Msg.ID)

	session, err := s.sessions.Login(ctx, req.Msg.ID, req.Msg.Password)
	if err != nil {
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&LoginResponse{
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt,
		User:      session.User,
	}), nil
}

// Logout ends the caller's session. Calling it twice is not an error.
func (s *AuthService) Logout(ctx context.Context, _ *connect.Request[LogoutRequest]) (*connect.Response[LogoutResponse], error) {
	if err := s.sessions.Logout(ctx, middleware.GetToken(ctx)); err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&LogoutResponse{}), nil
}

// GetCurrentUser returns the caller's public profile.
func (s *AuthService) GetCurrentUser(ctx context.Context, _ *connect.Request[GetCurrentUserRequest]) (*connect.Response[GetCurrentUserResponse], error) {
	user, err := s.accounts.Current(ctx, middleware.GetToken(ctx))
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&GetCurrentUserResponse{User: *user}), nil
}

// UpdateProfile changes the caller's own display name, avatar or preference.
// A submitted preference replaces the stored one.
func (s *AuthService) UpdateProfile(ctx context.Context, req *connect.Request[UpdateProfileRequest]) (*connect.Response[UpdateProfileResponse], error) {
	slog.Info("UpdateProfile request", "user_id", req.Msg.UserID, "preference", req.Msg.Preference != nil)

	patch := models.ProfilePatch{
		DisplayName: req.Msg.DisplayName,
		Avatar:      req.Msg.Avatar,
	}
	if p := req.Msg.Preference; p != nil {
		pref, err := models.NewPreference(models.PreferenceInput{
			LikedCategories:    p.LikedCategories,
			DislikedCategories: p.DislikedCategories,
			CannotEat:          p.CannotEat,
			LikedKeywords:      p.LikedKeywords,
			DislikedKeywords:   p.DislikedKeywords,
			Budget:             p.Budget,
		}, time.Now().Unix())
		if err != nil {
			return nil, toConnectError(err)
		}
		patch.Preference = pref
	}

	user, err := s.accounts.UpdateProfile(ctx, middleware.GetToken(ctx), req.Msg.UserID, patch)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&UpdateProfileResponse{User: *user}), nil
}
