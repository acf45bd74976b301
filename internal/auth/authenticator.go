package auth

import (
	"context"

	"github.com/mmynk/tripbite/internal/models"
)

// Authenticator defines the interface for authentication implementations.
// This abstraction allows swapping between different auth methods (password, passkeys, OAuth, etc.)
// without changing the session layer.
type Authenticator interface {
	// Register creates a new user account with the given login ID and credential.
	// Returns the created user or an error if registration fails.
	Register(ctx context.Context, id, displayName, credential string) (*models.User, error)

	// Authenticate verifies the user's credentials and returns the user if successful.
	Authenticate(ctx context.Context, id, credential string) (*models.User, error)

	// ValidateCredential checks if the credential meets the implementation's requirements.
	ValidateCredential(credential string) error
}
