package models

// Session binds an opaque token to one user. It is stored server-side and
// removed on logout, so a token can be revoked before it expires.
type Session struct {
	// Token is the bearer credential presented on every call.
	Token string

	// UserID is the identity the token was issued to.
	UserID string

	// User is a snapshot of the user's public fields, refreshed on profile update.
	User PublicUser

	// IssuedAt and ExpiresAt are Unix timestamps. ExpiresAt zero means the
	// session lasts until logout.
	IssuedAt  int64
	ExpiresAt int64
}
