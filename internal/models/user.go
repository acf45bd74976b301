package models

// User represents a registered traveller.
// Users are created at registration and only ever modified by their owner.
type User struct {
	// ID is the login identifier chosen at registration (unique).
	ID string

	// PasswordHash is the bcrypt hash of the credential secret.
	PasswordHash string

	// DisplayName is the nickname shown to other group members.
	DisplayName string

	// Avatar is an optional avatar reference (URL or preset name).
	Avatar string

	// Preference is nil until the user saves their food preferences.
	Preference *Preference

	// CreatedAt is the Unix timestamp when the account was created.
	CreatedAt int64

	// UpdatedAt is the Unix timestamp of the last profile change.
	UpdatedAt int64
}

// PublicUser is the view of a User that may be shown to other people.
// It never carries the credential.
type PublicUser struct {
	ID          string      `json:"id"`
	DisplayName string      `json:"display_name"`
	Avatar      string      `json:"avatar,omitempty"`
	Preference  *Preference `json:"preference,omitempty"`
}

// Public strips the credential from u.
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:          u.ID,
		DisplayName: u.DisplayName,
		Avatar:      u.Avatar,
		Preference:  u.Preference.Clone(),
	}
}

// ProfilePatch lists the profile fields an owner may change.
// Nil fields are left untouched. Preference replaces the stored one wholesale.
type ProfilePatch struct {
	DisplayName *string
	Avatar      *string
	Preference  *Preference
}
