// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/mmynk/tripbite/internal/models"
)

var (
	// ErrNotFound is returned when a keyed record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrConflict is returned when a create collides with an existing key or an
	// update lost a compare-and-swap race.
	ErrConflict = errors.New("record conflict")
	// ErrCodeTaken is returned when a group is created with a join code already in use.
	ErrCodeTaken = errors.New("join code already in use")
)

// GroupFilter narrows ListGroups. Zero value matches every group.
type GroupFilter struct {
	// MemberID keeps groups the user belongs to.
	MemberID string
}

// Store defines the keyed collections the core depends on: users, groups (with a
// unique, case-insensitive code index) and sessions.
// This abstraction allows swapping storage backends (SQLite, in-memory, ...)
// without changing the repositories.
//
// Records are returned as copies. Writers read, modify and write back; UpdateGroup
// rejects the write with ErrConflict if the stored version moved in between.
type Store interface {
	// CreateUser persists a new user. Returns ErrConflict if the ID is taken.
	CreateUser(ctx context.Context, user *models.User) error

	// GetUser retrieves a user by ID. Returns ErrNotFound if absent.
	GetUser(ctx context.Context, id string) (*models.User, error)

	// GetUsersByIDs retrieves several users. Missing users are omitted from the map.
	GetUsersByIDs(ctx context.Context, ids []string) (map[string]*models.User, error)

	// UpdateUser replaces the stored user. Returns ErrNotFound if absent.
	UpdateUser(ctx context.Context, user *models.User) error

	// CreateGroup persists a new group with Version 1.
	// Returns ErrCodeTaken if the join code collides (case-insensitively).
	CreateGroup(ctx context.Context, group *models.Group) error

	// GetGroup retrieves a group by ID. Returns ErrNotFound if absent.
	GetGroup(ctx context.Context, id string) (*models.Group, error)

	// GetGroupByCode resolves a join code case-insensitively. Returns ErrNotFound if absent.
	GetGroupByCode(ctx context.Context, code string) (*models.Group, error)

	// GroupCodeExists reports whether a join code is in use.
	GroupCodeExists(ctx context.Context, code string) (bool, error)

	// ListGroups returns the groups matching filter, oldest first.
	ListGroups(ctx context.Context, filter GroupFilter) ([]*models.Group, error)

	// UpdateGroup writes group if the stored version equals group.Version, then
	// increments group.Version. Returns ErrNotFound or ErrConflict.
	UpdateGroup(ctx context.Context, group *models.Group) error

	// DeleteGroup removes a group and everything scoped to it. Returns ErrNotFound if absent.
	DeleteGroup(ctx context.Context, id string) error

	// CreateSession stores a session keyed by its token.
	CreateSession(ctx context.Context, session *models.Session) error

	// GetSession looks up a session by token. Returns ErrNotFound if absent.
	GetSession(ctx context.Context, token string) (*models.Session, error)

	// ListSessionsByUser returns every session issued to userID.
	ListSessionsByUser(ctx context.Context, userID string) ([]*models.Session, error)

	// UpdateSession replaces a stored session. Returns ErrNotFound if absent.
	UpdateSession(ctx context.Context, session *models.Session) error

	// DeleteSession removes a session. Deleting an absent session is not an error.
	DeleteSession(ctx context.Context, token string) error

	// Close releases any resources held by the store.
	Close() error
}
