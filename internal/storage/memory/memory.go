// Package memory provides an in-process implementation of the storage.Store interface.
// Records are copied on the way in and out, so callers never share state with the store.
package memory

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/mmynk/tripbite/internal/models"
	"github.com/mmynk/tripbite/internal/storage"
)

var _ storage.Store = (*Store)(nil)

// Store keeps users, groups and sessions in maps guarded by one RWMutex.
type Store struct {
	mu       sync.RWMutex
	users    map[string]*models.User
	groups   map[string]*models.Group
	codes    map[string]string // upper-case code -> group ID
	sessions map[string]*models.Session
}

// New creates an empty Store.
func New() *Store {
	return &Store{
		users:    make(map[string]*models.User),
		groups:   make(map[string]*models.Group),
		codes:    make(map[string]string),
		sessions: make(map[string]*models.Session),
	}
}

func (s *Store) Close() error { return nil }

func (s *Store) CreateUser(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[user.ID]; ok {
		return storage.ErrConflict
	}
	s.users[user.ID] = cloneUser(user)
	return nil
}

func (s *Store) GetUser(_ context.Context, id string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return cloneUser(user), nil
}

func (s *Store) GetUsersByIDs(_ context.Context, ids []string) (map[string]*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]*models.User, len(ids))
	for _, id := range ids {
		if user, ok := s.users[id]; ok {
			out[id] = cloneUser(user)
		}
	}
	return out, nil
}

func (s *Store) UpdateUser(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[user.ID]; !ok {
		return storage.ErrNotFound
	}
	s.users[user.ID] = cloneUser(user)
	return nil
}

func (s *Store) CreateGroup(_ context.Context, group *models.Group) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	group.Code = strings.ToUpper(group.Code)
	if _, ok := s.codes[group.Code]; ok {
		return storage.ErrCodeTaken
	}
	if _, ok := s.groups[group.ID]; ok {
		return storage.ErrConflict
	}
	group.Version = 1
	s.groups[group.ID] = group.Clone()
	s.codes[group.Code] = group.ID
	return nil
}

func (s *Store) GetGroup(_ context.Context, id string) (*models.Group, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	group, ok := s.groups[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return group.Clone(), nil
}

func (s *Store) GetGroupByCode(_ context.Context, code string) (*models.Group, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.codes[strings.ToUpper(code)]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return s.groups[id].Clone(), nil
}

func (s *Store) GroupCodeExists(_ context.Context, code string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.codes[strings.ToUpper(code)]
	return ok, nil
}

func (s *Store) ListGroups(_ context.Context, filter storage.GroupFilter) ([]*models.Group, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Group
	for _, group := range s.groups {
		if filter.MemberID != "" && !group.IsMember(filter.MemberID) {
			continue
		}
		out = append(out, group.Clone())
	}
	slices.SortFunc(out, func(a, b *models.Group) int {
		if a.CreatedAt != b.CreatedAt {
			if a.CreatedAt < b.CreatedAt {
				return -1
			}
			return 1
		}
		return strings.Compare(a.ID, b.ID)
	})
	return out, nil
}

func (s *Store) UpdateGroup(_ context.Context, group *models.Group) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.groups[group.ID]
	if !ok {
		return storage.ErrNotFound
	}
	if stored.Version != group.Version {
		return storage.ErrConflict
	}
	next := group.Clone()
	// Code and creator are immutable once stored.
	next.Code = stored.Code
	next.CreatorID = stored.CreatorID
	next.CreatedAt = stored.CreatedAt
	next.Version++
	s.groups[group.ID] = next
	group.Version = next.Version
	return nil
}

func (s *Store) DeleteGroup(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	group, ok := s.groups[id]
	if !ok {
		return storage.ErrNotFound
	}
	delete(s.codes, group.Code)
	delete(s.groups, id)
	return nil
}

func (s *Store) CreateSession(_ context.Context, session *models.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[session.Token]; ok {
		return storage.ErrConflict
	}
	c := *session
	s.sessions[session.Token] = &c
	return nil
}

func (s *Store) GetSession(_ context.Context, token string) (*models.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[token]
	if !ok {
		return nil, storage.ErrNotFound
	}
	c := *session
	c.User.Preference = session.User.Preference.Clone()
	return &c, nil
}

func (s *Store) ListSessionsByUser(_ context.Context, userID string) ([]*models.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Session
	for _, session := range s.sessions {
		if session.UserID == userID {
			c := *session
			out = append(out, &c)
		}
	}
	slices.SortFunc(out, func(a, b *models.Session) int { return strings.Compare(a.Token, b.Token) })
	return out, nil
}

func (s *Store) UpdateSession(_ context.Context, session *models.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[session.Token]; !ok {
		return storage.ErrNotFound
	}
	c := *session
	s.sessions[session.Token] = &c
	return nil
}

func (s *Store) DeleteSession(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, token)
	return nil
}

func cloneUser(u *models.User) *models.User {
	c := *u
	c.Preference = u.Preference.Clone()
	return &c
}
