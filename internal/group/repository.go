// Package group implements the group lifecycle: creation with a unique join code,
// membership changes, field updates and deletion. Every mutation is an atomic
// read-check-write on one group record.
package group

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/lithammer/shortuuid/v4"

	"github.com/mmynk/tripbite/internal/apperr"
	"github.com/mmynk/tripbite/internal/authz"
	"github.com/mmynk/tripbite/internal/keylock"
	"github.com/mmynk/tripbite/internal/models"
	"github.com/mmynk/tripbite/internal/storage"
)

// maxCodeAttempts bounds the join-code generator. With 36^6 codes it is only
// reached if the random source is broken.
const maxCodeAttempts = 16

// Canceler stops in-flight work scoped to a group.
type Canceler interface {
	CancelGroup(groupID string)
}

// Patch lists the group fields a member may change.
type Patch = models.GroupPatch

// Repository owns group state. It is safe for concurrent use.
type Repository struct {
	store    storage.Store
	guard    *authz.Guard
	locks    *keylock.Locker
	canceler Canceler
	now      func() time.Time
	newCode  func() (string, error)
}

// NewRepository creates a Repository.
func NewRepository(store storage.Store, guard *authz.Guard) *Repository {
	return &Repository{
		store:   store,
		guard:   guard,
		locks:   keylock.New(),
		now:     time.Now,
		newCode: GenerateCode,
	}
}

// WithCanceler registers the hook Delete uses to stop running recommendations.
func (r *Repository) WithCanceler(c Canceler) *Repository {
	r.canceler = c
	return r
}

// Create makes a new group with the caller as creator and sole member.
func (r *Repository) Create(ctx context.Context, token, name string) (*models.Group, error) {
	session, err := r.guard.Authenticate(ctx, token)
	if err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperr.ValidationFailed("group name is required")
	}

	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		code, err := r.uniqueCode(ctx)
		if err != nil {
			return nil, err
		}
		g := &models.Group{
			ID:        shortuuid.New(),
			Name:      name,
			Code:      code,
			CreatorID: session.UserID,
			Members:   []string{session.UserID},
			CreatedAt: r.now().Unix(),
		}
		err = r.store.CreateGroup(ctx, g)
		if errors.Is(err, storage.ErrCodeTaken) {
			// Lost a race for the code between the existence check and the insert.
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to create group: %w", err)
		}
		slog.Info("Group created", "group_id", g.ID, "user_id", session.UserID)
		return g, nil
	}
	return nil, fmt.Errorf("failed to allocate a join code after %d attempts", maxCodeAttempts)
}

// uniqueCode samples codes until one is not used by any existing group.
func (r *Repository) uniqueCode(ctx context.Context) (string, error) {
	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		code, err := r.newCode()
		if err != nil {
			return "", err
		}
		exists, err := r.store.GroupCodeExists(ctx, code)
		if err != nil {
			return "", fmt.Errorf("failed to check join code: %w", err)
		}
		if !exists {
			return code, nil
		}
	}
	return "", fmt.Errorf("failed to allocate a join code after %d attempts", maxCodeAttempts)
}

// Join adds the caller to the group identified by code (case-insensitive).
func (r *Repository) Join(ctx context.Context, token, code string) (*models.Group, error) {
	session, err := r.guard.Authenticate(ctx, token)
	if err != nil {
		return nil, err
	}
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, apperr.ValidationFailed("join code is required")
	}

	found, err := r.store.GetGroupByCode(ctx, code)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, apperr.NotFound(fmt.Sprintf("no group uses join code %s", code))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve join code: %w", err)
	}

	g, err := r.mutateMembership(ctx, found.ID, func(g *models.Group) error {
		if err := authz.Check(authz.OpJoinGroup, session.UserID, g, ""); err != nil {
			return err
		}
		g.Members = append(g.Members, session.UserID)
		return nil
	})
	if err != nil {
		return nil, err
	}
	slog.Info("Member joined", "group_id", g.ID, "user_id", session.UserID)
	return g, nil
}

// Leave removes the caller from the group. The creator cannot leave.
func (r *Repository) Leave(ctx context.Context, token, groupID string) error {
	session, err := r.guard.Authenticate(ctx, token)
	if err != nil {
		return err
	}
	_, err = r.mutateMembership(ctx, groupID, func(g *models.Group) error {
		if err := authz.Check(authz.OpLeaveGroup, session.UserID, g, ""); err != nil {
			return err
		}
		g.Members = without(g.Members, session.UserID)
		return nil
	})
	if err != nil {
		return err
	}
	slog.Info("Member left", "group_id", groupID, "user_id", session.UserID)
	return nil
}

// RemoveMember lets the creator remove another member.
func (r *Repository) RemoveMember(ctx context.Context, token, groupID, targetID string) error {
	session, err := r.guard.Authenticate(ctx, token)
	if err != nil {
		return err
	}
	_, err = r.mutateMembership(ctx, groupID, func(g *models.Group) error {
		if err := authz.Check(authz.OpRemoveMember, session.UserID, g, targetID); err != nil {
			return err
		}
		g.Members = without(g.Members, targetID)
		return nil
	})
	if err != nil {
		return err
	}
	slog.Info("Member removed", "group_id", groupID, "user_id", targetID, "by", session.UserID)
	return nil
}

// Delete removes the group and everything scoped to it, then cancels any
// recommendation still running for it.
func (r *Repository) Delete(ctx context.Context, token, groupID string) error {
	session, err := r.guard.Authenticate(ctx, token)
	if err != nil {
		return err
	}

	unlock := r.locks.Lock(groupID)
	defer unlock()

	g, err := r.load(ctx, groupID)
	if err != nil {
		return err
	}
	if err := authz.Check(authz.OpDeleteGroup, session.UserID, g, ""); err != nil {
		return err
	}
	if err := r.store.DeleteGroup(ctx, groupID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return notFound(groupID)
		}
		return fmt.Errorf("failed to delete group: %w", err)
	}
	if r.canceler != nil {
		r.canceler.CancelGroup(groupID)
	}

	slog.Info("Group deleted", "group_id", groupID, "user_id", session.UserID)
	return nil
}

// Update merges the non-nil fields of patch into the group.
func (r *Repository) Update(ctx context.Context, token, groupID string, patch Patch) (*models.Group, error) {
	session, err := r.guard.Authenticate(ctx, token)
	if err != nil {
		return nil, err
	}
	if err := validatePatch(patch); err != nil {
		return nil, err
	}
	return r.mutate(ctx, groupID, func(g *models.Group) error {
		if err := authz.Check(authz.OpUpdateGroup, session.UserID, g, ""); err != nil {
			return err
		}
		applyPatch(g, patch)
		return nil
	})
}

// Get returns the group with its members resolved to public user data.
// Members whose user record cannot be found are skipped.
func (r *Repository) Get(ctx context.Context, token, groupID string) (*models.GroupView, error) {
	session, err := r.guard.Authenticate(ctx, token)
	if err != nil {
		return nil, err
	}
	g, err := r.load(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if err := authz.Check(authz.OpReadGroup, session.UserID, g, ""); err != nil {
		return nil, err
	}
	members, err := r.Members(ctx, g)
	if err != nil {
		return nil, err
	}
	view := &models.GroupView{Group: g, Members: make([]models.PublicUser, 0, len(members))}
	for _, u := range members {
		view.Members = append(view.Members, u.Public())
	}
	return view, nil
}

// Authorize resolves token and checks that the caller may perform op on the group.
func (r *Repository) Authorize(ctx context.Context, token, groupID string, op authz.Operation) (*models.Session, *models.Group, error) {
	session, err := r.guard.Authenticate(ctx, token)
	if err != nil {
		return nil, nil, err
	}
	g, err := r.load(ctx, groupID)
	if err != nil {
		return nil, nil, err
	}
	if err := authz.Check(op, session.UserID, g, ""); err != nil {
		return nil, nil, err
	}
	return session, g, nil
}

// Members returns the user records of g's members in member order, skipping
// users that no longer resolve.
func (r *Repository) Members(ctx context.Context, g *models.Group) ([]*models.User, error) {
	users, err := r.store.GetUsersByIDs(ctx, g.Members)
	if err != nil {
		return nil, fmt.Errorf("failed to load members: %w", err)
	}
	out := make([]*models.User, 0, len(g.Members))
	for _, id := range g.Members {
		u, ok := users[id]
		if !ok {
			slog.Warn("Skipping unknown member", "group_id", g.ID, "user_id", id)
			continue
		}
		out = append(out, u)
	}
	return out, nil
}

// ListMine returns the groups the caller belongs to, oldest first.
func (r *Repository) ListMine(ctx context.Context, token string) ([]*models.Group, error) {
	session, err := r.guard.Authenticate(ctx, token)
	if err != nil {
		return nil, err
	}
	groups, err := r.store.ListGroups(ctx, storage.GroupFilter{MemberID: session.UserID})
	if err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}
	return groups, nil
}

// SelectRestaurant records the caller's final pick for a trip day. The place must be
// one of the day's ranked candidates. An empty placeID clears the pick.
func (r *Repository) SelectRestaurant(ctx context.Context, token, groupID string, day int, placeID string) (*models.Group, error) {
	session, err := r.guard.Authenticate(ctx, token)
	if err != nil {
		return nil, err
	}
	return r.mutate(ctx, groupID, func(g *models.Group) error {
		if err := authz.Check(authz.OpUpdateGroup, session.UserID, g, ""); err != nil {
			return err
		}
		if placeID == "" {
			delete(g.Restaurants, day)
			if len(g.Restaurants) == 0 {
				g.Restaurants = nil
			}
			return nil
		}
		for _, sr := range g.RestaurantsByDay[day] {
			if sr.ID == placeID {
				if g.Restaurants == nil {
					g.Restaurants = make(map[int]models.ScoredRestaurant)
				}
				g.Restaurants[day] = sr
				return nil
			}
		}
		return apperr.NotFound(fmt.Sprintf("restaurant %s is not among the recommendations for day %d", placeID, day))
	})
}

// SaveRecommendations stores ranked lists computed for callerID in one write.
// members is the member list the lists were computed for; if the group's
// membership has changed since, nothing is written and a Conflict is returned.
// With replaceAll the previous results are dropped; otherwise only the given days
// are overwritten. Nothing is written if ctx is already cancelled.
func (r *Repository) SaveRecommendations(ctx context.Context, callerID, groupID string, members []string, byDay map[int][]models.ScoredRestaurant, replaceAll bool) (*models.Group, error) {
	return r.mutate(ctx, groupID, func(g *models.Group) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := authz.Check(authz.OpUpdateGroup, callerID, g, ""); err != nil {
			return err
		}
		if !slices.Equal(g.Members, members) {
			return apperr.Conflict("group membership changed while recommendations were computed, run again")
		}
		if replaceAll || g.RestaurantsByDay == nil {
			g.RestaurantsByDay = make(map[int][]models.ScoredRestaurant, len(byDay))
		}
		for day, list := range byDay {
			g.RestaurantsByDay[day] = list
		}
		g.LastRecommendedAt = r.now().Unix()
		return nil
	})
}

// mutateMembership is mutate plus the membership-change policy. Every join, leave
// and removal goes through here.
func (r *Repository) mutateMembership(ctx context.Context, groupID string, change func(*models.Group) error) (*models.Group, error) {
	return r.mutate(ctx, groupID, func(g *models.Group) error {
		if err := change(g); err != nil {
			return err
		}
		applyMembershipChange(g)
		return nil
	})
}

// mutate performs a read-check-write on one group under its key lock. If fn
// fails nothing is written. The store's version check rejects writers that
// bypassed the lock.
func (r *Repository) mutate(ctx context.Context, groupID string, fn func(*models.Group) error) (*models.Group, error) {
	unlock := r.locks.Lock(groupID)
	defer unlock()

	g, err := r.load(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if err := fn(g); err != nil {
		return nil, err
	}

	err = r.store.UpdateGroup(ctx, g)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return nil, notFound(groupID)
	case errors.Is(err, storage.ErrConflict):
		return nil, apperr.Conflict("group was modified concurrently, try again")
	case err != nil:
		return nil, fmt.Errorf("failed to update group: %w", err)
	}
	return g, nil
}

func (r *Repository) load(ctx context.Context, groupID string) (*models.Group, error) {
	g, err := r.store.GetGroup(ctx, groupID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, notFound(groupID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load group: %w", err)
	}
	return g, nil
}

func notFound(groupID string) error {
	return apperr.NotFound(fmt.Sprintf("group %s not found", groupID))
}

func without(ids []string, id string) []string {
	out := make([]string, 0, len(ids))
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

func validatePatch(p Patch) error {
	if p.Name != nil && strings.TrimSpace(*p.Name) == "" {
		return apperr.ValidationFailed("group name cannot be empty")
	}
	if p.TripPlan != nil {
		for i, day := range p.TripPlan.Days {
			if day.Radius <= 0 {
				return apperr.ValidationFailed(fmt.Sprintf("day %d: search radius must be positive", i))
			}
			if day.Location.Lat < -90 || day.Location.Lat > 90 || day.Location.Lng < -180 || day.Location.Lng > 180 {
				return apperr.ValidationFailed(fmt.Sprintf("day %d: location is out of range", i))
			}
		}
	}
	return nil
}

func applyPatch(g *models.Group, p Patch) {
	if p.Name != nil {
		g.Name = strings.TrimSpace(*p.Name)
	}
	if p.TripPlan != nil {
		tp := *p.TripPlan
		g.TripPlan = &tp
	}
	if p.LockJoin != nil {
		g.LockJoin = *p.LockJoin
	}
	if p.PreventReset != nil {
		g.PreventReset = *p.PreventReset
	}
	if p.RestaurantsByDay != nil {
		g.RestaurantsByDay = p.RestaurantsByDay
	}
	if p.Restaurants != nil {
		g.Restaurants = p.Restaurants
	}
}
