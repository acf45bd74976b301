package models

import (
	"maps"
	"slices"
)

// JoinCodeLength is the length of a group's join code.
const JoinCodeLength = 6

// Group is a travel party that receives shared restaurant recommendations.
type Group struct {
	// ID is the unique identifier for the group (short UUID).
	ID string

	// Name is the human-readable name (e.g., "Jeju Trip").
	Name string

	// Code is the shareable join code, stored upper-case and matched case-insensitively.
	Code string

	// CreatorID is the user who created the group. Immutable, always a member.
	CreatorID string

	// Members are user IDs in join order. No duplicates.
	Members []string

	// LockJoin rejects new joins while set.
	LockJoin bool

	// PreventReset keeps recommendation results across membership changes.
	PreventReset bool

	// TripPlan is nil until a member plans the trip.
	TripPlan *TripPlan

	// RestaurantsByDay holds the ranked candidates per trip day index.
	// Nil when no recommendation has been computed or after a reset.
	RestaurantsByDay map[int][]ScoredRestaurant

	// Restaurants holds the restaurant picked for each trip day index.
	// Nil when nothing has been picked or after a reset.
	Restaurants map[int]ScoredRestaurant

	// LastRecommendedAt is the Unix timestamp of the last persisted recommendation.
	LastRecommendedAt int64

	// Version increases on every write and guards compare-and-swap updates.
	Version int64

	// CreatedAt is the Unix timestamp when the group was created.
	CreatedAt int64
}

// TripPlan describes where the group is travelling.
type TripPlan struct {
	Region string       `json:"region"`
	Days   []DaySegment `json:"days"`
}

// DaySegment is one day of the trip: where to search and how far.
type DaySegment struct {
	Location    LatLng `json:"location"`
	Radius      int    `json:"radius"` // meters
	Description string `json:"description"`
}

// LatLng is a WGS84 coordinate.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// IsMember reports whether userID belongs to the group.
func (g *Group) IsMember(userID string) bool {
	return slices.Contains(g.Members, userID)
}

// Clone returns a deep copy of g so callers can mutate it freely.
func (g *Group) Clone() *Group {
	c := *g
	c.Members = slices.Clone(g.Members)
	if g.TripPlan != nil {
		tp := *g.TripPlan
		tp.Days = slices.Clone(g.TripPlan.Days)
		c.TripPlan = &tp
	}
	if g.RestaurantsByDay != nil {
		c.RestaurantsByDay = make(map[int][]ScoredRestaurant, len(g.RestaurantsByDay))
		for day, list := range g.RestaurantsByDay {
			c.RestaurantsByDay[day] = slices.Clone(list)
		}
	}
	c.Restaurants = maps.Clone(g.Restaurants)
	return &c
}

// GroupPatch lists the fields that may be changed through an update.
// Nil fields are left untouched; ID, Code and CreatorID are deliberately absent.
type GroupPatch struct {
	Name             *string
	TripPlan         *TripPlan
	LockJoin         *bool
	PreventReset     *bool
	RestaurantsByDay map[int][]ScoredRestaurant
	Restaurants      map[int]ScoredRestaurant
}

// GroupView is a group with its members resolved to public user data.
type GroupView struct {
	Group   *Group
	Members []PublicUser
}
