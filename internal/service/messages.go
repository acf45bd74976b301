package service

import "github.com/mmynk/tripbite/internal/models"

// Wire messages of the tripbite.v1 services, encoded with jsonCodec.

type RegisterRequest struct {
	ID          string `json:"id"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
}

type RegisterResponse struct {
	User models.PublicUser `json:"user"`
}

type LoginRequest struct {
	ID       string `json:"id"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token     string            `json:"token"`
	ExpiresAt int64             `json:"expires_at"`
	User      models.PublicUser `json:"user"`
}

type LogoutRequest struct{}

type LogoutResponse struct{}

type GetCurrentUserRequest struct{}

type GetCurrentUserResponse struct {
	User models.PublicUser `json:"user"`
}

// PreferenceMessage is the raw preference a user submits.
type PreferenceMessage struct {
	LikedCategories    []string            `json:"liked_categories"`
	DislikedCategories []string            `json:"disliked_categories"`
	CannotEat          []string            `json:"cannot_eat"`
	LikedKeywords      []string            `json:"liked_keywords"`
	DislikedKeywords   []string            `json:"disliked_keywords"`
	Budget             *models.BudgetRange `json:"budget,omitempty"`
}

type UpdateProfileRequest struct {
	UserID      string             `json:"user_id"`
	DisplayName *string            `json:"display_name,omitempty"`
	Avatar      *string            `json:"avatar,omitempty"`
	Preference  *PreferenceMessage `json:"preference,omitempty"`
}

type UpdateProfileResponse struct {
	User models.PublicUser `json:"user"`
}

// Group is the wire form of a group.
type Group struct {
	ID                string                            `json:"id"`
	Name              string                            `json:"name"`
	Code              string                            `json:"code"`
	CreatorID         string                            `json:"creator_id"`
	Members           []string                          `json:"members"`
	LockJoin          bool                              `json:"lock_join"`
	PreventReset      bool                              `json:"prevent_reset"`
	TripPlan          *models.TripPlan                  `json:"trip_plan,omitempty"`
	RestaurantsByDay  map[int][]models.ScoredRestaurant `json:"restaurants_by_day"`
	Restaurants       map[int]models.ScoredRestaurant   `json:"restaurants"`
	LastRecommendedAt int64                             `json:"last_recommended_at,omitempty"`
	CreatedAt         int64                             `json:"created_at"`
}

func toGroup(g *models.Group) *Group {
	return &Group{
		ID:                g.ID,
		Name:              g.Name,
		Code:              g.Code,
		CreatorID:         g.CreatorID,
		Members:           g.Members,
		LockJoin:          g.LockJoin,
		PreventReset:      g.PreventReset,
		TripPlan:          g.TripPlan,
		RestaurantsByDay:  g.RestaurantsByDay,
		Restaurants:       g.Restaurants,
		LastRecommendedAt: g.LastRecommendedAt,
		CreatedAt:         g.CreatedAt,
	}
}

type CreateGroupRequest struct {
	Name string `json:"name"`
}

type CreateGroupResponse struct {
	Group *Group `json:"group"`
}

type JoinGroupRequest struct {
	Code string `json:"code"`
}

type JoinGroupResponse struct {
	Group *Group `json:"group"`
}

type LeaveGroupRequest struct {
	GroupID string `json:"group_id"`
}

type LeaveGroupResponse struct{}

type RemoveMemberRequest struct {
	GroupID string `json:"group_id"`
	UserID  string `json:"user_id"`
}

type RemoveMemberResponse struct{}

type DeleteGroupRequest struct {
	GroupID string `json:"group_id"`
}

type DeleteGroupResponse struct{}

type GetGroupRequest struct {
	GroupID string `json:"group_id"`
}

type GetGroupResponse struct {
	Group   *Group              `json:"group"`
	Members []models.PublicUser `json:"member_profiles"`
}

type UpdateGroupRequest struct {
	GroupID          string                            `json:"group_id"`
	Name             *string                           `json:"name,omitempty"`
	TripPlan         *models.TripPlan                  `json:"trip_plan,omitempty"`
	LockJoin         *bool                             `json:"lock_join,omitempty"`
	PreventReset     *bool                             `json:"prevent_reset,omitempty"`
	RestaurantsByDay map[int][]models.ScoredRestaurant `json:"restaurants_by_day,omitempty"`
	Restaurants      map[int]models.ScoredRestaurant   `json:"restaurants,omitempty"`
}

type UpdateGroupResponse struct {
	Group *Group `json:"group"`
}

type ListMyGroupsRequest struct{}

type ListMyGroupsResponse struct {
	Groups []*Group `json:"groups"`
}

type SelectRestaurantRequest struct {
	GroupID  string `json:"group_id"`
	DayIndex int    `json:"day_index"`
	// PlaceID empty clears the day's pick.
	PlaceID string `json:"place_id"`
}

type SelectRestaurantResponse struct {
	Group *Group `json:"group"`
}

type ComputeRecommendationsRequest struct {
	GroupID string `json:"group_id"`
	// DayIndex selects one trip day; absent means every day.
	DayIndex *int `json:"day_index,omitempty"`
}

type ComputeRecommendationsResponse struct {
	RestaurantsByDay map[int][]models.ScoredRestaurant `json:"restaurants_by_day"`
}
