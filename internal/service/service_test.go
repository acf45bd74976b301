package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"connectrpc.com/connect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/mmynk/tripbite/internal/account"
	"github.com/mmynk/tripbite/internal/auth"
	"github.com/mmynk/tripbite/internal/authz"
	"github.com/mmynk/tripbite/internal/consensus"
	"github.com/mmynk/tripbite/internal/group"
	"github.com/mmynk/tripbite/internal/metrics"
	"github.com/mmynk/tripbite/internal/middleware"
	"github.com/mmynk/tripbite/internal/models"
	"github.com/mmynk/tripbite/internal/places"
	"github.com/mmynk/tripbite/internal/recommend"
	"github.com/mmynk/tripbite/internal/storage"
	"github.com/mmynk/tripbite/internal/storage/memory"
)

var jejuCandidates = []models.Candidate{
	{ID: "R1", Name: "Dombe Don", Tags: []string{"한식"}, Rating: 4.5},
	{ID: "R2", Name: "Seafood House", Tags: []string{"해산물", "일식"}, Rating: 4.8},
	{ID: "R3", Name: "Sushi Bar", Tags: []string{"일식"}, Rating: 4.0},
}

// setupTestServer wires every service over an in-memory store, the way the
// server command does.
func setupTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	return setupTestServerWithStore(t, memory.New())
}

func setupTestServerWithStore(t *testing.T, store storage.Store) *httptest.Server {
	t.Helper()

	sessions := auth.NewSessionManager(
		auth.NewPasswordAuthenticator(store).WithCost(bcrypt.MinCost),
		auth.NewJWTManager("test-secret", time.Hour),
		store,
	)
	guard := authz.NewGuard(sessions)
	m := metrics.New()

	groups := group.NewRepository(store, guard)
	searcher := places.SearcherFunc(func(context.Context, places.Query) ([]models.Candidate, error) {
		return jejuCandidates, nil
	})
	recommender := recommend.NewService(groups, searcher, consensus.NewScorer(consensus.DefaultWeights), m, "")
	groups.WithCanceler(recommender)

	interceptors := connect.WithInterceptors(
		middleware.BearerToken(),
		middleware.LoggingInterceptor(),
		middleware.MetricsInterceptor(m),
	)

	mux := http.NewServeMux()
	mux.Handle(NewAuthServiceHandler(NewAuthService(sessions, account.NewService(store, guard, sessions)), interceptors))
	mux.Handle(NewGroupServiceHandler(NewGroupService(groups), interceptors))
	mux.Handle(NewRecommendationServiceHandler(NewRecommendationService(recommender), interceptors))

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func call[Req, Res any](t *testing.T, server *httptest.Server, procedure, token string, msg *Req) (*Res, error) {
	t.Helper()
	client := connect.NewClient[Req, Res](server.Client(), server.URL+procedure, Codec())
	req := connect.NewRequest(msg)
	if token != "" {
		req.Header().Set("Authorization", "Bearer "+token)
	}
	resp, err := client.CallUnary(context.Background(), req)
	if err != nil {
		return nil, err
	}
	return resp.Msg, nil
}

func signUp(t *testing.T, server *httptest.Server, id string, pref *PreferenceMessage) string {
	t.Helper()
	_, err := call[RegisterRequest, RegisterResponse](t, server, AuthServiceRegisterProcedure, "",
		&RegisterRequest{ID: id, Password: "password1", DisplayName: id})
	require.NoError(t, err)

	login, err := call[LoginRequest, LoginResponse](t, server, AuthServiceLoginProcedure, "",
		&LoginRequest{ID: id, Password: "password1"})
	require.NoError(t, err)
	require.NotEmpty(t, login.Token)

	if pref != nil {
		_, err = call[UpdateProfileRequest, UpdateProfileResponse](t, server, AuthServiceUpdateProfileProcedure, login.Token,
			&UpdateProfileRequest{UserID: id, Preference: pref})
		require.NoError(t, err)
	}
	return login.Token
}

func TestRecommendationFlow(t *testing.T) {
	server := setupTestServer(t)
	alice := signUp(t, server, "alice", &PreferenceMessage{LikedCategories: []string{"한식"}, DislikedCategories: []string{"해산물"}})
	bob := signUp(t, server, "bob", &PreferenceMessage{LikedCategories: []string{"일식"}, CannotEat: []string{"해산물"}})

	created, err := call[CreateGroupRequest, CreateGroupResponse](t, server, GroupServiceCreateGroupProcedure, alice,
		&CreateGroupRequest{Name: "Jeju Trip"})
	require.NoError(t, err)
	groupID := created.Group.ID

	joined, err := call[JoinGroupRequest, JoinGroupResponse](t, server, GroupServiceJoinGroupProcedure, bob,
		&JoinGroupRequest{Code: created.Group.Code})
	require.NoError(t, err)
	assert.Equal(t, []string{"alice", "bob"}, joined.Group.Members)

	_, err = call[UpdateGroupRequest, UpdateGroupResponse](t, server, GroupServiceUpdateGroupProcedure, bob,
		&UpdateGroupRequest{GroupID: groupID, TripPlan: &models.TripPlan{
			Region: "Jeju",
			Days:   []models.DaySegment{{Location: models.LatLng{Lat: 33.5, Lng: 126.5}, Radius: 1500, Description: "Day 1"}},
		}})
	require.NoError(t, err)

	rec, err := call[ComputeRecommendationsRequest, ComputeRecommendationsResponse](t, server,
		RecommendationServiceComputeRecommendationsProcedure, alice, &ComputeRecommendationsRequest{GroupID: groupID})
	require.NoError(t, err)
	require.Len(t, rec.RestaurantsByDay[0], 2)
	assert.Equal(t, "R1", rec.RestaurantsByDay[0][0].ID)
	assert.Equal(t, "R3", rec.RestaurantsByDay[0][1].ID)
	assert.InDelta(t, 5.5, rec.RestaurantsByDay[0][0].Score, 1e-9)

	picked, err := call[SelectRestaurantRequest, SelectRestaurantResponse](t, server, GroupServiceSelectRestaurantProcedure, bob,
		&SelectRestaurantRequest{GroupID: groupID, DayIndex: 0, PlaceID: "R3"})
	require.NoError(t, err)
	assert.Equal(t, "Sushi Bar", picked.Group.Restaurants[0].Name)

	got, err := call[GetGroupRequest, GetGroupResponse](t, server, GroupServiceGetGroupProcedure, bob,
		&GetGroupRequest{GroupID: groupID})
	require.NoError(t, err)
	require.Len(t, got.Members, 2)
	assert.Equal(t, "alice", got.Members[0].ID)
	assert.NotNil(t, got.Group.RestaurantsByDay)

	mine, err := call[ListMyGroupsRequest, ListMyGroupsResponse](t, server, GroupServiceListMyGroupsProcedure, bob,
		&ListMyGroupsRequest{})
	require.NoError(t, err)
	require.Len(t, mine.Groups, 1)
	assert.Equal(t, groupID, mine.Groups[0].ID)
}

func TestErrorCodes(t *testing.T) {
	server := setupTestServer(t)
	alice := signUp(t, server, "alice", nil)
	bob := signUp(t, server, "bob", nil)

	created, err := call[CreateGroupRequest, CreateGroupResponse](t, server, GroupServiceCreateGroupProcedure, alice,
		&CreateGroupRequest{Name: "Jeju Trip"})
	require.NoError(t, err)
	groupID := created.Group.ID

	_, err = call[JoinGroupRequest, JoinGroupResponse](t, server, GroupServiceJoinGroupProcedure, bob,
		&JoinGroupRequest{Code: created.Group.Code})
	require.NoError(t, err)

	t.Run("duplicate registration", func(t *testing.T) {
		_, err := call[RegisterRequest, RegisterResponse](t, server, AuthServiceRegisterProcedure, "",
			&RegisterRequest{ID: "alice", Password: "password1", DisplayName: "Other"})
		assert.Equal(t, connect.CodeAlreadyExists, connect.CodeOf(err))
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := call[LoginRequest, LoginResponse](t, server, AuthServiceLoginProcedure, "",
			&LoginRequest{ID: "alice", Password: "nope-nope"})
		assert.Equal(t, connect.CodeUnauthenticated, connect.CodeOf(err))
	})

	t.Run("missing token", func(t *testing.T) {
		_, err := call[GetGroupRequest, GetGroupResponse](t, server, GroupServiceGetGroupProcedure, "",
			&GetGroupRequest{GroupID: groupID})
		assert.Equal(t, connect.CodeUnauthenticated, connect.CodeOf(err))
	})

	t.Run("creator leaves", func(t *testing.T) {
		_, err := call[LeaveGroupRequest, LeaveGroupResponse](t, server, GroupServiceLeaveGroupProcedure, alice,
			&LeaveGroupRequest{GroupID: groupID})
		assert.Equal(t, connect.CodePermissionDenied, connect.CodeOf(err))
		var connectErr *connect.Error
		require.ErrorAs(t, err, &connectErr)
		assert.Contains(t, connectErr.Message(), "delete the group instead")
	})

	t.Run("non-creator removes", func(t *testing.T) {
		_, err := call[RemoveMemberRequest, RemoveMemberResponse](t, server, GroupServiceRemoveMemberProcedure, bob,
			&RemoveMemberRequest{GroupID: groupID, UserID: "alice"})
		assert.Equal(t, connect.CodePermissionDenied, connect.CodeOf(err))
	})

	t.Run("unknown join code", func(t *testing.T) {
		_, err := call[JoinGroupRequest, JoinGroupResponse](t, server, GroupServiceJoinGroupProcedure, bob,
			&JoinGroupRequest{Code: "ZZZZZZ"})
		assert.Equal(t, connect.CodeNotFound, connect.CodeOf(err))
	})

	t.Run("missing preferences", func(t *testing.T) {
		_, err := call[UpdateGroupRequest, UpdateGroupResponse](t, server, GroupServiceUpdateGroupProcedure, alice,
			&UpdateGroupRequest{GroupID: groupID, TripPlan: &models.TripPlan{
				Days: []models.DaySegment{{Location: models.LatLng{Lat: 33.5, Lng: 126.5}, Radius: 500}},
			}})
		require.NoError(t, err)

		_, err = call[ComputeRecommendationsRequest, ComputeRecommendationsResponse](t, server,
			RecommendationServiceComputeRecommendationsProcedure, alice, &ComputeRecommendationsRequest{GroupID: groupID})
		assert.Equal(t, connect.CodeInvalidArgument, connect.CodeOf(err))
		var connectErr *connect.Error
		require.ErrorAs(t, err, &connectErr)
		assert.Equal(t, "recommendation blocked, missing preferences from: alice, bob", connectErr.Message())
	})

	t.Run("profile of another user", func(t *testing.T) {
		name := "Mallory"
		_, err := call[UpdateProfileRequest, UpdateProfileResponse](t, server, AuthServiceUpdateProfileProcedure, bob,
			&UpdateProfileRequest{UserID: "alice", DisplayName: &name})
		assert.Equal(t, connect.CodePermissionDenied, connect.CodeOf(err))
	})

	t.Run("invalid preference", func(t *testing.T) {
		_, err := call[UpdateProfileRequest, UpdateProfileResponse](t, server, AuthServiceUpdateProfileProcedure, bob,
			&UpdateProfileRequest{UserID: "bob", Preference: &PreferenceMessage{
				LikedCategories:    []string{"일식"},
				DislikedCategories: []string{"일식"},
			}})
		assert.Equal(t, connect.CodeInvalidArgument, connect.CodeOf(err))
	})

	t.Run("delete then read", func(t *testing.T) {
		_, err := call[DeleteGroupRequest, DeleteGroupResponse](t, server, GroupServiceDeleteGroupProcedure, bob,
			&DeleteGroupRequest{GroupID: groupID})
		assert.Equal(t, connect.CodePermissionDenied, connect.CodeOf(err))

		_, err = call[DeleteGroupRequest, DeleteGroupResponse](t, server, GroupServiceDeleteGroupProcedure, alice,
			&DeleteGroupRequest{GroupID: groupID})
		require.NoError(t, err)

		_, err = call[GetGroupRequest, GetGroupResponse](t, server, GroupServiceGetGroupProcedure, alice,
			&GetGroupRequest{GroupID: groupID})
		assert.Equal(t, connect.CodeNotFound, connect.CodeOf(err))
	})
}

func TestLogoutAndCurrentUser(t *testing.T) {
	server := setupTestServer(t)
	token := signUp(t, server, "alice", nil)

	name := "Ally"
	_, err := call[UpdateProfileRequest, UpdateProfileResponse](t, server, AuthServiceUpdateProfileProcedure, token,
		&UpdateProfileRequest{UserID: "alice", DisplayName: &name})
	require.NoError(t, err)

	me, err := call[GetCurrentUserRequest, GetCurrentUserResponse](t, server, AuthServiceGetCurrentUserProcedure, token,
		&GetCurrentUserRequest{})
	require.NoError(t, err)
	assert.Equal(t, "Ally", me.User.DisplayName)

	_, err = call[LogoutRequest, LogoutResponse](t, server, AuthServiceLogoutProcedure, token, &LogoutRequest{})
	require.NoError(t, err)
	_, err = call[LogoutRequest, LogoutResponse](t, server, AuthServiceLogoutProcedure, token, &LogoutRequest{})
	require.NoError(t, err, "logout is idempotent")

	_, err = call[GetCurrentUserRequest, GetCurrentUserResponse](t, server, AuthServiceGetCurrentUserProcedure, token,
		&GetCurrentUserRequest{})
	assert.Equal(t, connect.CodeUnauthenticated, connect.CodeOf(err))
}
