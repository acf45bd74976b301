package service

import (
	"net/http"

	"connectrpc.com/connect"
)

// Service names and procedure paths of the tripbite.v1 API.
const (
	AuthServiceName           = "tripbite.v1.AuthService"
	GroupServiceName          = "tripbite.v1.GroupService"
	RecommendationServiceName = "tripbite.v1.RecommendationService"

	AuthServiceRegisterProcedure       = "/tripbite.v1.AuthService/Register"
	AuthServiceLoginProcedure          = "/tripbite.v1.AuthService/Login"
	AuthServiceLogoutProcedure         = "/tripbite.v1.AuthService/Logout"
	AuthServiceGetCurrentUserProcedure = "/tripbite.v1.AuthService/GetCurrentUser"
	AuthServiceUpdateProfileProcedure  = "/tripbite.v1.AuthService/UpdateProfile"

	GroupServiceCreateGroupProcedure      = "/tripbite.v1.GroupService/CreateGroup"
	GroupServiceJoinGroupProcedure        = "/tripbite.v1.GroupService/JoinGroup"
	GroupServiceLeaveGroupProcedure       = "/tripbite.v1.GroupService/LeaveGroup"
	GroupServiceRemoveMemberProcedure     = "/tripbite.v1.GroupService/RemoveMember"
	GroupServiceDeleteGroupProcedure      = "/tripbite.v1.GroupService/DeleteGroup"
	GroupServiceGetGroupProcedure         = "/tripbite.v1.GroupService/GetGroup"
	GroupServiceUpdateGroupProcedure      = "/tripbite.v1.GroupService/UpdateGroup"
	GroupServiceListMyGroupsProcedure     = "/tripbite.v1.GroupService/ListMyGroups"
	GroupServiceSelectRestaurantProcedure = "/tripbite.v1.GroupService/SelectRestaurant"

	RecommendationServiceComputeRecommendationsProcedure = "/tripbite.v1.RecommendationService/ComputeRecommendations"
)

// NewAuthServiceHandler builds an HTTP handler for AuthService and returns the
// path it should be mounted on.
func NewAuthServiceHandler(svc *AuthService, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{Codec()}, opts...)
	mux := http.NewServeMux()
	mux.Handle(AuthServiceRegisterProcedure, connect.NewUnaryHandler(AuthServiceRegisterProcedure, svc.Register, opts...))
	mux.Handle(AuthServiceLoginProcedure, connect.NewUnaryHandler(AuthServiceLoginProcedure, svc.Login, opts...))
	mux.Handle(AuthServiceLogoutProcedure, connect.NewUnaryHandler(AuthServiceLogoutProcedure, svc.Logout, opts...))
	mux.Handle(AuthServiceGetCurrentUserProcedure, connect.NewUnaryHandler(AuthServiceGetCurrentUserProcedure, svc.GetCurrentUser, opts...))
	mux.Handle(AuthServiceUpdateProfileProcedure, connect.NewUnaryHandler(AuthServiceUpdateProfileProcedure, svc.UpdateProfile, opts...))
	return "/" + AuthServiceName + "/", mux
}

// NewGroupServiceHandler builds an HTTP handler for GroupService.
func NewGroupServiceHandler(svc *GroupService, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{Codec()}, opts...)
	mux := http.NewServeMux()
	mux.Handle(GroupServiceCreateGroupProcedure, connect.NewUnaryHandler(GroupServiceCreateGroupProcedure, svc.CreateGroup, opts...))
	mux.Handle(GroupServiceJoinGroupProcedure, connect.NewUnaryHandler(GroupServiceJoinGroupProcedure, svc.JoinGroup, opts...))
	mux.Handle(GroupServiceLeaveGroupProcedure, connect.NewUnaryHandler(GroupServiceLeaveGroupProcedure, svc.LeaveGroup, opts...))
	mux.Handle(GroupServiceRemoveMemberProcedure, connect.NewUnaryHandler(GroupServiceRemoveMemberProcedure, svc.RemoveMember, opts...))
	mux.Handle(GroupServiceDeleteGroupProcedure, connect.NewUnaryHandler(GroupServiceDeleteGroupProcedure, svc.DeleteGroup, opts...))
	mux.Handle(GroupServiceGetGroupProcedure, connect.NewUnaryHandler(GroupServiceGetGroupProcedure, svc.GetGroup, opts...))
	mux.Handle(GroupServiceUpdateGroupProcedure, connect.NewUnaryHandler(GroupServiceUpdateGroupProcedure, svc.UpdateGroup, opts...))
	mux.Handle(GroupServiceListMyGroupsProcedure, connect.NewUnaryHandler(GroupServiceListMyGroupsProcedure, svc.ListMyGroups, opts...))
	mux.Handle(GroupServiceSelectRestaurantProcedure, connect.NewUnaryHandler(GroupServiceSelectRestaurantProcedure, svc.SelectRestaurant, opts...))
	return "/" + GroupServiceName + "/", mux
}

// NewRecommendationServiceHandler builds an HTTP handler for RecommendationService.
func NewRecommendationServiceHandler(svc *RecommendationService, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{Codec()}, opts...)
	mux := http.NewServeMux()
	mux.Handle(RecommendationServiceComputeRecommendationsProcedure, connect.NewUnaryHandler(
		RecommendationServiceComputeRecommendationsProcedure, svc.ComputeRecommendations, opts...))
	return "/" + RecommendationServiceName + "/", mux
}
