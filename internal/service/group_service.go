package service

import (
	"context"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/tripbite/internal/group"
	"github.com/mmynk/tripbite/internal/middleware"
)

// GroupService implements tripbite.v1.GroupService.
type GroupService struct {
	groups *group.Repository
}

// NewGroupService creates a new GroupService backed by the group repository.
func NewGroupService(groups *group.Repository) *GroupService {
	return &GroupService{groups: groups}
}

// CreateGroup creates a new group with the caller as creator.
func (s *GroupService) CreateGroup(ctx context.Context, req *connect.Request[CreateGroupRequest]) (*connect.Response[CreateGroupResponse], error) {
	slog.Info("CreateGroup request received", "name", req.Msg.Name)

	g, err := s.groups.Create(ctx, middleware.GetToken(ctx), req.Msg.Name)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&CreateGroupResponse{Group: toGroup(g)}), nil
}

// JoinGroup adds the caller to the group with the given join code.
func (s *GroupService) JoinGroup(ctx context.Context, req *connect.Request[JoinGroupRequest]) (*connect.Response[JoinGroupResponse], error) {
	slog.Info("JoinGroup request received", "code", req.Msg.Code)

	g, err := s.groups.Join(ctx, middleware.GetToken(ctx), req.Msg.Code)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&JoinGroupResponse{Group: toGroup(g)}), nil
}

// LeaveGroup removes the caller from a group.
func (s *GroupService) LeaveGroup(ctx context.Context, req *connect.Request[LeaveGroupRequest]) (*connect.Response[LeaveGroupResponse], error) {
	slog.Info("LeaveGroup request received", "group_id", req.Msg.GroupID)

	if err := s.groups.Leave(ctx, middleware.GetToken(ctx), req.Msg.GroupID); err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&LeaveGroupResponse{}), nil
}

// RemoveMember removes another member. Creator only.
func (s *GroupService) RemoveMember(ctx context.Context, req *connect.Request[RemoveMemberRequest]) (*connect.Response[RemoveMemberResponse], error) {
	slog.Info("RemoveMember request received", "group_id", req.Msg.GroupID, "user_id", req.Msg.UserID)

	if err := s.groups.RemoveMember(ctx, middleware.GetToken(ctx), req.Msg.GroupID, req.Msg.UserID); err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&RemoveMemberResponse{}), nil
}

// DeleteGroup removes a group. Creator only.
func (s *GroupService) DeleteGroup(ctx context.Context, req *connect.Request[DeleteGroupRequest]) (*connect.Response[DeleteGroupResponse], error) {
	slog.Info("DeleteGroup request received", "group_id", req.Msg.GroupID)

	if err := s.groups.Delete(ctx, middleware.GetToken(ctx), req.Msg.GroupID); err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&DeleteGroupResponse{}), nil
}

// GetGroup returns a group with member profiles.
func (s *GroupService) GetGroup(ctx context.Context, req *connect.Request[GetGroupRequest]) (*connect.Response[GetGroupResponse], error) {
	view, err := s.groups.Get(ctx, middleware.GetToken(ctx), req.Msg.GroupID)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&GetGroupResponse{
		Group:   toGroup(view.Group),
		Members: view.Members,
	}), nil
}

// UpdateGroup merges the submitted fields into the group.
func (s *GroupService) UpdateGroup(ctx context.Context, req *connect.Request[UpdateGroupRequest]) (*connect.Response[UpdateGroupResponse], error) {
	slog.Info("UpdateGroup request received", "group_id", req.Msg.GroupID)

	g, err := s.groups.Update(ctx, middleware.GetToken(ctx), req.Msg.GroupID, group.Patch{
		Name:             req.Msg.Name,
		TripPlan:         req.Msg.TripPlan,
		LockJoin:         req.Msg.LockJoin,
		PreventReset:     req.Msg.PreventReset,
		RestaurantsByDay: req.Msg.RestaurantsByDay,
		Restaurants:      req.Msg.Restaurants,
	})
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&UpdateGroupResponse{Group: toGroup(g)}), nil
}

// ListMyGroups lists the groups the caller belongs to.
func (s *GroupService) ListMyGroups(ctx context.Context, _ *connect.Request[ListMyGroupsRequest]) (*connect.Response[ListMyGroupsResponse], error) {
	groups, err := s.groups.ListMine(ctx, middleware.GetToken(ctx))
	if err != nil {
		return nil, toConnectError(err)
	}
	out := make([]*Group, len(groups))
	for i, g := range groups {
		out[i] = toGroup(g)
	}
	return connect.NewResponse(&ListMyGroupsResponse{Groups: out}), nil
}

// SelectRestaurant records the final pick for one trip day.
func (s *GroupService) SelectRestaurant(ctx context.Context, req *connect.Request[SelectRestaurantRequest]) (*connect.Response[SelectRestaurantResponse], error) {
	slog.Info("SelectRestaurant request received", "group_id", req.Msg.GroupID, "day", req.Msg.DayIndex, "place_id", req.Msg.PlaceID)

	g, err := s.groups.SelectRestaurant(ctx, middleware.GetToken(ctx), req.Msg.GroupID, req.Msg.DayIndex, req.Msg.PlaceID)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&SelectRestaurantResponse{Group: toGroup(g)}), nil
}
