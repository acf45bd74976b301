package service

import (
	"context"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/tripbite/internal/middleware"
	"github.com/mmynk/tripbite/internal/recommend"
)

// RecommendationService implements tripbite.v1.RecommendationService.
type RecommendationService struct {
	recommender *recommend.Service
}

// NewRecommendationService creates a new RecommendationService.
func NewRecommendationService(recommender *recommend.Service) *RecommendationService {
	return &RecommendationService{recommender: recommender}
}

// ComputeRecommendations ranks restaurants for one day or the whole trip and
// stores the result on the group.
func (s *RecommendationService) ComputeRecommendations(ctx context.Context, req *connect.Request[ComputeRecommendationsRequest]) (*connect.Response[ComputeRecommendationsResponse], error) {
	slog.Info("ComputeRecommendations request received", "group_id", req.Msg.GroupID, "all_days", req.Msg.DayIndex == nil)

	byDay, err := s.recommender.Compute(ctx, middleware.GetToken(ctx), req.Msg.GroupID, req.Msg.DayIndex)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&ComputeRecommendationsResponse{RestaurantsByDay: byDay}), nil
}
