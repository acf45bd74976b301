package places

import (
	"context"

	"github.com/mmynk/tripbite/internal/models"
)

// MockSearcher returns two fixed restaurants next to the queried location.
// It stands in for the provider when no API key is configured.
type MockSearcher struct{}

func (MockSearcher) Search(_ context.Context, q Query) ([]models.Candidate, error) {
	return []models.Candidate{
		{
			ID:          "mock_loc_1",
			Name:        "지도 기반 모의 식당 1",
			Category:    "restaurant",
			Rating:      4.8,
			ReviewCount: 210,
			Tags:        []string{"restaurant", "food", "point_of_interest"},
			Location:    models.LatLng{Lat: q.Location.Lat + 0.001, Lng: q.Location.Lng + 0.001},
			Address:     "서울시 성북구",
		},
		{
			ID:          "mock_loc_2",
			Name:        "지도 기반 모의 식당 2",
			Category:    "cafe",
			Rating:      4.4,
			ReviewCount: 120,
			Tags:        []string{"cafe", "food", "point_of_interest"},
			Location:    models.LatLng{Lat: q.Location.Lat - 0.001, Lng: q.Location.Lng - 0.001},
			Address:     "서울시 성북구",
		},
	}, nil
}
