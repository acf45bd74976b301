// Package places is the client side of the external place-search provider.
package places

import (
	"context"

	"github.com/mmynk/tripbite/internal/models"
)

// Query describes one nearby search around a trip day's location.
type Query struct {
	Location models.LatLng
	Radius   int // meters
	Keyword  string
}

// Searcher returns candidate restaurants for a query.
// Implementations must not retry on failure.
type Searcher interface {
	Search(ctx context.Context, q Query) ([]models.Candidate, error)
}

// SearcherFunc adapts a function to Searcher.
type SearcherFunc func(ctx context.Context, q Query) ([]models.Candidate, error)

func (f SearcherFunc) Search(ctx context.Context, q Query) ([]models.Candidate, error) {
	return f(ctx, q)
}
