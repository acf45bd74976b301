package models

// Candidate is a restaurant returned by the place-search provider.
// The core never changes it; scoring only annotates it.
type Candidate struct {
	// ID is the provider's place identifier.
	ID string `json:"id"`

	Name string `json:"name"`

	// Category is the primary cuisine label (e.g., "한식").
	Category string `json:"category"`

	// Rating is the average rating in [0, 5]; 0 means unrated.
	Rating float64 `json:"rating"`

	ReviewCount int `json:"review_count"`

	// PriceLevel is the provider's 0-4 price tier, nil when unknown.
	PriceLevel *int `json:"price_level,omitempty"`

	// Tags are free-text keyword/type tags.
	Tags []string `json:"tags"`

	Location LatLng `json:"location"`
	Address  string `json:"address"`
}

// ScoredRestaurant is a Candidate annotated with its consensus score.
type ScoredRestaurant struct {
	Candidate
	Score float64 `json:"score"`
}
