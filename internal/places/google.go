package places

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/time/rate"

	"github.com/mmynk/tripbite/internal/models"
)

// DefaultBaseURL is the Google Maps web service host.
const DefaultBaseURL = "https://maps.googleapis.com"

const nearbySearchPath = "/maps/api/place/nearbysearch/json"

// genericTypes are place types too broad to serve as a cuisine category.
var genericTypes = []string{"food", "point_of_interest", "establishment", "store"}

// GoogleConfig configures GoogleClient.
type GoogleConfig struct {
	APIKey   string
	BaseURL  string
	Language string
	// RatePerSecond caps outgoing requests; zero disables throttling.
	RatePerSecond float64
	Timeout       time.Duration
}

// GoogleClient queries the Places Nearby Search API.
type GoogleClient struct {
	cfg     GoogleConfig
	http    *http.Client
	limiter *rate.Limiter
}

// NewGoogleClient creates a client. Empty fields fall back to defaults.
func NewGoogleClient(cfg GoogleConfig) *GoogleClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Language == "" {
		cfg.Language = "ko"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	limiter := rate.NewLimiter(rate.Inf, 0)
	if cfg.RatePerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RatePerSecond), max(1, int(cfg.RatePerSecond)))
	}
	return &GoogleClient{
		cfg:     cfg,
		http:    &http.Client{Timeout: cfg.Timeout},
		limiter: limiter,
	}
}

type nearbyResponse struct {
	Status       string        `json:"status"`
	ErrorMessage string        `json:"error_message"`
	Results      []googlePlace `json:"results"`
}

type googlePlace struct {
	PlaceID          string   `json:"place_id"`
	Name             string   `json:"name"`
	Vicinity         string   `json:"vicinity"`
	FormattedAddress string   `json:"formatted_address"`
	Rating           float64  `json:"rating"`
	UserRatingsTotal int      `json:"user_ratings_total"`
	PriceLevel       *int     `json:"price_level"`
	Types            []string `json:"types"`
	Geometry         struct {
		Location models.LatLng `json:"location"`
	} `json:"geometry"`
}

// Search runs one nearby search restricted to restaurants.
func (c *GoogleClient) Search(ctx context.Context, q Query) ([]models.Candidate, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("location", strconv.FormatFloat(q.Location.Lat, 'f', -1, 64)+","+strconv.FormatFloat(q.Location.Lng, 'f', -1, 64))
	params.Set("radius", strconv.Itoa(q.Radius))
	params.Set("keyword", q.Keyword)
	params.Set("type", "restaurant")
	params.Set("language", c.cfg.Language)
	params.Set("key", c.cfg.APIKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+nearbySearchPath+"?"+params.Encode(), nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to build nearby search request")
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "nearby search request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, errors.Errorf("nearby search returned HTTP %d: %s", resp.StatusCode, body)
	}

	var out nearbyResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, errors.Wrap(err, "failed to decode nearby search response")
	}
	switch out.Status {
	case "OK", "ZERO_RESULTS":
	default:
		return nil, errors.Errorf("nearby search status %s: %s", out.Status, out.ErrorMessage)
	}

	candidates := make([]models.Candidate, 0, len(out.Results))
	for _, p := range out.Results {
		candidates = append(candidates, p.candidate())
	}
	return candidates, nil
}

func (p googlePlace) candidate() models.Candidate {
	address := p.FormattedAddress
	if address == "" {
		address = p.Vicinity
	}
	return models.Candidate{
		ID:          p.PlaceID,
		Name:        p.Name,
		Category:    category(p.Types),
		Rating:      p.Rating,
		ReviewCount: p.UserRatingsTotal,
		PriceLevel:  p.PriceLevel,
		Tags:        p.Types,
		Location:    p.Geometry.Location,
		Address:     address,
	}
}

func category(types []string) string {
	for _, t := range types {
		if t != "restaurant" && !slices.Contains(genericTypes, t) {
			return t
		}
	}
	if len(types) > 0 {
		return types[0]
	}
	return ""
}
