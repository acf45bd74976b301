// Package recommend computes a group's restaurant recommendations: it merges the
// members' preferences, searches each trip day for candidates, ranks them and
// stores every day's list in one write.
package recommend

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mmynk/tripbite/internal/apperr"
	"github.com/mmynk/tripbite/internal/authz"
	"github.com/mmynk/tripbite/internal/consensus"
	"github.com/mmynk/tripbite/internal/metrics"
	"github.com/mmynk/tripbite/internal/models"
	"github.com/mmynk/tripbite/internal/places"
	"github.com/mmynk/tripbite/internal/preference"
)

// DefaultKeyword is sent to the place search when none is configured.
const DefaultKeyword = "restaurant"

// Groups is the slice of the group repository the recommender needs.
type Groups interface {
	Authorize(ctx context.Context, token, groupID string, op authz.Operation) (*models.Session, *models.Group, error)
	Members(ctx context.Context, g *models.Group) ([]*models.User, error)
	SaveRecommendations(ctx context.Context, callerID, groupID string, members []string, byDay map[int][]models.ScoredRestaurant, replaceAll bool) (*models.Group, error)
}

// Service runs recommendation computations. Runs are tracked per group so that
// deleting a group cancels them.
type Service struct {
	groups   Groups
	searcher places.Searcher
	scorer   *consensus.Scorer
	metrics  *metrics.Metrics
	keyword  string

	mu      sync.Mutex
	running map[string]map[*run]struct{}
}

type run struct {
	cancel    context.CancelFunc
	cancelled bool
}

// NewService creates a Service.
func NewService(groups Groups, searcher places.Searcher, scorer *consensus.Scorer, m *metrics.Metrics, keyword string) *Service {
	if keyword == "" {
		keyword = DefaultKeyword
	}
	return &Service{
		groups:   groups,
		searcher: searcher,
		scorer:   scorer,
		metrics:  m,
		keyword:  keyword,
		running:  make(map[string]map[*run]struct{}),
	}
}

// Compute ranks candidates for one trip day, or for every day when day is nil,
// and persists the result. Nothing is stored unless every selected day
// succeeded. Provider failures are returned as UpstreamUnavailable and are not
// retried.
func (s *Service) Compute(ctx context.Context, token, groupID string, day *int) (map[int][]models.ScoredRestaurant, error) {
	byDay, err := s.compute(ctx, token, groupID, day)
	s.metrics.RecommendationRuns.WithLabelValues(outcome(err)).Inc()
	return byDay, err
}

func (s *Service) compute(ctx context.Context, token, groupID string, day *int) (map[int][]models.ScoredRestaurant, error) {
	runCtx, r := s.track(ctx, groupID)
	defer s.untrack(groupID, r)

	byDay, err := s.execute(runCtx, token, groupID, day)
	if err != nil && s.wasCancelled(r) {
		return nil, cancelledErr(groupID)
	}
	return byDay, err
}

// execute is one tracked computation. ctx is cancelled when the group is deleted.
func (s *Service) execute(ctx context.Context, token, groupID string, day *int) (map[int][]models.ScoredRestaurant, error) {
	session, g, err := s.groups.Authorize(ctx, token, groupID, authz.OpReadGroup)
	if err != nil {
		return nil, err
	}
	days, err := selectDays(g, day)
	if err != nil {
		return nil, err
	}

	members, err := s.groups.Members(ctx, g)
	if err != nil {
		return nil, err
	}
	constraints, err := preference.Aggregate(members)
	if err != nil {
		return nil, err
	}
	if constraints.BudgetConflict {
		return nil, apperr.Conflict(fmt.Sprintf(
			"members have no common budget: the highest minimum (%d) exceeds the lowest maximum (%d)",
			constraints.Budget.Min, constraints.Budget.Max))
	}

	slog.Info("Computing recommendations", "group_id", groupID, "user_id", session.UserID, "days", len(days))

	results := make([][]models.ScoredRestaurant, len(days))
	eg, egCtx := errgroup.WithContext(ctx)
	for i, d := range days {
		segment := g.TripPlan.Days[d]
		eg.Go(func() error {
			start := time.Now()
			candidates, err := s.searcher.Search(egCtx, places.Query{
				Location: segment.Location,
				Radius:   segment.Radius,
				Keyword:  s.keyword,
			})
			s.metrics.PlaceSearchDuration.Observe(time.Since(start).Seconds())
			if err != nil {
				return &searchError{day: d, err: err}
			}
			res := s.scorer.Score(constraints, candidates)
			s.metrics.CandidatesExcluded.Add(float64(res.Excluded))
			results[i] = res.Ranked
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		var se *searchError
		if errors.As(err, &se) && ctx.Err() == nil {
			slog.Warn("Place search failed", "group_id", groupID, "day", se.day, "error", se.err)
			return nil, apperr.UpstreamUnavailable(fmt.Sprintf("place search failed for day %d", se.day+1), se.err)
		}
		return nil, err
	}

	byDay := make(map[int][]models.ScoredRestaurant, len(days))
	for i, d := range days {
		byDay[d] = results[i]
	}
	// Refused if the membership changed during the search.
	if _, err := s.groups.SaveRecommendations(ctx, session.UserID, groupID, g.Members, byDay, day == nil); err != nil {
		return nil, err
	}

	slog.Info("Recommendations saved", "group_id", groupID, "days", len(days))
	return byDay, nil
}

// CancelGroup cancels every run in flight for groupID.
func (s *Service) CancelGroup(groupID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for r := range s.running[groupID] {
		r.cancelled = true
		r.cancel()
	}
	if n := len(s.running[groupID]); n > 0 {
		slog.Info("Cancelled recommendation runs", "group_id", groupID, "runs", n)
	}
}

func (s *Service) track(ctx context.Context, groupID string) (context.Context, *run) {
	ctx, cancel := context.WithCancel(ctx)
	r := &run{cancel: cancel}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running[groupID] == nil {
		s.running[groupID] = make(map[*run]struct{})
	}
	s.running[groupID][r] = struct{}{}
	return ctx, r
}

func (s *Service) untrack(groupID string, r *run) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r.cancel()
	delete(s.running[groupID], r)
	if len(s.running[groupID]) == 0 {
		delete(s.running, groupID)
	}
}

func (s *Service) wasCancelled(r *run) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return r.cancelled
}

func selectDays(g *models.Group, day *int) ([]int, error) {
	if g.TripPlan == nil || len(g.TripPlan.Days) == 0 {
		return nil, apperr.ValidationFailed("plan at least one trip day before requesting recommendations")
	}
	if day != nil {
		if *day < 0 || *day >= len(g.TripPlan.Days) {
			return nil, apperr.ValidationFailed(fmt.Sprintf("day index %d is outside the %d-day trip plan", *day, len(g.TripPlan.Days)))
		}
		return []int{*day}, nil
	}
	days := make([]int, len(g.TripPlan.Days))
	for i := range days {
		days[i] = i
	}
	return days, nil
}

type searchError struct {
	day int
	err error
}

func (e *searchError) Error() string { return fmt.Sprintf("day %d: %v", e.day, e.err) }
func (e *searchError) Unwrap() error { return e.err }

// errRunCancelled marks runs stopped because their group was deleted.
var errRunCancelled = errors.New("recommendation run cancelled")

func cancelledErr(groupID string) error {
	return &apperr.Error{
		Kind:    apperr.KindNotFound,
		Message: fmt.Sprintf("group %s was deleted while recommendations were being computed", groupID),
		Cause:   errRunCancelled,
	}
}

func outcome(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeOK
	case errors.Is(err, errRunCancelled), errors.Is(err, context.Canceled):
		return metrics.OutcomeCancelled
	case apperr.KindOf(err) == apperr.KindUpstreamUnavailable:
		return metrics.OutcomeUpstream
	case apperr.KindOf(err) == apperr.KindInternal:
		return metrics.OutcomeError
	default:
		return metrics.OutcomeRejected
	}
}
