// Package consensus ranks candidate restaurants against a group's merged
// preferences. Scoring is pure: no I/O, no shared state, deterministic output.
package consensus

import (
	"cmp"
	"errors"
	"math"
	"slices"

	"github.com/mmynk/tripbite/internal/models"
	"github.com/mmynk/tripbite/internal/preference"
)

// Weights are the per-vote adjustments applied on top of the rating.
type Weights struct {
	Like          float64 `mapstructure:"like"`
	Dislike       float64 `mapstructure:"dislike"`
	BudgetPenalty float64 `mapstructure:"budget_penalty"`
}

// DefaultWeights makes one unhappy member cost twice what one pleased member gains.
var DefaultWeights = Weights{Like: 1.0, Dislike: 2.0, BudgetPenalty: 1.0}

// Validate checks the weight invariants.
func (w Weights) Validate() error {
	if w.Like < 0 || w.Dislike < 0 || w.BudgetPenalty < 0 {
		return errors.New("scoring weights must not be negative")
	}
	if w.Dislike < w.Like {
		return errors.New("dislike weight must be at least the like weight")
	}
	return nil
}

// priceBuckets maps a provider price tier to a per-person KRW range.
// The last bucket is open-ended.
var priceBuckets = [...]models.BudgetRange{
	{Min: 0, Max: 10000},
	{Min: 10000, Max: 20000},
	{Min: 20000, Max: 40000},
	{Min: 40000, Max: 80000},
	{Min: 80000, Max: math.MaxInt},
}

// Result is the outcome of one scoring pass.
type Result struct {
	Ranked   []models.ScoredRestaurant
	Excluded int
}

// Scorer ranks candidates.
type Scorer struct {
	weights Weights
}

// NewScorer creates a Scorer. It panics on invalid weights; callers validate
// configuration before wiring.
func NewScorer(w Weights) *Scorer {
	if err := w.Validate(); err != nil {
		panic(err)
	}
	return &Scorer{weights: w}
}

// Score drops hard-excluded candidates and ranks the rest by consensus score,
// then rating, then review count (all descending), then id.
// The candidates slice is not modified.
func (s *Scorer) Score(c *preference.Constraints, candidates []models.Candidate) Result {
	res := Result{Ranked: make([]models.ScoredRestaurant, 0, len(candidates))}
	for _, cand := range candidates {
		terms := terms(cand)
		if excluded(c, terms) {
			res.Excluded++
			continue
		}
		res.Ranked = append(res.Ranked, models.ScoredRestaurant{
			Candidate: cand,
			Score:     s.score(c, cand, terms),
		})
	}

	slices.SortStableFunc(res.Ranked, func(a, b models.ScoredRestaurant) int {
		if n := cmp.Compare(b.Score, a.Score); n != 0 {
			return n
		}
		if n := cmp.Compare(b.Rating, a.Rating); n != 0 {
			return n
		}
		if n := cmp.Compare(b.ReviewCount, a.ReviewCount); n != 0 {
			return n
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return res
}

func (s *Scorer) score(c *preference.Constraints, cand models.Candidate, terms []string) float64 {
	// Unrated candidates stay in the ranking at a zero base.
	score := min(max(cand.Rating, 0), 5)

	for _, t := range terms {
		likes := c.LikedCategoryVotes[t] + c.LikedKeywordVotes[t]
		dislikes := c.DislikedCategoryVotes[t] + c.DislikedKeywordVotes[t]
		score += s.weights.Like*float64(likes) - s.weights.Dislike*float64(dislikes)
	}

	if cand.PriceLevel != nil && !withinBudget(*cand.PriceLevel, c.Budget) {
		score -= s.weights.BudgetPenalty
	}
	return score
}

// terms returns the candidate's category and tags, normalized and de-duplicated.
func terms(cand models.Candidate) []string {
	out := make([]string, 0, len(cand.Tags)+1)
	for _, v := range append([]string{cand.Category}, cand.Tags...) {
		t := preference.Normalize(v)
		if t != "" && !slices.Contains(out, t) {
			out = append(out, t)
		}
	}
	return out
}

func excluded(c *preference.Constraints, terms []string) bool {
	for _, t := range terms {
		if c.HardExclusions[t] {
			return true
		}
	}
	return false
}

// withinBudget reports whether the price tier's range overlaps budget.
// Tiers outside 0-4 are clamped.
func withinBudget(tier int, budget models.BudgetRange) bool {
	tier = min(max(tier, 0), len(priceBuckets)-1)
	b := priceBuckets[tier]
	return b.Min <= budget.Max && budget.Min <= b.Max
}
