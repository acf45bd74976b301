package models

import (
	"fmt"
	"slices"
	"strings"

	"github.com/mmynk/tripbite/internal/apperr"
)

// Default budget range (KRW per person) used when a preference omits one.
const (
	DefaultBudgetMin = 10000
	DefaultBudgetMax = 50000
)

// BudgetRange is an inclusive per-person spend range.
type BudgetRange struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// Preference holds one user's food preferences.
// Build it with NewPreference so the liked/disliked exclusivity holds.
type Preference struct {
	LikedCategories    []string    `json:"liked_categories"`
	DislikedCategories []string    `json:"disliked_categories"`
	CannotEat          []string    `json:"cannot_eat"`
	LikedKeywords      []string    `json:"liked_keywords"`
	DislikedKeywords   []string    `json:"disliked_keywords"`
	Budget             BudgetRange `json:"budget"`
	UpdatedAt          int64       `json:"updated_at"`
}

// PreferenceInput is the raw, unvalidated form of a Preference.
type PreferenceInput struct {
	LikedCategories    []string
	DislikedCategories []string
	CannotEat          []string
	LikedKeywords      []string
	DislikedKeywords   []string
	Budget             *BudgetRange
}

// NewPreference validates in and returns a normalized Preference.
// Entries are trimmed and de-duplicated. A category or keyword may not be both
// liked and disliked, and the budget must satisfy 0 <= min <= max.
func NewPreference(in PreferenceInput, updatedAt int64) (*Preference, error) {
	p := &Preference{
		LikedCategories:    normalizeSet(in.LikedCategories),
		DislikedCategories: normalizeSet(in.DislikedCategories),
		CannotEat:          normalizeSet(in.CannotEat),
		LikedKeywords:      normalizeSet(in.LikedKeywords),
		DislikedKeywords:   normalizeSet(in.DislikedKeywords),
		Budget:             BudgetRange{Min: DefaultBudgetMin, Max: DefaultBudgetMax},
		UpdatedAt:          updatedAt,
	}
	if in.Budget != nil {
		p.Budget = *in.Budget
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// Validate checks the invariants of p. Stores call it again before saving.
func (p *Preference) Validate() error {
	if both := intersect(p.LikedCategories, p.DislikedCategories); len(both) > 0 {
		return apperr.ValidationFailed(fmt.Sprintf("categories both liked and disliked: %s", strings.Join(both, ", ")))
	}
	if both := intersect(p.LikedKeywords, p.DislikedKeywords); len(both) > 0 {
		return apperr.ValidationFailed(fmt.Sprintf("keywords both liked and disliked: %s", strings.Join(both, ", ")))
	}
	if p.Budget.Min < 0 || p.Budget.Max < 0 {
		return apperr.ValidationFailed("budget must not be negative")
	}
	if p.Budget.Min > p.Budget.Max {
		return apperr.ValidationFailed(fmt.Sprintf("budget min %d exceeds max %d", p.Budget.Min, p.Budget.Max))
	}
	return nil
}

// Clone returns a deep copy of p (nil-safe).
func (p *Preference) Clone() *Preference {
	if p == nil {
		return nil
	}
	return &Preference{
		LikedCategories:    slices.Clone(p.LikedCategories),
		DislikedCategories: slices.Clone(p.DislikedCategories),
		CannotEat:          slices.Clone(p.CannotEat),
		LikedKeywords:      slices.Clone(p.LikedKeywords),
		DislikedKeywords:   slices.Clone(p.DislikedKeywords),
		Budget:             p.Budget,
		UpdatedAt:          p.UpdatedAt,
	}
}

func normalizeSet(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" || slices.Contains(out, v) {
			continue
		}
		out = append(out, v)
	}
	return out
}

func intersect(a, b []string) []string {
	var both []string
	for _, v := range a {
		if slices.ContainsFunc(b, func(w string) bool { return strings.EqualFold(v, w) }) {
			both = append(both, v)
		}
	}
	return both
}
