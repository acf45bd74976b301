// Package preference merges the stored preferences of a group's members into one
// set of constraints the consensus scorer ranks against.
package preference

import (
	"fmt"
	"strings"

	"github.com/mmynk/tripbite/internal/apperr"
	"github.com/mmynk/tripbite/internal/models"
)

// Constraints is the merged view of a group's preferences.
// Vote maps are keyed by the normalized term (see Normalize) and count members.
type Constraints struct {
	HardExclusions map[string]bool

	LikedCategoryVotes    map[string]int
	DislikedCategoryVotes map[string]int
	LikedKeywordVotes     map[string]int
	DislikedKeywordVotes  map[string]int

	// Budget is the intersection of every member's budget range. When the
	// intersection is empty Budget.Min > Budget.Max and BudgetConflict is set.
	Budget         models.BudgetRange
	BudgetConflict bool

	Members int
}

// Normalize folds a category, keyword or tag to the form used for matching.
func Normalize(term string) string {
	return strings.ToLower(strings.TrimSpace(term))
}

// Aggregate merges the preferences of members. Every member must have saved a
// preference; otherwise the result is a ValidationFailed error naming them.
func Aggregate(members []*models.User) (*Constraints, error) {
	if len(members) == 0 {
		return nil, apperr.ValidationFailed("group has no members")
	}

	var missing []string
	for _, m := range members {
		if m.Preference == nil {
			missing = append(missing, displayName(m))
		}
	}
	if len(missing) > 0 {
		return nil, apperr.ValidationFailed(fmt.Sprintf(
			"recommendation blocked, missing preferences from: %s", strings.Join(missing, ", ")))
	}

	c := &Constraints{
		HardExclusions:        make(map[string]bool),
		LikedCategoryVotes:    make(map[string]int),
		DislikedCategoryVotes: make(map[string]int),
		LikedKeywordVotes:     make(map[string]int),
		DislikedKeywordVotes:  make(map[string]int),
		Members:               len(members),
	}
	for i, m := range members {
		p := m.Preference
		for _, v := range p.CannotEat {
			if t := Normalize(v); t != "" {
				c.HardExclusions[t] = true
			}
		}
		vote(c.LikedCategoryVotes, p.LikedCategories)
		vote(c.DislikedCategoryVotes, p.DislikedCategories)
		vote(c.LikedKeywordVotes, p.LikedKeywords)
		vote(c.DislikedKeywordVotes, p.DislikedKeywords)

		if i == 0 {
			c.Budget = p.Budget
			continue
		}
		c.Budget.Min = max(c.Budget.Min, p.Budget.Min)
		c.Budget.Max = min(c.Budget.Max, p.Budget.Max)
	}
	c.BudgetConflict = c.Budget.Min > c.Budget.Max
	return c, nil
}

// vote counts each member at most once per term, even if the stored set still
// holds entries that only differ by case.
func vote(votes map[string]int, terms []string) {
	seen := make(map[string]bool, len(terms))
	for _, v := range terms {
		t := Normalize(v)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		votes[t]++
	}
}

func displayName(u *models.User) string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return u.ID
}
