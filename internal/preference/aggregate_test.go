package preference

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/tripbite/internal/apperr"
	"github.com/mmynk/tripbite/internal/models"
)

func member(t *testing.T, id string, in models.PreferenceInput) *models.User {
	t.Helper()
	p, err := models.NewPreference(in, 0)
	require.NoError(t, err)
	return &models.User{ID: id, DisplayName: id, Preference: p}
}

func TestAggregate(t *testing.T) {
	a := member(t, "A", models.PreferenceInput{
		LikedCategories:    []string{"한식"},
		DislikedCategories: []string{"해산물"},
		LikedKeywords:      []string{"Spicy"},
		Budget:             &models.BudgetRange{Min: 10000, Max: 40000},
	})
	b := member(t, "B", models.PreferenceInput{
		LikedCategories: []string{"일식", "한식"},
		CannotEat:       []string{"해산물", " Peanut "},
		LikedKeywords:   []string{"spicy"},
		Budget:          &models.BudgetRange{Min: 20000, Max: 60000},
	})

	c, err := Aggregate([]*models.User{a, b})
	require.NoError(t, err)

	assert.Equal(t, map[string]bool{"해산물": true, "peanut": true}, c.HardExclusions)
	assert.Equal(t, map[string]int{"한식": 2, "일식": 1}, c.LikedCategoryVotes)
	assert.Equal(t, map[string]int{"해산물": 1}, c.DislikedCategoryVotes)
	assert.Equal(t, map[string]int{"spicy": 2}, c.LikedKeywordVotes)
	assert.Empty(t, c.DislikedKeywordVotes)
	assert.Equal(t, models.BudgetRange{Min: 20000, Max: 40000}, c.Budget)
	assert.False(t, c.BudgetConflict)
	assert.Equal(t, 2, c.Members)
}

func TestAggregateInvertedBudget(t *testing.T) {
	a := member(t, "A", models.PreferenceInput{Budget: &models.BudgetRange{Min: 0, Max: 15000}})
	b := member(t, "B", models.PreferenceInput{Budget: &models.BudgetRange{Min: 30000, Max: 50000}})

	c, err := Aggregate([]*models.User{a, b})
	require.NoError(t, err)
	assert.True(t, c.BudgetConflict)
	assert.Equal(t, models.BudgetRange{Min: 30000, Max: 15000}, c.Budget)
}

func TestAggregateMissingPreferences(t *testing.T) {
	a := member(t, "A", models.PreferenceInput{})
	b := &models.User{ID: "b", DisplayName: "Bora"}
	c := &models.User{ID: "c"}

	_, err := Aggregate([]*models.User{a, b, c})
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidationFailed, apperr.KindOf(err))
	assert.Equal(t, "recommendation blocked, missing preferences from: Bora, c", apperr.MessageOf(err))
}

func TestAggregateNoMembers(t *testing.T) {
	_, err := Aggregate(nil)
	assert.Equal(t, apperr.KindValidationFailed, apperr.KindOf(err))
}
