package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/tripbite/internal/apperr"
)

func TestNewPreference(t *testing.T) {
	tests := []struct {
		name    string
		in      PreferenceInput
		wantErr bool
	}{
		{
			name: "valid preference",
			in: PreferenceInput{
				LikedCategories:    []string{"한식", "일식"},
				DislikedCategories: []string{"중식"},
				CannotEat:          []string{"해산물"},
				LikedKeywords:      []string{"매운"},
				DislikedKeywords:   []string{"느끼한"},
				Budget:             &BudgetRange{Min: 10000, Max: 30000},
			},
		},
		{
			name:    "category liked and disliked",
			in:      PreferenceInput{LikedCategories: []string{"한식"}, DislikedCategories: []string{" 한식 "}},
			wantErr: true,
		},
		{
			name:    "keyword liked and disliked",
			in:      PreferenceInput{LikedKeywords: []string{"매운"}, DislikedKeywords: []string{"매운"}},
			wantErr: true,
		},
		{
			name:    "overlap ignores case",
			in:      PreferenceInput{LikedKeywords: []string{"Spicy"}, DislikedKeywords: []string{"spicy"}},
			wantErr: true,
		},
		{
			name:    "inverted budget",
			in:      PreferenceInput{Budget: &BudgetRange{Min: 40000, Max: 20000}},
			wantErr: true,
		},
		{
			name:    "negative budget",
			in:      PreferenceInput{Budget: &BudgetRange{Min: -1, Max: 20000}},
			wantErr: true,
		},
		{
			name: "cannot-eat may overlap liked",
			in:   PreferenceInput{LikedCategories: []string{"해산물"}, CannotEat: []string{"해산물"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewPreference(tt.in, 100)
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, apperr.KindValidationFailed, apperr.KindOf(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, int64(100), p.UpdatedAt)
		})
	}
}

func TestNewPreferenceNormalizes(t *testing.T) {
	p, err := NewPreference(PreferenceInput{
		LikedCategories: []string{" 한식", "한식", "", "일식 "},
	}, 0)
	require.NoError(t, err)

	assert.Equal(t, []string{"한식", "일식"}, p.LikedCategories)
	assert.Equal(t, BudgetRange{Min: DefaultBudgetMin, Max: DefaultBudgetMax}, p.Budget)
}

func TestUserPublicStripsSecret(t *testing.T) {
	u := &User{ID: "alice", PasswordHash: "hash", DisplayName: "Alice"}
	pub := u.Public()

	assert.Equal(t, "alice", pub.ID)
	assert.Equal(t, "Alice", pub.DisplayName)
	assert.Nil(t, pub.Preference)
}

func TestGroupCloneIsDeep(t *testing.T) {
	g := &Group{
		ID:      "g1",
		Members: []string{"a"},
		RestaurantsByDay: map[int][]ScoredRestaurant{
			0: {{Candidate: Candidate{ID: "r1"}, Score: 1}},
		},
	}
	c := g.Clone()
	c.Members = append(c.Members, "b")
	c.RestaurantsByDay[0][0].Score = 9

	assert.Equal(t, []string{"a"}, g.Members)
	assert.Equal(t, 1.0, g.RestaurantsByDay[0][0].Score)
}
