package themes

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wanderseed/wanderseed/internal/app/models"
)

func TestMatcherClassify(t *testing.T) {
	m := NewMatcher()

	tests := []struct {
		title    string
		expected string
	}{
		{"Morning hike to the waterfall", models.ThemeNature},
		{"Street food tour of the old market", models.ThemeCulinary},
		{"Visit the heritage museum and cathedral", models.ThemeCultural},
		{"KAYAKING THE BAY", models.ThemeNature},
		{"An afternoon of paperwork", ""},
	}

	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			assert.Equal(t, tt.expected, m.Classify(tt.title))
		})
	}
}

func TestMatcherMissingThemes(t *testing.T) {
	m := NewMatcher()

	tests := []struct {
		name        string
		experiences []models.EnhancedExperience
		expected    []string
	}{
		{
			name:        "nothing covered",
			experiences: nil,
			expected:    []string{models.ThemeCultural, models.ThemeCulinary, models.ThemeNature},
		},
		{
			name: "explicit themes respected",
			experiences: []models.EnhancedExperience{
				{Theme: models.ThemeCultural},
				{Theme: models.ThemeNature},
			},
			expected: []string{models.ThemeCulinary},
		},
		{
			name: "legacy rows classified from titles",
			experiences: []models.EnhancedExperience{
				{Title: "Cooking class with a local chef"},
				{Title: "Sunset trail above the lake"},
			},
			expected: []string{models.ThemeCultural},
		},
		{
			name: "all covered",
			experiences: []models.EnhancedExperience{
				{Theme: models.ThemeCultural},
				{Theme: models.ThemeCulinary},
				{Theme: models.ThemeNature},
			},
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, m.MissingThemes(tt.experiences))
		})
	}
}
