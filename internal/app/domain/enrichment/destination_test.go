package enrichment

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/wanderseed/wanderseed/internal/app/models"
)

func TestDestinationEnricher_SelectBatch(t *testing.T) {
	var gotThreshold, gotLimit int
	repo := &stubRepo{
		selectIncompleteDestinations: func(_ context.Context, threshold, limit int) ([]models.Destination, error) {
			gotThreshold, gotLimit = threshold, limit
			return []models.Destination{
				{ID: uuid.New(), Name: "Porto", Country: "Portugal"},
				{ID: uuid.New(), Name: "Lisbon", Country: "Portugal"},
			}, nil
		},
	}

	e := NewDestinationEnricher(repo, zap.NewNop(), TierBasic, 150)
	targets, err := e.SelectBatch(context.Background(), 20)

	require.NoError(t, err)
	assert.Equal(t, 150, gotThreshold)
	assert.Equal(t, 20, gotLimit)
	require.Len(t, targets, 2)
	assert.Equal(t, "Porto, Portugal", targets[0].Name)
	assert.Contains(t, targets[0].Prompt, "Porto, Portugal")
}

func TestDestinationEnricher_SelectBatchStoreFailure(t *testing.T) {
	repo := &stubRepo{
		selectIncompleteDestinations: func(context.Context, int, int) ([]models.Destination, error) {
			return nil, errors.New("connection refused")
		},
	}

	e := NewDestinationEnricher(repo, zap.NewNop(), TierBasic, 150)
	_, err := e.SelectBatch(context.Background(), 20)

	assert.ErrorIs(t, err, models.ErrStoreUnavailable)
}

func TestDestinationEnricher_Persist(t *testing.T) {
	longDescription := strings.Repeat("a", 200)

	tests := []struct {
		name      string
		tier      Tier
		threshold int
		raw       string
		wantErr   error
	}{
		{
			name:      "valid basic content",
			tier:      TierBasic,
			threshold: 150,
			raw:       `{"description": "` + longDescription + `"}`,
		},
		{
			name:      "malformed JSON",
			tier:      TierBasic,
			threshold: 150,
			raw:       `not json at all`,
			wantErr:   models.ErrMalformedOutput,
		},
		{
			name:      "description below threshold",
			tier:      TierBasic,
			threshold: 150,
			raw:       `{"description": "too short"}`,
			wantErr:   models.ErrIncompleteContent,
		},
		{
			// 149 runes but 298 bytes; the threshold counts characters the
			// way char_length does on the selection side.
			name:      "accented description below threshold",
			tier:      TierBasic,
			threshold: 150,
			raw:       `{"description": "` + strings.Repeat("é", 149) + `"}`,
			wantErr:   models.ErrIncompleteContent,
		},
		{
			name:      "accented description at threshold",
			tier:      TierBasic,
			threshold: 150,
			raw:       `{"description": "` + strings.Repeat("é", 150) + `"}`,
		},
		{
			name:      "rich tier rejects missing sections",
			tier:      TierRich,
			threshold: 150,
			raw:       `{"description": "` + longDescription + `", "culture": "rich culture"}`,
			wantErr:   models.ErrIncompleteContent,
		},
		{
			name:      "rich tier accepts complete content",
			tier:      TierRich,
			threshold: 150,
			raw: `{"description": "` + longDescription + `",
				"immersive_description": "you arrive", "best_time_to_visit": "spring",
				"local_tips": "walk", "geography": "hills", "culture": "old", "cuisine": "fish"}`,
		},
		{
			name:      "fenced output is accepted",
			tier:      TierBasic,
			threshold: 150,
			raw:       "```json\n{\"description\": \"" + longDescription + "\"}\n```",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var wrote bool
			repo := &stubRepo{
				updateDestinationNarrative: func(context.Context, uuid.UUID, models.DestinationContent) error {
					wrote = true
					return nil
				},
			}

			e := NewDestinationEnricher(repo, zap.NewNop(), tt.tier, tt.threshold)
			err := e.Persist(context.Background(), Target{ID: uuid.New(), Name: "Porto, Portugal"}, tt.raw)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.False(t, wrote, "invalid content must never reach the store")
				return
			}
			require.NoError(t, err)
			assert.True(t, wrote)
		})
	}
}

func TestDestinationEnricher_EntityType(t *testing.T) {
	basic := NewDestinationEnricher(nil, zap.NewNop(), TierBasic, 150)
	rich := NewDestinationEnricher(nil, zap.NewNop(), TierRich, 500)

	assert.Equal(t, EntityDestination, basic.EntityType())
	assert.Equal(t, EntityDestinationRich, rich.EntityType())
}
