package enrichment

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/wanderseed/wanderseed/internal/app/models"
)

func TestCollectionNoteEnricher_SelectBatchIncludesCollectionName(t *testing.T) {
	collectionID := uuid.New()
	repo := &stubRepo{
		selectItemsMissingNotes: func(context.Context, int) ([]models.CollectionItem, error) {
			return []models.CollectionItem{{
				ID:                 uuid.New(),
				CollectionID:       collectionID,
				DestinationName:    "Porto",
				DestinationCountry: "Portugal",
			}}, nil
		},
		listCollections: func(context.Context) ([]models.Collection, error) {
			return []models.Collection{{ID: collectionID, Name: "Wine Country Escapes"}}, nil
		},
	}

	e := NewCollectionNoteEnricher(repo, zap.NewNop())
	targets, err := e.SelectBatch(context.Background(), 10)

	require.NoError(t, err)
	require.Len(t, targets, 1)
	assert.Contains(t, targets[0].Prompt, `"Wine Country Escapes"`)
	assert.Contains(t, targets[0].Prompt, "Porto, Portugal")
}

func TestCollectionNoteEnricher_Persist(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr error
	}{
		{
			name: "complete note",
			raw:  `{"highlight": "Douro valley tastings", "note": "The vineyards are an hour away."}`,
		},
		{
			name:    "empty highlight",
			raw:     `{"highlight": "", "note": "something"}`,
			wantErr: models.ErrIncompleteContent,
		},
		{
			name:    "empty note",
			raw:     `{"highlight": "something", "note": ""}`,
			wantErr: models.ErrIncompleteContent,
		},
		{
			name:    "not JSON",
			raw:     "nah",
			wantErr: models.ErrMalformedOutput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var wrote bool
			repo := &stubRepo{
				updateCollectionItemNote: func(context.Context, uuid.UUID, models.CollectionNoteContent) error {
					wrote = true
					return nil
				},
			}

			e := NewCollectionNoteEnricher(repo, zap.NewNop())
			err := e.Persist(context.Background(), Target{ID: uuid.New(), Name: "Porto"}, tt.raw)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.False(t, wrote)
				return
			}
			require.NoError(t, err)
			assert.True(t, wrote)
		})
	}
}
