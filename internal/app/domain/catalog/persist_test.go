package catalog

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/wanderseed/wanderseed/internal/app/models"
)

func TestUpdateDestinationNarrative(t *testing.T) {
	id := uuid.New()
	content := models.DestinationContent{Description: "A long enough description."}

	t.Run("updates existing destination", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectExec("UPDATE destinations SET").
			WithArgs(id, content.Description, "", "", "", "", "", "").
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		repo := NewRepository(mock, zap.NewNop())
		require.NoError(t, repo.UpdateDestinationNarrative(context.Background(), id, content))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unknown destination", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectExec("UPDATE destinations SET").
			WithArgs(id, content.Description, "", "", "", "", "", "").
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		repo := NewRepository(mock, zap.NewNop())
		err = repo.UpdateDestinationNarrative(context.Background(), id, content)
		assert.ErrorIs(t, err, models.ErrNotFound)
	})
}

func TestReplaceItinerary(t *testing.T) {
	destinationID := uuid.New()
	itineraryID := uuid.New()
	content := models.ItineraryContent{
		Title:       "Three Days in Porto",
		Description: "Riverside walks and port cellars.",
		Days: []models.ItineraryDayContent{
			{DayNumber: 1, Title: "Ribeira", Activities: []string{"walk the quay"}},
			{DayNumber: 2, Title: "Gaia", Activities: []string{"cellar tour"}},
		},
	}
	payload, err := json.Marshal(content)
	require.NoError(t, err)

	t.Run("writes itinerary and days in one transaction", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectBegin()
		mock.ExpectQuery("INSERT INTO itineraries").
			WithArgs(destinationID, content.Title, 2, content.Description, string(payload)).
			WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(itineraryID))
		mock.ExpectExec("DELETE FROM itinerary_days").
			WithArgs(itineraryID).
			WillReturnResult(pgxmock.NewResult("DELETE", 0))
		mock.ExpectExec("INSERT INTO itinerary_days").
			WithArgs(itineraryID, 1, "Ribeira", []string{"walk the quay"}).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
		mock.ExpectExec("INSERT INTO itinerary_days").
			WithArgs(itineraryID, 2, "Gaia", []string{"cellar tour"}).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
		mock.ExpectCommit()
		mock.ExpectRollback()

		repo := NewRepository(mock, zap.NewNop())
		gotID, err := repo.ReplaceItinerary(context.Background(), destinationID, content)

		require.NoError(t, err)
		assert.Equal(t, itineraryID, gotID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("day insert failure rolls back", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectBegin()
		mock.ExpectQuery("INSERT INTO itineraries").
			WithArgs(destinationID, content.Title, 2, content.Description, string(payload)).
			WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(itineraryID))
		mock.ExpectExec("DELETE FROM itinerary_days").
			WithArgs(itineraryID).
			WillReturnResult(pgxmock.NewResult("DELETE", 2))
		mock.ExpectExec("INSERT INTO itinerary_days").
			WithArgs(itineraryID, 1, "Ribeira", []string{"walk the quay"}).
			WillReturnError(assert.AnError)
		mock.ExpectRollback()

		repo := NewRepository(mock, zap.NewNop())
		_, err = repo.ReplaceItinerary(context.Background(), destinationID, content)

		require.Error(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestUpdateCollectionItemNote(t *testing.T) {
	id := uuid.New()
	content := models.CollectionNoteContent{Highlight: "Douro tastings", Note: "An hour from the vineyards."}

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec("UPDATE collection_items SET").
		WithArgs(id, content.Highlight, content.Note).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	repo := NewRepository(mock, zap.NewNop())
	require.NoError(t, repo.UpdateCollectionItemNote(context.Background(), id, content))
	assert.NoError(t, mock.ExpectationsWereMet())
}
