package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var destinationRowColumns = []string{
	"id", "region_id", "name", "country", "description", "immersive_description",
	"image_url", "best_time_to_visit", "local_tips", "geography", "culture", "cuisine",
	"featured", "rating", "download_count", "created_at", "updated_at",
}

func destinationRow(rows *pgxmock.Rows, id uuid.UUID, name, description string) *pgxmock.Rows {
	now := time.Now()
	return rows.AddRow(
		id, uuid.New(), name, "Portugal", description, "",
		"", "", "", "", "", "",
		false, 0.0, 0, now, now,
	)
}

func TestSelectIncompleteDestinations(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	id := uuid.New()
	rows := destinationRow(pgxmock.NewRows(destinationRowColumns), id, "Porto", "short")

	mock.ExpectQuery("SELECT (.+) FROM destinations WHERE char_length").
		WithArgs(150).
		WillReturnRows(rows)

	repo := NewRepository(mock, zap.NewNop())
	destinations, err := repo.SelectIncompleteDestinations(context.Background(), 150, 20)

	require.NoError(t, err)
	require.Len(t, destinations, 1)
	assert.Equal(t, id, destinations[0].ID)
	assert.Equal(t, "Porto", destinations[0].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSelectIncompleteDestinations_NoCandidates(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("SELECT (.+) FROM destinations WHERE char_length").
		WithArgs(500).
		WillReturnRows(pgxmock.NewRows(destinationRowColumns))

	repo := NewRepository(mock, zap.NewNop())
	destinations, err := repo.SelectIncompleteDestinations(context.Background(), 500, 10)

	require.NoError(t, err)
	assert.Empty(t, destinations)
	assert.NoError(t, mock.ExpectationsWereMet())
}
