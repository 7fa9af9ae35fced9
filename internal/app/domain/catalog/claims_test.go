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

func TestClaimEntity(t *testing.T) {
	entityID := uuid.New()

	t.Run("claim granted", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectQuery("INSERT INTO enrichment_claims").
			WithArgs("destination", entityID, "600 seconds").
			WillReturnRows(pgxmock.NewRows([]string{"entity_id"}).AddRow(entityID))

		repo := NewRepository(mock, zap.NewNop())
		claimed, err := repo.ClaimEntity(context.Background(), "destination", entityID, 10*time.Minute)

		require.NoError(t, err)
		assert.True(t, claimed)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("claim held by a live run", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		// The conflict branch returns no row when the existing claim is
		// still fresh.
		mock.ExpectQuery("INSERT INTO enrichment_claims").
			WithArgs("destination", entityID, "600 seconds").
			WillReturnRows(pgxmock.NewRows([]string{"entity_id"}))

		repo := NewRepository(mock, zap.NewNop())
		claimed, err := repo.ClaimEntity(context.Background(), "destination", entityID, 10*time.Minute)

		require.NoError(t, err)
		assert.False(t, claimed)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestReleaseEntity(t *testing.T) {
	entityID := uuid.New()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec("DELETE FROM enrichment_claims").
		WithArgs("itinerary", entityID).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	repo := NewRepository(mock, zap.NewNop())
	require.NoError(t, repo.ReleaseEntity(context.Background(), "itinerary", entityID))
	assert.NoError(t, mock.ExpectationsWereMet())
}
