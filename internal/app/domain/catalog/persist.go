package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"

	"github.com/wanderseed/wanderseed/internal/app/models"
)

// uniqueViolation is the Postgres error code for duplicate keys.
const uniqueViolation = "23505"

func isConstraintViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

// UpdateDestinationNarrative overwrites the narrative fields of a
// destination. Identity fields are never touched. Empty fields in content
// keep their current value so a basic-tier run does not erase rich-tier
// sections written earlier.
func (r *RepositoryImpl) UpdateDestinationNarrative(ctx context.Context, id uuid.UUID, content models.DestinationContent) error {
	query := `
        UPDATE destinations SET
            description = $2,
            immersive_description = CASE WHEN $3 = '' THEN immersive_description ELSE $3 END,
            best_time_to_visit = CASE WHEN $4 = '' THEN best_time_to_visit ELSE $4 END,
            local_tips = CASE WHEN $5 = '' THEN local_tips ELSE $5 END,
            geography = CASE WHEN $6 = '' THEN geography ELSE $6 END,
            culture = CASE WHEN $7 = '' THEN culture ELSE $7 END,
            cuisine = CASE WHEN $8 = '' THEN cuisine ELSE $8 END,
            updated_at = now()
        WHERE id = $1
    `
	tag, err := r.db.Exec(ctx, query, id,
		content.Description, content.ImmersiveDescription, content.BestTimeToVisit,
		content.LocalTips, content.Geography, content.Culture, content.Cuisine,
	)
	if err != nil {
		return fmt.Errorf("failed to update destination narrative: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}

	r.logger.Info("Destination narrative updated", zap.String("id", id.String()))
	return nil
}

// ReplaceItinerary writes an itinerary and all of its days as one logical
// unit. The itinerary row is upserted on destination_id and any existing
// days are deleted before the new set is inserted, so a repair run never
// accumulates days beyond the duration. Everything happens in a single
// transaction; a failure leaves no partial itinerary behind.
func (r *RepositoryImpl) ReplaceItinerary(ctx context.Context, destinationID uuid.UUID, content models.ItineraryContent) (uuid.UUID, error) {
	// The content column keeps the canonical payload so the itinerary can be
	// re-rendered without joining the day rows.
	payload, err := json.Marshal(content)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to marshal itinerary content: %w", err)
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer func() {
		if rollbackErr := tx.Rollback(ctx); rollbackErr != nil && !errors.Is(rollbackErr, pgx.ErrTxClosed) {
			r.logger.Error("Failed to rollback transaction", zap.Error(rollbackErr))
		}
	}()

	upsert := `
        INSERT INTO itineraries (destination_id, title, duration, description, content)
        VALUES ($1, $2, $3, $4, $5)
        ON CONFLICT (destination_id) DO UPDATE SET
            title = EXCLUDED.title,
            duration = EXCLUDED.duration,
            description = EXCLUDED.description,
            content = EXCLUDED.content
        RETURNING id
    `
	var itineraryID uuid.UUID
	if err := tx.QueryRow(ctx, upsert,
		destinationID, content.Title, len(content.Days), content.Description, string(payload),
	).Scan(&itineraryID); err != nil {
		return uuid.Nil, fmt.Errorf("failed to upsert itinerary: %w", err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM itinerary_days WHERE itinerary_id = $1`, itineraryID); err != nil {
		return uuid.Nil, fmt.Errorf("failed to clear itinerary days: %w", err)
	}

	insertDay := `
        INSERT INTO itinerary_days (itinerary_id, day_number, title, activities)
        VALUES ($1, $2, $3, $4)
    `
	for _, day := range content.Days {
		if _, err := tx.Exec(ctx, insertDay, itineraryID, day.DayNumber, day.Title, day.Activities); err != nil {
			if isConstraintViolation(err) {
				return uuid.Nil, fmt.Errorf("%w: duplicate day %d", models.ErrConstraintViolated, day.DayNumber)
			}
			return uuid.Nil, fmt.Errorf("failed to insert itinerary day %d: %w", day.DayNumber, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return uuid.Nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	r.logger.Info("Itinerary replaced",
		zap.String("destination_id", destinationID.String()),
		zap.String("itinerary_id", itineraryID.String()),
		zap.Int("days", len(content.Days)))
	return itineraryID, nil
}

// UpsertExperiences writes one experience per theme in a single transaction.
// The (destination_id, theme) unique key makes re-runs overwrite rather than
// duplicate.
func (r *RepositoryImpl) UpsertExperiences(ctx context.Context, destinationID uuid.UUID, experiences []models.ExperienceContent) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer func() {
		if rollbackErr := tx.Rollback(ctx); rollbackErr != nil && !errors.Is(rollbackErr, pgx.ErrTxClosed) {
			r.logger.Error("Failed to rollback transaction", zap.Error(rollbackErr))
		}
	}()

	query := `
        INSERT INTO enhanced_experiences (
            destination_id, theme, title, specific_location, description,
            personal_narrative, season, best_time_to_visit, local_tip
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
        ON CONFLICT (destination_id, theme) DO UPDATE SET
            title = EXCLUDED.title,
            specific_location = EXCLUDED.specific_location,
            description = EXCLUDED.description,
            personal_narrative = EXCLUDED.personal_narrative,
            season = EXCLUDED.season,
            best_time_to_visit = EXCLUDED.best_time_to_visit,
            local_tip = EXCLUDED.local_tip
    `
	for _, e := range experiences {
		if _, err := tx.Exec(ctx, query,
			destinationID, e.Theme, e.Title, e.SpecificLocation, e.Description,
			e.PersonalNarrative, e.Season, e.BestTimeToVisit, e.LocalTip,
		); err != nil {
			if isConstraintViolation(err) {
				return fmt.Errorf("%w: experience theme %q", models.ErrConstraintViolated, e.Theme)
			}
			return fmt.Errorf("failed to upsert experience %q: %w", e.Theme, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	r.logger.Info("Experiences upserted",
		zap.String("destination_id", destinationID.String()),
		zap.Int("count", len(experiences)))
	return nil
}

func (r *RepositoryImpl) UpdateSnowbirdGuide(ctx context.Context, id uuid.UUID, content models.SnowbirdContent) error {
	query := `
        UPDATE snowbird_destinations SET
            overview = $2,
            climate_notes = $3,
            cost_of_living = $4,
            healthcare = $5,
            visa_requirements = $6,
            community_life = $7,
            monthly_budget_usd = $8
        WHERE id = $1
    `
	tag, err := r.db.Exec(ctx, query, id,
		content.Overview, content.ClimateNotes, content.CostOfLiving,
		content.Healthcare, content.VisaRequirements, content.CommunityLife,
		content.MonthlyBudgetUSD,
	)
	if err != nil {
		return fmt.Errorf("failed to update snowbird guide: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (r *RepositoryImpl) UpdateCollectionItemNote(ctx context.Context, id uuid.UUID, content models.CollectionNoteContent) error {
	query := `
        UPDATE collection_items SET highlight = $2, note = $3 WHERE id = $1
    `
	tag, err := r.db.Exec(ctx, query, id, content.Highlight, content.Note)
	if err != nil {
		return fmt.Errorf("failed to update collection item note: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}
