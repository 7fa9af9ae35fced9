package catalog

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/wanderseed/wanderseed/internal/app/models"
)

// psql builds $n-placeholder queries for the scan paths where the shape of
// the query varies at runtime.
var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// SelectIncompleteDestinations returns destinations whose description is
// missing or shorter than threshold. NULL, empty and trivially-short
// descriptions all count as incomplete; a bare IS NULL check would
// under-count stale rows.
func (r *RepositoryImpl) SelectIncompleteDestinations(ctx context.Context, threshold, limit int) ([]models.Destination, error) {
	builder := psql.Select(
		"id", "region_id", "name", "country", "description", "immersive_description",
		"image_url", "best_time_to_visit", "local_tips", "geography", "culture", "cuisine",
		"featured", "rating", "download_count", "created_at", "updated_at",
	).From("destinations").
		Where("char_length(coalesce(description, '')) < ?", threshold).
		OrderBy("created_at", "id")

	if limit > 0 {
		builder = builder.Limit(uint64(limit))
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build incomplete destination query: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query incomplete destinations: %w", err)
	}
	defer rows.Close()

	return collectDestinations(rows)
}

// SelectDestinationsMissingItinerary returns destinations with no itinerary
// row at all, or with an itinerary whose day count fell short of its declared
// duration (the partially-seeded state the pipeline repairs).
func (r *RepositoryImpl) SelectDestinationsMissingItinerary(ctx context.Context, limit int) ([]models.Destination, error) {
	builder := psql.Select(
		"d.id", "d.region_id", "d.name", "d.country", "d.description", "d.immersive_description",
		"d.image_url", "d.best_time_to_visit", "d.local_tips", "d.geography", "d.culture", "d.cuisine",
		"d.featured", "d.rating", "d.download_count", "d.created_at", "d.updated_at",
	).From("destinations d").
		LeftJoin("itineraries i ON i.destination_id = d.id").
		Where(sq.Or{
			sq.Expr("i.id IS NULL"),
			sq.Expr("(SELECT count(*) FROM itinerary_days da WHERE da.itinerary_id = i.id) < i.duration"),
		}).
		OrderBy("d.created_at", "d.id")

	if limit > 0 {
		builder = builder.Limit(uint64(limit))
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build missing itinerary query: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query destinations missing itineraries: %w", err)
	}
	defer rows.Close()

	return collectDestinations(rows)
}

// SelectDestinationsMissingExperiences returns destinations with fewer than
// one experience per theme. Which themes are missing is decided by the
// service using the theme matcher over the existing rows.
func (r *RepositoryImpl) SelectDestinationsMissingExperiences(ctx context.Context, limit int) ([]models.Destination, error) {
	builder := psql.Select(
		"d.id", "d.region_id", "d.name", "d.country", "d.description", "d.immersive_description",
		"d.image_url", "d.best_time_to_visit", "d.local_tips", "d.geography", "d.culture", "d.cuisine",
		"d.featured", "d.rating", "d.download_count", "d.created_at", "d.updated_at",
	).From("destinations d").
		Where("(SELECT count(*) FROM enhanced_experiences e WHERE e.destination_id = d.id) < ?", len(models.ExperienceThemes)).
		OrderBy("d.created_at", "d.id")

	if limit > 0 {
		builder = builder.Limit(uint64(limit))
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build missing experiences query: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query destinations missing experiences: %w", err)
	}
	defer rows.Close()

	return collectDestinations(rows)
}

// SelectIncompleteSnowbird returns snowbird guides with any empty long-form
// section.
func (r *RepositoryImpl) SelectIncompleteSnowbird(ctx context.Context, limit int) ([]models.SnowbirdDestination, error) {
	builder := psql.Select(
		"id", "name", "country", "region", "overview", "climate_notes", "cost_of_living",
		"healthcare", "visa_requirements", "community_life", "monthly_budget_usd", "created_at",
	).From("snowbird_destinations").
		Where(sq.Or{
			sq.Eq{"overview": ""},
			sq.Eq{"climate_notes": ""},
			sq.Eq{"cost_of_living": ""},
			sq.Eq{"healthcare": ""},
			sq.Eq{"visa_requirements": ""},
			sq.Eq{"community_life": ""},
		}).
		OrderBy("created_at", "id")

	if limit > 0 {
		builder = builder.Limit(uint64(limit))
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build incomplete snowbird query: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query incomplete snowbird destinations: %w", err)
	}
	defer rows.Close()

	var guides []models.SnowbirdDestination
	for rows.Next() {
		s, err := scanSnowbird(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan snowbird row: %w", err)
		}
		guides = append(guides, *s)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating snowbird rows: %w", err)
	}
	return guides, nil
}

// SelectCollectionItemsMissingNotes returns collection items whose
// collection-specific annotation has not been written yet.
func (r *RepositoryImpl) SelectCollectionItemsMissingNotes(ctx context.Context, limit int) ([]models.CollectionItem, error) {
	builder := psql.Select(
		"ci.id", "ci.collection_id", "ci.destination_id", "ci.position", "ci.highlight", "ci.note",
		"d.name", "d.country",
	).From("collection_items ci").
		Join("destinations d ON d.id = ci.destination_id").
		Where(sq.Or{sq.Eq{"ci.note": ""}, sq.Eq{"ci.highlight": ""}}).
		OrderBy("ci.collection_id", "ci.position")

	if limit > 0 {
		builder = builder.Limit(uint64(limit))
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build missing notes query: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query collection items missing notes: %w", err)
	}
	defer rows.Close()

	var items []models.CollectionItem
	for rows.Next() {
		var item models.CollectionItem
		if err := rows.Scan(
			&item.ID, &item.CollectionID, &item.DestinationID, &item.Position,
			&item.Highlight, &item.Note, &item.DestinationName, &item.DestinationCountry,
		); err != nil {
			return nil, fmt.Errorf("failed to scan collection item row: %w", err)
		}
		items = append(items, item)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating collection item rows: %w", err)
	}
	return items, nil
}

func (r *RepositoryImpl) CountItineraryDays(ctx context.Context, itineraryID uuid.UUID) (int, error) {
	var count int
	query := `SELECT count(*) FROM itinerary_days WHERE itinerary_id = $1`
	if err := r.db.QueryRow(ctx, query, itineraryID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count itinerary days: %w", err)
	}
	return count, nil
}
