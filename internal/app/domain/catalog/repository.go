package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"

	"github.com/wanderseed/wanderseed/internal/app/models"
)

var _ Repository = (*RepositoryImpl)(nil)

// DB is the subset of pgxpool.Pool the repository needs. Narrowed so tests
// can substitute pgxmock.
type DB interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Begin(ctx context.Context) (pgx.Tx, error)
	Ping(ctx context.Context) error
}

type Repository interface {
	// Reads for the serving layer.
	ListRegions(ctx context.Context) ([]models.Region, error)
	ListDestinations(ctx context.Context, filter DestinationFilter) ([]models.Destination, error)
	GetDestination(ctx context.Context, id uuid.UUID) (*models.Destination, error)
	GetItineraryByDestination(ctx context.Context, destinationID uuid.UUID) (*models.Itinerary, error)
	ListExperiences(ctx context.Context, destinationID uuid.UUID) ([]models.EnhancedExperience, error)
	ListCollections(ctx context.Context) ([]models.Collection, error)
	GetCollectionBySlug(ctx context.Context, slug string) (*models.Collection, error)
	ListSnowbirdDestinations(ctx context.Context) ([]models.SnowbirdDestination, error)
	GetSnowbirdDestination(ctx context.Context, id uuid.UUID) (*models.SnowbirdDestination, error)

	// Completeness scans for the enrichment pipeline. Pure reads.
	SelectIncompleteDestinations(ctx context.Context, threshold, limit int) ([]models.Destination, error)
	SelectDestinationsMissingItinerary(ctx context.Context, limit int) ([]models.Destination, error)
	SelectDestinationsMissingExperiences(ctx context.Context, limit int) ([]models.Destination, error)
	SelectIncompleteSnowbird(ctx context.Context, limit int) ([]models.SnowbirdDestination, error)
	SelectCollectionItemsMissingNotes(ctx context.Context, limit int) ([]models.CollectionItem, error)
	CountItineraryDays(ctx context.Context, itineraryID uuid.UUID) (int, error)

	// Persistence for the enrichment writers.
	UpdateDestinationNarrative(ctx context.Context, id uuid.UUID, content models.DestinationContent) error
	ReplaceItinerary(ctx context.Context, destinationID uuid.UUID, content models.ItineraryContent) (uuid.UUID, error)
	UpsertExperiences(ctx context.Context, destinationID uuid.UUID, experiences []models.ExperienceContent) error
	UpdateSnowbirdGuide(ctx context.Context, id uuid.UUID, content models.SnowbirdContent) error
	UpdateCollectionItemNote(ctx context.Context, id uuid.UUID, content models.CollectionNoteContent) error

	// Concurrency guard.
	ClaimEntity(ctx context.Context, entityType string, entityID uuid.UUID, ttl time.Duration) (bool, error)
	ReleaseEntity(ctx context.Context, entityType string, entityID uuid.UUID) error

	// Seeding (identity fields only; narrative left for the pipeline).
	UpsertRegion(ctx context.Context, name string) (uuid.UUID, error)
	UpsertDestinationIdentity(ctx context.Context, regionID uuid.UUID, name, country, imageURL string) (uuid.UUID, error)
	UpsertCollection(ctx context.Context, c models.Collection) (uuid.UUID, error)
	UpsertCollectionItemIdentity(ctx context.Context, collectionID, destinationID uuid.UUID, position int) error
	UpsertSnowbirdIdentity(ctx context.Context, name, country, region string) (uuid.UUID, error)
}

// DestinationFilter restricts ListDestinations. Zero value means no filtering.
type DestinationFilter struct {
	RegionID uuid.UUID
	Featured *bool
	Limit    int
}

type RepositoryImpl struct {
	logger *zap.Logger
	db     DB
}

func NewRepository(db DB, logger *zap.Logger) *RepositoryImpl {
	return &RepositoryImpl{
		logger: logger,
		db:     db,
	}
}

func (r *RepositoryImpl) ListRegions(ctx context.Context) ([]models.Region, error) {
	query := `
        SELECT id, name, created_at
        FROM regions
        ORDER BY name
    `
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query regions: %w", err)
	}
	defer rows.Close()

	var regions []models.Region
	for rows.Next() {
		var region models.Region
		if err := rows.Scan(&region.ID, &region.Name, &region.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan region row: %w", err)
		}
		regions = append(regions, region)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating region rows: %w", err)
	}
	return regions, nil
}

const destinationColumns = `
        id, region_id, name, country, description, immersive_description,
        image_url, best_time_to_visit, local_tips, geography, culture, cuisine,
        featured, rating, download_count, created_at, updated_at`

func scanDestination(row pgx.Row) (*models.Destination, error) {
	var d models.Destination
	err := row.Scan(
		&d.ID, &d.RegionID, &d.Name, &d.Country, &d.Description, &d.ImmersiveDescription,
		&d.ImageURL, &d.BestTimeToVisit, &d.LocalTips, &d.Geography, &d.Culture, &d.Cuisine,
		&d.Featured, &d.Rating, &d.DownloadCount, &d.CreatedAt, &d.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *RepositoryImpl) ListDestinations(ctx context.Context, filter DestinationFilter) ([]models.Destination, error) {
	builder := psql.Select(
		"id", "region_id", "name", "country", "description", "immersive_description",
		"image_url", "best_time_to_visit", "local_tips", "geography", "culture", "cuisine",
		"featured", "rating", "download_count", "created_at", "updated_at",
	).From("destinations").OrderBy("name")

	if filter.RegionID != uuid.Nil {
		builder = builder.Where("region_id = ?", filter.RegionID)
	}
	if filter.Featured != nil {
		builder = builder.Where("featured = ?", *filter.Featured)
	}
	if filter.Limit > 0 {
		builder = builder.Limit(uint64(filter.Limit))
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build destination query: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query destinations: %w", err)
	}
	defer rows.Close()

	return collectDestinations(rows)
}

func collectDestinations(rows pgx.Rows) ([]models.Destination, error) {
	var destinations []models.Destination
	for rows.Next() {
		d, err := scanDestination(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan destination row: %w", err)
		}
		destinations = append(destinations, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating destination rows: %w", err)
	}
	return destinations, nil
}

func (r *RepositoryImpl) GetDestination(ctx context.Context, id uuid.UUID) (*models.Destination, error) {
	query := `SELECT` + destinationColumns + ` FROM destinations WHERE id = $1`
	d, err := scanDestination(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get destination: %w", err)
	}
	return d, nil
}

func (r *RepositoryImpl) GetItineraryByDestination(ctx context.Context, destinationID uuid.UUID) (*models.Itinerary, error) {
	query := `
        SELECT id, destination_id, title, duration, description, content, created_at
        FROM itineraries
        WHERE destination_id = $1
    `
	var itinerary models.Itinerary
	err := r.db.QueryRow(ctx, query, destinationID).Scan(
		&itinerary.ID, &itinerary.DestinationID, &itinerary.Title, &itinerary.Duration,
		&itinerary.Description, &itinerary.Content, &itinerary.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get itinerary: %w", err)
	}

	dayQuery := `
        SELECT id, itinerary_id, day_number, title, activities
        FROM itinerary_days
        WHERE itinerary_id = $1
        ORDER BY day_number
    `
	rows, err := r.db.Query(ctx, dayQuery, itinerary.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to query itinerary days: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var day models.ItineraryDay
		if err := rows.Scan(&day.ID, &day.ItineraryID, &day.DayNumber, &day.Title, &day.Activities); err != nil {
			return nil, fmt.Errorf("failed to scan itinerary day row: %w", err)
		}
		itinerary.Days = append(itinerary.Days, day)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating itinerary day rows: %w", err)
	}

	return &itinerary, nil
}

func (r *RepositoryImpl) ListExperiences(ctx context.Context, destinationID uuid.UUID) ([]models.EnhancedExperience, error) {
	query := `
        SELECT id, destination_id, theme, title, specific_location, description,
               personal_narrative, season, best_time_to_visit, local_tip
        FROM enhanced_experiences
        WHERE destination_id = $1
        ORDER BY theme
    `
	rows, err := r.db.Query(ctx, query, destinationID)
	if err != nil {
		return nil, fmt.Errorf("failed to query experiences: %w", err)
	}
	defer rows.Close()

	var experiences []models.EnhancedExperience
	for rows.Next() {
		var e models.EnhancedExperience
		if err := rows.Scan(
			&e.ID, &e.DestinationID, &e.Theme, &e.Title, &e.SpecificLocation, &e.Description,
			&e.PersonalNarrative, &e.Season, &e.BestTimeToVisit, &e.LocalTip,
		); err != nil {
			return nil, fmt.Errorf("failed to scan experience row: %w", err)
		}
		experiences = append(experiences, e)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating experience rows: %w", err)
	}
	return experiences, nil
}

func (r *RepositoryImpl) ListCollections(ctx context.Context) ([]models.Collection, error) {
	query := `
        SELECT id, name, slug, description, image_url, theme_color, icon, featured
        FROM collections
        ORDER BY featured DESC, name
    `
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query collections: %w", err)
	}
	defer rows.Close()

	var collections []models.Collection
	for rows.Next() {
		var c models.Collection
		if err := rows.Scan(&c.ID, &c.Name, &c.Slug, &c.Description, &c.ImageURL, &c.ThemeColor, &c.Icon, &c.Featured); err != nil {
			return nil, fmt.Errorf("failed to scan collection row: %w", err)
		}
		collections = append(collections, c)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating collection rows: %w", err)
	}
	return collections, nil
}

func (r *RepositoryImpl) GetCollectionBySlug(ctx context.Context, slug string) (*models.Collection, error) {
	query := `
        SELECT id, name, slug, description, image_url, theme_color, icon, featured
        FROM collections
        WHERE slug = $1
    `
	var c models.Collection
	err := r.db.QueryRow(ctx, query, slug).Scan(
		&c.ID, &c.Name, &c.Slug, &c.Description, &c.ImageURL, &c.ThemeColor, &c.Icon, &c.Featured,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get collection: %w", err)
	}

	itemQuery := `
        SELECT ci.id, ci.collection_id, ci.destination_id, ci.position, ci.highlight, ci.note,
               d.name, d.country
        FROM collection_items ci
        JOIN destinations d ON d.id = ci.destination_id
        WHERE ci.collection_id = $1
        ORDER BY ci.position
    `
	rows, err := r.db.Query(ctx, itemQuery, c.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to query collection items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item models.CollectionItem
		if err := rows.Scan(
			&item.ID, &item.CollectionID, &item.DestinationID, &item.Position,
			&item.Highlight, &item.Note, &item.DestinationName, &item.DestinationCountry,
		); err != nil {
			return nil, fmt.Errorf("failed to scan collection item row: %w", err)
		}
		c.Items = append(c.Items, item)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating collection item rows: %w", err)
	}

	return &c, nil
}

const snowbirdColumns = `
        id, name, country, region, overview, climate_notes, cost_of_living,
        healthcare, visa_requirements, community_life, monthly_budget_usd, created_at`

func scanSnowbird(row pgx.Row) (*models.SnowbirdDestination, error) {
	var s models.SnowbirdDestination
	err := row.Scan(
		&s.ID, &s.Name, &s.Country, &s.Region, &s.Overview, &s.ClimateNotes, &s.CostOfLiving,
		&s.Healthcare, &s.VisaRequirements, &s.CommunityLife, &s.MonthlyBudgetUSD, &s.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *RepositoryImpl) ListSnowbirdDestinations(ctx context.Context) ([]models.SnowbirdDestination, error) {
	query := `SELECT` + snowbirdColumns + ` FROM snowbird_destinations ORDER BY name`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query snowbird destinations: %w", err)
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

func (r *RepositoryImpl) GetSnowbirdDestination(ctx context.Context, id uuid.UUID) (*models.SnowbirdDestination, error) {
	query := `SELECT` + snowbirdColumns + ` FROM snowbird_destinations WHERE id = $1`
	s, err := scanSnowbird(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get snowbird destination: %w", err)
	}
	return s, nil
}
