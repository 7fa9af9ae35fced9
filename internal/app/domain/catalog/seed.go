package catalog

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/wanderseed/wanderseed/internal/app/models"
)

//go:embed seed
var seedFS embed.FS

// Seed fixture shapes. Narrative fields are deliberately absent; the
// enrichment pipeline fills them after seeding.
type seedFixture struct {
	Regions []struct {
		Name         string `json:"name"`
		Destinations []struct {
			Name     string `json:"name"`
			Country  string `json:"country"`
			ImageURL string `json:"image_url"`
		} `json:"destinations"`
	} `json:"regions"`
	Collections []struct {
		Name         string   `json:"name"`
		Description  string   `json:"description"`
		ThemeColor   string   `json:"theme_color"`
		Icon         string   `json:"icon"`
		Featured     bool     `json:"featured"`
		Destinations []string `json:"destinations"` // "Name, Country"
	} `json:"collections"`
	Snowbird []struct {
		Name    string `json:"name"`
		Country string `json:"country"`
		Region  string `json:"region"`
	} `json:"snowbird"`
}

// Seeder loads the embedded reference fixture into the store. Every write is
// an upsert, so re-running against a seeded database changes nothing.
type Seeder struct {
	repo   Repository
	logger *zap.Logger
}

func NewSeeder(repo Repository, logger *zap.Logger) *Seeder {
	return &Seeder{repo: repo, logger: logger}
}

func (s *Seeder) Run(ctx context.Context) error {
	raw, err := seedFS.ReadFile("seed/catalog.json")
	if err != nil {
		return fmt.Errorf("failed to read seed fixture: %w", err)
	}

	var fixture seedFixture
	if err := json.Unmarshal(raw, &fixture); err != nil {
		return fmt.Errorf("failed to parse seed fixture: %w", err)
	}

	destinationIDs := make(map[string]uuid.UUID)

	for _, region := range fixture.Regions {
		regionID, err := s.repo.UpsertRegion(ctx, region.Name)
		if err != nil {
			return fmt.Errorf("failed to seed region %q: %w", region.Name, err)
		}
		for _, d := range region.Destinations {
			id, err := s.repo.UpsertDestinationIdentity(ctx, regionID, d.Name, d.Country, d.ImageURL)
			if err != nil {
				return fmt.Errorf("failed to seed destination %q: %w", d.Name, err)
			}
			destinationIDs[d.Name+", "+d.Country] = id
		}
	}

	for _, c := range fixture.Collections {
		collectionID, err := s.repo.UpsertCollection(ctx, models.Collection{
			Name:        c.Name,
			Slug:        Slugify(c.Name),
			Description: c.Description,
			ThemeColor:  c.ThemeColor,
			Icon:        c.Icon,
			Featured:    c.Featured,
		})
		if err != nil {
			return fmt.Errorf("failed to seed collection %q: %w", c.Name, err)
		}
		for position, key := range c.Destinations {
			destinationID, ok := destinationIDs[key]
			if !ok {
				s.logger.Warn("Collection references unknown destination, skipping",
					zap.String("collection", c.Name),
					zap.String("destination", key))
				continue
			}
			if err := s.repo.UpsertCollectionItemIdentity(ctx, collectionID, destinationID, position+1); err != nil {
				return fmt.Errorf("failed to seed collection item %q: %w", key, err)
			}
		}
	}

	for _, sb := range fixture.Snowbird {
		if _, err := s.repo.UpsertSnowbirdIdentity(ctx, sb.Name, sb.Country, sb.Region); err != nil {
			return fmt.Errorf("failed to seed snowbird destination %q: %w", sb.Name, err)
		}
	}

	s.logger.Info("Seed completed",
		zap.Int("regions", len(fixture.Regions)),
		zap.Int("destinations", len(destinationIDs)),
		zap.Int("collections", len(fixture.Collections)),
		zap.Int("snowbird", len(fixture.Snowbird)))
	return nil
}

// Identity upserts below back the seeder. Conflicts update nothing of
// substance so narrative fields written by earlier pipeline runs survive
// reseeding.

func (r *RepositoryImpl) UpsertRegion(ctx context.Context, name string) (uuid.UUID, error) {
	query := `
        INSERT INTO regions (name)
        VALUES ($1)
        ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
        RETURNING id
    `
	var id uuid.UUID
	if err := r.db.QueryRow(ctx, query, name).Scan(&id); err != nil {
		return uuid.Nil, fmt.Errorf("failed to upsert region: %w", err)
	}
	return id, nil
}

func (r *RepositoryImpl) UpsertDestinationIdentity(ctx context.Context, regionID uuid.UUID, name, country, imageURL string) (uuid.UUID, error) {
	query := `
        INSERT INTO destinations (region_id, name, country, image_url)
        VALUES ($1, $2, $3, $4)
        ON CONFLICT (name, country) DO UPDATE SET
            region_id = EXCLUDED.region_id,
            image_url = CASE WHEN EXCLUDED.image_url = '' THEN destinations.image_url ELSE EXCLUDED.image_url END
        RETURNING id
    `
	var id uuid.UUID
	if err := r.db.QueryRow(ctx, query, regionID, name, country, imageURL).Scan(&id); err != nil {
		return uuid.Nil, fmt.Errorf("failed to upsert destination identity: %w", err)
	}
	return id, nil
}

func (r *RepositoryImpl) UpsertCollection(ctx context.Context, c models.Collection) (uuid.UUID, error) {
	query := `
        INSERT INTO collections (name, slug, description, image_url, theme_color, icon, featured)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        ON CONFLICT (slug) DO UPDATE SET
            name = EXCLUDED.name,
            description = EXCLUDED.description,
            theme_color = EXCLUDED.theme_color,
            icon = EXCLUDED.icon,
            featured = EXCLUDED.featured
        RETURNING id
    `
	var id uuid.UUID
	if err := r.db.QueryRow(ctx, query,
		c.Name, c.Slug, c.Description, c.ImageURL, c.ThemeColor, c.Icon, c.Featured,
	).Scan(&id); err != nil {
		return uuid.Nil, fmt.Errorf("failed to upsert collection: %w", err)
	}
	return id, nil
}

func (r *RepositoryImpl) UpsertCollectionItemIdentity(ctx context.Context, collectionID, destinationID uuid.UUID, position int) error {
	query := `
        INSERT INTO collection_items (collection_id, destination_id, position)
        VALUES ($1, $2, $3)
        ON CONFLICT (collection_id, destination_id) DO UPDATE SET position = EXCLUDED.position
    `
	if _, err := r.db.Exec(ctx, query, collectionID, destinationID, position); err != nil {
		return fmt.Errorf("failed to upsert collection item: %w", err)
	}
	return nil
}

func (r *RepositoryImpl) UpsertSnowbirdIdentity(ctx context.Context, name, country, region string) (uuid.UUID, error) {
	query := `
        INSERT INTO snowbird_destinations (name, country, region)
        VALUES ($1, $2, $3)
        ON CONFLICT (name, country) DO UPDATE SET region = EXCLUDED.region
        RETURNING id
    `
	var id uuid.UUID
	if err := r.db.QueryRow(ctx, query, name, country, region).Scan(&id); err != nil {
		return uuid.Nil, fmt.Errorf("failed to upsert snowbird identity: %w", err)
	}
	return id, nil
}
