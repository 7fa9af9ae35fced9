package enrichment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/wanderseed/wanderseed/internal/app/domain/catalog"
	"github.com/wanderseed/wanderseed/internal/app/models"
)

const (
	shortItineraryDays    = 3
	featuredItineraryDays = 7
)

// ItineraryEnricher creates itineraries for destinations that have none and
// repairs partially-written ones (day count short of the declared duration).
// The repair path replaces the whole day set, so a crashed write never grows
// into an over-long itinerary.
type ItineraryEnricher struct {
	repo   catalog.Repository
	logger *zap.Logger
}

func NewItineraryEnricher(repo catalog.Repository, logger *zap.Logger) *ItineraryEnricher {
	return &ItineraryEnricher{repo: repo, logger: logger}
}

func (e *ItineraryEnricher) EntityType() string { return EntityItinerary }

func (e *ItineraryEnricher) SelectBatch(ctx context.Context, limit int) ([]Target, error) {
	destinations, err := e.repo.SelectDestinationsMissingItinerary(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrStoreUnavailable, err)
	}

	targets := make([]Target, 0, len(destinations))
	for _, d := range destinations {
		days := shortItineraryDays
		if d.Featured {
			days = featuredItineraryDays
		}
		// A partially-seeded itinerary keeps its declared duration.
		existing, err := e.repo.GetItineraryByDestination(ctx, d.ID)
		switch {
		case err == nil:
			days = existing.Duration
		case !errors.Is(err, models.ErrNotFound):
			return nil, fmt.Errorf("%w: %v", models.ErrStoreUnavailable, err)
		}
		targets = append(targets, Target{
			ID:       d.ID,
			Name:     fmt.Sprintf("%s, %s", d.Name, d.Country),
			Prompt:   itineraryPrompt(d, days),
			Duration: days,
		})
	}
	return targets, nil
}

func (e *ItineraryEnricher) Persist(ctx context.Context, t Target, raw string) error {
	var content models.ItineraryContent
	if err := json.Unmarshal([]byte(CleanJSONResponse(raw)), &content); err != nil {
		return fmt.Errorf("%w: %v", models.ErrMalformedOutput, err)
	}

	if content.Title == "" || content.Description == "" {
		return fmt.Errorf("%w: itinerary title or description empty for %s",
			models.ErrIncompleteContent, t.Name)
	}
	if len(content.Days) != t.Duration {
		return fmt.Errorf("%w: expected %d days, got %d for %s",
			models.ErrIncompleteContent, t.Duration, len(content.Days), t.Name)
	}
	// Days must form a dense 1..N sequence with real content.
	seen := make(map[int]bool, len(content.Days))
	for _, day := range content.Days {
		if day.DayNumber < 1 || day.DayNumber > t.Duration || seen[day.DayNumber] {
			return fmt.Errorf("%w: invalid day_number %d for %s",
				models.ErrIncompleteContent, day.DayNumber, t.Name)
		}
		if day.Title == "" || len(day.Activities) == 0 {
			return fmt.Errorf("%w: empty day %d for %s",
				models.ErrIncompleteContent, day.DayNumber, t.Name)
		}
		seen[day.DayNumber] = true
	}

	itineraryID, err := e.repo.ReplaceItinerary(ctx, t.ID, content)
	if err != nil {
		return err
	}

	e.logger.Info("Itinerary enriched",
		zap.String("destination", t.Name),
		zap.String("itinerary_id", itineraryID.String()),
		zap.Int("days", len(content.Days)))
	return nil
}
