package enrichment

import (
	"context"

	"github.com/google/uuid"

	"github.com/wanderseed/wanderseed/internal/app/domain/catalog"
	"github.com/wanderseed/wanderseed/internal/app/models"
)

// stubRepo overrides just the repository methods a test exercises; calling
// anything else panics through the nil embedded interface, which is exactly
// what we want.
type stubRepo struct {
	catalog.Repository

	selectIncompleteDestinations func(ctx context.Context, threshold, limit int) ([]models.Destination, error)
	selectMissingItinerary       func(ctx context.Context, limit int) ([]models.Destination, error)
	selectMissingExperiences     func(ctx context.Context, limit int) ([]models.Destination, error)
	selectIncompleteSnowbird     func(ctx context.Context, limit int) ([]models.SnowbirdDestination, error)
	selectItemsMissingNotes      func(ctx context.Context, limit int) ([]models.CollectionItem, error)
	listCollections              func(ctx context.Context) ([]models.Collection, error)
	listExperiences              func(ctx context.Context, destinationID uuid.UUID) ([]models.EnhancedExperience, error)
	getItineraryByDestination    func(ctx context.Context, destinationID uuid.UUID) (*models.Itinerary, error)

	updateDestinationNarrative func(ctx context.Context, id uuid.UUID, content models.DestinationContent) error
	replaceItinerary           func(ctx context.Context, destinationID uuid.UUID, content models.ItineraryContent) (uuid.UUID, error)
	upsertExperiences          func(ctx context.Context, destinationID uuid.UUID, experiences []models.ExperienceContent) error
	updateSnowbirdGuide        func(ctx context.Context, id uuid.UUID, content models.SnowbirdContent) error
	updateCollectionItemNote   func(ctx context.Context, id uuid.UUID, content models.CollectionNoteContent) error
}

func (s *stubRepo) SelectIncompleteDestinations(ctx context.Context, threshold, limit int) ([]models.Destination, error) {
	return s.selectIncompleteDestinations(ctx, threshold, limit)
}

func (s *stubRepo) SelectDestinationsMissingItinerary(ctx context.Context, limit int) ([]models.Destination, error) {
	return s.selectMissingItinerary(ctx, limit)
}

func (s *stubRepo) SelectDestinationsMissingExperiences(ctx context.Context, limit int) ([]models.Destination, error) {
	return s.selectMissingExperiences(ctx, limit)
}

func (s *stubRepo) SelectIncompleteSnowbird(ctx context.Context, limit int) ([]models.SnowbirdDestination, error) {
	return s.selectIncompleteSnowbird(ctx, limit)
}

func (s *stubRepo) SelectCollectionItemsMissingNotes(ctx context.Context, limit int) ([]models.CollectionItem, error) {
	return s.selectItemsMissingNotes(ctx, limit)
}

func (s *stubRepo) ListCollections(ctx context.Context) ([]models.Collection, error) {
	return s.listCollections(ctx)
}

func (s *stubRepo) ListExperiences(ctx context.Context, destinationID uuid.UUID) ([]models.EnhancedExperience, error) {
	return s.listExperiences(ctx, destinationID)
}

func (s *stubRepo) GetItineraryByDestination(ctx context.Context, destinationID uuid.UUID) (*models.Itinerary, error) {
	return s.getItineraryByDestination(ctx, destinationID)
}

func (s *stubRepo) UpdateDestinationNarrative(ctx context.Context, id uuid.UUID, content models.DestinationContent) error {
	return s.updateDestinationNarrative(ctx, id, content)
}

func (s *stubRepo) ReplaceItinerary(ctx context.Context, destinationID uuid.UUID, content models.ItineraryContent) (uuid.UUID, error) {
	return s.replaceItinerary(ctx, destinationID, content)
}

func (s *stubRepo) UpsertExperiences(ctx context.Context, destinationID uuid.UUID, experiences []models.ExperienceContent) error {
	return s.upsertExperiences(ctx, destinationID, experiences)
}

func (s *stubRepo) UpdateSnowbirdGuide(ctx context.Context, id uuid.UUID, content models.SnowbirdContent) error {
	return s.updateSnowbirdGuide(ctx, id, content)
}

func (s *stubRepo) UpdateCollectionItemNote(ctx context.Context, id uuid.UUID, content models.CollectionNoteContent) error {
	return s.updateCollectionItemNote(ctx, id, content)
}
