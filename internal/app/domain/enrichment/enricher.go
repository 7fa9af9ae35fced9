package enrichment

import (
	"context"

	"github.com/google/uuid"
)

// Entity type identifiers, used for claims, flags and the run report.
const (
	EntityDestination     = "destination"
	EntityDestinationRich = "destination_rich"
	EntityItinerary       = "itinerary"
	EntityExperience      = "experience"
	EntitySnowbird        = "snowbird"
	EntityCollectionNote  = "collection_note"
)

// Target is one incomplete entity selected for a run, with its prompt
// already built and whatever per-entity context the writer needs to
// validate the response.
type Target struct {
	ID     uuid.UUID
	Name   string
	Prompt string

	// Duration is the expected day count for itinerary targets.
	Duration int
	// Themes lists the missing themes for experience targets.
	Themes []string
}

// Enricher binds a completeness predicate, a prompt builder and a writer for
// one entity type. The orchestrator loop is the same for every type; only
// these three concerns vary.
type Enricher interface {
	// EntityType names the type for claims and reporting.
	EntityType() string

	// SelectBatch returns up to limit incomplete entities with prompts
	// built. It is a pure read; calling it twice in a row returns the same
	// entities.
	SelectBatch(ctx context.Context, limit int) ([]Target, error)

	// Persist parses the raw model output, validates it against the
	// target's required fields and writes it as one logical unit. Parse
	// failures wrap models.ErrMalformedOutput; missing fields wrap
	// models.ErrIncompleteContent and write nothing.
	Persist(ctx context.Context, t Target, raw string) error
}
