package enrichment

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/wanderseed/wanderseed/internal/app/domain/catalog"
	"github.com/wanderseed/wanderseed/internal/app/models"
)

// CollectionNoteEnricher writes the per-collection annotation (highlight +
// note) for collection items that still carry empty ones. The prompt includes
// the collection name so the note explains membership in that specific
// collection rather than restating the destination description.
type CollectionNoteEnricher struct {
	repo   catalog.Repository
	logger *zap.Logger
}

func NewCollectionNoteEnricher(repo catalog.Repository, logger *zap.Logger) *CollectionNoteEnricher {
	return &CollectionNoteEnricher{repo: repo, logger: logger}
}

func (e *CollectionNoteEnricher) EntityType() string { return EntityCollectionNote }

func (e *CollectionNoteEnricher) SelectBatch(ctx context.Context, limit int) ([]Target, error) {
	items, err := e.repo.SelectCollectionItemsMissingNotes(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrStoreUnavailable, err)
	}

	collections, err := e.repo.ListCollections(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrStoreUnavailable, err)
	}
	names := make(map[uuid.UUID]string, len(collections))
	for _, c := range collections {
		names[c.ID] = c.Name
	}

	targets := make([]Target, 0, len(items))
	for _, item := range items {
		collectionName := names[item.CollectionID]
		targets = append(targets, Target{
			ID:     item.ID,
			Name:   fmt.Sprintf("%s in %q", item.DestinationName, collectionName),
			Prompt: collectionNotePrompt(item, collectionName),
		})
	}
	return targets, nil
}

func (e *CollectionNoteEnricher) Persist(ctx context.Context, t Target, raw string) error {
	var content models.CollectionNoteContent
	if err := json.Unmarshal([]byte(CleanJSONResponse(raw)), &content); err != nil {
		return fmt.Errorf("%w: %v", models.ErrMalformedOutput, err)
	}

	if content.Highlight == "" || content.Note == "" {
		return fmt.Errorf("%w: empty highlight or note for %s",
			models.ErrIncompleteContent, t.Name)
	}

	if err := e.repo.UpdateCollectionItemNote(ctx, t.ID, content); err != nil {
		return err
	}

	e.logger.Info("Collection note enriched", zap.String("item", t.Name))
	return nil
}
