package enrichment

import (
	"context"
	"encoding/json"
	"fmt"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/wanderseed/wanderseed/internal/app/domain/catalog"
	"github.com/wanderseed/wanderseed/internal/app/models"
)

// Tier selects how much narrative a destination run fills in.
type Tier string

const (
	TierBasic Tier = "basic"
	TierRich  Tier = "rich"
)

// DestinationEnricher backfills destination narrative fields. The basic tier
// targets descriptions shorter than the basic threshold and fills only the
// description; the rich tier targets the higher threshold and fills every
// narrative section.
type DestinationEnricher struct {
	repo      catalog.Repository
	logger    *zap.Logger
	tier      Tier
	threshold int
}

func NewDestinationEnricher(repo catalog.Repository, logger *zap.Logger, tier Tier, threshold int) *DestinationEnricher {
	return &DestinationEnricher{repo: repo, logger: logger, tier: tier, threshold: threshold}
}

func (e *DestinationEnricher) EntityType() string {
	if e.tier == TierRich {
		return EntityDestinationRich
	}
	return EntityDestination
}

func (e *DestinationEnricher) SelectBatch(ctx context.Context, limit int) ([]Target, error) {
	destinations, err := e.repo.SelectIncompleteDestinations(ctx, e.threshold, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrStoreUnavailable, err)
	}

	targets := make([]Target, 0, len(destinations))
	for _, d := range destinations {
		prompt := destinationBasicPrompt(d)
		if e.tier == TierRich {
			prompt = destinationRichPrompt(d)
		}
		targets = append(targets, Target{
			ID:     d.ID,
			Name:   fmt.Sprintf("%s, %s", d.Name, d.Country),
			Prompt: prompt,
		})
	}
	return targets, nil
}

func (e *DestinationEnricher) Persist(ctx context.Context, t Target, raw string) error {
	var content models.DestinationContent
	if err := json.Unmarshal([]byte(CleanJSONResponse(raw)), &content); err != nil {
		return fmt.Errorf("%w: %v", models.ErrMalformedOutput, err)
	}

	// char_length on the selection side counts characters, so the accept
	// side must too or non-ASCII content gets re-selected forever.
	if utf8.RuneCountInString(content.Description) < e.threshold {
		return fmt.Errorf("%w: description below %d chars for %s",
			models.ErrIncompleteContent, e.threshold, t.Name)
	}
	if e.tier == TierRich {
		missing := missingDestinationFields(content)
		if len(missing) > 0 {
			return fmt.Errorf("%w: missing %v for %s", models.ErrIncompleteContent, missing, t.Name)
		}
	}

	if err := e.repo.UpdateDestinationNarrative(ctx, t.ID, content); err != nil {
		return err
	}

	e.logger.Info("Destination enriched",
		zap.String("destination", t.Name),
		zap.String("tier", string(e.tier)),
		zap.Int("description_length", utf8.RuneCountInString(content.Description)))
	return nil
}

func missingDestinationFields(content models.DestinationContent) []string {
	var missing []string
	for field, value := range map[string]string{
		"immersive_description": content.ImmersiveDescription,
		"best_time_to_visit":    content.BestTimeToVisit,
		"local_tips":            content.LocalTips,
		"geography":             content.Geography,
		"culture":               content.Culture,
		"cuisine":               content.Cuisine,
	} {
		if value == "" {
			missing = append(missing, field)
		}
	}
	return missing
}
