package enrichment

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/wanderseed/wanderseed/internal/app/domain/catalog"
	"github.com/wanderseed/wanderseed/internal/app/models"
)

// SnowbirdEnricher completes winter-relocation guides. A guide counts as
// incomplete when any of its long-form sections is empty; the generated
// content rewrites the whole guide so the sections stay consistent with each
// other.
type SnowbirdEnricher struct {
	repo   catalog.Repository
	logger *zap.Logger
}

func NewSnowbirdEnricher(repo catalog.Repository, logger *zap.Logger) *SnowbirdEnricher {
	return &SnowbirdEnricher{repo: repo, logger: logger}
}

func (e *SnowbirdEnricher) EntityType() string { return EntitySnowbird }

func (e *SnowbirdEnricher) SelectBatch(ctx context.Context, limit int) ([]Target, error) {
	guides, err := e.repo.SelectIncompleteSnowbird(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrStoreUnavailable, err)
	}

	targets := make([]Target, 0, len(guides))
	for _, g := range guides {
		targets = append(targets, Target{
			ID:     g.ID,
			Name:   fmt.Sprintf("%s, %s", g.Name, g.Country),
			Prompt: snowbirdPrompt(g),
		})
	}
	return targets, nil
}

func (e *SnowbirdEnricher) Persist(ctx context.Context, t Target, raw string) error {
	var content models.SnowbirdContent
	if err := json.Unmarshal([]byte(CleanJSONResponse(raw)), &content); err != nil {
		return fmt.Errorf("%w: %v", models.ErrMalformedOutput, err)
	}

	if missing := missingSnowbirdSections(content); len(missing) > 0 {
		return fmt.Errorf("%w: empty sections %v for %s",
			models.ErrIncompleteContent, missing, t.Name)
	}

	if err := e.repo.UpdateSnowbirdGuide(ctx, t.ID, content); err != nil {
		return err
	}

	e.logger.Info("Snowbird guide enriched",
		zap.String("destination", t.Name),
		zap.Int("monthly_budget_usd", content.MonthlyBudgetUSD))
	return nil
}

func missingSnowbirdSections(c models.SnowbirdContent) []string {
	sections := []struct {
		name  string
		value string
	}{
		{"overview", c.Overview},
		{"climate_notes", c.ClimateNotes},
		{"cost_of_living", c.CostOfLiving},
		{"healthcare", c.Healthcare},
		{"visa_requirements", c.VisaRequirements},
		{"community_life", c.CommunityLife},
	}

	var missing []string
	for _, s := range sections {
		if s.value == "" {
			missing = append(missing, s.name)
		}
	}
	if c.MonthlyBudgetUSD <= 0 {
		missing = append(missing, "monthly_budget_usd")
	}
	return missing
}
