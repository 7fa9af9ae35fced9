package enrichment

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/wanderseed/wanderseed/internal/app/domain/catalog"
	"github.com/wanderseed/wanderseed/internal/app/domain/themes"
	"github.com/wanderseed/wanderseed/internal/app/models"
)

// ExperienceEnricher fills theme coverage gaps: every destination should carry
// one experience per canonical theme. Only the missing themes are requested,
// so an interrupted run never duplicates existing rows.
type ExperienceEnricher struct {
	repo    catalog.Repository
	matcher *themes.Matcher
	logger  *zap.Logger
}

func NewExperienceEnricher(repo catalog.Repository, matcher *themes.Matcher, logger *zap.Logger) *ExperienceEnricher {
	return &ExperienceEnricher{repo: repo, matcher: matcher, logger: logger}
}

func (e *ExperienceEnricher) EntityType() string { return EntityExperience }

func (e *ExperienceEnricher) SelectBatch(ctx context.Context, limit int) ([]Target, error) {
	destinations, err := e.repo.SelectDestinationsMissingExperiences(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrStoreUnavailable, err)
	}

	targets := make([]Target, 0, len(destinations))
	for _, d := range destinations {
		existing, err := e.repo.ListExperiences(ctx, d.ID)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", models.ErrStoreUnavailable, err)
		}
		missing := e.matcher.MissingThemes(existing)
		if len(missing) == 0 {
			// The count was short but the titles already cover every theme;
			// nothing to generate here.
			continue
		}
		targets = append(targets, Target{
			ID:     d.ID,
			Name:   fmt.Sprintf("%s, %s", d.Name, d.Country),
			Prompt: experiencePrompt(d, missing),
			Themes: missing,
		})
	}
	return targets, nil
}

func (e *ExperienceEnricher) Persist(ctx context.Context, t Target, raw string) error {
	var content models.ExperienceSetContent
	if err := json.Unmarshal([]byte(CleanJSONResponse(raw)), &content); err != nil {
		return fmt.Errorf("%w: %v", models.ErrMalformedOutput, err)
	}

	requested := make(map[string]bool, len(t.Themes))
	for _, theme := range t.Themes {
		requested[theme] = true
	}

	returned := make(map[string]bool, len(content.Experiences))
	for _, exp := range content.Experiences {
		if !requested[exp.Theme] {
			return fmt.Errorf("%w: unexpected theme %q for %s",
				models.ErrMalformedOutput, exp.Theme, t.Name)
		}
		if exp.Title == "" || exp.Description == "" || exp.SpecificLocation == "" {
			return fmt.Errorf("%w: empty %s experience for %s",
				models.ErrIncompleteContent, exp.Theme, t.Name)
		}
		returned[exp.Theme] = true
	}
	for _, theme := range t.Themes {
		if !returned[theme] {
			return fmt.Errorf("%w: missing %s experience for %s",
				models.ErrIncompleteContent, theme, t.Name)
		}
	}

	if err := e.repo.UpsertExperiences(ctx, t.ID, content.Experiences); err != nil {
		return err
	}

	e.logger.Info("Experiences enriched",
		zap.String("destination", t.Name),
		zap.Strings("themes", t.Themes))
	return nil
}
