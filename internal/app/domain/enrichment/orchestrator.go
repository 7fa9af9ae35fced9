package enrichment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/wanderseed/wanderseed/internal/app/models"
	"github.com/wanderseed/wanderseed/internal/observability/metrics"
)

const (
	stageSelect   = "select"
	stageClaim    = "claim"
	stageGenerate = "generate"
	stagePersist  = "persist"
)

// ClaimStore is the subset of the repository the orchestrator needs to fence
// concurrent runs off from each other.
type ClaimStore interface {
	ClaimEntity(ctx context.Context, entityType string, entityID uuid.UUID, ttl time.Duration) (bool, error)
	ReleaseEntity(ctx context.Context, entityType string, entityID uuid.UUID) error
}

// Options tunes a single orchestrator run.
type Options struct {
	BatchSize   int
	Pacing      time.Duration
	ClaimTTL    time.Duration
	Concurrency int
	DryRun      bool
}

// Orchestrator drives one enrichment run: select a bounded batch, then for
// each entity claim it, generate, persist, release. Entity failures are
// isolated; only a failed batch selection aborts the run.
type Orchestrator struct {
	generator Generator
	claims    ClaimStore
	logger    *zap.Logger
	metrics   *metrics.AppMetrics
	opts      Options
}

func NewOrchestrator(generator Generator, claims ClaimStore, logger *zap.Logger, m *metrics.AppMetrics, opts Options) *Orchestrator {
	if opts.BatchSize <= 0 {
		opts.BatchSize = 20
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 1
	}
	return &Orchestrator{
		generator: generator,
		claims:    claims,
		logger:    logger,
		metrics:   m,
		opts:      opts,
	}
}

// Run executes one batch for the given enricher and returns the summary
// report. The returned error is non-nil only when the run could not proceed
// at all; per-entity failures land in the report instead.
func (o *Orchestrator) Run(ctx context.Context, enricher Enricher) (*Report, error) {
	ctx, span := otel.Tracer("enrichment").Start(ctx, "Orchestrator.Run")
	defer span.End()
	span.SetAttributes(
		attribute.String("entity_type", enricher.EntityType()),
		attribute.Int("batch_size", o.opts.BatchSize),
		attribute.Bool("dry_run", o.opts.DryRun),
	)

	report := newReport(enricher.EntityType(), o.opts.DryRun)
	defer report.finish()

	targets, err := enricher.SelectBatch(ctx, o.opts.BatchSize)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "batch selection failed")
		return report, fmt.Errorf("selecting %s batch: %w", enricher.EntityType(), err)
	}
	o.logger.Info("Batch selected",
		zap.String("entity_type", enricher.EntityType()),
		zap.Int("count", len(targets)),
		zap.Bool("dry_run", o.opts.DryRun))

	if o.opts.DryRun {
		for _, t := range targets {
			o.logger.Info("Would enrich",
				zap.String("entity_type", enricher.EntityType()),
				zap.String("entity_id", t.ID.String()),
				zap.String("name", t.Name),
				zap.Int("prompt_chars", len(t.Prompt)))
			report.recordSuccess()
		}
		span.SetStatus(codes.Ok, "dry run complete")
		return report, nil
	}

	if o.opts.Concurrency > 1 {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(o.opts.Concurrency)
		for _, t := range targets {
			t := t
			g.Go(func() error {
				o.processTarget(gctx, enricher, t, report)
				return gctx.Err()
			})
		}
		if err := g.Wait(); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "run cancelled")
			return report, err
		}
		span.SetStatus(codes.Ok, "batch complete")
		return report, nil
	}

	for i, t := range targets {
		if i > 0 && o.opts.Pacing > 0 {
			select {
			case <-ctx.Done():
				span.SetStatus(codes.Error, "run cancelled")
				return report, ctx.Err()
			case <-time.After(o.opts.Pacing):
			}
		}
		o.processTarget(ctx, enricher, t, report)
	}

	span.SetStatus(codes.Ok, "batch complete")
	return report, nil
}

// processTarget runs the claim/generate/persist sequence for one entity.
// Every failure path releases the claim so a later run can retry the entity.
func (o *Orchestrator) processTarget(ctx context.Context, enricher Enricher, t Target, report *Report) {
	entityType := enricher.EntityType()
	ctx, span := otel.Tracer("enrichment").Start(ctx, "Orchestrator.processTarget")
	defer span.End()
	span.SetAttributes(
		attribute.String("entity_type", entityType),
		attribute.String("entity_id", t.ID.String()),
	)

	o.metrics.RecordAttempt(ctx, entityType)

	claimed, err := o.claims.ClaimEntity(ctx, entityType, t.ID, o.opts.ClaimTTL)
	if err != nil {
		o.fail(ctx, report, t, entityType, stageClaim, err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "claim failed")
		return
	}
	if !claimed {
		report.recordSkip()
		o.logger.Info("Entity already claimed, skipping",
			zap.String("entity_type", entityType),
			zap.String("entity_id", t.ID.String()))
		span.SetStatus(codes.Ok, "skipped: claimed elsewhere")
		return
	}
	defer o.release(ctx, entityType, t.ID)

	raw, usage, err := o.generator.Generate(ctx, t.Prompt)
	if err != nil {
		o.fail(ctx, report, t, entityType, stageGenerate, err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "generation failed")
		return
	}
	o.metrics.RecordGeneration(ctx, o.generator.ModelName(), usage.Latency, usage.PromptTokens, usage.CompletionTokens)

	if err := enricher.Persist(ctx, t, raw); err != nil {
		o.fail(ctx, report, t, entityType, stagePersist, err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "persist failed")
		return
	}

	report.recordSuccess()
	o.metrics.RecordSuccess(ctx, entityType)
	span.SetStatus(codes.Ok, "entity enriched")
}

func (o *Orchestrator) fail(ctx context.Context, report *Report, t Target, entityType, stage string, err error) {
	report.recordFailure(t, stage, err)
	o.metrics.RecordFailure(ctx, entityType, stage)
	o.logger.Error("Entity enrichment failed",
		zap.String("entity_type", entityType),
		zap.String("entity_id", t.ID.String()),
		zap.String("name", t.Name),
		zap.String("stage", stage),
		zap.Error(err))
}

// release drops the claim row. Uses a fresh short-lived context so a
// cancelled run still releases what it claimed.
func (o *Orchestrator) release(ctx context.Context, entityType string, id uuid.UUID) {
	releaseCtx := ctx
	if ctx.Err() != nil {
		var cancel context.CancelFunc
		releaseCtx, cancel = context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
	}
	if err := o.claims.ReleaseEntity(releaseCtx, entityType, id); err != nil {
		o.logger.Warn("Failed to release claim, will expire via TTL",
			zap.String("entity_type", entityType),
			zap.String("entity_id", id.String()),
			zap.Error(err))
	}
}

// IsFatal reports whether a run-level error means the whole invocation should
// exit non-zero without retrying other entity types.
func IsFatal(err error) bool {
	return errors.Is(err, models.ErrStoreUnavailable) || errors.Is(err, context.Canceled)
}
