package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/wanderseed/wanderseed/internal/app/domain/catalog"
	"github.com/wanderseed/wanderseed/internal/app/domain/enrichment"
	"github.com/wanderseed/wanderseed/internal/app/domain/themes"
	database "github.com/wanderseed/wanderseed/internal/db"
	"github.com/wanderseed/wanderseed/internal/observability/metrics"
	"github.com/wanderseed/wanderseed/internal/pkg/config"
	"github.com/wanderseed/wanderseed/internal/pkg/logger"
	"github.com/wanderseed/wanderseed/internal/server"
)

var (
	entityType  = pflag.String("entity-type", "", "entity type to enrich: destination, destination_rich, itinerary, experience, snowbird, collection_note")
	batchSize   = pflag.Int("batch-size", 20, "maximum number of entities to process in this run")
	threshold   = pflag.Int("threshold", 0, "override the completeness threshold in characters (0 = use config)")
	tier        = pflag.String("tier", "basic", "destination content tier: basic or rich")
	concurrency = pflag.Int("concurrency", 1, "number of entities processed in parallel (disables pacing when > 1)")
	runTimeout  = pflag.Duration("run-timeout", 30*time.Minute, "abort the run after this long")
	dryRun      = pflag.Bool("dry-run", false, "select and report candidates without generating or writing")
	seed        = pflag.Bool("seed", false, "load the seed catalog before selecting the batch")
	withMetrics = pflag.Bool("metrics", false, "expose Prometheus metrics for the duration of the run")
)

func main() {
	pflag.Parse()

	if err := run(); err != nil {
		log.Println(err)
		os.Exit(1)
	}
}

func run() error {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Error loading .env file, using environment variables")
	}

	if err := logger.Init(zap.InfoLevel); err != nil {
		return err
	}
	zlog := logger.Log
	defer zlog.Sync()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, *runTimeout)
	defer cancel()

	if *withMetrics {
		otelShutdown, err := server.InitObservability("wanderseed-enrich", ":"+cfg.MetricsPort, zlog)
		if err != nil {
			return err
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := otelShutdown(shutdownCtx); err != nil {
				zlog.Error("Failed to shutdown OpenTelemetry", zap.Error(err))
			}
		}()
	}

	dbConfig, err := database.NewDatabaseConfig(cfg, zlog)
	if err != nil {
		return err
	}
	pool, err := database.Init(dbConfig.ConnectionURL, zlog)
	if err != nil {
		return err
	}
	defer pool.Close()
	database.WaitForDB(ctx, pool, zlog)

	if err := database.RunMigrations(dbConfig.ConnectionURL, zlog); err != nil {
		return err
	}

	repo := catalog.NewRepository(pool, zlog)

	if *seed {
		if err := catalog.NewSeeder(repo, zlog).Run(ctx); err != nil {
			return fmt.Errorf("seeding catalog: %w", err)
		}
	}

	enricher, err := buildEnricher(repo, cfg, zlog)
	if err != nil {
		return err
	}

	var generator enrichment.Generator
	if !*dryRun {
		generator, err = enrichment.NewGenaiClient(ctx, cfg.Generation, zlog)
		if err != nil {
			return err
		}
	}

	orchestrator := enrichment.NewOrchestrator(generator, repo, zlog, metrics.Get(), enrichment.Options{
		BatchSize:   *batchSize,
		Pacing:      cfg.Generation.PacingDelay,
		ClaimTTL:    cfg.Enrichment.ClaimTTL,
		Concurrency: *concurrency,
		DryRun:      *dryRun,
	})

	report, runErr := orchestrator.Run(ctx, enricher)
	if err := report.Write(os.Stdout); err != nil {
		zlog.Error("Failed to write report", zap.Error(err))
	}

	// Per-entity failures are accounted for in the report; only a fatal
	// error before or during batch processing fails the process.
	if runErr != nil {
		return fmt.Errorf("enrichment run aborted: %w", runErr)
	}
	return nil
}

func buildEnricher(repo catalog.Repository, cfg *config.Config, zlog *zap.Logger) (enrichment.Enricher, error) {
	switch *entityType {
	case enrichment.EntityDestination, enrichment.EntityDestinationRich:
		contentTier := enrichment.TierBasic
		limit := cfg.Enrichment.BasicThreshold
		if *entityType == enrichment.EntityDestinationRich || *tier == string(enrichment.TierRich) {
			contentTier = enrichment.TierRich
			limit = cfg.Enrichment.RichThreshold
		}
		if *threshold > 0 {
			limit = *threshold
		}
		return enrichment.NewDestinationEnricher(repo, zlog, contentTier, limit), nil
	case enrichment.EntityItinerary:
		return enrichment.NewItineraryEnricher(repo, zlog), nil
	case enrichment.EntityExperience:
		return enrichment.NewExperienceEnricher(repo, themes.NewMatcher(), zlog), nil
	case enrichment.EntitySnowbird:
		return enrichment.NewSnowbirdEnricher(repo, zlog), nil
	case enrichment.EntityCollectionNote:
		return enrichment.NewCollectionNoteEnricher(repo, zlog), nil
	case "":
		return nil, fmt.Errorf("--entity-type is required")
	default:
		return nil, fmt.Errorf("unknown entity type %q", *entityType)
	}
}
