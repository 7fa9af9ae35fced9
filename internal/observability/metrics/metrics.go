package metrics

import (
	"context"
	"log"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// AppMetrics holds the application's metric instruments.
// Make fields public so they can be accessed from other packages.
type AppMetrics struct {
	HTTPRequestsTotal      metric.Int64Counter
	HTTPRequestDuration    metric.Float64Histogram
	DBQueryDurationSeconds metric.Float64Histogram
	DBQueryErrorsTotal     metric.Int64Counter

	EnrichmentAttemptsTotal  metric.Int64Counter
	EnrichmentSuccessesTotal metric.Int64Counter
	EnrichmentFailuresTotal  metric.Int64Counter
	GenerationDuration       metric.Float64Histogram
	GenerationTokensTotal    metric.Int64Counter
}

var (
	// Global instance of AppMetrics (initialized once)
	appMetrics *AppMetrics
	once       sync.Once
)

// InitAppMetrics initializes the global metrics instruments ONLY ONCE.
// It gets the Meter from the globally configured MeterProvider.
func InitAppMetrics() {
	once.Do(func() {
		meter := otel.GetMeterProvider().Meter("wanderseed")
		var err error
		m := &AppMetrics{}

		m.HTTPRequestsTotal, err = meter.Int64Counter(
			"http_requests_total",
			metric.WithDescription("Total number of HTTP requests completed"),
			metric.WithUnit("{request}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create http_requests_total: %v", err)
		}

		m.HTTPRequestDuration, err = meter.Float64Histogram(
			"http_request_duration_seconds",
			metric.WithDescription("Duration of HTTP requests in seconds"),
			metric.WithUnit("s"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create http_request_duration_seconds: %v", err)
		}

		m.DBQueryDurationSeconds, err = meter.Float64Histogram(
			"db_query_duration_seconds",
			metric.WithDescription("Duration of database queries in seconds"),
			metric.WithUnit("s"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create db_query_duration_seconds: %v", err)
		}

		m.DBQueryErrorsTotal, err = meter.Int64Counter(
			"db_query_errors_total",
			metric.WithDescription("Total number of database query errors"),
			metric.WithUnit("{error}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create db_query_errors_total: %v", err)
		}

		m.EnrichmentAttemptsTotal, err = meter.Int64Counter(
			"enrichment_attempts_total",
			metric.WithDescription("Total number of entities the pipeline attempted to enrich"),
			metric.WithUnit("{entity}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create enrichment_attempts_total: %v", err)
		}

		m.EnrichmentSuccessesTotal, err = meter.Int64Counter(
			"enrichment_successes_total",
			metric.WithDescription("Total number of entities enriched and persisted"),
			metric.WithUnit("{entity}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create enrichment_successes_total: %v", err)
		}

		m.EnrichmentFailuresTotal, err = meter.Int64Counter(
			"enrichment_failures_total",
			metric.WithDescription("Total number of entities that failed enrichment"),
			metric.WithUnit("{entity}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create enrichment_failures_total: %v", err)
		}

		m.GenerationDuration, err = meter.Float64Histogram(
			"generation_request_duration_seconds",
			metric.WithDescription("Duration of model generation calls in seconds"),
			metric.WithUnit("s"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create generation_request_duration_seconds: %v", err)
		}

		m.GenerationTokensTotal, err = meter.Int64Counter(
			"generation_tokens_total",
			metric.WithDescription("Total prompt and completion tokens consumed"),
			metric.WithUnit("{token}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create generation_tokens_total: %v", err)
		}

		log.Println("Application metrics instruments initialized.")
		appMetrics = m
	})
}

// Get returns the globally initialized AppMetrics instance, or nil when
// InitAppMetrics was never called. Callers use the nil-tolerant Record*
// helpers so metrics stay optional in tests and one-shot CLI runs.
func Get() *AppMetrics {
	return appMetrics
}

func (m *AppMetrics) RecordAttempt(ctx context.Context, entityType string) {
	if m == nil {
		return
	}
	m.EnrichmentAttemptsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("entity_type", entityType)))
}

func (m *AppMetrics) RecordSuccess(ctx context.Context, entityType string) {
	if m == nil {
		return
	}
	m.EnrichmentSuccessesTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("entity_type", entityType)))
}

func (m *AppMetrics) RecordFailure(ctx context.Context, entityType, stage string) {
	if m == nil {
		return
	}
	m.EnrichmentFailuresTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("entity_type", entityType),
		attribute.String("stage", stage),
	))
}

func (m *AppMetrics) RecordGeneration(ctx context.Context, model string, elapsed time.Duration, promptTokens, completionTokens int) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("model", model))
	m.GenerationDuration.Record(ctx, elapsed.Seconds(), attrs)
	m.GenerationTokensTotal.Add(ctx, int64(promptTokens),
		metric.WithAttributes(attribute.String("model", model), attribute.String("kind", "prompt")))
	m.GenerationTokensTotal.Add(ctx, int64(completionTokens),
		metric.WithAttributes(attribute.String("model", model), attribute.String("kind", "completion")))
}
