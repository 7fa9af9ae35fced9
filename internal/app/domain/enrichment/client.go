package enrichment

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/wanderseed/wanderseed/internal/app/models"
	"github.com/wanderseed/wanderseed/internal/pkg/config"
)

// Usage carries per-call token accounting for the run report and metrics.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
	Latency          time.Duration
}

// Generator is the generation-provider boundary. Implementations never touch
// the entity store.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, Usage, error)
	ModelName() string
}

// GenaiClient wraps the Gemini API with the timeout, bounded-retry and
// backoff policy the pipeline needs. The model is pinned from config so
// output does not drift when the provider promotes a new default.
type GenaiClient struct {
	client *genai.Client
	cfg    config.GenerationConfig
	logger *zap.Logger

	// call performs one provider request. Split from the retry loop so the
	// loop can be tested without a live client.
	call func(ctx context.Context, prompt string) (string, Usage, error)
}

func NewGenaiClient(ctx context.Context, cfg config.GenerationConfig, logger *zap.Logger) (*GenaiClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY environment variable is not set")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	c := &GenaiClient{client: client, cfg: cfg, logger: logger}
	c.call = c.generateOnce
	return c, nil
}

func (c *GenaiClient) ModelName() string {
	return c.cfg.Model
}

// Generate runs one structured-content request. Rate-limit and transient
// provider failures are retried with exponential backoff up to the
// configured attempt bound; anything else surfaces immediately. The caller
// parses the returned text — a parse failure is not retryable here because
// re-sending the same prompt at nonzero temperature gives no guarantee of a
// better result.
func (c *GenaiClient) Generate(ctx context.Context, prompt string) (string, Usage, error) {
	ctx, span := otel.Tracer("EnrichmentClient").Start(ctx, "Generate")
	span.SetAttributes(
		attribute.Int("prompt.length", len(prompt)),
		attribute.String("model", c.cfg.Model),
	)
	defer span.End()

	backoff := c.cfg.InitialBackoff
	if backoff <= 0 {
		backoff = 2 * time.Second
	}
	var lastErr error

	for attempt := 1; attempt <= c.cfg.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return "", Usage{}, fmt.Errorf("%w: %v", models.ErrProviderFailure, err)
		}

		text, usage, err := c.call(ctx, prompt)
		if err == nil {
			span.SetAttributes(attribute.Int("response.length", len(text)))
			span.SetStatus(codes.Ok, "content generated")
			return text, usage, nil
		}
		lastErr = err

		if !errors.Is(err, models.ErrRateLimited) && !errors.Is(err, models.ErrProviderFailure) {
			span.RecordError(err)
			return "", usage, err
		}

		c.logger.Warn("Generation attempt failed, backing off",
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", c.cfg.MaxAttempts),
			zap.Duration("backoff", backoff),
			zap.Error(err),
		)

		if attempt < c.cfg.MaxAttempts {
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return "", Usage{}, fmt.Errorf("%w: %v", models.ErrProviderFailure, ctx.Err())
			}
			backoff *= 2
		}
	}

	span.RecordError(lastErr)
	span.SetStatus(codes.Error, "generation attempts exhausted")
	return "", Usage{}, lastErr
}

func (c *GenaiClient) generateOnce(ctx context.Context, prompt string) (string, Usage, error) {
	callCtx, cancel := context.WithTimeout(ctx, c.cfg.RequestTimeout)
	defer cancel()

	genConfig := &genai.GenerateContentConfig{
		Temperature:      genai.Ptr[float32](c.cfg.Temperature),
		MaxOutputTokens:  c.cfg.MaxOutputTokens,
		ResponseMIMEType: "application/json",
	}

	start := time.Now()
	response, err := c.client.Models.GenerateContent(callCtx, c.cfg.Model, genai.Text(prompt), genConfig)
	usage := Usage{Latency: time.Since(start)}

	if err != nil {
		return "", usage, classifyProviderError(err)
	}

	if response.UsageMetadata != nil {
		usage.PromptTokens = int(response.UsageMetadata.PromptTokenCount)
		usage.CompletionTokens = int(response.UsageMetadata.CandidatesTokenCount)
		usage.TotalTokens = int(response.UsageMetadata.TotalTokenCount)
	}

	text := response.Text()
	if text == "" {
		return "", usage, fmt.Errorf("%w: empty response from model", models.ErrProviderFailure)
	}
	return text, usage, nil
}

func classifyProviderError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: request timed out: %v", models.ErrProviderFailure, err)
	}

	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.Code == 429:
			return fmt.Errorf("%w: %v", models.ErrRateLimited, err)
		case apiErr.Code >= 500:
			return fmt.Errorf("%w: %v", models.ErrProviderFailure, err)
		default:
			return fmt.Errorf("%w: provider rejected request: %v", models.ErrProviderFailure, err)
		}
	}

	// Network-level failures carry no API code.
	return fmt.Errorf("%w: %v", models.ErrProviderFailure, err)
}

// CleanJSONResponse strips markdown fences and anything outside the
// outermost JSON value. Models wrap JSON in ```json blocks often enough
// that parsing raw output directly is not viable.
func CleanJSONResponse(response string) string {
	response = strings.TrimSpace(response)

	if strings.HasPrefix(response, "```json") {
		response = strings.TrimPrefix(response, "```json")
	} else if strings.HasPrefix(response, "```") {
		response = strings.TrimPrefix(response, "```")
	}
	response = strings.TrimSuffix(response, "```")
	response = strings.TrimSpace(response)

	firstBrace := strings.IndexAny(response, "{[")
	if firstBrace == -1 {
		return response
	}

	open := response[firstBrace]
	var closeCh byte = '}'
	if open == '[' {
		closeCh = ']'
	}

	depth := 0
	lastValid := -1
	for i := firstBrace; i < len(response); i++ {
		switch response[i] {
		case open:
			depth++
		case closeCh:
			depth--
			if depth == 0 {
				lastValid = i
			}
		}
	}
	if lastValid == -1 {
		lastValid = strings.LastIndexByte(response, closeCh)
		if lastValid <= firstBrace {
			return response
		}
	}

	return strings.TrimSpace(response[firstBrace : lastValid+1])
}
