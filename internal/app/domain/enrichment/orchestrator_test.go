package enrichment

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/wanderseed/wanderseed/internal/app/models"
)

type fakeEnricher struct {
	entityType string
	targets    []Target
	selectErr  error

	mu          sync.Mutex
	gotLimit    int
	persisted   []uuid.UUID
	persistErrs map[uuid.UUID]error
}

func (f *fakeEnricher) EntityType() string { return f.entityType }

func (f *fakeEnricher) SelectBatch(_ context.Context, limit int) ([]Target, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gotLimit = limit
	if f.selectErr != nil {
		return nil, f.selectErr
	}
	if len(f.targets) > limit {
		return f.targets[:limit], nil
	}
	return f.targets, nil
}

func (f *fakeEnricher) Persist(_ context.Context, t Target, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.persistErrs[t.ID]; ok {
		return err
	}
	f.persisted = append(f.persisted, t.ID)
	return nil
}

type fakeGenerator struct {
	mu     sync.Mutex
	output string
	err    error
	calls  int
}

func (f *fakeGenerator) Generate(context.Context, string) (string, Usage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return "", Usage{}, f.err
	}
	return f.output, Usage{PromptTokens: 100, CompletionTokens: 200, Latency: time.Millisecond}, nil
}

func (f *fakeGenerator) ModelName() string { return "fake-model" }

type fakeClaims struct {
	mu       sync.Mutex
	denied   map[uuid.UUID]bool
	claimed  []uuid.UUID
	released []uuid.UUID
	claimErr error
}

func (f *fakeClaims) ClaimEntity(_ context.Context, _ string, id uuid.UUID, _ time.Duration) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.claimErr != nil {
		return false, f.claimErr
	}
	if f.denied[id] {
		return false, nil
	}
	f.claimed = append(f.claimed, id)
	return true, nil
}

func (f *fakeClaims) ReleaseEntity(_ context.Context, _ string, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.released = append(f.released, id)
	return nil
}

func makeTargets(n int) []Target {
	targets := make([]Target, n)
	for i := range targets {
		targets[i] = Target{ID: uuid.New(), Name: "Target", Prompt: "prompt"}
	}
	return targets
}

func newTestOrchestrator(gen Generator, claims ClaimStore, opts Options) *Orchestrator {
	return NewOrchestrator(gen, claims, zap.NewNop(), nil, opts)
}

func TestOrchestratorRun_AllSucceed(t *testing.T) {
	enricher := &fakeEnricher{entityType: EntityDestination, targets: makeTargets(3)}
	gen := &fakeGenerator{output: `{"description":"ok"}`}
	claims := &fakeClaims{}

	o := newTestOrchestrator(gen, claims, Options{BatchSize: 10})
	report, err := o.Run(context.Background(), enricher)

	require.NoError(t, err)
	assert.Equal(t, 3, report.Attempted)
	assert.Equal(t, 3, report.Succeeded)
	assert.Equal(t, 0, report.Failed)
	assert.Len(t, enricher.persisted, 3)
	assert.Len(t, claims.released, 3, "every claim must be released")
}

func TestOrchestratorRun_EntityFailureIsIsolated(t *testing.T) {
	targets := makeTargets(3)
	enricher := &fakeEnricher{
		entityType: EntityDestination,
		targets:    targets,
		persistErrs: map[uuid.UUID]error{
			targets[1].ID: models.ErrMalformedOutput,
		},
	}
	gen := &fakeGenerator{output: `{"description":"ok"}`}
	claims := &fakeClaims{}

	o := newTestOrchestrator(gen, claims, Options{BatchSize: 10})
	report, err := o.Run(context.Background(), enricher)

	require.NoError(t, err, "an entity failure never aborts the run")
	assert.Equal(t, 2, report.Succeeded)
	assert.Equal(t, 1, report.Failed)
	require.Len(t, report.Errors, 1)
	assert.Equal(t, targets[1].ID, report.Errors[0].EntityID)
	assert.Equal(t, "persist", report.Errors[0].Stage)
	assert.Len(t, claims.released, 3, "failed entities release their claim too")
}

func TestOrchestratorRun_GenerationFailure(t *testing.T) {
	targets := makeTargets(1)
	enricher := &fakeEnricher{entityType: EntitySnowbird, targets: targets}
	gen := &fakeGenerator{err: models.ErrProviderFailure}
	claims := &fakeClaims{}

	o := newTestOrchestrator(gen, claims, Options{BatchSize: 10})
	report, err := o.Run(context.Background(), enricher)

	require.NoError(t, err)
	assert.Equal(t, 1, report.Failed)
	assert.Empty(t, enricher.persisted)
	require.Len(t, report.Errors, 1)
	assert.Equal(t, "generate", report.Errors[0].Stage)
	assert.Len(t, claims.released, 1)
}

func TestOrchestratorRun_SkipsClaimedEntities(t *testing.T) {
	targets := makeTargets(2)
	enricher := &fakeEnricher{entityType: EntityItinerary, targets: targets}
	gen := &fakeGenerator{output: `{}`}
	claims := &fakeClaims{denied: map[uuid.UUID]bool{targets[0].ID: true}}

	o := newTestOrchestrator(gen, claims, Options{BatchSize: 10})
	report, err := o.Run(context.Background(), enricher)

	require.NoError(t, err)
	assert.Equal(t, 1, report.SkippedClaimed)
	assert.Equal(t, 1, report.Succeeded)
	assert.Equal(t, 1, gen.calls, "skipped entities never reach the provider")
}

func TestOrchestratorRun_DryRunWritesNothing(t *testing.T) {
	enricher := &fakeEnricher{entityType: EntityDestination, targets: makeTargets(4)}
	claims := &fakeClaims{}

	o := newTestOrchestrator(nil, claims, Options{BatchSize: 10, DryRun: true})
	report, err := o.Run(context.Background(), enricher)

	require.NoError(t, err)
	assert.True(t, report.DryRun)
	assert.Equal(t, 4, report.Succeeded)
	assert.Empty(t, enricher.persisted)
	assert.Empty(t, claims.claimed)
}

func TestOrchestratorRun_BatchSizeBoundsSelection(t *testing.T) {
	enricher := &fakeEnricher{entityType: EntityDestination, targets: makeTargets(8)}
	gen := &fakeGenerator{output: `{}`}

	o := newTestOrchestrator(gen, &fakeClaims{}, Options{BatchSize: 5})
	report, err := o.Run(context.Background(), enricher)

	require.NoError(t, err)
	assert.Equal(t, 5, enricher.gotLimit)
	assert.Equal(t, 5, report.Attempted)
}

func TestOrchestratorRun_SelectFailureAborts(t *testing.T) {
	enricher := &fakeEnricher{
		entityType: EntityDestination,
		selectErr:  models.ErrStoreUnavailable,
	}

	o := newTestOrchestrator(&fakeGenerator{}, &fakeClaims{}, Options{BatchSize: 10})
	report, err := o.Run(context.Background(), enricher)

	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrStoreUnavailable))
	assert.True(t, IsFatal(err))
	assert.Equal(t, 0, report.Attempted)
}

func TestOrchestratorRun_ConcurrentFanOut(t *testing.T) {
	enricher := &fakeEnricher{entityType: EntityExperience, targets: makeTargets(6)}
	gen := &fakeGenerator{output: `{}`}
	claims := &fakeClaims{}

	o := newTestOrchestrator(gen, claims, Options{BatchSize: 10, Concurrency: 3})
	report, err := o.Run(context.Background(), enricher)

	require.NoError(t, err)
	assert.Equal(t, 6, report.Succeeded)
	assert.Len(t, claims.released, 6)
}

func TestOrchestratorRun_ClaimStoreError(t *testing.T) {
	enricher := &fakeEnricher{entityType: EntityDestination, targets: makeTargets(1)}
	claims := &fakeClaims{claimErr: errors.New("connection refused")}

	o := newTestOrchestrator(&fakeGenerator{output: `{}`}, claims, Options{BatchSize: 10})
	report, err := o.Run(context.Background(), enricher)

	require.NoError(t, err)
	assert.Equal(t, 1, report.Failed)
	assert.Equal(t, "claim", report.Errors[0].Stage)
}
