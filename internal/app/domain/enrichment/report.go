package enrichment

import (
	"encoding/json"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
)

// EntityError records one failed entity so the report stays useful after a
// partially failed run.
type EntityError struct {
	EntityID uuid.UUID `json:"entity_id"`
	Name     string    `json:"name"`
	Stage    string    `json:"stage"`
	Error    string    `json:"error"`
}

// Report is the run summary the orchestrator builds. All counters are safe
// for concurrent increments so the errgroup fan-out path can share one.
type Report struct {
	EntityType     string        `json:"entity_type"`
	DryRun         bool          `json:"dry_run"`
	Attempted      int           `json:"attempted"`
	Succeeded      int           `json:"succeeded"`
	Failed         int           `json:"failed"`
	SkippedClaimed int           `json:"skipped_claimed"`
	StartedAt      time.Time     `json:"started_at"`
	Elapsed        time.Duration `json:"-"`
	Errors         []EntityError `json:"errors,omitempty"`

	mu sync.Mutex
}

func newReport(entityType string, dryRun bool) *Report {
	return &Report{
		EntityType: entityType,
		DryRun:     dryRun,
		StartedAt:  time.Now().UTC(),
	}
}

func (r *Report) recordSuccess() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Attempted++
	r.Succeeded++
}

func (r *Report) recordFailure(t Target, stage string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Attempted++
	r.Failed++
	r.Errors = append(r.Errors, EntityError{
		EntityID: t.ID,
		Name:     t.Name,
		Stage:    stage,
		Error:    err.Error(),
	})
}

func (r *Report) recordSkip() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.SkippedClaimed++
}

func (r *Report) finish() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Elapsed = time.Since(r.StartedAt)
}

// Write emits the report as indented JSON, for the CLI to print on stdout.
func (r *Report) Write(w io.Writer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(struct {
		*Report
		ElapsedMS int64 `json:"elapsed_ms"`
	}{Report: r, ElapsedMS: r.Elapsed.Milliseconds()})
}
