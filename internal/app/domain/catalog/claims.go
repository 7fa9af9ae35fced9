package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// ClaimEntity takes the per-entity advisory claim two concurrent pipeline
// runs race on. The insert succeeds for a fresh entity; for an existing
// claim it only succeeds when the previous claim has gone stale (older than
// ttl), which covers runs that crashed between claim and release. Returns
// false when another live run holds the claim.
func (r *RepositoryImpl) ClaimEntity(ctx context.Context, entityType string, entityID uuid.UUID, ttl time.Duration) (bool, error) {
	query := `
        INSERT INTO enrichment_claims (entity_type, entity_id, claimed_at)
        VALUES ($1, $2, now())
        ON CONFLICT (entity_type, entity_id) DO UPDATE SET claimed_at = now()
        WHERE enrichment_claims.claimed_at < now() - $3::interval
        RETURNING entity_id
    `
	interval := fmt.Sprintf("%d seconds", int(ttl.Seconds()))
	var claimed uuid.UUID
	err := r.db.QueryRow(ctx, query, entityType, entityID, interval).Scan(&claimed)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("failed to claim entity: %w", err)
	}

	r.logger.Debug("Entity claimed",
		zap.String("entity_type", entityType),
		zap.String("entity_id", entityID.String()))
	return true, nil
}

// ReleaseEntity drops the claim after persist (or after a per-entity
// failure). Releasing an unclaimed entity is a no-op.
func (r *RepositoryImpl) ReleaseEntity(ctx context.Context, entityType string, entityID uuid.UUID) error {
	query := `
        DELETE FROM enrichment_claims WHERE entity_type = $1 AND entity_id = $2
    `
	if _, err := r.db.Exec(ctx, query, entityType, entityID); err != nil {
		return fmt.Errorf("failed to release entity claim: %w", err)
	}
	return nil
}
