package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/moedb/moedb-engine/pkg/database"
)

// ClaimRepository manages short-lived advisory claims on normalized work
// names. The unique constraint on normalized_name is what closes the
// duplicate-creation window between two concurrent submissions of the same
// name.
type ClaimRepository interface {
	// TryAcquire claims a normalized name for ttl. Returns false if another
	// live claim holds the name.
	TryAcquire(ctx context.Context, normalizedName, claimedBy string, ttl time.Duration) (bool, error)
	// Release drops the caller's claim. Releasing an absent claim is not an
	// error.
	Release(ctx context.Context, normalizedName, claimedBy string) error
}

type claimRepository struct {
	db *database.DB
}

// NewClaimRepository creates a PostgreSQL-backed claim repository.
func NewClaimRepository(db *database.DB) ClaimRepository {
	return &claimRepository{db: db}
}

func (r *claimRepository) TryAcquire(ctx context.Context, normalizedName, claimedBy string, ttl time.Duration) (bool, error) {
	// Expired claims are swept lazily on acquisition so a crashed ingestion
	// cannot wedge a name past its TTL.
	if _, err := r.db.Exec(ctx,
		`DELETE FROM ingest_claims WHERE normalized_name = $1 AND expires_at < now()`,
		normalizedName); err != nil {
		return false, fmt.Errorf("failed to sweep expired claims: %w", err)
	}

	now := time.Now()
	tag, err := r.db.Exec(ctx, `
		INSERT INTO ingest_claims (normalized_name, claimed_by, claimed_at, expires_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (normalized_name) DO NOTHING`,
		normalizedName, claimedBy, now, now.Add(ttl))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return false, nil
		}
		return false, fmt.Errorf("failed to acquire claim: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *claimRepository) Release(ctx context.Context, normalizedName, claimedBy string) error {
	if _, err := r.db.Exec(ctx,
		`DELETE FROM ingest_claims WHERE normalized_name = $1 AND claimed_by = $2`,
		normalizedName, claimedBy); err != nil {
		return fmt.Errorf("failed to release claim: %w", err)
	}
	return nil
}
