package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/moedb/moedb-engine/pkg/database"
	"github.com/moedb/moedb-engine/pkg/models"
)

// SnapshotRepository stores raw harvested source content for provenance.
type SnapshotRepository interface {
	Record(ctx context.Context, snapshot *models.SourceSnapshot) error
}

type snapshotRepository struct {
	db *database.DB
}

// NewSnapshotRepository creates a PostgreSQL-backed snapshot repository.
func NewSnapshotRepository(db *database.DB) SnapshotRepository {
	return &snapshotRepository{db: db}
}

func (r *snapshotRepository) Record(ctx context.Context, snapshot *models.SourceSnapshot) error {
	const sql = `
		INSERT INTO source_snapshots (url, fetched_at, fetched_by, raw_md, raw_html, license_info)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`

	snapshot.FetchedAt = time.Now()
	err := r.db.QueryRow(ctx, sql,
		snapshot.URL, snapshot.FetchedAt, snapshot.FetchedBy,
		snapshot.RawMD, snapshot.RawHTML, snapshot.LicenseInfo,
	).Scan(&snapshot.ID)
	if err != nil {
		return fmt.Errorf("failed to record snapshot: %w", err)
	}
	return nil
}
