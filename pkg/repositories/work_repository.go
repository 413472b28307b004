package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/moedb/moedb-engine/pkg/apperrors"
	"github.com/moedb/moedb-engine/pkg/database"
	"github.com/moedb/moedb-engine/pkg/models"
)

// WorkRepository defines catalog access for works.
type WorkRepository interface {
	// SearchByName performs a case-insensitive substring match against each
	// localized name field independently, unioned, capped at limit.
	SearchByName(ctx context.Context, query string, limit int) ([]models.WorkCandidate, error)
	// Create inserts a work and fills in its assigned ID and timestamp.
	Create(ctx context.Context, work *models.Work) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Work, error)
	List(ctx context.Context, limit, offset int) ([]models.Work, error)
}

type workRepository struct {
	db *database.DB
}

// NewWorkRepository creates a PostgreSQL-backed work repository.
func NewWorkRepository(db *database.DB) WorkRepository {
	return &workRepository{db: db}
}

func (r *workRepository) SearchByName(ctx context.Context, query string, limit int) ([]models.WorkCandidate, error) {
	const sql = `
		SELECT id, name_cn, name_en, name_jp, alias, type
		FROM works
		WHERE name_cn ILIKE '%' || $1 || '%'
		   OR name_en ILIKE '%' || $1 || '%'
		   OR name_jp ILIKE '%' || $1 || '%'
		LIMIT $2`

	rows, err := r.db.Query(ctx, sql, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search works: %w", err)
	}
	defer rows.Close()

	var candidates []models.WorkCandidate
	for rows.Next() {
		var c models.WorkCandidate
		if err := rows.Scan(&c.ID, &c.NameCN, &c.NameEN, &c.NameJP, &c.Aliases, &c.Type); err != nil {
			return nil, fmt.Errorf("failed to scan work candidate: %w", err)
		}
		candidates = append(candidates, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read work candidates: %w", err)
	}
	return candidates, nil
}

func (r *workRepository) Create(ctx context.Context, work *models.Work) error {
	if err := work.Validate(); err != nil {
		return err
	}
	if !models.IsValidWorkType(work.Type) {
		return fmt.Errorf("invalid work type %q", work.Type)
	}

	const sql = `
		INSERT INTO works (name_cn, name_en, name_jp, alias, type, summary_md, source_urls, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`

	work.CreatedAt = time.Now()
	err := r.db.QueryRow(ctx, sql,
		work.NameCN,
		work.NameEN,
		work.NameJP,
		work.Aliases,
		work.Type,
		work.SummaryMD,
		work.SourceURLs,
		work.CreatedBy,
		work.CreatedAt,
	).Scan(&work.ID)
	if err != nil {
		return fmt.Errorf("failed to create work: %w", err)
	}
	return nil
}

func (r *workRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Work, error) {
	const sql = `
		SELECT id, name_cn, name_en, name_jp, alias, type, summary_md, source_urls, created_by, created_at
		FROM works
		WHERE id = $1`

	var w models.Work
	err := r.db.QueryRow(ctx, sql, id).Scan(
		&w.ID, &w.NameCN, &w.NameEN, &w.NameJP, &w.Aliases,
		&w.Type, &w.SummaryMD, &w.SourceURLs, &w.CreatedBy, &w.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get work: %w", err)
	}
	return &w, nil
}

func (r *workRepository) List(ctx context.Context, limit, offset int) ([]models.Work, error) {
	const sql = `
		SELECT id, name_cn, name_en, name_jp, alias, type, summary_md, source_urls, created_by, created_at
		FROM works
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`

	rows, err := r.db.Query(ctx, sql, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list works: %w", err)
	}
	defer rows.Close()

	var works []models.Work
	for rows.Next() {
		var w models.Work
		if err := rows.Scan(
			&w.ID, &w.NameCN, &w.NameEN, &w.NameJP, &w.Aliases,
			&w.Type, &w.SummaryMD, &w.SourceURLs, &w.CreatedBy, &w.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan work: %w", err)
		}
		works = append(works, w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read works: %w", err)
	}
	return works, nil
}
