package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/moedb/moedb-engine/pkg/database"
	"github.com/moedb/moedb-engine/pkg/models"
)

// CharacterRepository defines catalog access for characters.
type CharacterRepository interface {
	// CreateBatch inserts characters one row at a time. A failing row does
	// not abort the rest; the returned count is the number actually
	// created, and the error joins the per-row failures (nil if all
	// succeeded).
	CreateBatch(ctx context.Context, characters []*models.Character) (int, error)
	ListByWork(ctx context.Context, workID uuid.UUID) ([]models.Character, error)
}

type characterRepository struct {
	db *database.DB
}

// NewCharacterRepository creates a PostgreSQL-backed character repository.
func NewCharacterRepository(db *database.DB) CharacterRepository {
	return &characterRepository{db: db}
}

func (r *characterRepository) CreateBatch(ctx context.Context, characters []*models.Character) (int, error) {
	const sql = `
		INSERT INTO characters (work_id, name_cn, name_en, name_jp, avatar_url, source_link, summary_md, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`

	created := 0
	var errs []error
	for _, c := range characters {
		c.CreatedAt = time.Now()
		err := r.db.QueryRow(ctx, sql,
			c.WorkID, c.NameCN, c.NameEN, c.NameJP,
			c.AvatarURL, c.SourceLink, c.SummaryMD, c.CreatedAt,
		).Scan(&c.ID)
		if err != nil {
			errs = append(errs, fmt.Errorf("character %q: %w", c.DisplayName(), err))
			continue
		}
		created++
	}
	return created, errors.Join(errs...)
}

func (r *characterRepository) ListByWork(ctx context.Context, workID uuid.UUID) ([]models.Character, error) {
	const sql = `
		SELECT id, work_id, name_cn, name_en, name_jp, avatar_url, source_link, summary_md, created_at
		FROM characters
		WHERE work_id = $1
		ORDER BY created_at`

	rows, err := r.db.Query(ctx, sql, workID)
	if err != nil {
		return nil, fmt.Errorf("failed to list characters: %w", err)
	}
	defer rows.Close()

	var characters []models.Character
	for rows.Next() {
		var c models.Character
		if err := rows.Scan(
			&c.ID, &c.WorkID, &c.NameCN, &c.NameEN, &c.NameJP,
			&c.AvatarURL, &c.SourceLink, &c.SummaryMD, &c.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan character: %w", err)
		}
		characters = append(characters, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read characters: %w", err)
	}
	return characters, nil
}
