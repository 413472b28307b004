package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/moedb/moedb-engine/pkg/database"
	"github.com/moedb/moedb-engine/pkg/models"
)

// VoteRepository defines access to personality votes.
type VoteRepository interface {
	// Upsert records a user's vote for a character, replacing any previous
	// vote by the same user on the same character.
	Upsert(ctx context.Context, vote *models.PersonalityVote) error
	// TallyByCharacter counts votes per axis value for one character.
	TallyByCharacter(ctx context.Context, characterID uuid.UUID) ([]models.VoteTally, error)
}

type voteRepository struct {
	db *database.DB
}

// NewVoteRepository creates a PostgreSQL-backed vote repository.
func NewVoteRepository(db *database.DB) VoteRepository {
	return &voteRepository{db: db}
}

func (r *voteRepository) Upsert(ctx context.Context, vote *models.PersonalityVote) error {
	if err := vote.Validate(); err != nil {
		return err
	}

	const sql = `
		INSERT INTO personality_votes (character_id, user_id, mbti, enneagram, subtype, yi_hexagram, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (character_id, user_id) DO UPDATE
		SET mbti = EXCLUDED.mbti,
		    enneagram = EXCLUDED.enneagram,
		    subtype = EXCLUDED.subtype,
		    yi_hexagram = EXCLUDED.yi_hexagram,
		    created_at = EXCLUDED.created_at
		RETURNING id`

	vote.CreatedAt = time.Now()
	err := r.db.QueryRow(ctx, sql,
		vote.CharacterID, vote.UserID,
		vote.MBTI, vote.Enneagram, vote.Subtype, vote.YiHexagram,
		vote.CreatedAt,
	).Scan(&vote.ID)
	if err != nil {
		return fmt.Errorf("failed to upsert vote: %w", err)
	}
	return nil
}

func (r *voteRepository) TallyByCharacter(ctx context.Context, characterID uuid.UUID) ([]models.VoteTally, error) {
	const sql = `
		SELECT 'mbti' AS axis, mbti AS value, COUNT(*) AS votes
		FROM personality_votes WHERE character_id = $1 AND mbti IS NOT NULL GROUP BY mbti
		UNION ALL
		SELECT 'enneagram', enneagram, COUNT(*)
		FROM personality_votes WHERE character_id = $1 AND enneagram IS NOT NULL GROUP BY enneagram
		UNION ALL
		SELECT 'subtype', subtype, COUNT(*)
		FROM personality_votes WHERE character_id = $1 AND subtype IS NOT NULL GROUP BY subtype
		UNION ALL
		SELECT 'yi_hexagram', yi_hexagram, COUNT(*)
		FROM personality_votes WHERE character_id = $1 AND yi_hexagram IS NOT NULL GROUP BY yi_hexagram
		ORDER BY axis, votes DESC`

	rows, err := r.db.Query(ctx, sql, characterID)
	if err != nil {
		return nil, fmt.Errorf("failed to tally votes: %w", err)
	}
	defer rows.Close()

	var tallies []models.VoteTally
	for rows.Next() {
		var t models.VoteTally
		if err := rows.Scan(&t.Axis, &t.Value, &t.Count); err != nil {
			return nil, fmt.Errorf("failed to scan vote tally: %w", err)
		}
		tallies = append(tallies, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read vote tallies: %w", err)
	}
	return tallies, nil
}
