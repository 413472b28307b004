package ingest

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/moedb/moedb-engine/pkg/apperrors"
	"github.com/moedb/moedb-engine/pkg/models"
	"github.com/moedb/moedb-engine/pkg/repositories"
)

// CandidateLimit caps the candidate list so it stays small enough for a
// single downstream disambiguation call.
const CandidateLimit = 10

// Matcher performs the fuzzy multi-field lookup against the persisted
// catalog that produces a bounded candidate list for a free-text query.
type Matcher struct {
	works  repositories.WorkRepository
	logger *zap.Logger
}

// NewMatcher creates a candidate matcher over the work repository.
func NewMatcher(works repositories.WorkRepository, logger *zap.Logger) *Matcher {
	return &Matcher{works: works, logger: logger.Named("matcher")}
}

// FindCandidates returns up to CandidateLimit existing works whose localized
// names contain the query as a case-insensitive substring. The query must be
// non-empty after trimming; an empty query is a caller error.
func (m *Matcher) FindCandidates(ctx context.Context, query string) ([]models.WorkCandidate, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, apperrors.ErrInvalidRequest
	}

	candidates, err := m.works.SearchByName(ctx, query, CandidateLimit)
	if err != nil {
		return nil, fmt.Errorf("search works: %w", err)
	}

	m.logger.Debug("candidate search",
		zap.String("query", query),
		zap.Int("candidates", len(candidates)))

	return candidates, nil
}
