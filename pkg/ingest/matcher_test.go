package ingest

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/moedb/moedb-engine/pkg/apperrors"
	"github.com/moedb/moedb-engine/pkg/models"
)

func TestMatcherRejectsEmptyQuery(t *testing.T) {
	m := NewMatcher(&fakeWorkRepo{}, zap.NewNop())

	for _, query := range []string{"", "   ", "\t\n"} {
		_, err := m.FindCandidates(context.Background(), query)
		assert.ErrorIs(t, err, apperrors.ErrInvalidRequest, "query %q", query)
	}
}

func TestMatcherTrimsQueryBeforeSearch(t *testing.T) {
	var gotQuery string
	var gotLimit int
	repo := &fakeWorkRepo{
		searchFunc: func(ctx context.Context, query string, limit int) ([]models.WorkCandidate, error) {
			gotQuery = query
			gotLimit = limit
			return nil, nil
		},
	}
	m := NewMatcher(repo, zap.NewNop())

	candidates, err := m.FindCandidates(context.Background(), "  葬送的芙莉莲  ")
	require.NoError(t, err)
	assert.Empty(t, candidates)
	assert.Equal(t, "葬送的芙莉莲", gotQuery)
	assert.Equal(t, CandidateLimit, gotLimit)
}

func TestMatcherWrapsRepositoryError(t *testing.T) {
	repoErr := errors.New("connection refused")
	repo := &fakeWorkRepo{
		searchFunc: func(ctx context.Context, query string, limit int) ([]models.WorkCandidate, error) {
			return nil, repoErr
		},
	}
	m := NewMatcher(repo, zap.NewNop())

	_, err := m.FindCandidates(context.Background(), "eva")
	require.Error(t, err)
	assert.ErrorIs(t, err, repoErr)
}

func TestMatcherReturnsCandidates(t *testing.T) {
	want := []models.WorkCandidate{
		{ID: uuidFromByte(1), NameEN: strPtr("Neon Genesis Evangelion"), Type: models.WorkTypeAnime},
		{ID: uuidFromByte(2), NameJP: strPtr("エヴァンゲリオン"), Type: models.WorkTypeAnime},
	}
	repo := &fakeWorkRepo{
		searchFunc: func(ctx context.Context, query string, limit int) ([]models.WorkCandidate, error) {
			return want, nil
		},
	}
	m := NewMatcher(repo, zap.NewNop())

	got, err := m.FindCandidates(context.Background(), "eva")
	require.NoError(t, err)
	assert.Equal(t, want, got)
}
