package ingest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/moedb/moedb-engine/pkg/llm"
	"github.com/moedb/moedb-engine/pkg/models"
)

func evaCandidates() []models.WorkCandidate {
	return []models.WorkCandidate{
		{ID: uuidFromByte(1), NameCN: strPtr("新世纪福音战士"), NameEN: strPtr("Neon Genesis Evangelion"), Type: models.WorkTypeAnime},
		{ID: uuidFromByte(2), NameEN: strPtr("Evangelion: 3.0+1.0"), Type: models.WorkTypeAnime},
	}
}

func verdictResponse(isDuplicate bool, matchedID string, confidence float64) string {
	id := "null"
	if matchedID != "" {
		id = fmt.Sprintf("%q", matchedID)
	}
	return fmt.Sprintf(`{
  "isDuplicate": %t,
  "matchedWorkId": %s,
  "confidence": %.2f,
  "reason": "same franchise entry",
  "suggestedNames": {"name_cn": "新世纪福音战士", "name_en": "Neon Genesis Evangelion", "name_jp": null},
  "type": "anime"
}`, isDuplicate, id, confidence)
}

func TestDisambiguateDuplicateVerdict(t *testing.T) {
	candidates := evaCandidates()
	oracle := &llm.MockOracle{
		CompleteFunc: func(ctx context.Context, prompt, system string, temperature float64, maxTokens int) (string, error) {
			assert.InDelta(t, 0.3, temperature, 1e-9)
			assert.Equal(t, 500, maxTokens)
			return verdictResponse(true, candidates[0].ID.String(), 0.92), nil
		},
	}
	d := NewDisambiguator(oracle, zap.NewNop())

	verdict, err := d.Disambiguate(context.Background(), "EVA", candidates)
	require.NoError(t, err)
	assert.True(t, verdict.IsDuplicate)
	require.NotNil(t, verdict.MatchedWorkID)
	assert.Equal(t, candidates[0].ID, *verdict.MatchedWorkID)
	assert.InDelta(t, 0.92, verdict.Confidence, 1e-9)
	assert.Equal(t, "新世纪福音战士", *verdict.SuggestedNames.CN)
}

func TestDisambiguatePromptCarriesCandidates(t *testing.T) {
	oracle := &llm.MockOracle{
		CompleteFunc: func(ctx context.Context, prompt, system string, temperature float64, maxTokens int) (string, error) {
			return verdictResponse(false, "", 0.1), nil
		},
	}
	d := NewDisambiguator(oracle, zap.NewNop())

	_, err := d.Disambiguate(context.Background(), "EVA", evaCandidates())
	require.NoError(t, err)
	assert.True(t, strings.Contains(oracle.LastPrompt, "Neon Genesis Evangelion"))
	assert.True(t, strings.Contains(oracle.LastPrompt, "EVA"))
}

func TestDisambiguateNoCandidatesNeverDuplicate(t *testing.T) {
	// Even an oracle insisting on a duplicate cannot make one without
	// candidates to match against.
	oracle := &llm.MockOracle{
		CompleteFunc: func(ctx context.Context, prompt, system string, temperature float64, maxTokens int) (string, error) {
			return verdictResponse(true, uuidFromByte(9).String(), 0.99), nil
		},
	}
	d := NewDisambiguator(oracle, zap.NewNop())

	verdict, err := d.Disambiguate(context.Background(), "completely new work", nil)
	require.NoError(t, err)
	assert.False(t, verdict.IsDuplicate)
	assert.Nil(t, verdict.MatchedWorkID)
}

func TestDisambiguateDropsHallucinatedMatchID(t *testing.T) {
	oracle := &llm.MockOracle{
		CompleteFunc: func(ctx context.Context, prompt, system string, temperature float64, maxTokens int) (string, error) {
			return verdictResponse(true, uuidFromByte(99).String(), 0.95), nil
		},
	}
	d := NewDisambiguator(oracle, zap.NewNop())

	verdict, err := d.Disambiguate(context.Background(), "EVA", evaCandidates())
	require.NoError(t, err)
	assert.False(t, verdict.IsDuplicate)
	assert.Nil(t, verdict.MatchedWorkID)
}

func TestDisambiguateFencedResponse(t *testing.T) {
	candidates := evaCandidates()
	oracle := &llm.MockOracle{
		CompleteFunc: func(ctx context.Context, prompt, system string, temperature float64, maxTokens int) (string, error) {
			return "```json\n" + verdictResponse(true, candidates[1].ID.String(), 0.85) + "\n```", nil
		},
	}
	d := NewDisambiguator(oracle, zap.NewNop())

	verdict, err := d.Disambiguate(context.Background(), "eva 3.0", candidates)
	require.NoError(t, err)
	assert.True(t, verdict.IsDuplicate)
	assert.Equal(t, candidates[1].ID, *verdict.MatchedWorkID)
}

func TestDisambiguateClampsConfidence(t *testing.T) {
	candidates := evaCandidates()
	oracle := &llm.MockOracle{
		CompleteFunc: func(ctx context.Context, prompt, system string, temperature float64, maxTokens int) (string, error) {
			return verdictResponse(true, candidates[0].ID.String(), 3.5), nil
		},
	}
	d := NewDisambiguator(oracle, zap.NewNop())

	verdict, err := d.Disambiguate(context.Background(), "EVA", candidates)
	require.NoError(t, err)
	assert.Equal(t, 1.0, verdict.Confidence)
}

func TestDisambiguateOracleFailure(t *testing.T) {
	oracleErr := llm.NewError(llm.ErrorTypeAuth, "invalid api key", false, errors.New("401"))
	oracle := &llm.MockOracle{
		CompleteFunc: func(ctx context.Context, prompt, system string, temperature float64, maxTokens int) (string, error) {
			return "", oracleErr
		},
	}
	d := NewDisambiguator(oracle, zap.NewNop())

	_, err := d.Disambiguate(context.Background(), "EVA", evaCandidates())
	require.Error(t, err)
	assert.Equal(t, 1, oracle.CompleteCalls, "auth errors should not be retried")
}

func TestDisambiguateUnparseableResponse(t *testing.T) {
	oracle := &llm.MockOracle{
		CompleteFunc: func(ctx context.Context, prompt, system string, temperature float64, maxTokens int) (string, error) {
			return "I could not determine whether this is a duplicate.", nil
		},
	}
	d := NewDisambiguator(oracle, zap.NewNop())

	_, err := d.Disambiguate(context.Background(), "EVA", evaCandidates())
	require.Error(t, err)
}
