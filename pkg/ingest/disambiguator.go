package ingest

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/moedb/moedb-engine/pkg/llm"
	"github.com/moedb/moedb-engine/pkg/models"
	"github.com/moedb/moedb-engine/pkg/prompts"
	"github.com/moedb/moedb-engine/pkg/retry"
)

const (
	disambiguationTemperature = 0.3
	disambiguationMaxTokens   = 500
)

// Disambiguator asks the oracle whether a query string denotes the same
// underlying work as any catalog candidate, and what canonical names and
// type to use going forward.
type Disambiguator struct {
	oracle llm.Oracle
	logger *zap.Logger
}

// NewDisambiguator creates a disambiguator over an oracle.
func NewDisambiguator(oracle llm.Oracle, logger *zap.Logger) *Disambiguator {
	return &Disambiguator{oracle: oracle, logger: logger.Named("disambiguator")}
}

// Disambiguate produces a verdict for the query against 0-10 candidates. An
// empty candidate list is legal and yields a trivially non-duplicate verdict
// while still collecting the oracle's suggested canonical names. The verdict
// reports calibrated confidence only; what confidence counts as "duplicate"
// is the orchestrator's policy.
func (d *Disambiguator) Disambiguate(ctx context.Context, query string, candidates []models.WorkCandidate) (*Verdict, error) {
	prompt := prompts.BuildDisambiguationPrompt(query, candidates)

	response, err := retry.DoWithResultIfRetryable(ctx, nil, func() (string, error) {
		return d.oracle.Complete(ctx, prompt, prompts.DisambiguationSystemMessage,
			disambiguationTemperature, disambiguationMaxTokens)
	})
	if err != nil {
		return nil, fmt.Errorf("oracle disambiguation: %w", err)
	}

	payload, err := llm.ParseJSONResponse[verdictPayload](response)
	if err != nil {
		return nil, fmt.Errorf("parse disambiguation verdict: %w", err)
	}
	verdict := payload.toVerdict()

	// No candidates means no basis for a duplicate claim, whatever the
	// oracle said.
	if len(candidates) == 0 {
		verdict.IsDuplicate = false
		verdict.MatchedWorkID = nil
	}

	// A duplicate claim must point at a real candidate; anything else is a
	// hallucinated id and the claim is dropped.
	if verdict.IsDuplicate && !matchesCandidate(verdict.MatchedWorkID, candidates) {
		d.logger.Warn("verdict matched id not in candidate set, dropping duplicate claim",
			zap.String("query", query))
		verdict.IsDuplicate = false
		verdict.MatchedWorkID = nil
	}

	d.logger.Info("disambiguation verdict",
		zap.String("query", query),
		zap.Bool("is_duplicate", verdict.IsDuplicate),
		zap.Float64("confidence", verdict.Confidence))

	return verdict, nil
}

func matchesCandidate(id *uuid.UUID, candidates []models.WorkCandidate) bool {
	if id == nil {
		return false
	}
	for _, c := range candidates {
		if c.ID == *id {
			return true
		}
	}
	return false
}
