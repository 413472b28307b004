package ingest

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/moedb/moedb-engine/pkg/llm"
	"github.com/moedb/moedb-engine/pkg/prompts"
	"github.com/moedb/moedb-engine/pkg/retry"
)

const (
	extractionTemperature = 0.2
	extractionMaxTokens   = 2000
)

// Extractor synthesizes structured work metadata and a character roster from
// harvested encyclopedia content. Extraction is all-or-nothing per call: an
// unparseable oracle response yields an error and nothing is persisted from
// it.
type Extractor struct {
	oracle llm.Oracle
	logger *zap.Logger
}

// NewExtractor creates an extractor over an oracle.
func NewExtractor(oracle llm.Oracle, logger *zap.Logger) *Extractor {
	return &Extractor{oracle: oracle, logger: logger.Named("extractor")}
}

// Extract asks the oracle to pull work info and characters for workName from
// content. The content is expected to already be truncated to the pipeline's
// character budget. Fields the oracle cannot determine come back nil, never
// as fabricated placeholders.
func (e *Extractor) Extract(ctx context.Context, workName, content string) (*Extraction, error) {
	prompt := prompts.BuildExtractionPrompt(workName, content)

	response, err := retry.DoWithResultIfRetryable(ctx, nil, func() (string, error) {
		return e.oracle.Complete(ctx, prompt, prompts.ExtractionSystemMessage,
			extractionTemperature, extractionMaxTokens)
	})
	if err != nil {
		return nil, fmt.Errorf("oracle extraction: %w", err)
	}

	payload, err := llm.ParseJSONResponse[extractionPayload](response)
	if err != nil {
		return nil, fmt.Errorf("parse extraction output: %w", err)
	}
	extraction := payload.toExtraction()

	e.logger.Info("extraction completed",
		zap.String("work_name", workName),
		zap.Int("characters", len(extraction.Characters)),
		zap.Int("source_urls", len(extraction.SourceURLs)))

	return extraction, nil
}
