package ingest

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/moedb/moedb-engine/pkg/apperrors"
	"github.com/moedb/moedb-engine/pkg/models"
	"github.com/moedb/moedb-engine/pkg/repositories"
	"github.com/moedb/moedb-engine/pkg/scrape"
)

// Harvester is the source-harvest capability the orchestrator depends on.
type Harvester interface {
	Harvest(ctx context.Context, workName string) ([]scrape.SourceResult, error)
}

// Config holds the orchestrator's policy knobs. Every threshold lives here
// as a named value rather than a literal at a call site.
type Config struct {
	// DuplicateConfidenceThreshold stops a submission as a duplicate when a
	// verdict's confidence strictly exceeds it.
	DuplicateConfidenceThreshold float64
	// HarvestCharBudget caps combined harvest content handed to extraction.
	HarvestCharBudget int
	// ClaimTTL bounds how long an unreleased ingest claim survives.
	ClaimTTL time.Duration
}

// DefaultConfig returns the documented pipeline policy.
func DefaultConfig() Config {
	return Config{
		DuplicateConfidenceThreshold: 0.7,
		HarvestCharBudget:            8000,
		ClaimTTL:                     10 * time.Minute,
	}
}

// IngestResult is the terminal outcome of one submission.
type IngestResult struct {
	// Duplicate is true when the pipeline halted at disambiguation because
	// the query confidently matched an existing work. No rows are created
	// on that path.
	Duplicate         bool         `json:"duplicate"`
	MatchedWorkID     *uuid.UUID   `json:"matchedWorkId,omitempty"`
	Verdict           *Verdict     `json:"verdict,omitempty"`
	Work              *models.Work `json:"work,omitempty"`
	CharactersCreated int          `json:"charactersCount"`
	SourcesUsed       []string     `json:"sources"`
}

// Orchestrator sequences matching, disambiguation, harvesting, extraction,
// and persistence into the end-to-end ingestion workflow. It exclusively
// owns the transition from ephemeral pipeline values to persisted catalog
// rows; the pipeline is stateless per invocation except for what it writes.
type Orchestrator struct {
	matcher       *Matcher
	disambiguator *Disambiguator
	harvester     Harvester
	extractor     *Extractor
	works         repositories.WorkRepository
	characters    repositories.CharacterRepository
	snapshots     repositories.SnapshotRepository
	claims        repositories.ClaimRepository
	cfg           Config
	logger        *zap.Logger
}

// NewOrchestrator wires the pipeline. All external capabilities (catalog,
// oracle, harvester) arrive injected so tests can substitute fakes.
func NewOrchestrator(
	matcher *Matcher,
	disambiguator *Disambiguator,
	harvester Harvester,
	extractor *Extractor,
	works repositories.WorkRepository,
	characters repositories.CharacterRepository,
	snapshots repositories.SnapshotRepository,
	claims repositories.ClaimRepository,
	cfg Config,
	logger *zap.Logger,
) *Orchestrator {
	return &Orchestrator{
		matcher:       matcher,
		disambiguator: disambiguator,
		harvester:     harvester,
		extractor:     extractor,
		works:         works,
		characters:    characters,
		snapshots:     snapshots,
		claims:        claims,
		cfg:           cfg,
		logger:        logger.Named("orchestrator"),
	}
}

// IngestWork runs one submission through the pipeline state machine:
//
//	Matching -> Disambiguating (if candidates) -> Claiming ->
//	Harvesting -> Extracting -> Persisting
//
// Any stage failure ends the submission; the caller's remedy is to resubmit,
// which redoes Matching from scratch. There are no inter-stage retries.
func (o *Orchestrator) IngestWork(ctx context.Context, query, requester string) (*IngestResult, error) {
	query = strings.TrimSpace(query)
	if query == "" || requester == "" {
		return nil, apperrors.ErrInvalidRequest
	}

	log := o.logger.With(zap.String("query", query), zap.String("requester", requester))

	candidates, err := o.matcher.FindCandidates(ctx, query)
	if err != nil {
		return nil, stageErr(StageMatching, err)
	}

	var verdict *Verdict
	if len(candidates) > 0 {
		verdict, err = o.disambiguator.Disambiguate(ctx, query, candidates)
		if err != nil {
			// Inconclusive is not "not a duplicate": the submission fails
			// rather than risking a duplicate row.
			return nil, stageErr(StageDisambiguating, err)
		}
		if verdict.IsDuplicate && verdict.Confidence > o.cfg.DuplicateConfidenceThreshold {
			log.Info("submission rejected as duplicate",
				zap.Stringer("matched_work_id", verdict.MatchedWorkID),
				zap.Float64("confidence", verdict.Confidence))
			return &IngestResult{
				Duplicate:     true,
				MatchedWorkID: verdict.MatchedWorkID,
				Verdict:       verdict,
			}, nil
		}
	}

	// Claim the normalized name before harvesting so a concurrent identical
	// submission cannot race past Matching into a second Persisting.
	normalized := models.NormalizeWorkName(query)
	acquired, err := o.claims.TryAcquire(ctx, normalized, requester, o.cfg.ClaimTTL)
	if err != nil {
		return nil, stageErr(StageClaiming, err)
	}
	if !acquired {
		return nil, apperrors.ErrClaimHeld
	}
	defer func() {
		releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if rerr := o.claims.Release(releaseCtx, normalized, requester); rerr != nil {
			log.Warn("failed to release ingest claim", zap.Error(rerr))
		}
	}()

	results, err := o.harvester.Harvest(ctx, query)
	if err != nil {
		return nil, stageErr(StageHarvesting, err)
	}
	o.recordSnapshots(ctx, results, requester, log)

	combined := scrape.CombineContent(results, o.cfg.HarvestCharBudget)
	extraction, err := o.extractor.Extract(ctx, query, combined)
	if err != nil {
		return nil, stageErr(StageExtracting, err)
	}

	work := o.buildWork(query, requester, verdict, extraction, results)
	if err := o.works.Create(ctx, work); err != nil {
		return nil, stageErr(StagePersisting, err)
	}

	characters := buildCharacters(work.ID, extraction.Characters)
	created := 0
	if len(characters) > 0 {
		var cerr error
		created, cerr = o.characters.CreateBatch(ctx, characters)
		if cerr != nil {
			// Character insert failures are non-fatal: the work stands and
			// the count reflects what actually landed.
			log.Warn("some character inserts failed",
				zap.Int("created", created),
				zap.Int("attempted", len(characters)),
				zap.Error(cerr))
		}
	}

	log.Info("work ingested",
		zap.Stringer("work_id", work.ID),
		zap.Int("characters_created", created),
		zap.Strings("sources", scrape.SuccessfulSources(results)))

	return &IngestResult{
		Work:              work,
		CharactersCreated: created,
		SourcesUsed:       scrape.SuccessfulSources(results),
	}, nil
}

// buildWork assembles the work row from extraction output, backfilling names
// from the disambiguation verdict and the raw query when the oracle came up
// empty, and source URLs from the actual harvest when the oracle omitted
// them.
func (o *Orchestrator) buildWork(query, requester string, verdict *Verdict, extraction *Extraction, results []scrape.SourceResult) *models.Work {
	names := extraction.Work.Names
	if names.CN == nil && names.EN == nil && names.JP == nil {
		if verdict != nil {
			names = verdict.SuggestedNames
		}
		if names.CN == nil && names.EN == nil && names.JP == nil {
			q := query
			names.CN = &q
		}
	}

	sourceURLs := extraction.SourceURLs
	if len(sourceURLs) == 0 {
		sourceURLs = make(map[string]string)
		for _, r := range results {
			if r.Success {
				sourceURLs[r.Source] = r.URL
			}
		}
	}

	return &models.Work{
		NameCN:     names.CN,
		NameEN:     names.EN,
		NameJP:     names.JP,
		Type:       extraction.Work.Type,
		SummaryMD:  extraction.Work.SummaryMD,
		SourceURLs: sourceURLs,
		CreatedBy:  requester,
	}
}

func buildCharacters(workID uuid.UUID, extracted []ExtractedCharacter) []*models.Character {
	characters := make([]*models.Character, 0, len(extracted))
	for _, c := range extracted {
		// A roster entry with no name at all is noise, not a character.
		if c.Names.CN == nil && c.Names.EN == nil && c.Names.JP == nil {
			continue
		}
		characters = append(characters, &models.Character{
			WorkID:     workID,
			NameCN:     c.Names.CN,
			NameEN:     c.Names.EN,
			NameJP:     c.Names.JP,
			AvatarURL:  c.AvatarURL,
			SourceLink: c.SourceLink,
		})
	}
	return characters
}

// recordSnapshots preserves successful harvest content for provenance.
// Failures here never fail the submission.
func (o *Orchestrator) recordSnapshots(ctx context.Context, results []scrape.SourceResult, requester string, log *zap.Logger) {
	if o.snapshots == nil {
		return
	}
	for _, r := range results {
		if !r.Success {
			continue
		}
		snapshot := &models.SourceSnapshot{
			URL:       r.URL,
			FetchedBy: &requester,
			RawMD:     r.Markdown,
		}
		if r.HTML != "" {
			html := r.HTML
			snapshot.RawHTML = &html
		}
		if err := o.snapshots.Record(ctx, snapshot); err != nil {
			log.Warn("failed to record source snapshot",
				zap.String("url", r.URL),
				zap.Error(err))
		}
	}
}
