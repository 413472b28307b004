package scrape

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ErrAllSourcesFailed is returned when no configured source yields content.
var ErrAllSourcesFailed = errors.New("failed to scrape any wiki sources")

// SourceResult is the per-source outcome of a harvest.
type SourceResult struct {
	Source   string `json:"source"`
	URL      string `json:"url"`
	Success  bool   `json:"success"`
	Markdown string `json:"-"`
	HTML     string `json:"-"`
}

// Harvester fans one fetch out per configured source and collects the
// results. A failing or slow source never aborts the others; each fetch is
// bounded by its own timeout.
type Harvester struct {
	fetcher          Fetcher
	sources          []Source
	perSourceTimeout time.Duration
	logger           *zap.Logger
}

// NewHarvester creates a harvester over the given fetcher and source list.
func NewHarvester(fetcher Fetcher, sources []Source, perSourceTimeout time.Duration, logger *zap.Logger) (*Harvester, error) {
	if len(sources) == 0 {
		return nil, fmt.Errorf("at least one source is required")
	}
	if perSourceTimeout == 0 {
		perSourceTimeout = 30 * time.Second
	}
	return &Harvester{
		fetcher:          fetcher,
		sources:          sources,
		perSourceTimeout: perSourceTimeout,
		logger:           logger.Named("harvester"),
	}, nil
}

// Harvest fetches content for workName from every configured source
// concurrently. The returned slice has one entry per source in configuration
// order. ErrAllSourcesFailed is returned iff every source failed.
func (h *Harvester) Harvest(ctx context.Context, workName string) ([]SourceResult, error) {
	results := make([]SourceResult, len(h.sources))

	var wg sync.WaitGroup
	for i, src := range h.sources {
		wg.Add(1)
		go func(i int, src Source) {
			defer wg.Done()
			results[i] = h.fetchOne(ctx, src, workName)
		}(i, src)
	}
	wg.Wait()

	succeeded := 0
	for _, r := range results {
		if r.Success {
			succeeded++
		}
	}
	h.logger.Info("harvest finished",
		zap.String("work_name", workName),
		zap.Int("sources", len(h.sources)),
		zap.Int("succeeded", succeeded))

	if succeeded == 0 {
		return results, ErrAllSourcesFailed
	}
	return results, nil
}

func (h *Harvester) fetchOne(ctx context.Context, src Source, workName string) SourceResult {
	url := src.URL(workName)
	result := SourceResult{Source: src.Name, URL: url}

	fetchCtx, cancel := context.WithTimeout(ctx, h.perSourceTimeout)
	defer cancel()

	page, err := h.fetcher.Fetch(fetchCtx, url)
	if err != nil {
		h.logger.Warn("source fetch failed",
			zap.String("source", src.Name),
			zap.String("url", url),
			zap.Error(err))
		return result
	}
	if page.Content() == "" {
		h.logger.Warn("source returned empty content",
			zap.String("source", src.Name),
			zap.String("url", url))
		return result
	}

	result.Success = true
	result.Markdown = page.Markdown
	result.HTML = page.HTML
	return result
}

// SuccessfulSources returns the names of sources that yielded content, in
// configuration order.
func SuccessfulSources(results []SourceResult) []string {
	names := make([]string, 0, len(results))
	for _, r := range results {
		if r.Success {
			names = append(names, r.Source)
		}
	}
	return names
}

// CombineContent concatenates successful harvest contents into one document
// with a header per source, truncated to budget runes. The prefix is kept;
// trailing detail is dropped.
func CombineContent(results []SourceResult, budget int) string {
	var b strings.Builder
	first := true
	for _, r := range results {
		if !r.Success {
			continue
		}
		content := r.Markdown
		if content == "" {
			content = r.HTML
		}
		if !first {
			b.WriteString("\n\n")
		}
		first = false
		b.WriteString("=== ")
		b.WriteString(r.Source)
		b.WriteString(" ===\n")
		b.WriteString(content)
	}

	combined := b.String()
	if budget <= 0 {
		return combined
	}
	runes := []rune(combined)
	if len(runes) <= budget {
		return combined
	}
	return string(runes[:budget])
}
