package scrape

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Page is the rendered content Firecrawl returns for a URL.
type Page struct {
	Markdown string `json:"markdown"`
	HTML     string `json:"html"`
}

// Content returns markdown if present, falling back to HTML.
func (p *Page) Content() string {
	if p.Markdown != "" {
		return p.Markdown
	}
	return p.HTML
}

// Fetcher is the web-content-fetch capability the harvester depends on.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*Page, error)
}

// Client calls the Firecrawl scrape API. Each request asks for rendered
// markdown and HTML of the page's main content, with a content-settle wait.
type Client struct {
	endpoint      string
	apiKey        string
	waitForMillis int
	httpClient    *http.Client
	logger        *zap.Logger
}

// ClientConfig holds Firecrawl client configuration.
type ClientConfig struct {
	Endpoint      string // Base URL, e.g. "https://api.firecrawl.dev/v1"
	APIKey        string
	WaitForMillis int           // Content-settle budget passed to the API
	Timeout       time.Duration // Per-request HTTP timeout
}

// NewClient creates a Firecrawl client.
func NewClient(cfg *ClientConfig, logger *zap.Logger) (*Client, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("endpoint is required")
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("api key is required")
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	waitFor := cfg.WaitForMillis
	if waitFor == 0 {
		waitFor = 2000
	}

	return &Client{
		endpoint:      strings.TrimSuffix(cfg.Endpoint, "/"),
		apiKey:        cfg.APIKey,
		waitForMillis: waitFor,
		httpClient:    &http.Client{Timeout: timeout},
		logger:        logger.Named("firecrawl"),
	}, nil
}

type scrapeRequest struct {
	URL             string   `json:"url"`
	Formats         []string `json:"formats"`
	OnlyMainContent bool     `json:"onlyMainContent"`
	WaitFor         int      `json:"waitFor"`
}

type scrapeResponse struct {
	Success bool   `json:"success"`
	Data    *Page  `json:"data"`
	Error   string `json:"error"`
}

// Fetch retrieves rendered content for a URL. Non-200 responses and API-level
// failures are returned as errors; the harvester contains them per source.
func (c *Client) Fetch(ctx context.Context, url string) (*Page, error) {
	body, err := json.Marshal(scrapeRequest{
		URL:             url,
		Formats:         []string{"markdown", "html"},
		OnlyMainContent: true,
		WaitFor:         c.waitForMillis,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal scrape request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"/scrape", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build scrape request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("scrape %s: %w", url, err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		return nil, fmt.Errorf("read scrape response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		c.logger.Debug("scrape failed",
			zap.String("url", url),
			zap.Int("status", resp.StatusCode),
			zap.Duration("elapsed", time.Since(start)))
		return nil, fmt.Errorf("scrape %s: status %d", url, resp.StatusCode)
	}

	var parsed scrapeResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("decode scrape response: %w", err)
	}
	if !parsed.Success || parsed.Data == nil {
		return nil, fmt.Errorf("scrape %s: %s", url, nonEmpty(parsed.Error, "no content returned"))
	}

	c.logger.Debug("scrape completed",
		zap.String("url", url),
		zap.Int("markdown_len", len(parsed.Data.Markdown)),
		zap.Duration("elapsed", time.Since(start)))

	return parsed.Data, nil
}

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}
