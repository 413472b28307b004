package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/liushuangls/go-anthropic/v2"
	"go.uber.org/zap"
)

// AnthropicClient provides oracle access through the Anthropic Messages API,
// as an alternative to the default OpenAI-compatible provider.
type AnthropicClient struct {
	client *anthropic.Client
	model  string
	logger *zap.Logger
}

// NewAnthropicClient creates an Anthropic-backed oracle client.
func NewAnthropicClient(apiKey, model string, logger *zap.Logger) (*AnthropicClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("api key is required")
	}
	if model == "" {
		return nil, fmt.Errorf("model is required")
	}
	return &AnthropicClient{
		client: anthropic.NewClient(apiKey),
		model:  model,
		logger: logger.Named("oracle"),
	}, nil
}

// Complete sends a system+user prompt and returns the text completion.
func (c *AnthropicClient) Complete(ctx context.Context, prompt, systemMessage string, temperature float64, maxTokens int) (string, error) {
	if maxTokens <= 0 {
		maxTokens = 1000
	}
	temp := float32(temperature)

	start := time.Now()

	resp, err := c.client.CreateMessages(ctx, anthropic.MessagesRequest{
		Model:       anthropic.Model(c.model),
		System:      systemMessage,
		MaxTokens:   maxTokens,
		Temperature: &temp,
		Messages: []anthropic.Message{
			{Role: anthropic.RoleUser, Content: []anthropic.MessageContent{
				{Type: "text", Text: &prompt},
			}},
		},
	})
	if err != nil {
		c.logger.Error("oracle request failed",
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err))
		return "", ClassifyError(err)
	}

	var text string
	for _, block := range resp.Content {
		if block.Type == "text" && block.Text != nil {
			text = *block.Text
			break
		}
	}
	if text == "" {
		return "", NewError(ErrorTypeServer, "no text content in response", true, nil)
	}

	c.logger.Info("oracle request completed",
		zap.Duration("elapsed", time.Since(start)))

	return strings.TrimSpace(text), nil
}

// Model returns the configured model name.
func (c *AnthropicClient) Model() string {
	return c.model
}
