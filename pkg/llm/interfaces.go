// Package llm provides access to the text-generation oracle consulted for
// disambiguation and extraction judgments.
package llm

import "context"

// Oracle is the chat-completion-style interface the ingestion pipeline
// depends on. Use this interface for dependency injection to enable mocking
// in tests.
type Oracle interface {
	// Complete sends a system+user prompt and returns the raw text
	// completion, which is expected to contain a JSON object.
	Complete(ctx context.Context, prompt, systemMessage string, temperature float64, maxTokens int) (string, error)

	// Model returns the configured model name.
	Model() string
}

// Compile-time interface checks.
var (
	_ Oracle = (*Client)(nil)
	_ Oracle = (*AnthropicClient)(nil)
	_ Oracle = (*MockOracle)(nil)
)
