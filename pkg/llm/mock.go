package llm

import "context"

// MockOracle is a configurable mock for testing oracle-backed components.
// Set the function field to control behavior in tests.
type MockOracle struct {
	// CompleteFunc is called when Complete is invoked. If nil, Complete
	// returns an empty string and nil error.
	CompleteFunc func(ctx context.Context, prompt, systemMessage string, temperature float64, maxTokens int) (string, error)

	// ModelName is returned by Model. Defaults to "mock-model".
	ModelName string

	// CompleteCalls counts invocations for verification.
	CompleteCalls int

	// LastPrompt and LastSystemMessage record the most recent call's inputs.
	LastPrompt        string
	LastSystemMessage string
}

// Complete implements Oracle.
func (m *MockOracle) Complete(ctx context.Context, prompt, systemMessage string, temperature float64, maxTokens int) (string, error) {
	m.CompleteCalls++
	m.LastPrompt = prompt
	m.LastSystemMessage = systemMessage
	if m.CompleteFunc != nil {
		return m.CompleteFunc(ctx, prompt, systemMessage, temperature, maxTokens)
	}
	return "", nil
}

// Model implements Oracle.
func (m *MockOracle) Model() string {
	if m.ModelName == "" {
		return "mock-model"
	}
	return m.ModelName
}
