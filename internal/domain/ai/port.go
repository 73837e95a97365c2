package ai

import "context"

// Client is the port to the external LLM provider. Implementations own the
// network call, its timeouts and its error mapping; callers own retries.
type Client interface {
	// Analyze sends a contract-analysis prompt and returns the raw reply text.
	Analyze(ctx context.Context, prompt string) (string, error)
	// Answer sends a Q&A prompt and returns the raw reply text.
	Answer(ctx context.Context, prompt string) (string, error)
}
