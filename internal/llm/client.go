package llm

import "context"

// Client defines the interface for LLM providers. Implementations map
// provider failures onto the shared taxonomy: transport failures unwrap to
// common.ErrModelUnavailable and provider error statuses to
// common.ErrModelRejected.
type Client interface {
	// Complete sends one system+user exchange and returns the raw text of
	// the model's reply.
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}
