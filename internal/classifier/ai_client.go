package classifier

import "context"

// CompletionClient is the surface of the completion model the batch
// classifier needs. The real implementation is GeminiClient; tests use fakes.
type CompletionClient interface {
	// Complete sends a system instruction and user prompt and returns the
	// raw text of the model's response.
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}
