package llm

import "context"

// Client is a minimal LLM interface to allow pluggable providers.
type Client interface {
	// SectionTitle proposes a short title for a document section.
	SectionTitle(ctx context.Context, heading, body string) (string, error)
	Answer(ctx context.Context, question, context string) (string, float32, error)
}
