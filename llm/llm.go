// Package llm holds the text-generation boundary used for area summaries.
// It is the only package that talks to an external AI service.
package llm

import "context"

// Generator produces text for a prompt, bounded by maxTokens. Any error is
// treated by callers as non-fatal.
type Generator interface {
	Generate(ctx context.Context, prompt string, maxTokens int) (string, error)
}

// GeneratorFunc adapts a plain function to Generator.
type GeneratorFunc func(ctx context.Context, prompt string, maxTokens int) (string, error)

func (f GeneratorFunc) Generate(ctx context.Context, prompt string, maxTokens int) (string, error) {
	return f(ctx, prompt, maxTokens)
}
