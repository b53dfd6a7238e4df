package memory

import "context"

// Provider contracts for the external AI surface. Every implementation wraps
// its failures in errors.ErrProviderUnavailable; the retrieval and write
// paths degrade through documented fallbacks instead of failing the request.

// Embedder turns text into a fixed-length vector. Dimensionality must be
// constant across the store.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Extractor pulls structured knowledge out of one question/answer pair.
// A malformed provider response is a provider failure, never a silent empty
// extraction.
type Extractor interface {
	Extract(ctx context.Context, question, answer string, scope Scope, conversationContext string) (*KnowledgeExtraction, error)
}

// TermExpander widens a query into related search terms for the graph
// channel.
type TermExpander interface {
	Expand(ctx context.Context, query string, scopeType ScopeType) ([]string, error)
}

// Summarizer compresses ranked candidates into a bounded passage.
type Summarizer interface {
	Synthesize(ctx context.Context, candidates []Candidate, query string, maxLength int) (string, error)
}
