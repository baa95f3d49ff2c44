// Package llm holds the generative and retrieval-augmented backends the
// router talks to.
package llm

import "context"

// FallbackReply is what Invoke returns when the backend call fails.
const FallbackReply = "I'm having trouble thinking right now."

type Params struct {
	MaxTokens   int
	Temperature float64
	TopP        float64
}

// Generator produces text from a system and a user prompt.
// Invoke never fails: backend errors are logged and FallbackReply is returned.
type Generator interface {
	Invoke(ctx context.Context, system, user string, p Params) string
}

// SearchSemantic is the only search mode the retrieval backend runs.
const SearchSemantic = "semantic"

type RetrievalConfig struct {
	Results        int
	SearchType     string
	ScoreThreshold float64
	Generation     Params
}

// Retriever looks up passages for query and generates an answer from
// template, where $search_results$ and $query$ are substituted.
type Retriever interface {
	RetrieveAndGenerate(ctx context.Context, query, template string, cfg RetrievalConfig) (string, error)
}
