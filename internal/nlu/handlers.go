package nlu

import (
	"context"
	"fmt"
	log "log/slog"

	"voxroute/internal/llm"
)

// RetrievalFailedReply is spoken when the knowledge base cannot be reached.
const RetrievalFailedReply = "I couldn't retrieve information right now. Please try again."

var (
	greetingParams  = llm.Params{MaxTokens: 200, Temperature: 0.3}
	assistantParams = llm.Params{MaxTokens: 1024, Temperature: 0.3}
)

// DefaultRetrieval is the knowledge-base configuration used for grounded answers.
func DefaultRetrieval() llm.RetrievalConfig {
	return llm.RetrievalConfig{
		Results:    20,
		SearchType: llm.SearchSemantic,
		Generation: llm.Params{MaxTokens: 1500, Temperature: 0.1, TopP: 0.9},
	}
}

type GreetingHandler struct {
	gen    llm.Generator
	system string
}

func NewGreetingHandler(gen llm.Generator, org Org) *GreetingHandler {
	return &GreetingHandler{gen: gen, system: fmt.Sprintf(greetingPrompt, org.Name, org.ShortName)}
}

func (h *GreetingHandler) Handle(ctx context.Context, message string) string {
	return h.gen.Invoke(ctx, h.system, fmt.Sprintf(greetingUserPrompt, message), greetingParams)
}

type AssistantHandler struct {
	gen    llm.Generator
	system string
}

func NewAssistantHandler(gen llm.Generator, org Org) *AssistantHandler {
	return &AssistantHandler{gen: gen, system: fmt.Sprintf(assistantPrompt, org.Name, org.ShortName)}
}

func (h *AssistantHandler) Handle(ctx context.Context, message string) string {
	return h.gen.Invoke(ctx, h.system, fmt.Sprintf(assistantUserPrompt, message), assistantParams)
}

// RetrievalHandler answers from the knowledge base.
type RetrievalHandler struct {
	rag      llm.Retriever
	cfg      llm.RetrievalConfig
	template string
	clean    *Cleaner
}

func NewRetrievalHandler(rag llm.Retriever, cfg llm.RetrievalConfig, org Org, clean *Cleaner) *RetrievalHandler {
	return &RetrievalHandler{
		rag:      rag,
		cfg:      cfg,
		template: fmt.Sprintf(groundingPrompt, org.Name, org.ShortName),
		clean:    clean,
	}
}

func (h *RetrievalHandler) Handle(ctx context.Context, e Enhancement) string {
	answer, err := h.rag.RetrieveAndGenerate(ctx, e.Query, e.Context+h.template, h.cfg)
	if err != nil {
		log.Error("Retrieval failed", "query", e.Query, "err", err)
		return RetrievalFailedReply
	}

	cleaned := h.clean.Clean(answer)
	log.Debug("Retrieval answer", "query", e.Query, "raw", answer, "cleaned", cleaned)

	return cleaned
}
