package nlu

import (
	"context"
	log "log/slog"

	"voxroute/internal/history"
	"voxroute/internal/llm"
)

type Result struct {
	Intent   history.Intent `json:"intent"`
	Query    string         `json:"query,omitempty"` // enhanced retrieval query, empty off the rag path
	Response string         `json:"response"`
}

type Options struct {
	Org        Org
	Heuristics Heuristics
	Retrieval  llm.RetrievalConfig
}

func DefaultOptions() Options {
	return Options{
		Org:        DefaultOrg(),
		Heuristics: DefaultHeuristics(),
		Retrieval:  DefaultRetrieval(),
	}
}

// Router is the per-utterance entry point: classify, record, answer.
type Router struct {
	classifier *Classifier
	enhancer   *Enhancer
	greeting   *GreetingHandler
	retrieval  *RetrievalHandler
	assistant  *AssistantHandler
}

func NewRouter(gen llm.Generator, rag llm.Retriever, opts Options) *Router {
	return &Router{
		classifier: NewClassifier(gen, opts.Org),
		enhancer:   NewEnhancer(opts.Heuristics, opts.Org),
		greeting:   NewGreetingHandler(gen, opts.Org),
		retrieval: NewRetrievalHandler(rag, opts.Retrieval, opts.Org,
			NewCleaner(opts.Heuristics.MetaPhrases, opts.Heuristics.MinResponseChars)),
		assistant: NewAssistantHandler(gen, opts.Org),
	}
}

// Route appends the classified user turn to conv and returns the answer.
// The assistant turn is left for the caller to append.
func (r *Router) Route(ctx context.Context, message string, conv *history.Conversation) Result {
	prior := conv.Turns()

	intent := r.classifier.Classify(ctx, message, prior)
	conv.Append(history.UserTurn(message, intent))

	res := Result{Intent: intent}
	switch intent {
	case history.IntentGreetings:
		res.Response = r.greeting.Handle(ctx, message)
	case history.IntentRAG:
		e := r.enhancer.Enhance(message, prior)
		log.Info("Enhanced query", "query", e.Query, "rule", e.Rule, "related", e.Related)

		res.Query = e.Query
		res.Response = r.retrieval.Handle(ctx, e)
	default:
		res.Response = r.assistant.Handle(ctx, message)
	}

	return res
}
