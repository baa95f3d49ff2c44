package nlu

import (
	"context"
	"strings"
	"sync"

	"voxroute/internal/history"
	"voxroute/internal/llm"
)

type genCall struct {
	system string
	user   string
	params llm.Params
}

// fakeGen answers classification prompts with label and everything else with reply.
type fakeGen struct {
	mu    sync.Mutex
	label string
	reply string
	calls []genCall
}

func (g *fakeGen) Invoke(_ context.Context, system, user string, p llm.Params) string {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.calls = append(g.calls, genCall{system: system, user: user, params: p})
	if strings.Contains(system, "intent classifier") {
		return g.label
	}
	return g.reply
}

func (g *fakeGen) call(i int) genCall {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls[i]
}

type fakeRetriever struct {
	answer   string
	err      error
	query    string
	template string
	cfg      llm.RetrievalConfig
	called   int
}

func (r *fakeRetriever) RetrieveAndGenerate(_ context.Context, query, template string, cfg llm.RetrievalConfig) (string, error) {
	r.called++
	r.query, r.template, r.cfg = query, template, cfg
	return r.answer, r.err
}

func officeHistory() []history.Turn {
	return []history.Turn{
		history.UserTurn("Does Sparkout have an office in Chennai?", history.IntentRAG),
		history.AssistantTurn("Yes, we have an office in Chennai."),
	}
}
