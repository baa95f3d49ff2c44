package nlu

import (
	"strings"

	"voxroute/internal/history"
	"voxroute/pkg/util"
)

// Rule names the branch of the enhancement decision that produced a query.
type Rule string

const (
	RuleMerge      Rule = "merge"
	RuleBrand      Rule = "brand"
	RuleShortBrand Rule = "short_brand"
	RuleNone       Rule = "none"
)

type Enhancement struct {
	Query   string // sent to the retrieval backend
	Context string // conversation block folded into the prompt template, may be empty
	Related bool
	Anchor  string // normalized earlier query the message was merged with
	Rule    Rule
}

// Enhancer rewrites retrieval-bound follow-ups into self-contained queries.
type Enhancer struct {
	h    Heuristics
	org  Org
	norm *Normalizer
}

func NewEnhancer(h Heuristics, org Org) *Enhancer {
	return &Enhancer{
		h:    h,
		org:  org,
		norm: NewNormalizer(h.Corrections),
	}
}

// Enhance builds the retrieval query for message. prior holds the turns that
// came before message; the message itself must not be part of it.
func (e *Enhancer) Enhance(message string, prior []history.Turn) Enhancement {
	normalized := e.norm.Normalize(message)

	vague := util.WordCount(normalized) <= e.h.ShortQueryWords || util.HasWord(normalized, e.h.VagueWords)
	anchor, related := e.related(normalized, prior)
	branded := strings.Contains(normalized, e.org.Keyword())

	out := Enhancement{Related: related, Anchor: anchor}
	switch {
	case vague && related:
		out.Query, out.Rule = anchor+" "+normalized, RuleMerge
	case vague && !branded:
		out.Query, out.Rule = e.org.Name+" "+normalized, RuleBrand
	case !branded && util.WordCount(normalized) < e.h.BrandQueryWords:
		out.Query, out.Rule = e.org.ShortName+" "+normalized, RuleShortBrand
	default:
		out.Query, out.Rule = normalized, RuleNone
	}
	out.Query = strings.TrimSpace(out.Query)

	if related {
		out.Context = conversationContext(prior, message)
	}

	return out
}

// related finds the latest knowledge-base question the message follows up on.
func (e *Enhancer) related(normalized string, prior []history.Turn) (string, bool) {
	if util.ContainsAny(normalized, e.h.FreshTopicMarkers) {
		return "", false
	}

	for i := len(prior) - 1; i >= 0; i-- {
		t := prior[i]
		if t.Role != history.RoleUser || t.Intent != history.IntentRAG {
			continue
		}

		candidate := e.norm.Normalize(t.Content)
		if util.WordCount(candidate) < e.h.MinAnchorWords {
			continue
		}

		c, ok := e.h.cluster(candidate)
		if !ok {
			continue
		}
		if util.ContainsAny(normalized, c.Keywords) && util.ContainsAny(candidate, c.Keywords) {
			return candidate, true
		}
	}

	return "", false
}

func conversationContext(prior []history.Turn, message string) string {
	var sb strings.Builder
	sb.WriteString("Previous conversation:\n")
	for _, t := range history.Tail(prior, 2) {
		sb.WriteString(t.Role.Title())
		sb.WriteString(": ")
		sb.WriteString(t.Content)
		sb.WriteString("\n")
	}
	sb.WriteString("\nCurrent question: ")
	sb.WriteString(message)
	sb.WriteString("\n\n")
	return sb.String()
}
