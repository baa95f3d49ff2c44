package nlu

import (
	"context"
	"fmt"
	log "log/slog"
	"regexp"
	"strings"

	"voxroute/internal/history"
	"voxroute/internal/llm"
)

const (
	contextTurns    = 6
	minContextTurns = 2
)

var (
	labelPrefixRe = regexp.MustCompile(`^(intent:|output:|label:|classification:|answer:)\s*`)
	labelPunctRe  = regexp.MustCompile("[.,!?;:'\"*`]")
)

var classifyParams = llm.Params{MaxTokens: 50, Temperature: 0}

// Classifier labels an utterance with one of the three intents, taking the
// recent conversation into account so that short follow-ups keep their topic.
type Classifier struct {
	gen    llm.Generator
	system string
}

func NewClassifier(gen llm.Generator, org Org) *Classifier {
	return &Classifier{
		gen:    gen,
		system: fmt.Sprintf(classifierPrompt, org.Name, org.ShortName),
	}
}

// Classify never fails: anything the backend says that is not a label,
// including the fallback sentence of a failed call, becomes IntentAssistant.
func (c *Classifier) Classify(ctx context.Context, message string, recent []history.Turn) history.Intent {
	prompt := BuildClassifierContext(recent) + fmt.Sprintf(classifierUserPrompt, message)

	raw := c.gen.Invoke(ctx, c.system, prompt, classifyParams)
	intent := ParseLabel(raw)

	log.Info("Classified intent", "intent", intent, "raw", raw, "history", len(recent))
	return intent
}

// BuildClassifierContext renders the last turns for the classification prompt.
// It is empty until the conversation holds at least two turns.
func BuildClassifierContext(turns []history.Turn) string {
	if len(turns) < minContextTurns {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("=== RECENT CONVERSATION ===\n")
	for _, t := range history.Tail(turns, contextTurns) {
		sb.WriteString(t.Role.Title())
		if t.Tagged() {
			fmt.Fprintf(&sb, " [Previous Intent: %s]", t.Intent)
		}
		sb.WriteString(": ")
		sb.WriteString(t.Content)
		sb.WriteString("\n")
	}
	sb.WriteString("===========================\n\n")

	return sb.String()
}

// ParseLabel turns raw backend output into an intent.
func ParseLabel(raw string) history.Intent {
	s := strings.ToLower(strings.TrimSpace(raw))
	s = strings.TrimSpace(labelPrefixRe.ReplaceAllString(s, ""))
	s = labelPunctRe.ReplaceAllString(s, "")

	fields := strings.Fields(s)
	if len(fields) == 0 {
		return history.IntentAssistant
	}

	label := strings.ReplaceAll(fields[0], "-", "_")
	return history.ParseIntent(label)
}
