package history

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Title renders the role the way prompts show it ("User", "Assistant").
func (r Role) Title() string {
	s := string(r)
	if s == "" {
		return "Unknown"
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// Intent is the label that decides which response strategy handles a user turn.
type Intent string

const (
	IntentGreetings Intent = "greetings"
	IntentRAG       Intent = "rag"
	IntentAssistant Intent = "smart_ai_assistant"
)

func (i Intent) Valid() bool {
	switch i {
	case IntentGreetings, IntentRAG, IntentAssistant:
		return true
	}
	return false
}

// ParseIntent maps any label onto the enumeration.
// Anything unknown becomes IntentAssistant.
func ParseIntent(s string) Intent {
	i := Intent(s)
	if !i.Valid() {
		return IntentAssistant
	}
	return i
}

var ErrInvalidTurn = errors.New("invalid turn")

// Turn is one recorded message of a conversation.
// Intent is set only on user turns that went through the classifier.
type Turn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
	Intent  Intent `json:"intent,omitempty"`
}

func NewTurn(role Role, content string, intent Intent) (Turn, error) {
	switch role {
	case RoleUser:
	case RoleAssistant:
		if intent != "" {
			return Turn{}, fmt.Errorf("%w: assistant turn tagged with intent %q", ErrInvalidTurn, intent)
		}
	default:
		return Turn{}, fmt.Errorf("%w: unknown role %q", ErrInvalidTurn, role)
	}

	if intent != "" && !intent.Valid() {
		return Turn{}, fmt.Errorf("%w: unknown intent %q", ErrInvalidTurn, intent)
	}

	return Turn{Role: role, Content: content, Intent: intent}, nil
}

// UserTurn builds a user turn. An out-of-enumeration intent is coerced.
func UserTurn(content string, intent Intent) Turn {
	if intent != "" {
		intent = ParseIntent(string(intent))
	}
	return Turn{Role: RoleUser, Content: content, Intent: intent}
}

func AssistantTurn(content string) Turn {
	return Turn{Role: RoleAssistant, Content: content}
}

func (t Turn) Tagged() bool {
	return t.Role == RoleUser && t.Intent != ""
}

// Record is the persisted form of a turn.
type Record struct {
	ID        string    `json:"id"`
	SessionID string    `json:"session_id"`
	Role      Role      `json:"role"`
	Content   string    `json:"text"`
	Intent    Intent    `json:"intent,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

func (r Record) Turn() (Turn, error) {
	return NewTurn(r.Role, r.Content, r.Intent)
}
