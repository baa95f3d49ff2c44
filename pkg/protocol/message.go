package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
)

type Kind string

const (
	// KindTranscript carries one finalized user utterance into the router.
	KindTranscript Kind = "transcript"
	// KindSpeak asks the voice session to synthesize a reply.
	KindSpeak Kind = "speak"
)

// Broadcast addresses every shard on the bus.
const Broadcast = "ALL"

// Message is one JSON frame on the bus.
type Message struct {
	From               string `json:"from"`
	To                 string `json:"to"`
	Kind               Kind   `json:"kind"`
	Session            string `json:"session"`
	Content            string `json:"content"`
	AllowInterruptions bool   `json:"allow_interruptions,omitempty"`
}

var tokenRe = regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)

func isToken(s string) bool {
	return tokenRe.MatchString(s)
}

func (m *Message) Validate() error {
	if !isToken(m.To) {
		return fmt.Errorf("invalid TO token: %q", m.To)
	}
	if !isToken(m.From) {
		return fmt.Errorf("invalid FROM token: %q", m.From)
	}

	switch m.Kind {
	case KindTranscript, KindSpeak:
	default:
		return fmt.Errorf("unknown kind: %q", m.Kind)
	}

	if m.Session == "" {
		return errors.New("missing session")
	}
	return nil
}

func Parse(data []byte) (*Message, error) {
	var m Message
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decode message: %w", err)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

func (m *Message) Encode() ([]byte, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return json.Marshal(m)
}

func (m *Message) String() string {
	return fmt.Sprintf("%s->%s %s[%s] %q", m.From, m.To, m.Kind, m.Session, m.Content)
}
