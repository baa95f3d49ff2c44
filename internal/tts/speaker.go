package tts

import (
	"context"
	"fmt"
	log "log/slog"

	"voxroute/pkg/protocol"
)

// Speech is one reply handed to the voice session for synthesis.
type Speech struct {
	Session            string
	To                 string // voice agent shard that owns the session
	Text               string
	AllowInterruptions bool
}

type Speaker interface {
	Say(ctx context.Context, s Speech) error
}

type Transmitter interface {
	Transmit(m protocol.Message) error
}

// BusSpeaker sends replies back over the message bus as speak requests.
type BusSpeaker struct {
	bus Transmitter
}

func NewBusSpeaker(bus Transmitter) *BusSpeaker {
	return &BusSpeaker{bus: bus}
}

func (s *BusSpeaker) Say(_ context.Context, sp Speech) error {
	if sp.Text == "" {
		return nil
	}
	if sp.To == "" {
		return fmt.Errorf("speak %s: no recipient", sp.Session)
	}

	return s.bus.Transmit(protocol.Message{
		To:                 sp.To,
		Kind:               protocol.KindSpeak,
		Session:            sp.Session,
		Content:            sp.Text,
		AllowInterruptions: sp.AllowInterruptions,
	})
}

// LogSpeaker only logs replies. Used when no bus is configured.
type LogSpeaker struct{}

func (LogSpeaker) Say(_ context.Context, sp Speech) error {
	log.Info("Reply", "session", sp.Session, "text", sp.Text)
	return nil
}
