package session

import (
	"context"
	"errors"
	log "log/slog"
	"slices"

	"voxroute/internal/ipc"
	"voxroute/pkg/protocol"
)

// ControlOrigin marks utterances injected through the control socket.
const ControlOrigin = "ctl"

// FromBus is the bus callback: transcripts are queued for their session.
func (m *Manager) FromBus(msg *protocol.Message) {
	if msg.Kind != protocol.KindTranscript {
		log.Debug("Ignoring bus message", "kind", msg.Kind, "from", msg.From)
		return
	}

	_, err := m.Submit(Utterance{Session: msg.Session, Origin: msg.From, Text: msg.Content})
	switch {
	case errors.Is(err, ErrEmptyUtterance):
		log.Debug("Ignoring empty transcript", "session", msg.Session)
	case err != nil:
		log.Error("Failed to queue transcript", "session", msg.Session, "err", err)
	}
}

// Control serves requests from the control socket.
func (m *Manager) Control(ctx context.Context, msg ipc.ControlMessage) ipc.Reply {
	switch msg.Cmd {
	case ipc.CmdSay:
		res, err := m.Handle(ctx, Utterance{Session: msg.Session, Origin: ControlOrigin, Text: msg.Text})
		if err != nil {
			return ipc.Failure(err)
		}
		return ipc.Reply{OK: true, Intent: string(res.Intent), Query: res.Query, Response: res.Response}

	case ipc.CmdDrop:
		if !m.Drop(msg.Session) {
			return ipc.Failure(errors.New("no live session " + msg.Session))
		}
		return ipc.Reply{OK: true}

	case ipc.CmdSessions:
		ids := m.Sessions()
		slices.Sort(ids)
		return ipc.Reply{OK: true, Sessions: ids}

	default:
		log.Warn("Unknown command", "cmd", msg.Cmd)
		return ipc.Failure(errors.New("unknown command " + msg.Cmd))
	}
}
