package protocol

import (
	"context"
	"errors"
	"fmt"
	log "log/slog"
	"time"
)

type PtclConfig struct {
	Shard   string
	Url     string
	Reconn  uint
	Timeout time.Duration
	EmitOut func(*Message)
}

// Protocol is this shard's endpoint on the message bus.
type Protocol struct {
	ws *WebSocket

	shard string

	emitOut func(*Message)
}

func NewProtocol(ctx context.Context, cfg PtclConfig) (*Protocol, error) {
	if !isToken(cfg.Shard) {
		return nil, fmt.Errorf("invalid shard name: %q", cfg.Shard)
	}

	ws, err := NewWebSocket(ctx, cfg.Url, cfg.Reconn, cfg.Timeout)
	if err != nil {
		log.Error("Failed to init ws connection")
		return nil, err
	}

	ptcl := &Protocol{
		shard:   cfg.Shard,
		ws:      ws,
		emitOut: cfg.EmitOut,
	}

	return ptcl, nil
}

func (ptcl *Protocol) Shard() string {
	return ptcl.shard
}

// EmitOut sets the callback for incoming messages. Call it before Run.
func (ptcl *Protocol) EmitOut(f func(*Message)) {
	ptcl.emitOut = f
}

// Transmit stamps the message with this shard and sends it.
func (ptcl *Protocol) Transmit(m Message) error {
	m.From = ptcl.shard

	data, err := m.Encode()
	if err != nil {
		return fmt.Errorf("encode %s: %w", m.Kind, err)
	}

	if err := ptcl.ws.Write(data); err != nil {
		log.Error("Failed to transmit", "msg", m.String(), "err", err)
		return fmt.Errorf("transmit: %w", err)
	}
	return nil
}

// Run reads the bus until ctx is done, reconnecting whenever the connection
// drops, and hands every message addressed to this shard to the callback.
func (ptcl *Protocol) Run(ctx context.Context) error {
	stop := context.AfterFunc(ctx, func() { ptcl.ws.Close() })
	defer stop()

	for {
		in := ptcl.ws.Read()
		if ctx.Err() != nil {
			return ctx.Err()
		}

		switch in.kind {
		case CONN_CLOSE, READ_FAILURE:
			if in.kind == READ_FAILURE {
				log.Error("Failed to read", "err", in.err)
			}

			log.Warn("Trying to reconnect on", "url", ptcl.ws.url)
			if err := ptcl.ws.TryReconn(ctx); err != nil {
				if errors.Is(err, ErrClosed) {
					return nil
				}
				return err
			}
			log.Info("Succefully reconnected")

		case READ_OK:
			msg, err := Parse(in.msg)
			if err != nil {
				log.Warn("Failed to parse", "msg", string(in.msg), "err", err)
				continue
			}

			if !ptcl.checkRecipient(msg) {
				continue
			}

			if ptcl.emitOut != nil {
				ptcl.emitOut(msg)
			}
		}
	}
}

func (ptcl *Protocol) Close() error {
	return ptcl.ws.Close()
}

func (ptcl *Protocol) checkRecipient(msg *Message) bool {
	return msg.To == ptcl.shard || msg.To == Broadcast
}
