// Package ipc is the daemon's local control channel: one JSON request and one
// JSON reply per unix-socket connection.
package ipc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	log "log/slog"
	"net"
	"os"
	"time"
)

const DefaultSocketPath = "/tmp/voxroute.sock"

const (
	CmdSay      = "say"      // route Text as an utterance of Session
	CmdDrop     = "drop"     // forget the live conversation of Session
	CmdSessions = "sessions" // list live sessions
)

type ControlMessage struct {
	Cmd     string `json:"cmd"`
	Session string `json:"session,omitempty"`
	Text    string `json:"text,omitempty"`
}

type Reply struct {
	OK       bool     `json:"ok"`
	Error    string   `json:"error,omitempty"`
	Intent   string   `json:"intent,omitempty"`
	Query    string   `json:"query,omitempty"`
	Response string   `json:"response,omitempty"`
	Sessions []string `json:"sessions,omitempty"`
}

func Failure(err error) Reply {
	return Reply{Error: err.Error()}
}

type Handler func(ctx context.Context, msg ControlMessage) Reply

type Server struct {
	path    string
	handler Handler
	ln      net.Listener
}

// Listen replaces any stale socket at path and starts listening.
func Listen(path string, handler Handler) (*Server, error) {
	if path == "" {
		path = DefaultSocketPath
	}
	os.Remove(path)

	ln, err := net.Listen("unix", path)
	if err != nil {
		return nil, fmt.Errorf("listen: %w", err)
	}

	return &Server{path: path, handler: handler, ln: ln}, nil
}

func (s *Server) Path() string {
	return s.path
}

// Serve accepts connections until ctx is done.
func (s *Server) Serve(ctx context.Context) error {
	stop := context.AfterFunc(ctx, func() { s.ln.Close() })
	defer stop()
	defer os.Remove(s.path)

	for {
		conn, err := s.ln.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			log.Warn("Failed to accept control connection", "err", err)
			continue
		}
		go s.handleConn(ctx, conn)
	}
}

func (s *Server) Close() error {
	return s.ln.Close()
}

func (s *Server) handleConn(ctx context.Context, conn net.Conn) {
	defer conn.Close()

	var msg ControlMessage
	dec := json.NewDecoder(conn)
	if err := dec.Decode(&msg); err != nil {
		log.Warn("Bad control message", "err", err)
		_ = json.NewEncoder(conn).Encode(Failure(fmt.Errorf("decode: %w", err)))
		return
	}

	log.Debug("Control message", "cmd", msg.Cmd, "session", msg.Session)

	reply := s.handler(ctx, msg)
	if err := json.NewEncoder(conn).Encode(reply); err != nil {
		log.Warn("Failed to write control reply", "err", err)
	}
}

// SendCommand sends msg to the daemon at path and waits for its reply.
func SendCommand(path string, msg ControlMessage, timeout time.Duration) (Reply, error) {
	if path == "" {
		path = DefaultSocketPath
	}

	conn, err := net.DialTimeout("unix", path, timeout)
	if err != nil {
		return Reply{}, err
	}
	defer conn.Close()

	if timeout > 0 {
		_ = conn.SetDeadline(time.Now().Add(timeout))
	}

	if err := json.NewEncoder(conn).Encode(msg); err != nil {
		return Reply{}, fmt.Errorf("send: %w", err)
	}

	var reply Reply
	if err := json.NewDecoder(conn).Decode(&reply); err != nil {
		return Reply{}, fmt.Errorf("read reply: %w", err)
	}
	return reply, nil
}
