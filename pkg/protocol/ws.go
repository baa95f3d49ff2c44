package protocol

import (
	"context"
	"errors"
	log "log/slog"
	"sync"
	"time"

	ws "github.com/gorilla/websocket"
)

var ErrClosed = errors.New("websocket closed")

type WebSocket struct {
	mu     sync.Mutex
	conn   *ws.Conn
	closed bool

	url     string
	reconn  uint
	timeout time.Duration
	dialer  *ws.Dialer
}

func NewWebSocket(ctx context.Context, url string, reconn uint, timeout time.Duration) (*WebSocket, error) {
	log.Debug("init websocket protocol", "url", url)

	web := &WebSocket{
		url:     url,
		reconn:  reconn,
		timeout: timeout,
		dialer: &ws.Dialer{
			Proxy:            ws.DefaultDialer.Proxy,
			HandshakeTimeout: timeout,
		},
	}

	conn, _, err := web.dialer.DialContext(ctx, url, nil)
	if err != nil {
		log.Error("Failed to dial url", "url", url, "err", err)
		return nil, err
	}
	web.conn = conn

	return web, nil
}

func (web *WebSocket) Write(payload []byte) error {
	web.mu.Lock()
	defer web.mu.Unlock()

	if web.closed {
		return ErrClosed
	}

	log.Debug("Write ws", "msg", string(payload))
	if web.timeout > 0 {
		_ = web.conn.SetWriteDeadline(time.Now().Add(web.timeout))
	}
	return web.conn.WriteMessage(ws.TextMessage, payload)
}

type WsIncomeKind uint

const (
	CONN_CLOSE WsIncomeKind = iota
	READ_FAILURE
	READ_OK
)

type Income struct {
	kind WsIncomeKind
	msg  []byte
	err  error
}

// Read blocks for the next frame. Only one goroutine may read.
func (web *WebSocket) Read() Income {
	web.mu.Lock()
	conn := web.conn
	web.mu.Unlock()

	_, msg, err := conn.ReadMessage()
	if err != nil {
		if WsIsClosed(err) {
			return Income{
				kind: CONN_CLOSE,
				err:  err,
			}
		}
		return Income{
			kind: READ_FAILURE,
			err:  err,
		}
	}

	log.Debug("Read ws", "msg", string(msg))
	return Income{
		kind: READ_OK,
		msg:  msg,
	}
}

// TryReconn dials until it succeeds, waiting reconn seconds between attempts.
func (web *WebSocket) TryReconn(ctx context.Context) error {
	wait := time.Second * time.Duration(max(web.reconn, 1))

	for {
		if web.isClosed() {
			return ErrClosed
		}

		conn, _, err := web.dialer.DialContext(ctx, web.url, nil)
		if err == nil {
			web.mu.Lock()
			defer web.mu.Unlock()
			if web.closed {
				conn.Close()
				return ErrClosed
			}
			web.conn.Close()
			web.conn = conn
			return nil
		}

		log.Debug("Reconnect failed", "url", web.url, "err", err)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
}

func (web *WebSocket) Close() error {
	web.mu.Lock()
	defer web.mu.Unlock()

	if web.closed {
		return nil
	}
	web.closed = true

	_ = web.conn.WriteControl(ws.CloseMessage,
		ws.FormatCloseMessage(ws.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	return web.conn.Close()
}

func (web *WebSocket) isClosed() bool {
	web.mu.Lock()
	defer web.mu.Unlock()
	return web.closed
}

func WsIsClosed(err error) bool {
	return ws.IsCloseError(err,
		ws.CloseNormalClosure,
		ws.CloseGoingAway,
		ws.CloseAbnormalClosure)
}
