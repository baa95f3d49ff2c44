package protocol

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	ws "github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type hub struct {
	conns chan *ws.Conn
	url   string
}

func newHub(t *testing.T) *hub {
	t.Helper()

	h := &hub{conns: make(chan *ws.Conn, 4)}
	upgrader := ws.Upgrader{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		h.conns <- conn
	}))
	t.Cleanup(srv.Close)

	h.url = "ws" + strings.TrimPrefix(srv.URL, "http")
	return h
}

func (h *hub) accept(t *testing.T) *ws.Conn {
	t.Helper()
	select {
	case c := <-h.conns:
		t.Cleanup(func() { c.Close() })
		return c
	case <-time.After(2 * time.Second):
		t.Fatal("no connection on hub")
		return nil
	}
}

func send(t *testing.T, c *ws.Conn, raw string) {
	t.Helper()
	require.NoError(t, c.WriteMessage(ws.TextMessage, []byte(raw)))
}

func startProtocol(t *testing.T, h *hub) (*Protocol, chan *Message, chan error) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	got := make(chan *Message, 8)
	ptcl, err := NewProtocol(ctx, PtclConfig{
		Shard:   "voxroute",
		Url:     h.url,
		Reconn:  1,
		Timeout: 2 * time.Second,
		EmitOut: func(m *Message) { got <- m },
	})
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- ptcl.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	return ptcl, got, done
}

func next(t *testing.T, got chan *Message) *Message {
	t.Helper()
	select {
	case m := <-got:
		return m
	case <-time.After(2 * time.Second):
		t.Fatal("no message delivered")
		return nil
	}
}

func TestRunDeliversAddressedMessages(t *testing.T) {
	h := newHub(t)
	_, got, _ := startProtocol(t, h)
	conn := h.accept(t)

	send(t, conn, `{"from":"agent","to":"other","kind":"transcript","session":"room","content":"not mine"}`)
	send(t, conn, `{not json`)
	send(t, conn, `{"from":"agent","to":"voxroute","kind":"transcript","session":"room","content":"hi there"}`)
	send(t, conn, `{"from":"agent","to":"ALL","kind":"transcript","session":"room","content":"everyone"}`)

	first := next(t, got)
	assert.Equal(t, "hi there", first.Content)
	assert.Equal(t, KindTranscript, first.Kind)
	assert.Equal(t, "agent", first.From)

	second := next(t, got)
	assert.Equal(t, "everyone", second.Content)

	select {
	case m := <-got:
		t.Fatalf("unexpected message %v", m)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestTransmitStampsShard(t *testing.T) {
	h := newHub(t)
	ptcl, _, _ := startProtocol(t, h)
	conn := h.accept(t)

	err := ptcl.Transmit(Message{
		From:               "spoofed",
		To:                 "agent",
		Kind:               KindSpeak,
		Session:            "room",
		Content:            "We have offices in Chennai.",
		AllowInterruptions: true,
	})
	require.NoError(t, err)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	m, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, "voxroute", m.From)
	assert.Equal(t, KindSpeak, m.Kind)
	assert.True(t, m.AllowInterruptions)

	assert.Error(t, ptcl.Transmit(Message{To: "agent", Session: "room"}))
}

func TestRunReconnects(t *testing.T) {
	h := newHub(t)
	_, got, _ := startProtocol(t, h)

	first := h.accept(t)
	require.NoError(t, first.Close())

	second := h.accept(t)
	send(t, second, `{"from":"agent","to":"voxroute","kind":"transcript","session":"room","content":"back again"}`)

	assert.Equal(t, "back again", next(t, got).Content)
}

func TestRunStopsOnCancel(t *testing.T) {
	h := newHub(t)

	ctx, cancel := context.WithCancel(context.Background())
	ptcl, err := NewProtocol(ctx, PtclConfig{Shard: "voxroute", Url: h.url, Reconn: 1})
	require.NoError(t, err)
	h.accept(t)

	done := make(chan error, 1)
	go func() { done <- ptcl.Run(ctx) }()
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return")
	}
}

func TestNewProtocolRejectsBadShard(t *testing.T) {
	_, err := NewProtocol(context.Background(), PtclConfig{Shard: "has space", Url: "ws://127.0.0.1:1"})
	assert.Error(t, err)
}
