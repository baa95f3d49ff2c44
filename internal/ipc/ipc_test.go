package ipc

import (
	"context"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// socketPath stays short: unix socket paths are limited to ~108 bytes.
func socketPath(t *testing.T) string {
	t.Helper()
	dir, err := os.MkdirTemp("", "vr")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(dir) })
	return filepath.Join(dir, "ctl.sock")
}

func serve(t *testing.T, path string, h Handler) {
	t.Helper()

	srv, err := Listen(path, h)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx) }()

	t.Cleanup(func() {
		cancel()
		assert.NoError(t, <-done)
	})
}

func TestRoundTrip(t *testing.T) {
	path := socketPath(t)
	got := make(chan ControlMessage, 1)

	serve(t, path, func(_ context.Context, msg ControlMessage) Reply {
		got <- msg
		return Reply{OK: true, Intent: "rag", Response: "We have offices in Chennai."}
	})

	reply, err := SendCommand(path, ControlMessage{Cmd: CmdSay, Session: "room", Text: "where?"}, time.Second)
	require.NoError(t, err)

	assert.Equal(t, Reply{OK: true, Intent: "rag", Response: "We have offices in Chennai."}, reply)
	assert.Equal(t, ControlMessage{Cmd: CmdSay, Session: "room", Text: "where?"}, <-got)
}

func TestBadRequestGetsError(t *testing.T) {
	path := socketPath(t)
	serve(t, path, func(context.Context, ControlMessage) Reply {
		t.Error("handler must not run")
		return Reply{}
	})

	conn, err := net.Dial("unix", path)
	require.NoError(t, err)
	defer conn.Close()

	_, err = conn.Write([]byte("not json\n"))
	require.NoError(t, err)

	buf := make([]byte, 512)
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(time.Second)))
	n, err := conn.Read(buf)
	require.NoError(t, err)
	assert.Contains(t, string(buf[:n]), `"ok":false`)
	assert.Contains(t, string(buf[:n]), "decode")
}

func TestListenReplacesStaleSocket(t *testing.T) {
	path := socketPath(t)
	require.NoError(t, os.WriteFile(path, nil, 0o600))

	serve(t, path, func(context.Context, ControlMessage) Reply { return Reply{OK: true} })

	reply, err := SendCommand(path, ControlMessage{Cmd: CmdSessions}, time.Second)
	require.NoError(t, err)
	assert.True(t, reply.OK)
}

func TestSendCommandNoDaemon(t *testing.T) {
	_, err := SendCommand(socketPath(t), ControlMessage{Cmd: CmdSessions}, 100*time.Millisecond)
	assert.Error(t, err)
}
