package tcp

import (
	"context"
	"net"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// closedPort returns a loopback address nothing is listening on.
func closedPort(t *testing.T) string {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())
	return addr
}

func TestSender_DeliversWholeMessage(t *testing.T) {
	l, emitter := startListener(t, ListenerOptions{})
	sender := NewSender(l.Addr().String(), nil)

	msg := `{"messageID":2,"customMessage":{"action":"spawn","deck":"OGN-001-1"}}`
	out, err := sender.Send(context.Background(), msg)
	require.NoError(t, err)
	assert.Contains(t, out, "sent")

	assert.Equal(t, msg, emitter.next(t).payload)
}

func TestSender_NoListener(t *testing.T) {
	sender := NewSender(closedPort(t), nil)

	out, err := sender.Send(context.Background(), "hello")
	require.Error(t, err)
	assert.Empty(t, out)
	assert.ErrorIs(t, err, ErrConnect)
	assert.Contains(t, err.Error(), sender.Addr)
}

func TestSender_CancelledContext(t *testing.T) {
	l, _ := startListener(t, ListenerOptions{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewSender(l.Addr().String(), nil).Send(ctx, "hello")
	assert.ErrorIs(t, err, ErrConnect)
}

func TestSender_PeerResetDuringWrite(t *testing.T) {
	peer, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer peer.Close()

	// accept, then reset without reading anything
	go func() {
		conn, err := peer.Accept()
		if err != nil {
			return
		}
		conn.(*net.TCPConn).SetLinger(0)
		conn.Close()
	}()

	// far larger than the socket buffers, so the write is still in progress
	// when the reset arrives
	msg := strings.Repeat("x", 64<<20)
	out, err := NewSender(peer.Addr().String(), nil).Send(context.Background(), msg)
	require.Error(t, err)
	assert.Empty(t, out)
	assert.ErrorIs(t, err, ErrWrite)
	assert.NotErrorIs(t, err, ErrConnect)
}
