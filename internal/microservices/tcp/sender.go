package tcp

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
)

// Sender delivers one message per connection to the TTS engine.
type Sender struct {
	Addr   string
	dialer net.Dialer
	logger *slog.Logger
}

// constructor for Sender
func NewSender(addr string, logger *slog.Logger) *Sender {
	if logger == nil {
		logger = slog.Default()
	}
	return &Sender{Addr: addr, logger: logger}
}

// Send opens a connection, writes the whole message and closes. Success only
// means the write completed; nothing is read back from the peer.
func (s *Sender) Send(ctx context.Context, message string) (string, error) {
	conn, err := s.dialer.DialContext(ctx, "tcp", s.Addr)
	if err != nil {
		s.logger.Warn("tts_send_connect_failed", "addr", s.Addr, "error", err)
		return "", fmt.Errorf("%w: %s: %w", ErrConnect, s.Addr, err)
	}
	defer conn.Close()

	n, err := io.WriteString(conn, message)
	if err != nil {
		s.logger.Warn("tts_send_write_failed", "addr", s.Addr, "bytes_written", n, "error", err)
		return "", fmt.Errorf("%w: %s: %w", ErrWrite, s.Addr, err)
	}

	s.logger.Info("tts_message_sent", "addr", s.Addr, "size", n)
	return fmt.Sprintf("sent %d bytes to %s", n, s.Addr), nil
}
