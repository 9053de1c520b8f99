package tcp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"sync"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

// EventTTSMessage is the host event carrying one inbound TTS message.
const EventTTSMessage = "tts-message"

// Emitter receives decoded messages. Implementations must be safe to call
// from the listener's goroutines and must not block for long.
type Emitter interface {
	Emit(event string, payload string)
}

// ListenerOptions tunes the inbound listener. Zero values mean no limit.
type ListenerOptions struct {
	MaxMessageSize int64      // bytes; larger messages are dropped
	AcceptRate     rate.Limit // accepted connections per second
	AcceptBurst    int
	Logger         *slog.Logger
}

// Listener accepts TTS connections, reads each one to EOF and forwards the
// payload to the Emitter as a single message.
type Listener struct {
	ListenAddr string

	emitter        Emitter
	maxMessageSize int64
	limiter        *rate.Limiter
	logger         *slog.Logger
	Manager        *ConnectionManager

	mu       sync.Mutex
	listener net.Listener
	cancel   context.CancelFunc
	done     chan struct{}
	wg       sync.WaitGroup // in-flight connection handlers
}

// constructor for Listener
func NewListener(listenAddr string, emitter Emitter, opts ListenerOptions) *Listener {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	limit, burst := opts.AcceptRate, opts.AcceptBurst
	if limit <= 0 {
		limit = rate.Inf
	}
	if burst < 1 {
		burst = 1
	}
	return &Listener{
		ListenAddr:     listenAddr,
		emitter:        emitter,
		maxMessageSize: opts.MaxMessageSize,
		limiter:        rate.NewLimiter(limit, burst),
		logger:         logger,
		Manager:        NewConnectionManager(logger),
	}
}

// Start binds the port and runs the accept loop in the background. Bind
// errors are returned; the loop itself never stops on per-connection errors.
func (l *Listener) Start() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.listener != nil {
		return ErrListenerStarted
	}

	listener, err := net.Listen("tcp", l.ListenAddr)
	if err != nil {
		return fmt.Errorf("failed to start TTS listener on %s: %w", l.ListenAddr, err)
	}
	l.listener = listener

	ctx, cancel := context.WithCancel(context.Background())
	l.cancel = cancel
	l.done = make(chan struct{})

	go func() {
		defer close(l.done)
		l.acceptLoop(ctx, listener)
	}()

	l.logger.Info("tts_listener_started", "addr", listener.Addr().String())
	return nil
}

// Addr returns the bound address, or nil before Start.
func (l *Listener) Addr() net.Addr {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.listener == nil {
		return nil
	}
	return l.listener.Addr()
}

// Stop closes the listener and any connection still being read, then waits
// for the handlers to return.
func (l *Listener) Stop() {
	l.mu.Lock()
	listener, cancel, done := l.listener, l.cancel, l.done
	l.mu.Unlock()
	if listener == nil {
		return
	}

	cancel()
	listener.Close()
	l.Manager.CloseAllConnections()
	<-done
	l.logger.Info("tts_listener_stopped")
}

func (l *Listener) acceptLoop(ctx context.Context, listener net.Listener) {
	defer l.wg.Wait()

	for {
		if err := l.limiter.Wait(ctx); err != nil {
			return // cancelled by Stop
		}

		conn, err := listener.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return
			}
			l.logger.Error("tts_accept_failed", "error", err)
			continue
		}

		l.wg.Add(1)
		go func(conn net.Conn) {
			defer l.wg.Done()
			l.handleConnection(ctx, conn)
		}(conn)
	}
}

// handleConnection reads one whole message; the peer closing its side marks
// the end of the message.
func (l *Listener) handleConnection(ctx context.Context, conn net.Conn) {
	id := uuid.NewString()
	l.Manager.AddConnection(id, conn)
	defer func() {
		conn.Close()
		l.Manager.RemoveConnection(id)
	}()
	if ctx.Err() != nil {
		return // registered after Stop closed everything
	}

	logger := l.logger.With("conn_id", id, "remote_addr", conn.RemoteAddr().String())

	var reader io.Reader = conn
	if l.maxMessageSize > 0 {
		// one extra byte tells "exactly at the limit" from "over it"
		reader = io.LimitReader(conn, l.maxMessageSize+1)
	}

	data, err := io.ReadAll(reader)
	if err != nil {
		logger.Warn("tts_message_read_failed", "bytes_read", len(data), "error", err)
		return
	}
	if l.maxMessageSize > 0 && int64(len(data)) > l.maxMessageSize {
		logger.Warn("tts_message_too_large", "max_size", l.maxMessageSize)
		return
	}
	if len(data) == 0 {
		// port probes (health checks) connect and close without sending
		logger.Debug("tts_empty_connection")
		return
	}
	if !utf8.Valid(data) {
		logger.Warn("tts_message_not_utf8", "size", len(data))
		return
	}

	l.emitter.Emit(EventTTSMessage, string(data))
	logger.Info("tts_message_forwarded", "size", len(data))
}
