package host

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"ttsbridge/internal/microservices/tcp"
)

// Command names exposed to the UI.
const (
	CmdIsDevMode           = "is_dev_mode"
	CmdSendToTTS           = "send_to_tts"
	CmdSpawnDeck           = "spawn_deck"
	CmdStartTTSListener    = "start_tts_listener"
	CmdCheckTTSConnections = "check_tts_connections"
)

type TTSSender interface {
	Send(ctx context.Context, message string) (string, error)
}

type ConnectionChecker interface {
	CheckAll(ctx context.Context) tcp.ConnectionReport
}

// TTSListener is the part of tcp.Listener the host drives.
type TTSListener interface {
	Start() error
	Stop()
}

// ListenerGroup starts inbound listeners on demand and remembers the ones
// that bound successfully so they can be stopped at shutdown.
type ListenerGroup struct {
	newListener func() TTSListener

	mu      sync.Mutex
	running []TTSListener
}

func NewListenerGroup(newListener func() TTSListener) *ListenerGroup {
	return &ListenerGroup{newListener: newListener}
}

// Start binds a fresh listener. A port that is already taken, including by
// an earlier Start, comes back as an error.
func (g *ListenerGroup) Start() error {
	l := g.newListener()
	if err := l.Start(); err != nil {
		return err
	}
	g.mu.Lock()
	g.running = append(g.running, l)
	g.mu.Unlock()
	return nil
}

func (g *ListenerGroup) Running() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.running)
}

func (g *ListenerGroup) StopAll() {
	g.mu.Lock()
	running := g.running
	g.running = nil
	g.mu.Unlock()
	for _, l := range running {
		l.Stop()
	}
}

// Bridge holds what the bridge commands need.
type Bridge struct {
	DevMode   bool
	Sender    TTSSender
	Checker   ConnectionChecker
	Listeners *ListenerGroup
}

// RegisterCommands installs the bridge commands on app.
func (b *Bridge) RegisterCommands(app *App) {
	app.Register(CmdIsDevMode, b.isDevMode)
	app.Register(CmdSendToTTS, b.sendToTTS)
	app.Register(CmdSpawnDeck, b.spawnDeck)
	app.Register(CmdStartTTSListener, b.startTTSListener)
	app.Register(CmdCheckTTSConnections, b.checkTTSConnections)
}

func (b *Bridge) isDevMode(context.Context, json.RawMessage) (any, error) {
	return b.DevMode, nil
}

func (b *Bridge) sendToTTS(ctx context.Context, raw json.RawMessage) (any, error) {
	var args struct {
		Message *string `json:"message"`
	}
	if err := decodeArgs(raw, &args); err != nil {
		return nil, err
	}
	if args.Message == nil {
		return nil, fmt.Errorf("%w: message is required", ErrInvalidArgs)
	}
	return b.Sender.Send(ctx, *args.Message)
}

func (b *Bridge) spawnDeck(ctx context.Context, raw json.RawMessage) (any, error) {
	var args struct {
		Deck string `json:"deck"`
	}
	if err := decodeArgs(raw, &args); err != nil {
		return nil, err
	}
	msg, err := tcp.NewSpawnMessage(args.Deck)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidArgs, err)
	}
	text, err := msg.ToJSON()
	if err != nil {
		return nil, err
	}
	return b.Sender.Send(ctx, text)
}

func (b *Bridge) startTTSListener(context.Context, json.RawMessage) (any, error) {
	if err := b.Listeners.Start(); err != nil {
		return nil, err
	}
	return "listening", nil
}

func (b *Bridge) checkTTSConnections(ctx context.Context, _ json.RawMessage) (any, error) {
	// probes run on their own goroutine so a cancelled caller returns at once
	done := make(chan tcp.ConnectionReport, 1)
	go func() { done <- b.Checker.CheckAll(ctx) }()

	select {
	case report := <-done:
		return report, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func decodeArgs(raw json.RawMessage, v any) error {
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidArgs, err)
	}
	return nil
}
