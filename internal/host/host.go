// Package host models the desktop application that embeds the bridge: it
// registers callable commands and dispatches named events to listeners on
// its own goroutine.
package host

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"
)

// AnyEvent subscribes a handler to every event name.
const AnyEvent = "*"

var (
	ErrUnknownCommand = errors.New("unknown command")
	ErrInvalidArgs    = errors.New("invalid command arguments")
)

type Event struct {
	Name      string    `json:"event"`
	Payload   string    `json:"payload"`
	Timestamp time.Time `json:"timestamp"`
}

// Command is a host-callable operation. args is the raw JSON object sent by
// the caller (may be empty).
type Command func(ctx context.Context, args json.RawMessage) (any, error)

type EventHandler func(Event)

type App struct {
	events chan Event
	closed chan struct{}
	once   sync.Once

	mu       sync.RWMutex
	commands map[string]Command
	handlers map[string]map[int]EventHandler // event name -> handler id -> handler
	nextID   int
	logger   *slog.Logger
}

// constructor for App, buffer sizes the event queue between emitters and the
// dispatch loop
func New(buffer int, logger *slog.Logger) *App {
	if buffer < 1 {
		buffer = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &App{
		events:   make(chan Event, buffer),
		closed:   make(chan struct{}),
		commands: make(map[string]Command),
		handlers: make(map[string]map[int]EventHandler),
		logger:   logger,
	}
}

// Register adds or replaces a command.
func (a *App) Register(name string, cmd Command) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.commands[name] = cmd
}

// Commands returns the registered command names, sorted.
func (a *App) Commands() []string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	names := make([]string, 0, len(a.commands))
	for name := range a.commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Invoke runs a command synchronously on the caller's goroutine.
func (a *App) Invoke(ctx context.Context, name string, args json.RawMessage) (any, error) {
	a.mu.RLock()
	cmd, ok := a.commands[name]
	a.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCommand, name)
	}

	result, err := cmd(ctx, args)
	if err != nil {
		a.logger.Warn("command_failed", "command", name, "error", err)
		return nil, err
	}
	a.logger.Debug("command_invoked", "command", name)
	return result, nil
}

// Listen subscribes handler to an event name (or AnyEvent). The returned
// function removes the subscription.
func (a *App) Listen(event string, handler EventHandler) func() {
	a.mu.Lock()
	defer a.mu.Unlock()
	id := a.nextID
	a.nextID++
	if a.handlers[event] == nil {
		a.handlers[event] = make(map[int]EventHandler)
	}
	a.handlers[event][id] = handler

	return func() {
		a.mu.Lock()
		defer a.mu.Unlock()
		delete(a.handlers[event], id)
	}
}

// Emit queues an event for dispatch. It is safe from any goroutine; when the
// queue is full it applies backpressure, and after Close it drops.
func (a *App) Emit(event, payload string) {
	ev := Event{Name: event, Payload: payload, Timestamp: time.Now().UTC()}
	select {
	case <-a.closed:
		a.logger.Warn("event_dropped_after_close", "event", event)
		return
	default:
	}

	select {
	case a.events <- ev:
	case <-a.closed:
		a.logger.Warn("event_dropped_after_close", "event", event)
	}
}

// Run dispatches queued events until ctx is done or Close is called. It is
// the host's control loop; handlers run on this goroutine in queue order.
func (a *App) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-a.closed:
			return
		case ev := <-a.events:
			a.dispatch(ev)
		}
	}
}

// Close stops Run and makes further Emits no-ops.
func (a *App) Close() {
	a.once.Do(func() { close(a.closed) })
}

func (a *App) dispatch(ev Event) {
	a.mu.RLock()
	targets := make([]EventHandler, 0, len(a.handlers[ev.Name])+len(a.handlers[AnyEvent]))
	for _, h := range a.handlers[ev.Name] {
		targets = append(targets, h)
	}
	if ev.Name != AnyEvent {
		for _, h := range a.handlers[AnyEvent] {
			targets = append(targets, h)
		}
	}
	a.mu.RUnlock()

	if len(targets) == 0 {
		a.logger.Debug("event_without_listeners", "event", ev.Name)
		return
	}
	for _, h := range targets {
		a.safeCall(h, ev)
	}
}

// a panicking handler must not take down the dispatch loop
func (a *App) safeCall(h EventHandler, ev Event) {
	defer func() {
		if r := recover(); r != nil {
			a.logger.Error("event_handler_panicked", "event", ev.Name, "panic", r)
		}
	}()
	h(ev)
}
