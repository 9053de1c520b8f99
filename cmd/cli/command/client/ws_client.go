package client

// ws_client.go = subscribes to host events over the IPC websocket.

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/gorilla/websocket"

	wsmsg "ttsbridge/internal/microservices/websocket"
)

// Event is one host event as the IPC stream delivers it.
type Event = wsmsg.EventMessage

// EventsURL turns the IPC base URL into its websocket endpoint.
func EventsURL(ipcURL string) (string, error) {
	u, err := url.Parse(ipcURL)
	if err != nil {
		return "", err
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
	default:
		return "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + "/events"
	return u.String(), nil
}

// Subscribe calls handle for every event until ctx is cancelled or the host
// closes the stream. A cancelled ctx is not an error.
func Subscribe(ctx context.Context, eventsURL string, handle func(Event)) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, eventsURL, nil)
	if err != nil {
		return fmt.Errorf("connection failed: %w", err)
	}
	defer conn.Close()

	stop := context.AfterFunc(ctx, func() {
		conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		conn.Close()
	})
	defer stop()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil || websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			var closeErr *websocket.CloseError
			if errors.As(err, &closeErr) {
				return fmt.Errorf("stream closed: %w", err)
			}
			return fmt.Errorf("read error: %w", err)
		}
		ev, err := wsmsg.EventMessageFromJSON(data)
		if err != nil {
			return fmt.Errorf("malformed event: %w", err)
		}
		handle(*ev)
	}
}

var (
	cyan   = color.New(color.FgCyan)
	yellow = color.New(color.FgYellow)
)

func PrintEvent(w io.Writer, ev Event) {
	stamp := ev.Timestamp.Local().Format("15:04:05")
	switch ev.Event {
	case "tts-message":
		cyan.Fprintf(w, "[%s] %s\n", stamp, ev.Payload)
	default:
		yellow.Fprintf(w, "[%s] %s: %s\n", stamp, ev.Event, ev.Payload)
	}
}
