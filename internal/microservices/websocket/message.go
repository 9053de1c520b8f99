package websocket

import (
	"encoding/json"
	"log/slog"
	"time"
)

// EventMessage is one host event as pushed to websocket subscribers.
type EventMessage struct {
	Event     string    `json:"event"`
	Payload   string    `json:"payload"`
	Timestamp time.Time `json:"timestamp"` // UTC
}

// constructor new event message, zero timestamps are stamped now
func NewEventMessage(event, payload string, ts time.Time) *EventMessage {
	if ts.IsZero() {
		ts = time.Now()
	}
	return &EventMessage{
		Event:     event,
		Payload:   payload,
		Timestamp: ts.UTC(),
	}
}

// ToJSON: marshal EventMessage struct to JSON
func (m *EventMessage) ToJSON() ([]byte, error) {
	data, err := json.Marshal(m)
	if err != nil {
		slog.Error("failed to marshal event message", "event", m.Event, "error", err)
		return nil, err
	}
	return data, nil
}

// EventMessageFromJSON: unmarshal JSON data to EventMessage struct
func EventMessageFromJSON(data []byte) (*EventMessage, error) {
	var msg EventMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
