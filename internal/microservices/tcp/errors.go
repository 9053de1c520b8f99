package tcp

import "errors"

var (
	// ErrConnect wraps dial failures (refused, unreachable, timed out).
	ErrConnect = errors.New("tts connect failed")
	// ErrWrite wraps failures writing to an established connection.
	ErrWrite = errors.New("tts write failed")
	// ErrListenerStarted is returned by Start on a listener already running.
	ErrListenerStarted = errors.New("tts listener already started")
	// ErrEmptyDeck is returned when a spawn request names no cards.
	ErrEmptyDeck = errors.New("deck has no cards")
)
