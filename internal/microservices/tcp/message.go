package tcp

import (
	"encoding/json"
	"strings"
)

// SpawnMessageID is the TTS custom-message channel for deck spawns.
const SpawnMessageID = 2

type SpawnMessage struct {
	MessageID     int          `json:"messageID"`
	CustomMessage SpawnPayload `json:"customMessage"`
}

type SpawnPayload struct {
	Action string `json:"action"` // always "spawn"
	Deck   string `json:"deck"`   // space separated card codes
}

// FormatDeck normalises a whitespace separated card list into the codes the
// TTS mod expects: the first "*" becomes "S" and every code gets a "-1" suffix.
func FormatDeck(deck string) []string {
	cards := strings.Fields(deck)
	codes := make([]string, 0, len(cards))
	for _, card := range cards {
		codes = append(codes, strings.Replace(card, "*", "S", 1)+"-1")
	}
	return codes
}

// NewSpawnMessage builds the spawn request for a deck string.
func NewSpawnMessage(deck string) (*SpawnMessage, error) {
	codes := FormatDeck(deck)
	if len(codes) == 0 {
		return nil, ErrEmptyDeck
	}
	return &SpawnMessage{
		MessageID: SpawnMessageID,
		CustomMessage: SpawnPayload{
			Action: "spawn",
			Deck:   strings.Join(codes, " "),
		},
	}, nil
}

// ToJSON: marshal the message into the text sent over the wire
func (m *SpawnMessage) ToJSON() (string, error) {
	data, err := json.Marshal(m)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
