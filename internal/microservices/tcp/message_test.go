package tcp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatDeck(t *testing.T) {
	assert.Equal(t, []string{"OGN-001-1", "OGN-S02-1", "SFD-S*-1"}, FormatDeck("  OGN-001\n OGN-*02\tSFD-**  "))
	assert.Empty(t, FormatDeck(" \n\t "))
}

func TestNewSpawnMessage(t *testing.T) {
	msg, err := NewSpawnMessage("A-1 B*")
	require.NoError(t, err)

	text, err := msg.ToJSON()
	require.NoError(t, err)
	assert.JSONEq(t, `{"messageID":2,"customMessage":{"action":"spawn","deck":"A-1-1 BS-1"}}`, text)
}

func TestNewSpawnMessage_EmptyDeck(t *testing.T) {
	_, err := NewSpawnMessage("   ")
	assert.ErrorIs(t, err, ErrEmptyDeck)
}
