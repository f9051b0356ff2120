package protocol

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvelopeRoundTrip(t *testing.T) {
	board := make([]int, 200)
	board[199] = 7
	sent := Envelope{
		Type: MsgPublish,
		Payload: PublishPayload{
			Name:      "alice",
			Score:     1234,
			Stats:     [7]int{3, 1, 0, 2, 0, 1, 1},
			NextShape: 4,
			Board:     board,
		},
	}

	data, err := json.Marshal(sent)
	require.NoError(t, err)

	var env struct {
		Type    MessageType     `json:"type"`
		Payload json.RawMessage `json:"payload"`
	}
	require.NoError(t, json.Unmarshal(data, &env))
	assert.Equal(t, MsgPublish, env.Type)

	var got PublishPayload
	require.NoError(t, json.Unmarshal(env.Payload, &got))
	assert.Equal(t, "alice", got.Name)
	assert.Equal(t, 1234, got.Score)
	assert.Equal(t, [7]int{3, 1, 0, 2, 0, 1, 1}, got.Stats)
	assert.Equal(t, 4, got.NextShape)
	assert.False(t, got.GameOver)
	assert.Equal(t, board, got.Board)
}
