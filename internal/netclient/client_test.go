package netclient

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mlev/stackfall/internal/protocol"
)

func TestFeedURL(t *testing.T) {
	got, err := feedURL("ws://localhost:8080/ws", RoleWatch)
	require.NoError(t, err)
	assert.Equal(t, "ws://localhost:8080/ws?role=watch", got)

	// An existing query survives; the role is added alongside.
	got, err = feedURL("ws://example.com/ws?token=abc", RolePlay)
	require.NoError(t, err)
	assert.Contains(t, got, "role=play")
	assert.Contains(t, got, "token=abc")

	_, err = feedURL("ws://bad url^", RolePlay)
	assert.Error(t, err)
}

func mustEnvelope(t *testing.T, typ protocol.MessageType, payload interface{}) []byte {
	t.Helper()
	data, err := json.Marshal(protocol.Envelope{Type: typ, Payload: payload})
	require.NoError(t, err)
	return data
}

func TestDecodeServerMessage(t *testing.T) {
	msg, err := decodeServerMessage(mustEnvelope(t,
		protocol.MsgAssignID, protocol.AssignIDPayload{ClientID: "c7"}))
	require.NoError(t, err)
	assert.Equal(t, ConnectedMsg{ClientID: "c7"}, msg)

	msg, err = decodeServerMessage(mustEnvelope(t,
		protocol.MsgFeedUpdate, protocol.FeedUpdatePayload{
			Boards: []protocol.PublishedBoard{{ClientID: "a", Name: "alice", Score: 300}},
		}))
	require.NoError(t, err)
	feed, ok := msg.(FeedMsg)
	require.True(t, ok)
	require.Len(t, feed.Boards, 1)
	assert.Equal(t, "alice", feed.Boards[0].Name)
	assert.Equal(t, 300, feed.Boards[0].Score)

	msg, err = decodeServerMessage(mustEnvelope(t,
		protocol.MsgBoardClosed, protocol.BoardClosedPayload{ClientID: "a"}))
	require.NoError(t, err)
	assert.Equal(t, BoardClosedMsg{ClientID: "a"}, msg)
}

func TestDecodeServerMessageIgnoresUnknownTypes(t *testing.T) {
	// A publisher-bound type reaching a client is not an error, just
	// nothing to deliver.
	msg, err := decodeServerMessage(mustEnvelope(t,
		protocol.MsgPublish, protocol.PublishPayload{Name: "x"}))
	require.NoError(t, err)
	assert.Nil(t, msg)

	_, err = decodeServerMessage([]byte("{not json"))
	assert.Error(t, err)
}

func TestPublishSupersedesStaleSnapshot(t *testing.T) {
	c := &Client{outbox: make(chan []byte, 1)}

	c.Publish(protocol.PublishPayload{Name: "alice", Score: 100})
	c.Publish(protocol.PublishPayload{Name: "alice", Score: 250})

	select {
	case data := <-c.outbox:
		var env struct {
			Type    protocol.MessageType `json:"type"`
			Payload json.RawMessage      `json:"payload"`
		}
		require.NoError(t, json.Unmarshal(data, &env))
		assert.Equal(t, protocol.MsgPublish, env.Type)

		var p protocol.PublishPayload
		require.NoError(t, json.Unmarshal(env.Payload, &p))
		assert.Equal(t, 250, p.Score, "the newer snapshot replaced the queued one")
	default:
		t.Fatal("no snapshot queued")
	}

	select {
	case <-c.outbox:
		t.Fatal("stale snapshot still queued")
	default:
	}
}
