package server

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mlev/stackfall/internal/protocol"
)

func TestHubPublishAndFeed(t *testing.T) {
	h := NewHub()
	assert.Empty(t, h.Feed())

	h.Publish("b", protocol.PublishPayload{Name: "bob", Score: 200, NextShape: 3})
	h.Publish("a", protocol.PublishPayload{Name: "alice", Score: 100, NextShape: 0})
	require.Equal(t, 2, h.PublisherCount())

	feed := h.Feed()
	require.Len(t, feed, 2)
	assert.Equal(t, "a", feed[0].ClientID, "feed ordered by client ID")
	assert.Equal(t, "alice", feed[0].Name)
	assert.Equal(t, 100, feed[0].Score)
	assert.Equal(t, "b", feed[1].ClientID)
	assert.Equal(t, 3, feed[1].NextShape)

	// Re-publishing replaces, never duplicates.
	h.Publish("a", protocol.PublishPayload{Name: "alice", Score: 350})
	feed = h.Feed()
	require.Len(t, feed, 2)
	assert.Equal(t, 350, feed[0].Score)

	h.RemovePublisher("a")
	feed = h.Feed()
	require.Len(t, feed, 1)
	assert.Equal(t, "b", feed[0].ClientID)
}

func TestHubBroadcastFeed(t *testing.T) {
	h := NewHub()
	h.Publish("p1", protocol.PublishPayload{Name: "alice", Score: 42})

	w := NewConn("w1", nil)
	h.AddWatcher(w)
	require.Equal(t, 1, h.WatcherCount())

	h.BroadcastFeed()

	select {
	case data := <-w.sendCh:
		var env struct {
			Type    protocol.MessageType `json:"type"`
			Payload json.RawMessage      `json:"payload"`
		}
		require.NoError(t, json.Unmarshal(data, &env))
		assert.Equal(t, protocol.MsgFeedUpdate, env.Type)

		var payload protocol.FeedUpdatePayload
		require.NoError(t, json.Unmarshal(env.Payload, &payload))
		require.Len(t, payload.Boards, 1)
		assert.Equal(t, "alice", payload.Boards[0].Name)
		assert.Equal(t, 42, payload.Boards[0].Score)
	default:
		t.Fatal("watcher received no feed update")
	}
}

func TestHubRemovePublisherNotifiesWatchers(t *testing.T) {
	h := NewHub()
	h.Publish("p1", protocol.PublishPayload{Name: "alice"})

	w := NewConn("w1", nil)
	h.AddWatcher(w)

	h.RemovePublisher("p1")

	select {
	case data := <-w.sendCh:
		var env struct {
			Type    protocol.MessageType `json:"type"`
			Payload json.RawMessage      `json:"payload"`
		}
		require.NoError(t, json.Unmarshal(data, &env))
		assert.Equal(t, protocol.MsgBoardClosed, env.Type)

		var payload protocol.BoardClosedPayload
		require.NoError(t, json.Unmarshal(env.Payload, &payload))
		assert.Equal(t, "p1", payload.ClientID)
	default:
		t.Fatal("watcher was not told the board closed")
	}

	// Removing an unknown publisher is quiet.
	h.RemovePublisher("ghost")
	select {
	case <-w.sendCh:
		t.Fatal("unexpected message for unknown publisher")
	default:
	}
}

func TestHubWatcherLifecycle(t *testing.T) {
	h := NewHub()
	w := NewConn("w1", nil)
	h.AddWatcher(w)
	h.RemoveWatcher("w1")
	assert.Equal(t, 0, h.WatcherCount())

	// No watchers: broadcasting is a no-op, not a panic.
	h.Publish("p1", protocol.PublishPayload{Name: "alice"})
	h.BroadcastFeed()
}

func TestSendAfterCloseIsQuiet(t *testing.T) {
	h := NewHub()
	h.Publish("p1", protocol.PublishPayload{Name: "alice"})

	w := NewConn("w1", nil)
	h.AddWatcher(w)

	// A watcher can disconnect between the hub snapshotting its list
	// and sending to it; the closed connection must swallow the send
	// rather than crash the broadcast.
	w.Close()
	require.NotPanics(t, func() { h.BroadcastFeed() })
	require.NotPanics(t, func() { h.RemovePublisher("p1") })

	require.NotPanics(t, func() { w.Close() }, "close is idempotent")
	require.NotPanics(t, func() {
		w.Send(protocol.Envelope{Type: protocol.MsgFeedUpdate})
	})
}

func TestHubClientIDsUnique(t *testing.T) {
	h := NewHub()
	a := h.NextClientID()
	b := h.NextClientID()
	assert.NotEqual(t, a, b)
}
