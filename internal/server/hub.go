package server

import (
	"encoding/json"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/mlev/stackfall/internal/protocol"
)

const (
	// FeedInterval is how often the full feed goes out to watchers.
	FeedInterval = 100 * time.Millisecond

	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingInterval   = (pongWait * 9) / 10
	maxMessageSize = 16384
)

// Conn is one connected websocket with a buffered outbound queue.
// Writes go through the queue so a slow watcher cannot block the hub.
type Conn struct {
	ID     string
	ws     *websocket.Conn
	mu     sync.Mutex
	sendCh chan []byte
	closed bool
}

// NewConn wraps a websocket connection. StartWritePump must be called
// before the connection receives any traffic.
func NewConn(id string, ws *websocket.Conn) *Conn {
	return &Conn{
		ID:     id,
		ws:     ws,
		sendCh: make(chan []byte, 256),
	}
}

// Send marshals an envelope and queues it, dropping on a full queue.
// A closed connection swallows the message: the hub may still hold a
// reference to a connection that dropped mid-broadcast.
func (c *Conn) Send(env protocol.Envelope) {
	data, err := json.Marshal(env)
	if err != nil {
		log.Printf("marshal error for %s: %v", c.ID, err)
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.sendCh <- data:
	default:
		log.Printf("send queue full for %s, dropping message", c.ID)
	}
}

// Close shuts the outbound queue; the write pump then closes the
// socket. Safe to call more than once and safe against concurrent
// Send, which checks the flag under the same lock.
func (c *Conn) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.sendCh)
}

// StartWritePump drains the queue onto the socket and keeps it pinged.
func (c *Conn) StartWritePump() {
	go func() {
		ticker := time.NewTicker(pingInterval)
		defer func() {
			ticker.Stop()
			c.ws.Close()
		}()

		for {
			select {
			case msg, ok := <-c.sendCh:
				c.ws.SetWriteDeadline(time.Now().Add(writeWait))
				if !ok {
					c.ws.WriteMessage(websocket.CloseMessage, []byte{})
					return
				}
				if err := c.ws.WriteMessage(websocket.TextMessage, msg); err != nil {
					return
				}
			case <-ticker.C:
				c.ws.SetWriteDeadline(time.Now().Add(writeWait))
				if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
					return
				}
			}
		}
	}()
}

// Hub tracks published boards and the watchers observing them. It
// never touches game rules: publishers own their engines and upload
// read-only snapshots, watchers only ever receive.
type Hub struct {
	mu       sync.RWMutex
	boards   map[string]protocol.PublishedBoard
	watchers map[string]*Conn
	nextID   int
}

func NewHub() *Hub {
	return &Hub{
		boards:   make(map[string]protocol.PublishedBoard),
		watchers: make(map[string]*Conn),
	}
}

// NextClientID returns a fresh connection identifier.
func (h *Hub) NextClientID() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.nextID++
	return fmt.Sprintf("client_%d_%d", time.Now().UnixMilli(), h.nextID)
}

// Publish stores or replaces a player's snapshot.
func (h *Hub) Publish(id string, p protocol.PublishPayload) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.boards[id] = protocol.PublishedBoard{
		ClientID:  id,
		Name:      p.Name,
		Score:     p.Score,
		Stats:     p.Stats,
		NextShape: p.NextShape,
		GameOver:  p.GameOver,
		Board:     p.Board,
	}
}

// RemovePublisher drops a publisher's board and tells watchers.
func (h *Hub) RemovePublisher(id string) {
	h.mu.Lock()
	_, existed := h.boards[id]
	delete(h.boards, id)
	watchers := h.watcherList()
	h.mu.Unlock()

	if !existed {
		return
	}
	env := protocol.Envelope{
		Type:    protocol.MsgBoardClosed,
		Payload: protocol.BoardClosedPayload{ClientID: id},
	}
	for _, w := range watchers {
		w.Send(env)
	}
}

// AddWatcher registers a watcher connection.
func (h *Hub) AddWatcher(c *Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.watchers[c.ID] = c
}

// RemoveWatcher unregisters a watcher connection.
func (h *Hub) RemoveWatcher(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.watchers, id)
}

// PublisherCount reports how many boards are currently published.
func (h *Hub) PublisherCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.boards)
}

// WatcherCount reports how many watchers are connected.
func (h *Hub) WatcherCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.watchers)
}

// Feed returns every published board, ordered by client ID so the
// watcher layout stays stable between updates.
func (h *Hub) Feed() []protocol.PublishedBoard {
	h.mu.RLock()
	defer h.mu.RUnlock()

	boards := make([]protocol.PublishedBoard, 0, len(h.boards))
	for _, b := range h.boards {
		boards = append(boards, b)
	}
	sort.Slice(boards, func(i, j int) bool { return boards[i].ClientID < boards[j].ClientID })
	return boards
}

// watcherList must be called with h.mu held.
func (h *Hub) watcherList() []*Conn {
	list := make([]*Conn, 0, len(h.watchers))
	for _, w := range h.watchers {
		list = append(list, w)
	}
	return list
}

// BroadcastFeed sends the current feed to every watcher.
func (h *Hub) BroadcastFeed() {
	boards := h.Feed()

	h.mu.RLock()
	watchers := h.watcherList()
	h.mu.RUnlock()

	if len(watchers) == 0 {
		return
	}
	env := protocol.Envelope{
		Type:    protocol.MsgFeedUpdate,
		Payload: protocol.FeedUpdatePayload{Boards: boards},
	}
	for _, w := range watchers {
		w.Send(env)
	}
}

// Run broadcasts the feed on a fixed cadence until stop closes.
func (h *Hub) Run(stop <-chan struct{}) {
	ticker := time.NewTicker(FeedInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			h.BroadcastFeed()
		case <-stop:
			return
		}
	}
}
