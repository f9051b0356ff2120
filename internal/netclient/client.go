package netclient

import (
	"encoding/json"
	"fmt"
	"log"
	"net/url"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/gorilla/websocket"
	"github.com/mlev/stackfall/internal/protocol"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingInterval   = (pongWait * 9) / 10
	maxMessageSize = 16384
)

// Role selects which side of the feed a connection is on. Publishers
// upload snapshots; watchers only receive.
type Role string

const (
	RolePlay  Role = "play"
	RoleWatch Role = "watch"
)

// --- tea.Msg types delivered to the program ---

// ConnectedMsg carries the ID the server assigned this connection.
type ConnectedMsg struct {
	ClientID string
}

// FeedMsg is a full spectator feed update.
type FeedMsg struct {
	Boards []protocol.PublishedBoard
}

// BoardClosedMsg reports that a publisher left the feed.
type BoardClosedMsg struct {
	ClientID string
}

// DisconnectedMsg is sent when the connection is lost.
type DisconnectedMsg struct {
	Err error
}

// Client is a feed-server connection for either role. A playing client
// pushes engine snapshots through Publish; a watching client consumes
// FeedMsg and BoardClosedMsg. Incoming traffic arrives at the
// bubbletea program already decoded.
type Client struct {
	mu      sync.Mutex
	conn    *websocket.Conn
	outbox  chan []byte
	program *tea.Program
	done    chan struct{}
	closed  bool
}

// feedURL attaches the role to the server URL's query string.
func feedURL(serverURL string, role Role) (string, error) {
	u, err := url.Parse(serverURL)
	if err != nil {
		return "", fmt.Errorf("bad server url %q: %w", serverURL, err)
	}
	q := u.Query()
	q.Set("role", string(role))
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// New dials the feed server in the given role.
func New(serverURL string, role Role) (*Client, error) {
	target, err := feedURL(serverURL, role)
	if err != nil {
		return nil, err
	}
	conn, _, err := websocket.DefaultDialer.Dial(target, nil)
	if err != nil {
		return nil, err
	}

	return &Client{
		conn:   conn,
		outbox: make(chan []byte, 64),
		done:   make(chan struct{}),
	}, nil
}

// SetProgram sets the bubbletea program that receives decoded messages.
func (c *Client) SetProgram(p *tea.Program) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.program = p
}

// Start launches the read and write pumps.
func (c *Client) Start() {
	go c.writePump()
	go c.readPump()
}

// Publish queues one engine snapshot. Snapshots supersede each other,
// so when the outbox is backed up the stale one is discarded in favor
// of the new.
func (c *Client) Publish(p protocol.PublishPayload) {
	data, err := json.Marshal(protocol.Envelope{
		Type:    protocol.MsgPublish,
		Payload: p,
	})
	if err != nil {
		log.Printf("snapshot encode failed: %v", err)
		return
	}

	select {
	case c.outbox <- data:
		return
	default:
	}
	select {
	case <-c.outbox:
	default:
	}
	select {
	case c.outbox <- data:
	default:
	}
}

// Close shuts down the connection.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.done)
	c.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	c.conn.Close()
}

// decodeServerMessage maps a wire envelope to its tea.Msg. A nil msg
// with nil error means the type is not one this client consumes.
func decodeServerMessage(raw []byte) (tea.Msg, error) {
	var env struct {
		Type    protocol.MessageType `json:"type"`
		Payload json.RawMessage      `json:"payload"`
	}
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, err
	}

	switch env.Type {
	case protocol.MsgAssignID:
		var p protocol.AssignIDPayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			return nil, err
		}
		return ConnectedMsg{ClientID: p.ClientID}, nil
	case protocol.MsgFeedUpdate:
		var p protocol.FeedUpdatePayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			return nil, err
		}
		return FeedMsg{Boards: p.Boards}, nil
	case protocol.MsgBoardClosed:
		var p protocol.BoardClosedPayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			return nil, err
		}
		return BoardClosedMsg{ClientID: p.ClientID}, nil
	}
	return nil, nil
}

// readPump decodes server messages and hands them to the program.
func (c *Client) readPump() {
	defer func() {
		c.mu.Lock()
		p := c.program
		c.mu.Unlock()
		if p != nil {
			p.Send(DisconnectedMsg{})
		}
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("feed read error: %v", err)
			}
			return
		}

		msg, err := decodeServerMessage(raw)
		if err != nil {
			log.Printf("feed decode error: %v", err)
			continue
		}
		if msg == nil {
			continue
		}

		c.mu.Lock()
		p := c.program
		c.mu.Unlock()
		if p != nil {
			p.Send(msg)
		}
	}
}

// writePump drains the outbox onto the socket and keeps it pinged.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case data := <-c.outbox:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.done:
			return
		}
	}
}
