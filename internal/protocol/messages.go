package protocol

// MessageType identifies the kind of message sent over the wire.
type MessageType string

const (
	// Server -> Client messages
	MsgAssignID    MessageType = "assign_id"
	MsgFeedUpdate  MessageType = "feed_update"
	MsgBoardClosed MessageType = "board_closed"

	// Client -> Server messages
	MsgPublish MessageType = "publish"
)

// Envelope is the top-level wire format for all messages.
type Envelope struct {
	Type    MessageType `json:"type"`
	Payload interface{} `json:"payload"`
}

// --- Server -> Client payloads ---

// AssignIDPayload is sent when a client first connects.
type AssignIDPayload struct {
	ClientID string `json:"client_id"`
}

// PublishedBoard is one player's board as the spectator feed shows it.
// The feed is strictly read-only: nothing a watcher sends can reach a
// running game.
type PublishedBoard struct {
	ClientID string `json:"client_id"`
	Name     string `json:"name"`
	Score    int    `json:"score"`
	// Stats holds per-shape spawn counters, indexed I=0 through L=6.
	Stats     [7]int `json:"stats"`
	NextShape int    `json:"next_shape"` // shape index, or -1 when unknown
	GameOver  bool   `json:"game_over"`
	// Board is a flat row-major array of BoardHeight*BoardWidth cell
	// values (0 = empty, 1..7 = shape index + 1).
	Board []int `json:"board"`
}

// FeedUpdatePayload carries every currently published board.
type FeedUpdatePayload struct {
	Boards []PublishedBoard `json:"boards"`
}

// BoardClosedPayload tells watchers a publisher went away.
type BoardClosedPayload struct {
	ClientID string `json:"client_id"`
}

// --- Client -> Server payloads ---

// PublishPayload is a playing client's snapshot of its engine state.
type PublishPayload struct {
	Name      string `json:"name"`
	Score     int    `json:"score"`
	Stats     [7]int `json:"stats"`
	NextShape int    `json:"next_shape"`
	GameOver  bool   `json:"game_over"`
	Board     []int  `json:"board"`
}
