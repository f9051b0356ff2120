package main

import (
	"encoding/json"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
	"github.com/mlev/stackfall/internal/protocol"
	"github.com/mlev/stackfall/internal/server"
)

const (
	defaultPort    = "8080"
	pongWait       = 60 * time.Second
	maxMessageSize = 16384
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// handleConnection upgrades the socket and runs it in its requested
// role until it drops. Publishers upload snapshots; watchers only
// receive the feed.
func handleConnection(hub *server.Hub, w http.ResponseWriter, r *http.Request) {
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("upgrade error: %v", err)
		return
	}

	id := hub.NextClientID()
	conn := server.NewConn(id, ws)
	conn.StartWritePump()
	conn.Send(protocol.Envelope{
		Type:    protocol.MsgAssignID,
		Payload: protocol.AssignIDPayload{ClientID: id},
	})

	role := r.URL.Query().Get("role")
	if role == "watch" {
		hub.AddWatcher(conn)
		log.Printf("watcher %s connected", id)
		readPump(ws, id, nil)
		hub.RemoveWatcher(id)
		conn.Close()
		log.Printf("watcher %s disconnected", id)
		return
	}

	log.Printf("publisher %s connected", id)
	readPump(ws, id, func(env envelope) {
		if env.Type != protocol.MsgPublish {
			log.Printf("unknown message type from %s: %s", id, env.Type)
			return
		}
		var payload protocol.PublishPayload
		if err := json.Unmarshal(env.Payload, &payload); err != nil {
			log.Printf("bad publish payload from %s: %v", id, err)
			return
		}
		hub.Publish(id, payload)
	})
	hub.RemovePublisher(id)
	conn.Close()
	log.Printf("publisher %s disconnected", id)
}

type envelope struct {
	Type    protocol.MessageType `json:"type"`
	Payload json.RawMessage      `json:"payload"`
}

// readPump reads until the connection drops, passing each parsed
// envelope to handle (nil for watchers, whose messages are ignored).
func readPump(ws *websocket.Conn, id string, handle func(envelope)) {
	defer ws.Close()

	ws.SetReadLimit(maxMessageSize)
	ws.SetReadDeadline(time.Now().Add(pongWait))
	ws.SetPongHandler(func(string) error {
		ws.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("read error for %s: %v", id, err)
			}
			return
		}
		if handle == nil {
			continue
		}

		var env envelope
		if err := json.Unmarshal(message, &env); err != nil {
			log.Printf("unmarshal error from %s: %v", id, err)
			continue
		}
		handle(env)
	}
}

func main() {
	port := os.Getenv("PORT")
	if port == "" {
		port = defaultPort
	}

	hub := server.NewHub()
	stop := make(chan struct{})
	go hub.Run(stop)

	http.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		handleConnection(hub, w, r)
	})

	http.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	log.Printf("Stackfall feed server starting on :%s", port)
	log.Printf("WebSocket endpoint: ws://localhost:%s/ws (role=play|watch)", port)

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		if err := http.ListenAndServe(":"+port, nil); err != nil {
			log.Fatalf("server error: %v", err)
		}
	}()

	<-done
	close(stop)
	log.Println("Server shutting down...")
}
