package websocket

import (
	"net/http"
	"sync"
	"time"

	"sabhahub/logging"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	// Presentation clients connect from display machines on the chamber LAN.
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Message is the envelope for every event on the live channel.
type Message struct {
	Type string                 `json:"type"`
	Data map[string]interface{} `json:"data,omitempty"`
}

// Client is one connected presentation client.
type Client struct {
	Conn        *websocket.Conn
	ConnectedAt time.Time
}

// MemberResolver looks up the display payload for a seat. Injected so the hub
// stays free of storage concerns.
type MemberResolver func(seatNo int) (map[string]interface{}, bool)

// Hub fans events out to every connected presentation client.
type Hub struct {
	mu            sync.Mutex
	clients       map[*websocket.Conn]*Client
	resolveMember MemberResolver
}

func NewHub(resolver MemberResolver) *Hub {
	return &Hub{
		clients:       make(map[*websocket.Conn]*Client),
		resolveMember: resolver,
	}
}

// Broadcast sends an event to all connected clients. Write failures only
// log; a dead display must not disturb the proceeding.
func (h *Hub) Broadcast(eventType string, data map[string]interface{}) {
	msg := Message{Type: eventType, Data: data}

	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.clients {
		if err := conn.WriteJSON(msg); err != nil {
			logging.Log.Errorf("WebSocket write error: %v", err)
		}
	}
}

// ClientCount reports the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Handler upgrades the connection and services the client until it drops.
func (h *Hub) Handler(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logging.Log.Errorf("WebSocket upgrade error: %v", err)
		return
	}

	client := &Client{Conn: conn, ConnectedAt: time.Now()}
	h.mu.Lock()
	h.clients[conn] = client
	total := len(h.clients)
	h.mu.Unlock()
	logging.Log.Infof("Presentation client connected (total clients: %d)", total)

	h.writeTo(conn, Message{Type: "connected", Data: map[string]interface{}{
		"status": "Connected to Chamber Server",
	}})

	for {
		var msg Message
		if err := conn.ReadJSON(&msg); err != nil {
			h.mu.Lock()
			delete(h.clients, conn)
			remaining := len(h.clients)
			h.mu.Unlock()
			conn.Close()
			logging.Log.Infof("Presentation client disconnected (total clients: %d)", remaining)
			return
		}

		switch msg.Type {
		case "request_member":
			h.handleRequestMember(conn, msg)
		case "timer_update":
			// The controlling console pushes timer state; mirror it to
			// every display as timer_sync.
			h.Broadcast("timer_sync", msg.Data)
		case "select_chairperson":
			h.Broadcast("chairperson_update", msg.Data)
		default:
			logging.Log.Warnf("Unknown live-channel message type %q", msg.Type)
		}
	}
}

func (h *Hub) handleRequestMember(conn *websocket.Conn, msg Message) {
	seatNo, ok := numberField(msg.Data, "seat_no")
	if !ok {
		h.writeTo(conn, Message{Type: "member_data", Data: map[string]interface{}{
			"success": false, "error": "seat_no is required",
		}})
		return
	}

	member, found := h.resolveMember(seatNo)
	if !found {
		h.writeTo(conn, Message{Type: "member_data", Data: map[string]interface{}{
			"success": false, "error": "Member not found",
		}})
		return
	}
	h.writeTo(conn, Message{Type: "member_data", Data: map[string]interface{}{
		"success": true, "data": member,
	}})
}

func (h *Hub) writeTo(conn *websocket.Conn, msg Message) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if err := conn.WriteJSON(msg); err != nil {
		logging.Log.Errorf("WebSocket write error: %v", err)
	}
}

func numberField(data map[string]interface{}, key string) (int, bool) {
	if data == nil {
		return 0, false
	}
	switch v := data[key].(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	}
	return 0, false
}
