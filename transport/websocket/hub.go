package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/wricardo/mcp-training/rushhour/game/engine"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 512

	// Pending broadcasts before new ones are dropped.
	broadcastBuffer = 256

	// Time allowed for the inbound handler to answer one client message.
	inboundTimeout = 5 * time.Second
)

// Client message types
const (
	TypeDragStart = "drag_start"
	TypeDragMove  = "drag_move"
	TypeDragEnd   = "drag_end"
)

// Outgoing event names that are not engine events
const (
	EventStateUpdate = "state_update"
	EventReply       = "reply"
	EventError       = "error"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Message represents an outgoing WebSocket message
type Message struct {
	SessionID string            `json:"session_id"`
	GameState *engine.GameState `json:"game_state,omitempty"`
	Event     string            `json:"event,omitempty"`
	Data      interface{}       `json:"data,omitempty"`
}

// ClientMessage is a pointer gesture sent by a browser client
type ClientMessage struct {
	Type      string  `json:"type"`
	VehicleID string  `json:"vehicle_id,omitempty"`
	Pointer   float64 `json:"pointer"`
	CellSize  float64 `json:"cell_size,omitempty"`
}

// InboundHandler processes one client message for a session. The returned
// value is sent back to that client only.
type InboundHandler func(ctx context.Context, sessionID string, msg ClientMessage) (interface{}, error)

// Client represents a WebSocket client
type Client struct {
	hub       *Hub
	conn      *websocket.Conn
	send      chan []byte
	sessionID string
}

type directMessage struct {
	client *Client
	data   []byte
}

// Hub maintains the set of active clients and broadcasts messages. All
// client bookkeeping happens on the Run goroutine.
type Hub struct {
	// Registered clients by session ID
	sessions map[string]map[*Client]bool

	// Messages fanned out to every client of a session
	broadcast chan *Message

	// Replies to a single client
	direct chan directMessage

	// Register requests from clients
	register chan *Client

	// Unregister requests from clients
	unregister chan *Client

	// Client count queries
	count chan countRequest

	// Closed when Run returns
	done chan struct{}

	inbound InboundHandler
	metrics *hubMetrics
}

type countRequest struct {
	sessionID string
	reply     chan int
}

// NewHub creates a new WebSocket hub
func NewHub() *Hub {
	return &Hub{
		sessions:   make(map[string]map[*Client]bool),
		broadcast:  make(chan *Message, broadcastBuffer),
		direct:     make(chan directMessage, broadcastBuffer),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		count:      make(chan countRequest),
		done:       make(chan struct{}),
		metrics:    newHubMetrics(),
	}
}

// SetInboundHandler installs the handler for client gestures. Must be
// called before serving connections.
func (h *Hub) SetInboundHandler(handler InboundHandler) {
	h.inbound = handler
}

// Run starts the hub's event loop. It returns when ctx is done, closing
// every client.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			close(h.done)
			for _, clients := range h.sessions {
				for client := range clients {
					h.unregisterClient(client)
				}
			}
			return

		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case message := <-h.broadcast:
			h.broadcastMessage(message)

		case dm := <-h.direct:
			h.sendDirect(dm)

		case req := <-h.count:
			req.reply <- len(h.sessions[req.sessionID])
		}
	}
}

// ServeWS handles WebSocket requests from clients
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, sessionID string) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logrus.WithError(err).Warn("websocket upgrade failed")
		return
	}

	client := &Client{
		hub:       h,
		conn:      conn,
		send:      make(chan []byte, 256),
		sessionID: sessionID,
	}

	select {
	case h.register <- client:
	case <-h.done:
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

// ClientCount returns the number of clients watching a session. Requires
// Run to be running.
func (h *Hub) ClientCount(sessionID string) int {
	reply := make(chan int, 1)
	select {
	case h.count <- countRequest{sessionID: sessionID, reply: reply}:
		return <-reply
	case <-h.done:
		return 0
	}
}

// BroadcastToSession sends a game state update to all clients in a session
func (h *Hub) BroadcastToSession(sessionID string, state *engine.GameState) {
	h.enqueue(&Message{
		SessionID: sessionID,
		GameState: state,
		Event:     EventStateUpdate,
	})
}

// BroadcastEvent sends a custom event to all clients in a session
func (h *Hub) BroadcastEvent(sessionID string, event string, data interface{}) {
	h.enqueue(&Message{
		SessionID: sessionID,
		Event:     event,
		Data:      data,
	})
}

// PublishEvent forwards an engine event to the session's clients
func (h *Hub) PublishEvent(sessionID string, ev engine.Event) {
	h.BroadcastEvent(sessionID, string(ev.Type), ev)
}

// enqueue never blocks; callers may hold the game service lock
func (h *Hub) enqueue(message *Message) {
	select {
	case h.broadcast <- message:
	default:
		h.metrics.recordDropped()
		logrus.WithFields(logrus.Fields{
			"session_id": message.SessionID,
			"event":      message.Event,
		}).Warn("websocket broadcast queue full, dropping message")
	}
}

// registerClient adds a client to a session
func (h *Hub) registerClient(client *Client) {
	if h.sessions[client.sessionID] == nil {
		h.sessions[client.sessionID] = make(map[*Client]bool)
	}
	h.sessions[client.sessionID][client] = true
	h.metrics.clientDelta(1)

	logrus.WithFields(logrus.Fields{
		"session_id": client.sessionID,
		"clients":    len(h.sessions[client.sessionID]),
	}).Debug("websocket client registered")
}

// unregisterClient removes a client from a session
func (h *Hub) unregisterClient(client *Client) {
	if clients, ok := h.sessions[client.sessionID]; ok {
		if _, ok := clients[client]; ok {
			delete(clients, client)
			close(client.send)
			h.metrics.clientDelta(-1)

			// Clean up empty sessions
			if len(clients) == 0 {
				delete(h.sessions, client.sessionID)
			}

			logrus.WithFields(logrus.Fields{
				"session_id": client.sessionID,
				"clients":    len(clients),
			}).Debug("websocket client unregistered")
		}
	}
}

// broadcastMessage sends a message to all clients in a session
func (h *Hub) broadcastMessage(message *Message) {
	data, err := json.Marshal(message)
	if err != nil {
		logrus.WithError(err).Error("failed to marshal broadcast message")
		return
	}

	sent := 0
	for client := range h.sessions[message.SessionID] {
		select {
		case client.send <- data:
			sent++
		default:
			// Client's send channel is full, close it
			h.unregisterClient(client)
		}
	}
	h.metrics.recordSent(sent)
}

// sendDirect delivers a reply if the client is still registered
func (h *Hub) sendDirect(dm directMessage) {
	if !h.sessions[dm.client.sessionID][dm.client] {
		return
	}
	select {
	case dm.client.send <- dm.data:
	default:
		h.unregisterClient(dm.client)
	}
}

// handleClientMessage decodes one inbound frame and queues the reply
func (h *Hub) handleClientMessage(c *Client, raw []byte) {
	reply := &Message{SessionID: c.sessionID, Event: EventReply}

	var msg ClientMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		reply.Event = EventError
		reply.Data = map[string]string{"error": "invalid message: " + err.Error()}
	} else if h.inbound == nil {
		reply.Event = EventError
		reply.Data = map[string]string{"error": "client messages are not accepted"}
	} else {
		ctx, cancel := context.WithTimeout(context.Background(), inboundTimeout)
		result, err := h.inbound(ctx, c.sessionID, msg)
		cancel()
		if err != nil {
			reply.Event = EventError
			reply.Data = map[string]string{"type": msg.Type, "error": err.Error()}
		} else {
			reply.Data = result
		}
	}

	data, err := json.Marshal(reply)
	if err != nil {
		logrus.WithError(err).Error("failed to marshal reply")
		return
	}
	select {
	case h.direct <- directMessage{client: c, data: data}:
	case <-h.done:
	}
}

// readPump pumps messages from the WebSocket connection to the hub
func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
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
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logrus.WithError(err).WithField("session_id", c.sessionID).Warn("websocket read error")
			}
			break
		}
		c.hub.handleClientMessage(c, raw)
	}
}

// writePump pumps messages from the hub to the WebSocket connection
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			// One JSON document per frame
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
