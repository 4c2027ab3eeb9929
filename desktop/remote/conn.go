package remote

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/wricardo/mcp-training/rushhour/game/engine"
	ws "github.com/wricardo/mcp-training/rushhour/transport/websocket"
)

const writeWait = 5 * time.Second

// Update is one decoded server frame
type Update struct {
	Event string
	State *engine.GameState
	// Engine is set for frames carrying an engine event
	Engine *engine.Event
	// Error is set for "error" replies to a gesture
	Error string
}

type frame struct {
	SessionID string            `json:"session_id"`
	GameState *engine.GameState `json:"game_state,omitempty"`
	Event     string            `json:"event,omitempty"`
	Data      json.RawMessage   `json:"data,omitempty"`
}

// Conn is a session-scoped WebSocket
type Conn struct {
	sessionID string
	conn      *websocket.Conn
	writeMu   sync.Mutex
}

// WebSocketURL turns the REST base URL into the /ws endpoint for a session
func WebSocketURL(baseURL, sessionID string) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", err
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	case "http", "":
		u.Scheme = "ws"
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + "/ws"
	q := u.Query()
	q.Set("session", sessionID)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// Dial opens the WebSocket of a session
func (c *Client) Dial(sessionID string) (*Conn, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("no session ID set")
	}
	target, err := WebSocketURL(c.baseURL, sessionID)
	if err != nil {
		return nil, err
	}

	conn, _, err := websocket.DefaultDialer.Dial(target, nil)
	if err != nil {
		return nil, err
	}
	logrus.WithField("session_id", sessionID).Info("WebSocket connected")
	return &Conn{sessionID: sessionID, conn: conn}, nil
}

func (c *Conn) SessionID() string {
	return c.sessionID
}

// Send writes one gesture message
func (c *Conn) Send(msg ws.ClientMessage) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteJSON(msg)
}

// Listen reads frames until the connection fails, handing each decoded
// frame to fn. Frames that do not parse are logged and skipped.
func (c *Conn) Listen(fn func(Update)) error {
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return err
		}

		update, err := decodeFrame(data)
		if err != nil {
			logrus.WithError(err).Warn("WebSocket JSON parse error")
			continue
		}
		fn(update)
	}
}

func decodeFrame(data []byte) (Update, error) {
	var f frame
	if err := json.Unmarshal(data, &f); err != nil {
		return Update{}, err
	}

	update := Update{Event: f.Event, State: f.GameState}
	switch f.Event {
	case ws.EventError:
		var payload struct {
			Error string `json:"error"`
		}
		if err := json.Unmarshal(f.Data, &payload); err == nil && payload.Error != "" {
			update.Error = payload.Error
		} else {
			update.Error = strings.Trim(string(f.Data), `"`)
		}
	case ws.EventReply:
		var reply struct {
			GameState *engine.GameState `json:"game_state"`
		}
		if err := json.Unmarshal(f.Data, &reply); err == nil && update.State == nil {
			update.State = reply.GameState
		}
	case ws.EventStateUpdate, "":
	default:
		if len(f.Data) > 0 {
			var ev engine.Event
			if err := json.Unmarshal(f.Data, &ev); err != nil {
				return Update{}, fmt.Errorf("event %s: %w", f.Event, err)
			}
			update.Engine = &ev
		}
	}
	return update, nil
}

func (c *Conn) Close() error {
	return c.conn.Close()
}
