// Package remote connects the desktop client to a Rush Hour server: REST
// calls for session management and a WebSocket for live state and the
// pointer stream.
package remote

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/wricardo/mcp-training/rushhour/game/engine"
)

// SessionItem is one row of the server's session list
type SessionItem struct {
	ID        string            `json:"id"`
	LevelID   string            `json:"level_id"`
	CreatedAt time.Time         `json:"created_at"`
	GameState *engine.GameState `json:"game_state"`
}

// LevelItem is one row of the server's level list
type LevelItem struct {
	LevelID     string `json:"level_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	MinMoves    int    `json:"min_moves,omitempty"`
}

// Client is the REST half of the connection
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) get(path string, out any) error {
	resp, err := c.http.Get(c.baseURL + path)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return decode(resp, out)
}

func (c *Client) post(path string, body, out any) error {
	var payload []byte
	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			return err
		}
	}

	resp, err := c.http.Post(c.baseURL+path, "application/json", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return decode(resp, out)
}

func decode(resp *http.Response, out any) error {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode >= http.StatusBadRequest {
		var apiErr struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("%s: %s", resp.Status, apiErr.Error)
		}
		return fmt.Errorf("%s", resp.Status)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse response: %v (body: %s)", err, string(body))
	}
	return nil
}

func sessionPath(sessionID, suffix string) string {
	return "/api/sessions/" + url.PathEscape(sessionID) + suffix
}

// CreateSession starts a session on levelID, or the server default when
// levelID is empty, and returns its id
func (c *Client) CreateSession(levelID string) (string, error) {
	var body any
	if levelID != "" {
		body = map[string]string{"level_id": levelID}
	}

	var result SessionItem
	if err := c.post("/api/sessions", body, &result); err != nil {
		return "", fmt.Errorf("create session: %w", err)
	}
	return result.ID, nil
}

func (c *Client) ListSessions() ([]SessionItem, error) {
	var result struct {
		Sessions []SessionItem `json:"sessions"`
	}
	if err := c.get("/api/sessions?limit=9", &result); err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return result.Sessions, nil
}

func (c *Client) ListLevels() ([]LevelItem, error) {
	var levels []LevelItem
	if err := c.get("/api/levels", &levels); err != nil {
		return nil, fmt.Errorf("list levels: %w", err)
	}
	return levels, nil
}

func (c *Client) State(sessionID string) (*engine.GameState, error) {
	var state engine.GameState
	if err := c.get(sessionPath(sessionID, "/state"), &state); err != nil {
		return nil, fmt.Errorf("get state: %w", err)
	}
	return &state, nil
}

func (c *Client) Reset(sessionID string) (*engine.GameState, error) {
	var result struct {
		State *engine.GameState `json:"state"`
	}
	if err := c.post(sessionPath(sessionID, "/reset"), nil, &result); err != nil {
		return nil, fmt.Errorf("reset: %w", err)
	}
	return result.State, nil
}

// LoadLevel switches an existing session to another level
func (c *Client) LoadLevel(sessionID, levelID string) (*engine.GameState, error) {
	var state engine.GameState
	if err := c.post(sessionPath(sessionID, "/level"), map[string]string{"level_id": levelID}, &state); err != nil {
		return nil, fmt.Errorf("load level: %w", err)
	}
	return &state, nil
}
