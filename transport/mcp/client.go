package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/wricardo/mcp-training/rushhour/game/engine"
	"github.com/wricardo/mcp-training/rushhour/game/service"
)

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Rush Hour",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Rush Hour - MCP Interface

This is a thin client that proxies all requests to the REST API server.

GAME OBJECTIVE:
Slide the red car out through the exit on the right edge of row 2. Vehicles
only move along their own axis and never pass through each other.

AVAILABLE TOOLS:
- create_session: Create new game session (optionally on a specific level)
- list_sessions / get_session: Inspect sessions
- game_state: Board, vehicles and win status
- slide: Move one vehicle a number of cells - requires intent explanation
- load_level: Switch the session to another level
- reset_game: Restore the level's starting layout
- move_history: View past moves
- hint: Next move of a shortest solution
- describe_cell: What occupies a given cell
- list_levels: Available levels with their minimum move counts
- game_instructions: Full rules

NOTE: The 'intent' parameter on the slide tool serves as rubber duck debugging - explain your reasoning!`),
	)

	c.registerTools()
}

func sessionProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Session ID",
	}
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	// Session management
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "create_session",
		Description: "Create a new game session with optional level selection",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"level_id": map[string]interface{}{
					"type":        "string",
					"description": "Level to play, e.g. level2 (optional, defaults to the server's default level)",
				},
			},
		},
	}, c.handleCreateSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_sessions",
		Description: "List all active game sessions",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListSessions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_session",
		Description: "Get details of a specific session",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleGetSession)

	// Game operations
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_state",
		Description: "Get the current board, vehicles and win status",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleGameState)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "slide",
		Description: "Slide a vehicle along its axis. Positive cells move right (horizontal) or down (vertical), negative cells move left or up. The vehicle stops at the first blocked cell.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
				"vehicle_id": map[string]interface{}{
					"type":        "string",
					"description": "Vehicle to move, e.g. red, h1, v2",
				},
				"cells": map[string]interface{}{
					"type":        "integer",
					"description": "Signed number of cells to move",
				},
				"intent": map[string]interface{}{
					"type":        "string",
					"description": "Brief explanation of the intent behind this move (serves as a rubber duck to help explain your reasoning)",
				},
			},
			Required: []string{"session_id", "vehicle_id", "cells"},
		},
	}, c.handleSlide)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "load_level",
		Description: "Load another level into the session, replacing the board and clearing the history",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
				"level_id": map[string]interface{}{
					"type":        "string",
					"description": "Level to load (see list_levels)",
				},
			},
			Required: []string{"session_id", "level_id"},
		},
	}, c.handleLoadLevel)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "reset_game",
		Description: "Reset the board to the level's starting layout",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleReset)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "move_history",
		Description: "Get move history for a session",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
				"page": map[string]interface{}{
					"type":        "integer",
					"description": "Page number",
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Items per page",
				},
				"order": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"asc", "desc"},
					"description": "Sort order (default desc, newest first)",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleMoveHistory)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "hint",
		Description: "Get the next move of a shortest solution from the current board",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleHint)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "describe_cell",
		Description: "Describe what occupies a cell: which vehicle, its orientation and how far it can move",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
				"x": map[string]interface{}{
					"type":        "integer",
					"description": "Column (0-5)",
				},
				"y": map[string]interface{}{
					"type":        "integer",
					"description": "Row (0-5)",
				},
			},
			Required: []string{"session_id", "x", "y"},
		},
	}, c.handleDescribeCell)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_levels",
		Description: "List available levels",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListLevels)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_instructions",
		Description: "Get comprehensive game instructions and rules",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleGameInstructions)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// Helper methods for API calls

func (c *Client) apiCall(method, path string, body interface{}, result interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequest(method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp map[string]string
		json.NewDecoder(resp.Body).Decode(&errResp)
		if msg, ok := errResp["error"]; ok {
			return fmt.Errorf("%s", msg)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}

	return nil
}

func arguments(request mcp.CallToolRequest) map[string]interface{} {
	args, _ := request.Params.Arguments.(map[string]interface{})
	if args == nil {
		return map[string]interface{}{}
	}
	return args
}

func sessionPath(sessionID, suffix string) string {
	return "/api/sessions/" + url.PathEscape(sessionID) + suffix
}

// intArg accepts JSON numbers, which arrive as float64
func intArg(args map[string]interface{}, key string) (int, bool) {
	switch v := args[key].(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	}
	return 0, false
}

// Tool handlers

func (c *Client) handleCreateSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	levelID, _ := args["level_id"].(string)

	body := map[string]string{}
	if levelID != "" {
		body["level_id"] = levelID
	}

	var session service.SessionInfo
	err := c.apiCall("POST", "/api/sessions", body, &session)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Created session: %s\nLevel: %s\n\n%s", session.ID, session.LevelID, formatGameState(session.GameState))
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count    int                   `json:"count"`
		Sessions []service.SessionInfo `json:"sessions"`
	}

	err := c.apiCall("GET", "/api/sessions", nil, &response)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Active Sessions (%d):\n\n", response.Count)
	for _, s := range response.Sessions {
		status := ""
		if s.GameState != nil && s.GameState.Won {
			status = ", won"
		}
		result += fmt.Sprintf("- %s (Level: %s, Created: %s%s)\n",
			s.ID, s.LevelID, s.CreatedAt.Format("15:04:05"), status)
	}

	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleGetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, _ := arguments(request)["session_id"].(string)

	var session service.SessionInfo
	err := c.apiCall("GET", sessionPath(sessionID, ""), nil, &session)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSessionInfo(&session)), nil
}

func (c *Client) handleGameState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, _ := arguments(request)["session_id"].(string)

	var state engine.GameState
	err := c.apiCall("GET", sessionPath(sessionID, "/state"), nil, &state)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatGameState(&state)), nil
}

func (c *Client) handleSlide(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, _ := args["session_id"].(string)
	vehicleID, _ := args["vehicle_id"].(string)
	cells, ok := intArg(args, "cells")
	if !ok {
		return mcp.NewToolResultError("cells must be an integer"), nil
	}

	// Intent parameter serves as rubber duck debugging - we don't need to process it further
	_ = args["intent"]

	body := map[string]interface{}{
		"vehicle_id": vehicleID,
		"cells":      cells,
	}

	var result service.SlideResult
	err := c.apiCall("POST", sessionPath(sessionID, "/slide"), body, &result)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSlideResult(&result)), nil
}

func (c *Client) handleLoadLevel(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, _ := args["session_id"].(string)
	levelID, _ := args["level_id"].(string)

	var state engine.GameState
	err := c.apiCall("POST", sessionPath(sessionID, "/level"), map[string]string{"level_id": levelID}, &state)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Loaded %s\n\n%s", levelID, formatGameState(&state))), nil
}

func (c *Client) handleReset(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, _ := arguments(request)["session_id"].(string)

	var response struct {
		Message string            `json:"message"`
		State   *engine.GameState `json:"state"`
	}

	err := c.apiCall("POST", sessionPath(sessionID, "/reset"), nil, &response)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("%s\n\n%s", response.Message, formatGameState(response.State))
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleMoveHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, _ := args["session_id"].(string)

	params := url.Values{}
	if page, ok := intArg(args, "page"); ok {
		params.Set("page", fmt.Sprint(page))
	}
	if limit, ok := intArg(args, "limit"); ok {
		params.Set("limit", fmt.Sprint(limit))
	}
	if order, ok := args["order"].(string); ok && order != "" {
		params.Set("order", order)
	}

	path := sessionPath(sessionID, "/history")
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	var history service.HistoryResponse
	err := c.apiCall("GET", path, nil, &history)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatHistory(&history)), nil
}

func (c *Client) handleHint(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, _ := arguments(request)["session_id"].(string)

	var hint service.HintResult
	err := c.apiCall("GET", sessionPath(sessionID, "/hint"), nil, &hint)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatHint(&hint)), nil
}

func (c *Client) handleDescribeCell(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, _ := args["session_id"].(string)
	x, okX := intArg(args, "x")
	y, okY := intArg(args, "y")
	if !okX || !okY {
		return mcp.NewToolResultError("x and y must be integers"), nil
	}

	if x < 0 || x >= engine.BoardWidth || y < 0 || y >= engine.BoardHeight {
		return mcp.NewToolResultError(fmt.Sprintf("Coordinates (%d, %d) are out of bounds. The board is %dx%d (0-%d for both x and y)",
			x, y, engine.BoardWidth, engine.BoardHeight, engine.BoardWidth-1)), nil
	}

	var state engine.GameState
	err := c.apiCall("GET", sessionPath(sessionID, "/state"), nil, &state)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(describeCell(&state, x, y)), nil
}

func (c *Client) handleListLevels(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var levels []service.LevelInfo
	err := c.apiCall("GET", "/api/levels", nil, &levels)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := "Available Levels:\n\n"
	for _, level := range levels {
		difficulty := "unsolvable"
		if level.Solvable {
			difficulty = fmt.Sprintf("solvable in %d moves", level.MinMoves)
		}
		result += fmt.Sprintf("• %s (%s)\n", level.LevelID, level.Name)
		if level.Description != "" {
			result += fmt.Sprintf("  %s\n", level.Description)
		}
		result += fmt.Sprintf("  Vehicles: %d, %s\n\n", level.VehicleCount, difficulty)
	}

	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleGameInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	instructions := `🚗 Rush Hour - Complete Instructions

GAME OBJECTIVE:
Get the red car out of the traffic jam through the exit on the right edge of
row 2.

THE BOARD:
• 6x6 grid, x is the column (0-5, left to right), y is the row (0-5, top to bottom)
• The exit is the gap in the right border of row 2 (marked ==> in game_state)
• Every vehicle is 2 or 3 cells long and is either horizontal or vertical

VEHICLES:
• red - the player car, horizontal on row 2, the only vehicle that may leave
• h1, h2, ... - horizontal vehicles, slide left/right
• v1, v2, ... - vertical vehicles, slide up/down

MOVING:
• slide(vehicle_id, cells): positive cells = right/down, negative = left/up
• A vehicle moves one cell at a time and stops at the first occupied cell
  or at the board edge. A blocked slide still reports how far it got.
• Vehicles never overlap and never rotate

WINNING:
• When the red car's front reaches the exit it drives off the board
• The game is then won and further moves are rejected
• load_level or reset_game starts again

🤖 AI AGENTS - STRATEGY:

1. **Read the board first**: call game_state and locate the red car and
   every vehicle sitting on row 2 between it and the exit.
2. **Work backwards**: for each blocker on row 2, ask which direction frees
   row 2 and what is in the way of that move. Recurse.
3. **Use describe_cell** when unsure which vehicle occupies a cell.
4. **Use hint** when stuck: it returns the next move of a shortest solution.
5. **Count moves**: list_levels shows the minimum number of moves for each
   level. A move is one slide of one vehicle, regardless of distance.

🚨 COMMON MISTAKES:
- ❌ Sliding a vertical vehicle with the intent to move it sideways
- ❌ Forgetting that 3-cell trucks need more room to clear row 2
- ❌ Assuming a blocked slide did nothing: check moved_cells

Good luck clearing the jam! 🚦`

	return mcp.NewToolResultText(instructions), nil
}

// Formatting helpers

func formatSessionInfo(session *service.SessionInfo) string {
	return fmt.Sprintf("Session: %s\nLevel: %s\nCreated: %s\n\n%s",
		session.ID, session.LevelID,
		session.CreatedAt.Format("2006-01-02 15:04:05"),
		formatGameState(session.GameState))
}

func vehicleCells(v *engine.Vehicle) []engine.Position {
	cells := make([]engine.Position, 0, v.Length)
	for i := 0; i < v.Length; i++ {
		if v.Orientation == engine.Horizontal {
			cells = append(cells, engine.Position{X: v.X + i, Y: v.Y})
		} else {
			cells = append(cells, engine.Position{X: v.X, Y: v.Y + i})
		}
	}
	return cells
}

// renderBoard draws the grid with vehicle ids in each cell. Cells past the
// right edge of the exit row are drawn after the exit marker.
func renderBoard(state *engine.GameState) string {
	var grid [engine.BoardHeight][engine.BoardWidth]string
	var exited []string
	for _, v := range state.Vehicles {
		for _, p := range vehicleCells(v) {
			if p.X >= 0 && p.X < engine.BoardWidth && p.Y >= 0 && p.Y < engine.BoardHeight {
				grid[p.Y][p.X] = v.ID
			} else if p.Y == engine.ExitRow && p.X >= engine.BoardWidth {
				exited = append(exited, v.ID)
			}
		}
	}

	var b strings.Builder
	b.WriteString("    ")
	for x := 0; x < engine.BoardWidth; x++ {
		b.WriteString(fmt.Sprintf("%-4d", x))
	}
	b.WriteString("\n")

	for y := 0; y < engine.BoardHeight; y++ {
		b.WriteString(fmt.Sprintf("%d | ", y))
		for x := 0; x < engine.BoardWidth; x++ {
			label := grid[y][x]
			if label == "" {
				label = "."
			}
			b.WriteString(fmt.Sprintf("%-4s", label))
		}
		if y == engine.ExitRow {
			b.WriteString("==> EXIT")
			if len(exited) > 0 {
				b.WriteString(" " + exited[0])
			}
		} else {
			b.WriteString("|")
		}
		b.WriteString("\n")
	}
	return b.String()
}

func formatGameState(state *engine.GameState) string {
	if state == nil {
		return "No game state available"
	}

	var result strings.Builder
	result.WriteString(fmt.Sprintf("Level: %s | Moves: %d | Status: %s\n\n",
		state.LevelName, state.TotalMoves, state.WinPhase))

	result.WriteString(renderBoard(state))

	vehicles := make([]*engine.Vehicle, len(state.Vehicles))
	copy(vehicles, state.Vehicles)
	sort.Slice(vehicles, func(i, j int) bool { return vehicles[i].ID < vehicles[j].ID })

	result.WriteString("\nVehicles:\n")
	for _, v := range vehicles {
		result.WriteString(fmt.Sprintf("- %s at (%d,%d), %s, length %d\n",
			v.ID, v.X, v.Y, v.Orientation, v.Length))
	}

	if state.Dragging != "" {
		result.WriteString(fmt.Sprintf("\nDragging: %s\n", state.Dragging))
	}

	switch state.WinPhase {
	case engine.WinWinning:
		result.WriteString("\n🏁 The red car is leaving the board!")
	case engine.WinWon:
		result.WriteString("\n🎉 VICTORY!")
	}

	if state.Message != "" {
		result.WriteString(fmt.Sprintf("\nMessage: %s", state.Message))
	}

	return result.String()
}

func formatSlideResult(result *service.SlideResult) string {
	var b strings.Builder

	status := "✓"
	if result.Blocked {
		status = "✗"
	}
	b.WriteString(fmt.Sprintf("%s %s (%d,%d)→(%d,%d) moved %d/%d cells\n",
		status, result.VehicleID, result.From.X, result.From.Y, result.To.X, result.To.Y,
		result.MovedCells, result.RequestedCells))

	if result.Message != "" {
		b.WriteString(result.Message + "\n")
	}

	if len(result.Events) > 0 {
		b.WriteString("Events:\n")
		for _, event := range result.Events {
			b.WriteString(fmt.Sprintf("- %s %s (%d,%d)\n", event.Type, event.VehicleID, event.Position.X, event.Position.Y))
		}
	}

	b.WriteString("\n" + formatGameState(result.GameState))
	return b.String()
}

func formatHint(hint *service.HintResult) string {
	if !hint.Solvable {
		return "No solution from the current board: " + hint.Message
	}
	if hint.Next == nil {
		return hint.Message
	}
	return fmt.Sprintf("Hint: slide %s by %d cells, (%d,%d)→(%d,%d)\nShortest solution: %d moves (%d states searched)",
		hint.Next.VehicleID, hint.Next.Cells,
		hint.Next.From.X, hint.Next.From.Y, hint.Next.To.X, hint.Next.To.Y,
		hint.MinMoves, hint.StatesVisited)
}

// describeCell reports the vehicle at (x,y) and its free range along its axis
func describeCell(state *engine.GameState, x, y int) string {
	occupied := map[engine.Position]string{}
	var found *engine.Vehicle
	for _, v := range state.Vehicles {
		for _, p := range vehicleCells(v) {
			occupied[p] = v.ID
			if p.X == x && p.Y == y {
				found = v
			}
		}
	}

	if found == nil {
		note := ""
		if y == engine.ExitRow {
			note = "\nThis cell is on the exit row."
		}
		return fmt.Sprintf("Cell at position (%d, %d):\n━━━━━━━━━━━━━━━━━━━━━━━━\nEmpty%s", x, y, note)
	}

	free := func(p engine.Position) bool {
		if p.X < 0 || p.Y < 0 || p.X >= engine.BoardWidth || p.Y >= engine.BoardHeight {
			return false
		}
		id, ok := occupied[p]
		return !ok || id == found.ID
	}

	dx, dy := 1, 0
	back, fwd := "left", "right"
	if found.Orientation == engine.Vertical {
		dx, dy = 0, 1
		back, fwd = "up", "down"
	}

	backward := 0
	for free(engine.Position{X: found.X - dx*(backward+1), Y: found.Y - dy*(backward+1)}) {
		backward++
	}
	forward := 0
	for free(engine.Position{X: found.X + dx*(found.Length+forward), Y: found.Y + dy*(found.Length+forward)}) {
		forward++
	}

	role := "Blocker"
	if found.Player {
		role = "Player car (must reach the exit)"
	}

	return fmt.Sprintf(`Cell at position (%d, %d):
━━━━━━━━━━━━━━━━━━━━━━━━
Vehicle: %s
Role: %s
Orientation: %s
Length: %d
Occupies: (%d,%d) to (%d,%d)
Free cells %s: %d
Free cells %s: %d`,
		x, y,
		found.ID,
		role,
		found.Orientation,
		found.Length,
		found.X, found.Y, found.X+dx*(found.Length-1), found.Y+dy*(found.Length-1),
		back, backward,
		fwd, forward)
}

func formatHistory(history *service.HistoryResponse) string {
	result := fmt.Sprintf("Move History (Page %d/%d) - Total: %d\n\n",
		history.Page, history.TotalPages, history.TotalMoves)

	if len(history.Moves) == 0 {
		return result + "(no moves yet)"
	}

	for _, move := range history.Moves {
		result += fmt.Sprintf("%d. %s (%d,%d)→(%d,%d)\n",
			move.MoveNumber, move.VehicleID,
			move.FromPosition.X, move.FromPosition.Y,
			move.ToPosition.X, move.ToPosition.Y)
	}

	return result
}
