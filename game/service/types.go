package service

import (
	"time"

	"github.com/wricardo/mcp-training/rushhour/game/engine"
)

// SessionInfo provides information about a game session
type SessionInfo struct {
	ID             string              `json:"id"`
	LevelID        string              `json:"level_id"`
	CreatedAt      time.Time           `json:"created_at"`
	LastAccessedAt time.Time           `json:"last_accessed_at"`
	GameState      *engine.GameState   `json:"game_state"`
	Level          *engine.LevelConfig `json:"level"`
}

// DragResult contains the outcome of one drag gesture step
type DragResult struct {
	Step      engine.DragStep   `json:"step"`
	Dragging  bool              `json:"dragging"`
	Won       bool              `json:"won"`
	WinPhase  engine.WinPhase   `json:"win_phase"`
	GameState *engine.GameState `json:"game_state"`
	Events    []engine.Event    `json:"events,omitempty"`
}

// SlideResult contains the result of a whole-cell slide
type SlideResult struct {
	Success        bool              `json:"success"`
	VehicleID      string            `json:"vehicle_id"`
	RequestedCells int               `json:"requested_cells"`
	MovedCells     int               `json:"moved_cells"`
	From           engine.Position   `json:"from"`
	To             engine.Position   `json:"to"`
	Blocked        bool              `json:"blocked"`
	Won            bool              `json:"won"`
	Message        string            `json:"message"`
	GameState      *engine.GameState `json:"game_state"`
	Events         []engine.Event    `json:"events,omitempty"`
}

// HintResult contains the shortest solution from the current position
type HintResult struct {
	Solvable      bool                  `json:"solvable"`
	MinMoves      int                   `json:"min_moves"`
	Next          *engine.SolutionStep  `json:"next,omitempty"`
	Steps         []engine.SolutionStep `json:"steps,omitempty"`
	StatesVisited int                   `json:"states_visited"`
	Message       string                `json:"message"`
}

// HistoryOptions configures move history retrieval
type HistoryOptions struct {
	Page  int    `json:"page"`
	Limit int    `json:"limit"`
	Order string `json:"order"` // "asc" or "desc"
}

// HistoryResponse contains paginated move history
type HistoryResponse struct {
	Moves       []engine.MoveHistoryEntry `json:"moves"`
	TotalMoves  int                       `json:"total_moves"`
	Page        int                       `json:"page"`
	PageSize    int                       `json:"page_size"`
	TotalPages  int                       `json:"total_pages"`
	HasNext     bool                      `json:"has_next"`
	HasPrevious bool                      `json:"has_previous"`
}

// LevelInfo provides information about a level file
type LevelInfo struct {
	Filename     string `json:"filename"`
	LevelID      string `json:"level_id"` // The identifier to use for session creation
	Name         string `json:"name"`     // Display name
	Description  string `json:"description"`
	VehicleCount int    `json:"vehicle_count"`
	Solvable     bool   `json:"solvable"`
	MinMoves     int    `json:"min_moves,omitempty"`
}
