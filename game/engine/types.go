package engine

import "time"

// Orientation is the fixed axis a vehicle slides along
type Orientation string

const (
	Horizontal Orientation = "horizontal"
	Vertical   Orientation = "vertical"
)

const (
	// Board geometry
	BoardWidth  = 6
	BoardHeight = 6
	ExitRow     = 2
	ExitColumn  = BoardWidth // first column of the exit channel

	MinVehicleLength = 2
	MaxVehicleLength = 3

	// PlayerID is the reserved id of the player-controlled vehicle
	PlayerID = "red"

	DefaultPlayerLabel = "9999"

	// WinRevealDelay separates the exit transition from the overlay handoff
	WinRevealDelay = 900 * time.Millisecond

	// MaxSolverStates bounds the breadth-first search
	MaxSolverStates = 250000
)

// Cell is a single grid coordinate
type Cell struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Position represents x,y coordinates
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Vehicle is a rectangular occupant of contiguous cells
type Vehicle struct {
	ID                string      `json:"id"`
	X                 int         `json:"x"`
	Y                 int         `json:"y"`
	Length            int         `json:"length"`
	Orientation       Orientation `json:"orientation"`
	Player            bool        `json:"player,omitempty"`
	CanUseExitChannel bool        `json:"can_use_exit_channel,omitempty"`
}

// Placement is one vehicle entry of a level file
type Placement struct {
	Pos    [2]int `json:"pos"`
	Size   int    `json:"size"`
	Dir    string `json:"dir"`
	Player bool   `json:"player,omitempty"`
}

// LevelConfig is a level as stored on disk
type LevelConfig struct {
	Name        string      `json:"name"`
	Description string      `json:"description,omitempty"`
	Label       string      `json:"label,omitempty"` // revealed on the win overlay
	Vehicles    []Placement `json:"vehicles"`
}

// WinPhase is the state of the win sequence
type WinPhase string

const (
	WinNotWon  WinPhase = "not_won"
	WinWinning WinPhase = "winning"
	WinWon     WinPhase = "won"
)

// GameState is everything owned by one loaded level. It is replaced
// wholesale on every level load.
type GameState struct {
	LevelName   string             `json:"level_name"`
	Generation  uint64             `json:"generation"`
	Vehicles    []*Vehicle         `json:"vehicles"`
	WinPhase    WinPhase           `json:"win_phase"` // projected from the win sequencer
	Won         bool               `json:"won"`       // WinPhase != WinNotWon
	Dragging    string             `json:"dragging,omitempty"`
	Message     string             `json:"message"`
	MoveHistory []MoveHistoryEntry `json:"move_history"`
	TotalMoves  int                `json:"total_moves"`
}

// Clone returns a deep copy of the state that shares nothing with the
// engine, safe to hand to other goroutines.
func (s *GameState) Clone() *GameState {
	if s == nil {
		return nil
	}
	c := *s
	c.Vehicles = make([]*Vehicle, len(s.Vehicles))
	for i, v := range s.Vehicles {
		vc := *v
		c.Vehicles[i] = &vc
	}
	c.MoveHistory = append([]MoveHistoryEntry{}, s.MoveHistory...)
	return &c
}

// MoveHistoryEntry records one committed drag
type MoveHistoryEntry struct {
	VehicleID    string   `json:"vehicle_id"`
	FromPosition Position `json:"from_position"`
	ToPosition   Position `json:"to_position"`
	Timestamp    int64    `json:"timestamp"`
	MoveNumber   int      `json:"move_number"`
}

// EventType names what an Event reports to the rendering side
type EventType string

const (
	EventLevelLoaded  EventType = "level_loaded"
	EventDragStarted  EventType = "drag_started"
	EventVehicleMoved EventType = "vehicle_moved"
	EventDragEnded    EventType = "drag_ended"
	EventWinExit      EventType = "win_exit"
	EventWinReveal    EventType = "win_reveal"
)

// Event is produced by the engine for rendering collaborators
type Event struct {
	Type       EventType `json:"type"`
	VehicleID  string    `json:"vehicle_id,omitempty"`
	Position   Position  `json:"position"`
	Label      string    `json:"label,omitempty"`
	Generation uint64    `json:"generation"`
	Timestamp  time.Time `json:"timestamp"`
}

// EventHandler receives engine events. Handlers must not call back into
// the engine.
type EventHandler func(Event)
