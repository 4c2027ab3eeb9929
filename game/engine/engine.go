package engine

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrVehicleNotFound = errors.New("vehicle not found")
	ErrGameWon         = errors.New("level already won")
	ErrNoLevel         = errors.New("no level loaded")
)

// Engine provides the main interface for game operations. Implementations
// are not safe for concurrent use; callers serialize access.
type Engine interface {
	// Level lifecycle
	LoadLevel(level *LevelConfig) error
	Reset() *GameState
	GetState() *GameState
	GetLevel() *LevelConfig

	// Dragging
	BeginDrag(vehicleID string, pointer float64) bool
	DragTo(pointer, cellSize float64) DragStep
	EndDrag() bool
	IsDragging() bool
	Slide(vehicleID string, cells int) (DragStep, bool, error)

	// Queries
	Board() *Board
	VehicleAt(x, y int) *Vehicle
	WinPhase() WinPhase
	IsWon() bool

	// History
	GetMoveHistory() []MoveHistoryEntry
	GetLastMove() *MoveHistoryEntry

	// Collaborators
	SetEventHandler(h EventHandler)
	SetScheduler(s Scheduler)
}

// GameEngine implements the Engine interface
type GameEngine struct {
	state      *GameState
	level      *LevelConfig
	drag       *DragSession
	win        *WinSequencer
	scheduler  Scheduler
	onEvent    EventHandler
	generation uint64
	revealWait time.Duration
}

// NewEngine creates an engine with the level loaded
func NewEngine(level *LevelConfig) (*GameEngine, error) {
	e := &GameEngine{
		scheduler:  TimerScheduler{},
		revealWait: WinRevealDelay,
	}
	if err := e.LoadLevel(level); err != nil {
		return nil, err
	}
	return e, nil
}

// NewEngineWithDefaults creates an engine with the built-in level
func NewEngineWithDefaults() *GameEngine {
	e, err := NewEngine(DefaultLevel())
	if err != nil {
		panic(fmt.Sprintf("built-in level is invalid: %v", err))
	}
	return e
}

// SetEventHandler sets the receiver of rendering events
func (e *GameEngine) SetEventHandler(h EventHandler) {
	e.onEvent = h
}

// SetScheduler replaces the scheduler used for the win reveal. A sequence
// that is already running keeps its scheduler.
func (e *GameEngine) SetScheduler(s Scheduler) {
	if s == nil {
		s = TimerScheduler{}
	}
	e.scheduler = s
	if e.win != nil && !e.win.Latched() {
		e.win.scheduler = s
	}
}

// SetRevealDelay changes the delay between the two win phases
func (e *GameEngine) SetRevealDelay(d time.Duration) {
	e.revealWait = d
	if e.win != nil && !e.win.Latched() {
		e.win.delay = d
	}
}

// LoadLevel validates level and replaces the whole game state with it. On
// error the current state, drag session and win sequence are left as they
// were.
func (e *GameEngine) LoadLevel(level *LevelConfig) error {
	if err := ValidateLevelConfig(level); err != nil {
		return err
	}

	if e.win != nil {
		e.win.Cancel()
	}
	e.drag = nil
	e.generation++
	e.level = level
	e.state = newGameState(level, e.generation)
	e.win = NewWinSequencer(e.scheduler, e.revealWait)

	e.emit(Event{Type: EventLevelLoaded})
	return nil
}

// Reset reloads the current level, keeping the cumulative move count
func (e *GameEngine) Reset() *GameState {
	if e.level == nil {
		return e.state
	}
	total := e.state.TotalMoves
	history := e.state.MoveHistory
	if err := e.LoadLevel(e.level); err != nil {
		return e.state
	}
	e.state.TotalMoves = total
	e.state.MoveHistory = history
	return e.GetState()
}

// GetState returns the current game state. Its win fields are projected
// from the win sequencer, the only owner of the win phase.
func (e *GameEngine) GetState() *GameState {
	if e.state != nil {
		e.state.WinPhase = e.WinPhase()
		e.state.Won = e.IsWon()
	}
	return e.state
}

// GetLevel returns the loaded level
func (e *GameEngine) GetLevel() *LevelConfig {
	return e.level
}

// Board returns a view over the current vehicles
func (e *GameEngine) Board() *Board {
	if e.state == nil {
		return nil
	}
	return &Board{Vehicles: e.state.Vehicles}
}

// VehicleAt returns the vehicle covering (x, y), or nil
func (e *GameEngine) VehicleAt(x, y int) *Vehicle {
	return e.Board().VehicleAt(x, y)
}

// WinPhase returns the phase of the win sequence
func (e *GameEngine) WinPhase() WinPhase {
	if e.win == nil {
		return WinNotWon
	}
	return e.win.Phase()
}

// IsWon reports whether the win latch is set
func (e *GameEngine) IsWon() bool {
	return e.win != nil && e.win.Latched()
}

// IsDragging reports whether a drag session is active
func (e *GameEngine) IsDragging() bool {
	return e.drag != nil
}

// BeginDrag opens a drag session on the vehicle. It is a no-op returning
// false when the level is won, nothing is loaded, or no such vehicle exists.
func (e *GameEngine) BeginDrag(vehicleID string, pointer float64) bool {
	if e.state == nil || e.IsWon() {
		return false
	}
	board := e.Board()
	v := board.Vehicle(vehicleID)
	if v == nil {
		return false
	}

	e.drag = newDragSession(board, v, pointer, e.generation)
	e.state.Dragging = v.ID
	e.emit(Event{Type: EventDragStarted, VehicleID: v.ID, Position: v.Position()})
	return true
}

// DragTo moves the dragged vehicle as far toward the pointer as it can go
func (e *GameEngine) DragTo(pointer, cellSize float64) DragStep {
	d := e.drag
	if d == nil || d.Generation != e.generation || e.IsWon() {
		return DragStep{}
	}

	step := d.move(pointer, cellSize)
	if step.Moved {
		e.emit(Event{Type: EventVehicleMoved, VehicleID: step.VehicleID, Position: step.To})
	}
	return step
}

// EndDrag closes the drag session and triggers the win when the player
// vehicle was released on the exit cell. Returns whether a win started.
func (e *GameEngine) EndDrag() bool {
	d := e.drag
	if d == nil {
		return false
	}
	e.drag = nil
	e.state.Dragging = ""
	if d.Generation != e.generation {
		return false
	}

	v := d.Vehicle
	if v.Position() != d.StartPos {
		e.addMoveToHistory(v.ID, d.StartPos, v.Position())
	}
	e.emit(Event{Type: EventDragEnded, VehicleID: v.ID, Position: v.Position()})

	if v.Player && v.AtExit() && !e.IsWon() {
		return e.triggerWin(v)
	}
	return false
}

// Slide performs a whole drag of the vehicle by cells, using a unit cell
// size. It returns the resulting step and whether the level was won.
func (e *GameEngine) Slide(vehicleID string, cells int) (DragStep, bool, error) {
	if e.state == nil {
		return DragStep{}, false, ErrNoLevel
	}
	if e.IsWon() {
		return DragStep{}, false, ErrGameWon
	}
	if e.Board().Vehicle(vehicleID) == nil {
		return DragStep{}, false, fmt.Errorf("%w: %s", ErrVehicleNotFound, vehicleID)
	}

	e.BeginDrag(vehicleID, 0)
	step := e.DragTo(float64(cells), 1)
	won := e.EndDrag()
	return step, won, nil
}

func (e *GameEngine) triggerWin(v *Vehicle) bool {
	label := e.level.Label
	if label == "" {
		label = DefaultPlayerLabel
	}
	generation := e.generation
	pos := v.Position()

	return e.win.Trigger(
		func() {
			e.state.Message = "The red car is out!"
			e.emit(Event{Type: EventWinExit, VehicleID: v.ID, Position: pos})
		},
		func() {
			// the level may have been replaced while the reveal was pending
			if generation != e.generation {
				return
			}
			e.emit(Event{Type: EventWinReveal, VehicleID: v.ID, Position: pos, Label: label})
		},
	)
}

// GetMoveHistory returns the complete move history
func (e *GameEngine) GetMoveHistory() []MoveHistoryEntry {
	if e.state == nil {
		return nil
	}
	return e.state.MoveHistory
}

// GetLastMove returns the last move made, or nil if no moves
func (e *GameEngine) GetLastMove() *MoveHistoryEntry {
	if e.state == nil || len(e.state.MoveHistory) == 0 {
		return nil
	}
	return &e.state.MoveHistory[len(e.state.MoveHistory)-1]
}

func (e *GameEngine) addMoveToHistory(id string, from, to Position) {
	entry := MoveHistoryEntry{
		VehicleID:    id,
		FromPosition: from,
		ToPosition:   to,
		Timestamp:    time.Now().Unix(),
		MoveNumber:   e.state.TotalMoves + 1,
	}
	e.state.MoveHistory = append(e.state.MoveHistory, entry)
	e.state.TotalMoves++
}

func (e *GameEngine) emit(ev Event) {
	if e.onEvent == nil {
		return
	}
	ev.Generation = e.generation
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now()
	}
	e.onEvent(ev)
}
