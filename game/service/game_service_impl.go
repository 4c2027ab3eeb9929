package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/wricardo/mcp-training/rushhour/game/engine"
)

var (
	ErrNoActiveDrag    = errors.New("no drag in progress")
	ErrInvalidCellSize = errors.New("cell size must be a positive number")
	ErrInvalidPointer  = errors.New("pointer coordinate must be a finite number")
)

// Option configures the game service
type Option func(*gameServiceImpl)

// WithEventPublisher forwards every engine event to p
func WithEventPublisher(p EventPublisher) Option {
	return func(s *gameServiceImpl) { s.publisher = p }
}

// WithRevealDelay overrides the delay between the exit and reveal phases
func WithRevealDelay(d time.Duration) Option {
	return func(s *gameServiceImpl) { s.revealDelay = d }
}

// WithMeter records service metrics on m instead of the global meter
func WithMeter(m metric.Meter) Option {
	return func(s *gameServiceImpl) { s.meter = m }
}

// gameServiceImpl implements the GameService interface. One mutex
// serializes every engine call, including the win reveal timer.
type gameServiceImpl struct {
	sessions    SessionManager
	levels      LevelManager
	publisher   EventPublisher
	revealDelay time.Duration
	meter       metric.Meter
	metrics     *serviceMetrics
	mu          sync.Mutex
}

// NewGameService creates a new game service instance
func NewGameService(sessions SessionManager, levels LevelManager, opts ...Option) GameService {
	s := &gameServiceImpl{
		sessions:    sessions,
		levels:      levels,
		revealDelay: engine.WinRevealDelay,
		meter:       defaultMeter(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.metrics = newServiceMetrics(s.meter)
	return s
}

// attach installs the service's scheduler and event forwarding on a
// session engine. Must be called with mu held.
func (s *gameServiceImpl) attach(sess *Session) {
	if sess.attached {
		return
	}
	sess.attached = true

	sess.Engine.SetScheduler(engine.TimerScheduler{Locker: &s.mu})
	sess.Engine.SetRevealDelay(s.revealDelay)
	sess.Engine.SetEventHandler(func(ev engine.Event) {
		if sess.collected != nil {
			*sess.collected = append(*sess.collected, ev)
		}
		s.metrics.observe(sess.LevelID, ev)
		if s.publisher != nil {
			s.publisher.PublishEvent(sess.ID, ev)
		}
	})
}

// session looks a session up, marks it accessed and attaches it. Must be
// called with mu held.
func (s *gameServiceImpl) session(sessionID string) (*Session, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}
	s.sessions.UpdateLastAccessed(sessionID)
	s.attach(sess)
	return sess, nil
}

// collect records the events emitted while fn runs
func collect(sess *Session, fn func()) []engine.Event {
	events := []engine.Event{}
	sess.collected = &events
	defer func() { sess.collected = nil }()
	fn()
	return events
}

// resolveLevel loads a level by id, or the default level for an empty id
func (s *gameServiceImpl) resolveLevel(levelID string) (string, *engine.LevelConfig, error) {
	if levelID == "" {
		level := s.levels.GetDefault()
		if level == nil {
			return "", nil, fmt.Errorf("no default level available")
		}
		return s.levelIDFor(level), level, nil
	}

	level, err := s.levels.LoadLevel(levelID)
	if err != nil {
		if available, listErr := s.levels.ListLevels(); listErr == nil && len(available) > 0 {
			ids := make([]string, 0, len(available))
			for _, info := range available {
				ids = append(ids, info.LevelID)
			}
			return "", nil, fmt.Errorf("failed to load level '%s' (available: %v): %w", levelID, ids, err)
		}
		return "", nil, fmt.Errorf("failed to load level '%s': %w", levelID, err)
	}
	return levelID, level, nil
}

// levelIDFor returns the level id for a loaded level, used for consistent API responses
func (s *gameServiceImpl) levelIDFor(level *engine.LevelConfig) string {
	if available, err := s.levels.ListLevels(); err == nil {
		for _, info := range available {
			if info.Name == level.Name {
				return info.LevelID
			}
		}
	}
	if level.Name == "" {
		return "default"
	}
	return level.Name
}

func sessionInfo(sess *Session) *SessionInfo {
	return &SessionInfo{
		ID:             sess.ID,
		LevelID:        sess.LevelID,
		CreatedAt:      sess.CreatedAt,
		LastAccessedAt: sess.LastAccessedAt,
		GameState:      sess.Engine.GetState().Clone(),
		Level:          sess.Level,
	}
}

// CreateSession creates a new game session
func (s *gameServiceImpl) CreateSession(ctx context.Context, levelID string) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, level, err := s.resolveLevel(levelID)
	if err != nil {
		return nil, err
	}

	// Let session manager generate a proper 4-character ID
	sess, err := s.sessions.Create("", id, level)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	s.attach(sess)
	s.metrics.sessions.Add(ctx, 1, metric.WithAttributes(attribute.String("level", id)))
	// the engine loaded the level before attach could see it
	s.metrics.observe(id, engine.Event{Type: engine.EventLevelLoaded})

	return sessionInfo(sess), nil
}

// GetSession retrieves session information
func (s *gameServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	return sessionInfo(sess), nil
}

// ListSessions returns all active sessions
func (s *gameServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sessions := s.sessions.List()
	result := make([]*SessionInfo, 0, len(sessions))
	for _, sess := range sessions {
		result = append(result, sessionInfo(sess))
	}
	return result, nil
}

// DeleteSession removes a session
func (s *gameServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.sessions.Delete(sessionID)
}

// LoadLevel replaces the session's level. Any drag in progress and any
// pending win reveal are discarded.
func (s *gameServiceImpl) LoadLevel(ctx context.Context, sessionID, levelID string) (*engine.GameState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	id, level, err := s.resolveLevel(levelID)
	if err != nil {
		return nil, err
	}
	if err := sess.Engine.LoadLevel(level); err != nil {
		return nil, fmt.Errorf("failed to load level '%s': %w", id, err)
	}
	sess.LevelID = id
	sess.Level = level

	return sess.Engine.GetState().Clone(), nil
}

// StartDrag opens a drag session on a vehicle
func (s *gameServiceImpl) StartDrag(ctx context.Context, sessionID, vehicleID string, pointer float64) (*DragResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	if sess.Engine.IsWon() {
		return nil, engine.ErrGameWon
	}
	if sess.Engine.Board().Vehicle(vehicleID) == nil {
		return nil, fmt.Errorf("%w: %s", engine.ErrVehicleNotFound, vehicleID)
	}
	if math.IsNaN(pointer) || math.IsInf(pointer, 0) {
		return nil, ErrInvalidPointer
	}

	var started bool
	events := collect(sess, func() {
		started = sess.Engine.BeginDrag(vehicleID, pointer)
	})
	if !started {
		return nil, fmt.Errorf("drag on %s rejected", vehicleID)
	}

	return s.dragResult(sess, engine.DragStep{VehicleID: vehicleID}, events), nil
}

// DragMove feeds one pointer sample to the active drag
func (s *gameServiceImpl) DragMove(ctx context.Context, sessionID string, pointer, cellSize float64) (*DragResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	if !sess.Engine.IsDragging() {
		return nil, ErrNoActiveDrag
	}
	if !(cellSize > 0) || math.IsInf(cellSize, 0) {
		return nil, ErrInvalidCellSize
	}
	if math.IsNaN(pointer) || math.IsInf(pointer, 0) {
		return nil, ErrInvalidPointer
	}

	var step engine.DragStep
	events := collect(sess, func() {
		step = sess.Engine.DragTo(pointer, cellSize)
	})
	return s.dragResult(sess, step, events), nil
}

// EndDrag releases the active drag. Releasing the player on the exit
// starts the win sequence.
func (s *gameServiceImpl) EndDrag(ctx context.Context, sessionID string) (*DragResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	if !sess.Engine.IsDragging() {
		return nil, ErrNoActiveDrag
	}

	recorded := len(sess.Engine.GetMoveHistory())
	var won bool
	events := collect(sess, func() {
		won = sess.Engine.EndDrag()
	})

	result := s.dragResult(sess, engine.DragStep{}, events)
	result.Won = won || result.Won
	if last := sess.Engine.GetLastMove(); last != nil && len(sess.Engine.GetMoveHistory()) > recorded {
		result.Step = engine.DragStep{VehicleID: last.VehicleID, From: last.FromPosition, To: last.ToPosition, Moved: true}
	}
	return result, nil
}

func (s *gameServiceImpl) dragResult(sess *Session, step engine.DragStep, events []engine.Event) *DragResult {
	state := sess.Engine.GetState().Clone()
	return &DragResult{
		Step:      step,
		Dragging:  sess.Engine.IsDragging(),
		Won:       state.Won,
		WinPhase:  state.WinPhase,
		GameState: state,
		Events:    events,
	}
}

// Slide moves a vehicle by a whole number of cells in one gesture
func (s *gameServiceImpl) Slide(ctx context.Context, sessionID, vehicleID string, cells int) (*SlideResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	var (
		step     engine.DragStep
		won      bool
		slideErr error
	)
	events := collect(sess, func() {
		step, won, slideErr = sess.Engine.Slide(vehicleID, cells)
	})
	if slideErr != nil {
		return nil, slideErr
	}

	v := sess.Engine.Board().Vehicle(vehicleID)
	from, to := step.From, step.To
	if !step.Moved {
		from, to = v.Position(), v.Position()
	}
	moved := (to.X - from.X) + (to.Y - from.Y)

	result := &SlideResult{
		Success:        step.Moved,
		VehicleID:      v.ID,
		RequestedCells: cells,
		MovedCells:     moved,
		From:           from,
		To:             to,
		Blocked:        moved != cells,
		Won:            won,
		GameState:      sess.Engine.GetState().Clone(),
		Events:         events,
	}

	switch {
	case won:
		result.Message = "The red car is out!"
	case cells == 0:
		result.Message = fmt.Sprintf("%s stayed at (%d,%d)", v.ID, to.X, to.Y)
	case !step.Moved:
		result.Message = fmt.Sprintf("%s is blocked at (%d,%d)", v.ID, to.X, to.Y)
	case moved != cells:
		result.Message = fmt.Sprintf("%s moved %d of %d cells to (%d,%d) before being blocked", v.ID, moved, cells, to.X, to.Y)
	default:
		result.Message = fmt.Sprintf("%s moved to (%d,%d)", v.ID, to.X, to.Y)
	}
	return result, nil
}

// Reset resets a game session to its level's starting position
func (s *gameServiceImpl) Reset(ctx context.Context, sessionID string) (*engine.GameState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	return sess.Engine.Reset().Clone(), nil
}

// GetGameState retrieves the current game state
func (s *gameServiceImpl) GetGameState(ctx context.Context, sessionID string) (*engine.GameState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	return sess.Engine.GetState().Clone(), nil
}

// GetMoveHistory returns paginated move history
func (s *gameServiceImpl) GetMoveHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	history := sess.Engine.GetMoveHistory()
	total := len(history)

	// Apply defaults
	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.Limit <= 0 {
		opts.Limit = 20
	}
	if opts.Limit > 100 {
		opts.Limit = 100
	}
	if opts.Order == "" {
		opts.Order = "desc"
	}

	totalPages := (total + opts.Limit - 1) / opts.Limit
	if totalPages == 0 {
		totalPages = 1
	}

	start := (opts.Page - 1) * opts.Limit
	end := start + opts.Limit
	if end > total {
		end = total
	}

	moves := []engine.MoveHistoryEntry{}
	if start < total {
		if opts.Order == "desc" {
			// Most recent first
			for i := total - 1 - start; i >= total-end; i-- {
				moves = append(moves, history[i])
			}
		} else {
			moves = append(moves, history[start:end]...)
		}
	}

	return &HistoryResponse{
		Moves:       moves,
		TotalMoves:  total,
		Page:        opts.Page,
		PageSize:    opts.Limit,
		TotalPages:  totalPages,
		HasNext:     opts.Page < totalPages,
		HasPrevious: opts.Page > 1,
	}, nil
}

// Hint solves the session's board from its current position
func (s *gameServiceImpl) Hint(ctx context.Context, sessionID string) (*HintResult, error) {
	s.mu.Lock()
	sess, err := s.session(sessionID)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	if sess.Engine.IsWon() {
		s.mu.Unlock()
		return &HintResult{Solvable: true, Message: "Level already won"}, nil
	}
	board := sess.Engine.Board().Clone()
	s.mu.Unlock()

	// the search runs on a copy so the session stays usable meanwhile
	sol, err := engine.Solve(board)
	switch {
	case errors.Is(err, engine.ErrUnsolvable):
		return &HintResult{Message: "No sequence of moves frees the red car from here"}, nil
	case err != nil:
		return nil, fmt.Errorf("failed to solve board: %w", err)
	}

	result := &HintResult{
		Solvable:      true,
		MinMoves:      len(sol.Steps),
		Steps:         sol.Steps,
		StatesVisited: sol.StatesVisited,
	}
	if len(sol.Steps) > 0 {
		next := sol.Steps[0]
		result.Next = &next
		result.Message = fmt.Sprintf("Move %s by %d (%d moves to go)", next.VehicleID, next.Cells, len(sol.Steps))
	} else {
		result.Message = "The red car is already at the exit"
	}
	return result, nil
}

// ListLevels returns available level files
func (s *gameServiceImpl) ListLevels(ctx context.Context) ([]*LevelInfo, error) {
	return s.levels.ListLevels()
}

// GetLevel loads a specific level
func (s *gameServiceImpl) GetLevel(ctx context.Context, levelID string) (*engine.LevelConfig, error) {
	return s.levels.LoadLevel(levelID)
}

// SaveLevel saves a level to disk
func (s *gameServiceImpl) SaveLevel(ctx context.Context, levelID string, level *engine.LevelConfig) error {
	return s.levels.SaveLevel(levelID, level)
}
