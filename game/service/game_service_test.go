package service_test

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"

	"github.com/wricardo/mcp-training/rushhour/game/engine"
	"github.com/wricardo/mcp-training/rushhour/game/service"
)

var errNotFound = errors.New("not found")

// MockSessionManager implements service.SessionManager for testing
type MockSessionManager struct {
	sessions map[string]*service.Session
}

func NewMockSessionManager() *MockSessionManager {
	return &MockSessionManager{
		sessions: make(map[string]*service.Session),
	}
}

func (m *MockSessionManager) Create(id, levelID string, level *engine.LevelConfig) (*service.Session, error) {
	if id == "" {
		id = fmt.Sprintf("s%03d", len(m.sessions)+1)
	}
	if _, exists := m.sessions[id]; exists {
		return nil, errors.New("session already exists")
	}

	eng, err := engine.NewEngine(level)
	if err != nil {
		return nil, err
	}

	session := &service.Session{
		ID:             id,
		LevelID:        levelID,
		Engine:         eng,
		Level:          level,
		CreatedAt:      time.Now(),
		LastAccessedAt: time.Now(),
	}
	m.sessions[id] = session
	return session, nil
}

func (m *MockSessionManager) Get(id string) (*service.Session, error) {
	session, exists := m.sessions[id]
	if !exists {
		return nil, errNotFound
	}
	return session, nil
}

func (m *MockSessionManager) GetOrCreate(id, levelID string, level *engine.LevelConfig) (*service.Session, error) {
	if session, exists := m.sessions[id]; exists {
		return session, nil
	}
	return m.Create(id, levelID, level)
}

func (m *MockSessionManager) List() []*service.Session {
	result := make([]*service.Session, 0, len(m.sessions))
	for _, session := range m.sessions {
		result = append(result, session)
	}
	return result
}

func (m *MockSessionManager) Delete(id string) error {
	if _, exists := m.sessions[id]; !exists {
		return errNotFound
	}
	delete(m.sessions, id)
	return nil
}

func (m *MockSessionManager) UpdateLastAccessed(id string) error {
	if session, exists := m.sessions[id]; exists {
		session.LastAccessedAt = time.Now()
		return nil
	}
	return errNotFound
}

// MockLevelManager implements service.LevelManager for testing
type MockLevelManager struct {
	levels map[string]*engine.LevelConfig
}

func NewMockLevelManager() *MockLevelManager {
	return &MockLevelManager{
		levels: map[string]*engine.LevelConfig{
			"level1": {
				Name:  "Level 1",
				Label: "4721",
				Vehicles: []engine.Placement{
					{Pos: [2]int{1, 2}, Size: 2, Dir: "horizontal", Player: true},
					{Pos: [2]int{4, 0}, Size: 3, Dir: "vertical"},
					{Pos: [2]int{3, 5}, Size: 2, Dir: "horizontal"},
				},
			},
			"blocked": {
				Name: "Blocked",
				Vehicles: []engine.Placement{
					{Pos: [2]int{0, 2}, Size: 2, Dir: "horizontal", Player: true},
					{Pos: [2]int{3, 0}, Size: 3, Dir: "vertical"},
					{Pos: [2]int{3, 3}, Size: 3, Dir: "vertical"},
				},
			},
		},
	}
}

func (m *MockLevelManager) LoadLevel(name string) (*engine.LevelConfig, error) {
	level, exists := m.levels[name]
	if !exists {
		return nil, errNotFound
	}
	return level, nil
}

func (m *MockLevelManager) ListLevels() ([]*service.LevelInfo, error) {
	result := make([]*service.LevelInfo, 0, len(m.levels))
	for id, level := range m.levels {
		result = append(result, &service.LevelInfo{
			Filename:     id + ".json",
			LevelID:      id,
			Name:         level.Name,
			VehicleCount: len(level.Vehicles),
		})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].LevelID < result[j].LevelID })
	return result, nil
}

func (m *MockLevelManager) GetDefault() *engine.LevelConfig {
	return m.levels["level1"]
}

func (m *MockLevelManager) SaveLevel(name string, level *engine.LevelConfig) error {
	if err := engine.ValidateLevelConfig(level); err != nil {
		return err
	}
	m.levels[name] = level
	return nil
}

// recordingPublisher collects published events
type recordingPublisher struct {
	mu     sync.Mutex
	events map[string][]engine.Event
}

func (p *recordingPublisher) PublishEvent(sessionID string, ev engine.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.events == nil {
		p.events = make(map[string][]engine.Event)
	}
	p.events[sessionID] = append(p.events[sessionID], ev)
}

func (p *recordingPublisher) types(sessionID string) []engine.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	var types []engine.EventType
	for _, ev := range p.events[sessionID] {
		types = append(types, ev.Type)
	}
	return types
}

func newTestService(t *testing.T, opts ...service.Option) (service.GameService, *service.SessionInfo) {
	t.Helper()
	svc := service.NewGameService(NewMockSessionManager(), NewMockLevelManager(), opts...)
	info, err := svc.CreateSession(context.Background(), "level1")
	require.NoError(t, err)
	return svc, info
}

// solveLevel1 plays the three-move solution of level1
func solveLevel1(t *testing.T, svc service.GameService, sessionID string) *service.SlideResult {
	t.Helper()
	ctx := context.Background()
	_, err := svc.Slide(ctx, sessionID, "h1", -3)
	require.NoError(t, err)
	_, err = svc.Slide(ctx, sessionID, "v1", 3)
	require.NoError(t, err)
	result, err := svc.Slide(ctx, sessionID, engine.PlayerID, 5)
	require.NoError(t, err)
	return result
}

func TestGameService_CreateSession(t *testing.T) {
	ctx := context.Background()
	svc := service.NewGameService(NewMockSessionManager(), NewMockLevelManager())

	tests := []struct {
		name      string
		levelID   string
		wantLevel string
		wantErr   bool
	}{
		{"create with default level", "", "level1", false},
		{"create with specific level", "blocked", "blocked", false},
		{"create with missing level", "nonexistent", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info, err := svc.CreateSession(ctx, tt.levelID)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, errNotFound)
				assert.Contains(t, err.Error(), "level1")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantLevel, info.LevelID)
			assert.NotEmpty(t, info.ID)
			require.NotNil(t, info.GameState)
			assert.Equal(t, engine.WinNotWon, info.GameState.WinPhase)
		})
	}
}

func TestGameService_Sessions(t *testing.T) {
	ctx := context.Background()
	svc, info := newTestService(t)

	got, err := svc.GetSession(ctx, info.ID)
	require.NoError(t, err)
	assert.Equal(t, info.ID, got.ID)

	_, err = svc.CreateSession(ctx, "blocked")
	require.NoError(t, err)
	list, err := svc.ListSessions(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	require.NoError(t, svc.DeleteSession(ctx, info.ID))
	_, err = svc.GetSession(ctx, info.ID)
	assert.ErrorIs(t, err, errNotFound)
	assert.ErrorIs(t, svc.DeleteSession(ctx, info.ID), errNotFound)
}

func TestGameService_Slide(t *testing.T) {
	ctx := context.Background()
	svc, info := newTestService(t)

	t.Run("blocked part way", func(t *testing.T) {
		result, err := svc.Slide(ctx, info.ID, engine.PlayerID, 4)
		require.NoError(t, err)
		assert.True(t, result.Success)
		assert.True(t, result.Blocked)
		assert.Equal(t, 1, result.MovedCells)
		assert.Equal(t, engine.Position{X: 1, Y: 2}, result.From)
		assert.Equal(t, engine.Position{X: 2, Y: 2}, result.To)
		assert.Contains(t, result.Message, "before being blocked")
		assert.Equal(t, 1, result.GameState.TotalMoves)
	})

	t.Run("fully blocked", func(t *testing.T) {
		result, err := svc.Slide(ctx, info.ID, engine.PlayerID, 1)
		require.NoError(t, err)
		assert.False(t, result.Success)
		assert.Equal(t, 0, result.MovedCells)
		assert.Contains(t, result.Message, "is blocked")
		assert.Equal(t, 1, result.GameState.TotalMoves)
	})

	t.Run("unknown vehicle", func(t *testing.T) {
		_, err := svc.Slide(ctx, info.ID, "v9", 1)
		assert.ErrorIs(t, err, engine.ErrVehicleNotFound)
	})

	t.Run("unknown session", func(t *testing.T) {
		_, err := svc.Slide(ctx, "nope", engine.PlayerID, 1)
		assert.ErrorIs(t, err, errNotFound)
	})
}

func TestGameService_DragGesture(t *testing.T) {
	ctx := context.Background()
	svc, info := newTestService(t)

	_, err := svc.DragMove(ctx, info.ID, 10, 50)
	assert.ErrorIs(t, err, service.ErrNoActiveDrag)
	_, err = svc.EndDrag(ctx, info.ID)
	assert.ErrorIs(t, err, service.ErrNoActiveDrag)

	start, err := svc.StartDrag(ctx, info.ID, "v1", 100)
	require.NoError(t, err)
	assert.True(t, start.Dragging)
	require.Len(t, start.Events, 1)
	assert.Equal(t, engine.EventDragStarted, start.Events[0].Type)

	_, err = svc.DragMove(ctx, info.ID, 150, 0)
	assert.ErrorIs(t, err, service.ErrInvalidCellSize)

	// four cells down, stopped by h1 on the bottom row
	moved, err := svc.DragMove(ctx, info.ID, 300, 50)
	require.NoError(t, err)
	assert.True(t, moved.Step.Moved)
	assert.Equal(t, 3, moved.Step.Target)
	assert.Equal(t, engine.Position{X: 4, Y: 2}, moved.Step.To)

	end, err := svc.EndDrag(ctx, info.ID)
	require.NoError(t, err)
	assert.False(t, end.Dragging)
	assert.False(t, end.Won)
	assert.Equal(t, engine.Position{X: 4, Y: 0}, end.Step.From)
	assert.Equal(t, engine.Position{X: 4, Y: 2}, end.Step.To)

	history, err := svc.GetMoveHistory(ctx, info.ID, service.HistoryOptions{})
	require.NoError(t, err)
	require.Len(t, history.Moves, 1)
	assert.Equal(t, "v1", history.Moves[0].VehicleID)

	_, err = svc.StartDrag(ctx, info.ID, "nope", 0)
	assert.ErrorIs(t, err, engine.ErrVehicleNotFound)
}

func TestGameService_Win(t *testing.T) {
	ctx := context.Background()
	publisher := &recordingPublisher{}
	svc, info := newTestService(t, service.WithEventPublisher(publisher), service.WithRevealDelay(10*time.Millisecond))

	result := solveLevel1(t, svc, info.ID)
	assert.True(t, result.Won)
	assert.Equal(t, engine.Position{X: engine.ExitColumn, Y: engine.ExitRow}, result.To)
	assert.Equal(t, engine.WinWinning, result.GameState.WinPhase)

	var types []engine.EventType
	for _, ev := range result.Events {
		types = append(types, ev.Type)
	}
	assert.Equal(t, []engine.EventType{
		engine.EventDragStarted,
		engine.EventVehicleMoved,
		engine.EventDragEnded,
		engine.EventWinExit,
	}, types)

	assert.Eventually(t, func() bool {
		state, err := svc.GetGameState(ctx, info.ID)
		return err == nil && state.WinPhase == engine.WinWon
	}, time.Second, 5*time.Millisecond)
	assert.Contains(t, publisher.types(info.ID), engine.EventWinReveal)

	_, err := svc.Slide(ctx, info.ID, "v1", -1)
	assert.ErrorIs(t, err, engine.ErrGameWon)
	_, err = svc.StartDrag(ctx, info.ID, "v1", 0)
	assert.ErrorIs(t, err, engine.ErrGameWon)
}

func TestGameService_LoadLevelCancelsReveal(t *testing.T) {
	ctx := context.Background()
	publisher := &recordingPublisher{}
	svc, info := newTestService(t, service.WithEventPublisher(publisher), service.WithRevealDelay(150*time.Millisecond))

	result := solveLevel1(t, svc, info.ID)
	require.True(t, result.Won)

	state, err := svc.LoadLevel(ctx, info.ID, "blocked")
	require.NoError(t, err)
	assert.Equal(t, "Blocked", state.LevelName)
	assert.Equal(t, engine.WinNotWon, state.WinPhase)
	assert.False(t, state.Won)

	time.Sleep(250 * time.Millisecond)
	assert.NotContains(t, publisher.types(info.ID), engine.EventWinReveal)

	got, err := svc.GetSession(ctx, info.ID)
	require.NoError(t, err)
	assert.Equal(t, "blocked", got.LevelID)
	assert.Equal(t, engine.WinNotWon, got.GameState.WinPhase)

	_, err = svc.LoadLevel(ctx, info.ID, "missing")
	assert.ErrorIs(t, err, errNotFound)
	state, err = svc.GetGameState(ctx, info.ID)
	require.NoError(t, err)
	assert.Equal(t, "Blocked", state.LevelName)
}

func TestGameService_Hint(t *testing.T) {
	ctx := context.Background()
	svc, info := newTestService(t)

	hint, err := svc.Hint(ctx, info.ID)
	require.NoError(t, err)
	assert.True(t, hint.Solvable)
	assert.Equal(t, 3, hint.MinMoves)
	require.NotNil(t, hint.Next)
	assert.Equal(t, "h1", hint.Next.VehicleID)

	// following the hint shortens the solution by one
	_, err = svc.Slide(ctx, info.ID, hint.Next.VehicleID, hint.Next.Cells)
	require.NoError(t, err)
	hint, err = svc.Hint(ctx, info.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, hint.MinMoves)

	blocked, err := svc.CreateSession(ctx, "blocked")
	require.NoError(t, err)
	hint, err = svc.Hint(ctx, blocked.ID)
	require.NoError(t, err)
	assert.False(t, hint.Solvable)
	assert.Nil(t, hint.Next)
}

func TestGameService_GetMoveHistory(t *testing.T) {
	ctx := context.Background()
	svc, info := newTestService(t)

	for _, cells := range []int{-1, 1, -1} {
		_, err := svc.Slide(ctx, info.ID, "h1", cells)
		require.NoError(t, err)
	}

	tests := []struct {
		name        string
		opts        service.HistoryOptions
		wantNumbers []int
		wantNext    bool
		wantPrev    bool
	}{
		{"defaults to newest first", service.HistoryOptions{}, []int{3, 2, 1}, false, false},
		{"ascending", service.HistoryOptions{Order: "asc"}, []int{1, 2, 3}, false, false},
		{"first page", service.HistoryOptions{Limit: 2, Order: "desc"}, []int{3, 2}, true, false},
		{"second page", service.HistoryOptions{Page: 2, Limit: 2, Order: "desc"}, []int{1}, false, true},
		{"past the end", service.HistoryOptions{Page: 5, Limit: 2, Order: "asc"}, []int{}, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			history, err := svc.GetMoveHistory(ctx, info.ID, tt.opts)
			require.NoError(t, err)
			numbers := []int{}
			for _, m := range history.Moves {
				numbers = append(numbers, m.MoveNumber)
			}
			assert.Equal(t, tt.wantNumbers, numbers)
			assert.Equal(t, 3, history.TotalMoves)
			assert.Equal(t, tt.wantNext, history.HasNext)
			assert.Equal(t, tt.wantPrev, history.HasPrevious)
		})
	}
}

func TestGameService_Reset(t *testing.T) {
	ctx := context.Background()
	svc, info := newTestService(t)

	_, err := svc.Slide(ctx, info.ID, "h1", -2)
	require.NoError(t, err)

	state, err := svc.Reset(ctx, info.ID)
	require.NoError(t, err)
	for _, v := range state.Vehicles {
		if v.ID == "h1" {
			assert.Equal(t, 3, v.X)
		}
	}
	assert.Equal(t, 1, state.TotalMoves, "history survives a reset")

	_, err = svc.Reset(ctx, "nope")
	assert.ErrorIs(t, err, errNotFound)
}

func TestGameService_Levels(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	levels, err := svc.ListLevels(ctx)
	require.NoError(t, err)
	assert.Len(t, levels, 2)

	level, err := svc.GetLevel(ctx, "level1")
	require.NoError(t, err)
	assert.Equal(t, "Level 1", level.Name)

	custom := &engine.LevelConfig{
		Name:     "Custom",
		Vehicles: []engine.Placement{{Pos: [2]int{0, 2}, Size: 2, Dir: "horizontal", Player: true}},
	}
	require.NoError(t, svc.SaveLevel(ctx, "custom", custom))
	info, err := svc.CreateSession(ctx, "custom")
	require.NoError(t, err)
	assert.Equal(t, "Custom", info.GameState.LevelName)

	err = svc.SaveLevel(ctx, "broken", &engine.LevelConfig{Name: "Broken"})
	assert.ErrorIs(t, err, engine.ErrInvalidLevel)
}

func TestGameService_StatesAreSnapshots(t *testing.T) {
	ctx := context.Background()
	svc, info := newTestService(t)

	state, err := svc.GetGameState(ctx, info.ID)
	require.NoError(t, err)

	result, err := svc.Slide(ctx, info.ID, "h1", -1)
	require.NoError(t, err)
	require.True(t, result.Success)

	h1 := func(s *engine.GameState) *engine.Vehicle {
		return (&engine.Board{Vehicles: s.Vehicles}).Vehicle("h1")
	}
	assert.Equal(t, 3, h1(state).X)
	assert.Equal(t, 3, h1(info.GameState).X)
	assert.Empty(t, state.MoveHistory)
	assert.Equal(t, 2, h1(result.GameState).X)

	// writes to a returned state stay local to it
	h1(result.GameState).X = 0
	result.GameState.MoveHistory[0].VehicleID = "tampered"
	current, err := svc.GetGameState(ctx, info.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, h1(current).X)
	assert.Equal(t, "h1", current.MoveHistory[0].VehicleID)
}

// countingMeter hands out counters that tally Add calls by instrument name
type countingMeter struct {
	noop.Meter
	mu     sync.Mutex
	counts map[string]int64
}

func newCountingMeter() *countingMeter {
	return &countingMeter{counts: make(map[string]int64)}
}

func (m *countingMeter) Int64Counter(name string, _ ...metric.Int64CounterOption) (metric.Int64Counter, error) {
	return &countingCounter{name: name, meter: m}, nil
}

func (m *countingMeter) count(name string) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.counts[name]
}

type countingCounter struct {
	noop.Int64Counter
	name  string
	meter *countingMeter
}

func (c *countingCounter) Add(_ context.Context, incr int64, _ ...metric.AddOption) {
	c.meter.mu.Lock()
	c.meter.counts[c.name] += incr
	c.meter.mu.Unlock()
}

func TestGameService_Metrics(t *testing.T) {
	ctx := context.Background()
	meter := newCountingMeter()
	svc, info := newTestService(t, service.WithMeter(meter), service.WithRevealDelay(time.Hour))

	assert.Equal(t, int64(1), meter.count("rushhour.sessions.created"))
	assert.Equal(t, int64(1), meter.count("rushhour.levels.loaded"))

	_, err := svc.Reset(ctx, info.ID)
	require.NoError(t, err)
	_, err = svc.LoadLevel(ctx, info.ID, "blocked")
	require.NoError(t, err)
	assert.Equal(t, int64(3), meter.count("rushhour.levels.loaded"))

	_, err = svc.LoadLevel(ctx, info.ID, "level1")
	require.NoError(t, err)
	solveLevel1(t, svc, info.ID)
	assert.Equal(t, int64(3), meter.count("rushhour.drags.ended"))
	assert.Equal(t, int64(1), meter.count("rushhour.wins"))
}
