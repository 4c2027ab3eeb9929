package engine

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const cell = 80.0

func TestNewEngine(t *testing.T) {
	e, err := NewEngine(testLevel(player(1, 2), vertical(4, 0, 3)))
	require.NoError(t, err)

	state := e.GetState()
	assert.Equal(t, "test", state.LevelName)
	assert.Len(t, state.Vehicles, 2)
	assert.Equal(t, WinNotWon, state.WinPhase)
	assert.False(t, e.IsWon())
	assert.False(t, e.IsDragging())
}

func TestNewEngine_InvalidLevel(t *testing.T) {
	_, err := NewEngine(testLevel(vertical(4, 0, 3)))
	assert.ErrorIs(t, err, ErrInvalidLevel)
}

func TestNewEngineWithDefaults(t *testing.T) {
	e := NewEngineWithDefaults()
	assert.Equal(t, "default", e.GetState().LevelName)
	assert.NotNil(t, e.Board().Player())
}

func TestDrag_StopsAtBlocker(t *testing.T) {
	e, _, events := newTestEngine(t, testLevel(player(0, 2), vertical(3, 1, 2)))

	require.True(t, e.BeginDrag(PlayerID, 100))
	step := e.DragTo(100+5*cell, cell)

	red := e.Board().Vehicle(PlayerID)
	assert.True(t, step.Moved)
	assert.Equal(t, 1, red.X, "length-2 car stops with its front cell right before the blocker")
	assert.Equal(t, 2, red.Cells()[1].X)
	assert.Equal(t, 5, step.Target)
	assert.Len(t, eventsOfType(*events, EventVehicleMoved), 1)

	assert.False(t, e.EndDrag())
	assert.Equal(t, WinNotWon, e.WinPhase())
}

func TestDrag_ZeroDisplacement(t *testing.T) {
	e, _, events := newTestEngine(t, testLevel(player(1, 2), vertical(4, 0, 3)))

	require.True(t, e.BeginDrag(PlayerID, 240))
	step := e.DragTo(240, cell)
	step2 := e.DragTo(240+0.4*cell, cell)
	e.EndDrag()

	assert.False(t, step.Moved)
	assert.False(t, step2.Moved)
	assert.Equal(t, Position{X: 1, Y: 2}, e.Board().Vehicle(PlayerID).Position())
	assert.Empty(t, eventsOfType(*events, EventVehicleMoved))
	assert.Empty(t, e.GetMoveHistory())
}

func TestDrag_NearestCellSnapping(t *testing.T) {
	tests := []struct {
		name     string
		delta    float64
		expected int
	}{
		{"just under half a cell", 0.49 * cell, 1},
		{"exactly half a cell", 0.5 * cell, 2},
		{"one and a half cells", 1.6 * cell, 3},
		{"negative under half", -0.49 * cell, 1},
		{"negative exactly half", -0.5 * cell, 1},
		{"negative past half", -0.6 * cell, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, _, _ := newTestEngine(t, testLevel(player(1, 2)))
			require.True(t, e.BeginDrag(PlayerID, 0))
			e.DragTo(tt.delta, cell)
			assert.Equal(t, tt.expected, e.Board().Vehicle(PlayerID).X)
		})
	}
}

func TestDrag_FollowsPointerBackAndForth(t *testing.T) {
	e, _, _ := newTestEngine(t, testLevel(player(0, 2), vertical(4, 1, 2), horizontal(0, 4, 3)))

	require.True(t, e.BeginDrag("h1", 0))
	h1 := e.Board().Vehicle("h1")

	e.DragTo(2*cell, cell)
	assert.Equal(t, 2, h1.X)
	e.DragTo(10*cell, cell)
	assert.Equal(t, 3, h1.X, "clamped at 6 - length")
	e.DragTo(-3*cell, cell)
	assert.Equal(t, 0, h1.X)
	e.EndDrag()

	require.Len(t, e.GetMoveHistory(), 0, "net zero drag records nothing")
}

func TestDrag_VerticalNeverChangesX(t *testing.T) {
	e, _, _ := newTestEngine(t, testLevel(player(0, 2), vertical(3, 0, 3), horizontal(2, 5, 2)))

	require.True(t, e.BeginDrag("v1", 0))
	e.DragTo(10*cell, cell)
	v1 := e.Board().Vehicle("v1")
	assert.Equal(t, 3, v1.X)
	assert.Equal(t, 2, v1.Y, "stopped by h1 covering (3,5)")
	e.EndDrag()

	last := e.GetLastMove()
	require.NotNil(t, last)
	assert.Equal(t, "v1", last.VehicleID)
	assert.Equal(t, Position{X: 3, Y: 0}, last.FromPosition)
	assert.Equal(t, Position{X: 3, Y: 2}, last.ToPosition)
	assert.Equal(t, 1, last.MoveNumber)
}

func TestDrag_InvalidCellSize(t *testing.T) {
	e, _, _ := newTestEngine(t, testLevel(player(1, 2)))
	require.True(t, e.BeginDrag(PlayerID, 0))

	assert.False(t, e.DragTo(500, 0).Moved)
	assert.False(t, e.DragTo(500, -10).Moved)
	assert.Equal(t, 1, e.Board().Vehicle(PlayerID).X)
}

func TestBeginDrag_Rejected(t *testing.T) {
	e, _, _ := newTestEngine(t, testLevel(player(1, 2)))

	assert.False(t, e.BeginDrag("v9", 0), "unknown vehicle")
	assert.False(t, e.IsDragging())

	var empty GameEngine
	assert.False(t, empty.BeginDrag(PlayerID, 0), "no level loaded")
	assert.False(t, empty.DragTo(100, cell).Moved)
	assert.False(t, empty.EndDrag())
}

func TestDragTo_WithoutSession(t *testing.T) {
	e, _, events := newTestEngine(t, testLevel(player(1, 2)))

	step := e.DragTo(300, cell)
	assert.False(t, step.Moved)
	assert.False(t, e.EndDrag())
	assert.Empty(t, *events)
}

func TestWinScenario(t *testing.T) {
	e, sched, events := newTestEngine(t, testLevel(player(0, 2)))

	require.True(t, e.BeginDrag(PlayerID, 10))
	e.DragTo(10+6*cell, cell)
	red := e.Board().Vehicle(PlayerID)
	assert.Equal(t, Position{X: ExitColumn, Y: ExitRow}, red.Position())
	assert.Equal(t, WinNotWon, e.WinPhase(), "the win is evaluated on release")

	assert.True(t, e.EndDrag())
	assert.Equal(t, WinWinning, e.WinPhase())
	assert.True(t, e.GetState().Won)
	require.Len(t, sched.tasks, 1)
	assert.Equal(t, WinRevealDelay, sched.tasks[0].delay)
	assert.Len(t, eventsOfType(*events, EventWinExit), 1)
	assert.Empty(t, eventsOfType(*events, EventWinReveal))

	assert.Equal(t, 1, sched.fire())
	assert.Equal(t, WinWon, e.WinPhase())
	assert.Equal(t, WinWon, e.GetState().WinPhase)
	reveal := eventsOfType(*events, EventWinReveal)
	require.Len(t, reveal, 1)
	assert.Equal(t, "1234", reveal[0].Label)
	assert.Equal(t, PlayerID, reveal[0].VehicleID)

	// exit event precedes the reveal
	var order []EventType
	for _, ev := range *events {
		if ev.Type == EventWinExit || ev.Type == EventWinReveal {
			order = append(order, ev.Type)
		}
	}
	assert.Equal(t, []EventType{EventWinExit, EventWinReveal}, order)
}

func TestWin_RejectsFurtherDrags(t *testing.T) {
	e, sched, _ := newTestEngine(t, testLevel(player(0, 2), vertical(0, 3, 2)))
	_, won, err := e.Slide(PlayerID, 6)
	require.NoError(t, err)
	require.True(t, won)

	assert.False(t, e.BeginDrag("v1", 0), "rejected while winning")
	sched.fire()
	assert.False(t, e.BeginDrag("v1", 0), "rejected once won")

	_, _, err = e.Slide("v1", 1)
	assert.ErrorIs(t, err, ErrGameWon)
}

func TestWin_RequiresExactExitCell(t *testing.T) {
	e, sched, _ := newTestEngine(t, testLevel(player(0, 2)))

	_, won, err := e.Slide(PlayerID, 5)
	require.NoError(t, err)
	assert.False(t, won)
	assert.Equal(t, 5, e.Board().Vehicle(PlayerID).X)
	assert.Equal(t, WinNotWon, e.WinPhase())
	assert.Zero(t, sched.pending())
}

func TestWin_ExitChannelOnlyForPlayer(t *testing.T) {
	e, _, _ := newTestEngine(t, testLevel(player(0, 2), vertical(5, 3, 2), horizontal(0, 0, 2)))

	_, _, err := e.Slide("h1", 10)
	require.NoError(t, err)
	assert.Equal(t, 4, e.Board().Vehicle("h1").X)
}

func TestLoadLevel_DiscardsActiveDrag(t *testing.T) {
	e, _, events := newTestEngine(t, testLevel(player(0, 2), vertical(4, 0, 2)))

	require.True(t, e.BeginDrag(PlayerID, 0))
	oldRed := e.Board().Vehicle(PlayerID)

	require.NoError(t, e.LoadLevel(testLevel(player(2, 2), vertical(0, 0, 3))))
	*events = (*events)[:0]
	assert.False(t, e.IsDragging())

	step := e.DragTo(3*cell, cell)
	assert.False(t, step.Moved)
	assert.False(t, e.EndDrag())

	red := e.Board().Vehicle(PlayerID)
	assert.Equal(t, 2, red.X, "new board untouched by the stale session")
	assert.NotSame(t, oldRed, red)
	assert.Empty(t, *events)
}

func TestLoadLevel_CancelsPendingReveal(t *testing.T) {
	e, sched, events := newTestEngine(t, testLevel(player(0, 2)))

	_, won, err := e.Slide(PlayerID, 6)
	require.NoError(t, err)
	require.True(t, won)

	require.NoError(t, e.LoadLevel(testLevel(player(1, 2), vertical(4, 0, 3))))
	*events = (*events)[:0]
	assert.Zero(t, sched.pending())

	// a timer that already started firing is ignored as stale
	sched.fireStale()
	assert.Equal(t, WinNotWon, e.WinPhase())
	assert.False(t, e.GetState().Won)
	assert.Empty(t, eventsOfType(*events, EventWinReveal))
	assert.True(t, e.BeginDrag(PlayerID, 0))
}

func TestLoadLevel_FailureKeepsState(t *testing.T) {
	e, sched, _ := newTestEngine(t, testLevel(player(0, 2)))

	_, won, err := e.Slide(PlayerID, 6)
	require.NoError(t, err)
	require.True(t, won)
	before := e.GetState()

	err = e.LoadLevel(testLevel(player(0, 2), horizontal(1, 2, 2)))
	assert.ErrorIs(t, err, ErrInvalidLevel)
	assert.Same(t, before, e.GetState())
	assert.Equal(t, WinWinning, e.WinPhase())

	sched.fire()
	assert.Equal(t, WinWon, e.WinPhase(), "pending reveal survives a failed load")
}

func TestReset(t *testing.T) {
	e, _, _ := newTestEngine(t, testLevel(player(1, 2), vertical(4, 0, 3)))
	_, _, err := e.Slide("v1", 3)
	require.NoError(t, err)
	require.Equal(t, 3, e.Board().Vehicle("v1").Y)

	state := e.Reset()
	assert.Equal(t, 0, e.Board().Vehicle("v1").Y)
	assert.Equal(t, 1, state.TotalMoves, "cumulative history survives a reset")
	assert.Len(t, state.MoveHistory, 1)
}

func TestSlide_UnknownVehicle(t *testing.T) {
	e, _, _ := newTestEngine(t, testLevel(player(1, 2)))
	_, _, err := e.Slide("h7", 1)
	assert.ErrorIs(t, err, ErrVehicleNotFound)
}

func TestVehicleAt(t *testing.T) {
	e, _, _ := newTestEngine(t, testLevel(player(1, 2), vertical(4, 0, 3)))
	require.NotNil(t, e.VehicleAt(4, 1))
	assert.Equal(t, "v1", e.VehicleAt(4, 1).ID)
	assert.Nil(t, e.VehicleAt(5, 5))
}

// Random drags over a crowded board must keep every invariant.
func TestDrag_RandomInvariants(t *testing.T) {
	level := testLevel(
		player(1, 2),
		vertical(0, 0, 3),
		vertical(3, 0, 2),
		vertical(5, 2, 3),
		horizontal(1, 0, 2),
		horizontal(1, 4, 3),
		horizontal(3, 5, 2),
		vertical(4, 3, 2),
	)
	e, _, _ := newTestEngine(t, level)
	rng := rand.New(rand.NewSource(42))
	ids := make([]string, 0, len(e.Board().Vehicles))
	for _, v := range e.Board().Vehicles {
		ids = append(ids, v.ID)
	}

	for i := 0; i < 2000 && !e.IsWon(); i++ {
		id := ids[rng.Intn(len(ids))]
		v := e.Board().Vehicle(id)
		start := v.Position()
		require.True(t, e.BeginDrag(id, 0))

		for j := 0; j < 4; j++ {
			before := v.AxisCoord()
			step := e.DragTo(float64(rng.Intn(13)-6)*cell+rng.Float64()*cell-cell/2, cell)
			after := v.AxisCoord()

			// off-axis coordinate is fixed
			if v.Orientation == Horizontal {
				require.Equal(t, start.Y, v.Y)
			} else {
				require.Equal(t, start.X, v.X)
			}

			// between the previous coordinate and the clamped target
			lo, hi := before, step.Target
			if lo > hi {
				lo, hi = hi, lo
			}
			require.GreaterOrEqual(t, after, lo)
			require.LessOrEqual(t, after, hi)
			require.GreaterOrEqual(t, after, 0)
			require.LessOrEqual(t, after, v.UpperBound())
			requireDisjoint(t, e.Board())
		}
		e.EndDrag()
	}
}

func requireDisjoint(t *testing.T, b *Board) {
	t.Helper()
	seen := map[Cell]string{}
	for _, v := range b.Vehicles {
		for _, c := range v.Cells() {
			if inExitChannel(c) && v.CanUseExitChannel {
				continue
			}
			other, taken := seen[c]
			require.False(t, taken, "%s and %s overlap at %v", v.ID, other, c)
			seen[c] = v.ID
		}
	}
}

func TestSnapCells_Saturates(t *testing.T) {
	tests := []struct {
		name     string
		delta    float64
		cellSize float64
		expected int
	}{
		{"ordinary", 2.4 * cell, cell, 2},
		{"quotient overflows to +Inf", 1e300, 1e-300, maxSnapCells},
		{"quotient overflows to -Inf", -1e300, 1e-300, -maxSnapCells},
		{"finite but past int range", 1e30, 1, maxSnapCells},
		{"negative past int range", -1e30, 1, -maxSnapCells},
		{"infinite delta", math.Inf(1), cell, 0},
		{"NaN delta", math.NaN(), cell, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, snapCells(tt.delta, tt.cellSize))
		})
	}
}

func TestDrag_HugePointerDeltas(t *testing.T) {
	e, _, _ := newTestEngine(t, testLevel(player(0, 2), horizontal(2, 4, 2)))
	require.True(t, e.BeginDrag("h1", 0))
	h1 := e.Board().Vehicle("h1")

	e.DragTo(1e300, 1e-300)
	assert.Equal(t, 4, h1.X, "far right clamps to the upper bound")

	e.DragTo(-1e300, 1e-300)
	assert.Equal(t, 0, h1.X, "far left clamps to zero")

	e.DragTo(1e30, 1)
	assert.Equal(t, 4, h1.X)
	assert.Equal(t, 4, h1.Y)
}

func TestWinState_ProjectedFromSequencer(t *testing.T) {
	e, sched, _ := newTestEngine(t, testLevel(player(0, 2)))

	consistent := func(want WinPhase) {
		t.Helper()
		state := e.GetState()
		assert.Equal(t, want, state.WinPhase)
		assert.Equal(t, want != WinNotWon, state.Won)
		assert.Equal(t, e.IsWon(), state.Won)
	}

	consistent(WinNotWon)
	_, won, err := e.Slide(PlayerID, 6)
	require.NoError(t, err)
	require.True(t, won)
	consistent(WinWinning)

	sched.fire()
	consistent(WinWon)

	e.Reset()
	consistent(WinNotWon)
}

func TestGameState_Clone(t *testing.T) {
	e, _, _ := newTestEngine(t, testLevel(player(0, 2), vertical(4, 0, 3)))
	_, _, err := e.Slide("v1", 3)
	require.NoError(t, err)

	live := e.GetState()
	snap := live.Clone()
	require.Equal(t, live, snap)

	snap.Vehicles[1].Y = 0
	snap.MoveHistory[0].MoveNumber = 99
	snap.Vehicles = append(snap.Vehicles, &Vehicle{ID: "extra"})
	assert.Equal(t, 3, e.Board().Vehicle("v1").Y)
	assert.Equal(t, 1, live.MoveHistory[0].MoveNumber)
	assert.Len(t, live.Vehicles, 2)

	_, _, err = e.Slide("v1", -1)
	require.NoError(t, err)
	assert.Equal(t, 0, snap.Vehicles[1].Y)
	assert.Len(t, snap.MoveHistory, 1)

	assert.Nil(t, (*GameState)(nil).Clone())
}
