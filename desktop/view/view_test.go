package view

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wricardo/mcp-training/rushhour/game/engine"
	ws "github.com/wricardo/mcp-training/rushhour/transport/websocket"
)

func defaultVehicles() []*engine.Vehicle {
	return engine.BuildVehicles(engine.DefaultLevel())
}

func TestLayout_CellAt(t *testing.T) {
	l := DefaultLayout()

	x, y, ok := l.CellAt(40, 100)
	require.True(t, ok)
	assert.Equal(t, 0, x)
	assert.Equal(t, 0, y)

	x, y, ok = l.CellAt(40+80*5+79, 100+80*2+1)
	require.True(t, ok)
	assert.Equal(t, 5, x)
	assert.Equal(t, 2, y)

	_, _, ok = l.CellAt(39, 100)
	assert.False(t, ok)
	_, _, ok = l.CellAt(40+80*6, 100)
	assert.False(t, ok)
}

func TestLayout_Vehicle(t *testing.T) {
	l := DefaultLayout()
	vehicles := defaultVehicles()

	red := l.Vehicle(vehicles[0], 0)
	assert.Equal(t, Rect{X: 40 + 80 + 4, Y: 100 + 160 + 4, W: 160 - 8, H: 72}, red)

	truck := l.Vehicle(vehicles[1], 10)
	assert.Equal(t, Rect{X: 40 + 320 + 4, Y: 100 + 4 + 10, W: 72, H: 240 - 8}, truck)

	exit := l.Exit()
	assert.Equal(t, 40+480.0, exit.X)
	assert.Equal(t, 100+160.0, exit.Y)
}

func TestLayout_VehicleAt(t *testing.T) {
	l := DefaultLayout()
	vehicles := defaultVehicles()

	v := l.VehicleAt(vehicles, 40+80*2+5, 100+80*2+5)
	require.NotNil(t, v)
	assert.Equal(t, engine.PlayerID, v.ID)

	v = l.VehicleAt(vehicles, 40+80*4+5, 100+80+5)
	require.NotNil(t, v)
	assert.Equal(t, "v1", v.ID)

	assert.Nil(t, l.VehicleAt(vehicles, 45, 105))
	assert.Nil(t, l.VehicleAt(vehicles, 0, 0))
}

func TestAxisPointer(t *testing.T) {
	assert.Equal(t, 10.0, AxisPointer(engine.Horizontal, 10, 20))
	assert.Equal(t, 20.0, AxisPointer(engine.Vertical, 10, 20))
}

type fakeSource struct {
	x, y     int
	released bool
}

func (f *fakeSource) Position() (int, int) { return f.x, f.y }

func (f *fakeSource) IsJustReleased() bool { return f.released }

func TestDrag_MessageSequence(t *testing.T) {
	l := DefaultLayout()
	src := &fakeSource{x: 40 + 80*4 + 40, y: 100 + 40}

	drag, start, ok := BeginDrag(src, l, defaultVehicles())
	require.True(t, ok)
	assert.Equal(t, "v1", drag.VehicleID)
	assert.Equal(t, ws.ClientMessage{Type: ws.TypeDragStart, VehicleID: "v1", Pointer: 140}, start)

	// unchanged pointer sends nothing
	_, ok = drag.Update()
	assert.False(t, ok)

	// horizontal jitter does not move a vertical vehicle
	src.x += 30
	_, ok = drag.Update()
	assert.False(t, ok)

	src.y += 200
	msg, ok := drag.Update()
	require.True(t, ok)
	assert.Equal(t, ws.ClientMessage{Type: ws.TypeDragMove, Pointer: 340, CellSize: 80}, msg)

	src.released = true
	msg, ok = drag.Update()
	require.True(t, ok)
	assert.Equal(t, ws.TypeDragEnd, msg.Type)
	assert.True(t, drag.IsReleased())

	_, ok = drag.Update()
	assert.False(t, ok)
}

func TestBeginDrag_EmptyCell(t *testing.T) {
	_, _, ok := BeginDrag(&fakeSource{x: 45, y: 105}, DefaultLayout(), defaultVehicles())
	assert.False(t, ok)
}

func TestReveal(t *testing.T) {
	var r Reveal
	assert.False(t, r.Exiting())
	assert.False(t, r.Shown())

	r.Exit(160)
	r.Exit(999) // ignored once started
	assert.True(t, r.Exiting())

	r.Update(exitDuration / 2)
	assert.Greater(t, r.Offset, float32(0))
	assert.Less(t, r.Offset, float32(160))

	r.Update(exitDuration)
	assert.InDelta(t, 160, r.Offset, 0.001)

	r.Show("9999")
	assert.True(t, r.Shown())
	assert.Equal(t, "9999", r.Label)
	r.Update(revealDuration * 2)
	assert.InDelta(t, 1, r.Alpha, 0.001)

	r.Clear()
	assert.False(t, r.Exiting())
	assert.False(t, r.Shown())
	assert.Zero(t, r.Offset)
}
