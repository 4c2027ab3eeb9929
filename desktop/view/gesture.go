package view

import (
	"github.com/wricardo/mcp-training/rushhour/game/engine"
	ws "github.com/wricardo/mcp-training/rushhour/transport/websocket"
)

// PointerSource represents an input device that provides drag strokes.
type PointerSource interface {
	Position() (int, int)
	IsJustReleased() bool
}

// Drag turns one stroke on a vehicle into drag_start, drag_move and
// drag_end messages. Moves are only emitted when the pointer changed.
type Drag struct {
	source      PointerSource
	layout      Layout
	VehicleID   string
	orientation engine.Orientation

	// last pointer value sent along the vehicle axis
	lastPointer float64
	released    bool
}

// BeginDrag starts a drag when the source points at a vehicle. The
// returned message must be sent before any Update output.
func BeginDrag(source PointerSource, layout Layout, vehicles []*engine.Vehicle) (*Drag, ws.ClientMessage, bool) {
	cx, cy := source.Position()
	px, py := float64(cx), float64(cy)

	v := layout.VehicleAt(vehicles, px, py)
	if v == nil {
		return nil, ws.ClientMessage{}, false
	}

	pointer := AxisPointer(v.Orientation, px, py)
	d := &Drag{
		source:      source,
		layout:      layout,
		VehicleID:   v.ID,
		orientation: v.Orientation,
		lastPointer: pointer,
	}
	return d, ws.ClientMessage{Type: ws.TypeDragStart, VehicleID: v.ID, Pointer: pointer}, true
}

// Update samples the source once. It returns the message to send, if any.
func (d *Drag) Update() (ws.ClientMessage, bool) {
	if d.released {
		return ws.ClientMessage{}, false
	}
	if d.source.IsJustReleased() {
		d.released = true
		return ws.ClientMessage{Type: ws.TypeDragEnd}, true
	}

	cx, cy := d.source.Position()
	pointer := AxisPointer(d.orientation, float64(cx), float64(cy))
	if pointer == d.lastPointer {
		return ws.ClientMessage{}, false
	}
	d.lastPointer = pointer
	return ws.ClientMessage{Type: ws.TypeDragMove, Pointer: pointer, CellSize: d.layout.CellSize}, true
}

func (d *Drag) IsReleased() bool {
	return d.released
}
