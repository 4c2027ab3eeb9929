// Package view holds the screen geometry, pointer gestures and win
// animation of the desktop client. It has no dependency on the window
// toolkit so it can be tested headless.
package view

import (
	"github.com/wricardo/mcp-training/rushhour/game/engine"
)

// Rect is an axis-aligned screen rectangle
type Rect struct {
	X, Y, W, H float64
}

func (r Rect) Contains(px, py float64) bool {
	return px >= r.X && px < r.X+r.W && py >= r.Y && py < r.Y+r.H
}

// Layout maps board cells to screen pixels
type Layout struct {
	CellSize float64
	OriginX  float64
	OriginY  float64
	// gap left around every vehicle
	Inset float64
}

func DefaultLayout() Layout {
	return Layout{CellSize: 80, OriginX: 40, OriginY: 100, Inset: 4}
}

// Board is the rectangle covering the 6x6 grid
func (l Layout) Board() Rect {
	return Rect{
		X: l.OriginX,
		Y: l.OriginY,
		W: l.CellSize * engine.BoardWidth,
		H: l.CellSize * engine.BoardHeight,
	}
}

// Exit is the opening on the right edge of the exit row
func (l Layout) Exit() Rect {
	return Rect{
		X: l.OriginX + l.CellSize*engine.BoardWidth,
		Y: l.OriginY + l.CellSize*engine.ExitRow,
		W: l.CellSize / 4,
		H: l.CellSize,
	}
}

func (l Layout) Cell(x, y int) Rect {
	return Rect{
		X: l.OriginX + float64(x)*l.CellSize,
		Y: l.OriginY + float64(y)*l.CellSize,
		W: l.CellSize,
		H: l.CellSize,
	}
}

// CellAt returns the board cell under a screen point
func (l Layout) CellAt(px, py float64) (x, y int, ok bool) {
	if !l.Board().Contains(px, py) {
		return 0, 0, false
	}
	return int((px - l.OriginX) / l.CellSize), int((py - l.OriginY) / l.CellSize), true
}

// Vehicle returns the drawn rectangle of v. offset shifts it along its
// axis in pixels, for animation.
func (l Layout) Vehicle(v *engine.Vehicle, offset float64) Rect {
	r := Rect{
		X: l.OriginX + float64(v.X)*l.CellSize + l.Inset,
		Y: l.OriginY + float64(v.Y)*l.CellSize + l.Inset,
		W: l.CellSize - 2*l.Inset,
		H: l.CellSize - 2*l.Inset,
	}
	if v.Orientation == engine.Horizontal {
		r.W += float64(v.Length-1) * l.CellSize
		r.X += offset
	} else {
		r.H += float64(v.Length-1) * l.CellSize
		r.Y += offset
	}
	return r
}

// AxisPointer projects a screen point onto the axis of an orientation.
// This is the scalar the engine's drag protocol works in.
func AxisPointer(o engine.Orientation, px, py float64) float64 {
	if o == engine.Horizontal {
		return px
	}
	return py
}

// VehicleAt returns the vehicle drawn under a screen point
func (l Layout) VehicleAt(vehicles []*engine.Vehicle, px, py float64) *engine.Vehicle {
	x, y, ok := l.CellAt(px, py)
	if !ok {
		return nil
	}
	board := engine.Board{Vehicles: vehicles}
	return board.VehicleAt(x, y)
}
