package engine

// DragSession tracks one in-progress pointer drag. It lives from BeginDrag
// to EndDrag and is discarded when a new level loads.
type DragSession struct {
	Vehicle      *Vehicle
	StartCoord   int
	StartPointer float64
	StartPos     Position
	Generation   uint64

	// occupancy of every other vehicle; only the dragged vehicle moves
	// during the session so the set is computed once
	occupied CellSet
}

// DragStep is the outcome of one pointer move
type DragStep struct {
	VehicleID string   `json:"vehicle_id"`
	From      Position `json:"from"`
	To        Position `json:"to"`
	Target    int      `json:"target"` // clamped axis target
	Moved     bool     `json:"moved"`
}

func newDragSession(b *Board, v *Vehicle, pointer float64, generation uint64) *DragSession {
	return &DragSession{
		Vehicle:      v,
		StartCoord:   v.AxisCoord(),
		StartPointer: pointer,
		StartPos:     v.Position(),
		Generation:   generation,
		occupied:     b.OccupiedCells(v.ID),
	}
}

// move applies one pointer sample and commits the farthest legal position
func (d *DragSession) move(pointer, cellSize float64) DragStep {
	v := d.Vehicle
	from := v.Position()
	target := clamp(d.StartCoord+snapCells(pointer-d.StartPointer, cellSize), 0, v.UpperBound())

	current := v.AxisCoord()
	next := Advance(v, d.occupied, current, target)
	if next != current {
		v.setAxisCoord(next)
	}

	return DragStep{
		VehicleID: v.ID,
		From:      from,
		To:        v.Position(),
		Target:    target,
		Moved:     next != current,
	}
}
