package engine

// CellSet is a set of occupied grid cells
type CellSet map[Cell]struct{}

// Has reports whether c is in the set
func (s CellSet) Has(c Cell) bool {
	_, ok := s[c]
	return ok
}

// Board holds the vehicles of one level and is the single source of truth
// for their coordinates.
type Board struct {
	Vehicles []*Vehicle
}

// AxisCoord returns the coordinate along the vehicle's movement axis
func (v *Vehicle) AxisCoord() int {
	if v.Orientation == Horizontal {
		return v.X
	}
	return v.Y
}

func (v *Vehicle) setAxisCoord(coord int) {
	if v.Orientation == Horizontal {
		v.X = coord
	} else {
		v.Y = coord
	}
}

// CellsAt returns the cells the vehicle would cover with its axis
// coordinate at coord. The cross-axis coordinate never changes.
func (v *Vehicle) CellsAt(coord int) []Cell {
	cells := make([]Cell, v.Length)
	for i := 0; i < v.Length; i++ {
		if v.Orientation == Horizontal {
			cells[i] = Cell{X: coord + i, Y: v.Y}
		} else {
			cells[i] = Cell{X: v.X, Y: coord + i}
		}
	}
	return cells
}

// Cells returns the cells the vehicle currently covers
func (v *Vehicle) Cells() []Cell {
	return v.CellsAt(v.AxisCoord())
}

// Position returns the vehicle's leading cell
func (v *Vehicle) Position() Position {
	return Position{X: v.X, Y: v.Y}
}

// AtExit reports whether the vehicle sits exactly on the exit cell
func (v *Vehicle) AtExit() bool {
	return v.X == ExitColumn && v.Y == ExitRow
}

// UpperBound is the largest axis coordinate the vehicle may take. Vehicles
// allowed into the exit channel get the exit column while they are lined
// up with the exit row.
func (v *Vehicle) UpperBound() int {
	if v.CanUseExitChannel && v.Orientation == Horizontal && v.Y == ExitRow {
		return ExitColumn
	}
	if v.Orientation == Horizontal {
		return BoardWidth - v.Length
	}
	return BoardHeight - v.Length
}

// inExitChannel reports whether c lies past the right edge on the exit row
func inExitChannel(c Cell) bool {
	return c.Y == ExitRow && c.X >= BoardWidth
}

// OccupiedCells returns every cell covered by a vehicle other than
// excludingID. An empty excludingID includes all vehicles. Cells in the exit
// channel are only recorded for vehicles allowed to be there.
func (b *Board) OccupiedCells(excludingID string) CellSet {
	occ := make(CellSet)
	if b == nil {
		return occ
	}
	for _, v := range b.Vehicles {
		if excludingID != "" && v.ID == excludingID {
			continue
		}
		for _, c := range v.Cells() {
			if inExitChannel(c) && !v.CanUseExitChannel {
				continue
			}
			occ[c] = struct{}{}
		}
	}
	return occ
}

// Vehicle returns the vehicle with the given id, or nil
func (b *Board) Vehicle(id string) *Vehicle {
	if b == nil {
		return nil
	}
	for _, v := range b.Vehicles {
		if v.ID == id {
			return v
		}
	}
	return nil
}

// VehicleAt returns the vehicle covering (x, y), or nil
func (b *Board) VehicleAt(x, y int) *Vehicle {
	if b == nil {
		return nil
	}
	target := Cell{X: x, Y: y}
	for _, v := range b.Vehicles {
		for _, c := range v.Cells() {
			if c == target {
				return v
			}
		}
	}
	return nil
}

// Player returns the player vehicle, or nil
func (b *Board) Player() *Vehicle {
	if b == nil {
		return nil
	}
	for _, v := range b.Vehicles {
		if v.Player {
			return v
		}
	}
	return nil
}

// Advance walks v one cell at a time from `from` toward target and returns
// the farthest coordinate reached. It stops before the first step that
// would cover a cell in occupied or pass the vehicle's upper bound, so it
// never jumps over a blocker to a free gap beyond it.
func Advance(v *Vehicle, occupied CellSet, from, target int) int {
	step := sign(target - from)
	if step == 0 {
		return from
	}
	upper := v.UpperBound()
	pos := from
	for next := from + step; ; next += step {
		if next < 0 || next > upper {
			break
		}
		if blocked(v, occupied, next) {
			break
		}
		pos = next
		if next == target {
			break
		}
	}
	return pos
}

func blocked(v *Vehicle, occupied CellSet, coord int) bool {
	for _, c := range v.CellsAt(coord) {
		if occupied.Has(c) {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of the board
func (b *Board) Clone() *Board {
	if b == nil {
		return nil
	}
	out := &Board{Vehicles: make([]*Vehicle, len(b.Vehicles))}
	for i, v := range b.Vehicles {
		cp := *v
		out.Vehicles[i] = &cp
	}
	return out
}
