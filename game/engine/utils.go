package engine

import "math"

// clamp restricts val to [lo, hi]
func clamp(val, lo, hi int) int {
	if val < lo {
		return lo
	}
	if val > hi {
		return hi
	}
	return val
}

// sign returns -1, 0 or 1
func sign(x int) int {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	}
	return 0
}

// maxSnapCells bounds a snapped delta; any vehicle's whole travel fits in it
const maxSnapCells = BoardWidth + MaxVehicleLength

// snapCells converts a pointer delta to a whole number of cells, rounding
// to the nearest cell with halves going toward positive infinity. Deltas
// too large to convert saturate at maxSnapCells in their direction.
func snapCells(delta, cellSize float64) int {
	if cellSize <= 0 || math.IsNaN(delta) || math.IsInf(delta, 0) {
		return 0
	}
	q := math.Floor(delta/cellSize + 0.5)
	switch {
	case math.IsNaN(q):
		return 0
	case q > maxSnapCells:
		return maxSnapCells
	case q < -maxSnapCells:
		return -maxSnapCells
	}
	return int(q)
}
