package engine

import "errors"

// ErrUnsolvable is returned when no sequence of moves frees the player
var ErrUnsolvable = errors.New("level has no solution")

// ErrSearchLimit is returned when the search gives up before finishing
var ErrSearchLimit = errors.New("solver state limit reached")

// SolutionStep slides one vehicle by Cells along its axis
type SolutionStep struct {
	VehicleID string   `json:"vehicle_id"`
	Cells     int      `json:"cells"`
	From      Position `json:"from"`
	To        Position `json:"to"`
}

// Solution is a shortest sequence of slides taking the player to the exit
type Solution struct {
	Steps         []SolutionStep `json:"steps"`
	StatesVisited int            `json:"states_visited"`
}

type solverNode struct {
	coords []int
	parent int
	step   SolutionStep
}

// Solve runs a breadth-first search from the board's current position. A
// move slides one vehicle any number of free cells, using the same walking
// and bound rules as a drag.
func Solve(b *Board) (*Solution, error) {
	if b == nil || b.Player() == nil {
		return nil, ErrNoLevel
	}
	work := b.Clone()
	player := -1
	start := make([]int, len(work.Vehicles))
	for i, v := range work.Vehicles {
		start[i] = v.AxisCoord()
		if v.Player {
			player = i
		}
	}

	nodes := []solverNode{{coords: start, parent: -1}}
	seen := map[string]bool{coordKey(start): true}

	for head := 0; head < len(nodes); head++ {
		if len(nodes) > MaxSolverStates {
			return nil, ErrSearchLimit
		}
		current := nodes[head].coords
		if current[player] == ExitColumn {
			return &Solution{Steps: unwind(nodes, head), StatesVisited: len(seen)}, nil
		}

		place(work, current)
		for i, v := range work.Vehicles {
			occupied := work.OccupiedCells(v.ID)
			from := current[i]
			for _, target := range []int{0, v.UpperBound()} {
				reach := Advance(v, occupied, from, target)
				for pos := from; pos != reach; {
					pos += sign(reach - from)
					next := append([]int(nil), current...)
					next[i] = pos
					key := coordKey(next)
					if seen[key] {
						continue
					}
					seen[key] = true

					fromPos := v.Position()
					v.setAxisCoord(pos)
					toPos := v.Position()
					v.setAxisCoord(from)

					nodes = append(nodes, solverNode{
						coords: next,
						parent: head,
						step:   SolutionStep{VehicleID: v.ID, Cells: pos - from, From: fromPos, To: toPos},
					})
				}
			}
		}
	}

	return nil, ErrUnsolvable
}

func place(b *Board, coords []int) {
	for i, v := range b.Vehicles {
		v.setAxisCoord(coords[i])
	}
}

func coordKey(coords []int) string {
	key := make([]byte, len(coords))
	for i, c := range coords {
		key[i] = byte(c)
	}
	return string(key)
}

func unwind(nodes []solverNode, idx int) []SolutionStep {
	var steps []SolutionStep
	for ; nodes[idx].parent >= 0; idx = nodes[idx].parent {
		steps = append(steps, nodes[idx].step)
	}
	for i, j := 0, len(steps)-1; i < j; i, j = i+1, j-1 {
		steps[i], steps[j] = steps[j], steps[i]
	}
	return steps
}

// MinMoves returns the length of the shortest solution
func MinMoves(b *Board) (int, error) {
	sol, err := Solve(b)
	if err != nil {
		return 0, err
	}
	return len(sol.Steps), nil
}
