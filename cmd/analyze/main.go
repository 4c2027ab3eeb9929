// Command analyze prints quick, human-readable statistics about the level
// files in the project's levels directory. It summarizes vehicle counts,
// how crowded the board is, which vehicles block the exit row, and the
// shortest solution found by the solver.
package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/wricardo/mcp-training/rushhour/game/engine"
)

// LevelAnalysis holds the statistics computed for one level file.
type LevelAnalysis struct {
	File          string
	Name          string
	Label         string
	Vehicles      int
	Horizontal    int
	Vertical      int
	Cars          int // length 2
	Trucks        int // length 3
	OccupiedCells int
	Player        engine.Position
	ExitDistance  int
	Blockers      []string
	MinMoves      int
	StatesVisited int
	Solution      []engine.SolutionStep
	SolveErr      error
}

func main() {
	levelsDir := "levels"
	if len(os.Args) > 1 {
		levelsDir = os.Args[1]
	}

	files, err := filepath.Glob(filepath.Join(levelsDir, "*.json"))
	if err != nil {
		fmt.Printf("Error finding level files: %v\n", err)
		os.Exit(1)
	}
	sort.Strings(files)

	for _, file := range files {
		fmt.Printf("\n=== Analyzing %s ===\n", filepath.Base(file))
		analysis, err := analyzeLevel(file)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			continue
		}
		printAnalysis(os.Stdout, analysis)
	}
}

func analyzeLevel(path string) (*LevelAnalysis, error) {
	level, err := engine.LoadLevelFile(path)
	if err != nil {
		return nil, err
	}

	board := &engine.Board{Vehicles: engine.BuildVehicles(level)}
	a := &LevelAnalysis{
		File:     filepath.Base(path),
		Name:     level.Name,
		Label:    level.Label,
		Vehicles: len(board.Vehicles),
	}

	for _, v := range board.Vehicles {
		a.OccupiedCells += v.Length
		if v.Player {
			a.Player = engine.Position{X: v.X, Y: v.Y}
			a.ExitDistance = engine.ExitColumn - v.X
			continue
		}
		if v.Orientation == engine.Horizontal {
			a.Horizontal++
		} else {
			a.Vertical++
		}
		if v.Length == engine.MaxVehicleLength {
			a.Trucks++
		} else {
			a.Cars++
		}
	}
	a.Blockers = exitBlockers(board)

	solution, err := engine.Solve(board)
	if err != nil {
		a.SolveErr = err
		return a, nil
	}
	a.Solution = solution.Steps
	a.MinMoves = len(solution.Steps)
	a.StatesVisited = solution.StatesVisited
	return a, nil
}

// exitBlockers lists the vehicles sitting on the exit row between the
// player and the right edge, nearest first.
func exitBlockers(board *engine.Board) []string {
	player := board.Player()
	if player == nil {
		return nil
	}

	var blockers []string
	seen := map[string]bool{}
	for x := player.X + player.Length; x < engine.BoardWidth; x++ {
		v := board.VehicleAt(x, engine.ExitRow)
		if v == nil || seen[v.ID] {
			continue
		}
		seen[v.ID] = true
		blockers = append(blockers, v.ID)
	}
	return blockers
}

func printAnalysis(w io.Writer, a *LevelAnalysis) {
	total := engine.BoardWidth * engine.BoardHeight

	fmt.Fprintf(w, "Name: %s\n", a.Name)
	if a.Label != "" {
		fmt.Fprintf(w, "Win Label: %s\n", a.Label)
	}
	fmt.Fprintf(w, "Vehicles: %d (%d horizontal, %d vertical)\n", a.Vehicles, a.Horizontal, a.Vertical)
	fmt.Fprintf(w, "Cars: %d, Trucks: %d\n", a.Cars, a.Trucks)
	fmt.Fprintf(w, "Occupancy: %d/%d cells (%d%%)\n", a.OccupiedCells, total, a.OccupiedCells*100/total)
	fmt.Fprintf(w, "Player: (%d, %d), %d cells from the exit\n", a.Player.X, a.Player.Y, a.ExitDistance)

	if len(a.Blockers) > 0 {
		fmt.Fprintf(w, "⚠️  Exit row blocked by: %s\n", strings.Join(a.Blockers, ", "))
	} else {
		fmt.Fprintf(w, "✅ Exit row is clear\n")
	}

	if a.SolveErr != nil {
		fmt.Fprintf(w, "⚠️  CRITICAL: %v\n", a.SolveErr)
		return
	}
	fmt.Fprintf(w, "Min Moves: %d (%d states explored)\n", a.MinMoves, a.StatesVisited)
	for i, step := range a.Solution {
		fmt.Fprintf(w, "   %d. %s %+d (%d,%d)→(%d,%d)\n", i+1, step.VehicleID, step.Cells,
			step.From.X, step.From.Y, step.To.X, step.To.Y)
	}
}
