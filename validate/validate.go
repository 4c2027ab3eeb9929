// Command validate provides a small CLI that validates Rush Hour level JSON
// files in the ../levels directory (or the directory given as the first
// argument). It checks:
//   - JSON structure and required fields
//   - Vehicle placement: orientation, size, bounds and overlaps
//   - Exactly one player car, horizontal on the exit row
//   - Solvability: a breadth-first search must reach the exit
package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/wricardo/mcp-training/rushhour/game/engine"
)

// ValidationResult captures the outcome of validating a single file.
// If Valid is true, Errors contains informational messages; otherwise it
// accumulates the validation errors that were found.
type ValidationResult struct {
	File   string
	Valid  bool
	Errors []string
}

func (r *ValidationResult) fail(format string, args ...any) {
	r.Valid = false
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

// validateLevel loads and validates a single level file. Structural checks
// come from the engine's level parser; a valid layout is then solved to
// make sure the player can reach the exit.
func validateLevel(filePath string) ValidationResult {
	result := ValidationResult{
		File:   filepath.Base(filePath),
		Valid:  true,
		Errors: []string{},
	}

	level, err := engine.LoadLevelFile(filePath)
	if err != nil {
		if errors.Is(err, engine.ErrInvalidLevel) {
			result.fail("Invalid level: %v", err)
		} else {
			result.fail("Failed to load file: %v", err)
		}
		return result
	}

	if strings.TrimSpace(level.Name) == "" {
		result.fail("Missing required field: name")
	}

	validateSolution(level, &result)
	if !result.Valid {
		return result
	}

	counts := map[engine.Orientation]int{}
	for _, p := range level.Vehicles {
		if p.Player {
			continue
		}
		if strings.HasPrefix(p.Dir, "h") {
			counts[engine.Horizontal]++
		} else {
			counts[engine.Vertical]++
		}
	}

	result.Errors = append(result.Errors,
		fmt.Sprintf("✓ Name: %s", level.Name),
		fmt.Sprintf("✓ Vehicles: %d (%d horizontal, %d vertical, plus the player)",
			len(level.Vehicles), counts[engine.Horizontal], counts[engine.Vertical]),
	)
	if level.Label != "" {
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Win label: %s", level.Label))
	}
	return result
}

// validateSolution runs the solver from the level's starting position and
// records the minimum number of moves, or an error if the exit is unreachable.
func validateSolution(level *engine.LevelConfig, result *ValidationResult) {
	board := &engine.Board{Vehicles: engine.BuildVehicles(level)}

	solution, err := engine.Solve(board)
	switch {
	case errors.Is(err, engine.ErrUnsolvable):
		result.fail("Level is unsolvable: the player can never reach the exit")
		return
	case errors.Is(err, engine.ErrSearchLimit):
		result.fail("Solver gave up after %d states", engine.MaxSolverStates)
		return
	case err != nil:
		result.fail("Solver failed: %v", err)
		return
	}

	result.Errors = append(result.Errors,
		fmt.Sprintf("✓ Min moves: %d (%d states explored)", len(solution.Steps), solution.StatesVisited))
}

// main scans the levels directory for *.json files and validates each one,
// printing a concise report and exiting with non-zero status if any are
// invalid.
func main() {
	levelsDir := "../levels"
	if len(os.Args) > 1 {
		levelsDir = os.Args[1]
	}

	files, err := filepath.Glob(filepath.Join(levelsDir, "*.json"))
	if err != nil {
		fmt.Printf("Error finding level files: %v\n", err)
		os.Exit(1)
	}
	if len(files) == 0 {
		fmt.Printf("No level files found in %s\n", levelsDir)
		os.Exit(1)
	}

	allValid := true
	for _, file := range files {
		result := validateLevel(file)

		fmt.Printf("\n%s %s\n", strings.Repeat("=", 20), result.File)

		if result.Valid {
			fmt.Println("✅ VALID")
			for _, info := range result.Errors {
				fmt.Println("  " + info)
			}
		} else {
			fmt.Println("❌ INVALID")
			allValid = false
			for _, err := range result.Errors {
				if !strings.HasPrefix(err, "✓") {
					fmt.Println("  ❌ " + err)
				}
			}
		}
	}

	fmt.Printf("\n%s\n", strings.Repeat("=", 40))
	if allValid {
		fmt.Println("✅ All levels are valid!")
	} else {
		fmt.Println("❌ Some levels have errors")
		os.Exit(1)
	}
}
