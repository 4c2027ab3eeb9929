package engine

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// ErrInvalidLevel wraps every level validation failure
var ErrInvalidLevel = errors.New("invalid level")

// ValidateLevelConfig checks a level for structure and for a legal,
// non-overlapping starting position
func ValidateLevelConfig(level *LevelConfig) error {
	if level == nil {
		return fmt.Errorf("%w: level is nil", ErrInvalidLevel)
	}
	if len(level.Vehicles) == 0 {
		return fmt.Errorf("%w: at least one vehicle is required", ErrInvalidLevel)
	}

	players := 0
	occupied := make(map[Cell]int)
	for i, p := range level.Vehicles {
		orientation, ok := parseOrientation(p.Dir)
		if !ok {
			return fmt.Errorf("%w: vehicle %d: dir must be horizontal or vertical, got %q", ErrInvalidLevel, i+1, p.Dir)
		}
		if p.Size < MinVehicleLength || p.Size > MaxVehicleLength {
			return fmt.Errorf("%w: vehicle %d: size must be between %d and %d, got %d",
				ErrInvalidLevel, i+1, MinVehicleLength, MaxVehicleLength, p.Size)
		}

		x, y := p.Pos[0], p.Pos[1]
		endX, endY := x, y
		if orientation == Horizontal {
			endX = x + p.Size - 1
		} else {
			endY = y + p.Size - 1
		}
		if x < 0 || y < 0 || endX >= BoardWidth || endY >= BoardHeight {
			return fmt.Errorf("%w: vehicle %d at (%d,%d) does not fit on the %dx%d board",
				ErrInvalidLevel, i+1, x, y, BoardWidth, BoardHeight)
		}

		if p.Player {
			players++
			if orientation != Horizontal || y != ExitRow {
				return fmt.Errorf("%w: player vehicle must be horizontal on row %d", ErrInvalidLevel, ExitRow)
			}
		}

		probe := Vehicle{X: x, Y: y, Length: p.Size, Orientation: orientation}
		for _, c := range probe.Cells() {
			if other, taken := occupied[c]; taken {
				return fmt.Errorf("%w: vehicles %d and %d overlap at (%d,%d)", ErrInvalidLevel, other, i+1, c.X, c.Y)
			}
			occupied[c] = i + 1
		}
	}

	if players != 1 {
		return fmt.Errorf("%w: exactly one player vehicle is required, got %d", ErrInvalidLevel, players)
	}
	return nil
}

func parseOrientation(dir string) (Orientation, bool) {
	switch dir {
	case "horizontal", "h":
		return Horizontal, true
	case "vertical", "v":
		return Vertical, true
	}
	return "", false
}

// ParseLevel decodes and validates a level file
func ParseLevel(data []byte) (*LevelConfig, error) {
	var level LevelConfig
	if err := json.Unmarshal(data, &level); err != nil {
		return nil, fmt.Errorf("failed to parse level: %w", err)
	}
	if err := ValidateLevelConfig(&level); err != nil {
		return nil, err
	}
	return &level, nil
}

// LoadLevelFile reads, decodes and validates a level file from disk
func LoadLevelFile(path string) (*LevelConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read level file '%s': %w", path, err)
	}
	return ParseLevel(data)
}

// BuildVehicles turns level placements into vehicles. The player gets
// PlayerID and the exit-channel capability; the others are numbered per
// orientation in input order (h1, h2, ... and v1, v2, ...).
func BuildVehicles(level *LevelConfig) []*Vehicle {
	vehicles := make([]*Vehicle, 0, len(level.Vehicles))
	counters := map[Orientation]int{}

	for _, p := range level.Vehicles {
		orientation, _ := parseOrientation(p.Dir)
		v := &Vehicle{
			X:           p.Pos[0],
			Y:           p.Pos[1],
			Length:      p.Size,
			Orientation: orientation,
		}
		if p.Player {
			v.ID = PlayerID
			v.Player = true
			v.CanUseExitChannel = true
		} else {
			counters[orientation]++
			v.ID = fmt.Sprintf("%c%d", orientation[0], counters[orientation])
		}
		vehicles = append(vehicles, v)
	}
	return vehicles
}

// DefaultLevel is used when no level files are available
func DefaultLevel() *LevelConfig {
	return &LevelConfig{
		Name:        "default",
		Description: "Built-in starter level",
		Label:       DefaultPlayerLabel,
		Vehicles: []Placement{
			{Pos: [2]int{1, 2}, Size: 2, Dir: "horizontal", Player: true},
			{Pos: [2]int{4, 0}, Size: 3, Dir: "vertical"},
			{Pos: [2]int{3, 5}, Size: 2, Dir: "horizontal"},
		},
	}
}

// newGameState creates the state of a freshly loaded level
func newGameState(level *LevelConfig, generation uint64) *GameState {
	return &GameState{
		LevelName:   level.Name,
		Generation:  generation,
		Vehicles:    BuildVehicles(level),
		WinPhase:    WinNotWon,
		Message:     "Slide the red car out through the exit",
		MoveHistory: []MoveHistoryEntry{},
	}
}
