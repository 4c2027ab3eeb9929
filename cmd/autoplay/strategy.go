package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/wricardo/mcp-training/rushhour/game/engine"
)

// ErrNoMove is returned when a strategy has nothing left to try
var ErrNoMove = errors.New("no move available")

// Strategy picks the next slide for the current state
type Strategy interface {
	Name() string
	NextMove(ctx context.Context, state *engine.GameState) (*engine.SolutionStep, error)
}

// HintStrategy asks the server for the next step of a shortest solution
type HintStrategy struct {
	client *Client
}

func NewHintStrategy(client *Client) *HintStrategy {
	return &HintStrategy{client: client}
}

func (s *HintStrategy) Name() string { return "hint" }

func (s *HintStrategy) NextMove(ctx context.Context, state *engine.GameState) (*engine.SolutionStep, error) {
	hint, err := s.client.Hint(ctx)
	if err != nil {
		return nil, err
	}
	if !hint.Solvable || hint.Next == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoMove, hint.Message)
	}
	return hint.Next, nil
}

// LocalStrategy solves the board it was given once and replays the plan.
// The plan is recomputed whenever the board stops matching it.
type LocalStrategy struct {
	plan []engine.SolutionStep
}

func NewLocalStrategy() *LocalStrategy {
	return &LocalStrategy{}
}

func (s *LocalStrategy) Name() string { return "local" }

func (s *LocalStrategy) NextMove(ctx context.Context, state *engine.GameState) (*engine.SolutionStep, error) {
	board := &engine.Board{Vehicles: state.Vehicles}

	if len(s.plan) > 0 {
		next := s.plan[0]
		if v := board.Vehicle(next.VehicleID); v != nil && v.Position() == next.From {
			s.plan = s.plan[1:]
			return &next, nil
		}
	}

	solution, err := engine.Solve(board)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoMove, err)
	}
	if len(solution.Steps) == 0 {
		return nil, ErrNoMove
	}
	s.plan = solution.Steps[1:]
	return &solution.Steps[0], nil
}

// Reset drops any cached plan
func (s *LocalStrategy) Reset() {
	s.plan = nil
}
