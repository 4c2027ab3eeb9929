// Command autoplay plays a Rush Hour level against a running server using
// only the REST API. It creates (or resumes) a session, resets it, then
// slides vehicles one move at a time until the player car leaves the board.
//
// Two strategies are available: "hint" asks the server's solver for every
// move, "local" fetches the board and solves it in-process.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v3"

	"github.com/wricardo/mcp-training/rushhour/game/engine"
)

type playOptions struct {
	maxMoves int
	delay    time.Duration
	verbose  bool
}

type playResult struct {
	Moves   int
	Won     bool
	Blocked int
}

func newCommand() *cli.Command {
	return &cli.Command{
		Name:  "autoplay",
		Usage: "Solve a Rush Hour level through the REST API",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "url",
				Value:   "http://localhost:8080",
				Usage:   "Game server URL",
				Sources: cli.EnvVars("RUSHHOUR_API_URL"),
			},
			&cli.StringFlag{
				Name:  "level",
				Usage: "Level to play (empty uses the server default)",
			},
			&cli.StringFlag{
				Name:  "continue",
				Usage: "Resume playing an existing session by ID",
			},
			&cli.StringFlag{
				Name:  "strategy",
				Value: "hint",
				Usage: "Move source: hint or local",
			},
			&cli.IntFlag{
				Name:  "max-moves",
				Value: 200,
				Usage: "Maximum slides before giving up",
			},
			&cli.DurationFlag{
				Name:  "delay",
				Usage: "Delay between moves",
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "Verbose output",
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
			if cmd.Bool("verbose") {
				logrus.SetLevel(logrus.DebugLevel)
			}
			return ctx, nil
		},
		Action: run,
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newCommand().Run(ctx, os.Args); err != nil {
		logrus.WithError(err).Error("autoplay failed")
		os.Exit(1)
	}
}

func run(ctx context.Context, cmd *cli.Command) error {
	client := NewClient(cmd.String("url"))
	logrus.WithField("url", cmd.String("url")).Info("Connecting to game server")

	strategy, err := newStrategy(cmd.String("strategy"), client)
	if err != nil {
		return err
	}

	if id := cmd.String("continue"); id != "" {
		if _, err := client.Resume(ctx, id); err != nil {
			logrus.WithError(err).Warn("Failed to resume session (may be expired), creating a new one")
		} else {
			logrus.WithField("session_id", id).Info("Resuming session")
		}
	}
	if client.SessionID() == "" {
		if _, err := client.CreateSession(ctx, cmd.String("level")); err != nil {
			return err
		}
		logrus.WithField("session_id", client.SessionID()).Info("Session created")
	}

	result, err := play(ctx, client, strategy, playOptions{
		maxMoves: int(cmd.Int("max-moves")),
		delay:    cmd.Duration("delay"),
		verbose:  cmd.Bool("verbose"),
	})
	if err != nil {
		return err
	}
	if !result.Won {
		return fmt.Errorf("gave up after %d moves (session %s)", result.Moves, client.SessionID())
	}

	logrus.WithFields(logrus.Fields{
		"session_id": client.SessionID(),
		"moves":      result.Moves,
	}).Info("🎉 VICTORY!")
	return nil
}

func newStrategy(name string, client *Client) (Strategy, error) {
	switch name {
	case "hint":
		return NewHintStrategy(client), nil
	case "local":
		return NewLocalStrategy(), nil
	}
	return nil, fmt.Errorf("unknown strategy %q (want hint or local)", name)
}

// play resets the session and slides until the player exits, the strategy
// runs dry, or maxMoves is reached.
func play(ctx context.Context, client *Client, strategy Strategy, opts playOptions) (*playResult, error) {
	state, err := client.Reset(ctx)
	if err != nil {
		return nil, err
	}
	if local, ok := strategy.(*LocalStrategy); ok {
		local.Reset()
	}
	logrus.WithFields(logrus.Fields{
		"level":    state.LevelName,
		"vehicles": len(state.Vehicles),
		"strategy": strategy.Name(),
	}).Info("Game reset")

	result := &playResult{}
	for !state.Won && result.Moves < opts.maxMoves {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		step, err := strategy.NextMove(ctx, state)
		if errors.Is(err, ErrNoMove) {
			logrus.WithError(err).Warn("No valid moves available")
			break
		}
		if err != nil {
			return result, err
		}

		slide, err := client.Slide(ctx, step.VehicleID, step.Cells)
		if err != nil {
			return result, err
		}
		result.Moves++
		if slide.Blocked {
			result.Blocked++
		}
		state = slide.GameState

		if opts.verbose {
			logrus.WithFields(logrus.Fields{
				"vehicle": slide.VehicleID,
				"from":    fmt.Sprintf("(%d,%d)", slide.From.X, slide.From.Y),
				"to":      fmt.Sprintf("(%d,%d)", slide.To.X, slide.To.Y),
				"moved":   slide.MovedCells,
			}).Debug("slide")
		}

		if opts.delay > 0 {
			time.Sleep(opts.delay)
		}
	}

	result.Won = state.Won || state.WinPhase != engine.WinNotWon
	return result, nil
}
