package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type manualTask struct {
	delay   time.Duration
	fn      func()
	stopped bool
	fired   bool
}

// manualScheduler runs scheduled callbacks only when the test says so
type manualScheduler struct {
	tasks []*manualTask
}

func (s *manualScheduler) AfterFunc(d time.Duration, fn func()) func() bool {
	task := &manualTask{delay: d, fn: fn}
	s.tasks = append(s.tasks, task)
	return func() bool {
		if task.fired || task.stopped {
			return false
		}
		task.stopped = true
		return true
	}
}

// fire runs every pending task
func (s *manualScheduler) fire() int {
	n := 0
	for _, task := range s.tasks {
		if task.stopped || task.fired {
			continue
		}
		task.fired = true
		task.fn()
		n++
	}
	return n
}

// fireStale runs every task even if it was stopped, like a timer that had
// already started when Stop was called
func (s *manualScheduler) fireStale() {
	for _, task := range s.tasks {
		task.fired = true
		task.fn()
	}
}

func (s *manualScheduler) pending() int {
	n := 0
	for _, task := range s.tasks {
		if !task.stopped && !task.fired {
			n++
		}
	}
	return n
}

func player(x, y int) Placement {
	return Placement{Pos: [2]int{x, y}, Size: 2, Dir: "horizontal", Player: true}
}

func horizontal(x, y, size int) Placement {
	return Placement{Pos: [2]int{x, y}, Size: size, Dir: "horizontal"}
}

func vertical(x, y, size int) Placement {
	return Placement{Pos: [2]int{x, y}, Size: size, Dir: "vertical"}
}

func testLevel(placements ...Placement) *LevelConfig {
	return &LevelConfig{Name: "test", Label: "1234", Vehicles: placements}
}

// newTestEngine creates an engine on the level with a manual scheduler and
// records every emitted event
func newTestEngine(t *testing.T, level *LevelConfig) (*GameEngine, *manualScheduler, *[]Event) {
	t.Helper()
	sched := &manualScheduler{}
	e := &GameEngine{scheduler: sched, revealWait: WinRevealDelay}
	events := &[]Event{}
	e.SetEventHandler(func(ev Event) {
		*events = append(*events, ev)
	})
	require.NoError(t, e.LoadLevel(level))
	*events = (*events)[:0]
	return e, sched, events
}

func eventsOfType(events []Event, typ EventType) []Event {
	var out []Event
	for _, ev := range events {
		if ev.Type == typ {
			out = append(out, ev)
		}
	}
	return out
}
