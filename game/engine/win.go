package engine

import (
	"sync"
	"time"
)

// Scheduler runs fn once after d. The returned stop function cancels the
// task if it has not started yet.
type Scheduler interface {
	AfterFunc(d time.Duration, fn func()) (stop func() bool)
}

// TimerScheduler schedules with time.AfterFunc. When Locker is set every
// callback runs while holding it, which lets callers serialize the timer
// with their own engine calls.
type TimerScheduler struct {
	Locker sync.Locker
}

// AfterFunc implements Scheduler
func (s TimerScheduler) AfterFunc(d time.Duration, fn func()) func() bool {
	locker := s.Locker
	t := time.AfterFunc(d, func() {
		if locker != nil {
			locker.Lock()
			defer locker.Unlock()
		}
		fn()
	})
	return t.Stop
}

// WinSequencer is the one-shot NotWon -> Winning -> Won machine of a single
// level. A fresh sequencer is created for every level load.
type WinSequencer struct {
	phase     WinPhase
	delay     time.Duration
	scheduler Scheduler
	stop      func() bool
	token     uint64
	cancelled bool
}

// NewWinSequencer creates a sequencer in the NotWon phase
func NewWinSequencer(scheduler Scheduler, delay time.Duration) *WinSequencer {
	if scheduler == nil {
		scheduler = TimerScheduler{}
	}
	return &WinSequencer{
		phase:     WinNotWon,
		delay:     delay,
		scheduler: scheduler,
	}
}

// Phase returns the current phase
func (w *WinSequencer) Phase() WinPhase {
	return w.phase
}

// Latched reports whether the win has been triggered
func (w *WinSequencer) Latched() bool {
	return w.phase != WinNotWon
}

// Trigger starts the sequence: exit runs immediately and reveal runs after
// the delay, at which point the phase becomes Won. Returns false if the
// sequence was already triggered or the sequencer was cancelled.
func (w *WinSequencer) Trigger(exit, reveal func()) bool {
	if w.phase != WinNotWon || w.cancelled {
		return false
	}
	w.phase = WinWinning
	if exit != nil {
		exit()
	}

	w.token++
	token := w.token
	w.stop = w.scheduler.AfterFunc(w.delay, func() {
		// stale after Cancel or a newer trigger
		if w.cancelled || w.token != token || w.phase != WinWinning {
			return
		}
		w.phase = WinWon
		w.stop = nil
		if reveal != nil {
			reveal()
		}
	})
	return true
}

// Cancel stops a pending reveal. The sequencer is unusable afterwards.
func (w *WinSequencer) Cancel() {
	w.cancelled = true
	w.token++
	if w.stop != nil {
		w.stop()
		w.stop = nil
	}
}

// Pending reports whether the reveal phase is still scheduled
func (w *WinSequencer) Pending() bool {
	return w.stop != nil && w.phase == WinWinning
}
