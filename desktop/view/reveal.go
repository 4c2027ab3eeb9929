package view

import (
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

const (
	exitDuration   = 0.6
	revealDuration = 0.8
)

// Reveal animates the two halves of a win: the player car driving off
// through the exit, and the label fading in once the server reveals it.
type Reveal struct {
	exit  *gween.Tween
	fade  *gween.Tween
	Label string

	// Offset is how far the player car has driven past its committed cell, in pixels
	Offset float32
	// Alpha of the revealed label, 0 to 1
	Alpha float32
}

// Exit starts the drive-off animation over distance pixels
func (r *Reveal) Exit(distance float32) {
	if r.exit != nil {
		return
	}
	r.exit = gween.New(0, distance, exitDuration, ease.InQuad)
}

// Show starts fading the label in
func (r *Reveal) Show(label string) {
	if r.fade != nil {
		return
	}
	r.Label = label
	r.fade = gween.New(0, 1, revealDuration, ease.OutCubic)
}

// Update advances both tweens by dt seconds
func (r *Reveal) Update(dt float32) {
	if r.exit != nil {
		r.Offset, _ = r.exit.Update(dt)
	}
	if r.fade != nil {
		r.Alpha, _ = r.fade.Update(dt)
	}
}

// Exiting reports whether the drive-off has started
func (r *Reveal) Exiting() bool {
	return r.exit != nil
}

// Shown reports whether the label has started to appear
func (r *Reveal) Shown() bool {
	return r.fade != nil
}

// Clear drops both animations, for a reset or a new level
func (r *Reveal) Clear() {
	*r = Reveal{}
}
