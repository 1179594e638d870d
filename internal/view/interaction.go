package view

import "sync/atomic"

// PanController gates pointer-move events: only moves between a press and
// the matching release (or the pointer leaving the canvas) pan the view.
type PanController struct {
	panning      bool
	lastX, lastY float64
}

// Press starts a drag at (x, y).
func (p *PanController) Press(x, y float64) {
	p.panning = true
	p.lastX, p.lastY = x, y
}

// Move returns the pixel delta since the previous event. ok is false when
// no drag is in progress.
func (p *PanController) Move(x, y float64) (dx, dy float64, ok bool) {
	if !p.panning {
		return 0, 0, false
	}
	dx, dy = x-p.lastX, y-p.lastY
	p.lastX, p.lastY = x, y
	return dx, dy, true
}

func (p *PanController) Release() { p.panning = false }

// Leave ends the drag when the pointer exits the canvas, so a button
// released outside it cannot leave the view stuck panning.
func (p *PanController) Leave() { p.panning = false }

func (p *PanController) Panning() bool { return p.panning }

// Sequencer hands out increasing request tokens. A response is applied
// only if its token is still the latest one issued.
type Sequencer struct {
	last atomic.Uint64
}

// Next issues a new token, superseding every earlier one.
func (s *Sequencer) Next() uint64 {
	return s.last.Add(1)
}

// IsLatest reports whether token is the most recently issued one.
func (s *Sequencer) IsLatest(token uint64) bool {
	return token != 0 && s.last.Load() == token
}
