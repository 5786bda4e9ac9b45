package animation

import (
	"time"

	"github.com/relabs-tech/parallax/internal/motion"
)

// Track is the animated position of one element between two points.
type Track struct {
	FromX, FromY float64
	ToX, ToY     float64
	Start        time.Time
	Duration     time.Duration
	Easing       motion.Interpolator
}

// Sample returns the position at now.
func (tr *Track) Sample(now time.Time) (x, y float64) {
	if tr.Duration <= 0 || !now.Before(tr.Start.Add(tr.Duration)) {
		return tr.ToX, tr.ToY
	}
	elapsed := now.Sub(tr.Start)
	if elapsed < 0 {
		return tr.FromX, tr.FromY
	}
	t := float64(elapsed) / float64(tr.Duration)
	p := t
	if tr.Easing != nil {
		p = tr.Easing.Interpolate(t)
	}
	return tr.FromX + (tr.ToX-tr.FromX)*p, tr.FromY + (tr.ToY-tr.FromY)*p
}

// Retarget starts a new leg from wherever the element is at now.
func (tr *Track) Retarget(now time.Time, t motion.Translation) {
	tr.FromX, tr.FromY = tr.Sample(now)
	tr.ToX, tr.ToY = t.X, t.Y
	tr.Start = now
	tr.Duration = t.Duration
	tr.Easing = t.Easing
}

// Done reports whether the element has reached its destination.
func (tr *Track) Done(now time.Time) bool {
	return !now.Before(tr.Start.Add(tr.Duration))
}
