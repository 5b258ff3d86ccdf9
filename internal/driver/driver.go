// Package driver paces compositor frames. Two interchangeable strategies
// exist: a realtime loop gated by a wall clock and fed by a playback
// transport, and an offline loop that walks frame indices with no clock
// at all. Given the same tracks, time, and settings both produce
// identical frames; only the pacing differs.
package driver

import (
	"context"
	"math"
	"time"
)

// Transport supplies the realtime strategy's notion of "now". Pause,
// seek, and offset arithmetic are the transport's concern.
type Transport interface {
	CurrentTime() float64
	Duration() float64
}

// Realtime frame-rate bounds.
const (
	MinFPS = 15
	MaxFPS = 60
)

// Realtime gates frame rendering against a monotonic clock. Overshoot is
// absorbed into the next interval's baseline so the cadence never drifts.
type Realtime struct {
	transport Transport
	interval  time.Duration
	baseline  time.Time
	started   bool
}

// NewRealtime creates a realtime strategy capped at the given frame
// rate, clamped to [MinFPS, MaxFPS].
func NewRealtime(t Transport, fps int) *Realtime {
	if fps < MinFPS {
		fps = MinFPS
	}
	if fps > MaxFPS {
		fps = MaxFPS
	}
	return &Realtime{
		transport: t,
		interval:  time.Second / time.Duration(fps),
	}
}

// Interval returns the frame interval implied by the fps cap.
func (r *Realtime) Interval() time.Duration { return r.interval }

// Step renders one frame if the interval gate has elapsed at the given
// clock reading. It reports whether a frame was rendered.
func (r *Realtime) Step(now time.Time, render func(currentTime float64)) bool {
	if r.started {
		elapsed := now.Sub(r.baseline)
		if elapsed < r.interval {
			return false
		}
		// Advance the baseline by whole intervals; the leftover overshoot
		// shortens the next gate instead of accumulating as drift.
		r.baseline = r.baseline.Add(elapsed / r.interval * r.interval)
	} else {
		r.baseline = now
		r.started = true
	}

	render(r.transport.CurrentTime())
	return true
}

// Run drives Step from a ticker until the context is cancelled. Each
// frame is self-contained, so cancellation needs no unwinding.
func (r *Realtime) Run(ctx context.Context, render func(currentTime float64)) {
	tick := time.NewTicker(r.interval / 4)
	defer tick.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-tick.C:
			r.Step(now, render)
		}
	}
}

// Offline iterates logical frames with no clock: frame i renders at
// exactly i/fps seconds, recomputed fresh each frame so long exports
// never accumulate timing error.
type Offline struct {
	FPS      float64
	Duration float64

	// MaxFrames, when > 0, hard-caps the number of frames rendered.
	// Checked only between frames.
	MaxFrames int

	// BatchSize and Yield let a host UI breathe during long exports:
	// after every BatchSize frames Yield is called. Purely cooperative;
	// it never changes computed output.
	BatchSize int
	Yield     func()
}

// Frames returns the number of frames the strategy will render.
func (o *Offline) Frames() int {
	if o.FPS <= 0 || o.Duration <= 0 {
		return 0
	}
	n := int(math.Ceil(o.Duration * o.FPS))
	if o.MaxFrames > 0 && n > o.MaxFrames {
		n = o.MaxFrames
	}
	return n
}

// Run calls render once per frame in order. The first render error
// aborts the run, as does context cancellation at a frame boundary.
func (o *Offline) Run(ctx context.Context, render func(frame int, currentTime float64) error) error {
	total := o.Frames()
	for i := 0; i < total; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := render(i, float64(i)/o.FPS); err != nil {
			return err
		}
		if o.BatchSize > 0 && o.Yield != nil && (i+1)%o.BatchSize == 0 {
			o.Yield()
		}
	}
	return nil
}
