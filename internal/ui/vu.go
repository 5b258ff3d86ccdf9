package ui

import "github.com/charmbracelet/harmonica"

// vuSpring smooths the header level meter so it decays naturally instead
// of flickering at the tick rate. Presentation only: it never feeds back
// into extraction.
type vuSpring struct {
	spring harmonica.Spring
	pos    float64
	vel    float64
}

func newVUSpring(fps int) vuSpring {
	return vuSpring{spring: harmonica.NewSpring(harmonica.FPS(fps), 12.0, 0.7)}
}

func (v *vuSpring) step(target float64) float64 {
	v.pos, v.vel = v.spring.Update(v.pos, v.vel, target)
	if v.pos < 0 {
		v.pos = 0
	}
	if v.pos > 1 {
		v.pos = 1
	}
	return v.pos
}

// meter renders the level as a fixed-width bar.
func (v *vuSpring) meter(width int) string {
	if width < 1 {
		return ""
	}
	filled := int(v.pos * float64(width))
	if filled > width {
		filled = width
	}
	out := make([]rune, width)
	for i := range out {
		if i < filled {
			out[i] = '█'
		} else {
			out[i] = '░'
		}
	}
	return string(out)
}
