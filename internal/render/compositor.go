package render

import (
	"image/color"
	"math"
	"time"

	"github.com/geoffmyers/multitrack-audio-visualizer/internal/track"
	"github.com/geoffmyers/multitrack-audio-visualizer/internal/util"
	"github.com/geoffmyers/multitrack-audio-visualizer/internal/viz"
)

// Layout selects how tracks share the surface.
type Layout string

const (
	LayoutOverlay         Layout = "overlay"
	LayoutOverlayAdditive Layout = "overlay-additive"
	LayoutStacked         Layout = "stacked"
	LayoutSpectrumOverlay Layout = "spectrum-overlay"
	LayoutSpectrumStacked Layout = "spectrum-stacked"
)

// AmplitudeMode selects per-track amplitude scaling.
type AmplitudeMode string

const (
	// AmplitudeIndividual uses each track's raw [0,1] peaks directly.
	AmplitudeIndividual AmplitudeMode = "individual"
	// AmplitudeNormalized divides every track by the loudest peak across
	// all tracks for the current frame.
	AmplitudeNormalized AmplitudeMode = "normalized"
)

// Layouts lists all layout modes in cycling order.
func Layouts() []Layout {
	return []Layout{
		LayoutOverlay,
		LayoutOverlayAdditive,
		LayoutStacked,
		LayoutSpectrumOverlay,
		LayoutSpectrumStacked,
	}
}

// Settings is the immutable per-frame render parameter bundle. Whoever
// drives frame timing holds the current value and passes it in; the
// compositor never reaches into ambient state.
type Settings struct {
	Layout        Layout
	Amplitude     AmplitudeMode
	HeightPercent float64
	Smoothing     int
	WindowDur     float64
	FFTSize       int // 0 means viz.DefaultFFTSize
}

var (
	markerColor = color.RGBA{R: 235, G: 235, B: 235, A: 255}
	labelColor  = color.RGBA{R: 200, G: 200, B: 205, A: 255}
	faintColor  = color.RGBA{R: 70, G: 70, B: 80, A: 255}
)

// Compositor draws per-track extracted buffers into a surface according
// to a layout and amplitude mode. The overlay centerline is fixed at
// construction time: a live surface that has grown taller than its
// nominal height keeps the original visual center rather than drifting.
type Compositor struct {
	surface *Surface
	centerY float64
}

// NewCompositor binds a compositor to a surface, centering on it.
func NewCompositor(s *Surface) *Compositor {
	return &Compositor{surface: s, centerY: s.Dims().CenterY()}
}

// NewCompositorWithCenter binds a compositor with an explicit overlay
// centerline, for callers whose surface has grown beyond its base height.
func NewCompositorWithCenter(s *Surface, centerY float64) *Compositor {
	return &Compositor{surface: s, centerY: centerY}
}

// Surface returns the bound surface.
func (c *Compositor) Surface() *Surface { return c.surface }

// Render draws one frame for the given playback position. It clears the
// surface, draws every track per the settings, and finishes with the
// time indicator overlay. All extraction edge cases resolve to zero
// buffers, so rendering never fails mid-frame.
func (c *Compositor) Render(tracks []*track.Track, currentTime, duration float64, st Settings) {
	s := c.surface
	s.Clear()
	dims := s.Dims()

	maxX := revealLimit(currentTime, st.WindowDur, dims.Width)

	if len(tracks) == 0 {
		c.drawEmptyState()
	} else {
		switch st.Layout {
		case LayoutSpectrumOverlay:
			c.drawSpectrumOverlay(tracks, currentTime, st, maxX)
		case LayoutSpectrumStacked:
			c.drawSpectrumStacked(tracks, currentTime, st, maxX)
		case LayoutOverlayAdditive:
			bufs, scale := c.waveforms(tracks, currentTime, st, dims.Width)
			c.drawAdditive(tracks, bufs, scale, st, maxX)
		case LayoutStacked:
			bufs, scale := c.waveforms(tracks, currentTime, st, dims.Width)
			c.drawStacked(tracks, bufs, scale, st, maxX)
		default:
			bufs, scale := c.waveforms(tracks, currentTime, st, dims.Width)
			c.drawOverlay(tracks, bufs, scale, st, maxX)
		}
	}

	c.drawTimeIndicator(currentTime, maxX)
}

// revealLimit computes how many leading pixel columns are visible. While
// less than a full window has elapsed only the elapsed fraction of the
// width is drawn; this "fills up then scrolls" behavior is load-bearing.
func revealLimit(currentTime, windowDur float64, width int) int {
	if windowDur > 0 && currentTime < windowDur {
		return int(math.Floor(currentTime / windowDur * float64(width)))
	}
	return width
}

// waveforms extracts every track's buffer for this frame and returns the
// shared amplitude scale. In normalized mode the extraction doubles as
// the global-max pre-pass; the buffers are reused for drawing so the
// cost is paid once.
func (c *Compositor) waveforms(tracks []*track.Track, currentTime float64, st Settings, width int) ([][]float64, float64) {
	bufs := make([][]float64, len(tracks))
	for i, tr := range tracks {
		bufs[i] = viz.Waveform(tr, currentTime, st.WindowDur, width, st.Smoothing)
	}

	scale := 1.0
	if st.Amplitude == AmplitudeNormalized {
		globalMax := 0.0
		for _, buf := range bufs {
			for _, v := range buf {
				if v > globalMax {
					globalMax = v
				}
			}
		}
		if globalMax > 0 {
			scale = 1 / globalMax
		}
	}
	return bufs, scale
}

func (c *Compositor) drawOverlay(tracks []*track.Track, bufs [][]float64, scale float64, st Settings, maxX int) {
	dims := c.surface.Dims()
	maxAmp := dims.HeightPercentToPixels(st.HeightPercent)

	for i, tr := range tracks {
		col := ParseColor(tr.Color)
		op := clamp01(tr.Opacity)
		for x := 0; x < maxX; x++ {
			y := bufs[i][x] * scale * maxAmp
			c.surface.VLine(x, int(c.centerY-y), int(c.centerY+y), col, op)
		}
	}
}

func (c *Compositor) drawAdditive(tracks []*track.Track, bufs [][]float64, scale float64, st Settings, maxX int) {
	dims := c.surface.Dims()
	maxAmp := dims.HeightPercentToPixels(st.HeightPercent)
	centerY := c.centerY

	amps := make([]float64, len(tracks))
	for x := 0; x < maxX; x++ {
		sum := 0.0
		for i := range tracks {
			amps[i] = bufs[i][x] * scale
			sum += amps[i]
		}
		// Proportional scale-down rather than a hard clamp: relative
		// track proportions survive, and the stacked total never
		// exceeds maxAmp.
		if sum > 1 {
			sf := 1 / sum
			for i := range amps {
				amps[i] *= sf
			}
		}

		up := centerY
		down := centerY
		for i, tr := range tracks {
			seg := amps[i] * maxAmp
			if seg < 0.5 {
				continue
			}
			col := ParseColor(tr.Color)
			op := clamp01(tr.Opacity)
			c.surface.VLine(x, int(up-seg), int(up), col, op)
			c.surface.VLine(x, int(down), int(down+seg), col, op)
			up -= seg
			down += seg
		}
	}
}

func (c *Compositor) drawStacked(tracks []*track.Track, bufs [][]float64, scale float64, st Settings, maxX int) {
	dims := c.surface.Dims()
	bandH := float64(dims.Height) / float64(len(tracks))
	// Half the overlay amplitude: both directions must fit in one band.
	maxAmp := dims.HeightPercentToPixels(st.HeightPercent) / 2

	for i, tr := range tracks {
		cy := bandH*float64(i) + bandH/2
		col := ParseColor(tr.Color)
		op := clamp01(tr.Opacity)
		for x := 0; x < maxX; x++ {
			y := bufs[i][x] * scale * maxAmp
			c.surface.VLine(x, int(cy-y), int(cy+y), col, op)
		}
	}
}

func (c *Compositor) drawSpectrumOverlay(tracks []*track.Track, currentTime float64, st Settings, maxX int) {
	dims := c.surface.Dims()
	c.drawSpectrumBars(tracks, currentTime, st, maxX, float64(dims.Height))
}

func (c *Compositor) drawSpectrumStacked(tracks []*track.Track, currentTime float64, st Settings, maxX int) {
	dims := c.surface.Dims()
	bandH := float64(dims.Height) / float64(len(tracks))
	for i := range tracks {
		c.drawSpectrumBars(tracks[i:i+1], currentTime, st, maxX, bandH*float64(i+1))
	}
}

// drawSpectrumBars draws magnitude bars growing upward from baseY.
// Logarithmic compression keeps quiet content visible.
func (c *Compositor) drawSpectrumBars(tracks []*track.Track, currentTime float64, st Settings, maxX int, baseY float64) {
	dims := c.surface.Dims()
	fftSize := st.FFTSize
	if fftSize <= 0 {
		fftSize = viz.DefaultFFTSize
	}
	bins := fftSize / 2
	barW := float64(dims.Width) / float64(bins)
	maxBarH := dims.HeightPercentToPixels(st.HeightPercent)

	for _, tr := range tracks {
		mags := viz.Spectrum(tr, currentTime, st.WindowDur, fftSize)
		col := ParseColor(tr.Color)
		op := clamp01(tr.Opacity)
		for b := 0; b < bins; b++ {
			x0 := int(float64(b) * barW)
			x1 := int(float64(b+1) * barW)
			if x1 <= x0 {
				x1 = x0 + 1
			}
			if x0 >= maxX {
				break
			}
			if x1 > maxX {
				x1 = maxX
			}
			h := math.Log10(1+mags[b]*100) * maxBarH
			y0 := int(baseY - h)
			if y0 < 0 {
				y0 = 0
			}
			c.surface.FillRect(x0, y0, x1, int(baseY), col, op)
		}
	}
}

func (c *Compositor) drawEmptyState() {
	dims := c.surface.Dims()
	cy := int(c.centerY)
	for x := 0; x < dims.Width; x++ {
		c.surface.blendPixel(x, cy, faintColor, 0.6)
	}
	msg := "no tracks loaded"
	x := dims.Width/2 - len(msg)*7/2
	if x < 0 {
		x = 0
	}
	c.surface.DrawLabel(msg, x, cy-8, labelColor)
}

// drawTimeIndicator overlays the current-time label and the playhead
// marker on top of all track layers. The marker follows the same
// progressive-reveal rule as the tracks.
func (c *Compositor) drawTimeIndicator(currentTime float64, maxX int) {
	dims := c.surface.Dims()

	x := maxX - 1
	if x >= dims.Width {
		x = dims.Width - 1
	}
	if x >= 0 {
		c.surface.VLine(x, 0, dims.Height-1, markerColor, 0.35)
	}

	label := util.FormatDuration(time.Duration(currentTime * float64(time.Second)))
	c.surface.DrawLabel(label, 8, 16, labelColor)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
