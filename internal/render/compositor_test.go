package render

import (
	"bytes"
	"math"
	"testing"

	"github.com/geoffmyers/multitrack-audio-visualizer/internal/track"
)

func constTrack(t *testing.T, value float64, seconds float64, rate int) *track.Track {
	t.Helper()
	n := int(seconds * float64(rate))
	data := make([]float64, n)
	for i := range data {
		data[i] = value
	}
	tr, err := track.NewTrack("const", [][]float64{data}, rate)
	if err != nil {
		t.Fatalf("NewTrack() error = %v", err)
	}
	tr.Color = "#4fc3f7"
	return tr
}

func sineTrack(t *testing.T, freq float64, seconds float64, rate int) *track.Track {
	t.Helper()
	n := int(seconds * float64(rate))
	data := make([]float64, n)
	for i := range data {
		data[i] = math.Sin(2 * math.Pi * freq * float64(i) / float64(rate))
	}
	tr, err := track.NewTrack("sine", [][]float64{data}, rate)
	if err != nil {
		t.Fatalf("NewTrack() error = %v", err)
	}
	tr.Color = "#ff8a65"
	return tr
}

func baseSettings(layout Layout) Settings {
	return Settings{
		Layout:        layout,
		Amplitude:     AmplitudeIndividual,
		HeightPercent: 50,
		WindowDur:     1.0,
	}
}

func TestRevealLimit(t *testing.T) {
	for _, tc := range []struct {
		currentTime, windowDur float64
		width, want            int
	}{
		{0.5, 1.0, 100, 50},
		{0.0, 1.0, 100, 0},
		{0.999, 1.0, 100, 99},
		{1.0, 1.0, 100, 100},
		{5.0, 1.0, 100, 100},
		{0.5, 0, 100, 100},
	} {
		if got := revealLimit(tc.currentTime, tc.windowDur, tc.width); got != tc.want {
			t.Fatalf("revealLimit(%v, %v, %d) = %d, want %d",
				tc.currentTime, tc.windowDur, tc.width, got, tc.want)
		}
	}
}

func TestProgressiveReveal(t *testing.T) {
	s := NewSurface(LiveDimensions(100, 100))
	c := NewCompositor(s)
	tracks := []*track.Track{constTrack(t, 0.5, 3.0, 44100)}

	c.Render(tracks, 0.5, 3.0, baseSettings(LayoutOverlay))

	// Exactly the first 50 columns may carry pixels; the rest stay at
	// the background color.
	for x := 50; x < 100; x++ {
		for y := 0; y < 100; y++ {
			if !s.IsBackground(x, y) {
				t.Fatalf("column %d touched at y=%d before reveal reached it", x, y)
			}
		}
	}
	drawn := false
	for x := 0; x < 50 && !drawn; x++ {
		for y := 30; y < 70; y++ {
			if !s.IsBackground(x, y) {
				drawn = true
				break
			}
		}
	}
	if !drawn {
		t.Fatal("revealed half is empty")
	}
}

func TestOverlayFullAmplitudeSpansSurface(t *testing.T) {
	s := NewSurface(ExportDimensions())
	c := NewCompositor(s)
	tracks := []*track.Track{constTrack(t, 1.0, 3.0, 44100)}

	c.Render(tracks, 2.0, 3.0, baseSettings(LayoutOverlay))

	// heightPercent=50 on a 1080 surface gives maxAmplitude 540; a peak
	// of 1.0 spans the whole column around centerY=540.
	const x = 500
	if s.IsBackground(x, 0) {
		t.Fatal("top pixel not drawn at full amplitude")
	}
	if s.IsBackground(x, 1079) {
		t.Fatal("bottom pixel not drawn at full amplitude")
	}
	if s.IsBackground(x, 540) {
		t.Fatal("center pixel not drawn")
	}
}

func TestNormalizedAmplitudeScalesToGlobalMax(t *testing.T) {
	loud := constTrack(t, 0.5, 3.0, 44100)
	quiet := constTrack(t, 0.2, 3.0, 44100)
	tracks := []*track.Track{quiet, loud}

	st := baseSettings(LayoutOverlay)
	const x, y = 60, 5 // outside the quiet extent, inside the normalized one

	s := NewSurface(LiveDimensions(100, 100))
	NewCompositor(s).Render(tracks, 2.0, 3.0, st)
	if !s.IsBackground(x, y) {
		t.Fatal("individual mode drew beyond the raw 0.5 peak extent")
	}

	st.Amplitude = AmplitudeNormalized
	s = NewSurface(LiveDimensions(100, 100))
	NewCompositor(s).Render(tracks, 2.0, 3.0, st)
	if s.IsBackground(x, y) {
		t.Fatal("normalized mode did not scale the loud track to full extent")
	}
}

func TestAdditiveStackNeverExceedsMaxAmplitude(t *testing.T) {
	tracks := []*track.Track{
		constTrack(t, 0.6, 3.0, 44100),
		constTrack(t, 0.6, 3.0, 44100),
		constTrack(t, 0.6, 3.0, 44100),
	}
	st := baseSettings(LayoutOverlayAdditive)
	st.HeightPercent = 40 // maxAmplitude 40px on a 100px surface

	s := NewSurface(LiveDimensions(100, 100))
	NewCompositor(s).Render(tracks, 2.0, 3.0, st)

	// Sum of amplitudes is 1.8 > 1.0, so the stack is scaled down to fit
	// exactly within maxAmplitude: rows above centerY-40 stay untouched.
	const x = 60
	for y := 0; y < 10; y++ {
		if !s.IsBackground(x, y) {
			t.Fatalf("stacked segments exceeded maxAmplitude: pixel drawn at y=%d", y)
		}
	}
	if s.IsBackground(x, 12) {
		t.Fatal("scaled stack did not reach its expected extent")
	}
}

func TestStackedBands(t *testing.T) {
	tracks := []*track.Track{
		constTrack(t, 0.5, 3.0, 44100),
		constTrack(t, 0.5, 3.0, 44100),
	}
	s := NewSurface(LiveDimensions(100, 100))
	NewCompositor(s).Render(tracks, 2.0, 3.0, baseSettings(LayoutStacked))

	const x = 60
	if s.IsBackground(x, 25) {
		t.Fatal("first band centerline not drawn")
	}
	if s.IsBackground(x, 75) {
		t.Fatal("second band centerline not drawn")
	}
	if !s.IsBackground(x, 50) {
		t.Fatal("band boundary drawn; half-amplitude bands should not meet")
	}
}

func TestSpectrumLayoutsDrawFromBase(t *testing.T) {
	tracks := []*track.Track{sineTrack(t, 64, 2.0, 1024)}
	st := baseSettings(LayoutSpectrumOverlay)
	st.FFTSize = 256

	s := NewSurface(LiveDimensions(100, 100))
	NewCompositor(s).Render(tracks, 1.5, 2.0, st)

	drawn := false
	for x := 0; x < 98 && !drawn; x++ {
		if !s.IsBackground(x, 99) {
			drawn = true
		}
	}
	if !drawn {
		t.Fatal("spectrum-overlay drew nothing along the bottom edge")
	}

	st.Layout = LayoutSpectrumStacked
	s = NewSurface(LiveDimensions(100, 100))
	NewCompositor(s).Render(tracks, 1.5, 2.0, st)
	drawn = false
	for x := 0; x < 98 && !drawn; x++ {
		if !s.IsBackground(x, 99) {
			drawn = true
		}
	}
	if !drawn {
		t.Fatal("spectrum-stacked drew nothing in the single track band")
	}
}

func TestEmptyStorePlaceholder(t *testing.T) {
	s := NewSurface(LiveDimensions(200, 100))
	NewCompositor(s).Render(nil, 0.5, 0, baseSettings(LayoutOverlay))

	drawn := false
	for x := 0; x < 200 && !drawn; x++ {
		if !s.IsBackground(x, 50) {
			drawn = true
		}
	}
	if !drawn {
		t.Fatal("empty-state placeholder not drawn")
	}
}

func TestRenderIsDeterministic(t *testing.T) {
	tracks := []*track.Track{
		sineTrack(t, 220, 3.0, 8000),
		constTrack(t, 0.3, 3.0, 8000),
	}
	st := baseSettings(LayoutOverlayAdditive)
	st.Smoothing = 2

	a := NewSurface(LiveDimensions(320, 180))
	b := NewSurface(LiveDimensions(320, 180))
	NewCompositor(a).Render(tracks, 1.75, 3.0, st)
	NewCompositor(b).Render(tracks, 1.75, 3.0, st)

	if !bytes.Equal(a.RGB24(), b.RGB24()) {
		t.Fatal("two renders of identical inputs differ")
	}
}
