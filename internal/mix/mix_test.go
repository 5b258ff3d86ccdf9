package mix

import (
	"math"
	"testing"

	"github.com/geoffmyers/multitrack-audio-visualizer/internal/track"
)

func newTrack(t *testing.T, channels [][]float64, rate int) *track.Track {
	t.Helper()
	tr, err := track.NewTrack("t", channels, rate)
	if err != nil {
		t.Fatalf("NewTrack() error = %v", err)
	}
	return tr
}

func TestMixEmpty(t *testing.T) {
	left, right, rate := Mix(nil)
	if left != nil || right != nil || rate != 0 {
		t.Fatalf("Mix(nil) = (%v, %v, %d), want (nil, nil, 0)", left, right, rate)
	}
}

func TestMixAccumulatesWithOpacityGain(t *testing.T) {
	a := newTrack(t, [][]float64{{0.2, 0.2}, {0.4, 0.4}}, 100)
	b := newTrack(t, [][]float64{{0.1, 0.1}}, 100)
	b.Opacity = 0.5

	left, right, rate := Mix([]*track.Track{a, b})
	if rate != 100 {
		t.Fatalf("rate = %d, want 100", rate)
	}
	if len(left) != 2 || len(right) != 2 {
		t.Fatalf("length = %d/%d, want 2/2", len(left), len(right))
	}
	// left = 0.2 + 0.1*0.5; right = 0.4 + 0.1*0.5 (mono b feeds both).
	if math.Abs(left[0]-0.25) > 1e-12 {
		t.Fatalf("left[0] = %v, want 0.25", left[0])
	}
	if math.Abs(right[0]-0.45) > 1e-12 {
		t.Fatalf("right[0] = %v, want 0.45", right[0])
	}
}

func TestMixLengthCoversLongestTrack(t *testing.T) {
	short := newTrack(t, [][]float64{make([]float64, 50)}, 100)  // 0.5s
	long := newTrack(t, [][]float64{make([]float64, 150)}, 100)  // 1.5s
	left, _, _ := Mix([]*track.Track{short, long})
	if len(left) != 150 {
		t.Fatalf("mix length = %d, want 150 (ceil of longest duration)", len(left))
	}
}

func TestMixNormalizesOnlyWhenClipping(t *testing.T) {
	quietA := newTrack(t, [][]float64{{0.3, -0.2}}, 100)
	quietB := newTrack(t, [][]float64{{0.4, 0.1}}, 100)
	left, _, _ := Mix([]*track.Track{quietA, quietB})
	// Peak 0.7 <= 1.0: accumulation untouched, no scaling.
	if math.Abs(left[0]-0.7) > 1e-12 {
		t.Fatalf("left[0] = %v, want exact sum 0.7 (no normalization)", left[0])
	}

	loudA := newTrack(t, [][]float64{{0.9, 0.9}}, 100)
	loudB := newTrack(t, [][]float64{{0.9, -0.9}}, 100)
	left, right, _ := Mix([]*track.Track{loudA, loudB})
	peak := 0.0
	for i := range left {
		if v := math.Abs(left[i]); v > peak {
			peak = v
		}
		if v := math.Abs(right[i]); v > peak {
			peak = v
		}
	}
	if peak > 1.0+1e-12 {
		t.Fatalf("mix peak = %v, want <= 1.0 after normalization", peak)
	}
	// Uniform division preserves proportion: 1.8 scales to exactly 1.0.
	if math.Abs(left[0]-1.0) > 1e-12 {
		t.Fatalf("left[0] = %v, want 1.0", left[0])
	}
}

func TestMixResamplesLowerRateTracks(t *testing.T) {
	low := newTrack(t, [][]float64{{0.5, 0.5}}, 100)    // 0.02s at 100Hz
	high := newTrack(t, [][]float64{make([]float64, 4)}, 200) // 0.02s at 200Hz
	left, _, rate := Mix([]*track.Track{low, high})
	if rate != 200 {
		t.Fatalf("rate = %d, want 200 (highest track rate)", rate)
	}
	if len(left) != 4 {
		t.Fatalf("length = %d, want 4", len(left))
	}
	// Nearest-index conversion repeats each low-rate sample.
	for i, v := range left {
		if math.Abs(v-0.5) > 1e-12 {
			t.Fatalf("left[%d] = %v, want 0.5", i, v)
		}
	}
}

func TestInterleave16ClampsAndRounds(t *testing.T) {
	raw := Interleave16([]float64{1.5, 0.5}, []float64{-1.5, 0})
	if len(raw) != 8 {
		t.Fatalf("length = %d, want 8", len(raw))
	}
	// 1.5 clamps to 32767; -1.5 clamps to -32767.
	if got := int16(uint16(raw[0]) | uint16(raw[1])<<8); got != 32767 {
		t.Fatalf("left[0] = %d, want 32767", got)
	}
	if got := int16(uint16(raw[2]) | uint16(raw[3])<<8); got != -32767 {
		t.Fatalf("right[0] = %d, want -32767", got)
	}
	if got := int16(uint16(raw[4]) | uint16(raw[5])<<8); got != 16384 {
		t.Fatalf("left[1] = %d, want round(0.5*32767) = 16384", got)
	}
}

func TestInts16Shape(t *testing.T) {
	ints := Ints16([]float64{0.5, -0.5}, []float64{0, 1})
	want := []int{16384, 0, -16384, 32767}
	if len(ints) != len(want) {
		t.Fatalf("length = %d, want %d", len(ints), len(want))
	}
	for i := range want {
		if ints[i] != want[i] {
			t.Fatalf("ints[%d] = %d, want %d", i, ints[i], want[i])
		}
	}
}
