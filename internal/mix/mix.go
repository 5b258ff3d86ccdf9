// Package mix flattens all tracks into one stereo stream for the export
// path: gain-weighted accumulation, then uniform peak normalization only
// when the sum actually clips.
package mix

import (
	"encoding/binary"
	"math"

	"github.com/geoffmyers/multitrack-audio-visualizer/internal/track"
)

// Mix sums every track into left/right accumulators. Channel 0 feeds the
// left, channel 1 (or channel 0 again for mono) feeds the right, each
// weighted by the track's opacity. Output length covers the longest
// track; the rate is the highest track rate, with lower-rate tracks
// accumulated by nearest-index conversion. If the summed peak exceeds
// 1.0 the whole mix is divided by it; quieter mixes are left untouched.
func Mix(tracks []*track.Track) (left, right []float64, sampleRate int) {
	for _, tr := range tracks {
		if tr.SampleRate() > sampleRate {
			sampleRate = tr.SampleRate()
		}
	}
	if sampleRate <= 0 {
		return nil, nil, 0
	}

	var globalDur float64
	for _, tr := range tracks {
		if d := tr.Duration(); d > globalDur {
			globalDur = d
		}
	}

	n := int(math.Ceil(globalDur * float64(sampleRate)))
	left = make([]float64, n)
	right = make([]float64, n)

	for _, tr := range tracks {
		gain := tr.Opacity
		if gain < 0 {
			gain = 0
		}
		if gain > 1 {
			gain = 1
		}
		lch := tr.ChannelData(0)
		rch := tr.ChannelData(1)
		if rch == nil {
			rch = lch
		}
		if len(lch) == 0 {
			continue
		}

		if tr.SampleRate() == sampleRate {
			for i := 0; i < len(lch) && i < n; i++ {
				left[i] += lch[i] * gain
				right[i] += rch[i] * gain
			}
			continue
		}
		ratio := float64(tr.SampleRate()) / float64(sampleRate)
		for i := 0; i < n; i++ {
			src := int(float64(i) * ratio)
			if src >= len(lch) {
				break
			}
			left[i] += lch[src] * gain
			right[i] += rch[src] * gain
		}
	}

	peak := 0.0
	for i := range left {
		if v := math.Abs(left[i]); v > peak {
			peak = v
		}
		if v := math.Abs(right[i]); v > peak {
			peak = v
		}
	}
	if peak > 1 {
		inv := 1 / peak
		for i := range left {
			left[i] *= inv
			right[i] *= inv
		}
	}

	return left, right, sampleRate
}

// Interleave16 converts stereo float samples into interleaved s16le PCM
// bytes, clamping to [-1, 1] and rounding each sample.
func Interleave16(left, right []float64) []byte {
	n := len(left)
	if len(right) < n {
		n = len(right)
	}
	out := make([]byte, n*4)
	for i := 0; i < n; i++ {
		binary.LittleEndian.PutUint16(out[i*4:], uint16(sample16(left[i])))
		binary.LittleEndian.PutUint16(out[i*4+2:], uint16(sample16(right[i])))
	}
	return out
}

// Ints16 converts stereo float samples into interleaved int samples for
// WAV encoding.
func Ints16(left, right []float64) []int {
	n := len(left)
	if len(right) < n {
		n = len(right)
	}
	out := make([]int, n*2)
	for i := 0; i < n; i++ {
		out[i*2] = int(sample16(left[i]))
		out[i*2+1] = int(sample16(right[i]))
	}
	return out
}

func sample16(v float64) int16 {
	if v > 1 {
		v = 1
	}
	if v < -1 {
		v = -1
	}
	s := math.Round(v * 32767)
	return int16(s)
}
