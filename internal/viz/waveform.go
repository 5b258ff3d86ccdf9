// Package viz turns decoded audio into per-frame visualization buffers:
// peak-amplitude waveforms and FFT magnitude spectra over a sliding time
// window. Every extraction is stateless and recomputed per frame, so the
// same inputs produce the same buffer whether driven live or offline.
package viz

import "math"

// Source is the decoded-audio shape the extractors consume. Any decoder
// producing per-channel float samples in [-1, 1] is interchangeable.
type Source interface {
	SampleRate() int
	NumChannels() int
	ChannelData(i int) []float64
	Duration() float64
}

// timeWindow computes the extraction window for a playback position.
// Before a full window of audio has elapsed, the window stays pinned to
// [0, windowDur] (clamped to the track's own length); the visible reveal
// fraction is the compositor's concern, not the extractor's.
func timeWindow(currentTime, windowDur, trackDur float64) (start, end float64) {
	if currentTime < windowDur {
		return 0, math.Min(windowDur, trackDur)
	}
	return currentTime - windowDur, currentTime
}

// Waveform extracts peak amplitudes for one sliding window, one value per
// target pixel column. Only channel 0 is read. Values are non-negative
// and stay in [0, 1] for samples in [-1, 1]. A degenerate window yields
// an all-zero buffer of the requested width.
func Waveform(src Source, currentTime, windowDur float64, targetWidth, smoothing int) []float64 {
	out := make([]float64, targetWidth)
	if targetWidth <= 0 {
		return out
	}

	samples := src.ChannelData(0)
	rate := src.SampleRate()
	if len(samples) == 0 || rate <= 0 {
		return out
	}

	start, end := timeWindow(currentTime, windowDur, src.Duration())
	startSample := int(math.Floor(start * float64(rate)))
	endSample := int(math.Floor(end * float64(rate)))
	if endSample > len(samples) {
		endSample = len(samples)
	}
	if endSample-startSample <= 0 {
		return out
	}

	// Peak-hold downsampling: each column takes the max absolute sample
	// in its (fractionally bounded) bucket, preserving transients that
	// averaging would wash out.
	span := endSample - startSample
	perColumn := float64(span) / float64(targetWidth)
	for col := 0; col < targetWidth; col++ {
		lo := startSample + int(float64(col)*perColumn)
		hi := startSample + int(float64(col+1)*perColumn)
		if hi > endSample {
			hi = endSample
		}
		if hi <= lo {
			hi = lo + 1
			if hi > endSample {
				continue
			}
		}
		peak := 0.0
		for i := lo; i < hi; i++ {
			if v := math.Abs(samples[i]); v > peak {
				peak = v
			}
		}
		out[col] = peak
	}

	if smoothing > 0 {
		out = smooth(out, smoothing)
	}
	return out
}

// smooth applies a centered moving average of width 1+2*level, averaging
// over however many in-bounds neighbors exist at the edges. Higher levels
// never increase the buffer's variance.
func smooth(buf []float64, level int) []float64 {
	out := make([]float64, len(buf))
	for i := range buf {
		lo := i - level
		if lo < 0 {
			lo = 0
		}
		hi := i + level
		if hi > len(buf)-1 {
			hi = len(buf) - 1
		}
		sum := 0.0
		for j := lo; j <= hi; j++ {
			sum += buf[j]
		}
		out[i] = sum / float64(hi-lo+1)
	}
	return out
}
