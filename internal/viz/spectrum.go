package viz

import "math"

// DefaultFFTSize is the analysis size used when a caller has no reason
// to pick another power of two.
const DefaultFFTSize = 2048

// Spectrum extracts fftSize/2 magnitude bins for one sliding window via
// a Hann-windowed FFT. The window rule matches Waveform. If the window
// holds fewer than fftSize samples the result is all zeros: zero-padding
// would fabricate spectral content out of silence. fftSize must be a
// power of two; anything else yields the zero buffer.
func Spectrum(src Source, currentTime, windowDur float64, fftSize int) []float64 {
	out := make([]float64, fftSize/2)
	if !isPowerOfTwo(fftSize) {
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
	span := endSample - startSample
	if span < fftSize {
		return out
	}

	// Nearest-index resample of the window down to fftSize points, in
	// keeping with the peak-style extraction philosophy (no interpolated
	// samples that never existed).
	re := make([]float64, fftSize)
	im := make([]float64, fftSize)
	step := float64(span) / float64(fftSize)
	for i := 0; i < fftSize; i++ {
		idx := startSample + int(float64(i)*step)
		if idx >= endSample {
			idx = endSample - 1
		}
		re[i] = samples[idx]
	}

	hann(re)
	fft(re, im)

	// Keep the lower half; the upper bins mirror it for real input.
	for i := 0; i < fftSize/2; i++ {
		out[i] = math.Sqrt(re[i]*re[i] + im[i]*im[i])
	}
	return out
}
