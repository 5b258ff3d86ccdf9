// Package config validates the export/visualization option surface and
// persists presets. The rendering core assumes pre-validated parameters;
// everything user-supplied is rejected here first.
package config

import (
	"fmt"

	"github.com/geoffmyers/multitrack-audio-visualizer/internal/render"
	"github.com/geoffmyers/multitrack-audio-visualizer/internal/viz"
)

// Codec choices passed through to the encoder untouched.
const (
	CodecH264 = "h264"
	CodecH265 = "h265"
)

// Options is the flat option bundle consumed by the pipeline. Immutable
// per export run.
type Options struct {
	Layout        render.Layout
	Amplitude     render.AmplitudeMode
	HeightPercent float64
	Smoothing     int
	WindowDur     float64
	FPS           int
	Codec         string
	CRF           int
	AudioBitrate  string
}

// Defaults returns the stock option set.
func Defaults() Options {
	return Options{
		Layout:        render.LayoutOverlay,
		Amplitude:     render.AmplitudeIndividual,
		HeightPercent: 50,
		Smoothing:     0,
		WindowDur:     2.0,
		FPS:           30,
		Codec:         CodecH264,
		CRF:           18,
		AudioBitrate:  "192k",
	}
}

// Validate rejects any out-of-range or unknown value. Core code never
// re-validates; a failed Validate must stop the operation before any
// rendering starts.
func (o Options) Validate() error {
	switch o.Layout {
	case render.LayoutOverlay, render.LayoutOverlayAdditive, render.LayoutStacked,
		render.LayoutSpectrumOverlay, render.LayoutSpectrumStacked:
	default:
		return fmt.Errorf("unknown layout %q", o.Layout)
	}
	switch o.Amplitude {
	case render.AmplitudeIndividual, render.AmplitudeNormalized:
	default:
		return fmt.Errorf("unknown amplitude mode %q", o.Amplitude)
	}
	if o.HeightPercent < 1 || o.HeightPercent > 100 {
		return fmt.Errorf("height percent %v out of range [1, 100]", o.HeightPercent)
	}
	if o.Smoothing < 0 || o.Smoothing > 5 {
		return fmt.Errorf("smoothing level %d out of range [0, 5]", o.Smoothing)
	}
	if o.WindowDur <= 0 {
		return fmt.Errorf("window duration %v must be positive", o.WindowDur)
	}
	if o.FPS < 1 || o.FPS > 120 {
		return fmt.Errorf("fps %d out of range [1, 120]", o.FPS)
	}
	if o.Codec != CodecH264 && o.Codec != CodecH265 {
		return fmt.Errorf("unknown codec %q (want %s or %s)", o.Codec, CodecH264, CodecH265)
	}
	if o.CRF < 0 || o.CRF > 51 {
		return fmt.Errorf("crf %d out of range [0, 51]", o.CRF)
	}
	if o.AudioBitrate == "" {
		return fmt.Errorf("audio bitrate must not be empty")
	}
	return nil
}

// RenderSettings projects the options into the compositor's per-frame
// parameter value.
func (o Options) RenderSettings() render.Settings {
	return render.Settings{
		Layout:        o.Layout,
		Amplitude:     o.Amplitude,
		HeightPercent: o.HeightPercent,
		Smoothing:     o.Smoothing,
		WindowDur:     o.WindowDur,
		FFTSize:       viz.DefaultFFTSize,
	}
}
