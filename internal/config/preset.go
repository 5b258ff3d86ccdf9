package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/geoffmyers/multitrack-audio-visualizer/internal/render"
)

// PresetSettings is the persisted settings sub-object.
type PresetSettings struct {
	Layout         string  `json:"layout"`
	AmplitudeMode  string  `json:"amplitudeMode"`
	HeightPercent  float64 `json:"heightPercent"`
	SmoothingLevel int     `json:"smoothingLevel"`
	FPSCap         int     `json:"fpsCap"`
	WindowDuration float64 `json:"windowDuration"`
}

// Preset is the on-disk preset shape. Only the settings sub-object is
// consumed here; hosts may carry extra fields alongside it.
type Preset struct {
	Settings PresetSettings `json:"settings"`
}

// PresetFrom captures the preset-persisted subset of an option bundle.
func PresetFrom(o Options) Preset {
	return Preset{Settings: PresetSettings{
		Layout:         string(o.Layout),
		AmplitudeMode:  string(o.Amplitude),
		HeightPercent:  o.HeightPercent,
		SmoothingLevel: o.Smoothing,
		FPSCap:         o.FPS,
		WindowDuration: o.WindowDur,
	}}
}

// Apply overlays the preset's settings onto an option bundle. The result
// still needs Validate before use.
func (p Preset) Apply(o Options) Options {
	s := p.Settings
	if s.Layout != "" {
		o.Layout = render.Layout(s.Layout)
	}
	if s.AmplitudeMode != "" {
		o.Amplitude = render.AmplitudeMode(s.AmplitudeMode)
	}
	if s.HeightPercent != 0 {
		o.HeightPercent = s.HeightPercent
	}
	o.Smoothing = s.SmoothingLevel
	if s.FPSCap != 0 {
		o.FPS = s.FPSCap
	}
	if s.WindowDuration != 0 {
		o.WindowDur = s.WindowDuration
	}
	return o
}

// LoadPreset reads a preset file.
func LoadPreset(path string) (Preset, error) {
	var p Preset
	raw, err := os.ReadFile(path)
	if err != nil {
		return p, fmt.Errorf("reading preset: %w", err)
	}
	if err := json.Unmarshal(raw, &p); err != nil {
		return p, fmt.Errorf("parsing preset %s: %w", path, err)
	}
	return p, nil
}

// SavePreset writes a preset file.
func SavePreset(path string, p Preset) error {
	raw, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding preset: %w", err)
	}
	if err := os.WriteFile(path, append(raw, '\n'), 0o644); err != nil {
		return fmt.Errorf("writing preset: %w", err)
	}
	return nil
}
