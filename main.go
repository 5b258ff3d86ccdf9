package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/geoffmyers/multitrack-audio-visualizer/internal/config"
	"github.com/geoffmyers/multitrack-audio-visualizer/internal/export"
	"github.com/geoffmyers/multitrack-audio-visualizer/internal/playback"
	"github.com/geoffmyers/multitrack-audio-visualizer/internal/render"
	"github.com/geoffmyers/multitrack-audio-visualizer/internal/track"
	"github.com/geoffmyers/multitrack-audio-visualizer/internal/ui"
)

func main() {
	defaults := config.Defaults()

	var (
		layout     = flag.String("layout", string(defaults.Layout), "layout: overlay, overlay-additive, stacked, spectrum-overlay, spectrum-stacked")
		amplitude  = flag.String("amplitude", string(defaults.Amplitude), "amplitude mode: individual or normalized")
		height     = flag.Float64("height", defaults.HeightPercent, "waveform height as percent of frame height (1-100)")
		smoothing  = flag.Int("smoothing", defaults.Smoothing, "smoothing level (0-5)")
		window     = flag.Float64("window", defaults.WindowDur, "visible window duration in seconds")
		fps        = flag.Int("fps", defaults.FPS, "frame rate (1-120; the live view clamps to 15-60)")
		codec      = flag.String("codec", defaults.Codec, "export video codec: h264 or h265")
		crf        = flag.Int("crf", defaults.CRF, "export quality (0-51, lower is better)")
		bitrate    = flag.String("bitrate", defaults.AudioBitrate, "export audio bitrate")
		colors     = flag.String("colors", "", "comma-separated per-track hex colors, e.g. ff6b6b,4ecdc4")
		opacities  = flag.String("opacities", "", "comma-separated per-track opacities (0-1)")
		presetPath = flag.String("preset", "", "preset file to load, and to save with the s key")
		exportPath = flag.String("export", "", "render to a video file instead of the live view")
	)
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() == 0 {
		usage()
		os.Exit(1)
	}

	opts := defaults
	if *presetPath != "" {
		preset, err := config.LoadPreset(*presetPath)
		switch {
		case err == nil:
			opts = preset.Apply(opts)
		case !errors.Is(err, os.ErrNotExist):
			fatal(err)
		}
	}

	// Flags passed explicitly win over the preset.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "layout":
			opts.Layout = render.Layout(*layout)
		case "amplitude":
			opts.Amplitude = render.AmplitudeMode(*amplitude)
		case "height":
			opts.HeightPercent = *height
		case "smoothing":
			opts.Smoothing = *smoothing
		case "window":
			opts.WindowDur = *window
		case "fps":
			opts.FPS = *fps
		}
	})
	opts.Codec = *codec
	opts.CRF = *crf
	opts.AudioBitrate = *bitrate

	if err := opts.Validate(); err != nil {
		fatal(err)
	}

	store := track.NewStore()
	for _, path := range flag.Args() {
		t, err := track.Load(path)
		if err != nil {
			fatal(fmt.Errorf("%s: %w", path, err))
		}
		store.Add(t)
	}
	applyTrackStyles(store, *colors, *opacities)

	if *exportPath != "" {
		runExport(store, opts, *exportPath)
		return
	}

	player, err := playback.New(store)
	if err != nil {
		fatal(fmt.Errorf("starting playback: %w", err))
	}
	defer player.Close()

	model := ui.New(store, player, opts, *presetPath)
	program := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		fatal(err)
	}
}

func runExport(store *track.Store, opts config.Options, outPath string) {
	if !export.Available() {
		fatal(export.ErrEncoderNotFound)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := export.Run(ctx, store, opts, outPath, 0, func(done, total int) {
		fmt.Fprintf(os.Stderr, "\rencoding frame %d/%d", done, total)
	})
	fmt.Fprintln(os.Stderr)
	if err != nil {
		fatal(err)
	}
	fmt.Println("wrote", outPath)
}

// applyTrackStyles assigns colors and opacities to tracks in argument
// order. Missing entries keep the palette defaults.
func applyTrackStyles(store *track.Store, colors, opacities string) {
	tracks := store.Tracks()
	if colors != "" {
		for i, c := range strings.Split(colors, ",") {
			if i >= len(tracks) {
				break
			}
			store.SetColor(tracks[i].ID, strings.TrimSpace(c))
		}
	}
	if opacities != "" {
		for i, o := range strings.Split(opacities, ",") {
			if i >= len(tracks) {
				break
			}
			v, err := strconv.ParseFloat(strings.TrimSpace(o), 64)
			if err != nil {
				fatal(fmt.Errorf("bad opacity %q: %w", o, err))
			}
			store.SetOpacity(tracks[i].ID, v)
		}
	}
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: %s [flags] track1.wav [track2.mp3 ...]\n\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "Visualize one or more audio tracks in the terminal, or export a video with -export.\n\n")
	flag.PrintDefaults()
}
