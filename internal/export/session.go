// Package export renders every frame offline and hands the result to an
// ffmpeg subprocess: rgb24 frames over stdin, the mixed stereo audio as
// a temporary WAV file, one muxed video out. Any mid-export failure
// aborts the run and removes partial artifacts.
package export

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/geoffmyers/multitrack-audio-visualizer/internal/config"
	"github.com/geoffmyers/multitrack-audio-visualizer/internal/driver"
	"github.com/geoffmyers/multitrack-audio-visualizer/internal/mix"
	"github.com/geoffmyers/multitrack-audio-visualizer/internal/render"
	"github.com/geoffmyers/multitrack-audio-visualizer/internal/track"
)

// ErrEncoderNotFound is returned when ffmpeg is missing from PATH.
var ErrEncoderNotFound = fmt.Errorf("ffmpeg not found on PATH (install ffmpeg to export video)")

// Available reports whether export is possible (ffmpeg present).
func Available() bool {
	_, err := exec.LookPath("ffmpeg")
	return err == nil
}

// Progress receives per-frame export progress.
type Progress func(done, total int)

// Run exports the store's tracks to a video file at outPath. The frame
// loop is the offline driver: frame i renders at exactly i/fps seconds
// on a fixed 1920x1080 surface, so output is identical to what the live
// pipeline would show at those instants. maxFrames > 0 truncates the
// export (preview/testing); 0 means the full duration.
func Run(ctx context.Context, store *track.Store, opts config.Options, outPath string, maxFrames int, progress Progress) error {
	if err := opts.Validate(); err != nil {
		return fmt.Errorf("invalid export options: %w", err)
	}
	ffmpeg, err := exec.LookPath("ffmpeg")
	if err != nil {
		return ErrEncoderNotFound
	}

	tracks := store.Tracks()
	if len(tracks) == 0 {
		return fmt.Errorf("nothing to export: no tracks loaded")
	}
	duration := store.MaxDuration()

	tmpDir, err := os.MkdirTemp("", "mtav-export-")
	if err != nil {
		return fmt.Errorf("creating temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	audioPath := filepath.Join(tmpDir, "audio.wav")
	if err := writeMixedAudio(audioPath, tracks); err != nil {
		return fmt.Errorf("mixing audio: %w", err)
	}

	cctx, cancel := context.WithCancel(ctx)
	defer cancel()

	cmd := exec.CommandContext(cctx, ffmpeg, encodeArgs(opts, audioPath, outPath)...)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("setting up ffmpeg stdin: %w", err)
	}
	cmd.Stdout = io.Discard
	cmd.Stderr = io.Discard
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("starting ffmpeg: %w", err)
	}

	err = streamFrames(cctx, stdin, tracks, duration, opts, maxFrames, progress)
	closeErr := stdin.Close()
	waitErr := cmd.Wait()

	if err == nil {
		err = closeErr
	}
	if err == nil && waitErr != nil {
		err = fmt.Errorf("ffmpeg encode failed: %w", waitErr)
	}
	if err != nil {
		// A partial file is not a valid export.
		os.Remove(outPath)
		return err
	}
	return nil
}

// streamFrames drives the offline strategy, piping each rendered frame
// into the encoder before advancing.
func streamFrames(ctx context.Context, w io.Writer, tracks []*track.Track, duration float64, opts config.Options, maxFrames int, progress Progress) error {
	surface := render.NewSurface(render.ExportDimensions())
	comp := render.NewCompositor(surface)
	settings := opts.RenderSettings()

	off := &driver.Offline{
		FPS:       float64(opts.FPS),
		Duration:  duration,
		MaxFrames: maxFrames,
	}
	total := off.Frames()

	return off.Run(ctx, func(frame int, currentTime float64) error {
		comp.Render(tracks, currentTime, duration, settings)
		if _, err := w.Write(surface.RGB24()); err != nil {
			return fmt.Errorf("writing frame %d: %w", frame, err)
		}
		if progress != nil {
			progress(frame+1, total)
		}
		return nil
	})
}

// writeMixedAudio mixes all tracks and writes a 16-bit stereo WAV.
func writeMixedAudio(path string, tracks []*track.Track) error {
	left, right, rate := mix.Mix(tracks)
	if rate <= 0 {
		return fmt.Errorf("no audio to mix")
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}

	enc := wav.NewEncoder(f, rate, 16, 2, 1)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 2, SampleRate: rate},
		Data:           mix.Ints16(left, right),
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		enc.Close()
		f.Close()
		return fmt.Errorf("writing mixed WAV: %w", err)
	}
	if err := enc.Close(); err != nil {
		f.Close()
		return fmt.Errorf("finalizing mixed WAV: %w", err)
	}
	return f.Close()
}

// encodeArgs builds the ffmpeg invocation: raw frames on stdin, mixed
// audio from the temp WAV, caller-chosen codec/quality passed through
// untouched.
func encodeArgs(opts config.Options, audioPath, outPath string) []string {
	return []string{
		"-v", "quiet",
		"-y",
		"-f", "rawvideo",
		"-pix_fmt", "rgb24",
		"-s", fmt.Sprintf("%dx%d", render.ExportWidth, render.ExportHeight),
		"-r", strconv.Itoa(opts.FPS),
		"-i", "pipe:0",
		"-i", audioPath,
		"-c:v", videoCodec(opts.Codec),
		"-crf", strconv.Itoa(opts.CRF),
		"-pix_fmt", "yuv420p",
		"-c:a", "aac",
		"-b:a", opts.AudioBitrate,
		"-shortest",
		outPath,
	}
}

func videoCodec(codec string) string {
	if codec == config.CodecH265 {
		return "libx265"
	}
	return "libx264"
}
