package track

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"time"
)

var errFFmpegNotFound = fmt.Errorf("ffmpeg not found (required for formats without a native decoder)")

// ffprobeResult holds parsed ffprobe JSON output.
type ffprobeResult struct {
	Streams []struct {
		CodecType  string `json:"codec_type"`
		SampleRate string `json:"sample_rate"`
		Channels   int    `json:"channels"`
	} `json:"streams"`
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

type audioProbe struct {
	sampleRate int
	channels   int
}

// probeAudio uses ffprobe to get audio stream metadata.
func probeAudio(path string) (*audioProbe, error) {
	ffprobe, err := exec.LookPath("ffprobe")
	if err != nil {
		return nil, fmt.Errorf("ffprobe not found (required for formats without a native decoder)")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cmd := exec.CommandContext(ctx, ffprobe,
		"-v", "quiet",
		"-print_format", "json",
		"-show_streams",
		"-show_format",
		"-select_streams", "a:0",
		path,
	)
	cmd.Stdin = nil

	output, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("ffprobe failed: %w", err)
	}

	var result ffprobeResult
	if err := json.Unmarshal(output, &result); err != nil {
		return nil, fmt.Errorf("parsing ffprobe output: %w", err)
	}
	if len(result.Streams) == 0 {
		return nil, fmt.Errorf("no audio stream found")
	}

	stream := result.Streams[0]
	sr, err := strconv.Atoi(stream.SampleRate)
	if err != nil || sr <= 0 {
		sr = 44100 // fallback
	}
	channels := stream.Channels
	if channels <= 0 {
		channels = 2 // fallback
	}

	return &audioProbe{sampleRate: sr, channels: channels}, nil
}

// decodeFFmpeg extracts the audio stream from any ffmpeg-supported
// container as s16le PCM at the source rate and channel count.
func decodeFFmpeg(path string) ([][]float64, int, error) {
	probe, err := probeAudio(path)
	if err != nil {
		return nil, 0, fmt.Errorf("probing %s: %w", path, err)
	}

	ffmpeg, err := exec.LookPath("ffmpeg")
	if err != nil {
		return nil, 0, errFFmpegNotFound
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cmd := exec.CommandContext(ctx, ffmpeg,
		"-v", "quiet",
		"-i", path,
		"-f", "s16le",
		"-acodec", "pcm_s16le",
		"-ar", strconv.Itoa(probe.sampleRate),
		"-ac", strconv.Itoa(probe.channels),
		"pipe:1",
	)
	cmd.Stdin = nil

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, 0, fmt.Errorf("setting up ffmpeg stdout: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, 0, fmt.Errorf("starting ffmpeg: %w", err)
	}

	raw, readErr := io.ReadAll(stdout)
	waitErr := cmd.Wait()
	if readErr != nil {
		return nil, 0, fmt.Errorf("reading ffmpeg output: %w", readErr)
	}
	if waitErr != nil {
		return nil, 0, fmt.Errorf("ffmpeg decode failed: %w", waitErr)
	}
	if len(raw) == 0 {
		return nil, 0, fmt.Errorf("ffmpeg produced no audio data")
	}

	return deinterleave16(raw, probe.channels), probe.sampleRate, nil
}
