package track

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-audio/wav"
	mp3 "github.com/hajimehoshi/go-mp3"
	"github.com/jfreymuth/oggvorbis"
	"github.com/mewkiz/flac"
)

// Load decodes an audio file into a Track. Files with a native Go decoder
// (wav, mp3, ogg, flac) are decoded in-process; anything else falls back
// to ffmpeg. The whole stream is decoded up front: the visualization
// pipeline requires all samples resident in memory.
func Load(path string) (*Track, error) {
	ext := strings.ToLower(filepath.Ext(path))

	var (
		channels   [][]float64
		sampleRate int
		err        error
	)
	switch ext {
	case ".wav":
		channels, sampleRate, err = decodeWAV(path)
	case ".mp3":
		channels, sampleRate, err = decodeMP3(path)
	case ".ogg":
		channels, sampleRate, err = decodeOGG(path)
	case ".flac":
		channels, sampleRate, err = decodeFLAC(path)
	default:
		channels, sampleRate, err = decodeFFmpeg(path)
	}
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}

	return NewTrack(displayName(path), channels, sampleRate)
}

func decodeWAV(path string) ([][]float64, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, 0, fmt.Errorf("invalid WAV file")
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, 0, fmt.Errorf("reading WAV PCM data: %w", err)
	}

	numChans := buf.Format.NumChannels
	if numChans < 1 {
		return nil, 0, fmt.Errorf("no channels in WAV file")
	}
	bitDepth := buf.SourceBitDepth
	if bitDepth <= 0 {
		bitDepth = int(dec.BitDepth)
	}
	scale := float64(int64(1) << (bitDepth - 1))

	frames := len(buf.Data) / numChans
	channels := make([][]float64, numChans)
	for ch := range channels {
		channels[ch] = make([]float64, frames)
	}
	for i := 0; i < frames; i++ {
		for ch := 0; ch < numChans; ch++ {
			channels[ch][i] = float64(buf.Data[i*numChans+ch]) / scale
		}
	}
	return channels, buf.Format.SampleRate, nil
}

func decodeMP3(path string) ([][]float64, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	defer f.Close()

	dec, err := mp3.NewDecoder(f)
	if err != nil {
		return nil, 0, err
	}

	// go-mp3 always emits 16-bit stereo.
	raw, err := io.ReadAll(dec)
	if err != nil {
		return nil, 0, fmt.Errorf("reading MP3 PCM data: %w", err)
	}
	return deinterleave16(raw, 2), dec.SampleRate(), nil
}

func decodeOGG(path string) ([][]float64, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	defer f.Close()

	data, format, err := oggvorbis.ReadAll(f)
	if err != nil {
		return nil, 0, err
	}

	numChans := format.Channels
	if numChans < 1 {
		return nil, 0, fmt.Errorf("no channels in OGG file")
	}
	frames := len(data) / numChans
	channels := make([][]float64, numChans)
	for ch := range channels {
		channels[ch] = make([]float64, frames)
	}
	for i := 0; i < frames; i++ {
		for ch := 0; ch < numChans; ch++ {
			channels[ch][i] = float64(data[i*numChans+ch])
		}
	}
	return channels, format.SampleRate, nil
}

func decodeFLAC(path string) ([][]float64, int, error) {
	stream, err := flac.ParseFile(path)
	if err != nil {
		return nil, 0, err
	}
	defer stream.Close()

	info := stream.Info
	numChans := int(info.NChannels)
	scale := float64(int64(1) << (info.BitsPerSample - 1))

	channels := make([][]float64, numChans)
	for ch := range channels {
		channels[ch] = make([]float64, 0, info.NSamples)
	}

	for {
		frame, err := stream.ParseNext()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, 0, fmt.Errorf("parsing FLAC frame: %w", err)
		}
		for ch := 0; ch < numChans && ch < len(frame.Subframes); ch++ {
			for _, s := range frame.Subframes[ch].Samples {
				channels[ch] = append(channels[ch], float64(s)/scale)
			}
		}
	}

	// Pad any short channel so all channels stay equal length.
	maxLen := 0
	for _, ch := range channels {
		if len(ch) > maxLen {
			maxLen = len(ch)
		}
	}
	for i, ch := range channels {
		for len(ch) < maxLen {
			ch = append(ch, 0)
		}
		channels[i] = ch
	}

	return channels, int(info.SampleRate), nil
}

// deinterleave16 converts interleaved s16le bytes into per-channel
// float64 slices in [-1, 1].
func deinterleave16(raw []byte, numChans int) [][]float64 {
	frameSize := numChans * 2
	frames := len(raw) / frameSize
	channels := make([][]float64, numChans)
	for ch := range channels {
		channels[ch] = make([]float64, frames)
	}
	for i := 0; i < frames; i++ {
		off := i * frameSize
		for ch := 0; ch < numChans; ch++ {
			s := int16(binary.LittleEndian.Uint16(raw[off+ch*2:]))
			channels[ch][i] = float64(s) / 32768.0
		}
	}
	return channels
}
