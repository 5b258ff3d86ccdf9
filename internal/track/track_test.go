package track

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

func TestNewTrackValidatesChannels(t *testing.T) {
	if _, err := NewTrack("empty", nil, 44100); err == nil {
		t.Fatal("NewTrack() with no channels, want error")
	}
	if _, err := NewTrack("rate", [][]float64{{0}}, 0); err == nil {
		t.Fatal("NewTrack() with zero sample rate, want error")
	}
	if _, err := NewTrack("ragged", [][]float64{{0, 0}, {0}}, 44100); err == nil {
		t.Fatal("NewTrack() with unequal channel lengths, want error")
	}
}

func TestTrackDuration(t *testing.T) {
	tr, err := NewTrack("t", [][]float64{make([]float64, 22050)}, 44100)
	if err != nil {
		t.Fatalf("NewTrack() error = %v", err)
	}
	if got, want := tr.Duration(), 0.5; got != want {
		t.Fatalf("Duration() = %v, want %v", got, want)
	}
	if got := tr.ChannelData(1); got != nil {
		t.Fatalf("ChannelData(1) = %v, want nil", got)
	}
}

func TestStoreAddRemove(t *testing.T) {
	s := NewStore()
	a := mustTrack(t, "a", 100, 48000)
	b := mustTrack(t, "b", 200, 48000)
	s.Add(a)
	s.Add(b)

	if s.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", s.Len())
	}
	if a.ID == b.ID {
		t.Fatalf("IDs not unique: %d", a.ID)
	}
	if a.Color == "" || b.Color == "" {
		t.Fatal("palette color not assigned")
	}

	if !s.Remove(a.ID) {
		t.Fatal("Remove() = false, want true")
	}
	if s.Remove(a.ID) {
		t.Fatal("Remove() of missing id = true, want false")
	}
	got := s.Tracks()
	if len(got) != 1 || got[0].ID != b.ID {
		t.Fatalf("Tracks() after remove = %v", got)
	}
}

func TestStoreSnapshotIsolation(t *testing.T) {
	s := NewStore()
	s.Add(mustTrack(t, "a", 10, 48000))
	snap := s.Tracks()
	s.Add(mustTrack(t, "b", 10, 48000))
	if len(snap) != 1 {
		t.Fatalf("snapshot mutated: len = %d, want 1", len(snap))
	}
}

func TestStoreSetOpacityClamps(t *testing.T) {
	s := NewStore()
	tr := s.Add(mustTrack(t, "a", 10, 48000))

	s.SetOpacity(tr.ID, 1.7)
	if tr.Opacity != 1 {
		t.Fatalf("Opacity = %v, want 1", tr.Opacity)
	}
	s.SetOpacity(tr.ID, -0.3)
	if tr.Opacity != 0 {
		t.Fatalf("Opacity = %v, want 0", tr.Opacity)
	}
	if s.SetOpacity(999, 0.5) {
		t.Fatal("SetOpacity() of missing id = true, want false")
	}
}

func TestStoreMaxDuration(t *testing.T) {
	s := NewStore()
	if got := s.MaxDuration(); got != 0 {
		t.Fatalf("MaxDuration() of empty store = %v, want 0", got)
	}
	s.Add(mustTrack(t, "a", 48000, 48000))   // 1s
	s.Add(mustTrack(t, "b", 120000, 48000))  // 2.5s
	if got, want := s.MaxDuration(), 2.5; got != want {
		t.Fatalf("MaxDuration() = %v, want %v", got, want)
	}
}

func TestDeinterleave16(t *testing.T) {
	// Two frames of stereo: (16384, -16384), (0, 32767)
	raw := []byte{
		0x00, 0x40, 0x00, 0xC0,
		0x00, 0x00, 0xFF, 0x7F,
	}
	channels := deinterleave16(raw, 2)
	if len(channels) != 2 || len(channels[0]) != 2 {
		t.Fatalf("deinterleave16 shape = %dx%d, want 2x2", len(channels), len(channels[0]))
	}
	if got := channels[0][0]; math.Abs(got-0.5) > 1e-9 {
		t.Fatalf("left[0] = %v, want 0.5", got)
	}
	if got := channels[1][0]; math.Abs(got+0.5) > 1e-9 {
		t.Fatalf("right[0] = %v, want -0.5", got)
	}
	if got := channels[1][1]; math.Abs(got-32767.0/32768.0) > 1e-9 {
		t.Fatalf("right[1] = %v, want ~1", got)
	}
}

func TestLoadWAVRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tone.wav")
	writeTestWAV(t, path, 44100, []int{0, 8192, 16384, 8192, 0, -8192, -16384, -8192})

	tr, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if tr.SampleRate() != 44100 {
		t.Fatalf("SampleRate() = %d, want 44100", tr.SampleRate())
	}
	if tr.NumChannels() != 1 {
		t.Fatalf("NumChannels() = %d, want 1", tr.NumChannels())
	}
	if tr.Len() != 8 {
		t.Fatalf("Len() = %d, want 8", tr.Len())
	}
	if got := tr.ChannelData(0)[2]; math.Abs(got-0.5) > 1e-9 {
		t.Fatalf("sample[2] = %v, want 0.5", got)
	}
	if tr.Name != "tone" {
		t.Fatalf("Name = %q, want %q", tr.Name, "tone")
	}
}

func TestLoadRejectsMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.wav")); err == nil {
		t.Fatal("Load() of missing file, want error")
	}
}

func writeTestWAV(t *testing.T, path string, sampleRate int, samples []int) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("creating test wav: %v", err)
	}
	enc := wav.NewEncoder(f, sampleRate, 16, 1, 1)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: sampleRate},
		Data:           samples,
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		t.Fatalf("writing test wav: %v", err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("closing test wav: %v", err)
	}
	f.Close()
}

func mustTrack(t *testing.T, name string, samples, rate int) *Track {
	t.Helper()
	tr, err := NewTrack(name, [][]float64{make([]float64, samples)}, rate)
	if err != nil {
		t.Fatalf("NewTrack(%q) error = %v", name, err)
	}
	return tr
}
