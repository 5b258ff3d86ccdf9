package track

import (
	"fmt"
	"sync"
)

// defaultPalette provides colors for tracks added without an explicit one.
var defaultPalette = []string{
	"#4fc3f7", // light blue
	"#ff8a65", // orange
	"#aed581", // green
	"#ba68c8", // purple
	"#ffd54f", // yellow
	"#f06292", // pink
	"#4db6ac", // teal
	"#e57373", // red
}

// Track holds one fully decoded audio source plus its visual attributes.
// Channels are per-channel sample slices normalized to [-1, 1]; all
// channels have equal length.
type Track struct {
	ID       int
	Name     string
	Color    string  // hex, e.g. "#4fc3f7"
	Opacity  float64 // [0, 1]; doubles as the mix gain weight

	channels   [][]float64
	sampleRate int
}

// NewTrack builds a track from decoded channel data.
func NewTrack(name string, channels [][]float64, sampleRate int) (*Track, error) {
	if len(channels) == 0 {
		return nil, fmt.Errorf("track %q has no channels", name)
	}
	if sampleRate <= 0 {
		return nil, fmt.Errorf("track %q has invalid sample rate %d", name, sampleRate)
	}
	n := len(channels[0])
	for i, ch := range channels[1:] {
		if len(ch) != n {
			return nil, fmt.Errorf("track %q channel %d length %d != channel 0 length %d",
				name, i+1, len(ch), n)
		}
	}
	return &Track{
		Name:       name,
		Opacity:    1.0,
		channels:   channels,
		sampleRate: sampleRate,
	}, nil
}

// SampleRate returns the decoded sample rate in Hz.
func (t *Track) SampleRate() int { return t.sampleRate }

// NumChannels returns the channel count.
func (t *Track) NumChannels() int { return len(t.channels) }

// Len returns the length of the track in samples per channel.
func (t *Track) Len() int {
	if len(t.channels) == 0 {
		return 0
	}
	return len(t.channels[0])
}

// ChannelData returns the sample slice for one channel, or nil if the
// index is out of range. The slice is the track's own buffer; callers
// must treat it as read-only.
func (t *Track) ChannelData(i int) []float64 {
	if i < 0 || i >= len(t.channels) {
		return nil
	}
	return t.channels[i]
}

// Duration returns the track length in seconds.
func (t *Track) Duration() float64 {
	if t.sampleRate <= 0 {
		return 0
	}
	return float64(t.Len()) / float64(t.sampleRate)
}

// Store is an ordered collection of tracks. Mutation happens only through
// Add/Remove/SetColor/SetOpacity; Tracks returns a snapshot so a frame
// render never observes a torn track list.
type Store struct {
	mu     sync.Mutex
	tracks []*Track
	nextID int
}

// NewStore creates an empty track store.
func NewStore() *Store {
	return &Store{nextID: 1}
}

// Add attaches a track to the store, assigning its ID and a palette color
// if none is set.
func (s *Store) Add(t *Track) *Track {
	s.mu.Lock()
	defer s.mu.Unlock()

	t.ID = s.nextID
	s.nextID++
	if t.Color == "" {
		t.Color = defaultPalette[len(s.tracks)%len(defaultPalette)]
	}
	s.tracks = append(s.tracks, t)
	return t
}

// Remove detaches the track with the given ID. Returns false if no such
// track exists.
func (s *Store) Remove(id int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, t := range s.tracks {
		if t.ID == id {
			s.tracks = append(s.tracks[:i], s.tracks[i+1:]...)
			return true
		}
	}
	return false
}

// Tracks returns a snapshot copy of the track list in store order.
func (s *Store) Tracks() []*Track {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*Track, len(s.tracks))
	copy(out, s.tracks)
	return out
}

// Len returns the number of tracks.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tracks)
}

// MaxDuration returns the longest track duration in seconds, or 0 for an
// empty store.
func (s *Store) MaxDuration() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	var max float64
	for _, t := range s.tracks {
		if d := t.Duration(); d > max {
			max = d
		}
	}
	return max
}

// SetColor updates a track's display color.
func (s *Store) SetColor(id int, color string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, t := range s.tracks {
		if t.ID == id {
			t.Color = color
			return true
		}
	}
	return false
}

// SetOpacity updates a track's opacity, clamped to [0, 1].
func (s *Store) SetOpacity(id int, opacity float64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if opacity < 0 {
		opacity = 0
	}
	if opacity > 1 {
		opacity = 1
	}
	for _, t := range s.tracks {
		if t.ID == id {
			t.Opacity = opacity
			return true
		}
	}
	return false
}
