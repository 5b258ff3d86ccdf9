// Package playback plays the mixed stereo stream through the system
// audio device and exposes the playback position as the clock the
// realtime frame driver reads. All seek/pause arithmetic lives here;
// the rendering core only ever sees a current-time scalar.
package playback

import (
	"bytes"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"

	"github.com/geoffmyers/multitrack-audio-visualizer/internal/mix"
	"github.com/geoffmyers/multitrack-audio-visualizer/internal/track"
)

const frameSize = 4 // 2 channels x 16-bit

// countingReader wraps the PCM stream and tracks bytes handed to the
// audio device, which is what the position clock is derived from.
type countingReader struct {
	reader io.ReadSeeker
	pos    int64
	mu     sync.Mutex
}

func (cr *countingReader) Read(p []byte) (int, error) {
	n, err := cr.reader.Read(p)
	cr.mu.Lock()
	cr.pos += int64(n)
	cr.mu.Unlock()
	return n, err
}

func (cr *countingReader) Pos() int64 {
	cr.mu.Lock()
	defer cr.mu.Unlock()
	return cr.pos
}

func (cr *countingReader) SetPos(pos int64) {
	cr.mu.Lock()
	cr.pos = pos
	cr.mu.Unlock()
}

// Player owns the oto playback of one mixed PCM stream.
type Player struct {
	pcm        []byte
	sampleRate int
	duration   float64

	otoCtx    *oto.Context
	otoPlayer *oto.Player
	counter   *countingReader

	mu     sync.Mutex
	paused bool
	closed bool
}

var (
	otoCtxByRate = map[int]*oto.Context{}
	otoMu        sync.Mutex
)

// oto allows one context per process; reuse it per sample rate.
func otoContext(sampleRate int) (*oto.Context, error) {
	otoMu.Lock()
	defer otoMu.Unlock()
	if ctx, ok := otoCtxByRate[sampleRate]; ok {
		return ctx, nil
	}
	op := &oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 2,
		Format:       oto.FormatSignedInt16LE,
	}
	ctx, ready, err := oto.NewContext(op)
	if err != nil {
		return nil, err
	}
	<-ready
	otoCtxByRate[sampleRate] = ctx
	return ctx, nil
}

// New mixes the store's tracks and starts playback from the beginning.
func New(store *track.Store) (*Player, error) {
	left, right, rate := mix.Mix(store.Tracks())
	if rate <= 0 {
		return nil, fmt.Errorf("no tracks to play")
	}

	pcm := mix.Interleave16(left, right)
	ctx, err := otoContext(rate)
	if err != nil {
		return nil, fmt.Errorf("opening audio device: %w", err)
	}

	p := &Player{
		pcm:        pcm,
		sampleRate: rate,
		duration:   float64(len(pcm)) / float64(rate*frameSize),
		otoCtx:     ctx,
		counter:    &countingReader{reader: bytes.NewReader(pcm)},
	}
	p.otoPlayer = ctx.NewPlayer(p.counter)
	p.otoPlayer.Play()
	return p, nil
}

// CurrentTime returns the playback position in seconds.
func (p *Player) CurrentTime() float64 {
	return float64(p.counter.Pos()) / float64(p.sampleRate*frameSize)
}

// Duration returns the total mixed stream length in seconds.
func (p *Player) Duration() float64 { return p.duration }

// Position returns the playback position as a time.Duration.
func (p *Player) Position() time.Duration {
	return time.Duration(p.CurrentTime() * float64(time.Second))
}

// Done reports whether the stream has been fully handed to the device.
func (p *Player) Done() bool {
	return p.counter.Pos() >= int64(len(p.pcm))
}

// Paused returns whether playback is paused.
func (p *Player) Paused() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.paused
}

// TogglePause toggles between play and pause.
func (p *Player) TogglePause() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	if p.paused {
		p.otoPlayer.Play()
	} else {
		p.otoPlayer.Pause()
	}
	p.paused = !p.paused
}

// Seek moves playback by the given delta, clamped to the stream bounds.
func (p *Player) Seek(delta time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}

	newPos := p.counter.Pos() + int64(delta.Seconds()*float64(p.sampleRate*frameSize))
	if newPos < 0 {
		newPos = 0
	}
	if newPos > int64(len(p.pcm)) {
		newPos = int64(len(p.pcm))
	}
	newPos -= newPos % frameSize

	if _, err := p.counter.reader.Seek(newPos, io.SeekStart); err != nil {
		return
	}
	p.counter.SetPos(newPos)

	// Recreate the oto player to flush its buffered audio.
	wasPaused := p.paused
	p.otoPlayer.Pause()
	p.otoPlayer = p.otoCtx.NewPlayer(p.counter)
	if !wasPaused {
		p.otoPlayer.Play()
	}
}

// Close stops playback and releases the device player.
func (p *Player) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	return p.otoPlayer.Close()
}
