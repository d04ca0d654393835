package clock

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/wav"
)

// Source reports the current storyboard time in milliseconds.
type Source interface {
	NowMS() int
}

// Audio derives time from the playback position of an audio stream, so
// animation stays locked to the music.
type Audio struct {
	mu     sync.Mutex
	stream beep.StreamSeeker
	rate   beep.SampleRate
	closer func() error
}

// NewAudio wraps a seekable stream decoded at rate.
func NewAudio(stream beep.StreamSeeker, rate beep.SampleRate) *Audio {
	return &Audio{stream: stream, rate: rate}
}

// OpenWAV decodes the WAV file at path and returns a clock over it. The
// caller must Close it.
func OpenWAV(path string) (*Audio, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open audio: %w", err)
	}

	stream, format, err := wav.Decode(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}

	a := NewAudio(stream, format.SampleRate)
	a.closer = stream.Close
	return a, nil
}

// NowMS returns the current stream position in milliseconds.
func (a *Audio) NowMS() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.ms(a.stream.Position())
}

// LengthMS returns the total stream length in milliseconds.
func (a *Audio) LengthMS() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.ms(a.stream.Len())
}

// SeekMS moves the stream to t, clamped to the stream bounds.
func (a *Audio) SeekMS(t int) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	n := a.rate.N(time.Duration(t) * time.Millisecond)
	n = max(0, min(n, a.stream.Len()))
	return a.stream.Seek(n)
}

// Close releases the underlying decoder, if the clock owns one.
func (a *Audio) Close() error {
	if a.closer == nil {
		return nil
	}
	return a.closer()
}

func (a *Audio) ms(samples int) int {
	if a.rate <= 0 {
		return 0
	}
	return int(a.rate.D(samples).Milliseconds())
}

// Manual is a clock that only moves when told to.
type Manual struct {
	mu  sync.Mutex
	now int
}

// NowMS returns the current time.
func (m *Manual) NowMS() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// Set jumps to t.
func (m *Manual) Set(t int) {
	m.mu.Lock()
	m.now = t
	m.mu.Unlock()
}

// Advance moves the clock forward by d milliseconds and returns the new time.
func (m *Manual) Advance(d int) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now += d
	return m.now
}
