// Package audio plays the short chirp that accompanies a confetti burst.
package audio

import (
	"fmt"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/generators"
	"github.com/gopxl/beep/speaker"
)

// Config controls the burst cue.
type Config struct {
	Enabled    bool    `json:"enabled" yaml:"enabled"`
	SampleRate int     `json:"sample_rate" yaml:"sample_rate"`
	Volume     float64 `json:"volume" yaml:"volume"` // linear gain, 0-1
}

// DefaultConfig returns audio disabled at CD sample rate.
func DefaultConfig() Config {
	return Config{
		Enabled:    false,
		SampleRate: 44100,
		Volume:     0.3,
	}
}

// The chirp is two rising tones.
var chirpNotes = []struct {
	freq     int
	duration time.Duration
}{
	{660, 40 * time.Millisecond},
	{990, 60 * time.Millisecond},
}

// Player emits burst cues. A nil *Player is valid and silent.
type Player struct {
	sampleRate beep.SampleRate
	volume     float64
	play       func(beep.Streamer)
	closer     func()
}

// NewPlayer initializes the speaker. Callers should treat an error as
// "run without sound" rather than fatal.
func NewPlayer(cfg Config) (*Player, error) {
	sr := beep.SampleRate(cfg.SampleRate)
	if err := speaker.Init(sr, sr.N(time.Second/10)); err != nil {
		return nil, fmt.Errorf("failed to initialize speaker: %w", err)
	}
	return &Player{
		sampleRate: sr,
		volume:     cfg.Volume,
		play:       func(s beep.Streamer) { speaker.Play(s) },
		closer:     speaker.Close,
	}, nil
}

// Chirp queues the burst cue. It does not block.
func (p *Player) Chirp() error {
	if p == nil {
		return nil
	}
	s, err := p.chirp()
	if err != nil {
		return err
	}
	p.play(s)
	return nil
}

// chirp builds the cue streamer.
func (p *Player) chirp() (beep.Streamer, error) {
	parts := make([]beep.Streamer, 0, len(chirpNotes))
	for _, n := range chirpNotes {
		tone, err := generators.SineTone(p.sampleRate, float64(n.freq))
		if err != nil {
			return nil, fmt.Errorf("failed to build %d Hz tone: %w", n.freq, err)
		}
		parts = append(parts, beep.Take(p.sampleRate.N(n.duration), tone))
	}
	return gain(beep.Seq(parts...), p.volume), nil
}

// Close releases the speaker.
func (p *Player) Close() {
	if p == nil || p.closer == nil {
		return
	}
	p.closer()
}

// gain scales every sample by g.
func gain(s beep.Streamer, g float64) beep.Streamer {
	return beep.StreamerFunc(func(samples [][2]float64) (int, bool) {
		n, ok := s.Stream(samples)
		for i := range samples[:n] {
			samples[i][0] *= g
			samples[i][1] *= g
		}
		return n, ok
	})
}
