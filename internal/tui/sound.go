package tui

import (
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/generators"
	"github.com/gopxl/beep/speaker"
)

const (
	sampleRate = beep.SampleRate(44100)
	chimeFreq  = 660
	chimeLen   = 40 * time.Millisecond
)

// Sound plays short cues. A nil or uninitialized Sound is silent.
type Sound struct {
	ready bool
}

// NewSound opens the speaker.
func NewSound() (*Sound, error) {
	if err := speaker.Init(sampleRate, sampleRate.N(time.Second/10)); err != nil {
		return &Sound{}, err
	}
	return &Sound{ready: true}, nil
}

// Chime plays a short sine tone.
func (s *Sound) Chime() {
	if s == nil || !s.ready {
		return
	}
	sine, err := generators.SineTone(sampleRate, chimeFreq)
	if err != nil {
		return
	}
	speaker.Play(beep.Take(sampleRate.N(chimeLen), sine))
}

// Close releases the speaker.
func (s *Sound) Close() {
	if s == nil || !s.ready {
		return
	}
	speaker.Close()
	s.ready = false
}
