// Package sound plays the typing blip of message boxes through beep.
package sound

import (
	"math"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/speaker"
)

// SampleRate is the speaker and blip sample rate.
const SampleRate = beep.SampleRate(48000)

// Blip envelope.
const (
	BlipDuration = 30 * time.Millisecond
	BlipAttack   = 2 * time.Millisecond
	BlipRelease  = 20 * time.Millisecond
)

// blip is a square wave with a linear attack and release.
type blip struct {
	freq    float64
	phase   float64
	rate    beep.SampleRate
	pos     int
	total   int
	attack  int
	release int
}

// NewBlip returns a single square-wave blip of freq Hz lasting d.
func NewBlip(freq float64, d time.Duration, rate beep.SampleRate) beep.Streamer {
	total := rate.N(d)
	return &blip{
		freq:    freq,
		rate:    rate,
		total:   total,
		attack:  min(rate.N(BlipAttack), total),
		release: min(rate.N(BlipRelease), total),
	}
}

func (b *blip) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		if b.pos >= b.total {
			return i, i > 0
		}
		val := 1.0
		if b.phase >= 0.5 {
			val = -1.0
		}
		val *= b.envelope()

		samples[i][0] = val
		samples[i][1] = val

		b.phase += b.freq / float64(b.rate)
		b.phase -= math.Floor(b.phase)
		b.pos++
	}
	return len(samples), true
}

func (b *blip) envelope() float64 {
	vol := 1.0
	if b.attack > 0 && b.pos < b.attack {
		vol = float64(b.pos) / float64(b.attack)
	}
	if left := b.total - b.pos; b.release > 0 && left < b.release {
		vol = math.Min(vol, float64(left)/float64(b.release))
	}
	return vol
}

func (b *blip) Err() error { return nil }

// withVolume scales s by a linear factor; 0 or less is silent.
func withVolume(s beep.Streamer, vol float64) beep.Streamer {
	if vol <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(vol)}
}

// Player mixes blips into the speaker. Its CharSound method is meant for
// msgbox.Box.OnCharSound; the box already throttles calls.
type Player struct {
	Frequency float64 // Hz
	Volume    float64 // linear, 1 is full scale

	mu          sync.Mutex
	mixer       *beep.Mixer
	initialized bool
}

// NewPlayer returns a player for blips of freq Hz. Call Init before use.
func NewPlayer(freq, volume float64) *Player {
	return &Player{Frequency: freq, Volume: volume, mixer: &beep.Mixer{}}
}

// Init opens the speaker and starts the mixer.
func (p *Player) Init() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.initialized {
		return nil
	}
	if err := speaker.Init(SampleRate, SampleRate.N(50*time.Millisecond)); err != nil {
		return err
	}
	speaker.Play(p.mixer)
	p.initialized = true
	return nil
}

// CharSound queues one blip. It does nothing before Init.
func (p *Player) CharSound(r rune) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.initialized {
		return
	}
	speaker.Lock()
	p.queue(r)
	speaker.Unlock()
}

func (p *Player) queue(r rune) {
	freq := p.Frequency
	// Punctuation blips an octave lower.
	switch r {
	case '.', ',', '!', '?':
		freq /= 2
	}
	p.mixer.Add(withVolume(NewBlip(freq, BlipDuration, SampleRate), p.Volume))
}

// Close silences pending blips.
func (p *Player) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.initialized {
		return
	}
	speaker.Lock()
	p.mixer.Clear()
	speaker.Unlock()
	p.initialized = false
}
