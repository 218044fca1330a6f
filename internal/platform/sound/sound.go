// Package sound plays short synthesized effects for game events.
// Every effect is built from sine oscillators shaped by an attack/release
// envelope and mixed into a single speaker stream.
package sound

import (
	"io"
	"math"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/generators"
	"github.com/gopxl/beep/speaker"

	"github.com/vovakirdan/apple-arcade/internal/games/apples"
)

const (
	sampleRate = beep.SampleRate(44100)

	defaultVolume = 0.5
)

// Effect names one of the sounds the player knows.
type Effect int

const (
	EffectCatch Effect = iota
	EffectMiss
	EffectTierUp
	EffectGameOver
)

func (e Effect) String() string {
	switch e {
	case EffectCatch:
		return "catch"
	case EffectMiss:
		return "miss"
	case EffectTierUp:
		return "tier-up"
	case EffectGameOver:
		return "game-over"
	default:
		return "unknown"
	}
}

// note is one oscillator voice of an effect.
type note struct {
	freq     float64
	duration time.Duration
	attack   time.Duration
	release  time.Duration
	gain     float64
}

// effectNotes lists the notes of each effect. Notes of one effect play in
// sequence.
var effectNotes = map[Effect][]note{
	EffectCatch: {
		{freq: 880, duration: 60 * time.Millisecond, attack: 5 * time.Millisecond, release: 40 * time.Millisecond, gain: 0.8},
		{freq: 1320, duration: 80 * time.Millisecond, attack: 5 * time.Millisecond, release: 60 * time.Millisecond, gain: 0.6},
	},
	EffectMiss: {
		{freq: 220, duration: 160 * time.Millisecond, attack: 10 * time.Millisecond, release: 120 * time.Millisecond, gain: 0.9},
	},
	EffectTierUp: {
		{freq: 659.25, duration: 90 * time.Millisecond, attack: 5 * time.Millisecond, release: 50 * time.Millisecond, gain: 0.6},
		{freq: 783.99, duration: 90 * time.Millisecond, attack: 5 * time.Millisecond, release: 50 * time.Millisecond, gain: 0.6},
		{freq: 1046.5, duration: 140 * time.Millisecond, attack: 5 * time.Millisecond, release: 100 * time.Millisecond, gain: 0.7},
	},
	EffectGameOver: {
		{freq: 392, duration: 180 * time.Millisecond, attack: 10 * time.Millisecond, release: 80 * time.Millisecond, gain: 0.8},
		{freq: 311.13, duration: 180 * time.Millisecond, attack: 10 * time.Millisecond, release: 80 * time.Millisecond, gain: 0.8},
		{freq: 196, duration: 400 * time.Millisecond, attack: 10 * time.Millisecond, release: 300 * time.Millisecond, gain: 0.9},
	},
}

// Player mixes effects into the speaker. A Player whose speaker could not be
// opened stays silent; all methods are safe to call either way.
type Player struct {
	mu      sync.Mutex
	mixer   *beep.Mixer
	rate    beep.SampleRate
	volume  float64
	enabled bool
	log     *log.Logger
}

// NewPlayer opens the default speaker. Failure is logged and yields a silent
// player, so callers never need to check for audio support.
func NewPlayer(logger *log.Logger) *Player {
	p := Silent(logger)

	if err := speaker.Init(sampleRate, sampleRate.N(time.Second/10)); err != nil {
		p.log.Warn("audio unavailable, continuing without sound", "err", err)
		return p
	}

	speaker.Play(p.mixer)
	p.enabled = true
	return p
}

// Silent returns a player that never touches the speaker.
func Silent(logger *log.Logger) *Player {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Player{
		mixer:  &beep.Mixer{},
		rate:   sampleRate,
		volume: defaultVolume,
		log:    logger,
	}
}

// Enabled reports whether the player is connected to a speaker.
func (p *Player) Enabled() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.enabled
}

// SetVolume sets the master volume in [0, 1].
func (p *Player) SetVolume(v float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.volume = math.Max(0, math.Min(1, v))
}

// Catch plays the rising chirp for a caught apple.
func (p *Player) Catch() { p.Play(EffectCatch) }

// Miss plays the low thud for a missed apple.
func (p *Player) Miss() { p.Play(EffectMiss) }

// TierUp plays the arpeggio for a difficulty tier change.
func (p *Player) TierUp() { p.Play(EffectTierUp) }

// GameOver plays the falling phrase for the end of a session.
func (p *Player) GameOver() { p.Play(EffectGameOver) }

// Play queues an effect on the mixer.
func (p *Player) Play(e Effect) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.enabled {
		return
	}

	s, err := newEffect(e, p.rate, p.volume)
	if err != nil {
		p.log.Debug("build effect", "effect", e, "err", err)
		return
	}

	speaker.Lock()
	p.mixer.Add(s)
	speaker.Unlock()
}

// HandleEvent maps engine events to effects. A miss that costs the last
// life plays the game-over phrase instead.
func (p *Player) HandleEvent(ev apples.Event) {
	switch ev.Kind {
	case apples.EventCatch:
		p.Catch()
	case apples.EventMiss:
		if ev.Lives <= 0 {
			p.GameOver()
			return
		}
		p.Miss()
	case apples.EventTierUp:
		p.TierUp()
	}
}

// Close stops playback and releases the speaker.
func (p *Player) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.enabled {
		return
	}

	speaker.Lock()
	p.mixer.Clear()
	speaker.Unlock()
	speaker.Close()
	p.enabled = false
}

// newEffect builds the streamer for e at the given master volume.
func newEffect(e Effect, rate beep.SampleRate, volume float64) (beep.Streamer, error) {
	notes := effectNotes[e]
	voices := make([]beep.Streamer, 0, len(notes))
	for _, n := range notes {
		tone, err := generators.SineTone(rate, n.freq)
		if err != nil {
			return nil, err
		}
		shaped := newEnvelope(tone, n.duration, n.attack, n.release, rate)
		voices = append(voices, withVolume(shaped, n.gain))
	}
	return withVolume(beep.Seq(voices...), volume), nil
}

// envelope limits a stream to a fixed length and ramps it in and out.
type envelope struct {
	streamer beep.Streamer
	position int
	attack   int
	release  int
	total    int
}

func newEnvelope(s beep.Streamer, duration, attack, release time.Duration, rate beep.SampleRate) *envelope {
	total := rate.N(duration)
	return &envelope{
		streamer: s,
		attack:   min(rate.N(attack), total),
		release:  min(rate.N(release), total),
		total:    total,
	}
}

func (e *envelope) Stream(samples [][2]float64) (int, bool) {
	remaining := e.total - e.position
	if remaining <= 0 {
		return 0, false
	}
	if len(samples) > remaining {
		samples = samples[:remaining]
	}

	n, ok := e.streamer.Stream(samples)
	for i := range n {
		g := e.gain(e.position)
		samples[i][0] *= g
		samples[i][1] *= g
		e.position++
	}
	return n, ok
}

// gain returns the envelope level at sample pos.
func (e *envelope) gain(pos int) float64 {
	g := 1.0
	if e.attack > 0 && pos < e.attack {
		g = float64(pos) / float64(e.attack)
	}
	if left := e.total - pos; e.release > 0 && left <= e.release {
		g = math.Min(g, float64(left-1)/float64(e.release))
	}
	return math.Max(0, g)
}

func (e *envelope) Err() error { return e.streamer.Err() }

// withVolume scales s linearly by v. Zero or less is silent.
func withVolume(s beep.Streamer, v float64) beep.Streamer {
	if v <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(v)}
}
