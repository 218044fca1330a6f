package sound

import (
	"math"
	"testing"
	"time"

	"github.com/gopxl/beep"

	"github.com/vovakirdan/apple-arcade/internal/games/apples"
)

// constant streams a fixed level forever.
type constant float64

func (c constant) Stream(samples [][2]float64) (int, bool) {
	for i := range samples {
		samples[i][0], samples[i][1] = float64(c), float64(c)
	}
	return len(samples), true
}

func (constant) Err() error { return nil }

// drain reads s to the end and returns the left channel.
func drain(s beep.Streamer) []float64 {
	var out []float64
	buf := make([][2]float64, 256)
	for {
		n, ok := s.Stream(buf)
		for i := range n {
			out = append(out, buf[i][0])
		}
		if !ok {
			return out
		}
	}
}

func TestEnvelopeLength(t *testing.T) {
	rate := beep.SampleRate(1000)
	env := newEnvelope(constant(1), 100*time.Millisecond, 10*time.Millisecond, 20*time.Millisecond, rate)

	got := drain(env)
	if len(got) != 100 {
		t.Fatalf("got %d samples, expected 100", len(got))
	}
	if n, ok := env.Stream(make([][2]float64, 8)); n != 0 || ok {
		t.Errorf("got (%d, %v) after end, expected (0, false)", n, ok)
	}
}

func TestEnvelopeShape(t *testing.T) {
	rate := beep.SampleRate(1000)
	got := drain(newEnvelope(constant(1), 100*time.Millisecond, 10*time.Millisecond, 20*time.Millisecond, rate))

	if got[0] != 0 {
		t.Errorf("first sample = %v, expected 0", got[0])
	}
	if got[5] != 0.5 {
		t.Errorf("mid-attack sample = %v, expected 0.5", got[5])
	}
	for i := 10; i < 80; i++ {
		if got[i] != 1 {
			t.Fatalf("sustain sample %d = %v, expected 1", i, got[i])
		}
	}
	if last := got[len(got)-1]; last != 0 {
		t.Errorf("last sample = %v, expected 0", last)
	}
	for i := 81; i < len(got); i++ {
		if got[i] > got[i-1] {
			t.Fatalf("release rises at %d: %v > %v", i, got[i], got[i-1])
		}
	}
}

func TestEnvelopeShortDuration(t *testing.T) {
	rate := beep.SampleRate(1000)
	got := drain(newEnvelope(constant(1), 5*time.Millisecond, 10*time.Millisecond, 10*time.Millisecond, rate))

	if len(got) != 5 {
		t.Fatalf("got %d samples, expected 5", len(got))
	}
	for i, v := range got {
		if v < 0 || v > 1 {
			t.Errorf("sample %d = %v, expected within [0, 1]", i, v)
		}
	}
}

func TestEffectDurations(t *testing.T) {
	rate := beep.SampleRate(8000)

	for _, e := range []Effect{EffectCatch, EffectMiss, EffectTierUp, EffectGameOver} {
		t.Run(e.String(), func(t *testing.T) {
			s, err := newEffect(e, rate, 1)
			if err != nil {
				t.Fatalf("newEffect: %v", err)
			}

			expected := 0
			for _, n := range effectNotes[e] {
				expected += rate.N(n.duration)
			}

			got := drain(s)
			if len(got) != expected {
				t.Errorf("got %d samples, expected %d", len(got), expected)
			}
			for i, v := range got {
				if math.Abs(v) > 1 {
					t.Fatalf("sample %d = %v, expected within [-1, 1]", i, v)
				}
			}
		})
	}
}

func TestEffectSilentAtZeroVolume(t *testing.T) {
	s, err := newEffect(EffectCatch, beep.SampleRate(8000), 0)
	if err != nil {
		t.Fatalf("newEffect: %v", err)
	}
	for i, v := range drain(s) {
		if v != 0 {
			t.Fatalf("sample %d = %v, expected silence", i, v)
		}
	}
}

func TestSilentPlayer(t *testing.T) {
	p := Silent(nil)
	if p.Enabled() {
		t.Fatal("silent player reports enabled")
	}

	p.Catch()
	p.Miss()
	p.TierUp()
	p.GameOver()
	p.HandleEvent(apples.Event{Kind: apples.EventMiss, Lives: 0})
	p.Close()

	if p.mixer.Len() != 0 {
		t.Errorf("mixer holds %d streamers, expected 0", p.mixer.Len())
	}
}

func TestSetVolumeClamps(t *testing.T) {
	p := Silent(nil)

	tests := []struct {
		in       float64
		expected float64
	}{
		{-1, 0},
		{0.25, 0.25},
		{3, 1},
	}
	for _, tt := range tests {
		p.SetVolume(tt.in)
		if p.volume != tt.expected {
			t.Errorf("SetVolume(%v): got %v, expected %v", tt.in, p.volume, tt.expected)
		}
	}
}

func TestEffectString(t *testing.T) {
	if got := Effect(42).String(); got != "unknown" {
		t.Errorf("got %q, expected %q", got, "unknown")
	}
}
