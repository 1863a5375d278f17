// Package speaker renders note block sounds on the local audio device.
package speaker

import (
	"errors"
	"math"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/gigurra/noteblock/cmd/jukebox/sound"
	"github.com/gopxl/beep/v2"
)

// SampleRate is the rate the speaker is opened with.
const SampleRate = beep.SampleRate(44100)

// ErrNoAudio is returned when the build has no audio output.
var ErrNoAudio = errors.New("audio output requires cgo on this platform")

// timbre approximates one note block instrument with a decaying tone,
// optionally mixed with noise for the percussion.
type timbre struct {
	octave    float64 // multiplier on the reference frequency
	decay     float64 // seconds for the envelope to fall to 1/e
	noise     float64 // 0 is a pure tone, 1 is pure noise
	overtones float64 // weight of the second and third harmonics
}

var timbres = map[string]timbre{
	"harp":      {octave: 1, decay: 0.5},
	"bass":      {octave: 0.25, decay: 0.35, overtones: 0.3},
	"basedrum":  {octave: 0.125, decay: 0.08, noise: 0.4},
	"snare":     {octave: 1, decay: 0.06, noise: 0.9},
	"hat":       {octave: 4, decay: 0.02, noise: 1},
	"guitar":    {octave: 0.5, decay: 0.4, overtones: 0.5},
	"flute":     {octave: 2, decay: 0.6},
	"bell":      {octave: 4, decay: 0.9, overtones: 0.2},
	"chime":     {octave: 4, decay: 1.2},
	"xylophone": {octave: 2, decay: 0.15},
}

// length is how long the note rings before it is cut.
func (t timbre) length() time.Duration {
	return time.Duration(t.decay * 5 * float64(time.Second))
}

// timbreFor looks up a sound by the last segment of its id. Sounds the
// speaker has no model for play as a harp.
func timbreFor(id sound.ID) timbre {
	name := string(id)
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		name = name[i+1:]
	}
	if t, ok := timbres[name]; ok {
		return t
	}
	return timbres["harp"]
}

const attack = 5 * time.Millisecond

// voice is a single struck note.
type voice struct {
	timbre   timbre
	freq     float64
	gain     float64
	rate     float64
	position int
	samples  int
	attack   int
	rng      *rand.Rand
}

// Voice returns a streamer playing sound id once at the given volume and
// pitch multiplier.
func Voice(id sound.ID, volume, pitch float64, sr beep.SampleRate) beep.Streamer {
	t := timbreFor(id)
	return &voice{
		timbre:  t,
		freq:    sound.ReferenceFrequency * t.octave * pitch,
		gain:    0.5 * volume,
		rate:    float64(sr),
		samples: sr.N(t.length()),
		attack:  sr.N(attack),
		rng:     rand.New(rand.NewPCG(uint64(sr), math.Float64bits(pitch))),
	}
}

func (v *voice) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		if v.position >= v.samples {
			return i, i > 0
		}

		t := float64(v.position) / v.rate
		phase := 2 * math.Pi * v.freq * t
		tone := math.Sin(phase)
		if v.timbre.overtones > 0 {
			tone = (tone + v.timbre.overtones*(math.Sin(2*phase)+0.5*math.Sin(3*phase))) /
				(1 + 1.5*v.timbre.overtones)
		}
		value := (1-v.timbre.noise)*tone + v.timbre.noise*(2*v.rng.Float64()-1)

		envelope := math.Exp(-t / v.timbre.decay)
		if v.position < v.attack {
			envelope *= float64(v.position) / float64(v.attack)
		}

		value *= envelope * v.gain
		samples[i][0] = value
		samples[i][1] = value
		v.position++
	}
	return len(samples), true
}

func (v *voice) Err() error {
	return nil
}
