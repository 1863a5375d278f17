// Package timeline holds the decoded form of a note block song and the
// codecs that produce it.
package timeline

import (
	"fmt"
	"math"
	"sort"
	"time"
)

// Instrument is the timbre category of a note. Values outside the known
// set are kept as-is so newer files still decode.
type Instrument uint8

const (
	Piano Instrument = iota
	DoubleBass
	BassDrum
	SnareDrum
	Click
	Guitar
	Flute
	Bell
	Chime
	Xylophone
)

var instrumentNames = [...]string{
	Piano:      "piano",
	DoubleBass: "double_bass",
	BassDrum:   "bass_drum",
	SnareDrum:  "snare_drum",
	Click:      "click",
	Guitar:     "guitar",
	Flute:      "flute",
	Bell:       "bell",
	Chime:      "chime",
	Xylophone:  "xylophone",
}

// Known reports whether the instrument is one this version can play.
func (i Instrument) Known() bool {
	return int(i) < len(instrumentNames)
}

func (i Instrument) String() string {
	if i.Known() {
		return instrumentNames[i]
	}
	return fmt.Sprintf("unknown(%d)", uint8(i))
}

// ParseInstrument looks up an instrument by its lower-case name.
func ParseInstrument(name string) (Instrument, bool) {
	for i, n := range instrumentNames {
		if n == name {
			return Instrument(i), true
		}
	}
	return 0, false
}

// Note is one sound event inside a chord.
type Note struct {
	Tick       int
	Instrument Instrument
	Pitch      int
}

// Chord is the set of notes sounding at the same tick, in file order.
type Chord []Note

// Timeline is a decoded song: a sparse map of tick -> chord advanced at
// Tempo ticks per second.
type Timeline struct {
	Title  string
	Tempo  float64
	Chords map[int]Chord

	lastTick int
}

// New builds a timeline from chords, computing the last tick.
func New(title string, tempo float64, chords map[int]Chord) *Timeline {
	if chords == nil {
		chords = make(map[int]Chord)
	}
	t := &Timeline{Title: title, Tempo: tempo, Chords: chords, lastTick: -1}
	for tick := range chords {
		if tick > t.lastTick {
			t.lastTick = tick
		}
	}
	return t
}

// LastTick returns the highest tick holding a chord, or -1 for an empty song.
func (t *Timeline) LastTick() int {
	return t.lastTick
}

// Chord returns the notes at tick, nil when the tick is silent.
func (t *Timeline) Chord(tick int) Chord {
	return t.Chords[tick]
}

// Ticks returns the non-silent ticks in ascending order.
func (t *Timeline) Ticks() []int {
	ticks := make([]int, 0, len(t.Chords))
	for tick := range t.Chords {
		ticks = append(ticks, tick)
	}
	sort.Ints(ticks)
	return ticks
}

// NoteCount returns the total number of notes across all chords.
func (t *Timeline) NoteCount() int {
	n := 0
	for _, c := range t.Chords {
		n += len(c)
	}
	return n
}

// Tempo bounds: a tick lasts at least a nanosecond and fits a time.Duration.
const (
	MaxTempo = float64(time.Second)
	MinTempo = float64(time.Second) / float64(math.MaxInt64)

	maxDuration = time.Duration(math.MaxInt64)
)

// CheckTempo reports why tempo cannot pace playback, nil when it can.
func CheckTempo(tempo float64) error {
	if math.IsNaN(tempo) || math.IsInf(tempo, 0) || tempo <= 0 {
		return fmt.Errorf("tempo must be positive, got %v", tempo)
	}
	if tempo <= MinTempo || tempo > MaxTempo {
		return fmt.Errorf("tempo %v is outside (%v, %v] ticks per second", tempo, MinTempo, MaxTempo)
	}
	return nil
}

// Length is the real-time duration: (last tick + 1) / tempo.
func (t *Timeline) Length() time.Duration {
	return t.At(t.lastTick + 1)
}

// At is the offset of tick from the start of the song, saturating at the
// longest time.Duration.
func (t *Timeline) At(tick int) time.Duration {
	if tick <= 0 {
		return 0
	}
	period := t.TickDuration()
	if period > maxDuration/time.Duration(tick) {
		return maxDuration
	}
	return period * time.Duration(tick)
}

// TickDuration is the real-time duration of one tick. Tempos rejected by
// CheckTempo are clamped: a non-positive tempo never advances and an
// excessive one ticks every nanosecond.
func (t *Timeline) TickDuration() time.Duration {
	if !(t.Tempo > 0) {
		return maxDuration
	}
	period := float64(time.Second) / t.Tempo
	switch {
	case period >= float64(maxDuration):
		return maxDuration
	case period < 1:
		return time.Nanosecond
	}
	return time.Duration(period)
}
