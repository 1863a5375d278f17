// Package sound maps decoded notes onto the host's sound identifiers and
// pitch multipliers.
package sound

import (
	"fmt"
	"math"

	"github.com/gigurra/noteblock/cmd/jukebox/timeline"
)

// ID names a sound known to the host, e.g. "block.note_block.harp".
type ID string

// None is returned for notes that have nothing to play.
const None ID = ""

// Pitch convention of the note block host: key 45 (F#4) plays the sample
// unshifted, and the playable range 33..57 spans two octaves (0.5..2.0).
const (
	ReferencePitch = 45
	StepsPerOctave = 12

	// ReferenceFrequency is F#4 in Hz, used when rendering notes locally.
	ReferenceFrequency = 369.994
)

// DefaultVolume is the volume notes are emitted at unless configured.
const DefaultVolume = 0.75

// PitchMultiplier converts a pitch index to the equal-tempered playback
// rate relative to ReferencePitch.
func PitchMultiplier(pitch int) float64 {
	return math.Pow(2, float64(pitch-ReferencePitch)/StepsPerOctave)
}

// Frequency returns the pitch as a tone frequency in Hz.
func Frequency(pitch int) float64 {
	return ReferenceFrequency * PitchMultiplier(pitch)
}

// Table maps instruments to sound identifiers.
type Table map[timeline.Instrument]ID

// DefaultTable returns the host's note block sounds.
func DefaultTable() Table {
	return Table{
		timeline.Piano:      "block.note_block.harp",
		timeline.DoubleBass: "block.note_block.bass",
		timeline.BassDrum:   "block.note_block.basedrum",
		timeline.SnareDrum:  "block.note_block.snare",
		timeline.Click:      "block.note_block.hat",
		timeline.Guitar:     "block.note_block.guitar",
		timeline.Flute:      "block.note_block.flute",
		timeline.Bell:       "block.note_block.bell",
		timeline.Chime:      "block.note_block.chime",
		timeline.Xylophone:  "block.note_block.xylophone",
	}
}

// WithOverrides returns a copy of t where instruments named in overrides
// (by their lower-case name) use the given sound instead.
func (t Table) WithOverrides(overrides map[string]string) (Table, error) {
	out := make(Table, len(t))
	for k, v := range t {
		out[k] = v
	}
	for name, id := range overrides {
		inst, ok := timeline.ParseInstrument(name)
		if !ok {
			return nil, fmt.Errorf("unknown instrument %q", name)
		}
		out[inst] = ID(id)
	}
	return out, nil
}

// Resolve returns the sound for inst, or None when there is nothing to play.
func (t Table) Resolve(inst timeline.Instrument) ID {
	if id, ok := t[inst]; ok {
		return id
	}
	return None
}
