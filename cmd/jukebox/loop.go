package jukebox

import (
	"fmt"
	"log/slog"

	"github.com/gigurra/noteblock/cmd/jukebox/listener"
	"github.com/gigurra/noteblock/cmd/jukebox/sound"
	"github.com/gigurra/noteblock/cmd/jukebox/timeline"
)

type stepResult int

const (
	stepIdle stepResult = iota
	stepPlayed
	stepEnded
	stepDestroyed
)

// run is the song's driver loop: one tick per period, with the time spent
// emitting subtracted from the following sleep.
func (s *Song) run() {
	defer close(s.done)

	period := s.timeline.TickDuration()
	clock := s.deps.Clock

	for {
		start := clock.Now()

		switch s.step() {
		case stepEnded:
			slog.Debug("song finished", "song", s.timeline.Title)
			s.publish(SongEnded{SongID: s.id, Title: s.timeline.Title, Natural: true})
			return
		case stepDestroyed:
			return
		}

		if wait := pace(period, clock.Now().Sub(start)); wait > 0 {
			select {
			case <-clock.After(wait):
			case <-s.quit:
				return
			}
		}
	}
}

// step runs one tick inside the song's critical section.
func (s *Song) step() stepResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.destroyed {
		return stepDestroyed
	}
	if !s.playing {
		return stepIdle
	}
	if s.cursor > s.timeline.LastTick() {
		s.destroyLocked()
		return stepEnded
	}

	tick := s.cursor
	s.emitChordLocked(tick, s.timeline.Chord(tick))
	s.cursor++
	return stepPlayed
}

func (s *Song) emitChordLocked(tick int, chord timeline.Chord) {
	if len(chord) == 0 {
		return
	}
	for _, id := range s.roster.IDs() {
		if !s.deps.Resolver.Live(id) {
			continue
		}
		for _, n := range chord {
			snd := s.deps.Sounds.Resolve(n.Instrument)
			if snd == sound.None {
				continue
			}
			if err := s.emit(id, snd, sound.PitchMultiplier(n.Pitch)); err != nil {
				slog.Debug("note not delivered", "song", s.timeline.Title,
					"error", &EmissionError{Listener: id, Sound: snd, Tick: tick, Err: err})
			}
		}
	}
}

// emit delivers one note, turning an emitter panic into an error.
func (s *Song) emit(to listener.ID, snd sound.ID, pitch float64) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("emitter panicked: %v", r)
		}
	}()
	return s.deps.Emitter.Emit(to, snd, s.deps.Volume, pitch)
}
