package jukebox

import (
	"fmt"
	"sync"
	"time"

	"github.com/gigurra/noteblock/cmd/jukebox/bus"
	"github.com/gigurra/noteblock/cmd/jukebox/listener"
	"github.com/gigurra/noteblock/cmd/jukebox/sound"
	"github.com/gigurra/noteblock/cmd/jukebox/timeline"
	"github.com/google/uuid"
)

// PlaybackState represents the current state of playback.
type PlaybackState string

const (
	StateInert     PlaybackState = "inert"
	StatePlaying   PlaybackState = "playing"
	StatePaused    PlaybackState = "paused"
	StateDestroyed PlaybackState = "destroyed"
	StateStopped   PlaybackState = "stopped" // jukebox with no current song
)

// Emitter plays one sound to one listener. Implementations must not block
// for long: Emit runs inside the song's tick.
type Emitter interface {
	Emit(to listener.ID, id sound.ID, volume, pitch float64) error
}

// EmitterFunc adapts a function to Emitter.
type EmitterFunc func(to listener.ID, id sound.ID, volume, pitch float64) error

func (f EmitterFunc) Emit(to listener.ID, id sound.ID, volume, pitch float64) error {
	return f(to, id, volume, pitch)
}

// EmissionError describes a note that could not be delivered to a listener.
// It is logged and never returned to callers.
type EmissionError struct {
	Listener listener.ID
	Sound    sound.ID
	Tick     int
	Err      error
}

func (e *EmissionError) Error() string {
	return fmt.Sprintf("emit %s to %s at tick %d: %v", e.Sound, e.Listener, e.Tick, e.Err)
}

func (e *EmissionError) Unwrap() error { return e.Err }

// Deps are the collaborators a song plays through. Zero fields get
// defaults: no output, every listener live, no bus, the system clock, the
// default sound table and volume.
type Deps struct {
	Emitter  Emitter
	Resolver listener.Resolver
	Bus      *bus.Bus
	Clock    Clock
	Sounds   sound.Table
	Volume   float64
}

func (d Deps) withDefaults() Deps {
	if d.Emitter == nil {
		d.Emitter = EmitterFunc(func(listener.ID, sound.ID, float64, float64) error { return nil })
	}
	if d.Resolver == nil {
		d.Resolver = listener.Everyone
	}
	if d.Clock == nil {
		d.Clock = SystemClock
	}
	if d.Sounds == nil {
		d.Sounds = sound.DefaultTable()
	}
	if d.Volume <= 0 {
		d.Volume = sound.DefaultVolume
	}
	return d
}

// Song plays one decoded timeline to a mutable set of listeners. It is
// inert until Play, runs one background loop, and once stopped or finished
// it is destroyed for good: a new song needs a new Song.
type Song struct {
	id       uuid.UUID
	timeline *timeline.Timeline
	deps     Deps

	mu        sync.Mutex
	roster    *listener.Roster
	cursor    int
	playing   bool
	started   bool
	destroyed bool
	quit      chan struct{} // closed on destroy, wakes the loop
	done      chan struct{} // closed once the song can no longer emit
}

// NewSong binds tl to a new, inert song listened to by listeners.
func NewSong(tl *timeline.Timeline, deps Deps, listeners ...listener.ID) *Song {
	return &Song{
		id:       uuid.New(),
		timeline: tl,
		deps:     deps.withDefaults(),
		roster:   listener.NewRoster(listeners...),
		quit:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// ID identifies this song instance in published facts.
func (s *Song) ID() uuid.UUID { return s.id }

// Title is the song name from the resource header.
func (s *Song) Title() string { return s.timeline.Title }

// Timeline returns the decoded song.
func (s *Song) Timeline() *timeline.Timeline { return s.timeline }

// Done is closed when the song has been destroyed and its loop, if any, has
// exited.
func (s *Song) Done() <-chan struct{} { return s.done }

// AddListener tunes id in. It hears ticks from the current cursor on.
func (s *Song) AddListener(id listener.ID) {
	s.mu.Lock()
	added := !s.destroyed && s.roster.Add(id)
	announce := added && s.started
	s.mu.Unlock()

	if announce {
		s.announce(id)
	}
}

// RemoveListener tunes id out before the next tick.
func (s *Song) RemoveListener(id listener.ID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.roster.Remove(id)
}

// Listeners returns the current roster.
func (s *Song) Listeners() []listener.ID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.roster.IDs()
}

// Cursor returns the next tick to be played.
func (s *Song) Cursor() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cursor
}

// Position is the cursor expressed as elapsed song time.
func (s *Song) Position() time.Duration {
	return s.timeline.At(s.Cursor())
}

// State reports where the song is in its lifecycle.
func (s *Song) State() PlaybackState {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch {
	case s.destroyed:
		return StateDestroyed
	case s.playing:
		return StatePlaying
	case s.started:
		return StatePaused
	default:
		return StateInert
	}
}

// Play starts the loop on first call and (re)enables playback. It does
// nothing once the song is destroyed.
func (s *Song) Play() {
	s.mu.Lock()
	if s.destroyed {
		s.mu.Unlock()
		return
	}
	s.playing = true
	var audience []listener.ID
	if !s.started {
		s.started = true
		audience = s.roster.IDs()
		go s.run()
	}
	s.mu.Unlock()

	for _, id := range audience {
		s.announce(id)
	}
}

// Pause stops emission and keeps the cursor. The loop keeps running.
func (s *Song) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.destroyed {
		s.playing = false
	}
}

// Resume re-enables emission after Pause.
func (s *Song) Resume() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.destroyed {
		s.playing = true
	}
}

// Stop halts and destroys the song. SongEnded is published only when
// publishCompletion is set, which is how a skip is told apart from a stop.
// Stopping a destroyed song does nothing.
func (s *Song) Stop(publishCompletion bool) {
	s.mu.Lock()
	if s.destroyed {
		s.mu.Unlock()
		return
	}
	s.destroyLocked()
	started := s.started
	s.mu.Unlock()

	if !started {
		close(s.done)
	}
	if publishCompletion {
		s.publish(SongEnded{SongID: s.id, Title: s.timeline.Title})
	}
}

// destroyLocked moves the song to its terminal state. Must be called with
// s.mu held.
func (s *Song) destroyLocked() {
	s.playing = false
	s.cursor = 0
	s.destroyed = true
	close(s.quit)
}

func (s *Song) announce(id listener.ID) {
	if s.deps.Resolver.Live(id) {
		s.publish(SongStarted{SongID: s.id, Title: s.timeline.Title, Listener: id})
	}
}

func (s *Song) publish(f bus.Fact) {
	if s.deps.Bus != nil {
		s.deps.Bus.Publish(f)
	}
}
