package jukebox

import (
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/gigurra/noteblock/cmd/jukebox/bus"
	"github.com/gigurra/noteblock/cmd/jukebox/timeline"
)

// Status is a snapshot of the jukebox.
type Status struct {
	State       PlaybackState
	Title       string        // current song, empty when stopped
	Tick        int           // next tick of the current song
	LastTick    int           // last tick of the current song
	Position    time.Duration // elapsed song time
	Length      time.Duration // total song time
	QueueIndex  int           // current position in the queue (-1 if not started)
	QueueLength int
	Repeat      bool
	Listeners   int
	LastError   error // most recent decode failure
}

// Play starts the entry at the current queue position, or resumes the song
// that is playing now. After the queue has run out it starts from the top.
// Enqueueing alone never starts playback; this does.
func (j *Jukebox) Play() error {
	j.mu.Lock()
	if j.closed {
		j.mu.Unlock()
		return ErrClosed
	}
	if cur := j.current; cur != nil {
		j.mu.Unlock()
		cur.Resume()
		return nil
	}
	if len(j.queue) == 0 {
		j.mu.Unlock()
		return ErrQueueEmpty
	}

	pos := j.queuePos
	if pos < 0 || pos >= len(j.queue) {
		pos = 0
	}
	sel := j.selectLocked(pos, j.repeat)
	j.mu.Unlock()

	return j.start(j.load(sel))
}

// PlayAt ends whatever is playing, without advancing, and starts the entry
// at index.
func (j *Jukebox) PlayAt(index int) error {
	j.mu.Lock()
	if j.closed {
		j.mu.Unlock()
		return ErrClosed
	}
	if index < 0 || index >= len(j.queue) {
		j.mu.Unlock()
		return ErrIndexOutOfRange
	}
	prev := j.current
	j.current = nil
	sel := j.selectLocked(index, j.repeat)
	j.mu.Unlock()

	if prev != nil {
		prev.Stop(false)
	}
	return j.start(j.load(sel))
}

// start plays a loaded song. A load that was overtaken by another control
// call is not an error.
func (j *Jukebox) start(song *Song, res loadResult) error {
	j.publishAll(res.failures)
	if song != nil {
		song.Play()
		return nil
	}
	if !res.committed {
		return nil
	}
	if res.err != nil {
		return res.err
	}
	if len(res.failures) > 0 {
		return fmt.Errorf("no playable song in queue: %w", res.failures[len(res.failures)-1].Err)
	}
	return nil
}

// Skip ends the current song as if it had finished, which advances the
// queue. With nothing playing it behaves like Play.
func (j *Jukebox) Skip() error {
	j.mu.Lock()
	if j.closed {
		j.mu.Unlock()
		return ErrClosed
	}
	cur := j.current
	j.mu.Unlock()

	if cur == nil {
		return j.Play()
	}
	cur.Stop(true)
	return nil
}

// Stop ends the current song without advancing the queue. A later Play
// starts the same entry again from its beginning. A song still being read
// is abandoned.
func (j *Jukebox) Stop() {
	j.mu.Lock()
	cur := j.current
	j.current = nil
	j.epoch++
	j.mu.Unlock()

	if cur != nil {
		cur.Stop(false)
	}
}

// Pause pauses the current song.
func (j *Jukebox) Pause() error {
	cur := j.Current()
	if cur == nil {
		return ErrNotPlaying
	}
	cur.Pause()
	return nil
}

// Resume resumes a paused song.
func (j *Jukebox) Resume() error {
	cur := j.Current()
	if cur == nil {
		return ErrNotPlaying
	}
	cur.Resume()
	return nil
}

// onSongEnded advances the queue when the current song completes. Facts
// about songs that are no longer current (stopped, replaced, or owned by
// another jukebox on the same bus) are ignored.
func (j *Jukebox) onSongEnded(f bus.Fact) {
	ended, ok := f.(SongEnded)
	if !ok {
		return
	}

	j.mu.Lock()
	if j.current == nil || j.current.ID() != ended.SongID {
		j.mu.Unlock()
		return
	}
	j.current = nil
	sel := j.selectLocked(j.queuePos+1, j.repeat)
	j.mu.Unlock()

	song, res := j.load(sel)
	j.publishAll(res.failures)
	if !res.committed {
		return
	}
	if song == nil {
		slog.Info("jukebox idle", "jukebox", j.id)
		j.opts.Bus.Publish(QueueFinished{JukeboxID: j.id, Err: res.err})
		return
	}
	song.Play()
}

// selection is a load in progress: the entries to try, in order.
type selection struct {
	epoch     uint64
	entries   []*entry
	positions []int
}

type loadResult struct {
	failures  []SongFailed
	err       error // first failure under PolicyHalt
	committed bool  // false when another control call got there first
}

// selectLocked lists the entries a load starting at pos tries. Past the end
// it wraps only when wrap is set, and it covers at most one pass over the
// queue. Any load already in flight is superseded. Must be called with j.mu
// held.
func (j *Jukebox) selectLocked(pos int, wrap bool) selection {
	j.epoch++
	sel := selection{epoch: j.epoch}
	for n := 0; n < len(j.queue); n++ {
		if pos >= len(j.queue) {
			if !wrap {
				break
			}
			pos = 0
		}
		sel.entries = append(sel.entries, j.queue[pos])
		sel.positions = append(sel.positions, pos)
		pos++
	}
	return sel
}

// load reads and decodes the selected entries until one loads, then makes
// it the current (inert) song. Resources are read without holding j.mu, so
// slow storage never blocks the other controls. Under PolicyHalt the first
// failure ends the load.
func (j *Jukebox) load(sel selection) (*Song, loadResult) {
	var (
		res     loadResult
		picked  *entry
		decoded *timeline.Timeline
	)
	for i, e := range sel.entries {
		tl, err := j.decode(e.res)
		if err == nil {
			picked, decoded = e, tl
			break
		}
		slog.Warn("cannot play song", "song", e.res.Name(), "position", sel.positions[i], "error", err)
		res.failures = append(res.failures, SongFailed{JukeboxID: j.id, Position: sel.positions[i], Name: e.res.Name(), Err: err})
		if j.opts.OnDecodeError == PolicyHalt {
			picked, res.err = e, err
			break
		}
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	if j.closed || j.epoch != sel.epoch {
		return nil, res
	}
	res.committed = true
	if len(res.failures) > 0 {
		j.lastErr = res.failures[len(res.failures)-1].Err
	}

	// The queue may have been edited while reading; an entry removed in the
	// meantime is not played.
	pos := slices.Index(j.queue, picked)
	switch {
	case picked == nil || pos < 0:
		j.queuePos = -1
		return nil, res
	case decoded == nil:
		j.queuePos = pos
		return nil, res
	}
	j.queuePos = pos
	j.current = NewSong(decoded, j.songDeps(), j.roster.IDs()...)
	slog.Info("now playing", "song", decoded.Title, "position", pos)
	return j.current, res
}

func (j *Jukebox) songDeps() Deps {
	return Deps{
		Emitter:  j.opts.Emitter,
		Resolver: j.opts.Resolver,
		Bus:      j.opts.Bus,
		Clock:    j.opts.Clock,
		Sounds:   j.opts.Sounds,
		Volume:   j.opts.Volume,
	}
}

func (j *Jukebox) publishAll(failures []SongFailed) {
	for _, f := range failures {
		j.opts.Bus.Publish(f)
	}
}

// Status returns the current playback information.
func (j *Jukebox) Status() Status {
	j.mu.Lock()
	defer j.mu.Unlock()

	st := Status{
		State:       StateStopped,
		LastTick:    -1,
		QueueIndex:  j.queuePos,
		QueueLength: len(j.queue),
		Repeat:      j.repeat,
		Listeners:   j.roster.Len(),
		LastError:   j.lastErr,
	}
	if cur := j.current; cur != nil {
		tl := cur.Timeline()
		st.State = cur.State()
		st.Title = tl.Title
		st.Tick = cur.Cursor()
		st.LastTick = tl.LastTick()
		st.Position = tl.At(st.Tick)
		st.Length = tl.Length()
	}
	return st
}

// IsPlaying returns true if a song is currently playing.
func (j *Jukebox) IsPlaying() bool {
	return j.Status().State == StatePlaying
}

// IsStopped returns true if no song is current.
func (j *Jukebox) IsStopped() bool {
	return j.Current() == nil
}
