// Package jukebox plays note block songs to sets of listeners. A Song is
// one playback of one decoded timeline; a Jukebox sequences songs from a
// queue and keeps its listeners tuned in across them.
package jukebox

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"github.com/gigurra/noteblock/cmd/jukebox/bus"
	"github.com/gigurra/noteblock/cmd/jukebox/listener"
	"github.com/gigurra/noteblock/cmd/jukebox/sound"
	"github.com/gigurra/noteblock/cmd/jukebox/timeline"
	"github.com/google/uuid"
	"github.com/samber/lo"
)

var (
	ErrQueueEmpty      = errors.New("queue is empty")
	ErrNotPlaying      = errors.New("not currently playing")
	ErrIndexOutOfRange = errors.New("index out of range")
	ErrClosed          = errors.New("jukebox is closed")
)

// Resource is a song the jukebox can load. Where the bytes come from is up
// to the implementation.
type Resource interface {
	Name() string
	Bytes() ([]byte, error)
}

// entry is one queued song. Loads hold on to entries rather than indexes,
// so the queue can be edited while a song is being read.
type entry struct {
	res Resource
}

// Decoder turns a resource's bytes into a timeline.
type Decoder func(name string, data []byte) (*timeline.Timeline, error)

// DecodePolicy says what the jukebox does with an entry that fails to decode.
type DecodePolicy string

const (
	// PolicySkip reports the entry and moves on to the next one.
	PolicySkip DecodePolicy = "skip"
	// PolicyHalt reports the entry and stops the jukebox.
	PolicyHalt DecodePolicy = "halt"
)

// Options configure a Jukebox. Zero values get the Song defaults, a private
// bus, the native decoder and PolicySkip.
type Options struct {
	Bus           *bus.Bus
	Emitter       Emitter
	Resolver      listener.Resolver
	Clock         Clock
	Sounds        sound.Table
	Volume        float64
	Decoder       Decoder
	OnDecodeError DecodePolicy
	Repeat        bool
}

// Jukebox manages a queue of songs and the listeners hearing them.
type Jukebox struct {
	id   uuid.UUID
	opts Options

	mu sync.Mutex

	// Queue management
	queue    []*entry
	queuePos int // Current position in queue (-1 if not started)
	repeat   bool
	epoch    uint64 // bumped whenever a load starts or playback is stopped

	// Playback state
	current *Song // replaced, never reused, each time a song starts
	roster  *listener.Roster
	lastErr error
	closed  bool

	unsubscribe func()
}

// New creates a jukebox and subscribes it to song completions on its bus.
func New(opts Options) *Jukebox {
	if opts.Bus == nil {
		opts.Bus = bus.New()
	}
	if opts.Decoder == nil {
		opts.Decoder = func(_ string, data []byte) (*timeline.Timeline, error) {
			return timeline.Decode(data)
		}
	}
	if opts.OnDecodeError == "" {
		opts.OnDecodeError = PolicySkip
	}

	j := &Jukebox{
		id:       uuid.New(),
		opts:     opts,
		queue:    make([]*entry, 0),
		queuePos: -1,
		repeat:   opts.Repeat,
		roster:   listener.NewRoster(),
	}
	j.unsubscribe = opts.Bus.Subscribe(KindSongEnded, j.onSongEnded)
	return j
}

// ID identifies the jukebox in published facts.
func (j *Jukebox) ID() uuid.UUID { return j.id }

// Bus returns the bus the jukebox publishes on.
func (j *Jukebox) Bus() *bus.Bus { return j.opts.Bus }

// Enqueue appends songs to the end of the queue. It never starts playback.
func (j *Jukebox) Enqueue(songs ...Resource) {
	j.mu.Lock()
	defer j.mu.Unlock()
	for _, r := range songs {
		j.queue = append(j.queue, &entry{res: r})
	}
}

// EnqueueAt inserts a song before the entry at index (0-based); index ==
// len(queue) appends. The current entry stays current.
func (j *Jukebox) EnqueueAt(index int, song Resource) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if index < 0 || index > len(j.queue) {
		return ErrIndexOutOfRange
	}
	j.queue = slices.Insert(j.queue, index, &entry{res: song})
	if j.queuePos >= 0 && index <= j.queuePos {
		j.queuePos++
	}
	return nil
}

// Remove drops the queue entry at index. A playing song keeps playing; the
// queue continues with the entry after it.
func (j *Jukebox) Remove(index int) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if index < 0 || index >= len(j.queue) {
		return ErrIndexOutOfRange
	}
	j.queue = slices.Delete(j.queue, index, index+1)
	if j.queuePos >= 0 && index <= j.queuePos {
		j.queuePos--
	}
	return nil
}

// Clear empties the queue and stops playback.
func (j *Jukebox) Clear() {
	j.mu.Lock()
	cur := j.current
	j.current = nil
	j.queue = make([]*entry, 0)
	j.queuePos = -1
	j.epoch++
	j.mu.Unlock()

	if cur != nil {
		cur.Stop(false)
	}
}

// Queue returns the names of the queued songs.
func (j *Jukebox) Queue() []string {
	j.mu.Lock()
	defer j.mu.Unlock()
	return lo.Map(j.queue, func(e *entry, _ int) string { return e.res.Name() })
}

// SetRepeat sets whether the queue wraps around after its last entry.
func (j *Jukebox) SetRepeat(repeat bool) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.repeat = repeat
}

// Repeat reports the repeat setting.
func (j *Jukebox) Repeat() bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.repeat
}

// AddListener tunes id in to the jukebox and to the song playing now.
func (j *Jukebox) AddListener(id listener.ID) {
	j.mu.Lock()
	j.roster.Add(id)
	cur := j.current
	j.mu.Unlock()

	if cur != nil {
		cur.AddListener(id)
	}
}

// RemoveListener tunes id out of the jukebox and the song playing now.
func (j *Jukebox) RemoveListener(id listener.ID) {
	j.mu.Lock()
	j.roster.Remove(id)
	cur := j.current
	j.mu.Unlock()

	if cur != nil {
		cur.RemoveListener(id)
	}
}

// Listeners returns the jukebox roster.
func (j *Jukebox) Listeners() []listener.ID {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.roster.IDs()
}

// Current returns the song playing or paused now, nil when idle.
func (j *Jukebox) Current() *Song {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.current
}

// Close stops playback and detaches the jukebox from its bus.
func (j *Jukebox) Close() {
	j.mu.Lock()
	if j.closed {
		j.mu.Unlock()
		return
	}
	j.closed = true
	j.epoch++
	cur := j.current
	j.current = nil
	j.mu.Unlock()

	j.unsubscribe()
	if cur != nil {
		cur.Stop(false)
	}
}

// FileResource is a song file on disk.
type FileResource struct {
	Path string
}

// Name is the base file name. The extension is kept so decoders can pick a
// format from it.
func (f FileResource) Name() string {
	return filepath.Base(f.Path)
}

func (f FileResource) Bytes() ([]byte, error) {
	return os.ReadFile(f.Path)
}

// BytesResource is a song already held in memory.
type BytesResource struct {
	Title string
	Data  []byte
}

func (b BytesResource) Name() string { return b.Title }

func (b BytesResource) Bytes() ([]byte, error) {
	if len(b.Data) == 0 {
		return nil, &timeline.DecodeError{Reason: "empty resource"}
	}
	return b.Data, nil
}

func (j *Jukebox) decode(r Resource) (*timeline.Timeline, error) {
	data, err := r.Bytes()
	if err != nil {
		return nil, err
	}
	return j.opts.Decoder(r.Name(), data)
}
