package jukebox

import (
	"github.com/gigurra/noteblock/cmd/jukebox/listener"
	"github.com/google/uuid"
)

// Fact kinds published on the bus.
const (
	KindSongStarted   = "song.started"
	KindSongEnded     = "song.ended"
	KindSongFailed    = "song.failed"
	KindQueueFinished = "queue.finished"
)

// SongStarted is published once per live listener when a song starts, and
// when a listener joins a song that has already started.
type SongStarted struct {
	SongID   uuid.UUID
	Title    string
	Listener listener.ID
}

func (SongStarted) Kind() string { return KindSongStarted }

// SongEnded is published when a song reaches the end of its timeline
// (Natural) or is stopped with completion requested.
type SongEnded struct {
	SongID  uuid.UUID
	Title   string
	Natural bool
}

func (SongEnded) Kind() string { return KindSongEnded }

// SongFailed is published when a queued entry cannot be decoded.
type SongFailed struct {
	JukeboxID uuid.UUID
	Position  int
	Name      string
	Err       error
}

func (SongFailed) Kind() string { return KindSongFailed }

// QueueFinished is published when a jukebox goes idle on its own: the queue
// ran out without repeat, or a decode failure halted it (Err set).
type QueueFinished struct {
	JukeboxID uuid.UUID
	Err       error
}

func (QueueFinished) Kind() string { return KindQueueFinished }
