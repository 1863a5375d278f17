package play

import (
	"sync"
	"time"

	"github.com/gen2brain/beeep"
	"github.com/gigurra/noteblock/cmd/jukebox"
	"github.com/gigurra/noteblock/cmd/jukebox/bus"
	"github.com/gigurra/noteblock/cmd/jukebox/listener"
)

const notifyCooldown = 2 * time.Second

func sendNotification(title, body string) error {
	return beeep.Notify(title, body, "")
}

// notifier shows a desktop notification when a song starts for the local
// listener. Songs skipped through quickly only notify once per cooldown.
type notifier struct {
	local listener.ID
	send  func(title, body string) error
	now   func() time.Time

	mu   sync.Mutex
	last time.Time
}

func newNotifier(local listener.ID, send func(title, body string) error) *notifier {
	return &notifier{local: local, send: send, now: time.Now}
}

func (n *notifier) subscribe(b *bus.Bus) func() {
	return b.Subscribe(jukebox.KindSongStarted, n.onSongStarted)
}

func (n *notifier) onSongStarted(f bus.Fact) {
	started, ok := f.(jukebox.SongStarted)
	if !ok || started.Listener != n.local {
		return
	}

	n.mu.Lock()
	now := n.now()
	if !n.last.IsZero() && now.Sub(n.last) < notifyCooldown {
		n.mu.Unlock()
		return
	}
	n.last = now
	n.mu.Unlock()

	go func() {
		_ = n.send("Now playing", started.Title)
	}()
}
