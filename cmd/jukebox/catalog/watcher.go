package catalog

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/gigurra/noteblock/cmd/jukebox"
)

// Watcher reports song files that appear in a directory after it was
// created. Each file is reported once, as soon as it decodes.
type Watcher struct {
	dir     string
	exts    []string
	watcher *fsnotify.Watcher
	handler func(jukebox.Resource)
	done    chan struct{}
	stop    sync.Once

	seen map[string]bool
}

// NewWatcher watches dir. Songs already present are considered seen.
func NewWatcher(dir string, exts []string, handler func(jukebox.Resource)) (*Watcher, error) {
	existing, err := Dir(dir, exts)
	if err != nil {
		return nil, err
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	if err := fsw.Add(dir); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	w := &Watcher{
		dir:     dir,
		exts:    exts,
		watcher: fsw,
		handler: handler,
		done:    make(chan struct{}),
		seen:    make(map[string]bool),
	}
	for _, r := range existing {
		w.seen[r.(jukebox.FileResource).Path] = true
	}
	return w, nil
}

// Start processes events until Stop is called.
func (w *Watcher) Start() {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) != 0 {
				// Small delay to ensure file is fully written
				time.Sleep(10 * time.Millisecond)
				w.scan()
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			slog.Warn("watch error", "dir", w.dir, "error", err)
		case <-w.done:
			return
		}
	}
}

// StartAsync starts watching in a goroutine.
func (w *Watcher) StartAsync() {
	go w.Start()
}

// Stop stops watching.
func (w *Watcher) Stop() {
	w.stop.Do(func() {
		close(w.done)
		w.watcher.Close()
	})
}

func (w *Watcher) scan() {
	songs, err := Dir(w.dir, w.exts)
	if err != nil {
		slog.Warn("cannot rescan", "dir", w.dir, "error", err)
		return
	}
	for _, r := range songs {
		p := r.(jukebox.FileResource).Path
		if w.seen[p] {
			continue
		}
		data, err := os.ReadFile(p)
		if err != nil || len(data) == 0 {
			continue
		}
		// A song still being copied in does not decode yet; its next write
		// event brings it back here.
		if _, err := Decode(p, data); err != nil {
			slog.Debug("song not ready", "path", filepath.Base(p), "error", err)
			continue
		}
		w.seen[p] = true
		slog.Debug("new song", "path", filepath.Base(p))
		w.handler(r)
	}
}
