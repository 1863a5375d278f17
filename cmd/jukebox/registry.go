package jukebox

import (
	"sync"

	"github.com/gigurra/noteblock/cmd/jukebox/listener"
)

// Registry remembers which jukebox each listener is tuned to. A listener is
// tuned to at most one jukebox at a time.
type Registry struct {
	mu    sync.Mutex
	tuned map[listener.ID]*Jukebox
}

func NewRegistry() *Registry {
	return &Registry{tuned: make(map[listener.ID]*Jukebox)}
}

// Tune moves id to jb, leaving whatever jukebox it was tuned to before.
func (r *Registry) Tune(id listener.ID, jb *Jukebox) {
	r.mu.Lock()
	prev := r.tuned[id]
	r.tuned[id] = jb
	r.mu.Unlock()

	if prev == jb {
		return
	}
	if prev != nil {
		prev.RemoveListener(id)
	}
	jb.AddListener(id)
}

// Untune removes id from its jukebox, if any.
func (r *Registry) Untune(id listener.ID) {
	r.mu.Lock()
	prev, ok := r.tuned[id]
	delete(r.tuned, id)
	r.mu.Unlock()

	if ok {
		prev.RemoveListener(id)
	}
}

// Jukebox returns the jukebox id is tuned to.
func (r *Registry) Jukebox(id listener.ID) (*Jukebox, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	jb, ok := r.tuned[id]
	return jb, ok
}

// Forget drops every listener tuned to jb, for example after closing it.
func (r *Registry) Forget(jb *Jukebox) {
	r.mu.Lock()
	var ids []listener.ID
	for id, tuned := range r.tuned {
		if tuned == jb {
			ids = append(ids, id)
			delete(r.tuned, id)
		}
	}
	r.mu.Unlock()

	for _, id := range ids {
		jb.RemoveListener(id)
	}
}
