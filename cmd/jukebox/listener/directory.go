package listener

import (
	"sort"
	"sync"

	"github.com/samber/lo"
)

// Directory tracks which identities are currently connected, and under what
// display name. It implements Resolver.
type Directory struct {
	mu    sync.RWMutex
	names map[ID]string
}

// NewDirectory creates an empty directory.
func NewDirectory() *Directory {
	return &Directory{names: make(map[ID]string)}
}

// Connect registers a new live listener and returns its identity.
func (d *Directory) Connect(name string) ID {
	id := NewID()
	d.ConnectID(id, name)
	return id
}

// ConnectID marks an existing identity as live.
func (d *Directory) ConnectID(id ID, name string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.names[id] = name
}

// Disconnect marks id as no longer reachable. Rosters holding it are left
// alone; emission to it is skipped until it reconnects.
func (d *Directory) Disconnect(id ID) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.names, id)
}

// Live reports whether id is connected.
func (d *Directory) Live(id ID) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	_, ok := d.names[id]
	return ok
}

// Name returns the display name of a connected listener.
func (d *Directory) Name(id ID) (string, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	name, ok := d.names[id]
	return name, ok
}

// Names returns the display names of the given identities that are live,
// sorted.
func (d *Directory) Names(ids []ID) []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	names := lo.FilterMap(ids, func(id ID, _ int) (string, bool) {
		name, ok := d.names[id]
		return name, ok
	})
	sort.Strings(names)
	return names
}
