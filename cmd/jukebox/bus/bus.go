// Package bus is a small in-process publish/subscribe hub for lifecycle
// facts.
package bus

import (
	"log/slog"
	"sync"
)

// Fact is anything that can be published. Kind selects the subscribers.
type Fact interface {
	Kind() string
}

// Handler receives published facts.
type Handler func(Fact)

type subscription struct {
	id      uint64
	handler Handler
}

// Bus delivers facts synchronously, on the publisher's goroutine, to every
// handler subscribed to the fact's kind, in subscription order.
type Bus struct {
	mu     sync.RWMutex
	nextID uint64
	subs   map[string][]subscription
}

// New creates an empty bus.
func New() *Bus {
	return &Bus{subs: make(map[string][]subscription)}
}

// Subscribe registers handler for kind and returns a function removing it.
// Calling the returned function more than once is harmless.
func (b *Bus) Subscribe(kind string, handler Handler) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID
	b.subs[kind] = append(b.subs[kind], subscription{id: id, handler: handler})

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		subs := b.subs[kind]
		for i, s := range subs {
			if s.id == id {
				b.subs[kind] = append(subs[:i:i], subs[i+1:]...)
				return
			}
		}
	}
}

// Publish delivers f. Handlers may publish or (un)subscribe themselves; a
// panicking handler is logged and does not stop delivery to the others.
func (b *Bus) Publish(f Fact) {
	b.mu.RLock()
	subs := b.subs[f.Kind()]
	b.mu.RUnlock()

	for _, s := range subs {
		deliver(s.handler, f)
	}
}

func deliver(h Handler, f Fact) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("bus handler panicked", "kind", f.Kind(), "panic", r)
		}
	}()
	h(f)
}
