// Package listener holds listener identities and the sets they are kept in.
package listener

import (
	"slices"

	"github.com/google/uuid"
)

// ID is an addressable listener reference. It is not a live handle: whether
// the listener can currently be reached is asked of a Resolver.
type ID = uuid.UUID

// NewID returns a fresh random identity.
func NewID() ID {
	return uuid.New()
}

// Resolver reports whether an identity currently resolves to a reachable
// recipient.
type Resolver interface {
	Live(id ID) bool
}

// ResolverFunc adapts a function to Resolver.
type ResolverFunc func(id ID) bool

func (f ResolverFunc) Live(id ID) bool { return f(id) }

// Everyone treats every identity as live.
var Everyone Resolver = ResolverFunc(func(ID) bool { return true })

// Roster is an insertion-ordered set of identities. It is not safe for
// concurrent use; owners guard it with their own lock.
type Roster struct {
	order   []ID
	members map[ID]struct{}
}

// NewRoster returns a roster holding ids, duplicates dropped.
func NewRoster(ids ...ID) *Roster {
	r := &Roster{members: make(map[ID]struct{}, len(ids))}
	for _, id := range ids {
		r.Add(id)
	}
	return r
}

// Add inserts id and reports whether it was new.
func (r *Roster) Add(id ID) bool {
	if _, ok := r.members[id]; ok {
		return false
	}
	r.members[id] = struct{}{}
	r.order = append(r.order, id)
	return true
}

// Remove deletes id and reports whether it was present.
func (r *Roster) Remove(id ID) bool {
	if _, ok := r.members[id]; !ok {
		return false
	}
	delete(r.members, id)
	r.order = slices.DeleteFunc(r.order, func(x ID) bool { return x == id })
	return true
}

// Contains reports membership.
func (r *Roster) Contains(id ID) bool {
	_, ok := r.members[id]
	return ok
}

// Len returns the number of members.
func (r *Roster) Len() int {
	return len(r.order)
}

// IDs returns a copy of the members in insertion order.
func (r *Roster) IDs() []ID {
	return slices.Clone(r.order)
}

// Clear removes every member.
func (r *Roster) Clear() {
	r.order = nil
	clear(r.members)
}
