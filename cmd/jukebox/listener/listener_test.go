package listener

import (
	"testing"
)

func TestRoster_AddIsIdempotent(t *testing.T) {
	id := NewID()
	r := NewRoster()

	if !r.Add(id) {
		t.Error("first Add should report a new member")
	}
	if r.Add(id) {
		t.Error("second Add should be a no-op")
	}
	if r.Len() != 1 {
		t.Errorf("Len() = %d, want 1", r.Len())
	}
}

func TestRoster_RemoveAbsentIsNoop(t *testing.T) {
	a, b := NewID(), NewID()
	r := NewRoster(a)

	if r.Remove(b) {
		t.Error("removing a non-member should report false")
	}
	if r.Len() != 1 || !r.Contains(a) {
		t.Errorf("roster changed: %v", r.IDs())
	}
	if !r.Remove(a) {
		t.Error("removing a member should report true")
	}
	if r.Len() != 0 || r.Contains(a) {
		t.Errorf("roster not empty: %v", r.IDs())
	}
}

func TestRoster_KeepsInsertionOrder(t *testing.T) {
	a, b, c := NewID(), NewID(), NewID()
	r := NewRoster(a, b, a, c)
	r.Remove(b)
	r.Add(b)

	got := r.IDs()
	want := []ID{a, c, b}
	if len(got) != len(want) {
		t.Fatalf("IDs() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("IDs()[%d] = %v, want %v", i, got[i], want[i])
		}
	}

	// IDs returns a copy
	got[0] = NewID()
	if r.IDs()[0] != a {
		t.Error("IDs() exposed internal storage")
	}

	r.Clear()
	if r.Len() != 0 || r.Contains(a) {
		t.Error("Clear left members behind")
	}
}

func TestDirectory(t *testing.T) {
	d := NewDirectory()
	alice := d.Connect("alice")
	bob := d.Connect("bob")
	ghost := NewID()

	if !d.Live(alice) || !d.Live(bob) {
		t.Error("connected listeners should be live")
	}
	if d.Live(ghost) {
		t.Error("unknown identity should not be live")
	}

	d.Disconnect(bob)
	if d.Live(bob) {
		t.Error("disconnected listener should not be live")
	}
	if name, ok := d.Name(alice); !ok || name != "alice" {
		t.Errorf("Name(alice) = %q, %v", name, ok)
	}

	d.ConnectID(bob, "bob")
	names := d.Names([]ID{bob, ghost, alice})
	if len(names) != 2 || names[0] != "alice" || names[1] != "bob" {
		t.Errorf("Names() = %v, want [alice bob]", names)
	}
}

func TestEveryone(t *testing.T) {
	if !Everyone.Live(NewID()) {
		t.Error("Everyone should resolve any identity")
	}
}
