package host

import "testing"

func TestSlot_BindCurrentUnbind(t *testing.T) {
	var s Slot
	if s.Current() != nil {
		t.Fatalf("expected nil before Bind")
	}

	a := NewAdapter(nil, Message{Gas: 5})
	s.Bind(a)
	if s.Current() != a {
		t.Fatalf("Current() did not return the bound adapter")
	}

	s.Unbind()
	if s.Current() != nil {
		t.Fatalf("expected nil after Unbind")
	}
}

func TestSlot_RebindAcrossCalls(t *testing.T) {
	var s Slot
	first := NewAdapter(nil, Message{Gas: 1})
	second := NewAdapter(nil, Message{Gas: 2})

	s.Bind(first)
	if s.Current().Message.Gas != 1 {
		t.Fatalf("expected first adapter bound")
	}

	s.Bind(second)
	if s.Current().Message.Gas != 2 {
		t.Fatalf("expected second adapter bound after rebind")
	}
}
