package chat

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"

	"github.com/Tyrowin/roomrelay/internal/metrics"
)

func TestBroadcastToRoomExcludesActor(t *testing.T) {
	reg := newTestRegistry()
	rec := newRecorder()
	eng := NewEngine(reg, rec, zerolog.Nop(), nil)
	reg.AddMember("room", "A", "alice")
	reg.AddMember("room", "B", "bob")
	reg.AddMember("other", "C", "carol")

	eng.BroadcastToRoom("room", SystemMessage("hi"), "A")

	if got := rec.take("A"); len(got) != 0 {
		t.Errorf("Excluded connection received %v", got)
	}
	if got := rec.take("B"); len(got) != 1 {
		t.Errorf("Expected one frame for B, got %v", got)
	}
	if got := rec.take("C"); len(got) != 0 {
		t.Errorf("Other room received %v", got)
	}
}

func TestBroadcastToRoomUsesCurrentMembership(t *testing.T) {
	reg := newTestRegistry()
	rec := newRecorder()
	eng := NewEngine(reg, rec, zerolog.Nop(), nil)
	reg.AddMember("room", "A", "alice")
	reg.AddMember("room", "B", "bob")
	reg.RemoveMember("room", "B")

	eng.BroadcastToRoom("room", SystemMessage("after"), "")

	if got := rec.take("B"); len(got) != 0 {
		t.Errorf("Departed member received %v", got)
	}
	if got := rec.take("A"); len(got) != 1 {
		t.Errorf("Expected one frame for A, got %v", got)
	}
}

func TestDroppedDeliveriesAreCounted(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())
	reg := newTestRegistry()
	rec := newRecorder()
	rec.gone["B"] = true
	eng := NewEngine(reg, rec, zerolog.Nop(), m)
	reg.AddMember("room", "A", "alice")
	reg.AddMember("room", "B", "bob")

	eng.BroadcastToRoom("room", SystemMessage("hi"), "")
	eng.SendToConnection("nobody", SystemMessage("hi"))

	if got := testutil.ToFloat64(m.DeliveriesDropped); got != 1 {
		t.Errorf("Expected 1 dropped delivery, got %v", got)
	}
	if got := rec.take("A"); len(got) != 1 {
		t.Errorf("Live member missed the broadcast: %v", got)
	}
}
