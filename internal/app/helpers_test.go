package app

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/askarin/proxima/internal/core"
	"github.com/askarin/proxima/internal/domain"
)

// fakeConn captures frames instead of writing to a socket.
type fakeConn struct {
	frames []core.Frame
	closed bool
	full   bool // simulate backpressure
}

func (f *fakeConn) TrySend(fr core.Frame) error {
	if f.closed {
		return errors.New("connection closed")
	}
	if f.full {
		return errors.New("backpressure")
	}
	f.frames = append(f.frames, fr)
	return nil
}

func (f *fakeConn) Close() { f.closed = true }

func (f *fakeConn) events(t *testing.T) []map[string]any {
	t.Helper()
	out := make([]map[string]any, 0, len(f.frames))
	for _, fr := range f.frames {
		var m map[string]any
		if err := json.Unmarshal(fr, &m); err != nil {
			t.Fatalf("bad frame %q: %v", fr, err)
		}
		out = append(out, m)
	}
	return out
}

func (f *fakeConn) ofType(t *testing.T, typ string) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, ev := range f.events(t) {
		if ev["type"] == typ {
			out = append(out, ev)
		}
	}
	return out
}

// world wires the app components around a shared registry for tests.
type world struct {
	reg   *Registry
	rooms *RoomManager
	bcast *Broadcaster
	prox  *ProximityEngine
	relay *SignalingRelay
}

func newWorld(threshold float64) *world {
	reg := NewRegistry()
	rooms := NewRoomManager(reg)
	bcast := NewBroadcaster(reg, rooms)
	return &world{
		reg:   reg,
		rooms: rooms,
		bcast: bcast,
		prox:  NewProximityEngine(reg, rooms, bcast, threshold),
		relay: NewSignalingRelay(reg, bcast),
	}
}

// addParticipant registers pid on a fresh fake socket and returns the socket.
func (w *world) addParticipant(pid domain.ParticipantID) *fakeConn {
	sock := &fakeConn{}
	w.reg.Register(domain.ConnID("conn-"+pid), pid, sock)
	return sock
}

// place puts pid into roomID at pos and runs a proximity recompute, the way
// the orchestrator does on join.
func (w *world) place(t *testing.T, pid domain.ParticipantID, roomID domain.RoomID, pos domain.Position) {
	t.Helper()
	p, ok := w.reg.Get(pid)
	if !ok {
		t.Fatalf("unknown participant %s", pid)
	}
	p.Position = pos
	if _, err := w.rooms.Join(pid, roomID); err != nil {
		t.Fatalf("join %s: %v", pid, err)
	}
	w.prox.Recompute(roomID, pid)
}
