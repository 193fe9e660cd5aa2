package orch

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/askarin/proxima/internal/app"
	"github.com/askarin/proxima/internal/core"
	"github.com/askarin/proxima/internal/domain"
)

type fakeConn struct {
	frames []core.Frame
	closed bool
}

func (f *fakeConn) TrySend(fr core.Frame) error {
	if f.closed {
		return errors.New("connection closed")
	}
	f.frames = append(f.frames, fr)
	return nil
}

func (f *fakeConn) Close() { f.closed = true }

func (f *fakeConn) ofType(t *testing.T, typ string) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, fr := range f.frames {
		var m map[string]any
		if err := json.Unmarshal(fr, &m); err != nil {
			t.Fatalf("bad frame %q: %v", fr, err)
		}
		if m["type"] == typ {
			out = append(out, m)
		}
	}
	return out
}

func newTestOrch() *Orchestrator {
	reg := app.NewRegistry()
	rooms := app.NewRoomManager(reg)
	bcast := app.NewBroadcaster(reg, rooms)
	prox := app.NewProximityEngine(reg, rooms, bcast, 200)
	relay := app.NewSignalingRelay(reg, bcast)
	return New(reg, rooms, prox, relay, bcast)
}

func connect(o *Orchestrator, pid domain.ParticipantID) (domain.ConnID, *fakeConn) {
	conn := domain.ConnID("conn-" + pid)
	sock := &fakeConn{}
	o.Connect(conn, pid, sock)
	return conn, sock
}

func pos(x, y float64) *domain.Position {
	return &domain.Position{X: x, Y: y}
}

func TestConnectSendsInitToNewConnectionOnly(t *testing.T) {
	o := newTestOrch()
	_, sockA := connect(o, "a")
	_, sockB := connect(o, "b")

	init := sockA.ofType(t, core.EvInit)
	if len(init) != 1 || init[0]["participantId"] != "a" {
		t.Fatalf("a init = %v", init)
	}
	if got := sockB.ofType(t, core.EvInit); len(got) != 1 || got[0]["participantId"] != "b" {
		t.Errorf("b init = %v", got)
	}
}

func TestJoinSendsSnapshotAndNotifiesRoom(t *testing.T) {
	o := newTestOrch()
	connA, sockA := connect(o, "a")
	connB, sockB := connect(o, "b")

	o.JoinRoom(connA, "r1", pos(0, 0), "down-idle", "alice")
	o.JoinRoom(connB, "r1", pos(500, 500), "up-walk", "bob")

	// First joiner sees an empty snapshot.
	snapA := sockA.ofType(t, core.EvRoomMembers)
	if len(snapA) != 1 {
		t.Fatalf("a room-members = %v", snapA)
	}
	if members, _ := snapA[0]["members"].([]any); len(members) != 0 {
		t.Errorf("first joiner snapshot not empty: %v", snapA[0])
	}

	// Second joiner sees the first with full state.
	snapB := sockB.ofType(t, core.EvRoomMembers)
	if len(snapB) != 1 {
		t.Fatalf("b room-members = %v", snapB)
	}
	members, _ := snapB[0]["members"].([]any)
	if len(members) != 1 {
		t.Fatalf("b snapshot members = %v", members)
	}
	first := members[0].(map[string]any)
	if first["id"] != "a" || first["name"] != "alice" || first["animation"] != "down-idle" {
		t.Errorf("snapshot state = %v", first)
	}

	// Existing member is told about the newcomer.
	joined := sockA.ofType(t, core.EvMemberJoined)
	if len(joined) != 1 {
		t.Fatalf("a member-joined = %v", joined)
	}
	member := joined[0]["member"].(map[string]any)
	if member["id"] != "b" || member["name"] != "bob" {
		t.Errorf("member-joined state = %v", member)
	}
	// The joiner itself is not.
	if got := sockB.ofType(t, core.EvMemberJoined); len(got) != 0 {
		t.Errorf("joiner saw its own member-joined: %v", got)
	}
}

func TestProximityScenarioJoinCloseThenMoveAway(t *testing.T) {
	o := newTestOrch()
	connA, sockA := connect(o, "a")
	connB, sockB := connect(o, "b")

	o.JoinRoom(connA, "r1", pos(0, 0), "", "")
	o.JoinRoom(connB, "r1", pos(50, 50), "", "")

	if got := sockA.ofType(t, core.EvProximityEntered); len(got) != 1 || got[0]["participantId"] != "b" {
		t.Fatalf("a proximity-entered = %v", got)
	}
	if got := sockB.ofType(t, core.EvProximityEntered); len(got) != 1 || got[0]["participantId"] != "a" {
		t.Fatalf("b proximity-entered = %v", got)
	}

	o.UpdatePosition(connA, domain.Position{X: 1000, Y: 1000}, "up-walk")

	if got := sockA.ofType(t, core.EvProximityLeft); len(got) != 1 || got[0]["participantId"] != "b" {
		t.Errorf("a proximity-left = %v", got)
	}
	if got := sockB.ofType(t, core.EvProximityLeft); len(got) != 1 || got[0]["participantId"] != "a" {
		t.Errorf("b proximity-left = %v", got)
	}

	// Movement is also broadcast to the room, sender excluded.
	upd := sockB.ofType(t, core.EvMemberUpdated)
	if len(upd) != 1 || upd[0]["participantId"] != "a" || upd[0]["animation"] != "up-walk" {
		t.Errorf("b member-updated = %v", upd)
	}
	if got := sockA.ofType(t, core.EvMemberUpdated); len(got) != 0 {
		t.Errorf("sender received its own update: %v", got)
	}
}

func TestPositionUpdateWithoutRoomIsIgnored(t *testing.T) {
	o := newTestOrch()
	connA, sockA := connect(o, "a")

	o.UpdatePosition(connA, domain.Position{X: 9, Y: 9}, "walk")

	p, _ := o.Registry.Get("a")
	if p.Position.X != 0 {
		t.Error("position mutated before joining a room")
	}
	if got := sockA.ofType(t, core.EvMemberUpdated); len(got) != 0 {
		t.Error("update broadcast without room membership")
	}
}

func TestDisconnectKeepsRoomForRemaining(t *testing.T) {
	o := newTestOrch()
	connA, _ := connect(o, "a")
	connB, sockB := connect(o, "b")
	o.JoinRoom(connA, "r1", pos(0, 0), "", "")
	o.JoinRoom(connB, "r1", pos(10, 0), "", "")

	o.Disconnect(connA)

	if !o.Rooms.Exists("r1") {
		t.Fatal("room destroyed while b is still a member")
	}
	if got := sockB.ofType(t, core.EvMemberLeft); len(got) != 1 || got[0]["participantId"] != "a" {
		t.Errorf("b member-left = %v", got)
	}
	if got := sockB.ofType(t, core.EvProximityLeft); len(got) != 1 || got[0]["participantId"] != "a" {
		t.Errorf("b proximity-left = %v, want exactly one", got)
	}
	pb, _ := o.Registry.Get("b")
	if _, ok := pb.Nearby["a"]; ok {
		t.Error("b still has the disconnected participant in its nearby set")
	}
	if _, ok := o.Registry.Get("a"); ok {
		t.Error("disconnected participant still registered")
	}
}

func TestLastDisconnectDestroysRoom(t *testing.T) {
	o := newTestOrch()
	connA, _ := connect(o, "a")
	o.JoinRoom(connA, "r1", pos(0, 0), "", "")

	o.Disconnect(connA)

	if o.Rooms.Exists("r1") {
		t.Error("empty room survived the last disconnect")
	}

	// Re-delivered disconnect is a no-op.
	o.Disconnect(connA)
}

func TestJoinNewRoomLeavesOldWithFullSideEffects(t *testing.T) {
	o := newTestOrch()
	connA, _ := connect(o, "a")
	connB, sockB := connect(o, "b")
	o.JoinRoom(connA, "r1", pos(0, 0), "", "")
	o.JoinRoom(connB, "r1", pos(10, 0), "", "")

	o.JoinRoom(connA, "r2", pos(0, 0), "", "")

	if got := sockB.ofType(t, core.EvProximityLeft); len(got) != 1 || got[0]["participantId"] != "a" {
		t.Errorf("b proximity-left = %v", got)
	}
	if got := sockB.ofType(t, core.EvMemberLeft); len(got) != 1 || got[0]["participantId"] != "a" {
		t.Errorf("b member-left = %v", got)
	}
	pa, _ := o.Registry.Get("a")
	if pa.Room != "r2" || len(pa.Nearby) != 0 {
		t.Errorf("mover state = room %q nearby %v", pa.Room, pa.Nearby)
	}
	if members := o.Rooms.Members("r1"); len(members) != 1 || members[0] != "b" {
		t.Errorf("r1 members = %v, want [b]", members)
	}
	if members := o.Rooms.Members("r2"); len(members) != 1 || members[0] != "a" {
		t.Errorf("r2 members = %v, want [a]", members)
	}
}

func TestSignalOfferToDeadTargetIsSilent(t *testing.T) {
	o := newTestOrch()
	connA, sockA := connect(o, "a")
	o.JoinRoom(connA, "r1", pos(0, 0), "", "")

	o.Signal(connA, core.EvSignalOffer, json.RawMessage(`{"sdp":"x"}`), "gone")

	for _, typ := range []string{core.EvSignalOffer, "error"} {
		if got := sockA.ofType(t, typ); len(got) != 0 {
			t.Errorf("sender received %s: %v", typ, got)
		}
	}
}

func TestSignalOfferFansOutToNearby(t *testing.T) {
	o := newTestOrch()
	connA, _ := connect(o, "a")
	connB, sockB := connect(o, "b")
	connC, sockC := connect(o, "c")
	o.JoinRoom(connA, "r1", pos(0, 0), "", "")
	o.JoinRoom(connB, "r1", pos(10, 0), "", "")
	o.JoinRoom(connC, "r1", pos(0, 10), "", "")

	o.Signal(connA, core.EvSignalOffer, json.RawMessage(`{"sdp":"x"}`), "")

	for name, sock := range map[string]*fakeConn{"b": sockB, "c": sockC} {
		got := sock.ofType(t, core.EvSignalOffer)
		if len(got) != 1 || got[0]["from"] != "a" {
			t.Errorf("%s signal-offer = %v", name, got)
		}
	}
}

func TestSignalOfferRequiresRoom(t *testing.T) {
	o := newTestOrch()
	connA, _ := connect(o, "a")
	_, sockB := connect(o, "b")

	o.Signal(connA, core.EvSignalOffer, json.RawMessage(`{"sdp":"x"}`), "b")

	if got := sockB.ofType(t, core.EvSignalOffer); len(got) != 0 {
		t.Errorf("roomless offer delivered: %v", got)
	}
}

func TestSignalAnswerNeedsNoRoom(t *testing.T) {
	o := newTestOrch()
	connA, _ := connect(o, "a")
	_, sockB := connect(o, "b")

	o.Signal(connA, core.EvSignalAnswer, json.RawMessage(`{"sdp":"y"}`), "b")

	if got := sockB.ofType(t, core.EvSignalAnswer); len(got) != 1 || got[0]["from"] != "a" {
		t.Errorf("b signal-answer = %v", got)
	}
}

func TestChatExcludesSenderAndCarriesTimestamp(t *testing.T) {
	o := newTestOrch()
	connA, sockA := connect(o, "a")
	connB, sockB := connect(o, "b")
	o.JoinRoom(connA, "r1", pos(0, 0), "", "alice")
	o.JoinRoom(connB, "r1", pos(1000, 1000), "", "")

	o.Chat(connA, "r1", "hello there", "")

	got := sockB.ofType(t, core.EvChatMessage)
	if len(got) != 1 {
		t.Fatalf("b chat = %v", got)
	}
	if got[0]["from"] != "a" || got[0]["message"] != "hello there" || got[0]["name"] != "alice" {
		t.Errorf("chat fields = %v", got[0])
	}
	if ts, ok := got[0]["timestamp"].(float64); !ok || ts <= 0 {
		t.Errorf("chat timestamp = %v", got[0]["timestamp"])
	}
	if got := sockA.ofType(t, core.EvChatMessage); len(got) != 0 {
		t.Error("sender received its own chat message")
	}
}

func TestEventsFromUnknownConnectionAreDropped(t *testing.T) {
	o := newTestOrch()

	// None of these may panic or mutate anything.
	o.JoinRoom("ghost", "r1", pos(0, 0), "", "")
	o.UpdatePosition("ghost", domain.Position{}, "")
	o.Chat("ghost", "r1", "hi", "")
	o.Signal("ghost", core.EvSignalOffer, json.RawMessage(`{}`), "")
	o.Disconnect("ghost")

	if o.Rooms.Exists("r1") {
		t.Error("room created by an unknown connection")
	}
}

func TestStaleSocketCloseAfterReconnect(t *testing.T) {
	o := newTestOrch()
	oldConn, _ := connect(o, "a")

	// Same identity reconnects on a new socket before the old one is reaped.
	newConn := domain.ConnID("conn-a-2")
	newSock := &fakeConn{}
	o.Connect(newConn, "a", newSock)
	o.JoinRoom(newConn, "r1", pos(0, 0), "", "")

	o.Disconnect(oldConn)

	if _, ok := o.Registry.Get("a"); !ok {
		t.Fatal("stale socket close destroyed the live participant")
	}
	if !o.Rooms.Exists("r1") {
		t.Error("stale socket close destroyed the live room")
	}

	o.Disconnect(newConn)
	if _, ok := o.Registry.Get("a"); ok {
		t.Error("live socket close did not remove the participant")
	}
}

func TestRoomList(t *testing.T) {
	o := newTestOrch()
	connA, _ := connect(o, "a")
	o.JoinRoom(connA, "r1", pos(0, 0), "", "")

	list := o.RoomList()
	if len(list) != 1 || list[0].ID != "r1" || list[0].MemberCount != 1 {
		t.Errorf("RoomList = %v", list)
	}
}
