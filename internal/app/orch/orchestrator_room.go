package orch

import (
	"time"

	"github.com/rs/zerolog/log"

	"github.com/askarin/proxima/internal/core"
	"github.com/askarin/proxima/internal/domain"
	"github.com/askarin/proxima/internal/metrics"
)

// JoinRoom moves the participant into roomID. If it already belongs to a
// room, that room is left first with the full leave side effects (proximity
// teardown, member-left to the remaining members, room destruction when
// empty). The joiner receives the room-members snapshot, everyone already
// there receives member-joined, and proximity is recomputed right away so
// that co-located joiners pair up without waiting for a position update.
func (o *Orchestrator) JoinRoom(conn domain.ConnID, roomID domain.RoomID, pos *domain.Position, animation, name string) {
	o.mu.Lock()
	defer o.mu.Unlock()

	pid, err := o.Registry.Resolve(conn)
	if err != nil {
		log.Warn().Str("module", "orch").Str("conn", string(conn)).Msg("join from unknown connection")
		return
	}
	p, ok := o.Registry.Get(pid)
	if !ok {
		return
	}

	o.leaveCurrentRoom(p)

	if pos != nil {
		p.Position = *pos
	}
	if animation != "" {
		p.Animation = animation
	}
	p.SetName(name)

	existing, err := o.Rooms.Join(pid, roomID)
	if err != nil {
		log.Error().Err(err).Str("module", "orch").Str("pid", string(pid)).Str("room", string(roomID)).Msg("join failed")
		return
	}
	metrics.RoomsActive.Set(float64(o.Rooms.Count()))

	members := make([]core.MemberState, 0, len(existing))
	for _, id := range existing {
		if state, ok := o.Registry.Snapshot(id); ok {
			members = append(members, state)
		}
	}
	o.Bcast.EmitToParticipant(pid, core.RoomMembersEvent{
		Type:    core.EvRoomMembers,
		Members: members,
		Room:    roomID,
	})

	if state, ok := o.Registry.Snapshot(pid); ok {
		o.Bcast.EmitToRoom(roomID, core.MemberJoinedEvent{
			Type:   core.EvMemberJoined,
			Member: state,
			Room:   roomID,
		}, pid)
	}

	o.Proximity.Recompute(roomID, pid)
	log.Info().Str("module", "orch").Str("pid", string(pid)).Str("room", string(roomID)).Str("name", p.Name).Msg("joined room")
}

// UpdatePosition applies a movement event. Participants without a room are
// ignored; otherwise proximity deltas go out first, then the member-updated
// broadcast to everyone else in the room.
func (o *Orchestrator) UpdatePosition(conn domain.ConnID, pos domain.Position, animation string) {
	o.mu.Lock()
	defer o.mu.Unlock()

	pid, err := o.Registry.Resolve(conn)
	if err != nil {
		return
	}
	roomID, err := o.Registry.UpdatePosition(pid, pos, animation)
	if err != nil || roomID == "" {
		return
	}

	o.Proximity.Recompute(roomID, pid)

	state, ok := o.Registry.Snapshot(pid)
	if !ok {
		return
	}
	o.Bcast.EmitToRoom(roomID, core.MemberUpdatedEvent{
		Type:          core.EvMemberUpdated,
		ParticipantID: pid,
		Position:      state.Position,
		Animation:     state.Animation,
		Room:          roomID,
	}, pid)
}

// Chat relays a chat line to every member of roomID except the sender,
// stamped with the server clock in unix millis.
func (o *Orchestrator) Chat(conn domain.ConnID, roomID domain.RoomID, message, name string) {
	o.mu.Lock()
	defer o.mu.Unlock()

	pid, err := o.Registry.Resolve(conn)
	if err != nil {
		return
	}
	if roomID == "" || message == "" {
		return
	}
	p, ok := o.Registry.Get(pid)
	if !ok {
		return
	}
	if name == "" {
		name = p.Name
	}

	o.Bcast.EmitToRoom(roomID, core.ChatEvent{
		Type:      core.EvChatMessage,
		From:      pid,
		Name:      name,
		Message:   message,
		Timestamp: time.Now().UnixMilli(),
	}, pid)
}

// leaveCurrentRoom runs the shared leave path: proximity teardown, membership
// removal, member-left to whoever stays behind. No-op when p has no room.
// Callers hold o.mu.
func (o *Orchestrator) leaveCurrentRoom(p *domain.Participant) {
	if p.Room == "" {
		return
	}
	o.Proximity.Teardown(p)
	roomID, remaining, left := o.Rooms.Leave(p.ID)
	if !left {
		return
	}
	metrics.RoomsActive.Set(float64(o.Rooms.Count()))
	if len(remaining) == 0 {
		return
	}
	o.Bcast.EmitToRoom(roomID, core.MemberLeftEvent{
		Type:          core.EvMemberLeft,
		ParticipantID: p.ID,
	}, p.ID)
}
