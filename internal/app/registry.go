package app

import (
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/askarin/proxima/internal/core"
	"github.com/askarin/proxima/internal/domain"
)

var (
	ErrUnknownConnection  = errors.New("unknown connection")
	ErrUnknownParticipant = errors.New("unknown participant")
)

// Registry owns the connection table and the live participant state. It is the
// single place translating between transient connection ids and durable
// participant ids. Map access is serialized by the orchestrator, which applies
// every inbound event as one atomic step.
type Registry struct {
	conns        map[domain.ConnID]domain.ParticipantID
	participants map[domain.ParticipantID]*domain.Participant
	socks        map[domain.ParticipantID]core.SignalConnection
}

func NewRegistry() *Registry {
	return &Registry{
		conns:        make(map[domain.ConnID]domain.ParticipantID),
		participants: make(map[domain.ParticipantID]*domain.Participant),
		socks:        make(map[domain.ParticipantID]core.SignalConnection),
	}
}

// Register binds a socket to a participant, creating the participant with
// default state if this identity is not yet known. A reconnect under the same
// client token lands on a fresh participant because Remove ran at disconnect.
func (r *Registry) Register(conn domain.ConnID, pid domain.ParticipantID, sock core.SignalConnection) *domain.Participant {
	p, ok := r.participants[pid]
	if !ok {
		p = domain.NewParticipant(pid, conn)
		r.participants[pid] = p
		log.Info().Str("module", "app.registry").Str("pid", string(pid)).Msg("created participant")
	}
	p.Conn = conn
	r.conns[conn] = pid
	r.socks[pid] = sock
	return p
}

// Resolve maps a connection handle to its participant id.
func (r *Registry) Resolve(conn domain.ConnID) (domain.ParticipantID, error) {
	pid, ok := r.conns[conn]
	if !ok {
		return "", ErrUnknownConnection
	}
	return pid, nil
}

func (r *Registry) Get(pid domain.ParticipantID) (*domain.Participant, bool) {
	p, ok := r.participants[pid]
	return p, ok
}

// Sock returns the live outbound connection for a participant, if any.
func (r *Registry) Sock(pid domain.ParticipantID) (core.SignalConnection, bool) {
	s, ok := r.socks[pid]
	return s, ok
}

// UpdatePosition mutates position and animation in place. Participants that
// have not joined a room yet are left untouched and the update reports no room.
func (r *Registry) UpdatePosition(pid domain.ParticipantID, pos domain.Position, animation string) (domain.RoomID, error) {
	p, ok := r.participants[pid]
	if !ok {
		return "", ErrUnknownParticipant
	}
	if p.Room == "" {
		return "", nil
	}
	p.Position = pos
	if animation != "" {
		p.Animation = animation
	}
	return p.Room, nil
}

// Remove deletes the participant and its bindings, returning the room it was
// last in so the caller can run membership and proximity cleanup. Removing an
// already-removed participant is a no-op.
func (r *Registry) Remove(pid domain.ParticipantID) (domain.RoomID, bool) {
	p, ok := r.participants[pid]
	if !ok {
		return "", false
	}
	room := p.Room
	delete(r.conns, p.Conn)
	delete(r.socks, pid)
	delete(r.participants, pid)
	log.Info().Str("module", "app.registry").Str("pid", string(pid)).Msg("removed participant")
	return room, true
}

// Unbind drops a connection handle without touching participant state. Used
// when a stale socket closes after the same identity already reconnected.
func (r *Registry) Unbind(conn domain.ConnID) {
	delete(r.conns, conn)
}

// Snapshot builds the client-facing view of a participant.
func (r *Registry) Snapshot(pid domain.ParticipantID) (core.MemberState, bool) {
	p, ok := r.participants[pid]
	if !ok {
		return core.MemberState{}, false
	}
	return core.MemberState{
		ID:        p.ID,
		Position:  p.Position,
		Animation: p.Animation,
		Name:      p.Name,
		Room:      p.Room,
	}, true
}

func (r *Registry) Count() int {
	return len(r.participants)
}
