// Package orch applies inbound events to the shared room state.
//
// Every public method takes the orchestrator mutex, computes the full state
// transition plus the resulting outbound events, and dispatches them through
// the broadcaster's non-blocking sends before returning. That gives each event
// the atomic, non-interleaved application the proximity symmetry and
// membership invariants depend on; nothing suspends while the mutation is in
// progress.
package orch

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/askarin/proxima/internal/app"
	"github.com/askarin/proxima/internal/core"
	"github.com/askarin/proxima/internal/domain"
	"github.com/askarin/proxima/internal/metrics"
)

type Orchestrator struct {
	mu sync.Mutex

	Registry  *app.Registry
	Rooms     *app.RoomManager
	Proximity *app.ProximityEngine
	Relay     *app.SignalingRelay
	Bcast     *app.Broadcaster
}

func New(reg *app.Registry, rooms *app.RoomManager, prox *app.ProximityEngine, relay *app.SignalingRelay, bcast *app.Broadcaster) *Orchestrator {
	return &Orchestrator{
		Registry:  reg,
		Rooms:     rooms,
		Proximity: prox,
		Relay:     relay,
		Bcast:     bcast,
	}
}

// Connect registers a new socket under the durable participant id and sends
// the init event carrying that id back to this connection only.
func (o *Orchestrator) Connect(conn domain.ConnID, pid domain.ParticipantID, sock core.SignalConnection) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.Registry.Register(conn, pid, sock)
	metrics.ParticipantsActive.Set(float64(o.Registry.Count()))

	o.Bcast.EmitToParticipant(pid, core.InitEvent{
		Type:          core.EvInit,
		ParticipantID: pid,
	})
	log.Info().Str("module", "orch").Str("conn", string(conn)).Str("pid", string(pid)).Msg("connected")
}

// Disconnect tears the participant down: proximity partners are notified,
// room membership is cleaned up, the participant is purged. Re-delivery for an
// unknown connection is a silent no-op. A stale socket closing after the same
// identity already reconnected only unbinds that socket.
func (o *Orchestrator) Disconnect(conn domain.ConnID) {
	o.mu.Lock()
	defer o.mu.Unlock()

	pid, err := o.Registry.Resolve(conn)
	if err != nil {
		return
	}
	p, ok := o.Registry.Get(pid)
	if !ok {
		o.Registry.Unbind(conn)
		return
	}
	if p.Conn != conn {
		o.Registry.Unbind(conn)
		log.Info().Str("module", "orch").Str("conn", string(conn)).Str("pid", string(pid)).Msg("stale socket unbound")
		return
	}

	o.leaveCurrentRoom(p)
	o.Registry.Remove(pid)
	metrics.ParticipantsActive.Set(float64(o.Registry.Count()))
	metrics.RoomsActive.Set(float64(o.Rooms.Count()))
	log.Info().Str("module", "orch").Str("pid", string(pid)).Msg("disconnected")
}

// RoomList is the read side for the rooms API; it shares the event mutex so
// observers never see a half-applied membership change.
func (o *Orchestrator) RoomList() []core.RoomInfo {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.Rooms.List()
}
