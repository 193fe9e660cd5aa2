package app

import (
	"github.com/rs/zerolog/log"

	"github.com/askarin/proxima/internal/core"
	"github.com/askarin/proxima/internal/domain"
	"github.com/askarin/proxima/internal/metrics"
)

// DefaultProximityThreshold is the distance, in world units, at or under
// which two participants are considered nearby.
const DefaultProximityThreshold = 200.0

// ProximityEngine maintains the symmetric nearby relation between room
// members and emits proximity-entered / proximity-left to both sides of every
// transition. Comparison is <= threshold for entry and > threshold for exit,
// so a pair exactly at the threshold counts as nearby.
type ProximityEngine struct {
	reg       *Registry
	rooms     *RoomManager
	bcast     *Broadcaster
	threshold float64
}

func NewProximityEngine(reg *Registry, rooms *RoomManager, bcast *Broadcaster, threshold float64) *ProximityEngine {
	if threshold <= 0 {
		threshold = DefaultProximityThreshold
	}
	return &ProximityEngine{reg: reg, rooms: rooms, bcast: bcast, threshold: threshold}
}

func (e *ProximityEngine) Threshold() float64 { return e.threshold }

// Recompute re-evaluates the moved participant against every other member of
// its room. Pairwise O(room size); rooms are small co-located sessions, so no
// spatial index is kept.
func (e *ProximityEngine) Recompute(roomID domain.RoomID, movedID domain.ParticipantID) {
	moved, ok := e.reg.Get(movedID)
	if !ok || !e.rooms.Exists(roomID) {
		return
	}
	for _, otherID := range e.rooms.Members(roomID) {
		if otherID == movedID {
			continue
		}
		other, ok := e.reg.Get(otherID)
		if !ok {
			continue
		}
		dist := moved.Position.DistanceTo(other.Position)
		_, nearby := moved.Nearby[otherID]
		switch {
		case dist <= e.threshold && !nearby:
			e.enter(moved, other)
		case dist > e.threshold && nearby:
			e.exit(moved, other)
		}
	}
}

// Teardown clears every nearby relation of a departing participant, sending
// exactly one proximity-left to each former partner. The departing side gets
// no notification; it is already gone.
func (e *ProximityEngine) Teardown(p *domain.Participant) {
	for otherID := range p.Nearby {
		other, ok := e.reg.Get(otherID)
		if !ok {
			continue
		}
		delete(other.Nearby, p.ID)
		metrics.ProximityTransitions.WithLabelValues("left").Inc()
		e.bcast.EmitToParticipant(otherID, core.ProximityLeftEvent{
			Type:          core.EvProximityLeft,
			ParticipantID: p.ID,
		})
	}
	p.ResetNearby()
}

func (e *ProximityEngine) enter(a, b *domain.Participant) {
	a.Nearby[b.ID] = struct{}{}
	b.Nearby[a.ID] = struct{}{}
	metrics.ProximityTransitions.WithLabelValues("entered").Inc()
	log.Debug().Str("module", "app.proximity").Str("a", string(a.ID)).Str("b", string(b.ID)).Msg("entered proximity")
	e.bcast.EmitToParticipant(a.ID, core.ProximityEnteredEvent{
		Type:          core.EvProximityEntered,
		ParticipantID: b.ID,
		Position:      b.Position,
	})
	e.bcast.EmitToParticipant(b.ID, core.ProximityEnteredEvent{
		Type:          core.EvProximityEntered,
		ParticipantID: a.ID,
		Position:      a.Position,
	})
}

func (e *ProximityEngine) exit(a, b *domain.Participant) {
	delete(a.Nearby, b.ID)
	delete(b.Nearby, a.ID)
	metrics.ProximityTransitions.WithLabelValues("left").Inc()
	log.Debug().Str("module", "app.proximity").Str("a", string(a.ID)).Str("b", string(b.ID)).Msg("left proximity")
	e.bcast.EmitToParticipant(a.ID, core.ProximityLeftEvent{
		Type:          core.EvProximityLeft,
		ParticipantID: b.ID,
	})
	e.bcast.EmitToParticipant(b.ID, core.ProximityLeftEvent{
		Type:          core.EvProximityLeft,
		ParticipantID: a.ID,
	})
}
