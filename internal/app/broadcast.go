package app

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/askarin/proxima/internal/core"
	"github.com/askarin/proxima/internal/domain"
	"github.com/askarin/proxima/internal/metrics"
)

// Broadcaster is the single fan-out path for room-scoped events. It marshals
// once and fires non-blocking sends at each member's socket; a full send
// buffer means the frame is dropped for that member, never that event
// processing stalls.
type Broadcaster struct {
	reg   *Registry
	rooms *RoomManager
}

func NewBroadcaster(reg *Registry, rooms *RoomManager) *Broadcaster {
	return &Broadcaster{reg: reg, rooms: rooms}
}

// EmitToRoom delivers v to every member of roomID except exclude (pass "" to
// reach everyone). Emitting to a room that does not exist is a no-op.
func (b *Broadcaster) EmitToRoom(roomID domain.RoomID, v any, exclude domain.ParticipantID) {
	frame, err := marshalFrame(v)
	if err != nil {
		return
	}
	sent, dropped := 0, 0
	for _, pid := range b.rooms.Members(roomID) {
		if pid == exclude {
			continue
		}
		if b.send(pid, frame) {
			sent++
		} else {
			dropped++
		}
	}
	log.Debug().Str("module", "app.broadcast").Str("room", string(roomID)).Int("sent", sent).Int("dropped", dropped).Msg("room broadcast")
}

// EmitToParticipant delivers v to exactly one participant, silently dropping
// it if the participant is not currently connected.
func (b *Broadcaster) EmitToParticipant(pid domain.ParticipantID, v any) {
	frame, err := marshalFrame(v)
	if err != nil {
		return
	}
	b.send(pid, frame)
}

func (b *Broadcaster) send(pid domain.ParticipantID, frame core.Frame) bool {
	sock, ok := b.reg.Sock(pid)
	if !ok {
		return false
	}
	if err := sock.TrySend(frame); err != nil {
		metrics.FramesDropped.Inc()
		log.Warn().Str("module", "app.broadcast").Str("pid", string(pid)).Err(err).Msg("frame dropped")
		return false
	}
	metrics.EventsOut.Inc()
	return true
}

func marshalFrame(v any) (core.Frame, error) {
	frame, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("module", "app.broadcast").Msg("marshal event")
		return nil, err
	}
	return frame, nil
}
