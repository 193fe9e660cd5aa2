package app

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/askarin/proxima/internal/core"
	"github.com/askarin/proxima/internal/domain"
)

// SignalingRelay forwards offer/answer/candidate messages between
// participants. It is stateless and order-agnostic: the payload is an opaque
// blob owned by the peers, and the relay never checks that an answer was
// preceded by an offer. It only guarantees routing: explicit target when
// given and alive, otherwise fan-out to the sender's current nearby set.
type SignalingRelay struct {
	reg   *Registry
	bcast *Broadcaster
}

func NewSignalingRelay(reg *Registry, bcast *Broadcaster) *SignalingRelay {
	return &SignalingRelay{reg: reg, bcast: bcast}
}

// Relay delivers one handshake message. kind is one of the core.EvSignal*
// event types. A dead explicit target is logged and swallowed; the sender is
// never told, it abandons the handshake on its own timeout.
func (r *SignalingRelay) Relay(kind string, senderID domain.ParticipantID, payload json.RawMessage, target domain.ParticipantID) {
	ev := core.NewSignalEvent(kind, senderID, payload)

	if target != "" {
		if _, ok := r.reg.Get(target); !ok {
			log.Warn().Str("module", "app.relay").Str("kind", kind).Str("from", string(senderID)).Str("to", string(target)).Msg("target gone, dropping signal")
			return
		}
		r.bcast.EmitToParticipant(target, ev)
		log.Debug().Str("module", "app.relay").Str("kind", kind).Str("from", string(senderID)).Str("to", string(target)).Msg("relayed signal")
		return
	}

	sender, ok := r.reg.Get(senderID)
	if !ok {
		return
	}
	for otherID := range sender.Nearby {
		r.bcast.EmitToParticipant(otherID, ev)
	}
	log.Debug().Str("module", "app.relay").Str("kind", kind).Str("from", string(senderID)).Int("fanout", len(sender.Nearby)).Msg("relayed signal to nearby set")
}
