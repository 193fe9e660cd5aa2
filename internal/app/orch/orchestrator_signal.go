package orch

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/askarin/proxima/internal/core"
	"github.com/askarin/proxima/internal/domain"
)

// Signal relays one handshake message of the given kind (core.EvSignalOffer,
// core.EvSignalAnswer or core.EvSignalCandidate). Offers require the sender
// to be in a room, since their nearby fallback is only meaningful there;
// answers and candidates pass through unconditionally. The payload is never
// inspected.
func (o *Orchestrator) Signal(conn domain.ConnID, kind string, payload json.RawMessage, target domain.ParticipantID) {
	o.mu.Lock()
	defer o.mu.Unlock()

	pid, err := o.Registry.Resolve(conn)
	if err != nil {
		log.Warn().Str("module", "orch").Str("conn", string(conn)).Str("kind", kind).Msg("signal from unknown connection")
		return
	}
	if len(payload) == 0 {
		return
	}
	if kind == core.EvSignalOffer {
		p, ok := o.Registry.Get(pid)
		if !ok || p.Room == "" {
			return
		}
	}
	o.Relay.Relay(kind, pid, payload, target)
}
