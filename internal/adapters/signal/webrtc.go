package signal

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/askarin/proxima/internal/core"
	"github.com/askarin/proxima/internal/domain"
)

// The three handshake kinds share one shape: an opaque body, an optional
// explicit target. Routing and preconditions live in the orchestrator; here
// we only reject frames whose body is missing.

func (ctl *SignalWSController) handleOffer(connID domain.ConnID, data []byte) {
	ctl.relay(connID, core.EvSignalOffer, data)
}

func (ctl *SignalWSController) handleAnswer(connID domain.ConnID, data []byte) {
	ctl.relay(connID, core.EvSignalAnswer, data)
}

func (ctl *SignalWSController) handleCandidate(connID domain.ConnID, data []byte) {
	ctl.relay(connID, core.EvSignalCandidate, data)
}

func (ctl *SignalWSController) relay(connID domain.ConnID, kind string, data []byte) {
	var p signalPayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Str("conn", string(connID)).Str("kind", kind).Msg("bad signal payload")
		return
	}
	body := p.body(kind)
	if len(body) == 0 {
		log.Warn().Str("module", "signal").Str("conn", string(connID)).Str("kind", kind).Msg("signal without body, dropped")
		return
	}
	ctl.Orch.Signal(connID, kind, body, domain.ParticipantID(p.To))
}
