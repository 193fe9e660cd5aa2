package signal

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/askarin/proxima/internal/domain"
	"github.com/askarin/proxima/internal/metrics"
)

func (ctl *SignalWSController) handlePositionUpdate(connID domain.ConnID, data []byte) {
	var p positionPayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Str("conn", string(connID)).Msg("bad position payload")
		return
	}
	if p.Position == nil {
		log.Warn().Str("module", "signal").Str("conn", string(connID)).Msg("position update without position, dropped")
		return
	}
	ctl.Orch.UpdatePosition(connID, *p.Position, p.Animation)
}

func (ctl *SignalWSController) handleBinary(connID domain.ConnID, data []byte) {
	p, err := decodeBinaryPosition(data)
	if err != nil {
		log.Warn().Err(err).Str("module", "signal").Str("conn", string(connID)).Msg("bad binary frame")
		return
	}
	if p.Position == nil {
		return
	}
	metrics.EventsIn.WithLabelValues("position-update").Inc()
	ctl.Orch.UpdatePosition(connID, *p.Position, p.Animation)
}
