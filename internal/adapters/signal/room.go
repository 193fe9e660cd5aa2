package signal

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/askarin/proxima/internal/domain"
)

func (ctl *SignalWSController) handleJoin(connID domain.ConnID, data []byte) {
	var p joinPayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Str("conn", string(connID)).Msg("bad join payload")
		return
	}
	if p.Room == "" {
		log.Warn().Str("module", "signal").Str("conn", string(connID)).Msg("join without roomId, dropped")
		return
	}
	ctl.Orch.JoinRoom(connID, domain.RoomID(p.Room), p.Position, p.Animation, p.Name)
}
