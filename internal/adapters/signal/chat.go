package signal

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/askarin/proxima/internal/domain"
)

func (ctl *SignalWSController) handleChat(connID domain.ConnID, data []byte) {
	var p chatPayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Str("conn", string(connID)).Msg("bad chat payload")
		return
	}
	if p.Room == "" || p.Message == "" {
		log.Warn().Str("module", "signal").Str("conn", string(connID)).Msg("chat without room or message, dropped")
		return
	}
	if !ctl.chat.Allow(connID) {
		log.Warn().Str("module", "signal").Str("conn", string(connID)).Msg("chat rate limit exceeded")
		return
	}
	ctl.Orch.Chat(connID, domain.RoomID(p.Room), p.Message, p.Name)
}
