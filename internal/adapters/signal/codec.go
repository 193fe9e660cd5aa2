package signal

import (
	"encoding/json"
	"errors"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/askarin/proxima/internal/domain"
)

// Inbound payloads. Text frames are JSON; the whole message unmarshals into
// the payload struct and the type field is simply ignored. Binary frames wrap
// the payload in a compact msgpack envelope, used by clients that stream
// position updates at animation-frame rate.

type joinPayload struct {
	Room      string           `json:"roomId"`
	Position  *domain.Position `json:"position"`
	Animation string           `json:"animation"`
	Name      string           `json:"displayName"`
}

type positionPayload struct {
	Position  *domain.Position `json:"position" msgpack:"position"`
	Animation string           `json:"animation" msgpack:"animation"`
}

type chatPayload struct {
	Room    string `json:"roomId"`
	Message string `json:"message"`
	Name    string `json:"displayName"`
}

type signalPayload struct {
	To        string          `json:"targetId"`
	Offer     json.RawMessage `json:"offer"`
	Answer    json.RawMessage `json:"answer"`
	Candidate json.RawMessage `json:"candidate"`
}

// body picks the payload field matching the event kind.
func (p signalPayload) body(kind string) json.RawMessage {
	switch kind {
	case "signal-answer":
		return p.Answer
	case "signal-candidate":
		return p.Candidate
	default:
		return p.Offer
	}
}

type binEnvelope struct {
	Type    string             `msgpack:"type"`
	Payload msgpack.RawMessage `msgpack:"payload"`
}

var errNotPositionFrame = errors.New("binary frame is not a position update")

// decodeBinaryPosition unwraps a msgpack envelope and decodes its payload as
// a position update. Only position updates travel in binary; anything else is
// rejected.
func decodeBinaryPosition(data []byte) (positionPayload, error) {
	var env binEnvelope
	if err := msgpack.Unmarshal(data, &env); err != nil {
		return positionPayload{}, err
	}
	if env.Type != "position-update" {
		return positionPayload{}, errNotPositionFrame
	}
	var p positionPayload
	if err := msgpack.Unmarshal(env.Payload, &p); err != nil {
		return positionPayload{}, err
	}
	return p, nil
}
