package core

import (
	"encoding/json"

	"github.com/askarin/proxima/internal/domain"
)

// Outbound event types. Inbound types share the signal-* and chat-message names.
const (
	EvInit             = "init"
	EvRoomMembers      = "room-members"
	EvMemberJoined     = "member-joined"
	EvMemberUpdated    = "member-updated"
	EvMemberLeft       = "member-left"
	EvProximityEntered = "proximity-entered"
	EvProximityLeft    = "proximity-left"
	EvChatMessage      = "chat-message"
	EvSignalOffer      = "signal-offer"
	EvSignalAnswer     = "signal-answer"
	EvSignalCandidate  = "signal-candidate"
	EvPong             = "pong"
)

type InitEvent struct {
	Type          string               `json:"type"`
	ParticipantID domain.ParticipantID `json:"participantId"`
}

// RoomMembersEvent is the snapshot a joiner receives: every other member's
// full state, current positions included. Nearby relations are not part of the
// snapshot; the joiner's own proximity recompute produces them.
type RoomMembersEvent struct {
	Type    string        `json:"type"`
	Members []MemberState `json:"members"`
	Room    domain.RoomID `json:"roomId"`
}

type MemberJoinedEvent struct {
	Type   string        `json:"type"`
	Member MemberState   `json:"member"`
	Room   domain.RoomID `json:"roomId"`
}

type MemberUpdatedEvent struct {
	Type          string               `json:"type"`
	ParticipantID domain.ParticipantID `json:"participantId"`
	Position      domain.Position      `json:"position"`
	Animation     string               `json:"animation"`
	Room          domain.RoomID        `json:"roomId"`
}

type MemberLeftEvent struct {
	Type          string               `json:"type"`
	ParticipantID domain.ParticipantID `json:"participantId"`
}

type ProximityEnteredEvent struct {
	Type          string               `json:"type"`
	ParticipantID domain.ParticipantID `json:"participantId"`
	Position      domain.Position      `json:"position"`
}

type ProximityLeftEvent struct {
	Type          string               `json:"type"`
	ParticipantID domain.ParticipantID `json:"participantId"`
}

type ChatEvent struct {
	Type      string               `json:"type"`
	From      domain.ParticipantID `json:"from"`
	Name      string               `json:"name"`
	Message   string               `json:"message"`
	Timestamp int64                `json:"timestamp"` // unix millis
}

// SignalEvent carries one relayed handshake message. Exactly one of Offer,
// Answer or Candidate is set, matching Type; the body is opaque to the server.
type SignalEvent struct {
	Type      string               `json:"type"`
	From      domain.ParticipantID `json:"from"`
	Offer     json.RawMessage      `json:"offer,omitempty"`
	Answer    json.RawMessage      `json:"answer,omitempty"`
	Candidate json.RawMessage      `json:"candidate,omitempty"`
}

// NewSignalEvent routes the opaque payload into the field matching kind.
// Unknown kinds fall back to the offer slot; callers validate kind upstream.
func NewSignalEvent(kind string, from domain.ParticipantID, payload json.RawMessage) SignalEvent {
	ev := SignalEvent{Type: kind, From: from}
	switch kind {
	case EvSignalAnswer:
		ev.Answer = payload
	case EvSignalCandidate:
		ev.Candidate = payload
	default:
		ev.Offer = payload
	}
	return ev
}
