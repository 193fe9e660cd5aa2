package core

import "github.com/askarin/proxima/internal/domain"

// Frame is a marshaled outbound event, ready for the wire.
type Frame []byte

// SignalConnection is the outbound half of a client connection.
// Owned by the adapter; the adapter must Close() it.
// TrySend never blocks: a full send buffer drops the frame with an error.
type SignalConnection interface {
	TrySend(Frame) error
	Close()
}

// MemberState is the full read-only view of a participant, as sent to clients
// in room snapshots and join notifications.
type MemberState struct {
	ID        domain.ParticipantID `json:"id"`
	Position  domain.Position      `json:"position"`
	Animation string               `json:"animation"`
	Name      string               `json:"name"`
	Room      domain.RoomID        `json:"roomId"`
}

// RoomInfo is a read-only room summary for the rooms API.
type RoomInfo struct {
	ID          domain.RoomID `json:"id"`
	MemberCount int           `json:"member_count"`
}
