// Package domain contains entities without logic, just meta-data.
package domain

type (
	// ParticipantID is the durable identity of a client. It is derived from the
	// client token, so it survives reconnects; the socket it currently speaks
	// through is a separate ConnID.
	ParticipantID string

	// ConnID identifies a single websocket. A reconnect gets a fresh one.
	ConnID string
)

const (
	DefaultAnimation = "down-idle"
	DefaultName      = "Player"
	MaxNameLen       = 36
)

// Participant is the live state of one connected client.
// Fields are mutated only from the orchestrator's serialized event handling.
type Participant struct {
	ID        ParticipantID
	Conn      ConnID
	Position  Position
	Animation string
	Room      RoomID // empty until the participant joins a room
	Name      string
	Nearby    map[ParticipantID]struct{}
}

func NewParticipant(id ParticipantID, conn ConnID) *Participant {
	return &Participant{
		ID:        id,
		Conn:      conn,
		Animation: DefaultAnimation,
		Name:      DefaultName,
		Nearby:    make(map[ParticipantID]struct{}),
	}
}

// SetName applies a display name, ignoring empty input and clipping at MaxNameLen.
func (p *Participant) SetName(name string) {
	if name == "" {
		return
	}
	if len(name) > MaxNameLen {
		name = name[:MaxNameLen]
	}
	p.Name = name
}

// ResetNearby clears the nearby set without notifications. Callers that need
// symmetric teardown go through the proximity engine instead.
func (p *Participant) ResetNearby() {
	p.Nearby = make(map[ParticipantID]struct{})
}
