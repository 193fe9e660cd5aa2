package app

import (
	"errors"
	"sort"

	"github.com/rs/zerolog/log"

	"github.com/askarin/proxima/internal/core"
	"github.com/askarin/proxima/internal/domain"
)

var ErrUnknownRoom = errors.New("unknown room")

// RoomManager owns room membership: room id -> set of participant ids. Rooms
// are created lazily on first join and deleted the moment they become empty,
// so an existing room is never empty. The inverse view (participant -> room)
// lives on the Participant itself; this manager keeps both in step.
type RoomManager struct {
	reg   *Registry
	rooms map[domain.RoomID]map[domain.ParticipantID]struct{}
}

func NewRoomManager(reg *Registry) *RoomManager {
	return &RoomManager{
		reg:   reg,
		rooms: make(map[domain.RoomID]map[domain.ParticipantID]struct{}),
	}
}

// Join adds the participant to roomID, creating the room if absent, and
// returns the ids of the members that were already there. The caller is
// responsible for leaving any previous room first; Join refuses to
// double-book a participant.
func (m *RoomManager) Join(pid domain.ParticipantID, roomID domain.RoomID) ([]domain.ParticipantID, error) {
	p, ok := m.reg.Get(pid)
	if !ok {
		return nil, ErrUnknownParticipant
	}
	if p.Room != "" {
		return nil, errors.New("participant already in a room")
	}

	members, ok := m.rooms[roomID]
	if !ok {
		members = make(map[domain.ParticipantID]struct{})
		m.rooms[roomID] = members
		log.Info().Str("module", "app.rooms").Str("room", string(roomID)).Msg("room created")
	}

	existing := make([]domain.ParticipantID, 0, len(members))
	for id := range members {
		existing = append(existing, id)
	}
	sort.Slice(existing, func(i, j int) bool { return existing[i] < existing[j] })

	members[pid] = struct{}{}
	p.Room = roomID
	log.Info().Str("module", "app.rooms").Str("pid", string(pid)).Str("room", string(roomID)).Int("size", len(members)).Msg("member joined")
	return existing, nil
}

// Leave removes the participant from its current room and destroys the room
// if it became empty. It returns the room left and the remaining member ids.
// Leaving while not in any room is a no-op.
func (m *RoomManager) Leave(pid domain.ParticipantID) (domain.RoomID, []domain.ParticipantID, bool) {
	p, ok := m.reg.Get(pid)
	if !ok || p.Room == "" {
		return "", nil, false
	}
	roomID := p.Room
	p.Room = ""

	members, ok := m.rooms[roomID]
	if !ok {
		return roomID, nil, true
	}
	delete(members, pid)
	if len(members) == 0 {
		delete(m.rooms, roomID)
		log.Info().Str("module", "app.rooms").Str("room", string(roomID)).Msg("room empty, removed")
		return roomID, nil, true
	}

	remaining := make([]domain.ParticipantID, 0, len(members))
	for id := range members {
		remaining = append(remaining, id)
	}
	log.Info().Str("module", "app.rooms").Str("pid", string(pid)).Str("room", string(roomID)).Int("size", len(members)).Msg("member left")
	return roomID, remaining, true
}

// Members returns the current member ids of a room, or nil if it does not exist.
func (m *RoomManager) Members(roomID domain.RoomID) []domain.ParticipantID {
	members, ok := m.rooms[roomID]
	if !ok {
		return nil
	}
	out := make([]domain.ParticipantID, 0, len(members))
	for id := range members {
		out = append(out, id)
	}
	return out
}

func (m *RoomManager) Exists(roomID domain.RoomID) bool {
	_, ok := m.rooms[roomID]
	return ok
}

func (m *RoomManager) List() []core.RoomInfo {
	out := make([]core.RoomInfo, 0, len(m.rooms))
	for id, members := range m.rooms {
		out = append(out, core.RoomInfo{ID: id, MemberCount: len(members)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (m *RoomManager) Count() int {
	return len(m.rooms)
}
