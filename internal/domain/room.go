package domain

// RoomID is a caller-supplied room name. Rooms are created on first join and
// destroyed on last leave; there is no separate room entity beyond its id and
// member set, which the room manager owns.
type RoomID string
