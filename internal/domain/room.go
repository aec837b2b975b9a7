package domain

type RoomID string

// Member is a session admitted into a room.
type Member struct {
	Name   string `json:"name"`
	IsHost bool   `json:"isHost"`
}

// LobbyEntry is a session waiting for the host's decision.
type LobbyEntry struct {
	Name string `json:"name"`
}

// NewMember avoids raw literals in the core and keeps construction obvious.
func NewMember(name string, isHost bool) *Member {
	return &Member{Name: DisplayName(name, isHost), IsHost: isHost}
}
