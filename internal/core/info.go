package core

import "huddle/internal/domain"

// RoomInfo is a read-only view for the REST API. The password itself is
// never serialized, only whether one is set.
type RoomInfo struct {
	ID          domain.RoomID `json:"id"`
	MemberCount int           `json:"memberCount"`
	LobbyCount  int           `json:"lobbyCount"`
	Locked      bool          `json:"locked"`
}

func (c *Coordinator) List() []RoomInfo {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]RoomInfo, 0, len(c.rooms))
	for id, r := range c.rooms {
		out = append(out, RoomInfo{
			ID:          id,
			MemberCount: len(r.members),
			LobbyCount:  len(r.lobby),
			Locked:      r.password != "",
		})
	}
	return out
}
