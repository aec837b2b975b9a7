package core

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"huddle/internal/domain"
	"huddle/internal/event"
)

const (
	msgBadPassword  = "Incorrect room password."
	msgHostRejected = "Host rejected your request."
	msgLobbyWait    = "Waiting for host to admit you..."
)

// room is the server-side state of one meeting. A session id appears in
// at most one of members/lobby; hostID is always a members key and never
// changes for the room's lifetime.
type room struct {
	password string // empty means open room
	hostID   domain.SessionID
	members  map[domain.SessionID]domain.Member
	lobby    map[domain.SessionID]domain.LobbyEntry
}

// Coordinator owns the room store and runs every inbound event to
// completion under one mutex, so each mutation sequence is atomic and
// clients observe membership changes in arrival order.
type Coordinator struct {
	mu      sync.Mutex
	rooms   map[domain.RoomID]*room
	reg     *Registry
	limiter *JoinLimiter
	now     func() time.Time
}

const (
	joinLimit    = 5
	joinInterval = 10 * time.Second
)

func NewCoordinator(reg *Registry) *Coordinator {
	return &Coordinator{
		rooms:   make(map[domain.RoomID]*room),
		reg:     reg,
		limiter: NewJoinLimiter(joinLimit, joinInterval),
		now:     time.Now,
	}
}

// Connect registers a fresh session's transport handle.
func (c *Coordinator) Connect(sid domain.SessionID, conn SignalConnection) {
	c.reg.Bind(sid, conn)
}

// Dispatch routes one decoded client event. The switch is exhaustive
// over the inbound variants.
func (c *Coordinator) Dispatch(sid domain.SessionID, e event.Inbound) {
	switch m := e.(type) {
	case *event.JoinRoom:
		c.join(sid, m)
	case *event.ApproveUser:
		c.approve(sid, m)
	case *event.RejectUser:
		c.reject(sid, m)
	case *event.SendingSignal:
		c.relayOffer(m)
	case *event.ReturningSignal:
		c.relayAnswer(sid, m)
	case *event.ChatMessage:
		c.chat(sid, m)
	case *event.FileShare:
		c.shareFile(sid, m)
	case *event.WhiteboardDraw:
		c.draw(sid, m)
	case *event.WhiteboardClear:
		c.clearBoard(sid, m)
	case *event.CaptionUpdate:
		c.caption(sid, m)
	case *event.HostMuteUser:
		c.forceMute(sid, m)
	case *event.RemoveUser:
		c.removeUser(sid, m)
	}
}

// join admits the first session for an unknown room id as its host;
// later sessions are password-checked and queued in the lobby.
func (c *Coordinator) join(sid domain.SessionID, e *event.JoinRoom) {
	if e.RoomID == "" {
		return
	}
	if !c.limiter.Allow(sid) {
		log.Warn().Str("module", "core").Str("sid", string(sid)).Msg("join rate limited")
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	// A session is active in at most one room. Re-sending join while
	// waiting in the same room's lobby just refreshes the entry.
	for id, r := range c.rooms {
		if _, ok := r.members[sid]; ok {
			return
		}
		if _, ok := r.lobby[sid]; ok && id != e.RoomID {
			return
		}
	}

	r, ok := c.rooms[e.RoomID]
	if !ok {
		r = &room{
			password: e.Password,
			hostID:   sid,
			members:  make(map[domain.SessionID]domain.Member),
			lobby:    make(map[domain.SessionID]domain.LobbyEntry),
		}
		r.members[sid] = *domain.NewMember(e.Username, true)
		c.rooms[e.RoomID] = r

		c.send(sid, event.JoinedRoom{RoomID: e.RoomID, IsHost: true})
		c.send(sid, event.AllUsers{Users: []domain.SessionID{}})
		c.broadcastParticipants(r)
		log.Info().Str("module", "core").Str("room", string(e.RoomID)).Str("sid", string(sid)).Msg("room created")
		return
	}

	if r.password != "" && r.password != e.Password {
		c.send(sid, event.JoinError{Message: msgBadPassword})
		return
	}

	r.lobby[sid] = domain.LobbyEntry{Name: domain.DisplayName(e.Username, false)}
	c.send(sid, event.LobbyWait{Message: msgLobbyWait})
	c.send(r.hostID, event.LobbyUpdate{RoomID: e.RoomID, Lobby: r.lobby})
	log.Info().Str("module", "core").Str("room", string(e.RoomID)).Str("sid", string(sid)).Msg("queued in lobby")
}

// approve moves a waiting session into full membership. The peer list is
// sent to the target before anyone can address it, so the joiner has its
// peer-connection objects ready when offers arrive.
func (c *Coordinator) approve(sid domain.SessionID, e *event.ApproveUser) {
	c.mu.Lock()
	defer c.mu.Unlock()

	r, ok := c.rooms[e.RoomID]
	if !ok || r.hostID != sid {
		return
	}
	entry, ok := r.lobby[e.UserID]
	if !ok {
		return
	}

	delete(r.lobby, e.UserID)
	r.members[e.UserID] = domain.Member{Name: entry.Name, IsHost: false}

	c.send(e.UserID, event.JoinedRoom{RoomID: e.RoomID, IsHost: false})
	peers := lo.Without(lo.Keys(r.members), e.UserID)
	c.send(e.UserID, event.AllUsers{Users: peers})

	c.send(r.hostID, event.LobbyUpdate{RoomID: e.RoomID, Lobby: r.lobby})
	c.broadcastParticipants(r)
	log.Info().Str("module", "core").Str("room", string(e.RoomID)).Str("sid", string(e.UserID)).Msg("lobby entry approved")
}

// reject drops a waiting session and force-closes its transport after
// the rejection notice goes out. Membership is untouched.
func (c *Coordinator) reject(sid domain.SessionID, e *event.RejectUser) {
	c.mu.Lock()
	defer c.mu.Unlock()

	r, ok := c.rooms[e.RoomID]
	if !ok || r.hostID != sid {
		return
	}
	if _, ok := r.lobby[e.UserID]; !ok {
		return
	}

	delete(r.lobby, e.UserID)
	c.send(e.UserID, event.JoinError{Message: msgHostRejected})
	c.reg.Kick(e.UserID)
	c.send(r.hostID, event.LobbyUpdate{RoomID: e.RoomID, Lobby: r.lobby})
	log.Info().Str("module", "core").Str("room", string(e.RoomID)).Str("sid", string(e.UserID)).Msg("lobby entry rejected")
}

// relayOffer forwards an opaque handshake payload to the target session.
// Admission already scoped the peer set; the relay adds no checks.
func (c *Coordinator) relayOffer(e *event.SendingSignal) {
	c.send(e.UserToSignal, event.UserJoined{Signal: e.Signal, CallerID: e.CallerID})
}

func (c *Coordinator) relayAnswer(sid domain.SessionID, e *event.ReturningSignal) {
	c.send(e.CallerID, event.ReturnedSignal{Signal: e.Signal, ID: sid})
}

func (c *Coordinator) chat(sid domain.SessionID, e *event.ChatMessage) {
	c.mu.Lock()
	defer c.mu.Unlock()

	r, ok := c.rooms[e.RoomID]
	if !ok {
		return
	}
	m, ok := r.members[sid]
	if !ok {
		return
	}
	c.broadcastAll(r, event.ChatBroadcast{
		From:    m.Name,
		Message: e.Message,
		Time:    c.now().UTC().Format(time.RFC3339),
	})
}

func (c *Coordinator) shareFile(sid domain.SessionID, e *event.FileShare) {
	c.mu.Lock()
	defer c.mu.Unlock()

	r, ok := c.rooms[e.RoomID]
	if !ok {
		return
	}
	m, ok := r.members[sid]
	if !ok {
		return
	}
	c.broadcastAll(r, event.FileBroadcast{
		From:        m.Name,
		FileName:    e.FileName,
		FileDataURL: e.FileDataURL,
		MimeType:    e.MimeType,
		Time:        c.now().UTC().Format(time.RFC3339),
	})
}

// draw relays a stroke to everyone else in the room. The sender is not
// required to be a member, only the room group receives it.
func (c *Coordinator) draw(sid domain.SessionID, e *event.WhiteboardDraw) {
	c.mu.Lock()
	defer c.mu.Unlock()

	r, ok := c.rooms[e.RoomID]
	if !ok {
		return
	}
	c.broadcastExcept(r, sid, event.DrawBroadcast{Line: e.Line})
}

func (c *Coordinator) clearBoard(sid domain.SessionID, e *event.WhiteboardClear) {
	c.mu.Lock()
	defer c.mu.Unlock()

	r, ok := c.rooms[e.RoomID]
	if !ok {
		return
	}
	c.broadcastExcept(r, sid, event.ClearBroadcast{})
}

func (c *Coordinator) caption(sid domain.SessionID, e *event.CaptionUpdate) {
	c.mu.Lock()
	defer c.mu.Unlock()

	r, ok := c.rooms[e.RoomID]
	if !ok {
		return
	}
	m, ok := r.members[sid]
	if !ok {
		return
	}
	c.broadcastExcept(r, sid, event.CaptionBroadcast{From: m.Name, Text: e.Text})
}

// forceMute forwards a mute instruction to the target's own media layer.
// The server keeps no mute state.
func (c *Coordinator) forceMute(sid domain.SessionID, e *event.HostMuteUser) {
	c.mu.Lock()
	defer c.mu.Unlock()

	r, ok := c.rooms[e.RoomID]
	if !ok || r.hostID != sid {
		return
	}
	c.send(e.UserID, event.ForceMute{Kind: e.Kind})
}

func (c *Coordinator) removeUser(sid domain.SessionID, e *event.RemoveUser) {
	c.mu.Lock()
	defer c.mu.Unlock()

	r, ok := c.rooms[e.RoomID]
	if !ok || r.hostID != sid {
		return
	}
	c.send(e.UserID, event.RemovedByHost{})
	c.reg.Kick(e.UserID)
	delete(r.members, e.UserID)
	c.broadcastParticipants(r)
	log.Info().Str("module", "core").Str("room", string(e.RoomID)).Str("sid", string(e.UserID)).Msg("removed by host")
}

// Disconnect reconciles a transport loss: the session leaves every room
// it is in, and a departing host tears its room down entirely.
func (c *Coordinator) Disconnect(sid domain.SessionID) {
	c.mu.Lock()
	for id, r := range c.rooms {
		changed := false
		if _, ok := r.members[sid]; ok {
			delete(r.members, sid)
			changed = true
			c.broadcastAll(r, event.UserLeft{SessionID: sid})

			if r.hostID == sid {
				c.broadcastAll(r, event.RoomEnded{})
				delete(c.rooms, id)
				log.Info().Str("module", "core").Str("room", string(id)).Msg("host left, room ended")
				continue
			}
		}
		if _, ok := r.lobby[sid]; ok {
			delete(r.lobby, sid)
			changed = true
		}
		if changed {
			c.broadcastParticipants(r)
		}
	}
	c.mu.Unlock()
	c.limiter.Forget(sid)
	c.reg.Unbind(sid)
}

// send marshals and pushes one event to one session. A session that
// cannot drain its queue is closed; its disconnect arrives later as a
// fresh event.
func (c *Coordinator) send(sid domain.SessionID, e event.Outbound) {
	conn, ok := c.reg.Get(sid)
	if !ok {
		return
	}
	frame, err := event.Marshal(e)
	if err != nil {
		log.Error().Err(err).Str("module", "core").Str("sid", string(sid)).Msg("marshal event")
		return
	}
	if err := conn.TrySend(Frame(frame)); err != nil {
		log.Warn().Str("module", "core").Str("sid", string(sid)).Str("event", string(e.EventType())).Msg("backpressure, closing session")
		conn.Close()
	}
}

// broadcastAll fans one event out to every member, marshaling once.
func (c *Coordinator) broadcastAll(r *room, e event.Outbound) {
	c.fanout(r, "", e)
}

func (c *Coordinator) broadcastExcept(r *room, skip domain.SessionID, e event.Outbound) {
	c.fanout(r, skip, e)
}

func (c *Coordinator) fanout(r *room, skip domain.SessionID, e event.Outbound) {
	frame, err := event.Marshal(e)
	if err != nil {
		log.Error().Err(err).Str("module", "core").Msg("marshal event")
		return
	}
	for sid := range r.members {
		if sid == skip {
			continue
		}
		conn, ok := c.reg.Get(sid)
		if !ok {
			continue
		}
		if err := conn.TrySend(Frame(frame)); err != nil {
			log.Warn().Str("module", "core").Str("sid", string(sid)).Msg("backpressure, closing session")
			conn.Close()
		}
	}
}

// broadcastParticipants republishes the membership snapshot to the whole
// room. Idempotent: clients overwrite their view.
func (c *Coordinator) broadcastParticipants(r *room) {
	c.broadcastAll(r, event.Participants{Users: r.members, HostID: r.hostID})
}
