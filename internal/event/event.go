// Package event defines the wire protocol: one Go type per inbound and
// outbound event, discriminated by a flat "type" field on the wire.
package event

import (
	"encoding/json"

	"huddle/internal/domain"
)

type Type string

// Inbound event types (client -> server).
const (
	TypeJoinRoom        Type = "join-room"
	TypeApproveUser     Type = "approve-user"
	TypeRejectUser      Type = "reject-user"
	TypeSendingSignal   Type = "sending-signal"
	TypeReturningSignal Type = "returning-signal"
	TypeChatMessage     Type = "chat-message"
	TypeFileShare       Type = "file-share"
	TypeWhiteboardDraw  Type = "whiteboard-draw"
	TypeWhiteboardClear Type = "whiteboard-clear"
	TypeCaptionUpdate   Type = "caption-update"
	TypeHostMuteUser    Type = "host-mute-user"
	TypeRemoveUser      Type = "remove-user"
)

// Outbound event types (server -> client). Chat, file-share, whiteboard
// and caption events reuse the inbound tag on the way out.
const (
	TypeJoinedRoom       Type = "joined-room"
	TypeAllUsers         Type = "all-users"
	TypeJoinError        Type = "join-error"
	TypeLobbyWait        Type = "lobby-wait"
	TypeLobbyUpdate      Type = "lobby-update"
	TypeParticipants     Type = "participants-update"
	TypeUserJoined       Type = "user-joined"
	TypeReturnedSignal   Type = "receiving-returned-signal"
	TypeUserLeft         Type = "user-left"
	TypeRoomEnded        Type = "room-ended"
	TypeRemovedByHost    Type = "removed-by-host"
	TypeForceMute        Type = "force-mute"
)

// Signal is an opaque WebRTC handshake payload. The server never looks
// inside it.
type Signal = json.RawMessage

// Line is one whiteboard stroke segment.
type Line struct {
	X0 float64 `json:"x0"`
	Y0 float64 `json:"y0"`
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
}

// Inbound is the closed set of client-issued events.
type Inbound interface{ inbound() }

type JoinRoom struct {
	RoomID   domain.RoomID `json:"roomId"`
	Username string        `json:"username"`
	Password string        `json:"password"`
	IsHost   bool          `json:"isHost"`
}

type ApproveUser struct {
	RoomID domain.RoomID    `json:"roomId"`
	UserID domain.SessionID `json:"userId"`
}

type RejectUser struct {
	RoomID domain.RoomID    `json:"roomId"`
	UserID domain.SessionID `json:"userId"`
}

type SendingSignal struct {
	UserToSignal domain.SessionID `json:"userToSignal"`
	CallerID     domain.SessionID `json:"callerId"`
	Signal       Signal           `json:"signal"`
}

type ReturningSignal struct {
	Signal   Signal           `json:"signal"`
	CallerID domain.SessionID `json:"callerId"`
}

type ChatMessage struct {
	RoomID  domain.RoomID `json:"roomId"`
	Message string        `json:"message"`
}

type FileShare struct {
	RoomID      domain.RoomID `json:"roomId"`
	FileName    string        `json:"fileName"`
	FileDataURL string        `json:"fileDataUrl"`
	MimeType    string        `json:"mimeType"`
}

type WhiteboardDraw struct {
	RoomID domain.RoomID `json:"roomId"`
	Line   Line          `json:"line"`
}

type WhiteboardClear struct {
	RoomID domain.RoomID `json:"roomId"`
}

type CaptionUpdate struct {
	RoomID domain.RoomID `json:"roomId"`
	Text   string        `json:"text"`
}

// HostMuteUser's Kind travels as "kind" on the wire since "type" is the
// envelope discriminator.
type HostMuteUser struct {
	RoomID domain.RoomID    `json:"roomId"`
	UserID domain.SessionID `json:"userId"`
	Kind   string           `json:"kind"`
}

type RemoveUser struct {
	RoomID domain.RoomID    `json:"roomId"`
	UserID domain.SessionID `json:"userId"`
}

func (*JoinRoom) inbound()        {}
func (*ApproveUser) inbound()     {}
func (*RejectUser) inbound()      {}
func (*SendingSignal) inbound()   {}
func (*ReturningSignal) inbound() {}
func (*ChatMessage) inbound()     {}
func (*FileShare) inbound()       {}
func (*WhiteboardDraw) inbound()  {}
func (*WhiteboardClear) inbound() {}
func (*CaptionUpdate) inbound()   {}
func (*HostMuteUser) inbound()    {}
func (*RemoveUser) inbound()      {}

// Outbound is the closed set of server-issued events.
type Outbound interface{ EventType() Type }

type JoinedRoom struct {
	RoomID domain.RoomID `json:"roomId"`
	IsHost bool          `json:"isHost"`
}

type AllUsers struct {
	Users []domain.SessionID `json:"users"`
}

type JoinError struct {
	Message string `json:"message"`
}

type LobbyWait struct {
	Message string `json:"message"`
}

type LobbyUpdate struct {
	RoomID domain.RoomID                          `json:"roomId"`
	Lobby  map[domain.SessionID]domain.LobbyEntry `json:"lobby"`
}

type Participants struct {
	Users  map[domain.SessionID]domain.Member `json:"users"`
	HostID domain.SessionID                   `json:"hostId"`
}

type UserJoined struct {
	Signal   Signal           `json:"signal"`
	CallerID domain.SessionID `json:"callerId"`
}

type ReturnedSignal struct {
	Signal Signal           `json:"signal"`
	ID     domain.SessionID `json:"id"`
}

type UserLeft struct {
	SessionID domain.SessionID `json:"sessionId"`
}

type RoomEnded struct{}

type RemovedByHost struct{}

type ForceMute struct {
	Kind string `json:"kind"`
}

type ChatBroadcast struct {
	From    string `json:"from"`
	Message string `json:"message"`
	Time    string `json:"time"`
}

type FileBroadcast struct {
	From        string `json:"from"`
	FileName    string `json:"fileName"`
	FileDataURL string `json:"fileDataUrl"`
	MimeType    string `json:"mimeType"`
	Time        string `json:"time"`
}

type DrawBroadcast struct {
	Line Line `json:"line"`
}

type ClearBroadcast struct{}

type CaptionBroadcast struct {
	From string `json:"from"`
	Text string `json:"text"`
}

func (JoinedRoom) EventType() Type       { return TypeJoinedRoom }
func (AllUsers) EventType() Type         { return TypeAllUsers }
func (JoinError) EventType() Type        { return TypeJoinError }
func (LobbyWait) EventType() Type        { return TypeLobbyWait }
func (LobbyUpdate) EventType() Type      { return TypeLobbyUpdate }
func (Participants) EventType() Type     { return TypeParticipants }
func (UserJoined) EventType() Type       { return TypeUserJoined }
func (ReturnedSignal) EventType() Type   { return TypeReturnedSignal }
func (UserLeft) EventType() Type         { return TypeUserLeft }
func (RoomEnded) EventType() Type        { return TypeRoomEnded }
func (RemovedByHost) EventType() Type    { return TypeRemovedByHost }
func (ForceMute) EventType() Type        { return TypeForceMute }
func (ChatBroadcast) EventType() Type    { return TypeChatMessage }
func (FileBroadcast) EventType() Type    { return TypeFileShare }
func (DrawBroadcast) EventType() Type    { return TypeWhiteboardDraw }
func (ClearBroadcast) EventType() Type   { return TypeWhiteboardClear }
func (CaptionBroadcast) EventType() Type { return TypeCaptionUpdate }
