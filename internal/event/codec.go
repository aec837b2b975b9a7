package event

import (
	"encoding/json"
	"fmt"
)

// ErrUnknownType wraps the tag of an event the protocol does not know.
type ErrUnknownType struct {
	Tag Type
}

func (e ErrUnknownType) Error() string {
	return fmt.Sprintf("unknown event type %q", string(e.Tag))
}

// Unmarshal decodes a client frame into its concrete Inbound variant.
func Unmarshal(data []byte) (Inbound, error) {
	var head struct {
		Type Type `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, fmt.Errorf("decode envelope: %w", err)
	}

	var e Inbound
	switch head.Type {
	case TypeJoinRoom:
		e = &JoinRoom{}
	case TypeApproveUser:
		e = &ApproveUser{}
	case TypeRejectUser:
		e = &RejectUser{}
	case TypeSendingSignal:
		e = &SendingSignal{}
	case TypeReturningSignal:
		e = &ReturningSignal{}
	case TypeChatMessage:
		e = &ChatMessage{}
	case TypeFileShare:
		e = &FileShare{}
	case TypeWhiteboardDraw:
		e = &WhiteboardDraw{}
	case TypeWhiteboardClear:
		e = &WhiteboardClear{}
	case TypeCaptionUpdate:
		e = &CaptionUpdate{}
	case TypeHostMuteUser:
		e = &HostMuteUser{}
	case TypeRemoveUser:
		e = &RemoveUser{}
	default:
		return nil, ErrUnknownType{Tag: head.Type}
	}
	if err := json.Unmarshal(data, e); err != nil {
		return nil, fmt.Errorf("decode %s: %w", head.Type, err)
	}
	return e, nil
}

// Marshal encodes an outbound event with its type tag spliced into the
// same flat object, e.g. {"type":"joined-room","roomId":"r","isHost":true}.
func Marshal(e Outbound) ([]byte, error) {
	payload, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", e.EventType(), err)
	}
	tag, err := json.Marshal(struct {
		Type Type `json:"type"`
	}{e.EventType()})
	if err != nil {
		return nil, err
	}
	if len(payload) <= 2 { // "{}" — tag-only event
		return tag, nil
	}
	out := append(tag[:len(tag)-1], ',')
	return append(out, payload[1:]...), nil
}
