package http

import (
	"encoding/json"
	"fmt"

	"github.com/coder/websocket"

	"github.com/parlor-chat/parlor/internal/core"
	"github.com/parlor-chat/parlor/internal/proto"
)

// inboundToCommand decodes one inbound frame. A nil command with a nil error
// means the frame carried an unrecognized event kind and is ignored.
func inboundToCommand(typ websocket.MessageType, data []byte) (*core.Command, error) {
	var inbound proto.Inbound
	if err := json.Unmarshal(data, &inbound); err != nil {
		return nil, fmt.Errorf("decode inbound envelope: %w", err)
	}

	switch inbound.Type {
	case proto.InboundTypePing:
		if inbound.User.Name == "" {
			return nil, fmt.Errorf("ping: user name is required")
		}
		return &core.Command{Kind: core.CommandPing, Name: inbound.User.Name}, nil
	case proto.InboundTypeJoin:
		if inbound.User.Name == "" {
			return nil, fmt.Errorf("join: user name is required")
		}
		return &core.Command{Kind: core.CommandJoin, Name: inbound.User.Name}, nil
	case proto.InboundTypeExit:
		if inbound.User.Name == "" {
			return nil, fmt.Errorf("exit: user name is required")
		}
		return &core.Command{Kind: core.CommandExit, Name: inbound.User.Name}, nil
	case proto.InboundTypeSend:
		// Relayed verbatim: the original frame, including its framing.
		return &core.Command{
			Kind: core.CommandSend,
			Frame: core.Frame{
				Binary: typ == websocket.MessageBinary,
				Data:   data,
			},
		}, nil
	case proto.InboundTypeClear:
		return &core.Command{Kind: core.CommandClear}, nil
	default:
		return nil, nil
	}
}

func outboundFromEvent(event *core.Event) (websocket.MessageType, []byte, error) {
	switch event.Kind {
	case core.EventHistory:
		messages := event.Messages
		if messages == nil {
			messages = []json.RawMessage{}
		}
		data, err := json.Marshal(proto.HistoryEvent{
			Type: proto.OutboundTypeHistory,
			Data: messages,
		})
		return websocket.MessageText, data, err
	case core.EventPresence:
		// The presence snapshot goes out as a bare array.
		users := make([]proto.PresenceUser, 0, len(event.Participants))
		for _, p := range event.Participants {
			users = append(users, proto.PresenceUser{ID: p.ID, Name: p.Name})
		}
		data, err := json.Marshal(users)
		return websocket.MessageText, data, err
	case core.EventRelay:
		typ := websocket.MessageText
		if event.Frame.Binary {
			typ = websocket.MessageBinary
		}
		return typ, event.Frame.Data, nil
	default:
		return websocket.MessageText, nil, fmt.Errorf("unknown event kind %d", event.Kind)
	}
}
