package http

import (
	"encoding/json"
	"fmt"

	"github.com/clubchat/clubchat-server/internal/core"
	"github.com/clubchat/clubchat-server/internal/proto"
)

// inboundToCommand maps a wire envelope to a core command. A nil command
// with a non-nil proto error means the payload was malformed; the caller
// replies and keeps the connection.
func inboundToCommand(inbound proto.Inbound) (*core.Command, *proto.Error, error) {
	badPayload := func(err error) (*core.Command, *proto.Error, error) {
		return nil, &proto.Error{Code: "bad_payload", Msg: err.Error()}, nil
	}

	switch inbound.Type {
	case proto.InboundTypeJoin:
		var data proto.JoinData
		if err := json.Unmarshal(inbound.Data, &data); err != nil {
			return badPayload(err)
		}
		return &core.Command{Kind: core.CommandJoin, Name: data.Name, Color: data.Color, Avatar: data.Avatar}, nil, nil
	case proto.InboundTypeMsg:
		var data proto.MsgData
		if err := json.Unmarshal(inbound.Data, &data); err != nil {
			return badPayload(err)
		}
		return &core.Command{Kind: core.CommandChat, Text: data.Text}, nil, nil
	case proto.InboundTypePrivate:
		var data proto.PrivateData
		if err := json.Unmarshal(inbound.Data, &data); err != nil {
			return badPayload(err)
		}
		return &core.Command{Kind: core.CommandPrivate, Recipient: data.Recipient, Text: data.Text}, nil, nil
	case proto.InboundTypeTyping:
		var data proto.TypingData
		if err := json.Unmarshal(inbound.Data, &data); err != nil {
			return badPayload(err)
		}
		return &core.Command{Kind: core.CommandTyping, IsTyping: data.IsTyping}, nil, nil
	case proto.InboundTypeRename:
		var data proto.RenameData
		if err := json.Unmarshal(inbound.Data, &data); err != nil {
			return badPayload(err)
		}
		return &core.Command{Kind: core.CommandRename, Name: data.Name}, nil, nil
	case proto.InboundTypeActivity:
		var data proto.ActivityData
		if err := json.Unmarshal(inbound.Data, &data); err != nil {
			return badPayload(err)
		}
		return &core.Command{Kind: core.CommandActivity, Idle: data.Idle}, nil, nil
	default:
		return nil, &proto.Error{Code: "unknown_type", Msg: fmt.Sprintf("unknown inbound type %q", inbound.Type)}, nil
	}
}

// outboundFromEvent maps a core event to its wire envelope.
func outboundFromEvent(ev core.Event) proto.Outbound {
	switch ev.Kind {
	case core.EventChatHistory:
		return proto.Outbound{Type: proto.OutboundTypeChatHistory, Data: ev.Messages}
	case core.EventChatMessage:
		return proto.Outbound{Type: proto.OutboundTypeChatMessage, Data: ev.Message}
	case core.EventPrivateMessage:
		return proto.Outbound{Type: proto.OutboundTypePrivateMessage, Data: ev.Message}
	case core.EventUpdateUsers:
		return proto.Outbound{Type: proto.OutboundTypeUpdateUsers, Data: ev.Roster}
	case core.EventPinnedMessage:
		return proto.Outbound{Type: proto.OutboundTypePinnedMessage, Data: ev.Text}
	case core.EventTyping:
		return proto.Outbound{Type: proto.OutboundTypeTyping, Data: ev.Typing}
	case core.EventTempDisable:
		return proto.Outbound{Type: proto.OutboundTypeTempDisable}
	case core.EventTempDisableOff:
		return proto.Outbound{Type: proto.OutboundTypeTempDisableOff}
	case core.EventKicked:
		return proto.Outbound{Type: proto.OutboundTypeKicked}
	case core.EventClearHistory:
		return proto.Outbound{Type: proto.OutboundTypeClearHistory}
	case core.EventShutdown:
		return proto.Outbound{Type: proto.OutboundTypeShutdown}
	default:
		return proto.Outbound{Type: proto.OutboundTypeError, Error: &proto.Error{Code: "internal", Msg: "unmapped event"}}
	}
}
