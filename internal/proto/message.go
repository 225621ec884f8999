package proto

import "encoding/json"

// Inbound is the envelope for messages coming from the client.
type Inbound struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

const (
	InboundTypeJoin     = "join"
	InboundTypeMsg      = "msg"
	InboundTypePrivate  = "private"
	InboundTypeTyping   = "typing"
	InboundTypeRename   = "rename"
	InboundTypeActivity = "activity"

	OutboundTypeChatHistory    = "chat_history"
	OutboundTypeChatMessage    = "chat_message"
	OutboundTypePrivateMessage = "private_message"
	OutboundTypeUpdateUsers    = "update_users"
	OutboundTypePinnedMessage  = "pinned_message"
	OutboundTypeTyping         = "typing"
	OutboundTypeTempDisable    = "temp_disable"
	OutboundTypeTempDisableOff = "temp_disable_off"
	OutboundTypeKicked         = "kicked"
	OutboundTypeClearHistory   = "clear_history"
	OutboundTypeShutdown       = "shutdown_initiated"
	OutboundTypeError          = "error"
)

// JoinData starts the join handshake.
type JoinData struct {
	Name   string `json:"name"`
	Color  string `json:"color,omitempty"`
	Avatar string `json:"avatar,omitempty"`
}

// MsgData is a chat message (or text-encoded admin command).
type MsgData struct {
	Text string `json:"text"`
}

// PrivateData is a direct message to a named user.
type PrivateData struct {
	Recipient string `json:"recipient"`
	Text      string `json:"text"`
}

// TypingData toggles the typing indicator.
type TypingData struct {
	IsTyping bool `json:"is_typing"`
}

// RenameData changes the sender's username.
type RenameData struct {
	Name string `json:"name"`
}

// ActivityData reports the client's idle state.
type ActivityData struct {
	Idle bool `json:"idle"`
}

// Outbound is the envelope for messages sent to the client.
type Outbound struct {
	Type  string `json:"type"`
	Data  any    `json:"data,omitempty"`
	Error *Error `json:"error,omitempty"`
}

// Error describes a protocol-level error response.
type Error struct {
	Code string `json:"code"`
	Msg  string `json:"msg"`
}
