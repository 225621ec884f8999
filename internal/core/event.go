package core

// EventKind is a notification the core emits to connected clients.
type EventKind int

const (
	// EventChatMessage carries a chat or system entry for the room.
	EventChatMessage EventKind = iota
	// EventPrivateMessage carries a direct message to one client.
	EventPrivateMessage
	// EventChatHistory delivers the retained log to a client on connect.
	EventChatHistory
	// EventUpdateUsers delivers the current roster after presence changes.
	EventUpdateUsers
	// EventPinnedMessage carries the pinned text; empty text clears the pin.
	EventPinnedMessage
	// EventTyping relays a typing indicator to other clients.
	EventTyping
	// EventTempDisable announces that ordinary chat is blocked room-wide.
	EventTempDisable
	// EventTempDisableOff announces that ordinary chat is allowed again.
	EventTempDisableOff
	// EventKicked tells one client it has been barred from sending.
	EventKicked
	// EventClearHistory tells clients to drop their rendered log.
	EventClearHistory
	// EventShutdown announces an imminent server restart.
	EventShutdown
)

// RosterEntry is one user as presented to clients.
type RosterEntry struct {
	Username string `json:"username"`
	Color    string `json:"color"`
	Avatar   string `json:"avatar"`
}

// TypingInfo relays who toggled their typing state.
type TypingInfo struct {
	User     string `json:"user"`
	IsTyping bool   `json:"is_typing"`
}

// Event is sent to clients to describe what happened in the room.
type Event struct {
	Kind     EventKind
	Message  *Message
	Messages []Message
	Roster   []RosterEntry
	Text     string
	Typing   *TypingInfo
}
