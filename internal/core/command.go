package core

// CommandKind describes what an inbound client event requests.
type CommandKind int

const (
	// CommandJoin starts the join handshake with a requested identity.
	CommandJoin CommandKind = iota
	// CommandChat submits a chat message or text-encoded admin command.
	CommandChat
	// CommandPrivate sends a direct message to a named user.
	CommandPrivate
	// CommandTyping toggles the sender's typing indicator.
	CommandTyping
	// CommandRename changes the sender's identity.
	CommandRename
	// CommandActivity reports the sender's idle state.
	CommandActivity
)

// Command represents an action requested by a client. Fields are used
// according to Kind.
type Command struct {
	Kind      CommandKind
	Name      string
	Color     string
	Avatar    string
	Text      string
	Recipient string
	IsTyping  bool
	Idle      bool
}
