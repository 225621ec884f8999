package core

// handshakeStage tracks a connection through the join handshake.
type handshakeStage int

const (
	stageConnected handshakeStage = iota
	stageAwaitingPassword
	stageAwaitingPasswordRetry
	stageDenied
	stageActive
)

// Client is a live connection as seen by the core layer.
type Client struct {
	ID       string
	Commands chan Command
	Events   chan Event

	// handshake state, owned by the hub loop
	stage         handshakeStage
	pendingName   string
	pendingColor  string
	pendingAvatar string
}

// NewClient constructs a client with initialized channels.
func NewClient(id string) *Client {
	return &Client{
		ID:       id,
		Commands: make(chan Command, 8),
		Events:   make(chan Event, 32),
	}
}
