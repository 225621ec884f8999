package core

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// HubConfig carries the tunables of the room loop.
type HubConfig struct {
	HistoryLimit     int
	IdleTimeout      time.Duration
	SweepInterval    time.Duration
	AdminWindow      time.Duration
	SlowModeInterval time.Duration
}

type envelope struct {
	client *Client
	cmd    Command
}

// Hub owns every piece of shared room state and serializes all access
// through a single run loop: each inbound event is processed to completion,
// side effects included, before the next one starts. Deferred admin effects
// re-enter the loop through the task channel.
type Hub struct {
	log     *zerolog.Logger
	cfg     HubConfig
	store   HistoryStore
	secrets SecretStore

	users  *Registry
	room   *RoomState
	polls  *PollEngine
	grants *Grants
	interp *Interpreter

	clients    map[string]*Client
	register   chan *Client
	unregister chan *Client
	inbound    chan envelope
	tasks      chan func()
	shutdown   chan struct{}
	done       chan struct{}

	version atomic.Uint64

	// Now is the clock, overridable in tests.
	Now func() time.Time
}

// NewHub builds the hub and loads any persisted history. store, secrets and
// isProfane may be nil for tests.
func NewHub(cfg HubConfig, logger *zerolog.Logger, store HistoryStore, secrets SecretStore, isProfane func(string) bool) *Hub {
	if cfg.HistoryLimit <= 0 {
		cfg.HistoryLimit = 500
	}
	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = 5 * time.Minute
	}
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = 5 * time.Second
	}
	if cfg.AdminWindow <= 0 {
		cfg.AdminWindow = 10 * time.Second
	}
	if cfg.SlowModeInterval <= 0 {
		cfg.SlowModeInterval = 2 * time.Second
	}

	h := &Hub{
		log:        logger,
		cfg:        cfg,
		store:      store,
		secrets:    secrets,
		users:      NewRegistry(),
		room:       NewRoomState(cfg.HistoryLimit, cfg.SlowModeInterval.Milliseconds()),
		polls:      NewPollEngine(),
		grants:     NewGrants(cfg.AdminWindow),
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		inbound:    make(chan envelope, 256),
		tasks:      make(chan func(), 64),
		shutdown:   make(chan struct{}, 1),
		done:       make(chan struct{}),
		Now:        time.Now,
	}
	h.interp = NewInterpreter(logger, h.users, h.room, h.polls, h.grants, secrets, isProfane, h, h)

	if store != nil {
		messages, err := store.Load(context.Background())
		if err != nil {
			logger.Warn().Err(err).Msg("could not load persisted chat history")
		} else {
			h.room.SetHistory(messages)
		}
	}
	return h
}

// Interpreter exposes the command interpreter, mainly for tests.
func (h *Hub) Interpreter() *Interpreter {
	return h.interp
}

// RegisterClient attaches a connection to the hub and starts pumping its
// commands into the loop. The transport must close the client's Commands
// channel when the connection ends.
func (h *Hub) RegisterClient(c *Client) {
	select {
	case h.register <- c:
	case <-h.done:
		return
	}
	go func() {
		for cmd := range c.Commands {
			select {
			case h.inbound <- envelope{client: c, cmd: cmd}:
			case <-h.done:
				return
			}
		}
	}()
}

// UnregisterClient detaches a connection. Safe to call more than once per
// connection; only the first removal emits the departure message.
func (h *Hub) UnregisterClient(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// ShutdownRequests signals when an admin restart command has completed its
// countdown; the owner should stop the process gracefully.
func (h *Hub) ShutdownRequests() <-chan struct{} {
	return h.shutdown
}

// Run drives the room loop until the context is cancelled.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	ticker := time.NewTicker(h.cfg.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case c := <-h.register:
			h.handleRegister(c)
		case c := <-h.unregister:
			h.handleUnregister(c)
		case env := <-h.inbound:
			h.dispatch(env.client, env.cmd)
		case fn := <-h.tasks:
			fn()
		case now := <-ticker.C:
			if h.users.SweepIdle(now, h.cfg.IdleTimeout) {
				h.RosterChanged()
			}
		case <-ctx.Done():
			return
		}
	}
}

func (h *Hub) handleRegister(c *Client) {
	h.clients[c.ID] = c
	h.deliver(c, Event{Kind: EventChatHistory, Messages: h.room.History()})
	if h.room.TempDisabled {
		h.deliver(c, Event{Kind: EventTempDisable})
	}
	h.log.Debug().Str("conn", c.ID).Msg("connection registered")
}

func (h *Hub) handleUnregister(c *Client) {
	if _, ok := h.clients[c.ID]; !ok {
		return
	}
	delete(h.clients, c.ID)
	h.grants.Revoke(c.ID)
	delete(h.room.Kicked, c.ID)
	if u := h.users.Remove(c.ID); u != nil {
		h.RosterChanged()
		h.interp.BroadcastSystem(fmt.Sprintf("%s has left the chat.", u.OriginalName))
		h.log.Info().Str("user", u.OriginalName).Msg("user disconnected")
	}
}

func (h *Hub) dispatch(c *Client, cmd Command) {
	switch cmd.Kind {
	case CommandJoin:
		h.handleJoin(c, cmd)
	case CommandChat:
		switch c.stage {
		case stageAwaitingPassword, stageAwaitingPasswordRetry:
			h.handlePassword(c, cmd.Text)
		case stageActive:
			h.interp.HandleChat(c.ID, cmd.Text)
		}
	case CommandPrivate:
		if c.stage == stageActive {
			h.interp.HandlePrivate(c.ID, cmd.Recipient, cmd.Text)
		}
	case CommandTyping:
		if c.stage == stageActive {
			h.interp.HandleTyping(c.ID, cmd.IsTyping)
		}
	case CommandRename:
		if c.stage == stageActive {
			h.interp.HandleRename(c.ID, cmd.Name)
		}
	case CommandActivity:
		if c.stage == stageActive {
			h.interp.HandleActivity(c.ID, cmd.Idle)
		}
	}
}

func (h *Hub) handleJoin(c *Client, cmd Command) {
	if h.room.TempDisabled {
		return // no new sessions while the room is disabled
	}
	if c.stage != stageConnected {
		return
	}
	if cmd.Name == "" {
		h.privateSystem(c.ID, "Username is required.")
		return
	}
	if cmd.Name == ReservedName {
		if h.users.ReservedHeld() {
			h.privateSystem(c.ID, fmt.Sprintf("The username %q is already in use.", ReservedName))
			return
		}
		c.stage = stageAwaitingPassword
		c.pendingName = cmd.Name
		c.pendingColor = cmd.Color
		c.pendingAvatar = cmd.Avatar
		h.privateSystem(c.ID, fmt.Sprintf("Enter password for %s:", ReservedName))
		return
	}
	h.completeJoin(c, cmd.Name, cmd.Color, cmd.Avatar)
}

func (h *Hub) handlePassword(c *Client, attempt string) {
	if h.secrets != nil && strings.TrimSpace(attempt) == h.secrets.Read() {
		h.grants.Grant(c.ID, h.Now())
		h.completeJoin(c, c.pendingName, c.pendingColor, c.pendingAvatar)
		h.log.Info().Msg("reserved identity authenticated")
		return
	}
	if c.stage == stageAwaitingPassword {
		c.stage = stageAwaitingPasswordRetry
		h.privateSystem(c.ID, "Incorrect password. Try again:")
		return
	}
	c.stage = stageDenied
	h.privateSystem(c.ID, fmt.Sprintf("Access denied for username %q.", ReservedName))
	h.log.Warn().Str("conn", c.ID).Msg("reserved identity password denied")
}

func (h *Hub) completeJoin(c *Client, name, color, avatar string) {
	unique := h.users.UniqueName(name)
	h.users.Add(c.ID, unique, color, avatar, h.Now())
	c.stage = stageActive
	h.RosterChanged()
	h.interp.BroadcastSystem(fmt.Sprintf("%s has joined the chat.", unique))
	h.log.Info().Str("user", unique).Msg("user joined")
}

func (h *Hub) privateSystem(connID, text string) {
	msg := systemMessage(text, h.Now())
	h.SendTo(connID, Event{Kind: EventChatMessage, Message: &msg})
}

func (h *Hub) deliver(c *Client, ev Event) {
	select {
	case c.Events <- ev:
	default:
		// Drop if slow consumer.
	}
}

// Broadcast sends an event to every live connection. Implements Sink.
func (h *Hub) Broadcast(ev Event) {
	h.version.Add(1)
	for _, c := range h.clients {
		h.deliver(c, ev)
	}
}

// BroadcastExcept sends an event to every connection but one. Implements Sink.
func (h *Hub) BroadcastExcept(connID string, ev Event) {
	h.version.Add(1)
	for id, c := range h.clients {
		if id == connID {
			continue
		}
		h.deliver(c, ev)
	}
}

// SendTo delivers an event to one connection; gone connections are a no-op.
// Implements Sink.
func (h *Hub) SendTo(connID string, ev Event) {
	if c, ok := h.clients[connID]; ok {
		h.deliver(c, ev)
	}
}

// RosterChanged recomputes and broadcasts the presence list. Implements Sink.
func (h *Hub) RosterChanged() {
	h.Broadcast(Event{Kind: EventUpdateUsers, Roster: h.users.Roster()})
}

// PersistHistory saves the current log, fire-and-forget. Implements Sink.
func (h *Hub) PersistHistory() {
	if h.store == nil {
		return
	}
	snapshot := h.room.History()
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := h.store.Save(ctx, snapshot); err != nil {
			h.log.Error().Err(err).Msg("could not persist chat history")
		}
	}()
}

// RequestShutdown records an admin restart request. Implements Sink.
func (h *Hub) RequestShutdown() {
	select {
	case h.shutdown <- struct{}{}:
	default:
	}
}

// After schedules fn on the hub loop once d elapses. Implements Scheduler.
func (h *Hub) After(d time.Duration, fn func()) {
	time.AfterFunc(d, func() {
		select {
		case h.tasks <- fn:
		case <-h.done:
		}
	})
}

// Do runs fn on the hub loop and waits for it, so transports can take
// consistent snapshots of room state.
func (h *Hub) Do(ctx context.Context, fn func()) error {
	ran := make(chan struct{})
	wrapped := func() {
		fn()
		close(ran)
	}
	select {
	case h.tasks <- wrapped:
	case <-h.done:
		return fmt.Errorf("hub stopped")
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case <-ran:
		return nil
	case <-h.done:
		return fmt.Errorf("hub stopped")
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Version is a monotonic change counter bumped on every broadcast; long-poll
// clients use it as a cursor.
func (h *Hub) Version() uint64 {
	return h.version.Load()
}

// HistorySnapshot returns the retained log and the current version.
func (h *Hub) HistorySnapshot(ctx context.Context) ([]Message, uint64, error) {
	var messages []Message
	err := h.Do(ctx, func() {
		messages = h.room.History()
	})
	return messages, h.Version(), err
}

// RosterSnapshot returns the current presence list.
func (h *Hub) RosterSnapshot(ctx context.Context) ([]RosterEntry, error) {
	var roster []RosterEntry
	err := h.Do(ctx, func() {
		roster = h.users.Roster()
	})
	return roster, err
}

// PinnedSnapshot returns the current pinned message, empty for none.
func (h *Hub) PinnedSnapshot(ctx context.Context) (string, error) {
	var pinned string
	err := h.Do(ctx, func() {
		pinned = h.room.Pinned
	})
	return pinned, err
}
