package core

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const (
	systemUser   = "Server"
	systemColor  = "#000000"
	systemAvatar = "S"

	pollStartUser   = "Poll"
	pollStartColor  = "#3498db"
	pollUpdateUser  = "Poll Update"
	pollUpdateColor = "#2ecc71"
	pollEndUser     = "Poll Ended"
	pollEndColor    = "#e74c3c"
	pinnedUser      = "Pinned Message"
	pinnedColor     = "#f39c12"

	tempDisableDelay = 2 * time.Second
	countdownTick    = time.Second
	kickDelay        = time.Second
	clearCountdown   = 3
	restartCountdown = 5
)

// OutcomeKind classifies the result of interpreting one inbound message.
type OutcomeKind int

const (
	// OutcomeNoOp means no state changed and no broadcast was produced.
	OutcomeNoOp OutcomeKind = iota
	// OutcomeRejected means the message was refused with a private reply.
	OutcomeRejected
	// OutcomeAdminReply means the command succeeded with a private reply only.
	OutcomeAdminReply
	// OutcomeBroadcast means the command produced a room-wide effect.
	OutcomeBroadcast
	// OutcomeChatAccepted means an ordinary chat message was accepted.
	OutcomeChatAccepted
)

// Outcome is the structured result of one interpreted message.
type Outcome struct {
	Kind   OutcomeKind
	Reason string
	Text   string
}

func rejected(reason string) Outcome { return Outcome{Kind: OutcomeRejected, Reason: reason} }

// Sink receives the interpreter's outbound effects. The hub implements it;
// tests substitute a recorder.
type Sink interface {
	Broadcast(ev Event)
	BroadcastExcept(connID string, ev Event)
	SendTo(connID string, ev Event)
	RosterChanged()
	PersistHistory()
	RequestShutdown()
}

// Scheduler defers a task. Implementations must run fn on the hub loop so
// deferred effects re-acquire the shared state like any other command.
type Scheduler interface {
	After(d time.Duration, fn func())
}

// SecretStore is the admin secret collaborator.
type SecretStore interface {
	Read() string
	Write(newSecret string) error
}

// Interpreter parses inbound text as chat or admin commands and applies the
// room's mutation and authorization rules. All methods must be called from
// the hub loop.
type Interpreter struct {
	log    *zerolog.Logger
	users  *Registry
	room   *RoomState
	polls  *PollEngine
	grants *Grants

	secrets   SecretStore
	isProfane func(string) bool
	sink      Sink
	sched     Scheduler

	lastMessage map[string]time.Time

	// Now is the clock, overridable in tests.
	Now func() time.Time
}

// NewInterpreter wires the interpreter to its collaborators.
func NewInterpreter(logger *zerolog.Logger, users *Registry, room *RoomState, polls *PollEngine, grants *Grants, secrets SecretStore, isProfane func(string) bool, sink Sink, sched Scheduler) *Interpreter {
	if isProfane == nil {
		isProfane = func(string) bool { return false }
	}
	return &Interpreter{
		log:         logger,
		users:       users,
		room:        room,
		polls:       polls,
		grants:      grants,
		secrets:     secrets,
		isProfane:   isProfane,
		sink:        sink,
		sched:       sched,
		lastMessage: make(map[string]time.Time),
		Now:         time.Now,
	}
}

func systemMessage(text string, now time.Time) Message {
	return Message{User: systemUser, Text: text, Color: systemColor, Avatar: systemAvatar, SentAt: now}
}

// BroadcastSystem appends a system entry to the log, persists, and fans out.
func (it *Interpreter) BroadcastSystem(text string) {
	msg := systemMessage(text, it.Now())
	it.room.Append(msg)
	it.sink.PersistHistory()
	it.sink.Broadcast(Event{Kind: EventChatMessage, Message: &msg})
}

// broadcastTransient fans out a message without persisting it.
func (it *Interpreter) broadcastTransient(user, color, text string) {
	msg := Message{User: user, Text: text, Color: color, SentAt: it.Now()}
	it.sink.Broadcast(Event{Kind: EventChatMessage, Message: &msg})
}

func (it *Interpreter) privateSystem(connID, text string) {
	msg := systemMessage(text, it.Now())
	it.sink.SendTo(connID, Event{Kind: EventChatMessage, Message: &msg})
}

// audit echoes a privileged action to the reserved-identity holder when
// someone else executed it.
func (it *Interpreter) audit(actor *User, text string) {
	if actor.OriginalName == ReservedName {
		return
	}
	if holder := it.users.Reserved(); holder != nil {
		it.privateSystem(holder.ConnID, fmt.Sprintf("Admin command executed by %s: %s", actor.OriginalName, text))
	}
}

// HandleChat interprets one inbound chat-shaped message from an active
// session. Check order is load-bearing: kicked, permanent block, the
// admin-init state machine, unauthorized prefix, temp-disable, slow mode,
// then sub-command dispatch. Slow mode and temp-disable exempt any
// admin-prefixed text, granted or not.
func (it *Interpreter) HandleChat(connID, raw string) Outcome {
	u := it.users.ByConn(connID)
	if u == nil {
		return Outcome{Kind: OutcomeNoOp}
	}
	now := it.Now()
	trimmed := strings.TrimSpace(raw)
	lower := strings.ToLower(trimmed)

	if it.room.Kicked[connID] {
		it.privateSystem(connID, "You have been kicked and cannot send messages.")
		return rejected(RejectKicked)
	}

	if lower == adminInitPhrase {
		if u.AdminBlocked {
			it.privateSystem(connID, "You are permanently blocked from becoming an admin.")
			it.log.Warn().Str("user", u.OriginalName).Msg("admin init attempted by blocked user")
			return rejected(RejectPermanentlyBlocked)
		}
		switch it.grants.Step(connID, now) {
		case StepStarted:
			it.privateSystem(connID, "Ok")
			return Outcome{Kind: OutcomeAdminReply, Text: "Ok"}
		case StepGranted:
			it.privateSystem(connID, "Temp Admin Granted")
			if holder := it.users.Reserved(); holder != nil {
				it.privateSystem(holder.ConnID, fmt.Sprintf("%s has been granted temporary admin access.", u.OriginalName))
			}
			it.log.Info().Str("user", u.OriginalName).Msg("temp admin granted")
			return Outcome{Kind: OutcomeAdminReply, Text: "Temp Admin Granted"}
		case StepAlreadyGranted:
			// already granted inside the window: treated as ordinary text below
		}
	}

	isAdminText := strings.HasPrefix(lower, adminPrefix)

	if isAdminText && !it.grants.Granted(connID) {
		it.privateSystem(connID, "You are not authorized to use admin commands.")
		it.log.Warn().Str("user", u.OriginalName).Str("text", trimmed).Msg("unauthorized admin command")
		return rejected(RejectUnauthorized)
	}

	if it.room.TempDisabled && !isAdminText {
		it.privateSystem(connID, "Admin has enabled temp chat disable. You cannot send messages.")
		return rejected(RejectChatDisabled)
	}

	if it.room.Slow.Enabled && !isAdminText {
		if last, ok := it.lastMessage[connID]; ok && now.Sub(last) < time.Duration(it.room.Slow.Interval)*time.Millisecond {
			it.privateSystem(connID, "Slow mode is enabled. Please wait.")
			return rejected(RejectSlowMode)
		}
	}
	it.lastMessage[connID] = now
	u.Touch(now)

	if strings.HasPrefix(lower, "!vote") {
		return it.handleVote(connID, lower)
	}

	if cmd, ok := parseAdmin(trimmed, lower); ok {
		return it.handleAdmin(u, cmd, now)
	}

	if it.room.FilterEnabled && it.isProfane(raw) {
		it.privateSystem(connID, "Your message was blocked due to profanity.")
		return rejected(RejectProfane)
	}

	msg := Message{User: u.DisplayName, Text: raw, Color: u.Color, Avatar: u.Avatar, SentAt: now}
	it.room.Append(msg)
	it.sink.PersistHistory()
	it.sink.Broadcast(Event{Kind: EventChatMessage, Message: &msg})
	it.log.Debug().Str("user", u.OriginalName).Msg("chat message accepted")
	return Outcome{Kind: OutcomeChatAccepted, Text: raw}
}

func (it *Interpreter) handleVote(connID, lower string) Outcome {
	if !it.polls.Active() {
		it.privateSystem(connID, "No active poll.")
		return rejected(RejectNoPoll)
	}
	choice, err := strconv.Atoi(strings.TrimSpace(strings.TrimPrefix(lower, "!vote")))
	if err != nil {
		choice = 0
	}
	counts, err := it.polls.Vote(connID, choice)
	if err != nil {
		it.privateSystem(connID, "Invalid vote. Use !vote 1 or !vote 2.")
		return rejected(RejectInvalidVote)
	}
	opts := it.polls.Options()
	it.broadcastTransient(pollUpdateUser, pollUpdateColor,
		fmt.Sprintf("Current results:\n%s: %d votes\n%s: %d votes", opts[0], counts[0], opts[1], counts[1]))
	return Outcome{Kind: OutcomeBroadcast}
}

// requireReserved rejects commands restricted to the reserved identity.
func (it *Interpreter) requireReserved(u *User, action string) bool {
	if u.OriginalName == ReservedName {
		return true
	}
	it.privateSystem(u.ConnID, fmt.Sprintf("Only %s is authorized to %s.", ReservedName, action))
	it.log.Warn().Str("user", u.OriginalName).Str("action", action).Msg("reserved-only command refused")
	return false
}

func (it *Interpreter) handleAdmin(u *User, cmd adminCommand, now time.Time) Outcome {
	switch cmd.kind {
	case adminHelp:
		return it.cmdHelp(u)
	case adminBroadcast:
		return it.cmdBroadcast(u, cmd.arg)
	case adminSlowOn:
		it.room.Slow.Enabled = true
		notice := "Admin has enabled slow mode."
		it.BroadcastSystem(notice)
		it.audit(u, notice)
		return Outcome{Kind: OutcomeBroadcast, Text: notice}
	case adminSlowOff:
		it.room.Slow.Enabled = false
		notice := "Admin has disabled slow mode."
		it.BroadcastSystem(notice)
		it.audit(u, notice)
		return Outcome{Kind: OutcomeBroadcast, Text: notice}
	case adminSlowSet:
		return it.cmdSlowSet(u, cmd.seconds)
	case adminTempDisable:
		return it.cmdTempDisable(u)
	case adminTempDisableOff:
		it.room.TempDisabled = false
		it.sink.Broadcast(Event{Kind: EventTempDisableOff})
		notice := "Admin has disabled temp chat disable."
		it.BroadcastSystem(notice)
		it.audit(u, notice)
		return Outcome{Kind: OutcomeBroadcast, Text: notice}
	case adminClearHistory:
		return it.cmdClearHistory(u)
	case adminKick:
		return it.cmdKick(u, cmd.arg)
	case adminUnkick:
		return it.cmdUnkick(u, cmd.arg)
	case adminPin:
		return it.cmdPin(u, cmd.arg)
	case adminPinOff:
		it.room.Pinned = ""
		it.sink.Broadcast(Event{Kind: EventPinnedMessage, Text: ""})
		it.audit(u, "cleared pinned message.")
		return Outcome{Kind: OutcomeBroadcast}
	case adminPollStart:
		return it.cmdPollStart(u, cmd.args)
	case adminEndPoll:
		return it.cmdEndPoll(u)
	case adminAdd:
		return it.cmdAdminAdd(u, cmd.arg, now)
	case adminDelete:
		return it.cmdAdminDelete(u, cmd.arg)
	case adminChangePassword:
		return it.cmdChangePassword(u, cmd.arg)
	case adminImpersonate:
		return it.cmdImpersonate(u, cmd.arg, cmd.args[0], now)
	case adminFilterOn:
		if !it.requireReserved(u, "enable the profanity filter") {
			return rejected(RejectUnauthorized)
		}
		it.room.FilterEnabled = true
		it.BroadcastSystem("Profanity filter has been enabled.")
		return Outcome{Kind: OutcomeBroadcast}
	case adminFilterOff:
		if !it.requireReserved(u, "disable the profanity filter") {
			return rejected(RejectUnauthorized)
		}
		it.room.FilterEnabled = false
		it.BroadcastSystem("Profanity filter has been disabled.")
		return Outcome{Kind: OutcomeBroadcast}
	case adminKickOn:
		if !it.requireReserved(u, "enable kicking") {
			return rejected(RejectUnauthorized)
		}
		it.room.KickingEnabled = true
		it.BroadcastSystem("Kick command has been enabled.")
		return Outcome{Kind: OutcomeBroadcast}
	case adminKickOff:
		if !it.requireReserved(u, "disable kicking") {
			return rejected(RejectUnauthorized)
		}
		it.room.KickingEnabled = false
		it.BroadcastSystem("Kick command has been disabled.")
		return Outcome{Kind: OutcomeBroadcast}
	case adminRestart:
		return it.cmdRestart(u)
	}
	return Outcome{Kind: OutcomeNoOp}
}

func (it *Interpreter) cmdHelp(u *User) Outcome {
	lines := []string{
		"Admin commands:",
		"server init broadcast <text>",
		"server init slowmode on|off|<seconds>",
		"server init temp disable [off]",
		"server init clear history",
		"server init kick <username> / unkick <username>",
		"server init pin <text> / pinoff",
		"server init poll <option1> <option2> / endpoll (!vote 1|2 to vote)",
		"server init admin add <username>",
		"server init restart",
	}
	if u.OriginalName == ReservedName {
		lines = append(lines,
			"server init admin delete <username>",
			"server init change password <new password>",
			"server init impersonate <username> <text>",
			"server init filter on|off",
			"server init kickon / kickoff",
		)
	}
	help := strings.Join(lines, "\n")
	it.privateSystem(u.ConnID, help)
	return Outcome{Kind: OutcomeAdminReply, Text: help}
}

func (it *Interpreter) cmdBroadcast(u *User, text string) Outcome {
	if text == "" {
		it.privateSystem(u.ConnID, "Cannot send an empty broadcast message.")
		return rejected(RejectInvalidArgument)
	}
	notice := "Admin Broadcast: " + text
	it.BroadcastSystem(notice)
	it.audit(u, notice)
	it.log.Info().Str("user", u.OriginalName).Msg("admin broadcast")
	return Outcome{Kind: OutcomeBroadcast, Text: notice}
}

func (it *Interpreter) cmdSlowSet(u *User, seconds float64) Outcome {
	if seconds <= 0 {
		it.privateSystem(u.ConnID, "Invalid slowmode time.")
		return rejected(RejectInvalidArgument)
	}
	it.room.Slow.Interval = int64(seconds * 1000)
	notice := fmt.Sprintf("Slowmode delay changed to %g seconds.", seconds)
	it.privateSystem(u.ConnID, notice)
	it.audit(u, notice)
	return Outcome{Kind: OutcomeAdminReply, Text: notice}
}

func (it *Interpreter) cmdTempDisable(u *User) Outcome {
	actorName := u.OriginalName
	it.sched.After(tempDisableDelay, func() {
		it.room.TempDisabled = true
		it.sink.Broadcast(Event{Kind: EventTempDisable})
		notice := "Admin has enabled temp chat disable."
		it.BroadcastSystem(notice)
		if actor := it.users.ByConn(u.ConnID); actor != nil {
			it.audit(actor, notice)
		}
		it.log.Info().Str("user", actorName).Msg("temp disable enabled")
	})
	return Outcome{Kind: OutcomeBroadcast, Text: "temp disable scheduled"}
}

func (it *Interpreter) cmdClearHistory(u *User) Outcome {
	actorConn := u.ConnID
	var tick func(n int)
	tick = func(n int) {
		if n > 0 {
			it.BroadcastSystem(fmt.Sprintf("Clearing chat history in %d...", n))
			it.sched.After(countdownTick, func() { tick(n - 1) })
			return
		}
		it.room.Clear()
		it.sink.PersistHistory()
		notice := "Chat history has been cleared."
		it.BroadcastSystem(notice)
		it.sink.Broadcast(Event{Kind: EventClearHistory})
		if actor := it.users.ByConn(actorConn); actor != nil {
			it.audit(actor, notice)
		}
	}
	it.log.Info().Str("user", u.OriginalName).Msg("clear history countdown started")
	tick(clearCountdown)
	return Outcome{Kind: OutcomeBroadcast}
}

func (it *Interpreter) cmdKick(u *User, targetName string) Outcome {
	if !it.room.KickingEnabled {
		it.privateSystem(u.ConnID, "The kick command is currently disabled.")
		return Outcome{Kind: OutcomeNoOp}
	}
	target := it.users.ByName(targetName)
	if target == nil {
		it.privateSystem(u.ConnID, fmt.Sprintf("Could not find user %q.", targetName))
		return rejected(RejectNotFound)
	}
	actorConn, targetConn := u.ConnID, target.ConnID
	it.sched.After(kickDelay, func() {
		target := it.users.ByConn(targetConn)
		if target == nil {
			return // disconnected before the kick fired
		}
		it.room.Kicked[targetConn] = true
		it.privateSystem(targetConn, "You were kicked by admin.")
		it.sink.SendTo(targetConn, Event{Kind: EventKicked})
		actorName := ""
		if actor := it.users.ByConn(actorConn); actor != nil {
			actorName = actor.OriginalName
		}
		notice := fmt.Sprintf("%s was kicked by %s.", target.OriginalName, actorName)
		it.BroadcastSystem(notice)
		if actor := it.users.ByConn(actorConn); actor != nil {
			it.audit(actor, notice)
		}
		it.log.Info().Str("target", target.OriginalName).Str("by", actorName).Msg("user kicked")
	})
	return Outcome{Kind: OutcomeBroadcast}
}

func (it *Interpreter) cmdUnkick(u *User, targetName string) Outcome {
	target := it.users.ByName(targetName)
	if target == nil {
		it.privateSystem(u.ConnID, fmt.Sprintf("Could not find user %q.", targetName))
		return rejected(RejectNotFound)
	}
	if !it.room.Kicked[target.ConnID] {
		it.privateSystem(u.ConnID, fmt.Sprintf("%s is not currently kicked.", target.OriginalName))
		return Outcome{Kind: OutcomeAdminReply}
	}
	delete(it.room.Kicked, target.ConnID)
	notice := fmt.Sprintf("%s has been un-kicked and can rejoin.", target.OriginalName)
	it.BroadcastSystem(notice)
	it.audit(u, notice)
	return Outcome{Kind: OutcomeBroadcast, Text: notice}
}

func (it *Interpreter) cmdPin(u *User, text string) Outcome {
	if text == "" {
		it.privateSystem(u.ConnID, "Cannot pin an empty message.")
		return rejected(RejectInvalidArgument)
	}
	it.room.Pinned = text
	it.sink.Broadcast(Event{Kind: EventPinnedMessage, Text: text})
	announcement := Message{User: pinnedUser, Text: text, Color: pinnedColor, SentAt: it.Now()}
	it.room.Append(announcement)
	it.sink.PersistHistory()
	it.sink.Broadcast(Event{Kind: EventChatMessage, Message: &announcement})
	it.audit(u, "pinned a message.")
	it.log.Info().Str("user", u.OriginalName).Msg("message pinned")
	return Outcome{Kind: OutcomeBroadcast, Text: text}
}

func (it *Interpreter) cmdPollStart(u *User, options []string) Outcome {
	if it.polls.Active() {
		it.privateSystem(u.ConnID, "A poll is already running.")
		return rejected(RejectPollActive)
	}
	if len(options) < 2 {
		it.privateSystem(u.ConnID, "Please provide two options: server init poll <option1> <option2>")
		return rejected(RejectInvalidArgument)
	}
	if err := it.polls.Start(options[0], options[1]); err != nil {
		it.privateSystem(u.ConnID, "A poll is already running.")
		return rejected(RejectPollActive)
	}
	it.broadcastTransient(pollStartUser, pollStartColor,
		fmt.Sprintf("Poll started!\nOption 1: %s\nOption 2: %s\nVote using: !vote 1 or !vote 2", options[0], options[1]))
	return Outcome{Kind: OutcomeBroadcast}
}

func (it *Interpreter) cmdEndPoll(u *User) Outcome {
	opts, counts, err := it.polls.End()
	if err != nil {
		it.privateSystem(u.ConnID, "No poll is active.")
		return rejected(RejectNoPoll)
	}
	it.broadcastTransient(pollEndUser, pollEndColor,
		fmt.Sprintf("Final results:\n%s: %d votes\n%s: %d votes", opts[0], counts[0], opts[1], counts[1]))
	return Outcome{Kind: OutcomeBroadcast}
}

func (it *Interpreter) cmdAdminAdd(u *User, targetName string, now time.Time) Outcome {
	target := it.users.ByName(targetName)
	if target == nil {
		it.privateSystem(u.ConnID, fmt.Sprintf("Could not find user %q.", targetName))
		return rejected(RejectNotFound)
	}
	it.grants.Grant(target.ConnID, now)
	it.privateSystem(u.ConnID, fmt.Sprintf("Temp admin granted to %s.", target.OriginalName))
	it.privateSystem(target.ConnID, "You have been granted temporary admin.")
	it.log.Info().Str("target", target.OriginalName).Str("by", u.OriginalName).Msg("temp admin granted via admin add")
	return Outcome{Kind: OutcomeAdminReply}
}

func (it *Interpreter) cmdAdminDelete(u *User, targetName string) Outcome {
	if !it.requireReserved(u, "delete admins") {
		return rejected(RejectUnauthorized)
	}
	target := it.users.ByName(targetName)
	if target == nil {
		it.privateSystem(u.ConnID, fmt.Sprintf("Could not find user %q.", targetName))
		return rejected(RejectNotFound)
	}
	target.AdminBlocked = true
	it.grants.Revoke(target.ConnID)
	notice := fmt.Sprintf("%s has been blocked from becoming admin.", target.OriginalName)
	it.privateSystem(u.ConnID, notice)
	it.log.Info().Str("target", target.OriginalName).Msg("admin eligibility deleted")
	return Outcome{Kind: OutcomeAdminReply, Text: notice}
}

func (it *Interpreter) cmdChangePassword(u *User, newSecret string) Outcome {
	if !it.requireReserved(u, "change the password") {
		return rejected(RejectUnauthorized)
	}
	if newSecret == "" {
		it.privateSystem(u.ConnID, "New password cannot be empty.")
		return rejected(RejectInvalidArgument)
	}
	if err := it.secrets.Write(newSecret); err != nil {
		it.log.Error().Err(err).Msg("secret rotation failed")
		it.privateSystem(u.ConnID, "Could not update the password.")
		return rejected(RejectInvalidArgument)
	}
	it.privateSystem(u.ConnID, "Login password has been updated.")
	it.log.Info().Msg("admin secret rotated")
	return Outcome{Kind: OutcomeAdminReply}
}

func (it *Interpreter) cmdImpersonate(u *User, targetName, text string, now time.Time) Outcome {
	if !it.requireReserved(u, "use the impersonate command") {
		return rejected(RejectUnauthorized)
	}
	if targetName == "" || text == "" {
		it.privateSystem(u.ConnID, "Invalid impersonate command format. Use: server init impersonate <username> <text>")
		return rejected(RejectInvalidArgument)
	}
	target := it.users.ByName(targetName)
	if target == nil {
		it.privateSystem(u.ConnID, fmt.Sprintf("Could not find user %q.", targetName))
		return rejected(RejectNotFound)
	}
	msg := Message{User: target.DisplayName, Text: text, Color: target.Color, Avatar: target.Avatar, SentAt: now}
	it.room.Append(msg)
	it.sink.PersistHistory()
	it.sink.Broadcast(Event{Kind: EventChatMessage, Message: &msg})
	it.log.Info().Str("target", target.OriginalName).Msg("impersonated message sent")
	return Outcome{Kind: OutcomeBroadcast}
}

func (it *Interpreter) cmdRestart(u *User) Outcome {
	it.sink.Broadcast(Event{Kind: EventShutdown})
	it.log.Warn().Str("user", u.OriginalName).Msg("restart initiated")
	actorConn := u.ConnID
	var tick func(n int)
	tick = func(n int) {
		if n > 0 {
			it.BroadcastSystem(fmt.Sprintf("Server restarting in %d second(s)...", n))
			it.sched.After(countdownTick, func() { tick(n - 1) })
			return
		}
		notice := "Server restarting."
		it.BroadcastSystem(notice)
		if actor := it.users.ByConn(actorConn); actor != nil {
			it.audit(actor, notice)
		}
		it.sink.RequestShutdown()
	}
	tick(restartCountdown)
	return Outcome{Kind: OutcomeBroadcast}
}

// HandlePrivate delivers a direct message to the named recipient.
func (it *Interpreter) HandlePrivate(connID, recipient, text string) Outcome {
	if it.room.Kicked[connID] {
		it.privateSystem(connID, "You have been kicked and cannot send private messages.")
		return rejected(RejectKicked)
	}
	sender := it.users.ByConn(connID)
	if sender == nil || recipient == "" {
		return Outcome{Kind: OutcomeNoOp}
	}
	target := it.users.ByName(recipient)
	if target == nil {
		return Outcome{Kind: OutcomeNoOp}
	}
	if it.room.FilterEnabled && it.isProfane(text) {
		it.privateSystem(connID, "Your private message was blocked due to profanity.")
		return rejected(RejectProfane)
	}
	msg := Message{User: sender.DisplayName, Text: text, Color: sender.Color, Avatar: sender.Avatar, SentAt: it.Now()}
	it.sink.SendTo(target.ConnID, Event{Kind: EventPrivateMessage, Message: &msg})
	return Outcome{Kind: OutcomeChatAccepted}
}

// HandleTyping relays a typing indicator to everyone but the sender.
func (it *Interpreter) HandleTyping(connID string, isTyping bool) Outcome {
	if it.room.TempDisabled || it.room.Kicked[connID] {
		return Outcome{Kind: OutcomeNoOp}
	}
	u := it.users.ByConn(connID)
	if u == nil {
		return Outcome{Kind: OutcomeNoOp}
	}
	it.sink.BroadcastExcept(connID, Event{Kind: EventTyping, Typing: &TypingInfo{User: u.DisplayName, IsTyping: isTyping}})
	return Outcome{Kind: OutcomeBroadcast}
}

// HandleRename changes the sender's identity, keeping the roster's
// uniqueness invariant. Renaming to the reserved identity is refused; the
// password handshake is the only way in.
func (it *Interpreter) HandleRename(connID, newName string) Outcome {
	u := it.users.ByConn(connID)
	if u == nil {
		return Outcome{Kind: OutcomeNoOp}
	}
	if newName == "" {
		it.privateSystem(connID, "Username is required.")
		return rejected(RejectMissingFields)
	}
	if newName == ReservedName && u.OriginalName != ReservedName {
		it.privateSystem(connID, fmt.Sprintf("The username %q is reserved.", ReservedName))
		return rejected(RejectNameReserved)
	}
	old := u.OriginalName
	unique := it.users.UniqueName(newName)
	it.users.Rename(u, unique)
	it.sink.RosterChanged()
	it.BroadcastSystem(fmt.Sprintf("%s changed username to %s.", old, unique))
	return Outcome{Kind: OutcomeBroadcast}
}

// HandleActivity applies a client-reported idle state immediately rather
// than waiting for the sweep.
func (it *Interpreter) HandleActivity(connID string, idle bool) Outcome {
	u := it.users.ByConn(connID)
	if u == nil {
		return Outcome{Kind: OutcomeNoOp}
	}
	if !idle {
		u.Touch(it.Now())
	}
	if u.Idle == idle {
		return Outcome{Kind: OutcomeNoOp}
	}
	u.Idle = idle
	u.DisplayName = u.OriginalName
	if idle {
		u.DisplayName = u.OriginalName + idleSuffix
	}
	it.sink.RosterChanged()
	return Outcome{Kind: OutcomeBroadcast}
}
