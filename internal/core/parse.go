package core

import (
	"strconv"
	"strings"
)

const (
	// adminInitPhrase is the two-step challenge phrase for temp-admin grants.
	adminInitPhrase = "server init2"
	// adminPrefix marks text-encoded admin commands.
	adminPrefix = "server init"
)

type adminKind int

const (
	adminHelp adminKind = iota
	adminBroadcast
	adminSlowOn
	adminSlowOff
	adminSlowSet
	adminTempDisable
	adminTempDisableOff
	adminClearHistory
	adminKick
	adminUnkick
	adminPin
	adminPinOff
	adminPollStart
	adminEndPoll
	adminAdd
	adminDelete
	adminChangePassword
	adminImpersonate
	adminFilterOn
	adminFilterOff
	adminKickOn
	adminKickOff
	adminRestart
)

// adminCommand is one parsed admin sub-command. arg carries the original-case
// payload for commands that relay text; args carries space-split arguments.
type adminCommand struct {
	kind    adminKind
	arg     string
	args    []string
	seconds float64
}

// parseAdmin recognizes admin sub-commands. Matching is case-insensitive on
// the trimmed text (lower); payloads are sliced from the original-case
// trimmed text. Unrecognized admin-prefixed text is not a parse error: it
// falls through to the ordinary chat path.
func parseAdmin(trimmed, lower string) (adminCommand, bool) {
	payload := func(prefix string) string {
		return strings.TrimSpace(trimmed[len(prefix):])
	}

	switch {
	case lower == "server init help":
		return adminCommand{kind: adminHelp}, true
	case lower == "server init slowmode on":
		return adminCommand{kind: adminSlowOn}, true
	case lower == "server init slowmode off":
		return adminCommand{kind: adminSlowOff}, true
	case lower == "server init temp disable off":
		return adminCommand{kind: adminTempDisableOff}, true
	case lower == "server init temp disable":
		return adminCommand{kind: adminTempDisable}, true
	case lower == "server init clear history":
		return adminCommand{kind: adminClearHistory}, true
	case lower == "server init pinoff":
		return adminCommand{kind: adminPinOff}, true
	case lower == "server init endpoll":
		return adminCommand{kind: adminEndPoll}, true
	case lower == "server init filter on":
		return adminCommand{kind: adminFilterOn}, true
	case lower == "server init filter off":
		return adminCommand{kind: adminFilterOff}, true
	case lower == "server init kickon":
		return adminCommand{kind: adminKickOn}, true
	case lower == "server init kickoff":
		return adminCommand{kind: adminKickOff}, true
	case lower == "server init restart":
		return adminCommand{kind: adminRestart}, true

	case strings.HasPrefix(lower, "server init broadcast "):
		return adminCommand{kind: adminBroadcast, arg: payload("server init broadcast ")}, true
	case strings.HasPrefix(lower, "server init slowmode "):
		cmd := adminCommand{kind: adminSlowSet}
		if secs, err := strconv.ParseFloat(payload("server init slowmode "), 64); err == nil {
			cmd.seconds = secs
		}
		return cmd, true
	case strings.HasPrefix(lower, "server init kick "):
		return adminCommand{kind: adminKick, arg: payload("server init kick ")}, true
	case strings.HasPrefix(lower, "server init unkick "):
		return adminCommand{kind: adminUnkick, arg: payload("server init unkick ")}, true
	case strings.HasPrefix(lower, "server init pin "):
		return adminCommand{kind: adminPin, arg: payload("server init pin ")}, true
	case strings.HasPrefix(lower, "server init poll "):
		return adminCommand{kind: adminPollStart, args: strings.Fields(payload("server init poll "))}, true
	case strings.HasPrefix(lower, "server init admin add "):
		return adminCommand{kind: adminAdd, arg: payload("server init admin add ")}, true
	case strings.HasPrefix(lower, "server init admin delete "):
		return adminCommand{kind: adminDelete, arg: payload("server init admin delete ")}, true
	case strings.HasPrefix(lower, "server init change password "):
		return adminCommand{kind: adminChangePassword, arg: payload("server init change password ")}, true
	case strings.HasPrefix(lower, "server init impersonate "):
		rest := payload("server init impersonate ")
		target, text, _ := strings.Cut(rest, " ")
		return adminCommand{kind: adminImpersonate, arg: target, args: []string{strings.TrimSpace(text)}}, true
	}
	return adminCommand{}, false
}
