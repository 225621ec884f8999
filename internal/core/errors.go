package core

import "errors"

// Reject codes for user-facing command rejections. Every rejection is
// delivered as a private reply and never terminates the process.
const (
	RejectKicked             = "kicked"
	RejectUnauthorized       = "unauthorized"
	RejectChatDisabled       = "chat_disabled"
	RejectSlowMode           = "slow_mode"
	RejectProfane            = "profane"
	RejectPermanentlyBlocked = "permanently_blocked"
	RejectNameReserved       = "name_reserved"
	RejectMissingFields      = "missing_fields"
	RejectPollActive         = "poll_already_active"
	RejectNoPoll             = "no_poll_active"
	RejectInvalidVote        = "invalid_vote"
	RejectNotFound           = "not_found"
	RejectInvalidArgument    = "invalid_argument"
)

var (
	ErrPollActive  = errors.New("a poll is already running")
	ErrNoPoll      = errors.New("no active poll")
	ErrInvalidVote = errors.New("invalid vote option")
)
