package core

// SlowMode is the minimum-interval throttle between a session's accepted
// chat messages.
type SlowMode struct {
	Enabled  bool
	Interval int64 // milliseconds
}

// RoomState is the process-wide shared room state. The hub loop serializes
// all access; no internal locking.
type RoomState struct {
	messages []Message
	limit    int

	Pinned         string
	Slow           SlowMode
	TempDisabled   bool
	Kicked         map[string]bool
	KickingEnabled bool
	FilterEnabled  bool
}

// NewRoomState builds room state retaining at most limit messages.
func NewRoomState(limit int, slowIntervalMS int64) *RoomState {
	if limit <= 0 {
		limit = 500
	}
	return &RoomState{
		limit:          limit,
		Slow:           SlowMode{Interval: slowIntervalMS},
		Kicked:         make(map[string]bool),
		KickingEnabled: true,
	}
}

// SetHistory replaces the log, truncating to the newest entries at the cap.
func (s *RoomState) SetHistory(messages []Message) {
	if len(messages) > s.limit {
		messages = messages[len(messages)-s.limit:]
	}
	s.messages = append(s.messages[:0], messages...)
}

// Append adds an entry, evicting the oldest beyond the retention cap.
func (s *RoomState) Append(m Message) {
	s.messages = append(s.messages, m)
	if len(s.messages) > s.limit {
		s.messages = s.messages[len(s.messages)-s.limit:]
	}
}

// Clear empties the log.
func (s *RoomState) Clear() {
	s.messages = s.messages[:0]
}

// History returns a copy of the retained log.
func (s *RoomState) History() []Message {
	out := make([]Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// HistoryLen returns the number of retained entries.
func (s *RoomState) HistoryLen() int {
	return len(s.messages)
}
