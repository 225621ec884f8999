package core

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
)

// sinkRecorder captures interpreter effects for assertions.
type sinkRecorder struct {
	broadcasts []Event
	sends      map[string][]Event
	rosters    int
	persists   int
	shutdowns  int
}

func newSinkRecorder() *sinkRecorder {
	return &sinkRecorder{sends: make(map[string][]Event)}
}

func (s *sinkRecorder) Broadcast(ev Event) { s.broadcasts = append(s.broadcasts, ev) }

func (s *sinkRecorder) BroadcastExcept(connID string, ev Event) {
	s.broadcasts = append(s.broadcasts, ev)
}

func (s *sinkRecorder) SendTo(connID string, ev Event) {
	s.sends[connID] = append(s.sends[connID], ev)
}

func (s *sinkRecorder) RosterChanged() { s.rosters++ }

func (s *sinkRecorder) PersistHistory() { s.persists++ }

func (s *sinkRecorder) RequestShutdown() { s.shutdowns++ }

// lastPrivate returns the text of the most recent private reply to connID.
func (s *sinkRecorder) lastPrivate(connID string) string {
	events := s.sends[connID]
	for i := len(events) - 1; i >= 0; i-- {
		if events[i].Kind == EventChatMessage && events[i].Message != nil {
			return events[i].Message.Text
		}
	}
	return ""
}

// lastBroadcastText returns the most recent broadcast chat entry text.
func (s *sinkRecorder) lastBroadcastText() string {
	for i := len(s.broadcasts) - 1; i >= 0; i-- {
		if s.broadcasts[i].Kind == EventChatMessage && s.broadcasts[i].Message != nil {
			return s.broadcasts[i].Message.Text
		}
	}
	return ""
}

// immediateSched runs deferred tasks synchronously so countdowns collapse in
// tests.
type immediateSched struct{}

func (immediateSched) After(_ time.Duration, fn func()) { fn() }

// fakeSecrets is an in-memory secret store.
type fakeSecrets struct {
	value string
}

func (f *fakeSecrets) Read() string { return f.value }

func (f *fakeSecrets) Write(newSecret string) error {
	f.value = newSecret
	return nil
}

// fakeClock provides a controllable interpreter clock.
type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

type interpFixture struct {
	interp  *Interpreter
	users   *Registry
	room    *RoomState
	polls   *PollEngine
	grants  *Grants
	sink    *sinkRecorder
	secrets *fakeSecrets
	clock   *fakeClock
}

func newInterpFixture(t *testing.T, isProfane func(string) bool) *interpFixture {
	t.Helper()
	logger := zerolog.Nop()
	f := &interpFixture{
		users:   NewRegistry(),
		room:    NewRoomState(500, 2000),
		polls:   NewPollEngine(),
		grants:  NewGrants(10 * time.Second),
		sink:    newSinkRecorder(),
		secrets: &fakeSecrets{value: "eliadmin123"},
		clock:   &fakeClock{now: time.Unix(1_700_000_000, 0)},
	}
	f.interp = NewInterpreter(&logger, f.users, f.room, f.polls, f.grants, f.secrets, isProfane, f.sink, immediateSched{})
	f.interp.Now = f.clock.Now
	return f
}

// joinUser registers a plain session directly against the registry.
func (f *interpFixture) joinUser(connID, name string) *User {
	unique := f.users.UniqueName(name)
	return f.users.Add(connID, unique, "#123456", "A", f.clock.now)
}

// grantAdmin issues a confirmed temp-admin record.
func (f *interpFixture) grantAdmin(connID string) {
	f.grants.Grant(connID, f.clock.now)
}

// mustEvent reads from ch until an event of the wanted kind arrives.
func mustEvent(t *testing.T, ch <-chan Event, kind EventKind) Event {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case ev := <-ch:
			if ev.Kind == kind {
				return ev
			}
		case <-deadline:
			t.Fatalf("timed out waiting for event kind %d", kind)
		}
	}
}
