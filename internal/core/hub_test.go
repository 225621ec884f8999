package core

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

type hubFixture struct {
	hub     *Hub
	cancel  context.CancelFunc
	secrets *fakeSecrets
}

func newHubFixture(t *testing.T) *hubFixture {
	t.Helper()
	logger := zerolog.Nop()
	secrets := &fakeSecrets{value: "eliadmin123"}
	hub := NewHub(HubConfig{}, &logger, nil, secrets, nil)
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)
	t.Cleanup(cancel)
	return &hubFixture{hub: hub, cancel: cancel, secrets: secrets}
}

// connect registers a fresh client and waits for the initial history push.
func (f *hubFixture) connect(t *testing.T, id string) *Client {
	t.Helper()
	c := NewClient(id)
	f.hub.RegisterClient(c)
	mustEvent(t, c.Events, EventChatHistory)
	return c
}

func (f *hubFixture) join(t *testing.T, c *Client, name string) {
	t.Helper()
	c.Commands <- Command{Kind: CommandJoin, Name: name, Color: "#123456", Avatar: "A"}
}

func TestHubJoinBroadcastsRosterAndArrival(t *testing.T) {
	f := newHubFixture(t)
	c1 := f.connect(t, "c1")
	f.join(t, c1, "Sam")

	ev := mustEvent(t, c1.Events, EventUpdateUsers)
	if len(ev.Roster) != 1 || ev.Roster[0].Username != "Sam" {
		t.Fatalf("roster: %+v", ev.Roster)
	}
	ev = mustEvent(t, c1.Events, EventChatMessage)
	if ev.Message.Text != "Sam has joined the chat." {
		t.Fatalf("arrival: %q", ev.Message.Text)
	}
}

func TestHubDuplicateNamesSuffixed(t *testing.T) {
	f := newHubFixture(t)
	c1 := f.connect(t, "c1")
	c2 := f.connect(t, "c2")
	f.join(t, c1, "Sam")
	mustEvent(t, c1.Events, EventUpdateUsers)
	f.join(t, c2, "Sam")

	ev := mustEvent(t, c2.Events, EventChatMessage)
	for ev.Message == nil || ev.Message.Text != "Sam2 has joined the chat." {
		ev = mustEvent(t, c2.Events, EventChatMessage)
	}
}

func TestHubLeaveBroadcastsDeparture(t *testing.T) {
	f := newHubFixture(t)
	c1 := f.connect(t, "c1")
	c2 := f.connect(t, "c2")
	f.join(t, c1, "Sam")
	f.join(t, c2, "Mia")
	mustEvent(t, c2.Events, EventUpdateUsers)

	f.hub.UnregisterClient(c2)
	ev := mustEvent(t, c1.Events, EventChatMessage)
	for ev.Message == nil || ev.Message.Text != "Mia has left the chat." {
		ev = mustEvent(t, c1.Events, EventChatMessage)
	}
}

func TestHubUnregisterIdempotent(t *testing.T) {
	f := newHubFixture(t)
	c1 := f.connect(t, "c1")
	c2 := f.connect(t, "c2")
	f.join(t, c1, "Sam")
	f.join(t, c2, "Mia")
	mustEvent(t, c1.Events, EventUpdateUsers)

	f.hub.UnregisterClient(c2)
	f.hub.UnregisterClient(c2)

	// only one departure line may appear
	deadline := time.After(500 * time.Millisecond)
	departures := 0
	for {
		select {
		case ev := <-c1.Events:
			if ev.Kind == EventChatMessage && ev.Message != nil && ev.Message.Text == "Mia has left the chat." {
				departures++
			}
		case <-deadline:
			if departures != 1 {
				t.Fatalf("departures: %d", departures)
			}
			return
		}
	}
}

func TestHubReservedHandshakeCorrectPassword(t *testing.T) {
	f := newHubFixture(t)
	c1 := f.connect(t, "c1")
	f.join(t, c1, ReservedName)

	ev := mustEvent(t, c1.Events, EventChatMessage)
	if ev.Message.Text != "Enter password for Eli:" {
		t.Fatalf("prompt: %q", ev.Message.Text)
	}

	c1.Commands <- Command{Kind: CommandChat, Text: "eliadmin123"}
	ev = mustEvent(t, c1.Events, EventUpdateUsers)
	if len(ev.Roster) != 1 || ev.Roster[0].Username != ReservedName {
		t.Fatalf("roster: %+v", ev.Roster)
	}
	if ev.Roster[0].Color != "#f59611" {
		t.Fatalf("reserved color: %q", ev.Roster[0].Color)
	}
}

func TestHubReservedHandshakeRetryThenDeny(t *testing.T) {
	f := newHubFixture(t)
	c1 := f.connect(t, "c1")
	f.join(t, c1, ReservedName)
	mustEvent(t, c1.Events, EventChatMessage) // prompt

	c1.Commands <- Command{Kind: CommandChat, Text: "wrong"}
	ev := mustEvent(t, c1.Events, EventChatMessage)
	if ev.Message.Text != "Incorrect password. Try again:" {
		t.Fatalf("retry prompt: %q", ev.Message.Text)
	}

	c1.Commands <- Command{Kind: CommandChat, Text: "still wrong"}
	ev = mustEvent(t, c1.Events, EventChatMessage)
	if ev.Message.Text != `Access denied for username "Eli".` {
		t.Fatalf("denial: %q", ev.Message.Text)
	}

	// a denied session never becomes active
	c1.Commands <- Command{Kind: CommandChat, Text: "hello"}
	assertNoEvent(t, c1.Events, EventChatMessage, 300*time.Millisecond)
}

func TestHubReservedHandshakeWrongThenRight(t *testing.T) {
	f := newHubFixture(t)
	c1 := f.connect(t, "c1")
	f.join(t, c1, ReservedName)
	mustEvent(t, c1.Events, EventChatMessage) // prompt

	c1.Commands <- Command{Kind: CommandChat, Text: "wrong"}
	mustEvent(t, c1.Events, EventChatMessage) // retry prompt
	c1.Commands <- Command{Kind: CommandChat, Text: " eliadmin123 "}

	ev := mustEvent(t, c1.Events, EventUpdateUsers)
	if ev.Roster[0].Username != ReservedName {
		t.Fatalf("roster: %+v", ev.Roster)
	}
}

func TestHubReservedAlreadyHeld(t *testing.T) {
	f := newHubFixture(t)
	c1 := f.connect(t, "c1")
	f.join(t, c1, ReservedName)
	mustEvent(t, c1.Events, EventChatMessage) // prompt
	c1.Commands <- Command{Kind: CommandChat, Text: "eliadmin123"}
	mustEvent(t, c1.Events, EventUpdateUsers)

	c2 := f.connect(t, "c2")
	f.join(t, c2, ReservedName)
	ev := mustEvent(t, c2.Events, EventChatMessage)
	for ev.Message.Text == "Eli has joined the chat." {
		ev = mustEvent(t, c2.Events, EventChatMessage)
	}
	if ev.Message.Text != `The username "Eli" is already in use.` {
		t.Fatalf("refusal: %q", ev.Message.Text)
	}
}

func TestHubJoinWithoutName(t *testing.T) {
	f := newHubFixture(t)
	c1 := f.connect(t, "c1")
	c1.Commands <- Command{Kind: CommandJoin}

	ev := mustEvent(t, c1.Events, EventChatMessage)
	if ev.Message.Text != "Username is required." {
		t.Fatalf("reply: %q", ev.Message.Text)
	}
}

func TestHubChatRoundTrip(t *testing.T) {
	f := newHubFixture(t)
	c1 := f.connect(t, "c1")
	c2 := f.connect(t, "c2")
	f.join(t, c1, "Sam")
	f.join(t, c2, "Mia")
	mustEvent(t, c2.Events, EventUpdateUsers)

	c1.Commands <- Command{Kind: CommandChat, Text: "hello room"}
	ev := mustEvent(t, c2.Events, EventChatMessage)
	for ev.Message.Text != "hello room" {
		ev = mustEvent(t, c2.Events, EventChatMessage)
	}
	if ev.Message.User != "Sam" || ev.Message.Color != "#123456" {
		t.Fatalf("attribution: %+v", ev.Message)
	}
}

func TestHubVersionAdvancesOnBroadcast(t *testing.T) {
	f := newHubFixture(t)
	c1 := f.connect(t, "c1")
	before := f.hub.Version()
	f.join(t, c1, "Sam")
	mustEvent(t, c1.Events, EventUpdateUsers)
	mustEvent(t, c1.Events, EventChatMessage)
	if f.hub.Version() == before {
		t.Fatalf("version did not advance")
	}
}

func TestHubSnapshots(t *testing.T) {
	f := newHubFixture(t)
	c1 := f.connect(t, "c1")
	f.join(t, c1, "Sam")
	mustEvent(t, c1.Events, EventChatMessage)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	roster, err := f.hub.RosterSnapshot(ctx)
	if err != nil {
		t.Fatalf("roster snapshot: %v", err)
	}
	if len(roster) != 1 || roster[0].Username != "Sam" {
		t.Fatalf("roster: %+v", roster)
	}

	messages, version, err := f.hub.HistorySnapshot(ctx)
	if err != nil {
		t.Fatalf("history snapshot: %v", err)
	}
	if len(messages) == 0 || version == 0 {
		t.Fatalf("history=%d version=%d", len(messages), version)
	}

	pinned, err := f.hub.PinnedSnapshot(ctx)
	if err != nil {
		t.Fatalf("pinned snapshot: %v", err)
	}
	if pinned != "" {
		t.Fatalf("pinned: %q", pinned)
	}
}

// assertNoEvent fails if an event of the given kind arrives within d.
func assertNoEvent(t *testing.T, ch <-chan Event, kind EventKind, d time.Duration) {
	t.Helper()
	deadline := time.After(d)
	for {
		select {
		case ev := <-ch:
			if ev.Kind == kind {
				t.Fatalf("unexpected event kind %d", kind)
			}
		case <-deadline:
			return
		}
	}
}
