package core

import (
	"errors"
	"testing"
)

func TestPollLifecycle(t *testing.T) {
	e := NewPollEngine()

	if err := e.Start("tea", "coffee"); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := e.Start("x", "y"); !errors.Is(err, ErrPollActive) {
		t.Fatalf("second start: got %v, want ErrPollActive", err)
	}

	if _, err := e.Vote("a", 3); !errors.Is(err, ErrInvalidVote) {
		t.Fatalf("vote 3: got %v, want ErrInvalidVote", err)
	}
	if _, err := e.Vote("a", 1); err != nil {
		t.Fatalf("vote: %v", err)
	}
	if _, err := e.Vote("b", 1); err != nil {
		t.Fatalf("vote: %v", err)
	}
	if _, err := e.Vote("c", 2); err != nil {
		t.Fatalf("vote: %v", err)
	}

	opts, counts, err := e.End()
	if err != nil {
		t.Fatalf("end: %v", err)
	}
	if opts != [2]string{"tea", "coffee"} {
		t.Fatalf("options: %v", opts)
	}
	if counts != [2]int{2, 1} {
		t.Fatalf("tally: got %v, want [2 1]", counts)
	}

	if _, _, err := e.End(); !errors.Is(err, ErrNoPoll) {
		t.Fatalf("end with no poll: got %v, want ErrNoPoll", err)
	}
	if _, err := e.Vote("a", 1); !errors.Is(err, ErrNoPoll) {
		t.Fatalf("vote with no poll: got %v, want ErrNoPoll", err)
	}
}

func TestPollLastVoteWins(t *testing.T) {
	e := NewPollEngine()
	if err := e.Start("tea", "coffee"); err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := e.Vote("a", 1); err != nil {
		t.Fatalf("vote: %v", err)
	}
	counts, err := e.Vote("a", 2)
	if err != nil {
		t.Fatalf("revote: %v", err)
	}
	if counts != [2]int{0, 1} {
		t.Fatalf("tally after revote: %v", counts)
	}
}
