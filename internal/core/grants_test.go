package core

import (
	"testing"
	"time"
)

func TestGrantsTwoStep(t *testing.T) {
	g := NewGrants(10 * time.Second)
	now := time.Unix(1_700_000_000, 0)

	if res := g.Step("a", now); res != StepStarted {
		t.Fatalf("first step: got %d, want StepStarted", res)
	}
	if g.Granted("a") {
		t.Fatalf("granted after a single step")
	}
	if res := g.Step("a", now.Add(5*time.Second)); res != StepGranted {
		t.Fatalf("second step inside window: got %d, want StepGranted", res)
	}
	if !g.Granted("a") {
		t.Fatalf("not granted after confirmation")
	}
}

func TestGrantsWindowRestarts(t *testing.T) {
	g := NewGrants(10 * time.Second)
	now := time.Unix(1_700_000_000, 0)

	g.Step("a", now)
	// past the window: the cycle restarts, it never jumps straight to granted
	if res := g.Step("a", now.Add(11*time.Second)); res != StepStarted {
		t.Fatalf("late step: got %d, want StepStarted", res)
	}
	if g.Granted("a") {
		t.Fatalf("granted without confirmation inside the window")
	}
}

func TestGrantsRevoke(t *testing.T) {
	g := NewGrants(10 * time.Second)
	now := time.Unix(1_700_000_000, 0)

	g.Grant("a", now)
	if !g.Granted("a") {
		t.Fatalf("direct grant not effective")
	}
	g.Revoke("a")
	if g.Granted("a") {
		t.Fatalf("grant survived revoke")
	}
}
