package core

import "time"

// grant is the per-connection temp-admin record.
type grant struct {
	firstInit time.Time
	granted   bool
}

// StepResult is the outcome of one admin-init attempt.
type StepResult int

const (
	// StepStarted created a fresh unconfirmed record.
	StepStarted StepResult = iota
	// StepGranted confirmed the record inside the window.
	StepGranted
	// StepAlreadyGranted means the connection already held a grant.
	StepAlreadyGranted
)

// Grants holds the temp-admin authorization state per connection. Access is
// serialized by the hub loop.
type Grants struct {
	window  time.Duration
	records map[string]*grant
}

// NewGrants builds grant state with the given confirmation window.
func NewGrants(window time.Duration) *Grants {
	return &Grants{
		window:  window,
		records: make(map[string]*grant),
	}
}

// Step advances the two-step challenge for a connection. A first attempt, or
// one past the window, starts a fresh unconfirmed record; a second attempt
// inside the window confirms it.
func (g *Grants) Step(connID string, now time.Time) StepResult {
	rec, ok := g.records[connID]
	if !ok || now.Sub(rec.firstInit) > g.window {
		g.records[connID] = &grant{firstInit: now}
		return StepStarted
	}
	if rec.granted {
		return StepAlreadyGranted
	}
	rec.granted = true
	return StepGranted
}

// Grant issues a confirmed record directly, bypassing the challenge.
func (g *Grants) Grant(connID string, now time.Time) {
	g.records[connID] = &grant{firstInit: now, granted: true}
}

// Granted reports whether the connection holds a confirmed grant.
func (g *Grants) Granted(connID string) bool {
	rec, ok := g.records[connID]
	return ok && rec.granted
}

// Revoke removes any record for the connection.
func (g *Grants) Revoke(connID string) {
	delete(g.records, connID)
}
