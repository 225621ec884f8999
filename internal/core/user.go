package core

import (
	"strconv"
	"strings"
	"time"
)

const (
	// ReservedName is the single privileged identity, gated by the shared
	// admin secret. At most one session may hold it.
	ReservedName  = "Eli"
	reservedColor = "#f59611"

	idleSuffix = " (idle)"
)

// User is one connected session: identity plus presentation state.
type User struct {
	ConnID       string
	OriginalName string
	DisplayName  string
	Color        string
	Avatar       string
	LastActivity time.Time
	Idle         bool
	AdminBlocked bool
}

// Registry is the authoritative set of connected users. It is not safe for
// concurrent use; the hub loop serializes all access.
type Registry struct {
	users []*User
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// UniqueName resolves requested into a name distinct from every current
// OriginalName, case-insensitively, by appending 2, 3, ... The reserved
// identity is never suffixed.
func (r *Registry) UniqueName(requested string) string {
	if requested == ReservedName {
		return ReservedName
	}
	name := requested
	suffix := 2
	for r.nameTaken(name) {
		name = requested + strconv.Itoa(suffix)
		suffix++
	}
	return name
}

func (r *Registry) nameTaken(name string) bool {
	lower := strings.ToLower(name)
	for _, u := range r.users {
		if strings.ToLower(u.OriginalName) == lower {
			return true
		}
	}
	return false
}

// Add creates a session for the given connection. The caller resolves name
// uniqueness first via UniqueName. The reserved identity gets its fixed
// color regardless of the client-supplied one.
func (r *Registry) Add(connID, name, color, avatar string, now time.Time) *User {
	if name == ReservedName {
		color = reservedColor
	}
	u := &User{
		ConnID:       connID,
		OriginalName: name,
		DisplayName:  name,
		Color:        color,
		Avatar:       avatar,
		LastActivity: now,
	}
	r.users = append(r.users, u)
	return u
}

// Remove deletes the session for connID and returns it, or nil.
func (r *Registry) Remove(connID string) *User {
	for i, u := range r.users {
		if u.ConnID == connID {
			r.users = append(r.users[:i], r.users[i+1:]...)
			return u
		}
	}
	return nil
}

// ByConn returns the session for a connection id, or nil.
func (r *Registry) ByConn(connID string) *User {
	for _, u := range r.users {
		if u.ConnID == connID {
			return u
		}
	}
	return nil
}

// ByName matches case-insensitively against original and display names.
func (r *Registry) ByName(name string) *User {
	lower := strings.ToLower(name)
	for _, u := range r.users {
		if strings.ToLower(u.OriginalName) == lower || strings.ToLower(u.DisplayName) == lower {
			return u
		}
	}
	return nil
}

// ReservedHeld reports whether a session currently holds the reserved
// identity.
func (r *Registry) ReservedHeld() bool {
	for _, u := range r.users {
		if u.OriginalName == ReservedName {
			return true
		}
	}
	return false
}

// Reserved returns the session holding the reserved identity, or nil.
func (r *Registry) Reserved() *User {
	for _, u := range r.users {
		if u.OriginalName == ReservedName {
			return u
		}
	}
	return nil
}

// Rename changes a session's identity, preserving the idle suffix.
func (r *Registry) Rename(u *User, newName string) {
	u.OriginalName = newName
	u.DisplayName = newName
	if u.Idle {
		u.DisplayName = newName + idleSuffix
	}
}

// Touch records inbound activity for the session.
func (u *User) Touch(now time.Time) {
	u.LastActivity = now
}

// SweepIdle flips each session's idle state when elapsed time crosses the
// threshold in either direction and returns whether anything changed.
func (r *Registry) SweepIdle(now time.Time, threshold time.Duration) bool {
	changed := false
	for _, u := range r.users {
		idle := now.Sub(u.LastActivity) > threshold
		if idle == u.Idle {
			continue
		}
		u.Idle = idle
		u.DisplayName = u.OriginalName
		if idle {
			u.DisplayName = u.OriginalName + idleSuffix
		}
		changed = true
	}
	return changed
}

// Roster returns the user list as presented to clients.
func (r *Registry) Roster() []RosterEntry {
	roster := make([]RosterEntry, 0, len(r.users))
	for _, u := range r.users {
		roster = append(roster, RosterEntry{
			Username: u.DisplayName,
			Color:    u.Color,
			Avatar:   u.Avatar,
		})
	}
	return roster
}

// Len returns the number of connected sessions.
func (r *Registry) Len() int {
	return len(r.users)
}
