package core

import (
	"testing"
	"time"
)

func TestUniqueNameSuffixing(t *testing.T) {
	r := NewRegistry()
	now := time.Now()

	names := []string{}
	for i := 0; i < 3; i++ {
		name := r.UniqueName("Sam")
		r.Add("conn"+string(rune('a'+i)), name, "", "", now)
		names = append(names, name)
	}

	want := []string{"Sam", "Sam2", "Sam3"}
	for i, w := range want {
		if names[i] != w {
			t.Fatalf("join %d: got %q, want %q", i, names[i], w)
		}
	}
}

func TestUniqueNameCaseInsensitive(t *testing.T) {
	r := NewRegistry()
	r.Add("a", "Sam", "", "", time.Now())

	if got := r.UniqueName("sam"); got != "sam2" {
		t.Fatalf("got %q, want sam2", got)
	}
}

func TestUniqueNameReservedNeverSuffixed(t *testing.T) {
	r := NewRegistry()
	r.Add("a", ReservedName, "", "", time.Now())

	if got := r.UniqueName(ReservedName); got != ReservedName {
		t.Fatalf("reserved identity was suffixed to %q", got)
	}
}

func TestReservedColorForced(t *testing.T) {
	r := NewRegistry()
	u := r.Add("a", ReservedName, "#ffffff", "E", time.Now())
	if u.Color != reservedColor {
		t.Fatalf("reserved color not forced: got %q", u.Color)
	}
}

func TestByNameMatchesDisplayName(t *testing.T) {
	r := NewRegistry()
	u := r.Add("a", "Sam", "", "", time.Now().Add(-time.Hour))
	r.SweepIdle(time.Now(), 5*time.Minute)

	if u.DisplayName != "Sam (idle)" {
		t.Fatalf("expected idle display name, got %q", u.DisplayName)
	}
	if got := r.ByName("sam (idle)"); got != u {
		t.Fatalf("ByName did not match display name")
	}
	if got := r.ByName("SAM"); got != u {
		t.Fatalf("ByName did not match original name")
	}
}

func TestSweepIdleFlipsBothWays(t *testing.T) {
	r := NewRegistry()
	now := time.Now()
	u := r.Add("a", "Sam", "", "", now)

	if changed := r.SweepIdle(now.Add(time.Minute), 5*time.Minute); changed {
		t.Fatalf("sweep reported change before threshold")
	}
	if changed := r.SweepIdle(now.Add(6*time.Minute), 5*time.Minute); !changed {
		t.Fatalf("sweep missed idle transition")
	}
	if !u.Idle || u.DisplayName != "Sam (idle)" {
		t.Fatalf("idle state not applied: %+v", u)
	}

	u.Touch(now.Add(7 * time.Minute))
	if changed := r.SweepIdle(now.Add(7*time.Minute), 5*time.Minute); !changed {
		t.Fatalf("sweep missed active transition")
	}
	if u.Idle || u.DisplayName != "Sam" {
		t.Fatalf("active state not restored: %+v", u)
	}
}

func TestRemoveIsIdempotent(t *testing.T) {
	r := NewRegistry()
	r.Add("a", "Sam", "", "", time.Now())

	if u := r.Remove("a"); u == nil {
		t.Fatalf("first remove returned nil")
	}
	if u := r.Remove("a"); u != nil {
		t.Fatalf("second remove returned a user")
	}
}
