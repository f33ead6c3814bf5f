package clock

import (
	"testing"
	"time"
)

func TestSystemClock(t *testing.T) {
	c := System()
	before := time.Now()
	got := c.Now()
	after := time.Now()

	if got.Before(before) || got.After(after) {
		t.Fatalf("System().Now() = %v, want between %v and %v", got, before, after)
	}
}

func TestNTPClock_ZeroOffset(t *testing.T) {
	c := NewNTP()

	before := time.Now()
	got := c.Now()
	after := time.Now()

	if got.Before(before.Add(-time.Millisecond)) || got.After(after.Add(time.Millisecond)) {
		t.Fatalf("NTPClock.Now() with zero offset = %v, want ~time.Now()", got)
	}
}

func TestNTPClock_ManualOffset(t *testing.T) {
	c := NewNTP()

	c.mu.Lock()
	c.offset = 5 * time.Second
	c.mu.Unlock()

	before := time.Now().Add(5 * time.Second)
	got := c.Now()
	after := time.Now().Add(5 * time.Second)

	if got.Before(before.Add(-time.Millisecond)) || got.After(after.Add(time.Millisecond)) {
		t.Fatalf("NTPClock.Now() with +5s offset = %v, want ~%v", got, before)
	}

	if off := c.Offset(); off != 5*time.Second {
		t.Fatalf("Offset() = %v, want 5s", off)
	}
}

func TestFromConfig(t *testing.T) {
	c := FromConfig(Config{
		Server:   "time.example.com",
		Interval: time.Hour,
		Timeout:  time.Second,
	}, nil)

	if c.server != "time.example.com" {
		t.Fatalf("server = %q, want time.example.com", c.server)
	}
	if c.interval != time.Hour {
		t.Fatalf("interval = %v, want 1h", c.interval)
	}

	defaulted := FromConfig(Config{}, nil)
	if defaulted.server != defaultServer {
		t.Fatalf("server = %q, want default %q", defaulted.server, defaultServer)
	}
	if defaulted.interval != defaultInterval {
		t.Fatalf("interval = %v, want default %v", defaulted.interval, defaultInterval)
	}
}
