package memory

import (
	"errors"
	"testing"
	"time"
)

// fakeClock is a manually advanced time source.
type fakeClock struct {
	t time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func TestStore_SetGet(t *testing.T) {
	s := New()

	if _, lookup := s.Get("missing"); lookup != Miss {
		t.Fatalf("Get(missing) lookup = %v, want miss", lookup)
	}

	if err := s.Set("k", []byte("v\x00bin"), SetOptions{}); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, lookup := s.Get("k")
	if lookup != Hit {
		t.Fatalf("Get lookup = %v, want hit", lookup)
	}
	if string(got) != "v\x00bin" {
		t.Errorf("Get = %q, want %q", got, "v\x00bin")
	}
	if s.Len() != 1 {
		t.Errorf("Len = %d, want 1", s.Len())
	}
}

func TestStore_TTLLifecycle(t *testing.T) {
	clock := newFakeClock()
	var evicted []string
	s := New(WithClock(clock.Now), WithExpireHook(func(key string) {
		evicted = append(evicted, key)
	}))

	if err := s.Set("k", []byte("v"), SetOptions{TTL: time.Second}); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if _, lookup := s.Get("k"); lookup != Hit {
		t.Fatalf("Get before expiry = %v, want hit", lookup)
	}

	clock.Advance(999 * time.Millisecond)
	if _, lookup := s.Get("k"); lookup != Hit {
		t.Fatalf("Get just before expiry = %v, want hit", lookup)
	}

	// The deadline itself counts as expired.
	clock.Advance(time.Millisecond)

	// Lazy: the entry is still in memory until accessed.
	if s.Len() != 1 {
		t.Fatalf("Len before access = %d, want 1", s.Len())
	}

	value, lookup := s.Get("k")
	if lookup != Expired || value != nil {
		t.Fatalf("Get after expiry = (%q, %v), want (nil, expired)", value, lookup)
	}
	if s.Len() != 0 {
		t.Errorf("Len after eviction = %d, want 0", s.Len())
	}
	if _, ok := s.Expiry("k"); ok {
		t.Error("Expiry still present after eviction")
	}

	if _, lookup := s.Get("k"); lookup != Miss {
		t.Errorf("second Get = %v, want miss (not expired)", lookup)
	}

	stats := s.Stats()
	if stats.Expired != 1 {
		t.Errorf("Stats.Expired = %d, want 1", stats.Expired)
	}
	if stats.Hits != 2 || stats.Misses != 1 {
		t.Errorf("Stats hits/misses = %d/%d, want 2/1", stats.Hits, stats.Misses)
	}
	if len(evicted) != 1 || evicted[0] != "k" {
		t.Errorf("expire hook calls = %v, want [k]", evicted)
	}
}

func TestStore_KeepTTL(t *testing.T) {
	clock := newFakeClock()
	s := New(WithClock(clock.Now))

	if err := s.Set("k", []byte("v"), SetOptions{TTL: 100 * time.Second}); err != nil {
		t.Fatalf("Set: %v", err)
	}
	original, _ := s.Expiry("k")

	clock.Advance(10 * time.Second)
	if err := s.Set("k", []byte("v2"), SetOptions{KeepTTL: true}); err != nil {
		t.Fatalf("Set KeepTTL: %v", err)
	}

	deadline, ok := s.Expiry("k")
	if !ok || !deadline.Equal(original) {
		t.Errorf("Expiry after KeepTTL = %v (%v), want %v", deadline, ok, original)
	}
	if got, lookup := s.Get("k"); lookup != Hit || string(got) != "v2" {
		t.Errorf("Get = (%q, %v), want (v2, hit)", got, lookup)
	}

	clock.Advance(90 * time.Second)
	if _, lookup := s.Get("k"); lookup != Expired {
		t.Errorf("Get after original deadline = %v, want expired", lookup)
	}
}

func TestStore_KeepTTLAfterDeadline(t *testing.T) {
	clock := newFakeClock()
	var expired []string
	s := New(WithClock(clock.Now), WithExpireHook(func(key string) {
		expired = append(expired, key)
	}))

	_ = s.Set("k", []byte("v"), SetOptions{TTL: 10 * time.Millisecond})
	clock.Advance(time.Second)

	if err := s.Set("k", []byte("v2"), SetOptions{KeepTTL: true}); err != nil {
		t.Fatalf("Set KeepTTL: %v", err)
	}
	if _, ok := s.Expiry("k"); ok {
		t.Error("KeepTTL kept a deadline that had already passed")
	}
	if got, lookup := s.Get("k"); lookup != Hit || string(got) != "v2" {
		t.Errorf("Get = (%q, %v), want (v2, hit)", got, lookup)
	}
	if len(expired) != 1 || expired[0] != "k" {
		t.Errorf("expire hook calls = %q, want [k]", expired)
	}
	if st := s.Stats(); st.Expired != 1 {
		t.Errorf("Stats().Expired = %d, want 1", st.Expired)
	}
}

func TestStore_SetClearsTTL(t *testing.T) {
	clock := newFakeClock()
	s := New(WithClock(clock.Now))

	_ = s.Set("k", []byte("v"), SetOptions{TTL: time.Second})
	_ = s.Set("k", []byte("v2"), SetOptions{})

	if _, ok := s.Expiry("k"); ok {
		t.Fatal("plain Set kept the previous expiry")
	}
	clock.Advance(time.Hour)
	if got, lookup := s.Get("k"); lookup != Hit || string(got) != "v2" {
		t.Errorf("Get = (%q, %v), want (v2, hit)", got, lookup)
	}
}

func TestStore_KeepTTLWithoutExistingExpiry(t *testing.T) {
	s := New()
	_ = s.Set("k", []byte("v"), SetOptions{KeepTTL: true})
	if _, ok := s.Expiry("k"); ok {
		t.Error("KeepTTL on a new key created an expiry")
	}
}

func TestStore_InvalidTTL(t *testing.T) {
	s := New()
	_ = s.Set("k", []byte("old"), SetOptions{})

	tests := []struct {
		name string
		ttl  time.Duration
	}{
		{"negative", -time.Second},
		{"overflow", time.Duration(1<<63 - 1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := s.Set("k", []byte("new"), SetOptions{TTL: tt.ttl})
			if !errors.Is(err, ErrInvalidTTL) {
				t.Fatalf("Set error = %v, want ErrInvalidTTL", err)
			}
			if got, _ := s.Get("k"); string(got) != "old" {
				t.Errorf("value = %q, want unchanged %q", got, "old")
			}
		})
	}
}

func TestLookup_String(t *testing.T) {
	if Hit.String() != "hit" || Miss.String() != "miss" || Expired.String() != "expired" {
		t.Error("unexpected Lookup strings")
	}
}
