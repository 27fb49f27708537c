package memory

import (
	"errors"
	"math"
	"time"
)

// ErrInvalidTTL is returned by Set when the TTL is not positive or the
// resulting deadline cannot be represented.
var ErrInvalidTTL = errors.New("memory: invalid ttl")

// Lookup describes how a Get was resolved.
type Lookup uint8

const (
	// Miss means the key was not present.
	Miss Lookup = iota
	// Hit means the key was present and live.
	Hit
	// Expired means the key was present but past its deadline; it has
	// been removed by this lookup.
	Expired
)

func (l Lookup) String() string {
	switch l {
	case Hit:
		return "hit"
	case Expired:
		return "expired"
	default:
		return "miss"
	}
}

// SetOptions controls how Set treats the key's expiry.
type SetOptions struct {
	// TTL, when positive, sets the deadline to now+TTL.
	TTL time.Duration
	// KeepTTL leaves an existing deadline untouched. Ignored when TTL is set.
	KeepTTL bool
}

// Stats are cumulative counters for the store.
type Stats struct {
	Keys    int
	Hits    uint64
	Misses  uint64
	Expired uint64
}

// Store is an in-memory key-value map with lazy per-key expiry.
type Store struct {
	values  map[string][]byte
	expires map[string]time.Time
	now     func() time.Time

	hits    uint64
	misses  uint64
	expired uint64

	onExpire func(key string)
}

// Option configures the Store.
type Option func(*Store)

// WithClock overrides the time source. The default is time.Now, whose
// readings carry the monotonic clock.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// WithExpireHook registers a function called each time a lookup evicts an
// expired key.
func WithExpireHook(fn func(key string)) Option {
	return func(s *Store) {
		s.onExpire = fn
	}
}

// New creates an empty store.
func New(opts ...Option) *Store {
	s := &Store{
		values:  make(map[string][]byte),
		expires: make(map[string]time.Time),
		now:     time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Now returns the store's current time.
func (s *Store) Now() time.Time {
	return s.now()
}

// Get returns the live value for key.
//
// If the key has an expiry at or before now it is deleted and Get reports
// Expired with a nil value. The returned slice is owned by the store and
// must not be modified.
func (s *Store) Get(key string) ([]byte, Lookup) {
	value, ok := s.values[key]
	if !ok {
		s.misses++
		return nil, Miss
	}

	if deadline, ok := s.expires[key]; ok && !deadline.After(s.now()) {
		s.expire(key)
		return nil, Expired
	}

	s.hits++
	return value, Hit
}

// Set stores value under key. The store takes ownership of value.
//
// With a positive TTL the deadline becomes now+TTL; with KeepTTL a
// deadline still in the future is preserved; otherwise any deadline is
// cleared. A key already past its deadline is expired first, so KeepTTL
// never carries a stale deadline onto the new value.
func (s *Store) Set(key string, value []byte, opts SetOptions) error {
	var deadline time.Time
	if opts.TTL != 0 {
		var err error
		if deadline, err = s.deadline(opts.TTL); err != nil {
			return err
		}
	}

	if old, ok := s.expires[key]; ok && !old.After(s.now()) {
		s.expire(key)
	}

	s.values[key] = value

	switch {
	case opts.TTL != 0:
		s.expires[key] = deadline
	case opts.KeepTTL:
	default:
		delete(s.expires, key)
	}

	return nil
}

func (s *Store) expire(key string) {
	delete(s.values, key)
	delete(s.expires, key)
	s.expired++
	if s.onExpire != nil {
		s.onExpire(key)
	}
}

// Expiry returns the deadline for key without evicting it.
func (s *Store) Expiry(key string) (time.Time, bool) {
	deadline, ok := s.expires[key]
	return deadline, ok
}

// Len returns the number of stored keys, including expired keys that
// have not been accessed since their deadline.
func (s *Store) Len() int {
	return len(s.values)
}

// Stats returns a snapshot of the store counters.
func (s *Store) Stats() Stats {
	return Stats{
		Keys:    len(s.values),
		Hits:    s.hits,
		Misses:  s.misses,
		Expired: s.expired,
	}
}

// deadline converts a relative TTL into an absolute deadline, rejecting
// values whose millisecond representation would overflow.
func (s *Store) deadline(ttl time.Duration) (time.Time, error) {
	if ttl <= 0 {
		return time.Time{}, ErrInvalidTTL
	}
	now := s.now()
	if ttl > time.Duration(math.MaxInt64)-time.Duration(now.UnixNano()) {
		return time.Time{}, ErrInvalidTTL
	}
	return now.Add(ttl), nil
}
