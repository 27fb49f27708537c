package redisserver

// Defaults for Config fields left at their zero value.
const (
	DefaultAddr           = "0.0.0.0:6379"
	DefaultBacklog        = 128
	DefaultMaxEvents      = 64
	DefaultReadBufferSize = 16 * 1024
)

// Config holds the Redis server configuration.
type Config struct {
	// Addr is the TCP listen address.
	Addr string
	// Backlog is the listen(2) backlog (default: 128).
	Backlog int
	// MaxEvents bounds the events handled per loop iteration (default: 64).
	MaxEvents int
	// ReadBufferSize is the size of each non-blocking read (default: 16KB).
	ReadBufferSize int
	// RateLimit is the maximum number of commands per second per
	// connection. Set to 0 to disable rate limiting.
	RateLimit float64
	// RateBurst is the limiter burst size (default: RateLimit rounded up).
	RateBurst int
	// Limits bounds what a client request may look like.
	Limits Limits
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Addr:           DefaultAddr,
		Backlog:        DefaultBacklog,
		MaxEvents:      DefaultMaxEvents,
		ReadBufferSize: DefaultReadBufferSize,
		Limits:         DefaultLimits(),
	}
}

func (c Config) withDefaults() Config {
	if c.Addr == "" {
		c.Addr = DefaultAddr
	}
	if c.Backlog <= 0 {
		c.Backlog = DefaultBacklog
	}
	if c.MaxEvents <= 0 {
		c.MaxEvents = DefaultMaxEvents
	}
	if c.ReadBufferSize <= 0 {
		c.ReadBufferSize = DefaultReadBufferSize
	}
	if c.RateLimit > 0 && c.RateBurst <= 0 {
		c.RateBurst = int(c.RateLimit)
		if float64(c.RateBurst) < c.RateLimit {
			c.RateBurst++
		}
	}
	c.Limits = c.Limits.withDefaults()
	return c
}
