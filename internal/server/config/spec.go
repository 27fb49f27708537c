package config

// ServerConfig is the root configuration for reactorkv-server.
type ServerConfig struct {
	Server   ServerSection   `koanf:"server"`
	Protocol ProtocolSection `koanf:"protocol"`
	Log      LogSection      `koanf:"log"`
}

// ServerSection configures server endpoints.
type ServerSection struct {
	Redis RedisConfig `koanf:"redis"`
	HTTP  HTTPConfig  `koanf:"http"`
}

// RedisConfig configures the Redis protocol listener and event loop.
type RedisConfig struct {
	Addr string `koanf:"addr"`

	// Backlog is the listen(2) backlog.
	Backlog int `koanf:"backlog"`

	// MaxEvents bounds the readiness events handled per loop iteration.
	MaxEvents int `koanf:"max_events"`

	// ReadBufferSize is the size of each socket read in bytes.
	ReadBufferSize int `koanf:"read_buffer_size"`

	// RateLimit is the per-connection command rate in commands/second.
	// 0 disables rate limiting.
	RateLimit float64 `koanf:"rate_limit"`

	// RateBurst is the per-connection burst. Defaults to RateLimit.
	RateBurst int `koanf:"rate_burst"`
}

// HTTPConfig configures the metrics and health endpoint.
type HTTPConfig struct {
	Enabled bool   `koanf:"enabled"`
	Addr    string `koanf:"addr"`
}

// ProtocolSection bounds client requests.
type ProtocolSection struct {
	MaxArrayLen  int `koanf:"max_array_len"`
	MaxBulkLen   int `koanf:"max_bulk_len"`
	MaxInlineLen int `koanf:"max_inline_len"`
}

// LogSection configures logging.
type LogSection struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}
