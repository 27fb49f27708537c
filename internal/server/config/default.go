package config

// Default configuration values.
const (
	DefaultRedisAddr      = "0.0.0.0:6379"
	DefaultBacklog        = 128
	DefaultMaxEvents      = 64
	DefaultReadBufferSize = 16 * 1024

	DefaultHTTPAddr = "127.0.0.1:9121"

	DefaultMaxArrayLen  = 1024 * 1024
	DefaultMaxBulkLen   = 512 * 1024 * 1024
	DefaultMaxInlineLen = 64 * 1024

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
)

// Default returns the default server configuration.
func Default() *ServerConfig {
	return &ServerConfig{
		Server: ServerSection{
			Redis: RedisConfig{
				Addr:           DefaultRedisAddr,
				Backlog:        DefaultBacklog,
				MaxEvents:      DefaultMaxEvents,
				ReadBufferSize: DefaultReadBufferSize,
			},
			HTTP: HTTPConfig{
				Enabled: false,
				Addr:    DefaultHTTPAddr,
			},
		},
		Protocol: ProtocolSection{
			MaxArrayLen:  DefaultMaxArrayLen,
			MaxBulkLen:   DefaultMaxBulkLen,
			MaxInlineLen: DefaultMaxInlineLen,
		},
		Log: LogSection{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}
