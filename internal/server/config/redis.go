package config

import (
	"fmt"

	"github.com/yndnr/reactorkv/internal/server/redisserver"
)

// ToRedisConfig converts ServerConfig to redisserver.Config.
func ToRedisConfig(cfg *ServerConfig) (*redisserver.Config, error) {
	if cfg == nil {
		return nil, fmt.Errorf("server config is nil")
	}

	r := cfg.Server.Redis
	return &redisserver.Config{
		Addr:           r.Addr,
		Backlog:        r.Backlog,
		MaxEvents:      r.MaxEvents,
		ReadBufferSize: r.ReadBufferSize,
		RateLimit:      r.RateLimit,
		RateBurst:      r.RateBurst,
		Limits: redisserver.Limits{
			MaxArrayLen:  cfg.Protocol.MaxArrayLen,
			MaxBulkLen:   cfg.Protocol.MaxBulkLen,
			MaxInlineLen: cfg.Protocol.MaxInlineLen,
		},
	}, nil
}
