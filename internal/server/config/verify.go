package config

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/yndnr/reactorkv/internal/telemetry/logger"
)

// Verify validates the configuration. All problems are reported together.
func Verify(cfg *ServerConfig) error {
	if cfg == nil {
		return errors.New("config is nil")
	}
	return errors.Join(
		verifyRedis(&cfg.Server.Redis),
		verifyHTTP(&cfg.Server.HTTP),
		verifyProtocol(&cfg.Protocol),
		verifyLog(&cfg.Log),
	)
}

func verifyRedis(cfg *RedisConfig) error {
	var errs []error
	if err := verifyAddr("server.redis.addr", cfg.Addr); err != nil {
		errs = append(errs, err)
	}
	if cfg.Backlog < 1 {
		errs = append(errs, errors.New("server.redis.backlog must be at least 1"))
	}
	if cfg.MaxEvents < 1 {
		errs = append(errs, errors.New("server.redis.max_events must be at least 1"))
	}
	if cfg.ReadBufferSize < 512 {
		errs = append(errs, errors.New("server.redis.read_buffer_size must be at least 512"))
	}
	if cfg.RateLimit < 0 {
		errs = append(errs, errors.New("server.redis.rate_limit must not be negative"))
	}
	if cfg.RateBurst < 0 {
		errs = append(errs, errors.New("server.redis.rate_burst must not be negative"))
	}
	return errors.Join(errs...)
}

func verifyHTTP(cfg *HTTPConfig) error {
	if !cfg.Enabled {
		return nil
	}
	return verifyAddr("server.http.addr", cfg.Addr)
}

func verifyProtocol(cfg *ProtocolSection) error {
	var errs []error
	if cfg.MaxArrayLen < 1 {
		errs = append(errs, errors.New("protocol.max_array_len must be at least 1"))
	}
	if cfg.MaxBulkLen < 1 {
		errs = append(errs, errors.New("protocol.max_bulk_len must be at least 1"))
	}
	if cfg.MaxInlineLen < 64 {
		errs = append(errs, errors.New("protocol.max_inline_len must be at least 64"))
	}
	return errors.Join(errs...)
}

func verifyLog(cfg *LogSection) error {
	var errs []error
	if _, err := logger.ParseLevel(cfg.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}
	switch strings.ToLower(cfg.Format) {
	case "json", "text", "console":
	default:
		errs = append(errs, fmt.Errorf("log.format must be json or text, got %q", cfg.Format))
	}
	return errors.Join(errs...)
}

func verifyAddr(field, addr string) error {
	_, port, err := net.SplitHostPort(addr)
	if err != nil {
		return fmt.Errorf("%s: %w", field, err)
	}
	p, err := strconv.Atoi(port)
	if err != nil || p < 0 || p > 65535 {
		return fmt.Errorf("%s: invalid port %q", field, port)
	}
	return nil
}
