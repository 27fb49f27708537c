//go:build linux

package main

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/reactorkv/internal/infra/confloader"
	"github.com/yndnr/reactorkv/internal/server/config"
	"github.com/yndnr/reactorkv/internal/telemetry/logger"
)

// flagOverrides maps explicitly set flags to configuration keys.
func flagOverrides(c *cli.Context) map[string]any {
	overrides := make(map[string]any)
	if c.IsSet("addr") {
		overrides["server.redis.addr"] = c.String("addr")
	}
	if c.IsSet("log-level") {
		overrides["log.level"] = c.String("log-level")
	}
	if c.IsSet("metrics-addr") {
		overrides["server.http.enabled"] = true
		overrides["server.http.addr"] = c.String("metrics-addr")
	}
	return overrides
}

// loadConfig resolves defaults, the file, the environment and flag
// overrides, in that order, and verifies the result.
func loadConfig(path string, overrides map[string]any) (*config.ServerConfig, error) {
	opts := []confloader.Option{
		confloader.WithDefaults(config.Default().Flatten()),
	}
	if path != "" {
		opts = append(opts, confloader.WithConfigFile(path))
	}

	cfg := &config.ServerConfig{}
	loader := confloader.NewLoader(opts...)
	if err := loader.Load(cfg); err != nil {
		return nil, err
	}

	if len(overrides) > 0 {
		if err := loader.LoadMap(overrides); err != nil {
			return nil, fmt.Errorf("apply flags: %w", err)
		}
		if err := loader.Unmarshal(cfg); err != nil {
			return nil, fmt.Errorf("apply flags: %w", err)
		}
	}

	if err := config.Verify(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// watchConfig reloads path on change and applies log.level. Other
// settings take effect on the next start.
func watchConfig(path string, overrides map[string]any, log logger.Logger) (*confloader.Watcher, error) {
	w, err := confloader.NewWatcher(confloader.WithWatcherLogger(log))
	if err != nil {
		return nil, err
	}
	if err := w.Watch(path); err != nil {
		_ = w.Stop()
		return nil, err
	}

	w.OnChange(func(string) {
		cfg, err := loadConfig(path, overrides)
		if err != nil {
			log.Warn("config reload rejected", "path", path, "error", err)
			return
		}
		if cfg.Log.Level == logger.GetLevel() {
			return
		}
		if err := logger.SetLevel(cfg.Log.Level); err != nil {
			log.Warn("config reload rejected", "path", path, "error", err)
			return
		}
		log.Info("log level changed", "level", cfg.Log.Level)
	})
	w.StartAsync()
	return w, nil
}
