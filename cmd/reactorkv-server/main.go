//go:build linux

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/reactorkv/internal/infra/buildinfo"
	"github.com/yndnr/reactorkv/internal/infra/shutdown"
	"github.com/yndnr/reactorkv/internal/server/config"
	"github.com/yndnr/reactorkv/internal/server/httpserver"
	"github.com/yndnr/reactorkv/internal/server/redisserver"
	"github.com/yndnr/reactorkv/internal/storage/memory"
	"github.com/yndnr/reactorkv/internal/telemetry/logger"
	"github.com/yndnr/reactorkv/internal/telemetry/metric"
)

const shutdownTimeout = 30 * time.Second

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	cli.VersionPrinter = func(c *cli.Context) {
		fmt.Fprintf(c.App.Writer, "reactorkv-server %s\n", buildinfo.String())
	}
	return &cli.App{
		Name:    "reactorkv-server",
		Usage:   "Redis-protocol key-value server",
		Version: buildinfo.Get().Version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to configuration file",
				EnvVars: []string{"REACTORKV_CONFIG"},
			},
			&cli.StringFlag{
				Name:  "addr",
				Usage: "Redis protocol listen address",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "log level: debug, info, warn, error",
			},
			&cli.StringFlag{
				Name:  "metrics-addr",
				Usage: "enable the HTTP endpoint on this address",
			},
		},
		Action: run,
	}
}

func run(c *cli.Context) error {
	configFile := c.String("config")
	cfg, err := loadConfig(configFile, flagOverrides(c))
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: os.Stderr,
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	logger.SetDefault(log)

	info := buildinfo.Get()
	log.Info("starting reactorkv-server",
		"version", info.Version,
		"commit", info.Commit,
		"config", configFile)

	metrics := metric.Global()
	metrics.MustRegister(metric.NewCollector(info.Version, info.Commit))

	store := memory.New(memory.WithExpireHook(func(string) {
		metrics.IncKeysExpired()
	}))

	redisCfg, err := config.ToRedisConfig(cfg)
	if err != nil {
		return err
	}
	srv := redisserver.New(redisCfg, store,
		redisserver.WithLogger(log.With("component", "redis")),
		redisserver.WithMetrics(metrics),
	)
	if err := srv.Listen(); err != nil {
		return fmt.Errorf("listen %s: %w", redisCfg.Addr, err)
	}

	sh := shutdown.NewHandler(shutdownTimeout, shutdown.WithLogger(log))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	serveErr := startRedis(ctx, srv, log, sh)

	if cfg.Server.HTTP.Enabled {
		httpSrv, err := startHTTP(cfg, srv, metrics, log, sh)
		if err != nil {
			_ = srv.Shutdown(context.Background())
			return err
		}
		sh.OnShutdown("http", httpSrv.Shutdown)
	}

	if configFile != "" {
		w, err := watchConfig(configFile, flagOverrides(c), log)
		if err != nil {
			log.Warn("config watcher disabled", "error", err)
		} else {
			sh.OnShutdown("config-watcher", func(context.Context) error {
				return w.Stop()
			})
		}
	}

	log.Info("server started")
	if err := sh.Wait(ctx); err != nil {
		log.Error("shutdown error", "error", err)
		return err
	}

	select {
	case err := <-serveErr:
		if err != nil {
			return err
		}
	default:
	}

	log.Info("server stopped gracefully")
	return nil
}

// startRedis runs the event loop of an already listening server on its
// own goroutine and registers its shutdown hook. A loop failure triggers
// process shutdown.
func startRedis(ctx context.Context, srv *redisserver.Server, log logger.Logger, sh *shutdown.Handler) <-chan error {
	serveErr := make(chan error, 1)
	go func() {
		err := srv.Serve(ctx)
		serveErr <- err
		if err != nil {
			log.Error("redis server stopped", "error", err)
			sh.Trigger()
		}
	}()
	sh.OnShutdown("redis", srv.Shutdown)
	return serveErr
}

// startHTTP binds the admin listener before returning so an address
// conflict fails startup.
func startHTTP(cfg *config.ServerConfig, srv *redisserver.Server, metrics *metric.Registry,
	log logger.Logger, sh *shutdown.Handler) (*httpserver.Server, error) {
	router := httpserver.NewRouter(&httpserver.RouterConfig{
		Metrics: metrics,
		Ready: func() error {
			if srv.Addr() == nil {
				return errors.New("redis listener not bound")
			}
			return nil
		},
		Logger: log.With("component", "http"),
	})

	httpSrv := httpserver.New(cfg.Server.HTTP.Addr, router)
	ln, err := httpSrv.Listen()
	if err != nil {
		return nil, fmt.Errorf("listen http %s: %w", cfg.Server.HTTP.Addr, err)
	}

	go func() {
		log.Info("http server listening", "addr", ln.Addr().String())
		if err := httpSrv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server error", "error", err)
			sh.Trigger()
		}
	}()
	return httpSrv, nil
}
