package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"golang.org/x/sync/errgroup"

	"github.com/terra-tattva/storefront/internal/core"
	"github.com/terra-tattva/storefront/internal/server"
	"github.com/terra-tattva/storefront/internal/storefront/catalog"
	"github.com/terra-tattva/storefront/internal/storefront/model"
	"github.com/terra-tattva/storefront/internal/storefront/repo"
	"github.com/terra-tattva/storefront/internal/storefront/session"
	logx "github.com/terra-tattva/storefront/pkg/logger"
	pkgredis "github.com/terra-tattva/storefront/pkg/redis"
)

// AppConfig defines all configurable parameters of the storefront server,
// sourced from environment variables (loaded from .env for local runs).
type AppConfig struct {
	Environment string `envconfig:"ENVIRONMENT" default:"development"`
	LogLevel    string `envconfig:"LOG_LEVEL"`

	// Infrastructure
	StorageBackend string `envconfig:"STORAGE_BACKEND" default:"redis"`
	Redis          pkgredis.Config

	Server  model.ServerConfig
	Session model.SessionConfig
	Slots   model.SlotConfig
}

func mustDuration(name, v string) time.Duration {
	d, err := time.ParseDuration(v)
	if err != nil {
		logx.Fatal().Err(err).Str("value", v).Msgf("invalid %s", name)
	}
	return d
}

func main() {
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, os.ErrNotExist) {
		logx.Warn().Err(err).Msg("could not load .env file")
	}

	var cfg AppConfig
	if err := envconfig.Process("", &cfg); err != nil {
		logx.Fatal().Err(err).Msg("failed to process environment config")
	}

	env := core.ParseEnvironment(cfg.Environment)
	logx.Init(logx.LoggerOpts{Environment: env, Level: cfg.LogLevel})

	ttl := mustDuration("SESSION_TTL", cfg.Session.TTL)
	idle := mustDuration("SESSION_IDLE_TIMEOUT", cfg.Session.IdleTimeout)
	sweep := mustDuration("SESSION_SWEEP_INTERVAL", cfg.Session.SweepInterval)
	shutdownTimeout := mustDuration("SHUTDOWN_TIMEOUT", cfg.Server.ShutdownTimeout)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var slots model.SlotRepository
	switch cfg.StorageBackend {
	case "memory":
		slots = repo.NewMemorySlotRepository()
		logx.Warn().Msg("using in-memory storage, state is lost on restart")
	case "redis":
		rdb := cfg.Redis.MustNew(ctx)
		defer rdb.Close()
		slots = repo.NewRedisSlotRepository(rdb, ttl)
		logx.Info().Msg("connected to redis")
	default:
		logx.Fatal().Str("backend", cfg.StorageBackend).Msg("unknown STORAGE_BACKEND, want redis or memory")
	}

	cat := catalog.MustLoad()
	sessions := session.NewManager(slots, cfg.Slots, cat)

	engine := server.New(server.Config{
		Environment:   env,
		PingMessage:   cfg.Server.PingMessage,
		StaticDir:     cfg.Server.StaticDir,
		SessionCookie: cfg.Session.Cookie,
		CookieMaxAge:  cfg.Session.CookieMaxAge,
	}, cat, sessions)

	srv := &http.Server{
		Addr:              net.JoinHostPort("", cfg.Server.Port),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logx.Info().Str("addr", srv.Addr).Str("environment", env.String()).Msg("storefront server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		return sessions.Run(gctx, sweep, idle)
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		logx.Info().Msg("shutting down")
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logx.Fatal().Err(err).Msg("server stopped")
	}
}
