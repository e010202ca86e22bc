package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	router "github.com/dkeye/Drop/internal/adapters/http"
	ws "github.com/dkeye/Drop/internal/adapters/signal"
	"github.com/dkeye/Drop/internal/app"
	"github.com/dkeye/Drop/internal/app/orch"
	"github.com/dkeye/Drop/internal/config"
	"github.com/dkeye/Drop/internal/domain"
	"github.com/dkeye/Drop/internal/storage"
)

const (
	limiterCleanupEvery = time.Minute
	limiterIdle         = 10 * time.Minute
)

func setupLogger(cfg config.LogConfig) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if strings.EqualFold(cfg.Format, "json") {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	} else {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Early logger so config.Load can report; replaced once config is known.
	setupLogger(config.LogConfig{Level: "info", Format: "console"})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	setupLogger(cfg.Log)

	files, err := storage.Open(cfg.Storage)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open storage")
	}

	codes := domain.CodeRange{Min: domain.RoomCode(cfg.Room.MinCode), Max: domain.RoomCode(cfg.Room.MaxCode)}
	rooms := app.NewRoomManager(
		app.NewAllocator(codes, cfg.Room.MaxAttempts),
		storage.Deleter(files),
		app.RoomManagerOptions{
			GracePeriod:   cfg.Room.GracePeriod,
			LazyCreate:    cfg.Room.LazyCreate,
			DeleteTimeout: cfg.Storage.DeleteTimeout,
		},
	)

	o := &orch.Orchestrator{
		Registry: app.NewRegistry(),
		Rooms:    rooms,
		Policy:   app.PolicyByName(cfg.Backpressure),
		Codes:    codes,
	}

	joins := ws.NewRateLimiter(cfg.Limits.JoinRate, cfg.Limits.JoinBurst)
	connects := ws.NewRateLimiter(cfg.Limits.ConnectRate, cfg.Limits.ConnectBurst)

	r := router.SetupRouter(ctx, cfg, router.Deps{
		Orch:     o,
		Files:    files,
		Joins:    joins,
		Connects: connects,
	})
	addr := fmt.Sprintf(":%d", cfg.Port)

	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("addr", addr).Dur("grace", rooms.GracePeriod()).Msg("Drop server started")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		joins.Run(gctx, limiterCleanupEvery, limiterIdle)
		return nil
	})
	g.Go(func() error {
		connects.Run(gctx, limiterCleanupEvery, limiterIdle)
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("Shutting down")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Server forced to shutdown")
		}
		cancelled := rooms.ShutdownCancelAll()
		log.Info().Int("sessions", o.Registry.Count()).Int("pending_deletions", cancelled).Msg("rooms released")
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("server stopped with error")
		os.Exit(1)
	}
	log.Info().Msg("Server exited gracefully")
}
