package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"

	"golang.org/x/sync/errgroup"

	"thirdpersonmp/internal/config"
	"thirdpersonmp/internal/telemetry"
	"thirdpersonmp/server"
	"thirdpersonmp/server/application"
	"thirdpersonmp/server/domain"
	"thirdpersonmp/server/gameplay"
	"thirdpersonmp/server/handler"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", "err", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadServer()
	if err != nil {
		return err
	}
	level, _ := config.ParseLevel(cfg.LogLevel)
	text := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(text))

	tel, err := telemetry.Setup(ctx, cfg.OTelEndpoint, cfg.ServiceName)
	if err != nil {
		return err
	}
	defer func() {
		if err := tel.Shutdown(context.WithoutCancel(ctx)); err != nil {
			slog.ErrorContext(ctx, "telemetry shutdown failed", "err", err)
		}
	}()
	slog.SetDefault(slog.New(tel.LogHandler(text)))

	projectile := gameplay.DefaultProjectileClass()
	projectile.Damage = cfg.ProjectileDamage
	world := application.NewWorld(application.WorldConfig{
		MaxHealth:  cfg.MaxHealth,
		FireRate:   cfg.FireRate,
		Projectile: projectile,
		Presenter:  &gameplay.SlogPresenter{Logger: slog.Default()},
	})
	game := application.NewGameApplication(world)

	metrics, err := telemetry.NewMetrics()
	if err != nil {
		return err
	}
	combat, err := application.NewCombatService(game, metrics, application.SystemClock{}, application.SimpleValidator{MaxAmount: cfg.MaxDamage})
	if err != nil {
		return err
	}

	pubsub := domain.NewSimplePubSub()
	defaultRoomID := domain.NewRoomID()
	roomManager := domain.NewSimpleRoomManager(defaultRoomID)
	room := domain.NewRoom(defaultRoomID, pubsub, game, cfg.TickInterval())

	var ready atomic.Bool
	routes := server.Route(server.Routes{
		PubSub:      pubsub,
		RoomManager: roomManager,
		Endpoint: domain.EndpointConfig{
			PingInterval: cfg.HeartbeatInterval,
			IdleTimeout:  cfg.IdleTimeout,
		},
		Combat:      handler.NewCombatHandler(combat),
		Ready:       ready.Load,
		AdminSecret: []byte(cfg.AdminSecret),
	})
	s := server.NewServer(cfg.Listen(), routes)

	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		ready.Store(true)
		defer ready.Store(false)
		return room.Run(egCtx)
	})
	eg.Go(func() error {
		slog.InfoContext(ctx, "server listening", "addr", s.Addr())
		if err := s.Serve(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	eg.Go(func() error {
		<-egCtx.Done()
		slog.InfoContext(ctx, "shutdown initiated")

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.ShutdownTimeout)
		defer cancel()
		if err := s.Shutdown(shutdownCtx); err != nil {
			slog.ErrorContext(ctx, "graceful shutdown failed", "err", err)
			if err := s.Close(); err != nil {
				slog.ErrorContext(ctx, "forced close failed", "err", err)
			}
		}
		return nil
	})

	err = eg.Wait()
	slog.InfoContext(ctx, "server shutdown complete")
	return err
}
