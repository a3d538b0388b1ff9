package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	httpapi "github.com/hostbound/signaling/internal/api/http"
	"github.com/hostbound/signaling/internal/config"
	"github.com/hostbound/signaling/internal/repository"
	"github.com/hostbound/signaling/internal/service"
	"github.com/hostbound/signaling/internal/store"
	"github.com/hostbound/signaling/lib/logger/sl"
	"github.com/hostbound/signaling/lib/logger/slogpretty"
)

func main() {
	_ = godotenv.Load(".env")

	cfg := config.MustLoad()
	log := setupLogger(cfg.Env)

	tree, err := setupStore(cfg.Database)
	if err != nil {
		log.Error("failed to set up store", sl.Err(err))
		os.Exit(1)
	}

	rooms := repository.NewRoomRepository(tree, cfg.Room.MaxPlayers)
	notifications := repository.NewNotificationQueue(tree)

	sessionService := service.NewSessionService(rooms, notifications, log)
	signalService := service.NewSignalService(rooms, notifications, log)
	janitor := service.NewJanitor(rooms, log, cfg.Room.Timeout(), cfg.Room.SweepInterval())

	signalController := httpapi.NewSignalController(sessionService, signalService, log)
	streamController := httpapi.NewStreamController(sessionService, log)

	router := httpapi.SetupRouter(cfg.HTTP.AllowedOrigins, signalController, streamController)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	go janitor.Run(ctx)

	srv := &http.Server{
		Addr:    cfg.HTTP.Address,
		Handler: router,
	}

	go func() {
		log.Info("starting application", slog.String("addr", cfg.HTTP.Address))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server stopped", sl.Err(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("forced shutdown", sl.Err(err))
	}
}

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

func setupLogger(env string) *slog.Logger {
	var log *slog.Logger

	switch env {
	case envLocal:
		log = setupPrettySlog()
	case envDev:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	case envProd:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
		)
	default:
		log = setupPrettySlog()
	}

	return log
}

func setupPrettySlog() *slog.Logger {
	opts := slogpretty.PrettyHandlerOptions{
		SlogOpts: &slog.HandlerOptions{
			Level: slog.LevelDebug,
		},
	}

	handler := opts.NewPrettyHandler(os.Stdout)

	return slog.New(handler)
}

func setupStore(cfg config.DatabaseConfig) (store.Tree, error) {
	if cfg.DSN == "" {
		return store.NewMemoryTree(), nil
	}

	db, err := gorm.Open(postgres.Open(cfg.DSN), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(&store.Node{}); err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	return store.NewPostgresTree(db), nil
}
