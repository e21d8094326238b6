package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/meikuraledutech/automata/httpapi"
	"github.com/meikuraledutech/automata/rpg"
	"go.uber.org/zap"
)

func main() {
	cfg, err := loadConfig()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	manager, err := newManager(cfg, logger)
	if err != nil {
		return err
	}

	srv, err := httpapi.New(manager, rpg.NewGameState(), store, httpapi.WithLogger(logger))
	if err != nil {
		return err
	}
	app := srv.App()

	errc := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", cfg.Addr))
		errc <- app.Listen(cfg.Addr)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return app.ShutdownWithContext(shutdownCtx)
}

// newManager builds the manager and seeds it from the content pack, if any.
func newManager(cfg Config, logger *zap.Logger) (*rpg.Manager, error) {
	manager := rpg.NewManager(logger)
	if cfg.ContentFile == "" {
		return manager, nil
	}
	content, err := rpg.LoadContentFile(cfg.ContentFile)
	if err != nil {
		return nil, err
	}
	if err := manager.Apply(content); err != nil {
		return nil, err
	}
	logger.Info("content loaded", zap.String("file", cfg.ContentFile))
	return manager, nil
}
