package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"maze-realm/server/config"
	"maze-realm/server/handlers"
	"maze-realm/server/logger"
	"maze-realm/server/persistence"
	"maze-realm/server/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Log.WithError(err).Fatal("Invalid configuration")
	}
	logger.Init(cfg.LogLevel, cfg.LogFormat)

	// Initialize database
	var db persistence.Storage
	if cfg.DBType == "postgres" {
		db, err = persistence.NewPostgresStore(cfg.DatabaseURL)
		logger.Log.Info("Using PostgreSQL persistence")
	} else {
		db, err = persistence.NewJSONStore(cfg.DBFile)
		logger.Log.WithField("file", cfg.DBFile).Info("Using JSON persistence")
	}
	if err != nil {
		logger.Log.WithError(err).Fatal("Failed to initialize persistence")
	}
	defer db.Close()

	// Initialize services
	clientManager := handlers.NewClientManager()
	playerService := services.NewPlayerService(db)
	levelService := services.NewLevelService(db, clientManager, services.LevelOptions{
		Maze:           cfg.Maze,
		MaxEnemies:     cfg.MaxEnemies,
		InitialEnemies: cfg.InitialEnemies,
		ChunkSize:      cfg.ChunkSize,
	})

	if _, err := levelService.Resume(); err != nil {
		if !errors.Is(err, persistence.ErrNotFound) {
			logger.Log.WithError(err).Warn("Stored level unusable, starting over")
		}
		if _, err := levelService.StartStage(1); err != nil {
			logger.Log.WithError(err).Fatal("Failed to generate first level")
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.EnemySpawn > 0 {
		go levelService.RunEnemySpawner(ctx, cfg.EnemySpawn)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", handlers.ServeWS(playerService, levelService, clientManager))

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Log.WithField("port", cfg.Port).Info("Server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.WithError(err).Fatal("Server failed")
		}
	}()

	<-ctx.Done()
	logger.Log.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.WithError(err).Warn("Graceful shutdown failed")
	}
}
