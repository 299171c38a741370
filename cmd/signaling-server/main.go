package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hasanasadov/hasscreen/internal/logging"
	"github.com/hasanasadov/hasscreen/internal/room"
	"github.com/hasanasadov/hasscreen/internal/server"
)

func main() {
	cfg, err := server.LoadConfig()
	if err != nil {
		l := logging.L()
		l.Fatal().Err(err).Msg("failed to load configuration")
	}

	logging.Init(logging.Config{Level: cfg.Log.Level, ServiceName: "signaling-server"})
	logger := logging.L()

	store := room.NewStore()

	hub := server.NewHub(logger)
	go hub.Run()

	handler := server.NewHandler(store, hub, logger)

	mux := http.NewServeMux()
	handler.RegisterRoutes(mux)

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      logging.HTTPMiddleware(logger)(mux),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		logger.Info().Str("host", cfg.Server.Host).Int("port", cfg.Server.Port).Msg("signaling server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down signaling server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("server forced to shutdown")
	}

	logger.Info().Int("rooms", store.Len()).Msg("signaling server stopped")
}
