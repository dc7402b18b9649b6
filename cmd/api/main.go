package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/suchockipawel/nottodo/internal/app"
	"github.com/suchockipawel/nottodo/internal/config"

	"github.com/rs/zerolog"
)

func main() {
	logger := newLogger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("config")
	}
	logger.Info().Str("env", cfg.App.Env).Msg("config loaded, connecting to DB and Redis")

	application, err := app.New(cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("app init")
	}

	if err := application.StartReminders(); err != nil {
		logger.Fatal().Err(err).Msg("reminder runner")
	}

	server := &http.Server{
		Addr:         "0.0.0.0:" + cfg.HTTP.Port,
		Handler:      application.Router(),
		ReadTimeout:  cfg.HTTP.ReadTimeout.Duration(),
		WriteTimeout: cfg.HTTP.WriteTimeout.Duration(),
		IdleTimeout:  cfg.HTTP.IdleTimeout.Duration(),
	}

	go func() {
		logger.Info().Str("addr", server.Addr).Msg("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("HTTP server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	<-quit
	logger.Info().Msg("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("HTTP shutdown")
	}
	if err := application.Close(ctx); err != nil {
		logger.Error().Err(err).Msg("app close")
	}
}

func newLogger() zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if os.Getenv("APP_ENV") == "dev" {
		logger = logger.Output(zerolog.ConsoleWriter{Out: os.Stdout})
	}
	return logger
}
