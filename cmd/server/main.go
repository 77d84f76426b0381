package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/Tyrowin/roomrelay/internal/server"
)

func main() {
	// Local .env is optional.
	_ = godotenv.Load()

	config, err := server.NewConfigFromEnv()
	if err != nil {
		bootLogger := server.NewLogger(os.Stderr, "info", "json")
		bootLogger.Fatal().Err(err).Msg("invalid configuration")
	}
	logger := server.NewLogger(os.Stdout, config.LogLevel, config.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app := server.NewApp(*config, logger)
	app.Start()

	httpServer := server.CreateServer(config.Addr(), app.Handler)
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.StartServer(httpServer, logger)
	}()

	select {
	case <-ctx.Done():
		logger.Info().Msg("shutdown signal received")
	case err := <-serveErr:
		if err != nil {
			logger.Error().Err(err).Msg("server stopped")
		}
	}

	if err := app.Shutdown(config.ShutdownTimeout); err != nil {
		logger.Warn().Err(err).Msg("hub shutdown")
	}
	if err := server.ShutdownServer(httpServer, config.ShutdownTimeout, logger); err != nil {
		logger.Error().Err(err).Msg("http shutdown")
		os.Exit(1)
	}
}
