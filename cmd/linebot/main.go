package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"

	appconfig "github.com/lewisedginton/line_companion_bot/internal/config"
	"github.com/lewisedginton/line_companion_bot/internal/server"
	"github.com/lewisedginton/line_companion_bot/pkg/config"
	"github.com/lewisedginton/line_companion_bot/pkg/logger"
)

func main() {
	// .env is a local convenience; production gets real environment variables
	if !strings.EqualFold(os.Getenv("API_ENV"), "production") {
		_ = godotenv.Load()
	}

	var cfg appconfig.AppConfig
	if err := config.GetConfig(&cfg, os.Getenv("CONFIG_FILE"), true); err != nil {
		var missing *appconfig.MissingEnvError
		if errors.As(err, &missing) {
			fmt.Fprintln(os.Stderr, missing.Error())
		} else {
			fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		}
		os.Exit(1)
	}

	log := logger.NewLogger(logger.Config{
		Level:   cfg.GetLogLevel(),
		Format:  cfg.GetLogFormat(),
		Service: cfg.ServiceName,
	})
	cfg.LogConfig(log)

	s, err := server.New(context.Background(), cfg, log)
	if err != nil {
		log.Error("Failed to create server", logger.ErrorField(err))
		os.Exit(1)
	}

	if err := s.Run(); err != nil {
		log.Error("Server exited with error", logger.ErrorField(err))
		os.Exit(1)
	}
}
