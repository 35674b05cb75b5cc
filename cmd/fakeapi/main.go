// Package main runs a stand-in execution service on localhost so the
// terminal client can be tried without the real one.
//
//	PORT=3001 go run ./cmd/fakeapi
//	go run ./cmd/algotest
//
// Set JWT_SECRET (same value as ALGOTEST_JWT_SECRET for the client) to
// require bearer tokens.
package main

import (
	"log/slog"
	"os"
	"strconv"

	"github.com/sakif/algotest/internal/fakeapi"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))

	port := 3001
	if portStr := os.Getenv("PORT"); portStr != "" {
		var err error
		port, err = strconv.Atoi(portStr)
		if err != nil {
			logger.Error("invalid PORT value", slog.String("value", portStr))
			os.Exit(1)
		}
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		logger.Warn("JWT_SECRET not set, requests are not authenticated")
	}

	srv, err := fakeapi.New(fakeapi.Config{
		Port:      port,
		JWTSecret: jwtSecret,
	}, logger)
	if err != nil {
		logger.Error("failed to create server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Start blocks until SIGINT/SIGTERM.
	if err := srv.Start(); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
