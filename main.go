// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/danielhkuo/paralympics/app"
	"github.com/danielhkuo/paralympics/cliparse"
	"github.com/danielhkuo/paralympics/logging"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// A missing .env is fine; real environment variables still apply
	_ = godotenv.Load()

	// Parse configuration
	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		slog.Error("Error parsing flags", "error", err)
		os.Exit(1)
	}

	logger, err := logging.New(os.Stderr, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		slog.Error("Error configuring logger", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(cfg, app.WithLogger(logger), app.WithContext(ctx))
	if err != nil {
		slog.Error("startup failed", "profile", cfg.Profile, "error", err)
		os.Exit(1)
	}
	defer a.Close()

	// Create server
	server := &http.Server{
		Handler:           a.Handler,
		Addr:              ":" + strconv.Itoa(cfg.Port),
		ReadHeaderTimeout: 10 * time.Second,
	}
	ln, err := net.Listen("tcp", server.Addr)
	if err != nil {
		slog.Error("Failed to listen", "addr", server.Addr, "error", err)
		a.Close()
		os.Exit(1)
	}

	// Start server
	slog.Info("Listening", "port", cfg.Port, "profile", cfg.Profile)
	if err := serve(ctx, server, ln, shutdownTimeout); err != nil {
		slog.Error("Server closed", "error", err)
		a.Close()
		os.Exit(1)
	}
	slog.Info("Server closed")
}

// serve runs server on ln until ctx is done, then shuts it down. It returns
// only once in-flight requests have drained or timeout has passed.
func serve(ctx context.Context, server *http.Server, ln net.Listener, timeout time.Duration) error {
	done := make(chan error, 1)
	go func() {
		// Wait for Ctrl-C or SIGTERM
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		err := server.Shutdown(shutdownCtx)
		if err != nil {
			server.Close()
			err = fmt.Errorf("graceful shutdown failed: %w", err)
		}
		done <- err
	}()

	if err := server.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return <-done
}
